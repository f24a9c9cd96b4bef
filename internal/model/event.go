package model

import "time"

// Event represents an event document in MongoDB.
//
// Participant and checked-in counts are intentionally absent: both are derived
// by querying other collections, never cached on the event document.
type Event struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	CreatedBy     string    `json:"createdBy" bson:"created_by"`
	Title         string    `json:"title" bson:"title"`
	Description   string    `json:"description" bson:"description"`
	DressCode     string    `json:"dressCode" bson:"dress_code"`
	StartDate     string    `json:"startDate" bson:"start_date"`
	StartTime     string    `json:"startTime" bson:"start_time"`
	EndDate       string    `json:"endDate" bson:"end_date"`
	EndTime       string    `json:"endTime" bson:"end_time"`
	Location      string    `json:"location" bson:"location"`
	Latitude      *float64  `json:"latitude" bson:"latitude"`
	Longitude     *float64  `json:"longitude" bson:"longitude"`
	ImageURL      string    `json:"imageUrl" bson:"image_url"`
	ImageURLs     []string  `json:"imageUrls" bson:"image_urls"`
	BannedUserIDs []string  `json:"bannedUserIds" bson:"banned_user_ids"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
}

// IsBanned reports whether the user is on the event's banned list.
func (e *Event) IsBanned(userID string) bool {
	for _, id := range e.BannedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
