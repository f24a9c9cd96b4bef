package model

import "time"

// User represents a user document in MongoDB. The document id is the uid
// issued at sign-up.
//
// FollowersList/FollowingList and the Followers/Following counters are
// mirrored pairs across two documents, maintained by paired atomic updates.
// EventsJoined is the source of truth for membership; an event's participant
// count is derived by querying this collection.
type User struct {
	ID            string    `json:"id" bson:"_id"`
	Email         string    `json:"email" bson:"email"`
	DisplayName   string    `json:"displayName" bson:"display_name"`
	Username      string    `json:"username" bson:"username"`
	PhotoURL      string    `json:"photoUrl" bson:"photo_url"`
	Bio           string    `json:"bio" bson:"bio"`
	Pronouns      string    `json:"pronouns" bson:"pronouns"`
	Link          string    `json:"link" bson:"link"`
	Followers     int       `json:"followers" bson:"followers"`
	Following     int       `json:"following" bson:"following"`
	FollowersList []string  `json:"followersList" bson:"followers_list"`
	FollowingList []string  `json:"followingList" bson:"following_list"`
	EventsCreated []string  `json:"eventsCreated" bson:"events_created"`
	EventsJoined  []string  `json:"eventsJoined" bson:"events_joined"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
}

// HasJoined reports whether the user's joined list contains the event.
func (u *User) HasJoined(eventID string) bool {
	for _, id := range u.EventsJoined {
		if id == eventID {
			return true
		}
	}
	return false
}

// Credential holds the password hash for a user, keyed by the same uid as the
// user document. Kept in its own collection so profile reads never carry it.
type Credential struct {
	ID           string    `json:"-" bson:"_id"`
	Email        string    `json:"-" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	CreatedAt    time.Time `json:"-" bson:"created_at"`
}
