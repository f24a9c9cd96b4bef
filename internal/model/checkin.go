package model

// CheckIn represents a check-in record in MongoDB. The document id is
// "<eventId>/<userId>", so a user holds at most one record per event and a
// repeated check-in overwrites rather than duplicates.
type CheckIn struct {
	ID        string `json:"id" bson:"_id"`
	EventID   string `json:"eventId" bson:"event_id"`
	UserID    string `json:"userId" bson:"user_id"`
	Method    string `json:"method" bson:"method"`
	Timestamp int64  `json:"timestamp" bson:"timestamp"`
}

// CheckInID builds the composite document id for a check-in record.
func CheckInID(eventID, userID string) string {
	return eventID + "/" + userID
}

// CheckInData is the derived aggregate for an event's check-ins. It is never
// persisted; it is recomputed from the check-in records on every snapshot.
type CheckInData struct {
	Count   int      `json:"count"`
	UserIDs []string `json:"userIds"`
}

// Contains reports whether the user has checked in.
func (d CheckInData) Contains(userID string) bool {
	for _, id := range d.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
