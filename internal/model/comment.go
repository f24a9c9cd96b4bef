package model

import "time"

// Comment represents a comment document in MongoDB. Comments live in the
// event_comments collection and reference their event by id. Threading is
// single-level: a reply carries the id of its parent comment, replies are
// never nested further.
type Comment struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	EventID   string    `json:"eventId" bson:"event_id"`
	UserID    string    `json:"userId" bson:"user_id"`
	UserName  string    `json:"userName" bson:"user_name"`
	Text      string    `json:"text" bson:"text"`
	ParentID  *string   `json:"parentId" bson:"parent_id"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}
