// Package live defines the websocket frame protocol for realtime screens.
// Outbound frames carry state-cell snapshots; inbound frames carry user
// intents against the room's event.
package live

import (
	"encoding/json"
	"errors"
	"strings"
)

// Outbound frame types, one per observable state cell.
const (
	FrameEvents       = "events_state"
	FrameEvent        = "event_state"
	FrameComments     = "comments_state"
	FrameParticipants = "participants_count"
	FrameArrived      = "arrived_count"
	FrameUser         = "user_state"
	FrameOperation    = "operation_state"
	FrameError        = "error"
)

// Inbound intent types.
const (
	IntentPostComment   = "post_comment"
	IntentDeleteComment = "delete_comment"
	IntentCheckIn       = "check_in"
	IntentCancelCheckIn = "cancel_check_in"
	IntentJoin          = "join"
	IntentLeave         = "leave"
	IntentBanUser       = "ban_user"
	IntentUnbanUser     = "unban_user"
	IntentFollow        = "follow"
	IntentUnfollow      = "unfollow"
)

// Topic kinds. A topic addresses one room: "feed", "event:<id>" or
// "user:<uid>".
const (
	TopicFeed  = "feed"
	KindEvent  = "event"
	KindUser   = "user"
	KindFeed   = "feed"
	topicDelim = ":"
)

var ErrBadTopic = errors.New("malformed topic")

// Frame is the envelope for everything crossing the socket.
type Frame struct {
	Type    string          `json:"type"`
	Topic   string          `json:"topic,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewFrame marshals payload into an outbound frame.
func NewFrame(frameType, topic string, payload interface{}) (Frame, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Type: frameType, Topic: topic, Payload: raw}, nil
}

// ParseTopic splits a topic into its kind and id. The feed topic has no id.
func ParseTopic(topic string) (kind, id string, err error) {
	if topic == TopicFeed {
		return KindFeed, "", nil
	}

	parts := strings.SplitN(topic, topicDelim, 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", ErrBadTopic
	}
	switch parts[0] {
	case KindEvent, KindUser:
		return parts[0], parts[1], nil
	default:
		return "", "", ErrBadTopic
	}
}

// EventTopic builds the topic for an event room.
func EventTopic(eventID string) string {
	return KindEvent + topicDelim + eventID
}

// UserTopic builds the topic for a user room.
func UserTopic(uid string) string {
	return KindUser + topicDelim + uid
}

// CommentIntent is the payload of a post_comment frame.
type CommentIntent struct {
	Text     string  `json:"text"`
	ParentID *string `json:"parentId"`
}

// TargetIntent is the payload of frames addressing another record.
type TargetIntent struct {
	UserID    string `json:"userId,omitempty"`
	CommentID string `json:"commentId,omitempty"`
}
