package live

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTopic(t *testing.T) {
	tests := []struct {
		topic    string
		wantKind string
		wantID   string
		wantErr  bool
	}{
		{topic: "feed", wantKind: KindFeed},
		{topic: "event:e1", wantKind: KindEvent, wantID: "e1"},
		{topic: "user:u1", wantKind: KindUser, wantID: "u1"},
		{topic: "event:a:b", wantKind: KindEvent, wantID: "a:b"},
		{topic: "event:", wantErr: true},
		{topic: "event", wantErr: true},
		{topic: "room:x", wantErr: true},
		{topic: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			kind, id, err := ParseTopic(tt.topic)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadTopic)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestTopicBuildersRoundTrip(t *testing.T) {
	kind, id, err := ParseTopic(EventTopic("e1"))
	require.NoError(t, err)
	assert.Equal(t, KindEvent, kind)
	assert.Equal(t, "e1", id)

	kind, id, err = ParseTopic(UserTopic("u1"))
	require.NoError(t, err)
	assert.Equal(t, KindUser, kind)
	assert.Equal(t, "u1", id)
}

func TestNewFrame(t *testing.T) {
	frame, err := NewFrame(FrameParticipants, EventTopic("e1"), 7)
	require.NoError(t, err)
	assert.Equal(t, FrameParticipants, frame.Type)
	assert.Equal(t, "event:e1", frame.Topic)
	assert.JSONEq(t, "7", string(frame.Payload))
}
