package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindWireNames(t *testing.T) {
	req := require.New(t)

	req.Equal("new-comment", KindNewComment.String())
	req.Equal("comment-reaction", KindCommentReaction.String())
	req.Equal("new-notification", KindNewNotification.String())
	req.Equal("blog-updated", KindBlogUpdated.String())
	req.Equal("kids-activity-update", KindCohortActivity.String())
	req.Equal("user-typing", KindTypingStart.String())
	req.Equal("user-stopped-typing", KindTypingStop.String())
	req.Equal("unknown", Kind(99).String())
}

func TestRoomNames(t *testing.T) {
	req := require.New(t)

	req.Equal("thread:42", ThreadRoom("42"))
	req.Equal("identity:u1", IdentityRoom("u1"))
	req.Equal("cohort:6-8", CohortRoom("6-8"))

	// The same domain key always derives the same room
	req.Equal(ThreadRoom("42"), ThreadRoom("42"))
}

func TestValidateRoom(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidateRoom("thread:42"))
	req.NoError(ValidateRoom("cohort:6-8"))

	// Identity rooms are auto-joined, never client-joined
	req.ErrorIs(ValidateRoom("identity:u1"), ErrInvalidRoom)

	req.ErrorIs(ValidateRoom(""), ErrInvalidRoom)
	req.ErrorIs(ValidateRoom("thread:"), ErrInvalidRoom)
	req.ErrorIs(ValidateRoom("cohort:"), ErrInvalidRoom)
	req.ErrorIs(ValidateRoom("lounge"), ErrInvalidRoom)
}

func TestMarshalFrame(t *testing.T) {
	req := require.New(t)

	ev := Event{Kind: KindTypingStart, Data: TypingPayload{RoomID: "thread:1", UserID: "u1"}}
	raw, err := ev.Marshal()
	req.NoError(err)

	var frame struct {
		Event string        `json:"event"`
		Data  TypingPayload `json:"data"`
	}
	req.NoError(json.Unmarshal(raw, &frame))
	req.Equal("user-typing", frame.Event)
	req.Equal("thread:1", frame.Data.RoomID)
	req.Equal("u1", frame.Data.UserID)
}
