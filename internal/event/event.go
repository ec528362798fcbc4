package event

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Kind is a closed set of server-pushed event types. Dispatch switches on
// Kind, never on wire strings, so a new kind that misses a case is a compile
// review item rather than a silent no-op.
type Kind int

const (
	KindNewComment Kind = iota
	KindCommentReaction
	KindNewNotification
	KindBlogUpdated
	KindCohortActivity
	KindTypingStart
	KindTypingStop
)

// wireNames maps kinds to the names clients see on the socket.
var wireNames = [...]string{
	KindNewComment:      "new-comment",
	KindCommentReaction: "comment-reaction",
	KindNewNotification: "new-notification",
	KindBlogUpdated:     "blog-updated",
	KindCohortActivity:  "kids-activity-update",
	KindTypingStart:     "user-typing",
	KindTypingStop:      "user-stopped-typing",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(wireNames) {
		return "unknown"
	}
	return wireNames[k]
}

// Event is one unit of fanout: a kind plus its kind-specific payload.
type Event struct {
	Kind Kind
	Data any
}

// Frame is the JSON envelope written to each receiving connection.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Marshal encodes the event once so a room broadcast serializes a single
// time regardless of member count.
func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(Frame{Event: e.Kind.String(), Data: e.Data})
}

// Payload types, one per kind.

type CommentPayload struct {
	ID       string    `json:"id"`
	BlogID   string    `json:"blogId"`
	AuthorID string    `json:"authorId"`
	Body     string    `json:"body"`
	Created  time.Time `json:"createdAt"`
}

type ReactionPayload struct {
	CommentID string `json:"commentId"`
	BlogID    string `json:"blogId"`
	Reaction  string `json:"reaction"`
	UserID    string `json:"userId"`
}

type NotificationPayload struct {
	ID      string    `json:"id"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	BlogID  string    `json:"blogId,omitempty"`
	Created time.Time `json:"createdAt"`
}

type BlogUpdatePayload struct {
	BlogID  string    `json:"blogId"`
	Title   string    `json:"title"`
	Updated time.Time `json:"updatedAt"`
}

type CohortActivityPayload struct {
	Cohort  string `json:"cohort"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type TypingPayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

// Room naming. Rooms are pure functions of their domain key so any
// collaborator can derive the same name without coordination.

const (
	threadPrefix   = "thread:"
	identityPrefix = "identity:"
	cohortPrefix   = "cohort:"
)

func ThreadRoom(blogID string) string { return threadPrefix + blogID }

func IdentityRoom(userID string) string { return identityPrefix + userID }

func CohortRoom(tag string) string { return cohortPrefix + tag }

// ErrInvalidRoom rejects malformed or unjoinable room names.
var ErrInvalidRoom = errors.New("invalid room name")

// ValidateRoom checks a client-supplied room name. Identity rooms are
// auto-joined at handshake and may not be joined explicitly, so a client may
// only name thread: and cohort: rooms.
func ValidateRoom(name string) error {
	switch {
	case strings.HasPrefix(name, threadPrefix) && len(name) > len(threadPrefix):
		return nil
	case strings.HasPrefix(name, cohortPrefix) && len(name) > len(cohortPrefix):
		return nil
	default:
		return ErrInvalidRoom
	}
}
