package live

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aminefth/kidsclub-sub000/internal/event"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type wireFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// recvFrame pops the next buffered frame; delivery is synchronous so an
// empty buffer means the event was never enqueued.
func recvFrame(t *testing.T, c *Conn) wireFrame {
	t.Helper()
	select {
	case raw := <-c.out:
		var f wireFrame
		require.NoError(t, json.Unmarshal(raw, &f))
		return f
	default:
		t.Fatal("no frame buffered")
		return wireFrame{}
	}
}

func requireNoFrames(t *testing.T, c *Conn) {
	t.Helper()
	select {
	case raw := <-c.out:
		t.Fatalf("unexpected frame: %s", raw)
	default:
	}
}

func newTestDispatcher(policy BackpressurePolicy) (*Dispatcher, *SessionRegistry, *RoomTable) {
	sessions := NewSessionRegistry()
	rooms := NewRoomTable()
	return NewDispatcher(testLogger(), sessions, rooms, policy), sessions, rooms
}

func commentEvent(id string) event.Event {
	return event.Event{
		Kind: event.KindNewComment,
		Data: event.CommentPayload{ID: id, BlogID: "42"},
	}
}

func TestDispatcher_RoomFanout(t *testing.T) {
	req := require.New(t)
	d, _, rooms := newTestDispatcher(Disconnect)

	a := newConn("u1", 8)
	b := newConn("u2", 8)
	outsider := newConn("u3", 8)
	rooms.Join("thread:42", a)
	rooms.Join("thread:42", b)
	rooms.Join("thread:99", outsider)

	d.EmitToRoom("thread:42", commentEvent("1"))

	// Exactly the members at dispatch time receive it
	req.Equal("new-comment", recvFrame(t, a).Event)
	req.Equal("new-comment", recvFrame(t, b).Event)
	requireNoFrames(t, outsider)
}

func TestDispatcher_LateJoinerMissesEarlierEvent(t *testing.T) {
	d, _, rooms := newTestDispatcher(Disconnect)

	a := newConn("u1", 8)
	rooms.Join("thread:42", a)
	d.EmitToRoom("thread:42", commentEvent("1"))

	// C joins after the snapshot was taken
	c := newConn("u3", 8)
	rooms.Join("thread:42", c)
	requireNoFrames(t, c)
	recvFrame(t, a)

	// The next emit reaches both
	d.EmitToRoom("thread:42", commentEvent("2"))
	recvFrame(t, a)
	recvFrame(t, c)
}

func TestDispatcher_LeaverBeforeSnapshotGetsNothing(t *testing.T) {
	d, _, rooms := newTestDispatcher(Disconnect)

	a := newConn("u1", 8)
	b := newConn("u2", 8)
	rooms.Join("thread:42", a)
	rooms.Join("thread:42", b)
	rooms.Leave("thread:42", b)

	d.EmitToRoom("thread:42", commentEvent("1"))
	recvFrame(t, a)
	requireNoFrames(t, b)
}

func TestDispatcher_RoomLocalFIFO(t *testing.T) {
	req := require.New(t)
	d, _, rooms := newTestDispatcher(Disconnect)

	a := newConn("u1", 8)
	b := newConn("u2", 8)
	rooms.Join("thread:42", a)
	rooms.Join("thread:42", b)

	d.EmitToRoom("thread:42", commentEvent("1"))
	d.EmitToRoom("thread:42", commentEvent("2"))
	d.EmitToRoom("thread:42", commentEvent("3"))

	// Every member observes the caller's emit order
	for _, c := range []*Conn{a, b} {
		var got []string
		for i := 0; i < 3; i++ {
			var p event.CommentPayload
			req.NoError(json.Unmarshal(recvFrame(t, c).Data, &p))
			got = append(got, p.ID)
		}
		req.Equal([]string{"1", "2", "3"}, got)
	}
}

func TestDispatcher_IdentityFanoutHitsAllDevices(t *testing.T) {
	d, sessions, _ := newTestDispatcher(Disconnect)

	phone := newConn("u1", 8)
	laptop := newConn("u1", 8)
	other := newConn("u2", 8)
	sessions.Register(phone)
	sessions.Register(laptop)
	sessions.Register(other)

	d.EmitToIdentity("u1", event.Event{
		Kind: event.KindNewNotification,
		Data: event.NotificationPayload{ID: "n1"},
	})

	recvFrame(t, phone)
	recvFrame(t, laptop)
	requireNoFrames(t, other)
}

func TestDispatcher_ExceptSkipsOriginator(t *testing.T) {
	req := require.New(t)
	d, _, rooms := newTestDispatcher(Disconnect)

	a := newConn("u1", 8)
	b := newConn("u2", 8)
	rooms.Join("thread:42", a)
	rooms.Join("thread:42", b)

	d.EmitToRoomExcept("thread:42", a, event.Event{
		Kind: event.KindTypingStart,
		Data: event.TypingPayload{RoomID: "thread:42", UserID: "u1"},
	})

	requireNoFrames(t, a)
	req.Equal("user-typing", recvFrame(t, b).Event)
}

func TestDispatcher_ClosedConnSkippedSilently(t *testing.T) {
	d, _, rooms := newTestDispatcher(Disconnect)

	a := newConn("u1", 8)
	b := newConn("u2", 8)
	rooms.Join("thread:42", a)
	rooms.Join("thread:42", b)

	// A is mid-teardown but still in the snapshot
	a.beginClose()
	d.EmitToRoom("thread:42", commentEvent("1"))

	requireNoFrames(t, a)
	recvFrame(t, b)
}

func TestDispatcher_SlowConsumerDropPolicy(t *testing.T) {
	req := require.New(t)
	d, _, rooms := newTestDispatcher(DropEvent)

	slow := newConn("u1", 1)
	healthy := newConn("u2", 8)
	rooms.Join("thread:42", slow)
	rooms.Join("thread:42", healthy)

	d.EmitToRoom("thread:42", commentEvent("1"))
	d.EmitToRoom("thread:42", commentEvent("2")) // overflows slow's buffer

	// Slow conn lost the second event but stays open
	recvFrame(t, slow)
	requireNoFrames(t, slow)
	req.False(slow.closed.Load())

	// The healthy member got both
	recvFrame(t, healthy)
	recvFrame(t, healthy)
}

func TestDispatcher_SlowConsumerDisconnectPolicy(t *testing.T) {
	req := require.New(t)
	d, _, rooms := newTestDispatcher(Disconnect)

	slow := newConn("u1", 1)
	healthy := newConn("u2", 8)
	rooms.Join("thread:42", slow)
	rooms.Join("thread:42", healthy)

	d.EmitToRoom("thread:42", commentEvent("1"))
	d.EmitToRoom("thread:42", commentEvent("2"))

	// The slow conn is force-closed; the rest of the room is unaffected
	req.True(slow.closed.Load())
	recvFrame(t, healthy)
	recvFrame(t, healthy)
}
