package live

import (
	"errors"
	"log/slog"

	"github.com/aminefth/kidsclub-sub000/internal/event"
	"github.com/aminefth/kidsclub-sub000/pkg/metrics"
)

var (
	errConnClosed = errors.New("connection closed")
	errBufferFull = errors.New("outbound buffer full")
)

// BackpressurePolicy decides what happens to a connection whose outbound
// buffer is full at delivery time.
type BackpressurePolicy int

const (
	// Disconnect force-closes the slow connection. Default: bounds memory
	// and stops one misbehaving client from accumulating queue.
	Disconnect BackpressurePolicy = iota
	// DropEvent drops the event for that connection only.
	DropEvent
)

// Emitter is the only surface collaborator services use after a successful
// write. They never touch the session registry or room table directly.
type Emitter interface {
	EmitToRoom(room string, ev event.Event)
	EmitToIdentity(userID string, ev event.Event)
}

// Dispatcher fans a typed event out to a membership snapshot. Delivery is
// at-most-once and fire-and-forget: no ack, no retry, no persistence of
// missed events. One member failing never aborts delivery to the rest.
type Dispatcher struct {
	log      *slog.Logger
	sessions *SessionRegistry
	rooms    *RoomTable
	policy   BackpressurePolicy
}

func NewDispatcher(log *slog.Logger, sessions *SessionRegistry, rooms *RoomTable, policy BackpressurePolicy) *Dispatcher {
	return &Dispatcher{log: log, sessions: sessions, rooms: rooms, policy: policy}
}

// EmitToRoom delivers the event to every conn in the room's snapshot.
// Sequential calls from one caller reach each member's buffer in call order
// (room-local FIFO); no ordering holds across rooms or across callers.
func (d *Dispatcher) EmitToRoom(room string, ev event.Event) {
	d.deliver(d.rooms.MembersSnapshot(room), nil, ev)
}

// EmitToRoomExcept is EmitToRoom minus one connection, used by the typing
// coordinator so the originator never echoes to itself.
func (d *Dispatcher) EmitToRoomExcept(room string, except *Conn, ev event.Event) {
	d.deliver(d.rooms.MembersSnapshot(room), except, ev)
}

// EmitToIdentity delivers to all of the identity's live connections.
func (d *Dispatcher) EmitToIdentity(userID string, ev event.Event) {
	d.deliver(d.sessions.snapshot(userID), nil, ev)
}

func (d *Dispatcher) deliver(conns []*Conn, except *Conn, ev event.Event) {
	if len(conns) == 0 {
		return
	}
	frame, err := ev.Marshal()
	if err != nil {
		d.log.Error("emit.marshal", "kind", ev.Kind.String(), "err", err)
		return
	}
	metrics.EventsEmitted.WithLabelValues(ev.Kind.String()).Inc()

	for _, c := range conns {
		if c == except {
			continue
		}
		switch err := c.enqueue(frame); {
		case err == nil:
		case errors.Is(err, errConnClosed):
			// Teardown already started; snapshot race, skip quietly.
			metrics.EventsDropped.WithLabelValues(ev.Kind.String(), "closed").Inc()
		case errors.Is(err, errBufferFull):
			d.slowConsumer(c, ev.Kind)
		}
	}
}

// slowConsumer applies the backpressure policy to one over-capacity conn.
// Either way, delivery to the remaining members continues unaffected.
func (d *Dispatcher) slowConsumer(c *Conn, kind event.Kind) {
	if d.policy == DropEvent {
		metrics.EventsDropped.WithLabelValues(kind.String(), "full").Inc()
		d.log.Warn("emit.drop", "conn", c.ID, "identity", c.Identity, "kind", kind.String())
		return
	}
	metrics.EventsDropped.WithLabelValues(kind.String(), "disconnect").Inc()
	if c.beginClose() {
		d.log.Warn("conn.force_close", "conn", c.ID, "identity", c.Identity, "reason", "slow consumer")
	}
}
