package live

import "github.com/aminefth/kidsclub-sub000/internal/event"

// Typing signals are ephemeral: nothing is persisted, delivery is
// best-effort, and the originating connection never hears its own signal.
// The hub tracks which rooms a conn is typing in only so the signal can be
// cleared on leave or disconnect.

// StartTyping announces the conn's user as typing to the other members of a
// room the conn belongs to. Ignored for rooms the conn never joined.
func (h *Hub) StartTyping(c *Conn, room string) {
	c.mu.Lock()
	if _, member := c.rooms[room]; !member {
		c.mu.Unlock()
		return
	}
	c.typing[room] = struct{}{}
	c.mu.Unlock()

	h.dispatch.EmitToRoomExcept(room, c, event.Event{
		Kind: event.KindTypingStart,
		Data: event.TypingPayload{RoomID: room, UserID: c.Identity},
	})
}

// StopTyping clears a previously announced typing signal. A stop without a
// matching start is a no-op.
func (h *Hub) StopTyping(c *Conn, room string) {
	c.mu.Lock()
	_, wasTyping := c.typing[room]
	delete(c.typing, room)
	c.mu.Unlock()
	if !wasTyping {
		return
	}

	h.dispatch.EmitToRoomExcept(room, c, event.Event{
		Kind: event.KindTypingStop,
		Data: event.TypingPayload{RoomID: room, UserID: c.Identity},
	})
}
