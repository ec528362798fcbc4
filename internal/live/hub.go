package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aminefth/kidsclub-sub000/internal/event"
	"github.com/aminefth/kidsclub-sub000/pkg/metrics"
	"nhooyr.io/websocket"
)

// TokenVerifier resolves a bearer credential to a user id. Injected so the
// hub never implements crypto or policy itself; a failed verify rejects the
// handshake before any state exists.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

type Options struct {
	SendBuffer int                // outbound frames buffered per conn
	Policy     BackpressurePolicy // what to do with a slow consumer
}

// Hub owns every connection's lifecycle: handshake, registration, room
// membership, and teardown. It is the only component that mutates the
// session registry and room table, which is what keeps invariant cleanup
// (no dangling membership after disconnect) in one place.
type Hub struct {
	log      *slog.Logger
	verifier TokenVerifier
	sessions *SessionRegistry
	rooms    *RoomTable
	dispatch *Dispatcher
	opts     Options
}

func NewHub(log *slog.Logger, verifier TokenVerifier, opts Options) *Hub {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 64
	}
	sessions := NewSessionRegistry()
	rooms := NewRoomTable()
	return &Hub{
		log:      log,
		verifier: verifier,
		sessions: sessions,
		rooms:    rooms,
		dispatch: NewDispatcher(log, sessions, rooms, opts.Policy),
		opts:     opts,
	}
}

// EmitToRoom implements Emitter for collaborator services.
func (h *Hub) EmitToRoom(room string, ev event.Event) { h.dispatch.EmitToRoom(room, ev) }

// EmitToIdentity implements Emitter for collaborator services.
func (h *Hub) EmitToIdentity(userID string, ev event.Event) { h.dispatch.EmitToIdentity(userID, ev) }

// IsOnline reports whether a user has any live connection.
func (h *Hub) IsOnline(userID string) bool { return h.sessions.IsOnline(userID) }

// ConnectionCount returns the user's live connection count.
func (h *Hub) ConnectionCount(userID string) int { return h.sessions.ConnectionCount(userID) }

// RoomCount returns the number of non-empty rooms.
func (h *Hub) RoomCount() int { return h.rooms.RoomCount() }

// connect registers an authenticated conn and auto-joins its identity room,
// the personal channel that notifications are pushed down.
func (h *Hub) connect(identity string) *Conn {
	c := newConn(identity, h.opts.SendBuffer)
	h.sessions.Register(c)

	personal := event.IdentityRoom(identity)
	c.mu.Lock()
	c.rooms[personal] = struct{}{}
	h.rooms.Join(personal, c)
	c.mu.Unlock()
	return c
}

// disconnect tears a conn down as one logical operation: stop accepting
// work, clear stuck typing signals, unregister, leave every joined room.
// After it returns the conn is unaddressable; repeated calls are no-ops.
func (h *Hub) disconnect(c *Conn) {
	c.beginClose()

	c.mu.Lock()
	rooms := make([]string, 0, len(c.rooms))
	for r := range c.rooms {
		rooms = append(rooms, r)
	}
	typing := make([]string, 0, len(c.typing))
	for r := range c.typing {
		typing = append(typing, r)
	}
	c.rooms = map[string]struct{}{}
	c.typing = map[string]struct{}{}
	c.mu.Unlock()

	// An abnormal disconnect must not leave peers believing this user is
	// still typing.
	for _, r := range typing {
		h.dispatch.EmitToRoomExcept(r, c, event.Event{
			Kind: event.KindTypingStop,
			Data: event.TypingPayload{RoomID: r, UserID: c.Identity},
		})
	}

	h.sessions.Unregister(c)
	for _, r := range rooms {
		h.rooms.Leave(r, c)
	}
}

// JoinRoom adds the conn to a client-requested room. Malformed names are
// rejected with no membership change; a conn in teardown refuses new joins.
func (h *Hub) JoinRoom(c *Conn, room string) error {
	if err := event.ValidateRoom(room); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() {
		return errConnClosed
	}
	c.rooms[room] = struct{}{}
	h.rooms.Join(room, c)
	return nil
}

// LeaveRoom removes the conn from a room it joined. A typing signal still
// pending in that room is cleared for the remaining members.
func (h *Hub) LeaveRoom(c *Conn, room string) {
	c.mu.Lock()
	_, wasTyping := c.typing[room]
	delete(c.typing, room)
	delete(c.rooms, room)
	h.rooms.Leave(room, c)
	c.mu.Unlock()

	if wasTyping {
		h.dispatch.EmitToRoomExcept(room, c, event.Event{
			Kind: event.KindTypingStop,
			Data: event.TypingPayload{RoomID: room, UserID: c.Identity},
		})
	}
}

// controlMsg is the inbound frame shape for client control actions.
type controlMsg struct {
	Action string `json:"action"`
	RoomID string `json:"roomId"`
}

type errorFrame struct {
	Message string `json:"message"`
}

// handleControl processes one inbound control message. Errors are reported
// back on the conn's own channel and never end the session.
func (h *Hub) handleControl(c *Conn, raw []byte) {
	var msg controlMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.sendError(c, "malformed control message")
		return
	}

	switch msg.Action {
	case "join-room":
		if err := h.JoinRoom(c, msg.RoomID); err != nil {
			h.log.Debug("room.join_rejected", "conn", c.ID, "room", msg.RoomID, "err", err)
			h.sendError(c, "invalid room name")
		}
	case "leave-room":
		h.LeaveRoom(c, msg.RoomID)
	case "typing-start":
		h.StartTyping(c, msg.RoomID)
	case "typing-stop":
		h.StopTyping(c, msg.RoomID)
	default:
		h.sendError(c, "unknown action")
	}
}

func (h *Hub) sendError(c *Conn, msg string) {
	frame, _ := json.Marshal(event.Frame{Event: "error", Data: errorFrame{Message: msg}})
	_ = c.enqueue(frame)
}

// bearerToken pulls the credential from the Authorization header or, for
// browser websocket clients that cannot set headers, the token query param.
func bearerToken(r *http.Request) string {
	if b := r.Header.Get("Authorization"); strings.HasPrefix(b, "Bearer ") {
		return strings.TrimPrefix(b, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// ServeWS handles a new /ws connection: authenticate, upgrade, register,
// then loop on inbound control messages until the transport closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tok := bearerToken(r)
	if tok == "" {
		http.Error(w, "no token", http.StatusUnauthorized)
		return
	}
	uid, err := h.verifier.Verify(ctx, tok)
	if err != nil {
		h.log.Debug("ws.auth_rejected", "err", err)
		http.Error(w, "bad token", http.StatusUnauthorized)
		return
	}

	ws, err := Accept(w, r)
	if err != nil {
		h.log.Error("ws.accept", "err", err)
		return
	}

	c := h.connect(uid)
	metrics.ConnectionsOpen.Inc()
	h.log.Info("ws.connected", "conn", c.ID, "identity", uid)

	go c.writeLoop(ctx, ws)

	// A force-close (slow consumer) only flips the conn's flag; closing the
	// transport here is what unblocks the read loop below.
	go func() {
		select {
		case <-c.done:
			_ = ws.Close(websocket.StatusPolicyViolation, "slow consumer")
		case <-ctx.Done():
		}
	}()

	for {
		raw, ok := readFrame(ctx, ws)
		if !ok {
			break
		}
		h.handleControl(c, raw)
	}

	h.disconnect(c)
	_ = ws.Close(websocket.StatusNormalClosure, "bye")
	metrics.ConnectionsOpen.Dec()
	h.log.Info("ws.disconnected", "conn", c.ID, "identity", uid)
}
