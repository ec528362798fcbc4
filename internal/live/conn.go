package live

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
)

// Conn is one live client connection. It is created by the hub after a
// successful handshake and destroyed by the hub on disconnect; nothing else
// owns it. A conn belongs to exactly one identity for its whole lifetime.
type Conn struct {
	ID        string
	Identity  string
	CreatedAt time.Time

	out    chan []byte
	done   chan struct{}
	closed atomic.Bool

	mu     sync.Mutex
	rooms  map[string]struct{} // rooms this conn has joined
	typing map[string]struct{} // rooms with an unacked typing-start
}

func newConn(identity string, buffer int) *Conn {
	return &Conn{
		ID:        uuid.NewString(),
		Identity:  identity,
		CreatedAt: time.Now(),
		out:       make(chan []byte, buffer),
		done:      make(chan struct{}),
		rooms:     map[string]struct{}{},
		typing:    map[string]struct{}{},
	}
}

// enqueue offers a frame to the outbound buffer without blocking.
// errConnClosed means teardown already started; errBufferFull means the
// consumer is not keeping up and the backpressure policy decides its fate.
func (c *Conn) enqueue(frame []byte) error {
	if c.closed.Load() {
		return errConnClosed
	}
	select {
	case c.out <- frame:
		return nil
	default:
		return errBufferFull
	}
}

// beginClose marks the conn dead exactly once and wakes its write loop.
// Returns true for the caller that won; membership cleanup stays with the
// hub's teardown.
func (c *Conn) beginClose() bool {
	if !c.closed.CompareAndSwap(false, true) {
		return false
	}
	close(c.done)
	return true
}

// Accept upgrades HTTP to websocket (allow all origins)
func Accept(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  []string{"*"},
		CompressionMode: websocket.CompressionDisabled,
	})
}

// readFrame blocks until the next text/binary message.
// Returns false once the transport is closed.
func readFrame(ctx context.Context, ws *websocket.Conn) ([]byte, bool) {
	for {
		typ, data, err := ws.Read(ctx)
		if err != nil {
			return nil, false
		}
		if typ == websocket.MessageText || typ == websocket.MessageBinary {
			return data, true
		}
	}
}

// writeLoop drains the outbound buffer onto the transport and keeps the
// connection alive with periodic pings. Exits when the conn is closed or the
// request context ends.
func (c *Conn) writeLoop(ctx context.Context, ws *websocket.Conn) {
	t := time.NewTicker(20 * time.Second)
	defer t.Stop()

	for {
		select {
		case b := <-c.out:
			_ = ws.Write(ctx, websocket.MessageText, b)
		case <-t.C:
			_ = ws.Ping(ctx)
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}
