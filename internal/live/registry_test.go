package live

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_MultiDevicePresence(t *testing.T) {
	req := require.New(t)
	reg := NewSessionRegistry()

	// Given one user with two devices
	a := newConn("u1", 8)
	b := newConn("u1", 8)
	reg.Register(a)
	reg.Register(b)

	req.True(reg.IsOnline("u1"))
	req.Equal(2, reg.ConnectionCount("u1"))

	// When one device disconnects, the user stays online
	req.Equal("u1", reg.Unregister(a))
	req.True(reg.IsOnline("u1"))
	req.Equal(1, reg.ConnectionCount("u1"))

	// Only the last disconnect takes the user offline
	req.Equal("u1", reg.Unregister(b))
	req.False(reg.IsOnline("u1"))
	req.Equal(0, reg.ConnectionCount("u1"))
}

func TestRegistry_RegisterIdempotent(t *testing.T) {
	req := require.New(t)
	reg := NewSessionRegistry()

	c := newConn("u1", 8)
	reg.Register(c)
	reg.Register(c)

	req.Equal(1, reg.ConnectionCount("u1"))
}

func TestRegistry_UnregisterUnknownIsNoop(t *testing.T) {
	req := require.New(t)
	reg := NewSessionRegistry()

	c := newConn("u1", 8)
	req.Equal("u1", reg.Unregister(c))
	req.False(reg.IsOnline("u1"))
}

func TestRegistry_SnapshotIsACopy(t *testing.T) {
	req := require.New(t)
	reg := NewSessionRegistry()

	a := newConn("u1", 8)
	b := newConn("u1", 8)
	reg.Register(a)
	reg.Register(b)

	snap := reg.snapshot("u1")
	req.Len(snap, 2)

	// Mutations after the snapshot do not reach into it
	reg.Unregister(a)
	reg.Unregister(b)
	req.Len(snap, 2)
	req.Nil(reg.snapshot("u1"))
}

func TestRegistry_ConcurrentDistinctIdentities(t *testing.T) {
	req := require.New(t)
	reg := NewSessionRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			uid := fmt.Sprintf("user-%d", i)
			c := newConn(uid, 8)
			reg.Register(c)
			reg.Unregister(c)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 64; i++ {
		req.False(reg.IsOnline(fmt.Sprintf("user-%d", i)))
	}
}
