package live

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoomTable_JoinLeave(t *testing.T) {
	req := require.New(t)
	rt := NewRoomTable()

	a := newConn("u1", 8)
	b := newConn("u2", 8)

	// Rooms spring into existence on first join
	req.Equal(0, rt.RoomCount())
	rt.Join("thread:1", a)
	rt.Join("thread:1", b)
	req.Equal(1, rt.RoomCount())
	req.Equal(2, rt.MemberCount("thread:1"))

	rt.Leave("thread:1", a)
	req.Equal(1, rt.MemberCount("thread:1"))

	// The room entry is collected once the last member leaves
	rt.Leave("thread:1", b)
	req.Equal(0, rt.RoomCount())
	req.Equal(0, rt.MemberCount("thread:1"))
}

func TestRoomTable_LeaveUnknownRoomIsNoop(t *testing.T) {
	rt := NewRoomTable()
	rt.Leave("thread:nope", newConn("u1", 8))
	require.Equal(t, 0, rt.RoomCount())
}

func TestRoomTable_SnapshotUnaffectedByLaterMutation(t *testing.T) {
	req := require.New(t)
	rt := NewRoomTable()

	a := newConn("u1", 8)
	b := newConn("u2", 8)
	rt.Join("thread:1", a)
	rt.Join("thread:1", b)

	snap := rt.MembersSnapshot("thread:1")
	req.Len(snap, 2)

	// A join and a leave after the snapshot was taken change the room,
	// not the snapshot
	c := newConn("u3", 8)
	rt.Join("thread:1", c)
	rt.Leave("thread:1", a)

	req.Len(snap, 2)
	req.Equal(2, rt.MemberCount("thread:1"))
}

func TestRoomTable_SameNameSameRoom(t *testing.T) {
	req := require.New(t)
	rt := NewRoomTable()

	a := newConn("u1", 8)
	b := newConn("u2", 8)
	rt.Join("cohort:6-8", a)
	rt.Join("cohort:6-8", b)

	// Two joins with the same computed name reference one membership set
	req.Equal(1, rt.RoomCount())
	req.Len(rt.MembersSnapshot("cohort:6-8"), 2)
}
