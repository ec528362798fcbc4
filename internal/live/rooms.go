package live

import "sync"

// RoomTable maps room name -> set of member connections. Rooms are created
// lazily on first join and garbage-collected when their member set empties,
// so the table never accumulates dead room entries. Same sharding scheme as
// the session registry: per-key mutual exclusion, cross-key concurrency.
type RoomTable struct {
	shards [shardCount]roomShard
}

type roomShard struct {
	mu    sync.RWMutex
	rooms map[string]map[*Conn]struct{}
}

func NewRoomTable() *RoomTable {
	t := &RoomTable{}
	for i := range t.shards {
		t.shards[i].rooms = map[string]map[*Conn]struct{}{}
	}
	return t
}

// Join adds the conn to the room, creating the room if new.
func (t *RoomTable) Join(room string, c *Conn) {
	s := &t.shards[shardFor(room)]
	s.mu.Lock()
	set := s.rooms[room]
	if set == nil {
		set = map[*Conn]struct{}{}
		s.rooms[room] = set
	}
	set[c] = struct{}{}
	s.mu.Unlock()
}

// Leave removes the conn and deletes the room entry once empty.
func (t *RoomTable) Leave(room string, c *Conn) {
	s := &t.shards[shardFor(room)]
	s.mu.Lock()
	if set := s.rooms[room]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(s.rooms, room)
		}
	}
	s.mu.Unlock()
}

// MembersSnapshot returns a copy of the room's member set, never a live
// view. Broadcasts act on the snapshot taken at dispatch time: a conn
// joining mid-broadcast never sees an event emitted before it joined, and a
// conn leaving mid-broadcast is fully delivered to or fully skipped.
func (t *RoomTable) MembersSnapshot(room string) []*Conn {
	s := &t.shards[shardFor(room)]
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := s.rooms[room]
	if len(set) == 0 {
		return nil
	}
	out := make([]*Conn, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// MemberCount returns the current room size (0 for an absent room).
func (t *RoomTable) MemberCount(room string) int {
	s := &t.shards[shardFor(room)]
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms[room])
}

// RoomCount totals live rooms across shards, for metrics.
func (t *RoomTable) RoomCount() int {
	n := 0
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.RLock()
		n += len(s.rooms)
		s.mu.RUnlock()
	}
	return n
}
