package live

import (
	"hash/fnv"
	"sync"
)

const shardCount = 16

func shardFor(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % shardCount
}

// SessionRegistry maps identity -> set of live connections. A user with
// several devices holds several conns under one identity. Shards keep
// mutations on distinct identities from contending; operations on the same
// identity serialize on its shard lock.
type SessionRegistry struct {
	shards [shardCount]registryShard
}

type registryShard struct {
	mu    sync.RWMutex
	conns map[string]map[*Conn]struct{}
}

func NewSessionRegistry() *SessionRegistry {
	r := &SessionRegistry{}
	for i := range r.shards {
		r.shards[i].conns = map[string]map[*Conn]struct{}{}
	}
	return r
}

// Register inserts the conn into its identity's set, creating the set on
// first connection. Idempotent.
func (r *SessionRegistry) Register(c *Conn) {
	s := &r.shards[shardFor(c.Identity)]
	s.mu.Lock()
	set := s.conns[c.Identity]
	if set == nil {
		set = map[*Conn]struct{}{}
		s.conns[c.Identity] = set
	}
	set[c] = struct{}{}
	s.mu.Unlock()
}

// Unregister removes the conn and drops the identity entry once its last
// connection is gone. Returns the identity so the caller can clean room
// memberships as well.
func (r *SessionRegistry) Unregister(c *Conn) string {
	s := &r.shards[shardFor(c.Identity)]
	s.mu.Lock()
	if set := s.conns[c.Identity]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(s.conns, c.Identity)
		}
	}
	s.mu.Unlock()
	return c.Identity
}

// IsOnline reports whether the identity has at least one live connection.
func (r *SessionRegistry) IsOnline(identity string) bool {
	s := &r.shards[shardFor(identity)]
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns[identity]) > 0
}

// ConnectionCount returns the number of live connections for an identity.
func (r *SessionRegistry) ConnectionCount(identity string) int {
	s := &r.shards[shardFor(identity)]
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns[identity])
}

// snapshot copies the identity's current connection set for fanout, so
// in-flight deliveries are unaffected by concurrent register/unregister.
func (r *SessionRegistry) snapshot(identity string) []*Conn {
	s := &r.shards[shardFor(identity)]
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := s.conns[identity]
	if len(set) == 0 {
		return nil
	}
	out := make([]*Conn, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}
