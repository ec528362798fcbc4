package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aminefth/kidsclub-sub000/internal/app"
)

// ErrSessionNotFound means the session was never issued, expired, or was
// revoked by logout.
var ErrSessionNotFound = errors.New("session not found")

// SessionCache keeps issued session tokens in redis with a TTL. It is an
// external collaborator of the live layer: the credential verifier reads
// it, the auth handlers write it, nothing in here knows about connections.
type SessionCache struct {
	rdb *redis.Client
	log *slog.Logger
}

// NewSessionCache connects to redis and verifies connectivity
func NewSessionCache(ctx context.Context, cfg app.Config, log *slog.Logger) (*SessionCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &SessionCache{rdb: rdb, log: log}, nil
}

// Put records a new session for a user, expiring after ttl.
func (s *SessionCache) Put(ctx context.Context, tokenID, userID string, ttl time.Duration) error {
	return s.rdb.Set(ctx, key(tokenID), userID, ttl).Err()
}

// UserFor returns the user id a session belongs to.
func (s *SessionCache) UserFor(ctx context.Context, tokenID string) (string, error) {
	uid, err := s.rdb.Get(ctx, key(tokenID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", err
	}
	return uid, nil
}

// Revoke deletes a session so its token stops authenticating immediately.
func (s *SessionCache) Revoke(ctx context.Context, tokenID string) error {
	n, err := s.rdb.Del(ctx, key(tokenID)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	s.log.Info("session.revoked", "tokenId", tokenID)
	return nil
}

// Close shuts down the redis connection
func (s *SessionCache) Close() { _ = s.rdb.Close() }

// key namespacing for session entries
func key(tokenID string) string { return "session:" + tokenID }
