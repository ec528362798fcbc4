package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// stubSessions remembers sessions by token id, like the redis cache does.
type stubSessions map[string]string

func (s stubSessions) UserFor(_ context.Context, tokenID string) (string, error) {
	uid, ok := s[tokenID]
	if !ok {
		return "", errors.New("session not found")
	}
	return uid, nil
}

func TestVerifier_AcceptsLiveSession(t *testing.T) {
	req := require.New(t)
	j := New("test-secret")
	sessions := stubSessions{}

	tok, jti, err := j.Sign("u1", time.Hour)
	req.NoError(err)
	sessions[jti] = "u1"

	v := NewVerifier(j, sessions)
	uid, err := v.Verify(context.Background(), tok)
	req.NoError(err)
	req.Equal("u1", uid)
}

func TestVerifier_RejectsRevokedSession(t *testing.T) {
	req := require.New(t)
	j := New("test-secret")
	sessions := stubSessions{}

	// Valid signature, but the session was never stored (or was revoked)
	tok, _, err := j.Sign("u1", time.Hour)
	req.NoError(err)

	v := NewVerifier(j, sessions)
	_, err = v.Verify(context.Background(), tok)
	req.Error(err)
}

func TestVerifier_RejectsSessionUserMismatch(t *testing.T) {
	req := require.New(t)
	j := New("test-secret")
	sessions := stubSessions{}

	tok, jti, err := j.Sign("u1", time.Hour)
	req.NoError(err)
	sessions[jti] = "someone-else"

	v := NewVerifier(j, sessions)
	_, err = v.Verify(context.Background(), tok)
	req.Error(err)
}
