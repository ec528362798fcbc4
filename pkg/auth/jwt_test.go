package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundtrip(t *testing.T) {
	req := require.New(t)
	j := New("test-secret")

	tok, jti, err := j.Sign("u1", time.Hour)
	req.NoError(err)
	req.NotEmpty(jti)

	cl, err := j.Verify(tok)
	req.NoError(err)
	req.Equal("u1", cl.UserID)
	req.Equal(jti, cl.TokenID)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	req := require.New(t)
	j := New("test-secret")

	_, _, err := j.Sign("", time.Hour)
	req.Error(err)

	_, err = j.Verify("not-a-token")
	req.Error(err)

	// Signed with a different secret
	tok, _, err := New("other-secret").Sign("u1", time.Hour)
	req.NoError(err)
	_, err = j.Verify(tok)
	req.Error(err)

	// Expired
	tok, _, err = j.Sign("u1", -time.Minute)
	req.NoError(err)
	_, err = j.Verify(tok)
	req.Error(err)
}

func TestContextHelpers(t *testing.T) {
	req := require.New(t)

	ctx := context.Background()
	req.Equal("anon", UserID(ctx))
	req.Equal("", SessionID(ctx))

	ctx = WithSession(WithUser(ctx, "u1"), "jti-1")
	req.Equal("u1", UserID(ctx))
	req.Equal("jti-1", SessionID(ctx))
}
