package auth

import (
	"context"
	"errors"
)

// SessionStore is the narrow slice of the session cache the verifier needs.
type SessionStore interface {
	// UserFor returns the user id recorded for a session token id, or an
	// error if the session is unknown, expired, or revoked.
	UserFor(ctx context.Context, tokenID string) (string, error)
}

// Verifier authenticates bearer credentials for the live layer: the token
// must carry a valid signature and name a session still present in the
// cache. Tokens issued before a logout fail the second check.
type Verifier struct {
	jwt      *JWT
	sessions SessionStore
}

func NewVerifier(j *JWT, sessions SessionStore) *Verifier {
	return &Verifier{jwt: j, sessions: sessions}
}

// Verify resolves a token to a user id or fails with no side effects.
func (v *Verifier) Verify(ctx context.Context, token string) (string, error) {
	cl, err := v.VerifyClaims(ctx, token)
	return cl.UserID, err
}

// VerifyClaims is Verify for callers that also need the session id.
func (v *Verifier) VerifyClaims(ctx context.Context, token string) (Claims, error) {
	cl, err := v.jwt.Verify(token)
	if err != nil {
		return Claims{}, err
	}
	if cl.TokenID == "" {
		return Claims{}, errors.New("no session id")
	}
	uid, err := v.sessions.UserFor(ctx, cl.TokenID)
	if err != nil {
		return Claims{}, err
	}
	if uid != cl.UserID {
		return Claims{}, errors.New("session mismatch")
	}
	return cl, nil
}
