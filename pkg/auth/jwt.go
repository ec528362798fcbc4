package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type ctxKey int

const (
	userKey    ctxKey = 1
	sessionKey ctxKey = 2
)

// WithUser adds a user ID to the context
func WithUser(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, userKey, uid)
}

// UserID extracts the user ID from the context, defaults to "anon"
func UserID(ctx context.Context) string {
	v := ctx.Value(userKey)
	if v == nil {
		return "anon"
	}
	return v.(string)
}

// WithSession adds the session token id to the context
func WithSession(ctx context.Context, jti string) context.Context {
	return context.WithValue(ctx, sessionKey, jti)
}

// SessionID extracts the session token id from the context, if any
func SessionID(ctx context.Context) string {
	v := ctx.Value(sessionKey)
	if v == nil {
		return ""
	}
	return v.(string)
}

// Claims are the verified fields this service cares about: who the token
// belongs to and which issued session it is, so logout can revoke it.
type Claims struct {
	UserID  string
	TokenID string
}

// JWT wraps a signing secret for issuing/verifying tokens
type JWT struct{ secret []byte }

// New creates a new JWT signer/verifier.
func New(secret string) *JWT { return &JWT{secret: []byte(secret)} }

// Verify checks a token and returns its sub + jti claims
func (j *JWT) Verify(tok string) (Claims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tok, claims, func(token *jwt.Token) (interface{}, error) {
		return j.secret, nil
	})
	if err != nil {
		return Claims{}, err
	}
	uid, _ := claims["sub"].(string)
	if uid == "" {
		return Claims{}, errors.New("no sub")
	}
	jti, _ := claims["jti"].(string)
	return Claims{UserID: uid, TokenID: jti}, nil
}

// Sign creates a token for uid with the given TTL. The jti is returned
// alongside so the caller can record the session for later revocation.
func (j *JWT) Sign(uid string, ttl time.Duration) (token, jti string, err error) {
	if uid == "" {
		return "", "", errors.New("empty uid")
	}
	jti = uuid.NewString()
	claims := jwt.MapClaims{
		"sub": uid,
		"jti": jti,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = t.SignedString(j.secret)
	return token, jti, err
}
