package httpx

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/cors"

	"github.com/aminefth/kidsclub-sub000/internal/app"
	"github.com/aminefth/kidsclub-sub000/pkg/auth"
	"github.com/aminefth/kidsclub-sub000/pkg/ratelimit"
)

type Middleware struct {
	cors     *cors.Cors
	verifier *auth.Verifier
	rlimit   *ratelimit.Limiter
}

// NewMiddleware builds the shared middleware stack from config. The
// verifier checks both the token signature and the session cache, so a
// logged-out token is rejected here the same way the live layer rejects it.
func NewMiddleware(cfg app.Config, verifier *auth.Verifier) *Middleware {
	return &Middleware{
		cors: cors.New(cors.Options{
			AllowedOrigins:   cfg.CORSAllow,
			AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		}),
		verifier: verifier,
		rlimit:   ratelimit.New(30, time.Minute), // 30 req/min default
	}
}

// Wrap applies CORS + rate limiting to a handler
func (m *Middleware) Wrap(h http.Handler) http.Handler {
	return m.cors.Handler(m.rlimit.Middleware(h))
}

// Auth enforces bearer auth and adds user + session ids to the context
func (m *Middleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b := r.Header.Get("Authorization")
		if !strings.HasPrefix(b, "Bearer ") {
			http.Error(w, "no token", http.StatusUnauthorized)
			return
		}
		tok := strings.TrimPrefix(b, "Bearer ")
		cl, err := m.verifier.VerifyClaims(r.Context(), tok)
		if err != nil {
			http.Error(w, "bad token", http.StatusUnauthorized)
			return
		}
		// Session id rides along so logout can revoke the right entry
		ctx := auth.WithSession(auth.WithUser(r.Context(), cl.UserID), cl.TokenID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
