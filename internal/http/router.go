package httpx

import (
	"log/slog"
	"net/http"

	"github.com/aminefth/kidsclub-sub000/internal/app"
	"github.com/aminefth/kidsclub-sub000/internal/cache"
	"github.com/aminefth/kidsclub-sub000/internal/live"
	"github.com/aminefth/kidsclub-sub000/internal/store"
	"github.com/aminefth/kidsclub-sub000/pkg/auth"
	"github.com/aminefth/kidsclub-sub000/pkg/metrics"
)

// NewRouter wires up all HTTP routes, middleware, and handlers
func NewRouter(cfg app.Config, logger *slog.Logger, hub *live.Hub, db *store.Postgres, sessions *cache.SessionCache, j *auth.JWT, verifier *auth.Verifier) http.Handler {
	mw := NewMiddleware(cfg, verifier)

	authAPI := &AuthAPI{DB: db, JWT: j, Sessions: sessions, Cfg: cfg}
	blogsAPI := &BlogsAPI{DB: db, Live: hub}
	commentsAPI := &CommentsAPI{DB: db, Live: hub}
	notifsAPI := &NotificationsAPI{DB: db, Live: hub}

	mux := http.NewServeMux()

	// Health / readiness / metrics
	mux.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/readyz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/metrics", metrics.Handler())

	// WebSocket endpoint (authenticates its own handshake)
	mux.Handle("/ws", http.HandlerFunc(hub.ServeWS))

	// Auth endpoints
	mux.Handle("/api/auth/register", http.HandlerFunc(authAPI.Register))
	mux.Handle("/api/auth/login", http.HandlerFunc(authAPI.Login))
	mux.Handle("/api/auth/logout", mw.Auth(http.HandlerFunc(authAPI.Logout)))
	mux.Handle("/api/auth/me", mw.Auth(http.HandlerFunc(authAPI.Me)))

	// Blog endpoints (JWT-protected)
	mux.Handle("/api/blogs", mw.Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			blogsAPI.Create(w, r)
			return
		}
		if r.Method == http.MethodGet {
			blogsAPI.List(w, r)
			return
		}
		http.NotFound(w, r)
	})))
	mux.Handle("GET /api/blogs/{id}", mw.Auth(http.HandlerFunc(blogsAPI.Get)))
	mux.Handle("PUT /api/blogs/{id}", mw.Auth(http.HandlerFunc(blogsAPI.Update)))

	// Comments + reactions
	mux.Handle("POST /api/blogs/{id}/comments", mw.Auth(http.HandlerFunc(commentsAPI.Create)))
	mux.Handle("GET /api/blogs/{id}/comments", mw.Auth(http.HandlerFunc(commentsAPI.List)))
	mux.Handle("POST /api/comments/{id}/reactions", mw.Auth(http.HandlerFunc(commentsAPI.React)))

	// Notifications + cohort activity
	mux.Handle("GET /api/notifications", mw.Auth(http.HandlerFunc(notifsAPI.List)))
	mux.Handle("POST /api/notifications/seen", mw.Auth(http.HandlerFunc(notifsAPI.MarkSeen)))
	mux.Handle("POST /api/cohorts/{tag}/activity", mw.Auth(http.HandlerFunc(notifsAPI.CohortActivity)))

	// CORS + rate limit applied globally
	return mw.Wrap(mux)
}
