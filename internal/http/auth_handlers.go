package httpx

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aminefth/kidsclub-sub000/internal/app"
	"github.com/aminefth/kidsclub-sub000/internal/cache"
	"github.com/aminefth/kidsclub-sub000/internal/store"
	"github.com/aminefth/kidsclub-sub000/pkg/auth"
)

type AuthAPI struct {
	DB       *store.Postgres
	JWT      *auth.JWT
	Sessions *cache.SessionCache
	Cfg      app.Config
}

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Cohort   string `json:"cohort"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type tokenResp struct {
	Token string      `json:"token"`
	User  authUserDTO `json:"user"`
}
type authUserDTO struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Cohort string `json:"cohort"`
}

// issue signs a token and records its session in the cache. The session
// entry is what logout revokes and what the live handshake checks.
func (a *AuthAPI) issue(r *http.Request, u store.User) (string, error) {
	tok, jti, err := a.JWT.Sign(u.ID, a.Cfg.SessionTTL)
	if err != nil {
		return "", err
	}
	if err := a.Sessions.Put(r.Context(), jti, u.ID, a.Cfg.SessionTTL); err != nil {
		return "", err
	}
	return tok, nil
}

// Register handles user signup and returns a JWT
func (a *AuthAPI) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	// Basic validation
	if len(req.Password) < 8 || !strings.Contains(req.Email, "@") {
		http.Error(w, "invalid email or weak password", http.StatusBadRequest)
		return
	}

	u, err := a.DB.CreateUser(r.Context(), req.Email, req.Password, req.Name, req.Cohort)
	if err != nil {
		http.Error(w, "email already in use", http.StatusConflict)
		return
	}

	tok, err := a.issue(r, u)
	if err != nil {
		http.Error(w, "token issue failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, tokenResp{Token: tok, User: userDTO(u)})
}

// Login verifies credentials and returns a JWT
func (a *AuthAPI) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}

	u, err := a.DB.VerifyUser(r.Context(), req.Email, req.Password)
	if err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	tok, err := a.issue(r, u)
	if err != nil {
		http.Error(w, "token issue failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, tokenResp{Token: tok, User: userDTO(u)})
}

// Logout revokes the current session; the token stops working everywhere,
// websocket handshakes included.
func (a *AuthAPI) Logout(w http.ResponseWriter, r *http.Request) {
	jti := auth.SessionID(r.Context())
	if jti == "" {
		http.Error(w, "no session", http.StatusBadRequest)
		return
	}
	if err := a.Sessions.Revoke(r.Context(), jti); err != nil {
		http.Error(w, "no session", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated user's ID
func (a *AuthAPI) Me(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	if uid == "anon" || uid == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, map[string]string{"userId": uid})
}

func userDTO(u store.User) authUserDTO {
	return authUserDTO{ID: u.ID, Email: u.Email, Name: u.Name, Cohort: u.Cohort}
}

// send JSON with proper headers
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
