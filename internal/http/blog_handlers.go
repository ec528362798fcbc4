package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aminefth/kidsclub-sub000/internal/event"
	"github.com/aminefth/kidsclub-sub000/internal/live"
	"github.com/aminefth/kidsclub-sub000/internal/store"
	"github.com/aminefth/kidsclub-sub000/pkg/auth"
)

// BlogsAPI is a CRUD collaborator of the live layer: every successful write
// is followed by an emit, and the emit is the only realtime touchpoint.
type BlogsAPI struct {
	DB   *store.Postgres
	Live live.Emitter
}

type createBlogReq struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Cohort string `json:"cohort"`
}

type updateBlogReq struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type blogResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Cohort    string    `json:"cohort"`
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func blogDTO(b store.Blog) blogResponse {
	return blogResponse{
		ID: b.ID, Title: b.Title, Body: b.Body, Cohort: b.Cohort,
		AuthorID: b.AuthorID, CreatedAt: b.CreatedAt, UpdatedAt: b.UpdatedAt,
	}
}

// Create handles new blog creation for the authenticated user.
func (a *BlogsAPI) Create(w http.ResponseWriter, r *http.Request) {
	var req createBlogReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	uid := auth.UserID(r.Context())
	b, err := a.DB.CreateBlog(r.Context(), req.Title, req.Body, req.Cohort, uid)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// New content is cohort activity for the author's cohort channel
	if b.Cohort != "" {
		a.Live.EmitToRoom(event.CohortRoom(b.Cohort), event.Event{
			Kind: event.KindCohortActivity,
			Data: event.CohortActivityPayload{Cohort: b.Cohort, Kind: "new-blog", Message: b.Title},
		})
	}

	writeJSON(w, blogDTO(b))
}

// List returns up to 100 blogs
func (a *BlogsAPI) List(w http.ResponseWriter, r *http.Request) {
	blogs, err := a.DB.ListBlogs(r.Context(), 100, 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]blogResponse, 0, len(blogs))
	for _, b := range blogs {
		resp = append(resp, blogDTO(b))
	}
	writeJSON(w, resp)
}

// Get fetches one blog by id
func (a *BlogsAPI) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}

	b, err := a.DB.GetBlog(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, blogDTO(b))
}

// Update edits a blog the caller owns, then notifies the thread room.
func (a *BlogsAPI) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req updateBlogReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	existing, err := a.DB.GetBlog(r.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	if existing.AuthorID != auth.UserID(r.Context()) {
		http.Error(w, "not the author", http.StatusForbidden)
		return
	}

	b, err := a.DB.UpdateBlog(r.Context(), id, req.Title, req.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Emit only after the write landed
	a.Live.EmitToRoom(event.ThreadRoom(b.ID), event.Event{
		Kind: event.KindBlogUpdated,
		Data: event.BlogUpdatePayload{BlogID: b.ID, Title: b.Title, Updated: b.UpdatedAt},
	})

	writeJSON(w, blogDTO(b))
}
