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

type CommentsAPI struct {
	DB   *store.Postgres
	Live live.Emitter
}

type createCommentReq struct {
	Body string `json:"body"`
}

type reactionReq struct {
	Reaction string `json:"reaction"`
}

type commentResponse struct {
	ID        string    `json:"id"`
	BlogID    string    `json:"blogId"`
	AuthorID  string    `json:"authorId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

func commentDTO(c store.Comment) commentResponse {
	return commentResponse{ID: c.ID, BlogID: c.BlogID, AuthorID: c.AuthorID, Body: c.Body, CreatedAt: c.CreatedAt}
}

// Create adds a comment to a blog, fans it out to the thread room, and
// pushes a notification down the author's personal channel.
func (a *CommentsAPI) Create(w http.ResponseWriter, r *http.Request) {
	blogID := r.PathValue("id")
	var req createCommentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Body == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	blog, err := a.DB.GetBlog(r.Context(), blogID)
	if err != nil {
		http.Error(w, "blog not found", http.StatusNotFound)
		return
	}

	uid := auth.UserID(r.Context())
	c, err := a.DB.CreateComment(r.Context(), blogID, uid, req.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	a.Live.EmitToRoom(event.ThreadRoom(blogID), event.Event{
		Kind: event.KindNewComment,
		Data: event.CommentPayload{ID: c.ID, BlogID: c.BlogID, AuthorID: c.AuthorID, Body: c.Body, Created: c.CreatedAt},
	})

	// Tell the blog author, unless they commented on their own post
	if blog.AuthorID != uid {
		n, err := a.DB.CreateNotification(r.Context(), blog.AuthorID, "comment", "New comment on "+blog.Title, blogID)
		if err == nil {
			a.Live.EmitToIdentity(blog.AuthorID, event.Event{
				Kind: event.KindNewNotification,
				Data: event.NotificationPayload{ID: n.ID, Kind: n.Kind, Message: n.Message, BlogID: n.BlogID, Created: n.CreatedAt},
			})
		}
	}

	writeJSON(w, commentDTO(c))
}

// List returns a blog's comments
func (a *CommentsAPI) List(w http.ResponseWriter, r *http.Request) {
	blogID := r.PathValue("id")
	comments, err := a.DB.ListComments(r.Context(), blogID, 200, 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]commentResponse, 0, len(comments))
	for _, c := range comments {
		resp = append(resp, commentDTO(c))
	}
	writeJSON(w, resp)
}

// React broadcasts a reaction on a comment to its thread room. Reactions
// are ephemeral UI state and are not persisted.
func (a *CommentsAPI) React(w http.ResponseWriter, r *http.Request) {
	commentID := r.PathValue("id")
	var req reactionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reaction == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	c, err := a.DB.GetComment(r.Context(), commentID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	a.Live.EmitToRoom(event.ThreadRoom(c.BlogID), event.Event{
		Kind: event.KindCommentReaction,
		Data: event.ReactionPayload{CommentID: c.ID, BlogID: c.BlogID, Reaction: req.Reaction, UserID: auth.UserID(r.Context())},
	})

	w.WriteHeader(http.StatusAccepted)
}
