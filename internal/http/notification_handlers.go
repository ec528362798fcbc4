package httpx

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aminefth/kidsclub-sub000/internal/event"
	"github.com/aminefth/kidsclub-sub000/internal/live"
	"github.com/aminefth/kidsclub-sub000/internal/store"
	"github.com/aminefth/kidsclub-sub000/pkg/auth"
)

type NotificationsAPI struct {
	DB   *store.Postgres
	Live live.Emitter
}

type notificationResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	BlogID    string    `json:"blogId,omitempty"`
	Seen      bool      `json:"seen"`
	CreatedAt time.Time `json:"createdAt"`
}

// List returns the caller's notifications, newest first
func (a *NotificationsAPI) List(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	ns, err := a.DB.ListNotifications(r.Context(), uid, 100, 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]notificationResponse, 0, len(ns))
	for _, n := range ns {
		resp = append(resp, notificationResponse{
			ID: n.ID, Kind: n.Kind, Message: n.Message, BlogID: n.BlogID,
			Seen: n.Seen, CreatedAt: n.CreatedAt,
		})
	}
	writeJSON(w, resp)
}

// MarkSeen flags all the caller's notifications as read
func (a *NotificationsAPI) MarkSeen(w http.ResponseWriter, r *http.Request) {
	if err := a.DB.MarkNotificationsSeen(r.Context(), auth.UserID(r.Context())); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type cohortActivityReq struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// CohortActivity pushes an activity update to everyone watching a cohort
// channel, e.g. "the 6-8 group published a new gallery".
func (a *NotificationsAPI) CohortActivity(w http.ResponseWriter, r *http.Request) {
	tag := r.PathValue("tag")
	var req cohortActivityReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || tag == "" || req.Kind == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	a.Live.EmitToRoom(event.CohortRoom(tag), event.Event{
		Kind: event.KindCohortActivity,
		Data: event.CohortActivityPayload{Cohort: tag, Kind: req.Kind, Message: req.Message},
	})
	w.WriteHeader(http.StatusAccepted)
}
