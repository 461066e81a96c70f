package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type countResponse struct {
	Count int `json:"count"`
}

type updatedResponse struct {
	Updated int `json:"updated"`
}

// listNotifications answers GET /notifications?limit=, most recent first.
func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, r, s.log, ErrInvalidLimit)
			return
		}
		limit = n
	}

	items, err := s.notifications.List(r.Context(), caller(r).UserID(), limit)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeList(w, items)
}

func (s *Server) unreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := s.notifications.UnreadCount(r.Context(), caller(r).UserID())
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeData(w, http.StatusOK, countResponse{Count: n})
}

// markRead answers PUT /notifications/{id}/read. Marking a read record
// again succeeds.
func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	n, err := s.notifications.MarkRead(r.Context(), caller(r).UserID(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeData(w, http.StatusOK, n)
}

func (s *Server) markAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := s.notifications.MarkAllRead(r.Context(), caller(r).UserID())
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeData(w, http.StatusOK, updatedResponse{Updated: n})
}
