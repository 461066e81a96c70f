package api

import (
	"net/http"

	"github.com/dmitrymomot/notifyhub/internal/push"
)

type subscribeRequest struct {
	Endpoint string    `json:"endpoint"`
	Keys     push.Keys `json:"keys"`
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

type vapidResponse struct {
	PublicKey string `json:"publicKey"`
}

func (s *Server) vapidPublicKey(w http.ResponseWriter, r *http.Request) {
	if s.vapidKey == "" {
		writeError(w, r, s.log, ErrNotEnabled)
		return
	}
	writeData(w, http.StatusOK, vapidResponse{PublicKey: s.vapidKey})
}

func (s *Server) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.subscriptions.ListByRecipient(r.Context(), caller(r).UserID())
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeList(w, subs)
}

// subscribe stores the browser subscription of the caller. Subscribing the
// same endpoint again refreshes its keys.
func (s *Server) subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}

	sub := push.Subscription{
		RecipientID: caller(r).UserID(),
		Endpoint:    req.Endpoint,
		Keys:        req.Keys,
		CreatedAt:   s.now().UTC(),
	}
	if err := sub.Validate(); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	if err := s.subscriptions.Save(r.Context(), sub); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeData(w, http.StatusCreated, sub)
}

// unsubscribe removes an endpoint of the caller. The endpoint comes from the
// JSON body or the endpoint query parameter.
func (s *Server) unsubscribe(w http.ResponseWriter, r *http.Request) {
	endpoint := r.URL.Query().Get("endpoint")
	if endpoint == "" {
		var req unsubscribeRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, r, s.log, err)
			return
		}
		endpoint = req.Endpoint
	}
	if endpoint == "" {
		writeError(w, r, s.log, push.ErrInvalidSubscription)
		return
	}

	if err := s.subscriptions.Delete(r.Context(), caller(r).UserID(), endpoint); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
