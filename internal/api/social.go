package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/notifyhub/internal/event"
	"github.com/dmitrymomot/notifyhub/internal/social"
)

type contentRequest struct {
	Anonymous bool `json:"anonymous"`
}

type commentRequest struct {
	Text string `json:"text"`
}

func (s *Server) socialRoutes(r chi.Router) {
	r.Route("/users/{id}", func(r chi.Router) {
		r.Post("/follow", s.follow)
		r.Delete("/follow", s.unfollow)
		r.Get("/stats", s.followStats)
		r.Get("/followers", s.followers)
	})

	for _, target := range []string{event.TargetPost, event.TargetReel} {
		r.Route("/"+target+"s", func(r chi.Router) {
			r.Post("/", s.createContent(target))
			r.Post("/{id}/likes", s.like(target))
			r.Post("/{id}/comments", s.comment(target))
			r.Post("/{id}/views", s.view(target))
		})
	}
}

func user(r *http.Request) social.User {
	id := caller(r)
	return social.User{ID: id.UserID(), Username: id.Username()}
}

func (s *Server) follow(w http.ResponseWriter, r *http.Request) {
	if err := s.social.Follow(r.Context(), user(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) unfollow(w http.ResponseWriter, r *http.Request) {
	if err := s.social.Unfollow(r.Context(), user(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) followStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.social.FollowStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeData(w, http.StatusOK, stats)
}

func (s *Server) followers(w http.ResponseWriter, r *http.Request) {
	ids, err := s.social.Followers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeList(w, ids)
}

func (s *Server) createContent(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contentRequest
		if r.ContentLength != 0 {
			if err := decode(w, r, &req); err != nil {
				writeError(w, r, s.log, err)
				return
			}
		}

		var (
			c   social.Content
			err error
		)
		if target == event.TargetReel {
			c, err = s.social.UploadReel(r.Context(), user(r), req.Anonymous)
		} else {
			c, err = s.social.CreatePost(r.Context(), user(r), req.Anonymous)
		}
		if err != nil {
			writeError(w, r, s.log, err)
			return
		}
		writeData(w, http.StatusCreated, c)
	}
}

func (s *Server) like(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.social.Like(r.Context(), user(r), target, chi.URLParam(r, "id")); err != nil {
			writeError(w, r, s.log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) comment(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req commentRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, r, s.log, err)
			return
		}
		c, err := s.social.Comment(r.Context(), user(r), target, chi.URLParam(r, "id"), req.Text)
		if err != nil {
			writeError(w, r, s.log, err)
			return
		}
		writeData(w, http.StatusCreated, c)
	}
}

func (s *Server) view(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.social.View(r.Context(), user(r), target, chi.URLParam(r, "id")); err != nil {
			writeError(w, r, s.log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
