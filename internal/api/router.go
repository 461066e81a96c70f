package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/notifyhub/internal/live"
	"github.com/dmitrymomot/notifyhub/internal/notification"
	"github.com/dmitrymomot/notifyhub/internal/push"
	"github.com/dmitrymomot/notifyhub/internal/social"
)

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	auth          *live.Authenticator
	notifications *notification.Service
	subscriptions push.SubscriptionStore
	social        *social.Service
	live          http.Handler
	health        http.Handler
	vapidKey      string
	log           *slog.Logger
	now           func() time.Time
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithLive mounts the live notification channel at /ws.
func WithLive(h http.Handler) Option {
	return func(s *Server) { s.live = h }
}

// WithHealth mounts h at /health.
func WithHealth(h http.Handler) Option {
	return func(s *Server) { s.health = h }
}

// WithSocial exposes the follow, content and engagement endpoints.
func WithSocial(svc *social.Service) Option {
	return func(s *Server) { s.social = svc }
}

// WithVAPIDPublicKey publishes the application server key clients need to subscribe.
func WithVAPIDPublicKey(key string) Option {
	return func(s *Server) { s.vapidKey = key }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

func NewServer(auth *live.Authenticator, notifications *notification.Service, subscriptions push.SubscriptionStore, opts ...Option) *Server {
	s := &Server{
		auth:          auth,
		notifications: notifications,
		subscriptions: subscriptions,
		log:           slog.Default(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID, middleware.RealIP, AccessLog(s.log), Recover(s.log))

	if s.health != nil {
		r.Method(http.MethodGet, "/health", s.health)
	}
	if s.live != nil {
		r.Method(http.MethodGet, "/ws", s.live)
	}

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(s.auth))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", s.listNotifications)
			r.Get("/unread-count", s.unreadCount)
			r.Put("/read-all", s.markAllRead)
			r.Put("/{id}/read", s.markRead)
		})

		r.Route("/push", func(r chi.Router) {
			r.Get("/vapid-public-key", s.vapidPublicKey)
			r.Get("/subscriptions", s.listSubscriptions)
			r.Post("/subscriptions", s.subscribe)
			r.Delete("/subscriptions", s.unsubscribe)
		})

		if s.social != nil {
			s.socialRoutes(r)
		}
	})

	return r
}
