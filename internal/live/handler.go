package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/notifyhub/internal/notification"
	"github.com/dmitrymomot/notifyhub/pkg/logger"
)

// Notifications is the part of the notification service the live channel uses.
type Notifications interface {
	List(ctx context.Context, recipientID string, limit int) ([]notification.Notification, error)
	MarkRead(ctx context.Context, recipientID, id string) (notification.Notification, error)
}

var (
	errClientGone   = errors.New("client closed the connection")
	errSessionEnded = errors.New("session closed by server")
)

// Handler serves the live channel over websocket.
type Handler struct {
	auth          *Authenticator
	registry      *Registry
	notifications Notifications
	cfg           Config
	log           *slog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

func WithHandlerConfig(cfg Config) HandlerOption {
	return func(h *Handler) {
		def := DefaultConfig()
		if cfg.Backlog <= 0 {
			cfg.Backlog = def.Backlog
		}
		if cfg.SendBuffer <= 0 {
			cfg.SendBuffer = def.SendBuffer
		}
		if cfg.PingInterval <= 0 {
			cfg.PingInterval = def.PingInterval
		}
		if cfg.WriteTimeout <= 0 {
			cfg.WriteTimeout = def.WriteTimeout
		}
		if cfg.ReadLimit <= 0 {
			cfg.ReadLimit = def.ReadLimit
		}
		h.cfg = cfg
	}
}

func NewHandler(auth *Authenticator, registry *Registry, notifications Notifications, opts ...HandlerOption) *Handler {
	h := &Handler{
		auth:          auth,
		registry:      registry,
		notifications: notifications,
		cfg:           DefaultConfig(),
		log:           slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := h.auth.AuthenticateRequest(r)
	if err != nil {
		h.log.DebugContext(r.Context(), "live connection rejected", slog.String("reason", Reason(err)))
		WriteUnauthorized(w, err)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.cfg.OriginPatterns})
	if err != nil {
		h.log.WarnContext(r.Context(), "websocket upgrade failed", logger.UserID(id.UserID()), logger.Error(err))
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(h.cfg.ReadLimit)

	if err := h.serve(r.Context(), conn, id); err != nil {
		switch {
		case errors.Is(err, errClientGone), errors.Is(err, errSessionEnded), errors.Is(err, context.Canceled):
		case errors.Is(err, ErrRegistryClosed):
			conn.Close(websocket.StatusGoingAway, "server shutting down")
		default:
			h.log.WarnContext(r.Context(), "live connection failed", logger.UserID(id.UserID()), logger.Error(err))
		}
	}
}

// serve runs the session until either side ends it. The writer owns the
// close handshake; the reader stops the writer when the client goes away.
func (h *Handler) serve(ctx context.Context, conn *websocket.Conn, id Identity) error {
	sess := NewSession(id, h.cfg.SendBuffer)
	if err := h.registry.Register(id, sess); err != nil {
		return err
	}
	defer h.registry.Unregister(id.UserID(), sess)
	defer sess.Close()

	// Registered before the backlog query so nothing created in between is
	// missed. The backlog is written ahead of the queued frames.
	if err := h.sendBacklog(ctx, conn, id); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var g errgroup.Group
	g.Go(func() error {
		err := h.writeLoop(ctx, conn, sess)
		closeConn(conn, err)
		return err
	})
	g.Go(func() error {
		defer cancel()
		return h.readLoop(ctx, conn, sess)
	})
	return g.Wait()
}

func closeConn(conn *websocket.Conn, err error) {
	switch {
	case errors.Is(err, errSessionEnded):
		conn.Close(websocket.StatusGoingAway, "server shutting down")
	case errors.Is(err, context.Canceled):
		conn.Close(websocket.StatusNormalClosure, "")
	default:
		conn.Close(websocket.StatusInternalError, "")
	}
}

func (h *Handler) sendBacklog(ctx context.Context, conn *websocket.Conn, id Identity) error {
	list, err := h.notifications.List(ctx, id.UserID(), h.cfg.Backlog)
	if err != nil {
		h.log.ErrorContext(ctx, "live backlog unavailable", logger.RecipientID(id.UserID()), logger.Error(err))
		return h.write(ctx, conn, ErrorFrame("backlog_unavailable", "could not load notifications", ""))
	}
	return h.write(ctx, conn, NotificationsFrame(list))
}

func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, sess *Session) error {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f, ok := <-sess.Out():
			if !ok {
				return errSessionEnded
			}
			if err := h.write(ctx, conn, f); err != nil {
				return err
			}
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, h.cfg.WriteTimeout)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				return fmt.Errorf("ping: %w", err)
			}
		}
	}
}

func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, sess *Session) error {
	for {
		var in inboundFrame
		if err := wsjson.Read(ctx, conn, &in); err != nil {
			if websocket.CloseStatus(err) != -1 || errors.Is(err, io.EOF) {
				return errClientGone
			}
			return err
		}
		h.handleInbound(ctx, sess, in)
	}
}

func (h *Handler) handleInbound(ctx context.Context, sess *Session, in inboundFrame) {
	recipient := sess.Identity().UserID()

	var reply Frame
	switch in.Event {
	case EventMarkRead:
		var data markReadData
		if err := json.Unmarshal(in.Data, &data); err != nil || data.NotificationID == "" {
			reply = ErrorFrame("bad_request", "notificationId is required", "")
			break
		}
		_, err := h.notifications.MarkRead(ctx, recipient, data.NotificationID)
		switch {
		case err == nil:
			reply = NotificationReadFrame(data.NotificationID)
		case errors.Is(err, notification.ErrNotFound):
			reply = ErrorFrame("not_found", "notification not found", data.NotificationID)
		case errors.Is(err, notification.ErrForbidden):
			reply = ErrorFrame("forbidden", "notification belongs to another recipient", data.NotificationID)
		default:
			h.log.ErrorContext(ctx, "live mark read failed",
				logger.RecipientID(recipient),
				logger.NotificationID(data.NotificationID),
				logger.Error(err))
			reply = ErrorFrame("internal", "could not mark notification as read", data.NotificationID)
		}
	default:
		reply = ErrorFrame("unknown_event", fmt.Sprintf("unsupported event %q", in.Event), "")
	}

	if err := sess.Send(reply); err != nil {
		h.log.WarnContext(ctx, "live reply dropped", logger.RecipientID(recipient), logger.Error(err))
	}
}

func (h *Handler) write(ctx context.Context, conn *websocket.Conn, f Frame) error {
	ctx, cancel := context.WithTimeout(ctx, h.cfg.WriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, f)
}

// WriteUnauthorized answers a failed authentication with 401 and the reason code.
func WriteUnauthorized(w http.ResponseWriter, err error) {
	reason := Reason(err)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Bearer error="invalid_token", error_description=%q`, reason))
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":  "unauthorized",
		"reason": reason,
	})
}
