package notification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/notifyhub/pkg/cache"
	"github.com/dmitrymomot/notifyhub/pkg/logger"
)

// Service is the entry point for reading and updating notifications.
type Service struct {
	store Store
	cache *cache.Cache
	log   *slog.Logger
	cfg   Config
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithCache caches unread counts. Without it every count hits the store.
func WithCache(c *cache.Cache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

func WithConfig(cfg Config) ServiceOption {
	return func(s *Service) {
		if cfg.DefaultLimit > 0 {
			s.cfg.DefaultLimit = cfg.DefaultLimit
		}
		if cfg.MaxLimit > 0 {
			s.cfg.MaxLimit = cfg.MaxLimit
		}
		if cfg.UnreadCountTTL > 0 {
			s.cfg.UnreadCountTTL = cfg.UnreadCountTTL
		}
	}
}

func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store: store,
		log:   slog.Default(),
		cfg: Config{
			DefaultLimit:   20,
			MaxLimit:       100,
			UnreadCountTTL: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Persist stores rows and returns the ones that were new.
//
// Rows that fail validation are logged and dropped; when none is valid
// Persist returns ErrInvalidRows, which retrying cannot fix. The rest are
// first written as one batch. If the batch fails they are retried one by
// one and failing rows are logged and skipped. Persist returns
// ErrNothingStored when rows were attempted and none could be written;
// duplicates of already stored rows are not failures.
func (s *Service) Persist(ctx context.Context, rows []Notification) ([]Notification, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	rows, err := s.valid(ctx, rows)
	if err != nil {
		return nil, err
	}

	created, err := s.store.CreateBatch(ctx, rows)
	if err != nil {
		s.log.WarnContext(ctx, "notification batch failed, retrying row by row",
			slog.Int("rows", len(rows)), logger.Error(err))

		created = created[:0]
		failed := 0
		for _, r := range rows {
			ok, err := s.store.Create(ctx, r)
			if err != nil {
				failed++
				s.log.ErrorContext(ctx, "notification row dropped",
					logger.NotificationID(r.ID),
					logger.RecipientID(r.RecipientID),
					logger.EventID(r.EventID),
					logger.Error(err),
				)
				continue
			}
			if ok {
				created = append(created, r)
			}
		}
		if failed == len(rows) {
			return nil, errors.Join(ErrNothingStored, err)
		}
	}

	s.invalidateUnread(ctx, created...)
	return created, nil
}

func (s *Service) valid(ctx context.Context, rows []Notification) ([]Notification, error) {
	var (
		out      []Notification
		firstErr error
	)
	for i, r := range rows {
		err := r.Validate()
		if err == nil {
			if out != nil {
				out = append(out, r)
			}
			continue
		}
		if out == nil {
			out = append(make([]Notification, 0, len(rows)), rows[:i]...)
		}
		if firstErr == nil {
			firstErr = err
		}
		s.log.ErrorContext(ctx, "invalid notification dropped",
			logger.NotificationID(r.ID),
			logger.RecipientID(r.RecipientID),
			logger.EventID(r.EventID),
			logger.Error(err),
		)
	}

	switch {
	case firstErr == nil:
		return rows, nil
	case len(out) == 0:
		return nil, errors.Join(ErrInvalidRows, firstErr)
	default:
		return out, nil
	}
}

// List returns the most recent notifications of recipientID. A non-positive
// limit selects the default; limits above the maximum are clamped.
func (s *Service) List(ctx context.Context, recipientID string, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	limit = min(limit, s.cfg.MaxLimit)
	return s.store.List(ctx, recipientID, ListOptions{Limit: limit})
}

// MarkRead marks notification id read on behalf of recipientID. It returns
// ErrNotFound for unknown ids and ErrForbidden when the record belongs to
// someone else. Marking an already read record succeeds without a write.
func (s *Service) MarkRead(ctx context.Context, recipientID, id string) (Notification, error) {
	n, err := s.store.Get(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if n.RecipientID != recipientID {
		return Notification{}, ErrForbidden
	}
	if n.IsRead {
		return n, nil
	}

	if err := s.store.MarkRead(ctx, id); err != nil {
		return Notification{}, err
	}
	n.IsRead = true
	s.invalidateUnread(ctx, n)
	return n, nil
}

// MarkAllRead marks every unread notification of recipientID and returns how many changed.
func (s *Service) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	n, err := s.store.MarkAllRead(ctx, recipientID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		s.cache.Del(ctx, cache.UnreadCountKey(recipientID))
	}
	return n, nil
}

// UnreadCount returns the number of unread notifications of recipientID.
func (s *Service) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	if s.cache == nil {
		return s.store.CountUnread(ctx, recipientID)
	}
	return cache.ReadThrough(ctx, s.cache, cache.UnreadCountKey(recipientID), s.cfg.UnreadCountTTL,
		func(ctx context.Context) (int, error) {
			return s.store.CountUnread(ctx, recipientID)
		})
}

func (s *Service) invalidateUnread(ctx context.Context, rows ...Notification) {
	if s.cache == nil || len(rows) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(rows))
	keys := make([]string, 0, len(rows))
	for _, r := range rows {
		if _, ok := seen[r.RecipientID]; ok {
			continue
		}
		seen[r.RecipientID] = struct{}{}
		keys = append(keys, cache.UnreadCountKey(r.RecipientID))
	}
	s.cache.Del(ctx, keys...)
}
