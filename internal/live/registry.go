package live

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/dmitrymomot/notifyhub/pkg/logger"
)

const shardCount = 64

type shard struct {
	mu       sync.RWMutex
	sessions map[string]map[string]*Session // recipient -> session id -> session
}

// Registry maps recipients to their live sessions.
type Registry struct {
	shards [shardCount]shard
	closed atomic.Bool
	log    *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{log: slog.Default()}
	for i := range r.shards {
		r.shards[i].sessions = make(map[string]map[string]*Session)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) shardFor(recipientID string) *shard {
	return &r.shards[xxhash.Sum64String(recipientID)%shardCount]
}

// Register adds s under id. s must have been created for the same identity.
func (r *Registry) Register(id Identity, s *Session) error {
	if !id.Valid() {
		return ErrInvalidCredential
	}
	if s.Identity().UserID() != id.UserID() {
		return ErrIdentityMismatch
	}
	if r.closed.Load() {
		return ErrRegistryClosed
	}

	sh := r.shardFor(id.UserID())
	sh.mu.Lock()
	defer sh.mu.Unlock()

	// Close may have swept this shard between the check above and the lock.
	if r.closed.Load() {
		return ErrRegistryClosed
	}

	set, ok := sh.sessions[id.UserID()]
	if !ok {
		set = make(map[string]*Session)
		sh.sessions[id.UserID()] = set
	}
	set[s.ID()] = s

	r.log.Debug("live session registered",
		logger.RecipientID(id.UserID()),
		slog.String("session_id", s.ID()),
		slog.Int("sessions", len(set)))
	return nil
}

// Unregister removes s. Removing an unknown session is a no-op.
func (r *Registry) Unregister(recipientID string, s *Session) {
	sh := r.shardFor(recipientID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	set, ok := sh.sessions[recipientID]
	if !ok {
		return
	}
	delete(set, s.ID())
	if len(set) == 0 {
		delete(sh.sessions, recipientID)
	}
}

// SendStats counts what happened to one frame across a recipient's sessions.
type SendStats struct {
	Sessions  int
	Delivered int
	Dropped   int
}

// Broadcast queues f on every session of the recipient. Closed sessions are
// removed.
func (r *Registry) Broadcast(recipientID string, f Frame) SendStats {
	sh := r.shardFor(recipientID)

	sh.mu.RLock()
	set := sh.sessions[recipientID]
	targets := make([]*Session, 0, len(set))
	for _, s := range set {
		targets = append(targets, s)
	}
	sh.mu.RUnlock()

	stats := SendStats{Sessions: len(targets)}
	var stale []*Session
	for _, s := range targets {
		err := s.Send(f)
		switch {
		case err == nil:
			stats.Delivered++
		case errors.Is(err, ErrSessionClosed):
			stale = append(stale, s)
			stats.Dropped++
		default:
			r.log.Warn("live frame dropped",
				logger.RecipientID(recipientID),
				slog.String("session_id", s.ID()),
				slog.String("event", f.Event),
				logger.Error(err))
			stats.Dropped++
		}
	}
	for _, s := range stale {
		r.Unregister(recipientID, s)
	}
	return stats
}

// Send reports whether f reached at least one session of the recipient.
func (r *Registry) Send(recipientID string, f Frame) bool {
	return r.Broadcast(recipientID, f).Delivered > 0
}

// Count returns the number of live sessions of the recipient.
func (r *Registry) Count(recipientID string) int {
	sh := r.shardFor(recipientID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	return len(sh.sessions[recipientID])
}

// Total returns the number of live sessions across all recipients.
func (r *Registry) Total() int {
	n := 0
	for i := range r.shards {
		sh := &r.shards[i]
		sh.mu.RLock()
		for _, set := range sh.sessions {
			n += len(set)
		}
		sh.mu.RUnlock()
	}
	return n
}

// Close closes every session and rejects further registrations.
func (r *Registry) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}
	for i := range r.shards {
		sh := &r.shards[i]
		sh.mu.Lock()
		for recipient, set := range sh.sessions {
			for _, s := range set {
				s.Close()
			}
			delete(sh.sessions, recipient)
		}
		sh.mu.Unlock()
	}
}
