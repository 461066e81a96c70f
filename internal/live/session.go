package live

import (
	"sync"

	"github.com/google/uuid"
)

// Session is one live connection of a recipient.
type Session struct {
	id       string
	identity Identity
	out      chan Frame

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewSession creates a session with an outbound queue of buffer frames.
func NewSession(identity Identity, buffer int) *Session {
	return &Session{
		id:       uuid.NewString(),
		identity: identity,
		out:      make(chan Frame, max(buffer, 1)),
		done:     make(chan struct{}),
	}
}

func (s *Session) ID() string         { return s.id }
func (s *Session) Identity() Identity { return s.identity }

// Out is drained by the connection writer. It is closed with the session.
func (s *Session) Out() <-chan Frame { return s.out }

// Done is closed when the session closes.
func (s *Session) Done() <-chan struct{} { return s.done }

// Send queues f without blocking.
func (s *Session) Send(f Frame) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrSessionClosed
	}
	select {
	case s.out <- f:
		return nil
	default:
		return ErrSlowConsumer
	}
}

// Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.out)
		close(s.done)
	}
}

func (s *Session) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
