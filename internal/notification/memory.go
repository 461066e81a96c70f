package notification

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps notifications in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	byID     map[string]*Notification
	byRecpt  map[string][]*Notification // insertion order
	eventIdx map[string]struct{}        // recipient|event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:     make(map[string]*Notification),
		byRecpt:  make(map[string][]*Notification),
		eventIdx: make(map[string]struct{}),
	}
}

func (s *MemoryStore) CreateBatch(_ context.Context, rows []Notification) ([]Notification, error) {
	for _, r := range rows {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if r.ID == "" {
			return nil, ErrStore
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created := make([]Notification, 0, len(rows))
	for _, r := range rows {
		if s.insert(r) {
			created = append(created, r)
		}
	}
	return created, nil
}

func (s *MemoryStore) Create(_ context.Context, row Notification) (bool, error) {
	if err := row.Validate(); err != nil {
		return false, err
	}
	if row.ID == "" {
		return false, ErrStore
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(row), nil
}

// insert must be called with s.mu held.
func (s *MemoryStore) insert(row Notification) bool {
	if _, dup := s.byID[row.ID]; dup {
		return false
	}
	if row.EventID != "" {
		k := row.RecipientID + "|" + row.EventID
		if _, dup := s.eventIdx[k]; dup {
			return false
		}
		s.eventIdx[k] = struct{}{}
	}
	n := row
	s.byID[n.ID] = &n
	s.byRecpt[n.RecipientID] = append(s.byRecpt[n.RecipientID], &n)
	return true
}

func (s *MemoryStore) Get(_ context.Context, id string) (Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.byID[id]
	if !ok {
		return Notification{}, ErrNotFound
	}
	return *n, nil
}

func (s *MemoryStore) List(_ context.Context, recipientID string, opts ListOptions) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.byRecpt[recipientID]
	out := make([]Notification, 0, len(rows))
	for _, n := range rows {
		if opts.OnlyUnread && n.IsRead {
			continue
		}
		out = append(out, *n)
	}

	// Newest first; insertion order breaks ties so equal timestamps stay stable.
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if opts.Offset >= len(out) {
		return []Notification{}, nil
	}
	out = out[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (s *MemoryStore) MarkRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	n.IsRead = true
	return nil
}

func (s *MemoryStore) MarkAllRead(_ context.Context, recipientID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.byRecpt[recipientID] {
		if !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) CountUnread(_ context.Context, recipientID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.byRecpt[recipientID] {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}
