package push

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore keeps subscriptions in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	subs map[string][]Subscription // recipient -> subscriptions in creation order
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[string][]Subscription), now: time.Now}
}

func (m *MemoryStore) Save(_ context.Context, s Subscription) error {
	if err := s.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.subs[s.RecipientID]
	for i := range list {
		if list[i].Endpoint == s.Endpoint {
			list[i].Keys = s.Keys
			return nil
		}
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = m.now()
	}
	m.subs[s.RecipientID] = append(list, s)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, recipientID, endpoint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := slices.DeleteFunc(m.subs[recipientID], func(s Subscription) bool {
		return s.Endpoint == endpoint
	})
	if len(list) == 0 {
		delete(m.subs, recipientID)
		return nil
	}
	m.subs[recipientID] = list
	return nil
}

func (m *MemoryStore) ListByRecipient(_ context.Context, recipientID string) ([]Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.subs[recipientID]), nil
}
