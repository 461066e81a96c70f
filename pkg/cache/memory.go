package cache

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process Store bounded by entry count.
type MemoryStore struct {
	mu  sync.Mutex
	lru *lru[string, []byte]
}

// NewMemoryStore creates a store holding at most capacity entries.
func NewMemoryStore(capacity int) *MemoryStore {
	return newMemoryStoreWithClock(capacity, time.Now)
}

func newMemoryStoreWithClock(capacity int, now func() time.Time) *MemoryStore {
	return &MemoryStore{lru: newLRU[string, []byte](capacity, now)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.lru.get(key)
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	buf := make([]byte, len(value))
	copy(buf, value)

	s.mu.Lock()
	s.lru.put(key, buf, ttl)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		s.lru.remove(key)
	}
	return nil
}

func (s *MemoryStore) DelPrefix(_ context.Context, prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lru.removeIf(func(key string) bool {
		return strings.HasPrefix(key, prefix)
	}), nil
}

func (s *MemoryStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.lru.get(key)
	if !ok {
		s.lru.put(key, []byte("1"), ttl)
		return 1, nil
	}

	n, err := strconv.ParseInt(string(entry.value), 10, 64)
	if err != nil {
		return 0, ErrNotInteger
	}
	n++
	// Keep the original expiry, like INCR on an existing Redis key.
	entry.value = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

// Len returns the number of entries, including ones that expired but were not yet touched.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.len()
}
