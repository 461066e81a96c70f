package cache

import (
	"container/list"
	"time"
)

type lruEntry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time // zero means no expiry
}

// lru is a size-bounded LRU with per-entry expiry. Not safe for concurrent
// use; MemoryStore guards it with its own mutex.
type lru[K comparable, V any] struct {
	capacity int
	items    map[K]*list.Element
	order    *list.List
	now      func() time.Time
}

func newLRU[K comparable, V any](capacity int, now func() time.Time) *lru[K, V] {
	if capacity <= 0 {
		panic("cache: LRU capacity must be positive")
	}
	if now == nil {
		now = time.Now
	}
	return &lru[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element),
		order:    list.New(),
		now:      now,
	}
}

// get returns a live entry and marks it recently used. Expired entries are
// dropped on access.
func (c *lru[K, V]) get(key K) (*lruEntry[K, V], bool) {
	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	entry := elem.Value.(*lruEntry[K, V])
	if c.expired(entry) {
		c.removeElement(elem)
		return nil, false
	}
	c.order.MoveToFront(elem)
	return entry, true
}

// put stores value with ttl. A non-positive ttl keeps the entry until evicted.
func (c *lru[K, V]) put(key K, value V, ttl time.Duration) {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}

	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*lruEntry[K, V])
		entry.value = value
		entry.expiresAt = expiresAt
		c.order.MoveToFront(elem)
		return
	}

	c.items[key] = c.order.PushFront(&lruEntry[K, V]{key: key, value: value, expiresAt: expiresAt})
	for c.order.Len() > c.capacity {
		c.removeElement(c.order.Back())
	}
}

func (c *lru[K, V]) remove(key K) bool {
	elem, ok := c.items[key]
	if !ok {
		return false
	}
	c.removeElement(elem)
	return true
}

// removeIf drops every entry whose key matches and returns how many went.
func (c *lru[K, V]) removeIf(match func(K) bool) int {
	n := 0
	for key, elem := range c.items {
		if match(key) {
			c.removeElement(elem)
			n++
		}
	}
	return n
}

func (c *lru[K, V]) len() int {
	return c.order.Len()
}

func (c *lru[K, V]) expired(e *lruEntry[K, V]) bool {
	return !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt)
}

func (c *lru[K, V]) removeElement(elem *list.Element) {
	c.order.Remove(elem)
	delete(c.items, elem.Value.(*lruEntry[K, V]).key)
}
