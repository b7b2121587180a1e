// internal/cache/lru.go
//
// Bounded least-recently-used map.
//
// The login rate limiter keeps one token bucket per client IP; without
// a bound an address-spoofing flood would grow that map forever.  The
// structure is deliberately minimal (no per-entry TTL, no eviction
// callback) because evicting a live bucket is harmless; the next hit
// just refills it.
//
// Not safe for concurrent use; callers hold their own lock.
package cache

import "container/list"

type lruEntry[K comparable, V any] struct {
	key K
	val V
}

// LRU is a fixed-capacity map with least-recently-used eviction.
type LRU[K comparable, V any] struct {
	capacity int
	order    *list.List // front = most recent
	index    map[K]*list.Element
}

// New returns an empty LRU holding at most capacity entries.
// Panics on capacity < 1.
func New[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity < 1 {
		panic("cache: capacity must be positive")
	}
	return &LRU[K, V]{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[K]*list.Element, capacity),
	}
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	if el, ok := c.index[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(lruEntry[K, V]).val, true
	}
	var zero V
	return zero, false
}

// Add inserts or replaces key, evicting the least recently used entry
// when the cache is full.
func (c *LRU[K, V]) Add(key K, val V) {
	if el, ok := c.index[key]; ok {
		el.Value = lruEntry[K, V]{key, val}
		c.order.MoveToFront(el)
		return
	}
	c.index[key] = c.order.PushFront(lruEntry[K, V]{key, val})
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.index, oldest.Value.(lruEntry[K, V]).key)
	}
}

// Len reports the number of entries currently held.
func (c *LRU[K, V]) Len() int { return c.order.Len() }
