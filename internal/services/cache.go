package services

import (
	"sync"
	"time"
)

// TTLCache is an in-memory cache with per-item expiry. An expired item is
// removed when Get finds it, and Purge removes the rest in bulk.
type TTLCache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]cacheItem[V]
	ttl   time.Duration
	now   func() time.Time
}

type cacheItem[V any] struct {
	value      V
	expiration time.Time
}

// NewTTLCache creates a cache whose items live for ttl
func NewTTLCache[K comparable, V any](ttl time.Duration) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		items: make(map[K]cacheItem[V]),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get retrieves a live value
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}
	if c.now().After(item.expiration) {
		c.mu.Lock()
		// a concurrent Set may have refreshed the entry
		if cur, still := c.items[key]; still && c.now().After(cur.expiration) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		var zero V
		return zero, false
	}
	return item.value, true
}

// Set stores a value
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = cacheItem[V]{value: value, expiration: c.now().Add(c.ttl)}
}

// Delete removes a value
func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Len counts stored items, expired or not
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Purge drops expired items and reports how many went
func (c *TTLCache[K, V]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, item := range c.items {
		if now.After(item.expiration) {
			delete(c.items, k)
			removed++
		}
	}
	return removed
}
