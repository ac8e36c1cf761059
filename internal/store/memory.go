package store

import (
	"sync"
	"time"
)

// Clock returns the current time. Tests swap it for a controllable one.
type Clock func() time.Time

// entry holds a cached value and the moment it was stored.
type entry[V any] struct {
	value    V
	storedAt time.Time
}

// TTLCache is a concurrency-safe in-memory key/value store where every entry
// lives for the same fixed duration.
//
// Expired entries are treated as absent on read but are not swept; they are
// replaced on the next Set for the same key. There is no size bound, so the
// cache is only meant for bounded key spaces (one entry per location or park).
type TTLCache[V any] struct {
	mu sync.RWMutex

	// key: fetch key, value: cached entry
	data map[string]entry[V]

	ttl time.Duration
	now Clock
}

// NewTTLCache creates a cache whose entries expire ttl after being stored.
func NewTTLCache[V any](ttl time.Duration) *TTLCache[V] {
	return &TTLCache[V]{
		data: make(map[string]entry[V]),
		ttl:  ttl,
		now:  time.Now,
	}
}

// WithClock replaces the time source. It returns the cache for chaining.
func (c *TTLCache[V]) WithClock(now Clock) *TTLCache[V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

// TTL reports the lifetime of entries in this cache.
func (c *TTLCache[V]) TTL() time.Duration {
	return c.ttl
}

// Get returns the value for key if it exists and has not expired.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.data[key]
	if !ok || c.now().Sub(e.storedAt) >= c.ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, overwriting any previous (possibly expired) entry.
func (c *TTLCache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = entry[V]{
		value:    value,
		storedAt: c.now(),
	}
}

// Len returns the number of physically stored entries, expired ones included.
func (c *TTLCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
