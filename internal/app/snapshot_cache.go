package app

import (
	"sync"
	"time"
)

// SnapshotCache keeps the last successful snapshot per key for a TTL so that
// re-filtering the dashboard does not re-query the model.
// A TTL of 0 disables caching.
type SnapshotCache[T any] struct {
	mu      sync.RWMutex
	entries map[string]Snapshot[T]
	ttl     time.Duration
	now     func() time.Time
}

// NewSnapshotCache creates a new SnapshotCache with the specified TTL
func NewSnapshotCache[T any](ttl time.Duration, now func() time.Time) *SnapshotCache[T] {
	return &SnapshotCache[T]{
		entries: make(map[string]Snapshot[T]),
		ttl:     ttl,
		now:     now,
	}
}

// Get returns the cached snapshot for key and whether it is still fresh
func (c *SnapshotCache[T]) Get(key string) (Snapshot[T], bool) {
	if c.ttl <= 0 {
		return Snapshot[T]{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	snap, ok := c.entries[key]
	if !ok || c.now().Sub(snap.FetchedAt) >= c.ttl {
		return Snapshot[T]{}, false
	}
	return snap, true
}

// Set stores snap under key
func (c *SnapshotCache[T]) Set(key string, snap Snapshot[T]) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = snap
}

// Invalidate drops every cached snapshot
func (c *SnapshotCache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Snapshot[T])
}

// TTL returns the cache's time-to-live duration
func (c *SnapshotCache[T]) TTL() time.Duration {
	return c.ttl
}
