// Package infra provides shared infrastructure components used across
// the application: result caching and rate limiting.
package infra

import (
	"context"
	"sync"
	"time"
)

// Store is a key/value cache for small serialised results.
// A miss is reported as (nil, false, nil).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// --- In-memory store ---

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e cacheEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MinCleanupInterval bounds how often the background sweep runs.
const MinCleanupInterval = time.Second

// MemoryStore is a thread-safe in-memory Store with TTL. Expired entries
// are evicted on access and by a background sweep that runs every TTL
// until Close.
type MemoryStore struct {
	mu        sync.RWMutex
	entries   map[string]cacheEntry
	ttl       time.Duration
	stop      chan struct{}
	closeOnce sync.Once
}

// NewMemoryStore creates a store with the given TTL. A non-positive TTL
// keeps entries until they are flushed and starts no sweep.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	c := &MemoryStore{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
	if ttl > 0 {
		go c.sweep(max(ttl, MinCleanupInterval))
	}
	return c
}

func (c *MemoryStore) sweep(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-t.C:
			c.Cleanup()
		}
	}
}

// Get retrieves a value. Expired entries are misses and are removed.
func (c *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if now := time.Now(); entry.expired(now) {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && cur.expired(now) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set stores a copy of value with the default TTL.
func (c *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	entry := cacheEntry{value: append([]byte(nil), value...)}
	if c.ttl > 0 {
		entry.expiresAt = time.Now().Add(c.ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryStore) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Flush removes all entries.
func (c *MemoryStore) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Cleanup removes expired entries. Can be called periodically.
func (c *MemoryStore) Cleanup() {
	c.mu.Lock()
	now := time.Now()
	for k, v := range c.entries {
		if v.expired(now) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

// Close stops the background sweep. The store stays usable.
func (c *MemoryStore) Close() error {
	c.closeOnce.Do(func() { close(c.stop) })
	return nil
}
