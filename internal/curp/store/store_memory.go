package store

import (
	"context"
	"sync"
	"time"

	"curpkit/internal/curp/models"
	"curpkit/pkg/platform/sentinel"
)

type cacheEntry struct {
	record   models.CachedCode
	storedAt time.Time
}

// InMemoryCache is a TTL cache used alone in single-node deployments and as
// the fallback behind Redis.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewInMemoryCache creates a cache. A ttl of zero keeps entries forever.
func NewInMemoryCache(ttl time.Duration) *InMemoryCache {
	return &InMemoryCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *InMemoryCache) Find(_ context.Context, key string) (*models.CachedCode, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if c.ttl > 0 && c.now().Sub(entry.storedAt) > c.ttl {
		c.mu.Lock()
		if current, still := c.entries[key]; still && current.storedAt.Equal(entry.storedAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, sentinel.ErrNotFound
	}
	record := entry.record
	return &record, nil
}

func (c *InMemoryCache) Save(_ context.Context, key string, record models.CachedCode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{record: record, storedAt: c.now()}
	return nil
}

// Len reports stored entries, expired ones included.
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
