package cache

import (
	"sync"
	"time"

	"innovation-events/internal/model"
)

// Entry is one merged event collection and the lookups derived from it.
// Entries are never mutated after Set; a new load replaces the entry wholesale.
type Entry struct {
	LoadID    string        `json:"load_id"`
	FetchedAt time.Time     `json:"fetched_at"`
	Events    []model.Event `json:"events"`
	Names     model.Names   `json:"-"`
	Locations []string      `json:"locations"`
}

// Cache holds the latest entry in memory with a freshness TTL.
type Cache struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	entry *Entry
}

// New creates an in-memory cache. A ttl <= 0 means entries never expire.
func New(ttl time.Duration) *Cache {
	return &Cache{
		ttl: ttl,
		now: time.Now,
	}
}

// Get returns the cached entry if one exists and isn't expired.
func (c *Cache) Get() (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.entry == nil {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(c.entry.FetchedAt) > c.ttl {
		return nil, false
	}
	return c.entry, true
}

// Latest returns the most recent entry regardless of age.
func (c *Cache) Latest() (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entry, c.entry != nil
}

// Set replaces the cached entry.
func (c *Cache) Set(e *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = e
}

// Invalidate drops the cached entry.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
}
