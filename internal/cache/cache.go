// Package cache implements the quote cache (C3): a concurrent map from
// upper-cased symbol to the latest normalized Quote, with snapshot-consistent
// reads. Grounded on the original's InMemoryCache (app/cache.py), translated
// from an asyncio.Lock to a sync.RWMutex.
package cache

import (
	"strings"
	"sync"

	"github.com/vikasavnish/marketaggregator/internal/models"
)

// Cache is safe for concurrent use. There is no TTL; staleness is the
// caller's concern via Quote.Timestamp.
type Cache struct {
	mu    sync.RWMutex
	store map[string]models.Quote
}

func New() *Cache {
	return &Cache{store: make(map[string]models.Quote)}
}

// Set replaces any prior entry for symbol atomically.
func (c *Cache) Set(symbol string, q models.Quote) {
	key := strings.ToUpper(symbol)
	c.mu.Lock()
	c.store[key] = q
	c.mu.Unlock()
}

// Get returns the cached quote for symbol, or false if absent.
func (c *Cache) Get(symbol string) (models.Quote, bool) {
	key := strings.ToUpper(symbol)
	c.mu.RLock()
	q, ok := c.store[key]
	c.mu.RUnlock()
	return q, ok
}

// Snapshot returns a stable, shallow copy of the entire cache. No partial
// per-symbol updates from a concurrent Set are visible in the result.
func (c *Cache) Snapshot() map[string]models.Quote {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]models.Quote, len(c.store))
	for k, v := range c.store {
		out[k] = v
	}
	return out
}

// Len reports the number of cached symbols, used by the health/metrics
// surface.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}
