package request

import (
	"sync"
	"time"

	"market-sync/src/interfaces"
	"market-sync/src/models"
)

// -----------------------------------------------------------------------------
// ResponseCache holds successful GET envelopes keyed by the full resolved URL
// (path plus encoded query), each entry valid for one TTL. A cache hit costs
// zero network traffic; freshness is checked lazily on read and in bulk by
// Sweep.
// -----------------------------------------------------------------------------

type ResponseCache struct {
	clock interfaces.IClock
	ttlMs int64

	mu    sync.RWMutex
	items map[string]cacheEntry
}

type cacheEntry struct {
	resp      models.MResponse
	expiresAt int64 // epoch ms
}

// -----------------------------------------------------------------------------

func NewResponseCache(ttl time.Duration, clock interfaces.IClock) *ResponseCache {
	return &ResponseCache{
		clock: clock,
		ttlMs: ttl.Milliseconds(),
		items: make(map[string]cacheEntry),
	}
}

// -----------------------------------------------------------------------------

// Get returns the cached envelope if present and fresh. Expired entries are
// dropped on the way out.
func (c *ResponseCache) Get(key string) (models.MResponse, bool) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return models.MResponse{}, false
	}
	if c.clock.NowMs() >= entry.expiresAt {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return models.MResponse{}, false
	}
	return entry.resp, true
}

// -----------------------------------------------------------------------------

// Set stores an envelope under key for one TTL from now.
func (c *ResponseCache) Set(key string, resp models.MResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = cacheEntry{
		resp:      resp,
		expiresAt: c.clock.NowMs() + c.ttlMs,
	}
}

// -----------------------------------------------------------------------------

// Sweep evicts every expired entry and returns how many were removed.
func (c *ResponseCache) Sweep() int {
	now := c.clock.NowMs()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.items {
		if now >= entry.expiresAt {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// -----------------------------------------------------------------------------

// Len returns the number of entries, fresh or not.
func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// -----------------------------------------------------------------------------

// Clear empties the cache.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]cacheEntry)
}
