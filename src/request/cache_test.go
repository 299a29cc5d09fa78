package request

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-sync/src/models"
	"market-sync/src/utils"
)

func newTestCache(ttl time.Duration) (*ResponseCache, *utils.FakeClock) {
	clock := utils.NewFakeClock(time.Unix(1700000000, 0))
	return NewResponseCache(ttl, clock), clock
}

func TestCacheHitWhileFresh(t *testing.T) {
	c, clock := newTestCache(5 * time.Minute)

	c.Set("http://api/market-data?symbols=AAPL", models.MResponse{Success: true, Status: 200})

	clock.Advance(4 * time.Minute)
	resp, ok := c.Get("http://api/market-data?symbols=AAPL")
	require.True(t, ok)
	assert.True(t, resp.Success)
}

func TestCacheExpiry(t *testing.T) {
	c, clock := newTestCache(5 * time.Minute)

	c.Set("key", models.MResponse{Success: true})
	clock.Advance(5 * time.Minute)

	_, ok := c.Get("key")
	assert.False(t, ok)
	// Expired entry was evicted on read
	assert.Zero(t, c.Len())
}

func TestCacheKeysAreIndependent(t *testing.T) {
	c, _ := newTestCache(time.Minute)

	c.Set("http://api/market-data?symbols=AAPL", models.MResponse{Status: 200})

	// Same path, different query string
	_, ok := c.Get("http://api/market-data?symbols=TSLA")
	assert.False(t, ok)
}

func TestCacheSweep(t *testing.T) {
	c, clock := newTestCache(time.Minute)

	c.Set("a", models.MResponse{})
	c.Set("b", models.MResponse{})
	clock.Advance(30 * time.Second)
	c.Set("c", models.MResponse{})
	clock.Advance(40 * time.Second)

	// a and b are past their TTL, c is not
	removed := c.Sweep()
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("c")
	assert.True(t, ok)
}

func TestCacheClear(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	c.Set("a", models.MResponse{})
	c.Clear()
	assert.Zero(t, c.Len())
}
