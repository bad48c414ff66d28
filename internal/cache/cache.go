// Package cache memoizes fitted forecasts per (symbol, lookback window)
// for a bounded time-to-live, so repeated requests within the window
// reuse one model fit and one upstream fetch.
package cache

import (
	"sync"
	"time"

	"StockSeer/internal/model"
)

// DefaultTTL bounds how long a fitted forecast stays fresh. Intraday
// price movement makes an hour-old fit stale for display but never
// wrong, matching the upstream data cadence.
const DefaultTTL = time.Hour

// Key identifies one cacheable forecast computation.
type Key struct {
	Symbol        string
	LookbackYears int
}

type entry struct {
	forecast  *model.Forecast
	createdAt time.Time
}

// Cache is a process-lifetime in-memory forecast cache. Entries are
// never proactively evicted; a stale entry is ignored and overwritten
// on the next access past its TTL. The key space of a session is small,
// so growth stays bounded.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[Key]entry
}

// New creates a cache with the given TTL. A non-positive TTL falls back
// to DefaultTTL.
func New(ttl time.Duration) *Cache {
	return NewWithClock(ttl, time.Now)
}

// NewWithClock creates a cache with an injected clock for deterministic
// expiry tests.
func NewWithClock(ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		now:     now,
		entries: make(map[Key]entry),
	}
}

// GetOrCompute returns the cached forecast for key if one exists within
// the TTL, otherwise invokes compute, stores the result, and returns it.
// The lock covers only map access: concurrent misses on the same key may
// both compute (acceptable duplicate work), but the stored entry is
// always one complete result, never a partial update.
func (c *Cache) GetOrCompute(key Key, compute func() (*model.Forecast, error)) (*model.Forecast, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.now().Sub(e.createdAt) < c.ttl {
		return e.forecast, nil
	}

	f, err := compute()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = entry{forecast: f, createdAt: c.now()}
	c.mu.Unlock()
	return f, nil
}

// Len returns the number of stored entries, stale ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
