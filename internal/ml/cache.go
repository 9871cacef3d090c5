package ml

import (
	"fmt"
	"sync"
	"time"
)

// PredictionCache memoizes point predictions for a bounded time. Keys
// round coordinates to 5 decimal places (~1 m), so nearby lookups in
// the same request storm collapse to one model invocation. Entries die
// at the TTL or on Clear after a training run, whichever comes first.
// Safe for concurrent get/put/clear from in-flight predictions.
type PredictionCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	score     float64
	createdAt time.Time
}

// NewPredictionCache creates a cache with the given TTL. The clock is
// injectable for tests; production uses time.Now.
func NewPredictionCache(ttl time.Duration) *PredictionCache {
	return &PredictionCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached score for a point. Expired entries count as
// misses and are purged lazily.
func (c *PredictionCache) Get(lat, lng float64) (float64, bool) {
	key := cacheKey(lat, lng)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	if c.now().Sub(entry.createdAt) > c.ttl {
		delete(c.entries, key)
		return 0, false
	}
	return entry.score, true
}

// Put stores a score for a point.
func (c *PredictionCache) Put(lat, lng, score float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(lat, lng)] = cacheEntry{score: score, createdAt: c.now()}
}

// Clear drops every entry. Called after each successful training run so
// no prediction outlives the model it came from by more than one TTL.
func (c *PredictionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Size returns the current entry count, including not-yet-purged
// expired entries.
func (c *PredictionCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func cacheKey(lat, lng float64) string {
	return fmt.Sprintf("%.5f,%.5f", lat, lng)
}
