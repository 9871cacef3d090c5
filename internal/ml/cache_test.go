package ml

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictionCacheHitAndMiss(t *testing.T) {
	c := NewPredictionCache(5 * time.Minute)

	_, ok := c.Get(37.7749, -122.4194)
	assert.False(t, ok)

	c.Put(37.7749, -122.4194, 0.8)
	score, ok := c.Get(37.7749, -122.4194)
	require.True(t, ok)
	assert.Equal(t, 0.8, score)
	assert.Equal(t, 1, c.Size())
}

func TestPredictionCacheKeyRounding(t *testing.T) {
	c := NewPredictionCache(5 * time.Minute)

	// Differences beyond the 5th decimal collapse to the same key.
	c.Put(37.774901, -122.419401, 0.8)
	score, ok := c.Get(37.774899, -122.419399)
	require.True(t, ok)
	assert.Equal(t, 0.8, score)

	// Differences at the 4th decimal do not.
	_, ok = c.Get(37.7750, -122.4194)
	assert.False(t, ok)
}

func TestPredictionCacheTTLExpiry(t *testing.T) {
	c := NewPredictionCache(5 * time.Minute)
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Put(1, 1, 0.7)

	now = now.Add(4 * time.Minute)
	_, ok := c.Get(1, 1)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(1, 1)
	assert.False(t, ok)
	// Expired entries are purged lazily on access.
	assert.Equal(t, 0, c.Size())
}

func TestPredictionCacheClear(t *testing.T) {
	c := NewPredictionCache(5 * time.Minute)
	c.Put(1, 1, 0.7)
	c.Put(2, 2, 0.3)
	require.Equal(t, 2, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
	_, ok := c.Get(1, 1)
	assert.False(t, ok)
}

func TestPredictionCacheConcurrentAccess(t *testing.T) {
	c := NewPredictionCache(5 * time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				lat := float64(n%4) + float64(j%10)/1e4
				c.Put(lat, lat, 0.5)
				c.Get(lat, lat)
				if j%50 == 0 {
					c.Clear()
				}
			}
		}(i)
	}
	wg.Wait()
}
