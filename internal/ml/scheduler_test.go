package ml

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRunsOnce(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(func() (bool, error) {
		runs.Add(1)
		return true, nil
	}, NewPredictionCache(time.Minute))

	s.Schedule()

	require.Eventually(t, func() bool {
		return s.State() == StateIdle
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
	assert.False(t, s.LastTrainedAt().IsZero())
}

func TestSchedulerCollapsesBurstDuringTraining(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var runs atomic.Int32

	s := NewScheduler(func() (bool, error) {
		if runs.Add(1) == 1 {
			close(started)
			<-release
		}
		return true, nil
	}, NewPredictionCache(time.Minute))

	s.Schedule()
	<-started

	// A burst of requests while the first run is in flight collapses
	// to a single follow-up.
	for i := 0; i < 25; i++ {
		s.Schedule()
	}
	assert.Equal(t, 1, s.QueueLength())

	close(release)
	require.Eventually(t, func() bool {
		return s.State() == StateIdle && s.QueueLength() == 0
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, int32(2), runs.Load())
}

func TestSchedulerDeduplicatesWhileQueued(t *testing.T) {
	gate := make(chan struct{})
	var runs atomic.Int32

	s := NewScheduler(func() (bool, error) {
		<-gate
		runs.Add(1)
		return true, nil
	}, NewPredictionCache(time.Minute))

	s.Schedule()
	s.Schedule()
	s.Schedule()
	assert.LessOrEqual(t, s.QueueLength(), 1)

	close(gate)
	require.Eventually(t, func() bool {
		return s.State() == StateIdle
	}, 2*time.Second, 5*time.Millisecond)

	// All three calls arrived before or during the single run window;
	// they may produce at most one follow-up.
	assert.LessOrEqual(t, runs.Load(), int32(2))
}

func TestSchedulerFailureKeepsCacheAndReturnsToIdle(t *testing.T) {
	cache := NewPredictionCache(time.Minute)
	cache.Put(1, 1, 0.7)

	s := NewScheduler(func() (bool, error) {
		return false, assert.AnError
	}, cache)

	s.Schedule()
	require.Eventually(t, func() bool {
		return s.State() == StateIdle
	}, 2*time.Second, 5*time.Millisecond)

	// Failed runs never clear the cache or record a training time.
	assert.Equal(t, 1, cache.Size())
	assert.True(t, s.LastTrainedAt().IsZero())
}

func TestSchedulerSkippedRunKeepsCache(t *testing.T) {
	cache := NewPredictionCache(time.Minute)
	cache.Put(1, 1, 0.7)

	s := NewScheduler(func() (bool, error) {
		return false, nil // corpus below minimum
	}, cache)

	s.Schedule()
	require.Eventually(t, func() bool {
		return s.State() == StateIdle
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, cache.Size())
}

func TestSchedulerSuccessClearsCache(t *testing.T) {
	cache := NewPredictionCache(time.Minute)
	cache.Put(1, 1, 0.7)

	s := NewScheduler(func() (bool, error) {
		return true, nil
	}, cache)

	s.Schedule()
	require.Eventually(t, func() bool {
		return s.State() == StateIdle
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, 0, cache.Size())
}
