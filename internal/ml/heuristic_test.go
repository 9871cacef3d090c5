package ml

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pinnedScorer returns a scorer whose random term is exactly zero
// (jitter 0.5 maps to 0.5*0.1-0.05 = 0).
func pinnedScorer() *HeuristicScorer {
	s := NewHeuristicScorer()
	s.jitter = func() float64 { return 0.5 }
	return s
}

func at(hour int) time.Time {
	return time.Date(2024, 3, 15, hour, 30, 0, 0, time.UTC)
}

func TestHeuristicScoreBounds(t *testing.T) {
	s := NewHeuristicScorer()

	for hour := 0; hour < 24; hour++ {
		for _, p := range [][2]float64{
			{37.7749, -122.4194},
			{-33.8688, 151.2093},
			{0, 0},
			{89.9, 179.9},
			{-89.9, -179.9},
		} {
			score := s.Score(p[0], p[1], at(hour))
			assert.GreaterOrEqual(t, score, 0.1, "hour %d point %v", hour, p)
			assert.LessOrEqual(t, score, 0.9, "hour %d point %v", hour, p)
		}
	}
}

func TestHeuristicScoreDeterministicWithoutJitter(t *testing.T) {
	s := pinnedScorer()

	first := s.Score(37.7749, -122.4194, at(14))
	for i := 0; i < 10; i++ {
		require.Equal(t, first, s.Score(37.7749, -122.4194, at(14)))
	}
}

func TestHeuristicScoreJitterBounded(t *testing.T) {
	base := pinnedScorer().Score(40.0, -74.0, at(14))

	s := NewHeuristicScorer()
	for i := 0; i < 100; i++ {
		score := s.Score(40.0, -74.0, at(14))
		assert.InDelta(t, base, score, 0.05)
	}
}

func TestHeuristicTimeBands(t *testing.T) {
	s := pinnedScorer()

	// A location where the periodic term is small keeps the band
	// ordering visible.
	lat, lng := 52.3, 13.0

	night := s.Score(lat, lng, at(23))
	earlyMorning := s.Score(lat, lng, at(6))
	midday := s.Score(lat, lng, at(13))
	evening := s.Score(lat, lng, at(19))

	assert.Less(t, night, evening)
	assert.Less(t, evening, earlyMorning)
	assert.Less(t, earlyMorning, midday)
}

func TestHeuristicNightBandEdges(t *testing.T) {
	s := pinnedScorer()
	lat, lng := 52.3, 13.0

	// 22:00 and 05:00 are night; 06:00 and 21:00 are not.
	assert.Equal(t, s.Score(lat, lng, at(22)), s.Score(lat, lng, at(5)))
	assert.Greater(t, s.Score(lat, lng, at(6)), s.Score(lat, lng, at(22)))
	assert.Greater(t, s.Score(lat, lng, at(21)), s.Score(lat, lng, at(23)))
}
