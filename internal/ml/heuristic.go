package ml

import (
	"math"
	"math/rand"
	"time"
)

// Heuristic score band limits. Every heuristic score lands in
// [0.1, 0.9] regardless of inputs.
const (
	heuristicFloor = 0.1
	heuristicCeil  = 0.9
)

// HeuristicScorer produces a deterministic fallback safety estimate
// from coordinates and time of day. It is the terminal fallback of the
// engine: pure, no I/O, never fails.
type HeuristicScorer struct {
	// jitter returns a value in [0,1) feeding the small bounded random
	// perturbation. Injectable so tests can pin it.
	jitter func() float64
}

// NewHeuristicScorer creates a heuristic scorer backed by math/rand.
func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{jitter: rand.Float64}
}

// Score returns a safety estimate in [0.1, 0.9]. The base comes from
// four time-of-day bands (night lowest, midday highest); a smooth
// periodic function of the coordinates stands in for neighborhood
// variance, plus a perturbation bounded by ±0.05.
func (h *HeuristicScorer) Score(lat, lng float64, now time.Time) float64 {
	hour := now.Hour()

	base := 0.7
	switch {
	case hour >= 22 || hour <= 5:
		base = 0.5
	case hour >= 18 && hour < 22:
		base = 0.6
	case hour > 5 && hour < 8:
		base = 0.65
	}

	locationFactor := math.Sin(lat*10)*0.1 + math.Cos(lng*10)*0.1
	randomFactor := h.jitter()*0.1 - 0.05

	return clampScore(base+locationFactor+randomFactor, heuristicFloor, heuristicCeil)
}

func clampScore(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
