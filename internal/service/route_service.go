package service

import (
	"log"
	"math"
	"math/rand"
	"sort"

	"github.com/aa-ray-man/safehaven/internal/models"
	"github.com/aa-ray-man/safehaven/internal/spatial"
)

// neutralScore substitutes for a midpoint whose prediction failed; the
// rest of the route still gets scored.
const neutralScore = 0.5

// Endpoint generation constants: distances are randomized within
// [0.7, 1.3]× the base, angles get a small jitter around the even
// spacing, and midpoints bow out perpendicular to the segment so routes
// are not sampled along a perfectly straight line.
const (
	distanceSpreadMin = 0.7
	distanceSpread    = 0.6
	angleJitter       = 0.2
	midpointBowDeg    = 0.0001
)

// SafetyPredictor scores a single point. The engine's implementation is
// total, but the aggregator still guards the interface: any failing
// implementation degrades that midpoint to the neutral score.
type SafetyPredictor interface {
	PredictSafety(lat, lng float64) (float64, error)
}

// ReportFinder supplies nearby reports for incident counting.
type ReportFinder interface {
	FindNearby(lat, lng, radiusKm float64) []models.SafetyReport
}

// RouteService aggregates point predictions and incident counts into
// scored candidate routes around an origin.
type RouteService struct {
	predictor SafetyPredictor
	reports   ReportFinder

	routeCount       int
	baseDistanceKm   float64
	midpointCount    int
	incidentRadiusKm float64

	// rand returns [0,1); injectable for deterministic tests.
	rand func() float64
}

// NewRouteService creates a route service. Zero-valued knobs fall back
// to the defaults: 8 routes, 1 km base distance, 3 midpoints, 0.2 km
// incident radius.
func NewRouteService(predictor SafetyPredictor, reports ReportFinder, routeCount int, baseDistanceKm float64, midpointCount int, incidentRadiusKm float64) *RouteService {
	if routeCount <= 0 {
		routeCount = 8
	}
	if baseDistanceKm <= 0 {
		baseDistanceKm = 1.0
	}
	if midpointCount <= 0 {
		midpointCount = 3
	}
	if incidentRadiusKm <= 0 {
		incidentRadiusKm = 0.2
	}
	return &RouteService{
		predictor:        predictor,
		reports:          reports,
		routeCount:       routeCount,
		baseDistanceKm:   baseDistanceKm,
		midpointCount:    midpointCount,
		incidentRadiusKm: incidentRadiusKm,
		rand:             rand.Float64,
	}
}

// SafeRoutes generates and scores candidate routes around origin. Each
// route's safety score is the mean midpoint prediction; its incident
// count sums hazard reports near the midpoints. Routes are returned
// unsorted; ranking is the caller's concern.
func (s *RouteService) SafeRoutes(origin models.Point) []models.CandidateRoute {
	endpoints := s.GenerateCandidateEndpoints(origin, s.routeCount, s.baseDistanceKm)

	routes := make([]models.CandidateRoute, 0, len(endpoints))
	for _, end := range endpoints {
		midpoints := sampleMidpoints(origin, end, s.midpointCount)

		var total float64
		var incidents int
		for _, mid := range midpoints {
			score, err := s.predictor.PredictSafety(mid.Lat, mid.Lng)
			if err != nil {
				log.Printf("Prediction failed for (%f, %f), using neutral score: %v", mid.Lat, mid.Lng, err)
				score = neutralScore
			}
			total += score

			for _, r := range s.reports.FindNearby(mid.Lat, mid.Lng, s.incidentRadiusKm) {
				if r.IsHazard() {
					incidents++
				}
			}
		}

		routes = append(routes, models.CandidateRoute{
			Start:         origin,
			End:           end,
			SafetyScore:   total / float64(len(midpoints)),
			IncidentCount: incidents,
		})
	}

	return routes
}

// GenerateCandidateEndpoints distributes count endpoints around origin:
// angles evenly spaced over the full circle with a small random jitter,
// distances randomized in [0.7, 1.3]× base, longitude scaled by
// cos(latitude).
func (s *RouteService) GenerateCandidateEndpoints(origin models.Point, count int, baseDistanceKm float64) []models.Point {
	points := make([]models.Point, 0, count)
	for i := 0; i < count; i++ {
		distance := baseDistanceKm * (distanceSpreadMin + s.rand()*distanceSpread)
		angle := float64(i)*2*math.Pi/float64(count) + (s.rand()*angleJitter - angleJitter/2)

		lat, lng := spatial.Offset(origin.Lat, origin.Lng, angle, distance)
		points = append(points, models.Point{Lat: lat, Lng: lng})
	}
	return points
}

// sampleMidpoints places count interior points at equal fractional
// steps between a and b, each nudged perpendicular to the segment with
// a sinusoidal profile peaking at the middle.
func sampleMidpoints(a, b models.Point, count int) []models.Point {
	points := make([]models.Point, 0, count)
	dLat := b.Lat - a.Lat
	dLng := b.Lng - a.Lng

	for i := 1; i <= count; i++ {
		fraction := float64(i) / float64(count+1)
		perp := math.Sin(fraction*math.Pi) * midpointBowDeg

		points = append(points, models.Point{
			Lat: a.Lat + fraction*dLat + perp*dLng,
			Lng: a.Lng + fraction*dLng - perp*dLat,
		})
	}
	return points
}

// TopRoutes returns the n highest-scoring routes in descending order
// without mutating the input.
func TopRoutes(routes []models.CandidateRoute, n int) []models.CandidateRoute {
	ranked := make([]models.CandidateRoute, len(routes))
	copy(ranked, routes)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].SafetyScore > ranked[j].SafetyScore
	})
	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}
