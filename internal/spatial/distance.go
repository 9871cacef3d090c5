package spatial

import (
	"math"

	"github.com/golang/geo/s2"
)

// Earth radii used across the scoring engine. The bounding-box fallback
// query uses the equatorial value.
const (
	EarthRadiusKm           = 6371.0
	EarthRadiusEquatorialKm = 6378.1
)

// DistanceKm returns the great-circle distance between two points in
// kilometers.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	a := s2.LatLngFromDegrees(lat1, lng1)
	b := s2.LatLngFromDegrees(lat2, lng2)
	return a.Distance(b).Radians() * EarthRadiusKm
}

// Offset moves a point distanceKm in the direction of angle (radians,
// measured from north) using an equirectangular approximation: the
// longitude step shrinks by cos(latitude). Good enough at route scale
// (a few km); not intended for polar or antimeridian work.
func Offset(lat, lng, angle, distanceKm float64) (float64, float64) {
	rad := distanceKm / EarthRadiusKm
	newLat := lat + rad*math.Cos(angle)*(180/math.Pi)
	newLng := lng + rad*math.Sin(angle)*(180/math.Pi)/math.Cos(lat*math.Pi/180)
	return newLat, newLng
}

// BoundingDeltas returns the latitude and longitude half-extents, in
// degrees, of a box that covers a radiusKm circle around a point at the
// given latitude.
func BoundingDeltas(lat, radiusKm float64) (latDelta, lngDelta float64) {
	latDelta = (radiusKm / EarthRadiusEquatorialKm) * (180 / math.Pi)
	lngDelta = latDelta / math.Cos(lat*math.Pi/180)
	return latDelta, lngDelta
}
