package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeGeohashKnownValues(t *testing.T) {
	assert.Equal(t, "9q8yyk", EncodeGeohash(37.7749, -122.4194, 6))
	assert.Equal(t, "u4pruy", EncodeGeohash(57.64911, 10.40744, 6))
	assert.Equal(t, "u4pruydqqvj", EncodeGeohash(57.64911, 10.40744, 11))
}

func TestEncodeGeohashPrecisionClamped(t *testing.T) {
	assert.Len(t, EncodeGeohash(0, 0, 0), 1)
	assert.Len(t, EncodeGeohash(0, 0, 40), 12)
}

func TestGeohashBoundsContainPoint(t *testing.T) {
	lat, lng := 37.7749, -122.4194
	hash := EncodeGeohash(lat, lng, 6)

	minLat, minLng, maxLat, maxLng := GeohashBounds(hash)
	assert.LessOrEqual(t, minLat, lat)
	assert.GreaterOrEqual(t, maxLat, lat)
	assert.LessOrEqual(t, minLng, lng)
	assert.GreaterOrEqual(t, maxLng, lng)
}

func TestGeohashBoundsRoundTrip(t *testing.T) {
	// Re-encoding the cell center yields the same hash.
	hash := EncodeGeohash(52.52, 13.405, 6)
	minLat, minLng, maxLat, maxLng := GeohashBounds(hash)
	assert.Equal(t, hash, EncodeGeohash((minLat+maxLat)/2, (minLng+maxLng)/2, 6))
}

func TestGeohashNeighborhood(t *testing.T) {
	cells := GeohashNeighborhood(37.7749, -122.4194, 6)
	require.Len(t, cells, 9)
	assert.Equal(t, "9q8yyk", cells[0])

	seen := map[string]bool{}
	for _, c := range cells {
		assert.Len(t, c, 6)
		assert.False(t, seen[c], "duplicate cell %s", c)
		seen[c] = true
	}
}

func TestGeohashNeighborhoodCoversNearbyPoints(t *testing.T) {
	// A point a few hundred meters away lands in one of the nine cells.
	cells := GeohashNeighborhood(37.7749, -122.4194, 6)
	lat, lng := Offset(37.7749, -122.4194, 0.9, 0.4)
	target := EncodeGeohash(lat, lng, 6)
	assert.Contains(t, cells, target)
}

func TestGeohashPrecisionForRadius(t *testing.T) {
	assert.Equal(t, 6, GeohashPrecisionForRadius(0.5))
	assert.Equal(t, 6, GeohashPrecisionForRadius(1.0))
	assert.Equal(t, 5, GeohashPrecisionForRadius(2.0))
	assert.Equal(t, 3, GeohashPrecisionForRadius(100))
	// Tiny radii bottom out at the finest precision in the table.
	assert.Equal(t, 8, GeohashPrecisionForRadius(0.01))
	// Planet-scale radii use the coarsest cells.
	assert.Equal(t, 1, GeohashPrecisionForRadius(10000))
}
