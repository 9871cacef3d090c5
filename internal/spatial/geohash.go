package spatial

// Geohash support for the report store's indexed nearby query. Reports
// carry a fixed-precision geohash column; a radius query expands to the
// covering cell plus its eight neighbors and matches on prefix.

const geohashBase32 = "0123456789bcdefghjkmnpqrstuvwxyz"

// EncodeGeohash encodes a coordinate into a geohash of the given
// precision (clamped to 1..12 characters).
func EncodeGeohash(lat, lng float64, precision int) string {
	if precision < 1 {
		precision = 1
	}
	if precision > 12 {
		precision = 12
	}

	latLo, latHi := -90.0, 90.0
	lngLo, lngHi := -180.0, 180.0

	out := make([]byte, 0, precision)
	even := true
	bits, ch := 0, 0

	for len(out) < precision {
		if even {
			mid := (lngLo + lngHi) / 2
			if lng > mid {
				ch |= 1 << (4 - bits)
				lngLo = mid
			} else {
				lngHi = mid
			}
		} else {
			mid := (latLo + latHi) / 2
			if lat > mid {
				ch |= 1 << (4 - bits)
				latLo = mid
			} else {
				latHi = mid
			}
		}
		even = !even

		bits++
		if bits == 5 {
			out = append(out, geohashBase32[ch])
			bits, ch = 0, 0
		}
	}

	return string(out)
}

// GeohashBounds returns the cell rectangle (minLat, minLng, maxLat,
// maxLng) for a geohash.
func GeohashBounds(hash string) (float64, float64, float64, float64) {
	latLo, latHi := -90.0, 90.0
	lngLo, lngHi := -180.0, 180.0

	even := true
	for i := 0; i < len(hash); i++ {
		idx := geohashIndex(hash[i])
		if idx < 0 {
			continue
		}
		for mask := 16; mask > 0; mask >>= 1 {
			if even {
				mid := (lngLo + lngHi) / 2
				if idx&mask != 0 {
					lngLo = mid
				} else {
					lngHi = mid
				}
			} else {
				mid := (latLo + latHi) / 2
				if idx&mask != 0 {
					latLo = mid
				} else {
					latHi = mid
				}
			}
			even = !even
		}
	}

	return latLo, lngLo, latHi, lngHi
}

// GeohashNeighborhood returns the cell containing the point plus its
// eight surrounding cells at the same precision, deduplicated (cells
// collapse near the poles).
func GeohashNeighborhood(lat, lng float64, precision int) []string {
	center := EncodeGeohash(lat, lng, precision)
	minLat, minLng, maxLat, maxLng := GeohashBounds(center)
	latStep := maxLat - minLat
	lngStep := maxLng - minLng

	seen := map[string]bool{center: true}
	cells := []string{center}
	for dLat := -1; dLat <= 1; dLat++ {
		for dLng := -1; dLng <= 1; dLng++ {
			if dLat == 0 && dLng == 0 {
				continue
			}
			nLat := clamp(lat+float64(dLat)*latStep, -90, 90)
			nLng := lng + float64(dLng)*lngStep
			if nLng > 180 {
				nLng -= 360
			}
			if nLng < -180 {
				nLng += 360
			}
			cell := EncodeGeohash(nLat, nLng, precision)
			if !seen[cell] {
				seen[cell] = true
				cells = append(cells, cell)
			}
		}
	}

	return cells
}

// GeohashPrecisionForRadius picks the coarsest precision whose cell is
// still at least as wide as the search radius, so a cell plus its
// neighbors always covers the circle.
func GeohashPrecisionForRadius(radiusKm float64) int {
	// Approximate cell widths at the equator, per precision.
	widthsKm := []float64{5000, 1250, 156, 39.1, 4.89, 1.22, 0.153, 0.0382}
	for i, w := range widthsKm {
		if w < radiusKm {
			if i == 0 {
				return 1
			}
			return i
		}
	}
	return len(widthsKm)
}

func geohashIndex(c byte) int {
	for i := 0; i < len(geohashBase32); i++ {
		if geohashBase32[i] == c {
			return i
		}
	}
	return -1
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
