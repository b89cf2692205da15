package geospatial

import "math"

const earthRadiusKm = 6371.0

// DegreesPerKm is the flat-earth approximation used to convert lateral
// offsets in km into degrees when constructing synthetic waypoints.
const DegreesPerKm = 1.0 / 111.0

// DistanceKm calculates the great-circle distance in kilometers between two
// points. Invalid numeric input (NaN or ±Inf) yields +Inf instead of an
// error so callers can use the result directly in min/max comparisons.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	if !finite(lat1) || !finite(lon1) || !finite(lat2) || !finite(lon2) {
		return math.Inf(1)
	}

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Asin(math.Sqrt(a))
	return earthRadiusKm * c
}

// BoundingBox returns a bounding box around a point with the given radius in
// kilometers.
func BoundingBox(lat, lon, radiusKm float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusKm * DegreesPerKm
	lonDelta := radiusKm / (111.0 * math.Cos(toRad(lat)))

	return lat - latDelta, lon - lonDelta, lat + latDelta, lon + lonDelta
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
