package usecases_test

import (
	"time"

	"github.com/arjunrs/saferoutes/internal/core/domain"
)

// Service-area box used across engine tests.
var testBounds = domain.Bounds{
	MinLat: 12.704192,
	MaxLat: 13.173706,
	MinLon: 77.269876,
	MaxLon: 77.850066,
}

var (
	testStart = domain.GeoPoint{Lat: 12.9716, Lon: 77.5946} // Majestic
	testEnd   = domain.GeoPoint{Lat: 12.9352, Lon: 77.6245} // Koramangala
)

// line interpolates n points on the segment from a to b.
func line(a, b domain.GeoPoint, n int) []domain.GeoPoint {
	points := make([]domain.GeoPoint, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		points[i] = domain.GeoPoint{
			Lat: a.Lat + (b.Lat-a.Lat)*t,
			Lon: a.Lon + (b.Lon-a.Lon)*t,
		}
	}
	return points
}

// clockAt returns a fixed time source at the given hour on a Wednesday.
func clockAt(hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2025, time.March, 12, hour, 0, 0, 0, time.UTC)
	}
}
