package geospatial

import (
	"math"
	"testing"
)

func TestDistanceKmZeroForSamePoint(t *testing.T) {
	if d := DistanceKm(12.97, 77.59, 12.97, 77.59); d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestDistanceKmSymmetric(t *testing.T) {
	a := DistanceKm(12.97, 77.59, 12.98, 77.60)
	b := DistanceKm(12.98, 77.60, 12.97, 77.59)
	if a != b {
		t.Errorf("expected symmetric distance, got %f vs %f", a, b)
	}
	if a <= 0 {
		t.Errorf("expected positive distance, got %f", a)
	}
}

func TestDistanceKmKnownValue(t *testing.T) {
	// Bangalore city station to Whitefield is roughly 16-17 km as the crow flies.
	d := DistanceKm(12.9767, 77.5713, 12.9698, 77.7500)
	if d < 15 || d > 21 {
		t.Errorf("unexpected distance %f", d)
	}
}

func TestDistanceKmInvalidInput(t *testing.T) {
	cases := [][4]float64{
		{math.NaN(), 77.59, 12.98, 77.60},
		{12.97, math.Inf(1), 12.98, 77.60},
		{12.97, 77.59, math.Inf(-1), 77.60},
		{12.97, 77.59, 12.98, math.NaN()},
	}
	for _, c := range cases {
		if d := DistanceKm(c[0], c[1], c[2], c[3]); !math.IsInf(d, 1) {
			t.Errorf("expected +Inf for %v, got %f", c, d)
		}
	}
}

func TestBoundingBoxContainsCenter(t *testing.T) {
	minLat, minLon, maxLat, maxLon := BoundingBox(12.97, 77.59, 1.0)
	if minLat >= 12.97 || maxLat <= 12.97 || minLon >= 77.59 || maxLon <= 77.59 {
		t.Errorf("box does not contain center: %f %f %f %f", minLat, minLon, maxLat, maxLon)
	}
}
