package usecases_test

import (
	"testing"
	"time"

	"github.com/arjunrs/saferoutes/internal/core/domain"
	"github.com/arjunrs/saferoutes/internal/core/usecases"
)

func TestExtractRouteFeatures(t *testing.T) {
	route := domain.RouteGeometry{DistanceKm: 6, DurationMin: 30}
	m := domain.SafetyMetrics{
		CrimeDensity:  2,
		LightingScore: 4,
	}

	// Saturday, 23:00.
	at := time.Date(2025, time.March, 15, 23, 0, 0, 0, time.UTC)
	f := usecases.ExtractRouteFeatures(route, m, at)

	if f["speed_kmh"] != 12 {
		t.Errorf("speed_kmh = %v, want 12", f["speed_kmh"])
	}
	if f["is_weekend"] != 1 {
		t.Errorf("saturday must flag is_weekend, got %v", f["is_weekend"])
	}
	if f["is_night"] != 1 {
		t.Errorf("23:00 must flag is_night, got %v", f["is_night"])
	}
	if f["is_rush_hour"] != 0 {
		t.Errorf("23:00 is not rush hour, got %v", f["is_rush_hour"])
	}
	if f["night_crime_risk"] != 3 {
		t.Errorf("night_crime_risk = %v, want crime*1.5", f["night_crime_risk"])
	}
	if f["night_lighting_deficit"] != 6 {
		t.Errorf("night_lighting_deficit = %v, want 10-lighting", f["night_lighting_deficit"])
	}
	if f["crime_to_lighting_ratio"] != 2.0/5.0 {
		t.Errorf("crime_to_lighting_ratio = %v", f["crime_to_lighting_ratio"])
	}
}

func TestExtractRouteFeatures_Daytime(t *testing.T) {
	route := domain.RouteGeometry{DistanceKm: 6, DurationMin: 30}

	// Wednesday, 08:30.
	at := time.Date(2025, time.March, 12, 8, 30, 0, 0, time.UTC)
	f := usecases.ExtractRouteFeatures(route, domain.SafetyMetrics{}, at)

	if f["is_weekend"] != 0 {
		t.Errorf("wednesday flagged as weekend")
	}
	if f["is_night"] != 0 {
		t.Errorf("08:30 flagged as night")
	}
	if f["is_rush_hour"] != 1 {
		t.Errorf("08:30 must flag rush hour")
	}
	if f["night_crime_risk"] != 0 || f["night_lighting_deficit"] != 0 {
		t.Errorf("night features must vanish during the day")
	}
}

func TestExtractRouteFeatures_ZeroDuration(t *testing.T) {
	f := usecases.ExtractRouteFeatures(domain.RouteGeometry{DistanceKm: 2}, domain.SafetyMetrics{},
		time.Date(2025, time.March, 12, 12, 0, 0, 0, time.UTC))
	if f["speed_kmh"] != 0 {
		t.Errorf("zero duration must yield zero speed, got %v", f["speed_kmh"])
	}
}
