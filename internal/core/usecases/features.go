package usecases

import (
	"time"

	"github.com/arjunrs/saferoutes/internal/core/domain"
)

// ExtractRouteFeatures builds the feature vector consumed by the ML
// predictor and logged for retraining. Keys and derivations must stay in
// lockstep with the trainer; renaming one silently degrades the model.
func ExtractRouteFeatures(route domain.RouteGeometry, metrics domain.SafetyMetrics, at time.Time) map[string]float64 {
	f := map[string]float64{
		"distance_km":              route.DistanceKm,
		"duration_min":             route.DurationMin,
		"main_road_percentage":     metrics.MainRoadPct,
		"crime_density":            metrics.CrimeDensity,
		"max_crime_exposure":       metrics.MaxCrimeExposure,
		"lighting_score":           metrics.LightingScore,
		"population_score":         metrics.PopulationScore,
		"traffic_score":            metrics.TrafficScore,
		"crime_hotspot_percentage": metrics.CrimeHotspotPct,
	}

	hour := at.Hour()
	// Monday-based weekday to match the trainer's calendar features.
	weekday := (int(at.Weekday()) + 6) % 7

	f["hour_of_day"] = float64(hour)
	f["day_of_week"] = float64(weekday)
	f["is_weekend"] = boolFeature(weekday >= 5)
	f["is_night"] = boolFeature(hour < 6 || hour >= 22)
	f["is_rush_hour"] = boolFeature((hour >= 7 && hour <= 10) || (hour >= 17 && hour <= 20))

	if route.DurationMin > 0 {
		f["speed_kmh"] = route.DistanceKm / (route.DurationMin / 60)
	} else {
		f["speed_kmh"] = 0
	}
	if route.DistanceKm > 0 {
		f["crime_per_km"] = metrics.CrimeDensity / route.DistanceKm
	} else {
		f["crime_per_km"] = 0
	}
	f["lighting_per_km"] = metrics.LightingScore * route.DistanceKm
	f["crime_to_lighting_ratio"] = metrics.CrimeDensity / (metrics.LightingScore + 1)
	f["crime_to_population_ratio"] = metrics.CrimeDensity / (metrics.PopulationScore + 1)

	if f["is_night"] == 1 {
		f["night_crime_risk"] = metrics.CrimeDensity * 1.5
		f["night_lighting_deficit"] = 10 - metrics.LightingScore
	} else {
		f["night_crime_risk"] = 0
		f["night_lighting_deficit"] = 0
	}

	return f
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
