package domain

import "time"

// Route categories assigned by the result curator, in priority order.
const (
	CategoryBest      = "best"
	CategorySafest    = "safest"
	CategoryFastest   = "fastest"
	CategoryMainRoads = "main_roads"
	CategoryBalanced  = "balanced"
	CategoryDirect    = "direct"
)

// RouteStep is a single turn-by-turn instruction from the route provider.
type RouteStep struct {
	Number         int     `json:"number"`
	Instruction    string  `json:"instruction"`
	DistanceMeters float64 `json:"distance"`
	DistanceText   string  `json:"distance_text"`
}

// RouteGeometry is one polyline alternative returned by the route provider.
// Waypoint is nil for direct routes.
type RouteGeometry struct {
	Points      []GeoPoint  `json:"points"`
	DistanceKm  float64     `json:"distance_km"`
	DurationMin float64     `json:"duration_min"`
	Steps       []RouteStep `json:"steps,omitempty"`
	Waypoint    *GeoPoint   `json:"waypoint,omitempty"`
}

// Start returns the first polyline point.
func (g *RouteGeometry) Start() GeoPoint {
	if len(g.Points) == 0 {
		return GeoPoint{}
	}
	return g.Points[0]
}

// End returns the last polyline point.
func (g *RouteGeometry) End() GeoPoint {
	if len(g.Points) == 0 {
		return GeoPoint{}
	}
	return g.Points[len(g.Points)-1]
}

// PreferenceSet carries per-request safety preferences. Weights are not
// required to sum to 1.
type PreferenceSet struct {
	PreferMainRoads bool    `json:"prefer_main_roads"`
	PreferWellLit   bool    `json:"prefer_well_lit"`
	PreferPopulated bool    `json:"prefer_populated"`
	SafetyWeight    float64 `json:"safety_weight"`
	DistanceWeight  float64 `json:"distance_weight"`
}

// DefaultPreferences returns the neutral preference set.
func DefaultPreferences() PreferenceSet {
	return PreferenceSet{SafetyWeight: 0.7, DistanceWeight: 0.3}
}

// Normalize fills in default weights where the caller left them zero.
func (p PreferenceSet) Normalize() PreferenceSet {
	if p.SafetyWeight == 0 {
		p.SafetyWeight = 0.7
	}
	if p.DistanceWeight == 0 {
		p.DistanceWeight = 0.3
	}
	return p
}

// SafetyMetrics is the per-route safety profile, immutable once computed.
type SafetyMetrics struct {
	CrimeDensity     float64 `json:"crime_density"`
	MaxCrimeExposure float64 `json:"max_crime_exposure"`
	CrimeHotspotPct  float64 `json:"crime_hotspot_percentage"`
	LightingScore    float64 `json:"lighting_score"`
	PopulationScore  float64 `json:"population_score"`
	TrafficScore     float64 `json:"traffic_score"`
	MainRoadPct      float64 `json:"main_road_percentage"`
	SafetyScore      float64 `json:"safety_score"`
}

// GuardrailVerdict is the outcome of applying safety guardrails to a scored
// route. Only the late-night window can set IsValid=false; every other check
// attenuates the score.
type GuardrailVerdict struct {
	IsValid       bool     `json:"is_valid"`
	AdjustedScore float64  `json:"adjusted_score"`
	Warnings      []string `json:"warnings"`
}

// RankedRoute is a fully scored, guardrail-checked, categorized route.
type RankedRoute struct {
	RouteGeometry
	SafetyMetrics

	CompositeScore float64  `json:"-"`
	Rank           int      `json:"rank"`
	IsRecommended  bool     `json:"is_recommended"`
	Category       string   `json:"category"`
	Description    string   `json:"description"`
	Reasons        []string `json:"reasons"`
	Warning        string   `json:"warning,omitempty"`

	// Set only when an ML predictor contributed to the safety score.
	RuleScore *float64 `json:"rule_score,omitempty"`
	MLScore   *float64 `json:"ml_score,omitempty"`

	GuardrailWarnings []string `json:"guardrail_warnings,omitempty"`
}

// OptimizeResult is the engine's answer to one optimization request.
// IsFallback signals the degraded path: a single best-effort route returned
// because the normal candidate/guardrail pipeline produced nothing.
type OptimizeResult struct {
	Routes        []RankedRoute `json:"routes"`
	TotalAnalyzed int           `json:"total_analyzed"`
	IsFallback    bool          `json:"is_fallback"`
}

// RouteFeedback is a user rating of a route they travelled.
type RouteFeedback struct {
	ID          string    `json:"id,omitempty"`
	RouteID     string    `json:"route_id"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	DistanceKm  float64   `json:"distance_km"`
	DurationMin float64   `json:"duration_min"`
	SafetyScore float64   `json:"safety_score"`
	CreatedAt   time.Time `json:"created_at"`
}

// UnsafeSegment is a single point a user flagged as unsafe.
type UnsafeSegment struct {
	Location  GeoPoint  `json:"location"`
	RouteID   string    `json:"route_id"`
	Rating    int       `json:"rating"`
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// FeatureSample pairs an extracted feature vector with the label used for
// offline model retraining.
type FeatureSample struct {
	Features map[string]float64 `json:"features"`
	Label    float64            `json:"label"`
	LoggedAt time.Time          `json:"logged_at"`
}
