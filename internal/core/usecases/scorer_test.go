package usecases_test

import (
	"testing"

	"github.com/arjunrs/saferoutes/internal/core/domain"
	"github.com/arjunrs/saferoutes/internal/core/usecases"
	"github.com/arjunrs/saferoutes/internal/dataset"
)

func crimesAt(p domain.GeoPoint, n int) []dataset.CrimePoint {
	crimes := make([]dataset.CrimePoint, n)
	for i := range crimes {
		crimes[i] = dataset.CrimePoint{Lat: p.Lat, Lon: p.Lon}
	}
	return crimes
}

func TestScorer_EmptyDatasetsUseNeutralDefaults(t *testing.T) {
	scorer := usecases.NewSafetyScorer(dataset.New(nil, nil, nil))

	m := scorer.Score(line(testStart, testEnd, 40), domain.DefaultPreferences())

	if m.CrimeDensity != 0 || m.MaxCrimeExposure != 0 {
		t.Errorf("expected zero crime metrics, got %+v", m)
	}
	if m.LightingScore != 5.0 {
		t.Errorf("expected neutral lighting 5.0, got %v", m.LightingScore)
	}
	if m.PopulationScore != 5.0 {
		t.Errorf("expected neutral population 5.0, got %v", m.PopulationScore)
	}
	if m.SafetyScore != 100 {
		t.Errorf("expected max safety with no crime data, got %v", m.SafetyScore)
	}
}

func TestScorer_IsPure(t *testing.T) {
	data := dataset.New(crimesAt(testStart, 2), nil, nil)
	scorer := usecases.NewSafetyScorer(data)
	points := line(testStart, testEnd, 40)
	prefs := domain.DefaultPreferences()

	first := scorer.Score(points, prefs)
	second := scorer.Score(points, prefs)
	if first != second {
		t.Errorf("scoring is not deterministic: %+v vs %+v", first, second)
	}
}

func TestScorer_MoreCrimeLowersScore(t *testing.T) {
	points := line(testStart, testEnd, 40)
	prefs := domain.DefaultPreferences()

	// One incident cluster at the midpoint; only its size varies.
	mid := points[len(points)/2]
	low := crimesAt(mid, 1)
	high := crimesAt(mid, 6)

	lowScore := usecases.NewSafetyScorer(dataset.New(low, nil, nil)).Score(points, prefs)
	highScore := usecases.NewSafetyScorer(dataset.New(high, nil, nil)).Score(points, prefs)

	if highScore.SafetyScore >= lowScore.SafetyScore {
		t.Errorf("expected more crime to lower the score: low=%v high=%v",
			lowScore.SafetyScore, highScore.SafetyScore)
	}
	if highScore.CrimeDensity <= lowScore.CrimeDensity {
		t.Errorf("expected crime density to grow with incidents: low=%v high=%v",
			lowScore.CrimeDensity, highScore.CrimeDensity)
	}
}

func TestScorer_DetectsHotspots(t *testing.T) {
	points := line(testStart, testEnd, 40)

	var crimes []dataset.CrimePoint
	for _, p := range points {
		crimes = append(crimes, crimesAt(p, 5)...) // above the hotspot bar
	}

	m := usecases.NewSafetyScorer(dataset.New(crimes, nil, nil)).
		Score(points, domain.DefaultPreferences())
	if m.CrimeHotspotPct == 0 {
		t.Error("expected hotspot percentage above zero")
	}
}

func TestScorer_MainRoadPreferenceRaisesScore(t *testing.T) {
	points := line(testStart, testEnd, 40)

	var pop []dataset.PopulationPoint
	for _, p := range points {
		pop = append(pop, dataset.PopulationPoint{
			Lat: p.Lat, Lon: p.Lon,
			Density: 5000, Traffic: 50, MainRoad: true,
		})
	}
	// Enough crime to keep the base score away from the 100 clamp.
	crimes := crimesAt(points[len(points)/2], 3)
	scorer := usecases.NewSafetyScorer(dataset.New(crimes, nil, pop))

	neutral := scorer.Score(points, domain.DefaultPreferences())

	prefs := domain.DefaultPreferences()
	prefs.PreferMainRoads = true
	preferred := scorer.Score(points, prefs)

	if preferred.MainRoadPct != 100 {
		t.Fatalf("expected 100%% main roads, got %v", preferred.MainRoadPct)
	}
	if preferred.SafetyScore <= neutral.SafetyScore {
		t.Errorf("expected main-road preference to raise the score on a main-road route: %v vs %v",
			preferred.SafetyScore, neutral.SafetyScore)
	}
}

func TestScorer_EmptyPolyline(t *testing.T) {
	scorer := usecases.NewSafetyScorer(dataset.New(nil, nil, nil))
	if m := scorer.Score(nil, domain.DefaultPreferences()); m.SafetyScore != 0 {
		t.Errorf("expected zero metrics for empty polyline, got %+v", m)
	}
}
