package usecases_test

import (
	"testing"

	"github.com/arjunrs/saferoutes/internal/core/domain"
	"github.com/arjunrs/saferoutes/internal/core/usecases"
	"github.com/arjunrs/saferoutes/internal/dataset"
)

func scoredRoute(composite, distanceKm float64) domain.RankedRoute {
	return domain.RankedRoute{
		RouteGeometry: domain.RouteGeometry{
			Points:      line(testStart, testEnd, 40),
			DistanceKm:  distanceKm,
			DurationMin: distanceKm * 3,
		},
		SafetyMetrics:  domain.SafetyMetrics{SafetyScore: composite * 100},
		CompositeScore: composite,
	}
}

func TestCompositeScore_PrefersSaferRoutes(t *testing.T) {
	prefs := domain.DefaultPreferences()

	safe := domain.SafetyMetrics{SafetyScore: 90, CrimeDensity: 0.5, MaxCrimeExposure: 1}
	risky := domain.SafetyMetrics{SafetyScore: 40, CrimeDensity: 6, MaxCrimeExposure: 12}

	if usecases.CompositeScore(safe, 5, prefs) <= usecases.CompositeScore(risky, 5, prefs) {
		t.Error("expected the safer route to rank higher at equal distance")
	}
}

func TestCompositeScore_DistanceMatters(t *testing.T) {
	prefs := domain.DefaultPreferences()
	m := domain.SafetyMetrics{SafetyScore: 80}

	if usecases.CompositeScore(m, 4, prefs) <= usecases.CompositeScore(m, 12, prefs) {
		t.Error("expected the shorter route to rank higher at equal safety")
	}
}

func TestCompositeScore_MainRoadBonus(t *testing.T) {
	prefs := domain.DefaultPreferences()
	prefs.PreferMainRoads = true

	onMainRoads := domain.SafetyMetrics{SafetyScore: 70, MainRoadPct: 85}
	offMainRoads := domain.SafetyMetrics{SafetyScore: 70, MainRoadPct: 10}

	if usecases.CompositeScore(onMainRoads, 5, prefs) <= usecases.CompositeScore(offMainRoads, 5, prefs) {
		t.Error("expected the main-road bonus to apply")
	}
}

func TestCurate_TruncatesToSeven(t *testing.T) {
	curator := usecases.NewResultCurator(
		usecases.NewGuardrailEngine(dataset.New(nil, nil, nil), clockAt(14)))

	var candidates []domain.RankedRoute
	for i := 0; i < 12; i++ {
		candidates = append(candidates, scoredRoute(0.9-float64(i)*0.05, 5+float64(i)))
	}

	final := curator.Curate(candidates)
	if len(final) != 7 {
		t.Fatalf("expected 7 routes, got %d", len(final))
	}
	for i, r := range final {
		if r.Rank != i+1 {
			t.Errorf("route %d has rank %d", i, r.Rank)
		}
	}
	if !final[0].IsRecommended {
		t.Error("the top route must be recommended")
	}
	if final[1].IsRecommended {
		t.Error("only the top route is recommended")
	}
	if final[0].Category != domain.CategoryBest {
		t.Errorf("expected category best for rank 1, got %s", final[0].Category)
	}
}

func TestCurate_OrdersByCompositeDescending(t *testing.T) {
	curator := usecases.NewResultCurator(
		usecases.NewGuardrailEngine(dataset.New(nil, nil, nil), clockAt(14)))

	candidates := []domain.RankedRoute{
		scoredRoute(0.3, 9),
		scoredRoute(0.8, 7),
		scoredRoute(0.5, 5),
	}

	final := curator.Curate(candidates)
	if len(final) != 3 {
		t.Fatalf("expected 3 routes, got %d", len(final))
	}
	for i := 1; i < len(final); i++ {
		if final[i].CompositeScore > final[i-1].CompositeScore {
			t.Errorf("routes out of order at %d", i)
		}
	}
}

func TestCurate_DropsGuardrailRejections(t *testing.T) {
	// 01:00 clock: the late-night guardrail rejects everything.
	curator := usecases.NewResultCurator(
		usecases.NewGuardrailEngine(dataset.New(nil, nil, nil), clockAt(1)))

	final := curator.Curate([]domain.RankedRoute{scoredRoute(0.8, 5)})
	if len(final) != 0 {
		t.Fatalf("expected all candidates rejected at 01:00, got %d", len(final))
	}
}

func TestCurate_CategoriesAndWarnings(t *testing.T) {
	curator := usecases.NewResultCurator(
		usecases.NewGuardrailEngine(dataset.New(nil, nil, nil), clockAt(14)))

	best := scoredRoute(0.9, 6)
	safest := scoredRoute(0.8, 6)
	safest.SafetyMetrics.CrimeDensity = 1.0
	safest.SafetyMetrics.MaxCrimeExposure = 2
	risky := scoredRoute(0.7, 6)
	risky.SafetyMetrics.CrimeDensity = 6
	risky.SafetyMetrics.MaxCrimeExposure = 10

	final := curator.Curate([]domain.RankedRoute{best, safest, risky})
	if len(final) != 3 {
		t.Fatalf("expected 3 routes, got %d", len(final))
	}

	if final[0].Category != domain.CategoryBest {
		t.Errorf("rank 1 category = %s", final[0].Category)
	}
	if final[1].Category != domain.CategorySafest {
		t.Errorf("low-crime route category = %s", final[1].Category)
	}
	if final[2].Warning == "" {
		t.Error("expected a crime-exposure warning on the risky route")
	}
	if len(final[1].Reasons) == 0 {
		t.Error("expected reasons on every curated route")
	}
}

func TestCurate_StopsAfterTwentyPasses(t *testing.T) {
	curator := usecases.NewResultCurator(
		usecases.NewGuardrailEngine(dataset.New(nil, nil, nil), clockAt(14)))

	var candidates []domain.RankedRoute
	for i := 0; i < 40; i++ {
		candidates = append(candidates, scoredRoute(1-float64(i)*0.01, 5))
	}

	final := curator.Curate(candidates)
	if len(final) != 7 {
		t.Fatalf("expected truncation to 7, got %d", len(final))
	}
	// Descriptions exist for all survivors.
	for i, r := range final {
		if r.Description == "" {
			t.Errorf("route %d missing description", i)
		}
		if r.Category == "" {
			t.Errorf("route %d missing category", i)
		}
	}
}
