package usecases_test

import (
	"strings"
	"testing"

	"github.com/arjunrs/saferoutes/internal/core/usecases"
	"github.com/arjunrs/saferoutes/internal/dataset"
)

func TestGuardrails_DeepNightRejects(t *testing.T) {
	engine := usecases.NewGuardrailEngine(dataset.New(nil, nil, nil), clockAt(1))

	verdict := engine.Apply(line(testStart, testEnd, 40), 20, 90)
	if verdict.IsValid {
		t.Fatal("expected rejection for 01:00 departure")
	}
	if len(verdict.Warnings) == 0 {
		t.Error("expected a late-night warning")
	}
}

func TestGuardrails_LateEveningPenalizesWithoutRejecting(t *testing.T) {
	engine := usecases.NewGuardrailEngine(dataset.New(nil, nil, nil), clockAt(23))

	verdict := engine.Apply(line(testStart, testEnd, 40), 20, 90)
	if !verdict.IsValid {
		t.Fatal("23:00 departures penalize but never reject")
	}
	if verdict.AdjustedScore >= 90 {
		t.Errorf("expected a reduced score, got %v", verdict.AdjustedScore)
	}
}

func TestGuardrails_EarlyLateNightHourDoesNotReject(t *testing.T) {
	engine := usecases.NewGuardrailEngine(dataset.New(nil, nil, nil), clockAt(4))

	if verdict := engine.Apply(line(testStart, testEnd, 40), 20, 90); !verdict.IsValid {
		t.Error("04:00 is within the penalty window but outside the rejection window")
	}
}

func TestGuardrails_AfternoonPasses(t *testing.T) {
	engine := usecases.NewGuardrailEngine(dataset.New(nil, nil, nil), clockAt(14))

	verdict := engine.Apply(line(testStart, testEnd, 40), 20, 90)
	if !verdict.IsValid {
		t.Fatal("expected afternoon departure to pass")
	}
	for _, w := range verdict.Warnings {
		if strings.Contains(w, "late-night") || strings.Contains(w, "early-morning") {
			t.Errorf("unexpected time-window warning at 14:00: %s", w)
		}
	}
}

func TestGuardrails_RouteEndingInLateNightWindow(t *testing.T) {
	engine := usecases.NewGuardrailEngine(dataset.New(nil, nil, nil), clockAt(22))

	// 22:00 departure, two-hour ride: ends past 23:00.
	long := engine.Apply(line(testStart, testEnd, 40), 120, 90)
	short := engine.Apply(line(testStart, testEnd, 40), 20, 90)

	if !long.IsValid {
		t.Fatal("the end-time extension never rejects")
	}
	if long.AdjustedScore >= short.AdjustedScore {
		t.Errorf("expected the late-ending route to score lower: %v vs %v",
			long.AdjustedScore, short.AdjustedScore)
	}
}

func TestGuardrails_HighCrimeConcentration(t *testing.T) {
	points := line(testStart, testEnd, 40)
	mid := points[len(points)/2]
	crimes := crimesAt(mid, 25)

	clean := usecases.NewGuardrailEngine(dataset.New(nil, nil, nil), clockAt(14))
	dirty := usecases.NewGuardrailEngine(dataset.New(crimes, nil, nil), clockAt(14))

	base := clean.Apply(points, 20, 90)
	hit := dirty.Apply(points, 20, 90)

	if !hit.IsValid {
		t.Fatal("crime concentration penalizes but never rejects")
	}
	if hit.AdjustedScore >= base.AdjustedScore {
		t.Errorf("expected crime concentration to reduce the score: %v vs %v",
			hit.AdjustedScore, base.AdjustedScore)
	}
}

func TestGuardrails_IsolationPenalty(t *testing.T) {
	points := line(testStart, testEnd, 40)

	var pop []dataset.PopulationPoint
	for _, p := range points {
		pop = append(pop, dataset.PopulationPoint{Lat: p.Lat, Lon: p.Lon, Density: 500})
	}

	populated := usecases.NewGuardrailEngine(dataset.New(nil, nil, pop), clockAt(14))
	isolated := usecases.NewGuardrailEngine(dataset.New(nil, nil, nil), clockAt(14))

	busy := populated.Apply(points, 20, 90)
	empty := isolated.Apply(points, 20, 90)

	if empty.AdjustedScore >= busy.AdjustedScore {
		t.Errorf("expected isolation penalty: isolated=%v populated=%v",
			empty.AdjustedScore, busy.AdjustedScore)
	}
}

func TestGuardrails_ScoreClamped(t *testing.T) {
	engine := usecases.NewGuardrailEngine(dataset.New(nil, nil, nil), clockAt(14))

	verdict := engine.Apply(line(testStart, testEnd, 40), 20, 100)
	if verdict.AdjustedScore < 0 || verdict.AdjustedScore > 100 {
		t.Errorf("adjusted score out of range: %v", verdict.AdjustedScore)
	}
}
