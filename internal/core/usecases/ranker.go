package usecases

import (
	"fmt"
	"math"
	"sort"

	"github.com/arjunrs/saferoutes/internal/core/domain"
)

const (
	maxGuardrailPassed = 20
	maxFinalRoutes     = 7
)

// CompositeScore folds safety, distance, and preference bonuses into the
// single ordering key used for ranking. The value is internal and never
// surfaced to callers.
func CompositeScore(m domain.SafetyMetrics, distanceKm float64, prefs domain.PreferenceSet) float64 {
	normSafety := m.SafetyScore / 100
	normDistance := math.Max(0, 1-distanceKm/30)

	crimePenalty := math.Min(1, (m.CrimeDensity*0.3+m.MaxCrimeExposure*0.7)/20)
	safetyComponent := normSafety * (1 - crimePenalty*0.5)

	bonus := 0.0
	if prefs.PreferMainRoads {
		bonus += (m.MainRoadPct / 100) * 0.35
		if m.MainRoadPct > 70 {
			bonus += 0.15
		}
	}
	if prefs.PreferWellLit {
		bonus += (m.LightingScore / 10) * 0.15
	}
	if prefs.PreferPopulated {
		bonus += (m.PopulationScore / 10) * 0.15
	}

	return safetyComponent*prefs.SafetyWeight + normDistance*prefs.DistanceWeight + bonus
}

// ResultCurator orders scored candidates, runs them through the guardrails,
// and decorates the survivors with rank, category, and user-facing text.
type ResultCurator struct {
	guardrails *GuardrailEngine
}

// NewResultCurator creates a curator backed by the given guardrail engine.
func NewResultCurator(g *GuardrailEngine) *ResultCurator {
	return &ResultCurator{guardrails: g}
}

// Curate sorts candidates by composite score descending, applies guardrails
// in that order until 20 routes pass, truncates to the top 7, and annotates
// each survivor. Candidates rejected by a guardrail are dropped.
func (c *ResultCurator) Curate(candidates []domain.RankedRoute) []domain.RankedRoute {
	sortByComposite(candidates)

	passed := make([]domain.RankedRoute, 0, maxGuardrailPassed)
	for _, cand := range candidates {
		verdict := c.guardrails.Apply(cand.Points, cand.DurationMin, cand.SafetyScore)
		if !verdict.IsValid {
			continue
		}
		cand.SafetyScore = round2(verdict.AdjustedScore)
		cand.GuardrailWarnings = verdict.Warnings
		passed = append(passed, cand)
		if len(passed) >= maxGuardrailPassed {
			break
		}
	}

	if len(passed) > maxFinalRoutes {
		passed = passed[:maxFinalRoutes]
	}
	annotate(passed)
	return passed
}

// sortByComposite orders routes best-first. Ties break toward shorter, then
// safer, routes so the ordering is deterministic across runs.
func sortByComposite(routes []domain.RankedRoute) {
	sort.SliceStable(routes, func(i, j int) bool {
		if routes[i].CompositeScore != routes[j].CompositeScore {
			return routes[i].CompositeScore > routes[j].CompositeScore
		}
		if routes[i].DistanceKm != routes[j].DistanceKm {
			return routes[i].DistanceKm < routes[j].DistanceKm
		}
		return routes[i].SafetyScore > routes[j].SafetyScore
	})
}

func annotate(routes []domain.RankedRoute) {
	if len(routes) == 0 {
		return
	}

	minDistance := routes[0].DistanceKm
	for _, r := range routes[1:] {
		if r.DistanceKm < minDistance {
			minDistance = r.DistanceKm
		}
	}

	for i := range routes {
		r := &routes[i]
		r.Rank = i + 1
		r.IsRecommended = i == 0

		switch {
		case i == 0:
			r.Category = domain.CategoryBest
			r.Description = "Best match for your preferences"
		case r.CrimeDensity <= 1.5 && r.MaxCrimeExposure <= 3:
			r.Category = domain.CategorySafest
			r.Description = "Safest route (avoids crime hotspots)"
		case r.DistanceKm <= minDistance*1.05:
			r.Category = domain.CategoryFastest
			r.Description = "Shortest distance"
		case r.MainRoadPct >= 70:
			r.Category = domain.CategoryMainRoads
			r.Description = "Uses main roads"
		default:
			r.Category = domain.CategoryBalanced
			r.Description = "Well-balanced option"
		}

		r.Reasons = buildReasons(r.SafetyMetrics)
		r.Warning = buildWarning(r.SafetyMetrics)
	}
}

func buildReasons(m domain.SafetyMetrics) []string {
	var reasons []string

	switch {
	case m.CrimeDensity <= 1:
		reasons = append(reasons, "Very low crime area")
	case m.CrimeDensity <= 2:
		reasons = append(reasons, "Low crime density")
	case m.CrimeDensity > 4:
		reasons = append(reasons, fmt.Sprintf("Crime density: %.1f", m.CrimeDensity))
	}

	switch {
	case m.MaxCrimeExposure <= 2:
		reasons = append(reasons, "No crime hotspots")
	case m.MaxCrimeExposure <= 5:
		reasons = append(reasons, "Minimal crime exposure")
	default:
		reasons = append(reasons, fmt.Sprintf("Max crime exposure: %.0f", m.MaxCrimeExposure))
	}

	if m.MainRoadPct > 70 {
		reasons = append(reasons, fmt.Sprintf("%.0f%% main roads", m.MainRoadPct))
	}
	if m.LightingScore > 7.5 {
		reasons = append(reasons, "Well-lit area")
	}
	if m.PopulationScore > 6 {
		reasons = append(reasons, "Populated area")
	}

	return reasons
}

func buildWarning(m domain.SafetyMetrics) string {
	switch {
	case m.MaxCrimeExposure > 8 || m.CrimeDensity > 5:
		return "High crime exposure"
	case m.MaxCrimeExposure > 5 || m.CrimeDensity > 3:
		return "Moderate crime exposure"
	default:
		return ""
	}
}
