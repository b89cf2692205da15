package usecases

import (
	"math"
	"time"

	"github.com/arjunrs/saferoutes/internal/core/domain"
	"github.com/arjunrs/saferoutes/internal/dataset"
	"github.com/arjunrs/saferoutes/internal/pkg/geospatial"
)

const (
	guardrailCrimeRadiusDeg = 0.5 * geospatial.DegreesPerKm
	guardrailCrimeLimit     = 20

	poorLightingCount    = 2
	poorLightingFraction = 0.30

	isolatedDensity  = 50.0
	isolatedFraction = 0.75
)

// GuardrailEngine applies preference-independent safety constraints to an
// already scored route. Every check attenuates the score; only the deep
// late-night window rejects outright, so the candidate pool is never starved
// by noisy data.
type GuardrailEngine struct {
	data *dataset.Spatial
	now  func() time.Time
}

// NewGuardrailEngine creates an engine over the given datasets. now is
// injected so time-window behavior is testable; pass time.Now in production.
func NewGuardrailEngine(data *dataset.Spatial, now func() time.Time) *GuardrailEngine {
	if now == nil {
		now = time.Now
	}
	return &GuardrailEngine{data: data, now: now}
}

// Apply evaluates the route against the time-of-day, crime, lighting, and
// isolation guardrails and returns the verdict with the adjusted score
// clamped to [0,100].
func (e *GuardrailEngine) Apply(points []domain.GeoPoint, durationMin, safetyScore float64) domain.GuardrailVerdict {
	verdict := domain.GuardrailVerdict{IsValid: true, AdjustedScore: safetyScore}

	startAt := e.now()
	endAt := startAt.Add(time.Duration(durationMin * float64(time.Minute)))
	startHour := startAt.Hour()
	endHour := endAt.Hour()

	multiplier := 1.0

	switch {
	case isLateNight(startHour):
		multiplier *= 0.5
		verdict.Warnings = append(verdict.Warnings, "late-night travel window (23:00-05:00), reduced activity expected")
		// Deep-night departures are rejected outright; the rest of the
		// late-night window only penalizes.
		if startHour >= 0 && startHour < 3 {
			verdict.IsValid = false
		}
	case startHour >= 5 && startHour < 7:
		multiplier *= 0.8
		verdict.Warnings = append(verdict.Warnings, "early-morning travel window (05:00-07:00)")
	}

	if !isLateNight(startHour) && isLateNight(endHour) {
		multiplier *= 0.8
		verdict.Warnings = append(verdict.Warnings, "route is projected to end in the late-night window")
	}

	sampled := samplePoints(points, scorerSampleLimit)
	if len(sampled) > 0 {
		maxCrime := 0
		poorlyLit := 0
		isolated := 0
		for _, p := range sampled {
			if c := e.data.CrimeCount(p.Lat, p.Lon, guardrailCrimeRadiusDeg); c > maxCrime {
				maxCrime = c
			}
			if e.data.LightCount(p.Lat, p.Lon, ambientQueryRadiusDeg) < poorLightingCount {
				poorlyLit++
			}
			if agg, ok := e.data.PopulationAround(p.Lat, p.Lon, ambientQueryRadiusDeg); !ok || agg.DensityMean < isolatedDensity {
				isolated++
			}
		}

		n := float64(len(sampled))

		if maxCrime > guardrailCrimeLimit {
			multiplier *= 0.7
			verdict.Warnings = append(verdict.Warnings, "high crime concentration near parts of this route")
		}

		isNight := startHour < 6 || startHour >= 20
		if isNight && float64(poorlyLit)/n >= poorLightingFraction {
			multiplier *= 0.8
			verdict.Warnings = append(verdict.Warnings, "significant portions of this route are poorly lit at night")
		}

		if float64(isolated)/n >= isolatedFraction {
			multiplier *= 0.8
			verdict.Warnings = append(verdict.Warnings, "route passes through sparsely populated areas")
		}
	}

	verdict.AdjustedScore = math.Min(100, math.Max(0, safetyScore*multiplier))
	return verdict
}

func isLateNight(hour int) bool {
	return hour >= 23 || hour < 5
}
