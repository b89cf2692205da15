package usecases

import (
	"math"

	"github.com/arjunrs/saferoutes/internal/core/domain"
	"github.com/arjunrs/saferoutes/internal/dataset"
)

const (
	crimeQueryRadiusDeg   = 0.003
	ambientQueryRadiusDeg = 0.005

	// A sampled point with more than this many nearby incidents counts as
	// a crime hotspot.
	hotspotCrimeCount = 3

	scorerSampleLimit = 50

	// Applied when a dataset has no points near a sample. The neutral
	// midpoint of the 0-10 scales.
	defaultLightingScore   = 5.0
	defaultPopulationScore = 5.0
	defaultTrafficScore    = 5.0
)

// SafetyScorer derives per-route SafetyMetrics from the three spatial
// datasets. Score is a pure function of its inputs: the datasets are never
// mutated and no state is kept between calls.
type SafetyScorer struct {
	data *dataset.Spatial
}

// NewSafetyScorer creates a scorer over the given datasets.
func NewSafetyScorer(data *dataset.Spatial) *SafetyScorer {
	return &SafetyScorer{data: data}
}

// Score samples the polyline at up to 50 evenly spaced points, aggregates
// crime, lighting, and population signals, and folds them into a safety
// score clamped to [0,100].
func (s *SafetyScorer) Score(points []domain.GeoPoint, prefs domain.PreferenceSet) domain.SafetyMetrics {
	sampled := samplePoints(points, scorerSampleLimit)
	if len(sampled) == 0 {
		return domain.SafetyMetrics{}
	}

	var (
		totalCrime    float64
		maxCrime      float64
		hotspots      int
		totalLighting float64
		totalPop      float64
		totalTraffic  float64
		mainRoadHits  int
	)

	for _, p := range sampled {
		crimeCount := float64(s.data.CrimeCount(p.Lat, p.Lon, crimeQueryRadiusDeg))
		totalCrime += crimeCount
		if crimeCount > maxCrime {
			maxCrime = crimeCount
		}
		if crimeCount > hotspotCrimeCount {
			hotspots++
		}

		lighting, ok := s.data.LightingAround(p.Lat, p.Lon, ambientQueryRadiusDeg)
		if !ok {
			lighting = defaultLightingScore
		}
		totalLighting += lighting

		if agg, ok := s.data.PopulationAround(p.Lat, p.Lon, ambientQueryRadiusDeg); ok {
			totalPop += agg.DensityMean / 1000
			totalTraffic += agg.TrafficMean / 10
			if agg.MainRoadShare > 0.5 {
				mainRoadHits++
			}
		} else {
			totalPop += defaultPopulationScore
			totalTraffic += defaultTrafficScore
		}
	}

	n := float64(len(sampled))
	avgCrime := totalCrime / n
	avgLighting := totalLighting / n
	avgPopulation := totalPop / n
	avgTraffic := totalTraffic / n
	mainRoadPct := float64(mainRoadHits) / n * 100
	hotspotPct := float64(hotspots) / n * 100

	// Each penalty term is capped before summing so a single pathological
	// sample cannot dominate the score.
	baseCrimePenalty := math.Min(40, math.Pow(avgCrime, 1.2)*5)
	maxCrimePenalty := math.Min(40, math.Pow(maxCrime, 1.4)*7)
	hotspotPenalty := math.Min(30, hotspotPct*0.5)

	baseScore := math.Max(0, 100-(baseCrimePenalty+maxCrimePenalty+hotspotPenalty))

	lightingMult := 1 + (avgLighting/10)*prefWeight(prefs.PreferWellLit, 2.5, 0.8)
	populationMult := 1 + (avgPopulation/10)*prefWeight(prefs.PreferPopulated, 2.0, 0.6)
	trafficMult := 1 + (avgTraffic/10)*prefWeight(prefs.PreferPopulated, 1.5, 0.4)
	mainRoadMult := 1 + (mainRoadPct/100)*prefWeight(prefs.PreferMainRoads, 2.5, 0.7)

	totalMult := (lightingMult + populationMult + trafficMult + mainRoadMult) / 4
	finalScore := math.Min(100, baseScore*totalMult)

	return domain.SafetyMetrics{
		CrimeDensity:     round2(avgCrime),
		MaxCrimeExposure: round2(maxCrime),
		CrimeHotspotPct:  round2(hotspotPct),
		LightingScore:    round2(avgLighting),
		PopulationScore:  round2(avgPopulation),
		TrafficScore:     round2(avgTraffic),
		MainRoadPct:      round2(mainRoadPct),
		SafetyScore:      round2(finalScore),
	}
}

func prefWeight(on bool, strong, mild float64) float64 {
	if on {
		return strong
	}
	return mild
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
