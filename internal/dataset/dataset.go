// Package dataset holds the three read-only spatial datasets the safety
// engine scores against. They are loaded once at process start and never
// mutated afterwards, so query methods need no locking.
package dataset

import "math"

// CrimePoint is a single recorded incident location.
type CrimePoint struct {
	Lat float64
	Lon float64
}

// LightPoint is a street-lighting measurement.
type LightPoint struct {
	Lat   float64
	Lon   float64
	Score float64
}

// PopulationPoint carries population density, traffic level, and a
// main-road flag for one survey location.
type PopulationPoint struct {
	Lat      float64
	Lon      float64
	Density  float64
	Traffic  float64
	MainRoad bool
}

// PopulationAggregate summarises the population points near a query point.
type PopulationAggregate struct {
	DensityMean   float64
	TrafficMean   float64
	MainRoadShare float64
	Count         int
}

// Spatial bundles the three datasets. Construct with Load or, for tests,
// with New.
type Spatial struct {
	crimes     []CrimePoint
	lights     []LightPoint
	population []PopulationPoint
}

// New builds a Spatial from in-memory points. Intended for tests and
// fixtures.
func New(crimes []CrimePoint, lights []LightPoint, population []PopulationPoint) *Spatial {
	return &Spatial{crimes: crimes, lights: lights, population: population}
}

// CrimeCount returns the number of incidents within radiusDeg of the point,
// using bounding-box membership rather than a true distance radius.
func (s *Spatial) CrimeCount(lat, lon, radiusDeg float64) int {
	n := 0
	for _, c := range s.crimes {
		if math.Abs(c.Lat-lat) < radiusDeg && math.Abs(c.Lon-lon) < radiusDeg {
			n++
		}
	}
	return n
}

// LightingAround returns the mean lighting score near the point. ok is
// false when no lighting point falls inside the box, so callers can
// distinguish a defaulted score from a computed one.
func (s *Spatial) LightingAround(lat, lon, radiusDeg float64) (mean float64, ok bool) {
	sum, n := 0.0, 0
	for _, l := range s.lights {
		if math.Abs(l.Lat-lat) < radiusDeg && math.Abs(l.Lon-lon) < radiusDeg {
			sum += l.Score
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// LightCount returns how many lighting points fall inside the box.
func (s *Spatial) LightCount(lat, lon, radiusDeg float64) int {
	n := 0
	for _, l := range s.lights {
		if math.Abs(l.Lat-lat) < radiusDeg && math.Abs(l.Lon-lon) < radiusDeg {
			n++
		}
	}
	return n
}

// PopulationAround aggregates population points near the query point. ok is
// false when the box is empty.
func (s *Spatial) PopulationAround(lat, lon, radiusDeg float64) (agg PopulationAggregate, ok bool) {
	var densitySum, trafficSum float64
	mainRoad := 0
	n := 0
	for _, p := range s.population {
		if math.Abs(p.Lat-lat) < radiusDeg && math.Abs(p.Lon-lon) < radiusDeg {
			densitySum += p.Density
			trafficSum += p.Traffic
			if p.MainRoad {
				mainRoad++
			}
			n++
		}
	}
	if n == 0 {
		return PopulationAggregate{}, false
	}
	return PopulationAggregate{
		DensityMean:   densitySum / float64(n),
		TrafficMean:   trafficSum / float64(n),
		MainRoadShare: float64(mainRoad) / float64(n),
		Count:         n,
	}, true
}

// Crimes returns the full crime dataset, for heatmap rendering.
func (s *Spatial) Crimes() []CrimePoint { return s.crimes }

// Lights returns the full lighting dataset.
func (s *Spatial) Lights() []LightPoint { return s.lights }

// Population returns the full population dataset.
func (s *Spatial) Population() []PopulationPoint { return s.population }

// Sizes returns the row counts of the three datasets.
func (s *Spatial) Sizes() (crimes, lights, population int) {
	return len(s.crimes), len(s.lights), len(s.population)
}
