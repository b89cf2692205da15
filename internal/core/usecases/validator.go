package usecases

import (
	"github.com/arjunrs/saferoutes/internal/core/domain"
	"github.com/arjunrs/saferoutes/internal/pkg/geospatial"
	"github.com/arjunrs/saferoutes/internal/pkg/metrics"
)

const (
	// Consecutive polyline points further apart than this indicate a
	// provider artifact of disjoint segments.
	maxGapKm = 0.5

	// Routes longer than this ratio of the direct distance are detours.
	maxDetourRatio = 1.3

	// Fractions of sampled steps allowed to move away from (or make no
	// progress toward) the destination.
	maxBacktrackFraction = 0.2
	maxStagnantFraction  = 0.4

	// A step shorter than this makes no meaningful progress.
	stagnantProgressKm = 0.01

	backtrackSamples = 20
)

// RouteValidator applies the two geometric filters every candidate must
// pass: connectivity and backtracking/detour detection.
type RouteValidator struct{}

// Validate returns (false, reason) for geometrically invalid routes. The
// reason is a stable label used for metrics and logs.
func (v *RouteValidator) Validate(points []domain.GeoPoint, start, end domain.GeoPoint) (bool, string) {
	if !v.connected(points) {
		metrics.CandidatesRejected.WithLabelValues("gap").Inc()
		return false, "gap"
	}
	if !v.efficient(points, start, end) {
		metrics.CandidatesRejected.WithLabelValues("detour").Inc()
		return false, "detour"
	}
	return true, ""
}

// connected checks that no consecutive point pair is further apart than
// maxGapKm.
func (v *RouteValidator) connected(points []domain.GeoPoint) bool {
	if len(points) < 2 {
		return false
	}
	for i := 0; i < len(points)-1; i++ {
		gap := geospatial.DistanceKm(points[i].Lat, points[i].Lon, points[i+1].Lat, points[i+1].Lon)
		if gap > maxGapKm {
			return false
		}
	}
	return true
}

// efficient rejects routes that detour, backtrack, stagnate, or bulge away
// from the direct corridor between start and end.
func (v *RouteValidator) efficient(points []domain.GeoPoint, start, end domain.GeoPoint) bool {
	if len(points) < 5 {
		return true
	}

	direct := geospatial.DistanceKm(start.Lat, start.Lon, end.Lat, end.Lon)
	if direct < 0.1 {
		// Degenerate case: start and end effectively coincide.
		return true
	}

	actual := 0.0
	for i := 0; i < len(points)-1; i++ {
		actual += geospatial.DistanceKm(points[i].Lat, points[i].Lon, points[i+1].Lat, points[i+1].Lon)
	}
	if actual/direct > maxDetourRatio {
		return false
	}

	// Sample the polyline and measure progress toward the destination at
	// each stride.
	sampleSize := backtrackSamples
	if len(points) < sampleSize {
		sampleSize = len(points)
	}
	step := len(points) / sampleSize
	if step < 1 {
		step = 1
	}

	backtracks, stagnant, total := 0, 0, 0
	for i := 0; i+step < len(points); i += step {
		cur := points[i]
		next := points[i+step]

		curToDest := geospatial.DistanceKm(cur.Lat, cur.Lon, end.Lat, end.Lon)
		nextToDest := geospatial.DistanceKm(next.Lat, next.Lon, end.Lat, end.Lon)

		progress := curToDest - nextToDest
		if progress < 0 {
			backtracks++
		} else if progress < stagnantProgressKm {
			stagnant++
		}
		total++
	}

	if total > 0 {
		if float64(backtracks) > float64(total)*maxBacktrackFraction {
			return false
		}
		if float64(backtracks+stagnant) > float64(total)*maxStagnantFraction {
			return false
		}
	}

	// Bulge check: a sampled point far from both endpoints while also far
	// from the nearer one marks a loop away from the direct corridor.
	bulgeStride := len(points) / 10
	if bulgeStride < 1 {
		bulgeStride = 1
	}
	maxDeviation := 0.0
	for i := 0; i < len(points); i += bulgeStride {
		p := points[i]
		dStart := geospatial.DistanceKm(start.Lat, start.Lon, p.Lat, p.Lon)
		dEnd := geospatial.DistanceKm(p.Lat, p.Lon, end.Lat, end.Lon)

		if dStart > direct*0.7 && dEnd > direct*0.7 {
			nearer := dStart
			if dEnd < nearer {
				nearer = dEnd
			}
			if nearer > maxDeviation {
				maxDeviation = nearer
			}
		}
	}
	return maxDeviation <= direct*0.3
}
