package usecases

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"github.com/arjunrs/saferoutes/internal/core/domain"
	"github.com/arjunrs/saferoutes/internal/core/ports"
	"github.com/arjunrs/saferoutes/internal/pkg/geospatial"
	"github.com/arjunrs/saferoutes/internal/pkg/metrics"
)

const (
	// A candidate is discarded when the provider's polyline does not
	// actually begin and end where we asked.
	endpointToleranceKm = 0.2

	// Waypoints whose two-leg distance exceeds this ratio of the direct
	// distance are not worth querying the provider for.
	maxWaypointDetourRatio = 1.8
)

var (
	waypointPositions = []float64{0.25, 0.5, 0.75}
	waypointOffsetsKm = []float64{0.5, 1.2, 2.5}
)

// CandidateGenerator produces a diverse, deduplicated set of route
// geometries: the provider's direct alternatives plus routes forced through
// synthetic waypoints perpendicular to the start→end line.
type CandidateGenerator struct {
	provider ports.RouteProvider
	bounds   domain.Bounds

	maxWaypointRoutes int
	workers           int
}

// NewCandidateGenerator creates a generator. maxWaypointRoutes caps the
// accepted waypoint candidates per request; workers bounds concurrent
// provider calls.
func NewCandidateGenerator(provider ports.RouteProvider, bounds domain.Bounds, maxWaypointRoutes, workers int) *CandidateGenerator {
	if maxWaypointRoutes <= 0 {
		maxWaypointRoutes = 25
	}
	if workers <= 0 {
		workers = 6
	}
	return &CandidateGenerator{
		provider:          provider,
		bounds:            bounds,
		maxWaypointRoutes: maxWaypointRoutes,
		workers:           workers,
	}
}

// Generate collects candidates for one request. rawDirect holds the
// provider's direct alternatives before any acceptance check, kept for the
// fallback path. A failed provider call never aborts generation.
func (g *CandidateGenerator) Generate(ctx context.Context, start, end domain.GeoPoint) (candidates []domain.RouteGeometry, rawDirect []domain.RouteGeometry) {
	seen := make(map[string]struct{})

	// Direct pass: the provider may return several alternatives.
	direct, err := g.provider.GetRoutes(ctx, start, end, nil)
	switch {
	case err != nil:
		metrics.ProviderRequests.WithLabelValues("error").Inc()
		slog.Warn("direct route request failed", "error", err)
	case len(direct) == 0:
		metrics.ProviderRequests.WithLabelValues("empty").Inc()
	default:
		metrics.ProviderRequests.WithLabelValues("ok").Inc()
	}
	rawDirect = direct

	for _, geom := range direct {
		if g.accept(geom, start, end, seen) {
			candidates = append(candidates, geom)
			metrics.CandidatesGenerated.WithLabelValues("direct").Inc()
		}
	}

	// Waypoint pass: fan the perpendicular grid out over a bounded worker
	// pool. The dedup set and candidate list are the only shared state and
	// are confined to this goroutine via the results channel.
	waypoints := g.buildWaypoints(start, end)
	if len(waypoints) == 0 {
		return candidates, rawDirect
	}

	wpCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan domain.GeoPoint)
	results := make(chan []domain.RouteGeometry)

	var wg sync.WaitGroup
	for i := 0; i < g.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for wp := range jobs {
				routes, err := g.provider.GetRoutes(wpCtx, start, end, &wp)
				switch {
				case err != nil:
					metrics.ProviderRequests.WithLabelValues("error").Inc()
				case len(routes) == 0:
					metrics.ProviderRequests.WithLabelValues("empty").Inc()
				default:
					metrics.ProviderRequests.WithLabelValues("ok").Inc()
				}
				select {
				case results <- routes:
				case <-wpCtx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, wp := range waypoints {
			select {
			case jobs <- wp:
			case <-wpCtx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	accepted := 0
	for routes := range results {
		for _, geom := range routes {
			if accepted >= g.maxWaypointRoutes {
				break
			}
			if g.accept(geom, start, end, seen) {
				candidates = append(candidates, geom)
				metrics.CandidatesGenerated.WithLabelValues("waypoint").Inc()
				accepted++
			}
		}
		if accepted >= g.maxWaypointRoutes {
			cancel()
			break
		}
	}

	// Drain so workers blocked on send can exit.
	go func() {
		for range results {
		}
	}()

	return candidates, rawDirect
}

// accept admits a geometry when its endpoints match the request and its
// fingerprint is new within this request.
func (g *CandidateGenerator) accept(geom domain.RouteGeometry, start, end domain.GeoPoint, seen map[string]struct{}) bool {
	if len(geom.Points) < 2 {
		return false
	}

	first, last := geom.Points[0], geom.Points[len(geom.Points)-1]
	if geospatial.DistanceKm(start.Lat, start.Lon, first.Lat, first.Lon) > endpointToleranceKm ||
		geospatial.DistanceKm(end.Lat, end.Lon, last.Lat, last.Lon) > endpointToleranceKm {
		metrics.CandidatesRejected.WithLabelValues("endpoints").Inc()
		return false
	}

	fp := Fingerprint(geom.Points)
	if fp == "" {
		return false
	}
	if _, dup := seen[fp]; dup {
		metrics.CandidatesRejected.WithLabelValues("duplicate").Inc()
		return false
	}
	seen[fp] = struct{}{}
	return true
}

// buildWaypoints constructs the perpendicular offset grid: 3 positions along
// the direct line × 3 lateral offsets × 2 directions, dropping points that
// leave the service area or imply too large a detour.
func (g *CandidateGenerator) buildWaypoints(start, end domain.GeoPoint) []domain.GeoPoint {
	latDiff := end.Lat - start.Lat
	lonDiff := end.Lon - start.Lon

	perpLat, perpLon := -lonDiff, latDiff
	magnitude := math.Sqrt(perpLat*perpLat + perpLon*perpLon)
	if magnitude > 0 {
		perpLat /= magnitude
		perpLon /= magnitude
	}

	direct := geospatial.DistanceKm(start.Lat, start.Lon, end.Lat, end.Lon)

	var waypoints []domain.GeoPoint
	for _, position := range waypointPositions {
		for _, offsetKm := range waypointOffsetsKm {
			offset := offsetKm * geospatial.DegreesPerKm
			for _, direction := range []float64{1, -1} {
				wp := domain.GeoPoint{
					Lat: start.Lat + latDiff*position + perpLat*offset*direction,
					Lon: start.Lon + lonDiff*position + perpLon*offset*direction,
				}

				if !g.bounds.Contains(wp) {
					continue
				}

				twoLeg := geospatial.DistanceKm(start.Lat, start.Lon, wp.Lat, wp.Lon) +
					geospatial.DistanceKm(wp.Lat, wp.Lon, end.Lat, end.Lon)
				detourRatio := math.Inf(1)
				if direct > 0 {
					detourRatio = twoLeg / direct
				}
				if detourRatio > maxWaypointDetourRatio {
					continue
				}

				waypoints = append(waypoints, wp)
			}
		}
	}
	return waypoints
}
