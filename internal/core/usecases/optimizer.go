package usecases

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/arjunrs/saferoutes/internal/core/domain"
	"github.com/arjunrs/saferoutes/internal/core/ports"
	"github.com/arjunrs/saferoutes/internal/pkg/metrics"
)

const (
	// Candidates falling below this main-road share are dropped when the
	// caller asked for main roads.
	minMainRoadPct = 40.0

	fallbackWarning = "Caution advised: this route did not pass all safety checks"

	defaultRequestTimeout = 40 * time.Second
)

// OptimizerOption configures optional collaborators of the OptimizeService.
type OptimizerOption func(*OptimizeService)

// WithMLPredictor enables the ML blend step.
func WithMLPredictor(p ports.MLPredictor) OptimizerOption {
	return func(s *OptimizeService) { s.ml = p }
}

// WithFeatureLogger enables training-sample collection.
func WithFeatureLogger(l ports.FeatureLogger) OptimizerOption {
	return func(s *OptimizeService) { s.featureLog = l }
}

// WithEventPublisher enables optimization events on the broker.
func WithEventPublisher(p ports.EventPublisher) OptimizerOption {
	return func(s *OptimizeService) { s.events = p }
}

// WithRequestTimeout overrides the outer per-request deadline.
func WithRequestTimeout(d time.Duration) OptimizerOption {
	return func(s *OptimizeService) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) OptimizerOption {
	return func(s *OptimizeService) {
		if now != nil {
			s.now = now
		}
	}
}

// OptimizeService runs the full pipeline for one request: coordinate
// validation, candidate generation, route validation, safety scoring, the
// optional ML blend, composite ranking, guardrails, and curation. The ML
// predictor, feature logger, and event publisher are optional; their absence
// disables the corresponding step and nothing else.
type OptimizeService struct {
	generator *CandidateGenerator
	validator *RouteValidator
	scorer    *SafetyScorer
	curator   *ResultCurator
	bounds    domain.Bounds

	ml         ports.MLPredictor
	featureLog ports.FeatureLogger
	events     ports.EventPublisher

	requestTimeout time.Duration
	now            func() time.Time
	tracer         trace.Tracer
}

// NewOptimizeService wires the pipeline stages together.
func NewOptimizeService(
	generator *CandidateGenerator,
	validator *RouteValidator,
	scorer *SafetyScorer,
	curator *ResultCurator,
	bounds domain.Bounds,
	opts ...OptimizerOption,
) *OptimizeService {
	s := &OptimizeService{
		generator:      generator,
		validator:      validator,
		scorer:         scorer,
		curator:        curator,
		bounds:         bounds,
		requestTimeout: defaultRequestTimeout,
		now:            time.Now,
		tracer:         otel.Tracer("saferoutes/optimizer"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OptimizeRoute answers one optimization request. The result never carries
// more than 7 routes; IsFallback marks the degraded path. ErrNoRoutesFound
// is returned only when even the fallback could not produce a route.
func (s *OptimizeService) OptimizeRoute(ctx context.Context, start, end domain.GeoPoint, prefs domain.PreferenceSet) (*domain.OptimizeResult, error) {
	if !start.Finite() || !end.Finite() || !s.bounds.Contains(start) || !s.bounds.Contains(end) {
		metrics.Optimizations.WithLabelValues("invalid_input").Inc()
		return nil, ErrInvalidCoordinates
	}
	prefs = prefs.Normalize()

	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "OptimizeRoute", trace.WithAttributes(
		attribute.Float64("route.start_lat", start.Lat),
		attribute.Float64("route.start_lon", start.Lon),
		attribute.Float64("route.end_lat", end.Lat),
		attribute.Float64("route.end_lon", end.Lon),
	))
	defer span.End()

	started := time.Now()
	defer func() {
		metrics.OptimizeDuration.Observe(time.Since(started).Seconds())
	}()

	candidates, rawDirect := s.generator.Generate(ctx, start, end)

	validated := candidates[:0:0]
	for _, geom := range candidates {
		if ok, reason := s.validator.Validate(geom.Points, start, end); !ok {
			slog.Debug("candidate rejected", "reason", reason)
			continue
		}
		validated = append(validated, geom)
	}

	scored := s.scoreAll(ctx, validated, prefs)
	span.SetAttributes(
		attribute.Int("route.candidates", len(candidates)),
		attribute.Int("route.scored", len(scored)),
	)

	final := s.curator.Curate(scored)

	result := &domain.OptimizeResult{
		Routes:        final,
		TotalAnalyzed: len(scored),
	}

	if len(final) == 0 {
		fallback, ok := s.fallbackRoute(scored, rawDirect, prefs)
		if !ok {
			metrics.Optimizations.WithLabelValues("not_found").Inc()
			return nil, ErrNoRoutesFound
		}
		result.Routes = []domain.RankedRoute{fallback}
		result.IsFallback = true
		// The raw direct fallback was still analyzed, even when nothing
		// survived validation.
		if result.TotalAnalyzed == 0 {
			result.TotalAnalyzed = 1
		}
		metrics.Optimizations.WithLabelValues("fallback").Inc()
	} else {
		metrics.Optimizations.WithLabelValues("ok").Inc()
	}

	s.publishOptimization(start, end, result)
	return result, nil
}

// scoreAll turns validated geometries into scored candidates, applying the
// main-road floor and the optional ML blend.
func (s *OptimizeService) scoreAll(ctx context.Context, geoms []domain.RouteGeometry, prefs domain.PreferenceSet) []domain.RankedRoute {
	at := s.now()
	scored := make([]domain.RankedRoute, 0, len(geoms))
	for _, geom := range geoms {
		m := s.scorer.Score(geom.Points, prefs)
		if prefs.PreferMainRoads && m.MainRoadPct < minMainRoadPct {
			metrics.CandidatesRejected.WithLabelValues("main_road_floor").Inc()
			continue
		}

		route := domain.RankedRoute{RouteGeometry: geom, SafetyMetrics: m}
		s.blendML(ctx, &route, at)
		route.CompositeScore = CompositeScore(route.SafetyMetrics, route.DistanceKm, prefs)
		scored = append(scored, route)
	}
	return scored
}

// blendML replaces the rule-based score with 0.75*rule + 0.25*ml and logs
// the pre-blend sample for retraining. A predictor failure leaves the
// rule-based score untouched.
func (s *OptimizeService) blendML(ctx context.Context, route *domain.RankedRoute, at time.Time) {
	if s.ml == nil {
		return
	}

	features := ExtractRouteFeatures(route.RouteGeometry, route.SafetyMetrics, at)
	mlScore, err := s.ml.Predict(ctx, features)
	if err != nil {
		metrics.MLBlends.WithLabelValues("error").Inc()
		slog.Warn("ml prediction failed", "error", err)
		return
	}
	mlScore = math.Min(100, math.Max(0, mlScore))

	ruleScore := route.SafetyScore
	route.RuleScore = &ruleScore
	route.MLScore = &mlScore
	route.SafetyScore = round2(0.75*ruleScore + 0.25*mlScore)
	metrics.MLBlends.WithLabelValues("ok").Inc()

	if s.featureLog != nil {
		s.featureLog.LogSample(ctx, domain.FeatureSample{
			Features: features,
			Label:    ruleScore,
			LoggedAt: at,
		})
		metrics.FeatureSamples.Inc()
	}
}

// fallbackRoute builds the degraded single-route answer: the best candidate
// that was scored but failed guardrails, or failing that the provider's
// unvalidated direct route.
func (s *OptimizeService) fallbackRoute(scored []domain.RankedRoute, rawDirect []domain.RouteGeometry, prefs domain.PreferenceSet) (domain.RankedRoute, bool) {
	var route domain.RankedRoute

	switch {
	case len(scored) > 0:
		sortByComposite(scored)
		route = scored[0]
	case len(rawDirect) > 0:
		geom := rawDirect[0]
		route = domain.RankedRoute{
			RouteGeometry: geom,
			SafetyMetrics: s.scorer.Score(geom.Points, prefs),
		}
	default:
		return domain.RankedRoute{}, false
	}

	route.Rank = 1
	route.IsRecommended = true
	route.Category = domain.CategoryDirect
	route.Description = "Direct route (limited safety validation)"
	route.Reasons = buildReasons(route.SafetyMetrics)
	route.Warning = fallbackWarning
	return route, true
}

// publishOptimization emits a summary event for downstream consumers.
// Failures are logged and dropped.
func (s *OptimizeService) publishOptimization(start, end domain.GeoPoint, result *domain.OptimizeResult) {
	if s.events == nil {
		return
	}

	event := struct {
		Start         domain.GeoPoint `json:"start"`
		End           domain.GeoPoint `json:"end"`
		Routes        int             `json:"routes"`
		TotalAnalyzed int             `json:"total_analyzed"`
		IsFallback    bool            `json:"is_fallback"`
		BestScore     float64         `json:"best_score,omitempty"`
		At            time.Time       `json:"at"`
	}{
		Start:         start,
		End:           end,
		Routes:        len(result.Routes),
		TotalAnalyzed: result.TotalAnalyzed,
		IsFallback:    result.IsFallback,
		At:            s.now().UTC(),
	}
	if len(result.Routes) > 0 {
		event.BestScore = result.Routes[0].SafetyScore
	}

	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	// Detached context so a request cancellation does not drop the event.
	pubCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.events.PublishOptimization(pubCtx, data); err != nil {
		slog.Warn("optimization event publish failed", "error", err)
	}
}
