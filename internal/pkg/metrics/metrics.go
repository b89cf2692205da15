package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saferoutes",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "saferoutes",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 45},
	}, []string{"method", "path"})

	// Engine metrics
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saferoutes",
		Subsystem: "engine",
		Name:      "provider_requests_total",
		Help:      "Route provider calls by outcome (ok, empty, error)",
	}, []string{"outcome"})

	CandidatesGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saferoutes",
		Subsystem: "engine",
		Name:      "candidates_generated_total",
		Help:      "Accepted route candidates by source (direct, waypoint)",
	}, []string{"source"})

	CandidatesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saferoutes",
		Subsystem: "engine",
		Name:      "candidates_rejected_total",
		Help:      "Candidates rejected by reason (endpoints, duplicate, gap, detour, guardrail, main_road_filter)",
	}, []string{"reason"})

	Optimizations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saferoutes",
		Subsystem: "engine",
		Name:      "optimizations_total",
		Help:      "Optimization requests by result (ok, fallback, not_found, invalid_input)",
	}, []string{"result"})

	OptimizeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "saferoutes",
		Subsystem: "engine",
		Name:      "optimize_duration_seconds",
		Help:      "End-to-end duration of route optimization",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 45},
	})

	MLBlends = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saferoutes",
		Subsystem: "ml",
		Name:      "blends_total",
		Help:      "ML score blends by outcome (ok, error)",
	}, []string{"outcome"})

	FeatureSamples = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "saferoutes",
		Subsystem: "ml",
		Name:      "feature_samples_total",
		Help:      "Feature samples handed to the feature logger",
	})

	DatasetRowsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saferoutes",
		Subsystem: "dataset",
		Name:      "rows_skipped_total",
		Help:      "Malformed dataset rows skipped at load time",
	}, []string{"dataset"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saferoutes",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saferoutes",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
