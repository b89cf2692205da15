package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/arjunrs/saferoutes/internal/pkg/metrics"
)

// optimizeTimeout is longer than the rest of the API: one optimization can
// fan out to dozens of upstream routing calls.
const (
	requestTimeout  = 15 * time.Second
	optimizeTimeout = 45 * time.Second
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // Balance speed vs compression ratio
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout — fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")

	// Route optimization + feedback
	v1.Post("/routes/optimize", timeout.NewWithContext(OptimizeRouteHandler(deps), optimizeTimeout))
	v1.Post("/routes/feedback", timeout.NewWithContext(RouteFeedbackHandler(deps), requestTimeout))
	v1.Post("/routes/unsafe-segments", timeout.NewWithContext(UnsafeSegmentsHandler(deps), requestTimeout))

	// Heatmap layers
	v1.Get("/heatmaps/:layer", timeout.NewWithContext(HeatmapHandler(deps), requestTimeout))

	// Geocoding
	v1.Get("/geocode/search", timeout.NewWithContext(GeocodeSearchHandler(deps), requestTimeout))
	v1.Get("/geocode/reverse", timeout.NewWithContext(ReverseGeocodeHandler(deps), requestTimeout))

	// ML predictor + dataset status
	v1.Get("/ml/status", timeout.NewWithContext(MLStatusHandler(deps), requestTimeout))
	v1.Get("/datasets/stats", timeout.NewWithContext(DatasetStatsHandler(deps), requestTimeout))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket — the relay needs a live NATS connection; without one the
	// route answers 503 instead of upgrading.
	if deps.NATS == nil {
		app.Get("/ws", func(c *fiber.Ctx) error {
			return errUnavailable(c, "event relay unavailable")
		})
	} else {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
	}
}
