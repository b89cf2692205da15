package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.temporal.io/sdk/client"

	"github.com/arjunrs/saferoutes/internal/adapters/http"
	"github.com/arjunrs/saferoutes/internal/adapters/mlsvc"
	natsadapter "github.com/arjunrs/saferoutes/internal/adapters/nats"
	"github.com/arjunrs/saferoutes/internal/adapters/nominatim"
	"github.com/arjunrs/saferoutes/internal/adapters/osrm"
	"github.com/arjunrs/saferoutes/internal/adapters/postgres"
	temporaladapter "github.com/arjunrs/saferoutes/internal/adapters/temporal"
	"github.com/arjunrs/saferoutes/internal/adapters/valkey"
	"github.com/arjunrs/saferoutes/internal/core/domain"
	"github.com/arjunrs/saferoutes/internal/core/ports"
	"github.com/arjunrs/saferoutes/internal/core/usecases"
	"github.com/arjunrs/saferoutes/internal/dataset"
	"github.com/arjunrs/saferoutes/internal/pkg/config"
	"github.com/arjunrs/saferoutes/internal/pkg/logging"
	"github.com/arjunrs/saferoutes/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("saferoutes-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("saferoutes-api", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Spatial datasets — scoring is meaningless without them, so failure is fatal.
	data, err := dataset.Load(cfg.Datasets.CrimePath, cfg.Datasets.LightingPath, cfg.Datasets.PopulationPath)
	if err != nil {
		log.Fatalf("datasets: %v", err)
	}
	crimes, lights, population := data.Sizes()
	slog.Info("datasets loaded", "crimes", crimes, "lights", lights, "population", population)

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, caching disabled", "error", err)
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	// NATS publisher (events + ML feature samples)
	var (
		events   ports.EventPublisher
		features ports.FeatureLogger
	)
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, events disabled", "error", err)
	} else {
		defer nc.Close()
		events = nc
		features = nc
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Temporal: retraining scheduler
	var scheduler ports.RetrainScheduler
	temporalClient, err := client.Dial(client.Options{HostPort: cfg.Temporal.HostPort})
	if err != nil {
		slog.Warn("temporal unavailable, retraining disabled", "error", err)
	} else {
		defer temporalClient.Close()
		scheduler = temporaladapter.NewScheduler(temporalClient, cfg.Temporal.TaskQueue)
	}

	bounds := domain.Bounds{
		MinLat: cfg.Bounds.MinLat,
		MaxLat: cfg.Bounds.MaxLat,
		MinLon: cfg.Bounds.MinLon,
		MaxLon: cfg.Bounds.MaxLon,
	}

	// External collaborators
	router := osrm.NewClient(cfg.Router.BaseURL, cfg.Router.Profile, time.Duration(cfg.Router.TimeoutSeconds)*time.Second)
	geocoder := nominatim.NewClient(cfg.Geocoder.BaseURL, cfg.Geocoder.CitySuffix, time.Duration(cfg.Geocoder.TimeoutSeconds)*time.Second)

	var predictor ports.MLPredictor
	if cfg.ML.Enabled {
		predictor = mlsvc.NewClient(cfg.ML.BaseURL, time.Duration(cfg.ML.TimeoutSeconds)*time.Second)
	}

	// Engine
	generator := usecases.NewCandidateGenerator(router, bounds, cfg.Engine.MaxWaypointRoutes, cfg.Engine.Workers)
	scorer := usecases.NewSafetyScorer(data)
	curator := usecases.NewResultCurator(usecases.NewGuardrailEngine(data, nil))

	optimizerOpts := []usecases.OptimizerOption{
		usecases.WithRequestTimeout(time.Duration(cfg.Engine.RequestTimeout) * time.Second),
	}
	if predictor != nil {
		optimizerOpts = append(optimizerOpts, usecases.WithMLPredictor(predictor))
	}
	if features != nil {
		optimizerOpts = append(optimizerOpts, usecases.WithFeatureLogger(features))
	}
	if events != nil {
		optimizerOpts = append(optimizerOpts, usecases.WithEventPublisher(events))
	}
	optimizer := usecases.NewOptimizeService(generator, &usecases.RouteValidator{}, scorer, curator, bounds, optimizerOpts...)

	// Services over storage
	feedbackRepo := postgres.NewFeedbackRepo(db)
	feedbackSvc := usecases.NewFeedbackService(feedbackRepo, features, events, scheduler)
	geocodeSvc := usecases.NewGeocodeService(geocoder, cacheSvc, bounds)
	heatmapSvc := usecases.NewHeatmapService(data, feedbackRepo, cacheSvc)

	deps := &http.Dependencies{
		Optimizer: optimizer,
		Geocode:   geocodeSvc,
		Feedback:  feedbackSvc,
		Heatmaps:  heatmapSvc,
		ML:        predictor,
		NATS:      natsConn,
		DB:        db,
		Cache:     cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "SafeRoutes API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
