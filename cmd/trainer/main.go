package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/arjunrs/saferoutes/internal/adapters/mlsvc"
	natsadapter "github.com/arjunrs/saferoutes/internal/adapters/nats"
	"github.com/arjunrs/saferoutes/internal/core/domain"
	"github.com/arjunrs/saferoutes/internal/pkg/config"
	"github.com/arjunrs/saferoutes/internal/pkg/logging"
	"github.com/arjunrs/saferoutes/internal/workflows"
)

// The trainer hosts two loops: a Temporal worker executing retraining
// workflows, and a JetStream consumer forwarding logged feature samples to
// the ML sidecar's training dataset.
func main() {
	cfg, err := config.Load("saferoutes-trainer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("saferoutes-trainer", logLevel, "json")

	ml := mlsvc.NewClient(cfg.ML.BaseURL, time.Duration(cfg.ML.TimeoutSeconds)*time.Second)

	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, model announcements disabled", "error", err)
		publisher = nil
	} else {
		defer publisher.Close()
	}

	// Feature sample collector: NATS -> sidecar dataset
	subscriber, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, sample collection disabled", "error", err)
	} else {
		defer subscriber.Close()
		err := subscriber.SubscribeFeatureSamples(context.Background(), func(ctx context.Context, sample *domain.FeatureSample) error {
			return ml.AddSample(ctx, sample.Features, sample.Label)
		})
		if err != nil {
			slog.Warn("sample subscription failed", "error", err)
		}
	}

	// Temporal worker
	c, err := client.Dial(client.Options{
		HostPort: cfg.Temporal.HostPort,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	w.RegisterWorkflow(workflows.RetrainWorkflow)
	w.RegisterActivity(&workflows.RetrainActivities{
		ML:        ml,
		Publisher: publisher,
	})

	slog.Info("trainer worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
