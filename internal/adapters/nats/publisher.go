package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/arjunrs/saferoutes/internal/core/domain"
)

// Subjects used on the broker. Events feed the WebSocket relay; samples
// feed the trainer.
const (
	SubjectOptimization = "saferoutes.events.optimization"
	SubjectFeedback     = "saferoutes.events.feedback"
	SubjectModelUpdated = "saferoutes.events.model_updated"
	SubjectSamples      = "saferoutes.ml.samples"
)

// Publisher implements ports.EventPublisher and ports.FeatureLogger using
// NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS, enables JetStream, and ensures the streams
// exist.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	streams := []nats.StreamConfig{
		{
			Name:      "SAFEROUTES_EVENTS",
			Subjects:  []string{"saferoutes.events.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "SAFEROUTES_SAMPLES",
			Subjects:  []string{"saferoutes.ml.>"},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    7 * 24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist — try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishOptimization emits one optimization summary event.
func (p *Publisher) PublishOptimization(ctx context.Context, data []byte) error {
	_, err := p.js.Publish(SubjectOptimization, data)
	return err
}

// PublishFeedback emits one feedback event.
func (p *Publisher) PublishFeedback(ctx context.Context, data []byte) error {
	_, err := p.js.Publish(SubjectFeedback, data)
	return err
}

// PublishModelUpdated announces a finished retraining run.
func (p *Publisher) PublishModelUpdated(ctx context.Context, data []byte) error {
	_, err := p.js.Publish(SubjectModelUpdated, data)
	return err
}

// LogSample implements ports.FeatureLogger. Errors are swallowed: sample
// collection must never affect request handling.
func (p *Publisher) LogSample(ctx context.Context, sample domain.FeatureSample) {
	data, err := json.Marshal(sample)
	if err != nil {
		return
	}
	_, _ = p.js.Publish(SubjectSamples, data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
