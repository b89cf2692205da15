package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/arjunrs/saferoutes/internal/core/domain"
)

// Subscriber consumes JetStream subjects, used by the trainer worker to
// collect feature samples.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
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
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeFeatureSamples consumes training samples with a durable consumer.
// The handler error Naks the message for redelivery.
func (s *Subscriber) SubscribeFeatureSamples(ctx context.Context, handler func(ctx context.Context, sample *domain.FeatureSample) error) error {
	sub, err := s.js.Subscribe(SubjectSamples, func(msg *nats.Msg) {
		var sample domain.FeatureSample
		if err := json.Unmarshal(msg.Data, &sample); err != nil {
			_ = msg.Nak()
			return
		}
		if err := handler(ctx, &sample); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("sample-collector"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains the connection.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
