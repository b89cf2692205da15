package ports

import "context"

// EventPublisher publishes engine events to a message broker.
type EventPublisher interface {
	PublishOptimization(ctx context.Context, data []byte) error
	PublishFeedback(ctx context.Context, data []byte) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// RetrainScheduler starts a model retraining run when enough new feedback
// has accumulated.
type RetrainScheduler interface {
	ScheduleRetrain(ctx context.Context, sampleCount int) error
}
