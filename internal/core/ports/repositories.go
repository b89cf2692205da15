package ports

import (
	"context"

	"github.com/arjunrs/saferoutes/internal/core/domain"
)

// FeedbackRepository persists route ratings and unsafe-segment reports.
type FeedbackRepository interface {
	SaveRating(ctx context.Context, fb *domain.RouteFeedback) error
	SaveUnsafeSegments(ctx context.Context, segments []domain.UnsafeSegment) error
	CountUnsafeSegments(ctx context.Context) (int, error)
	// UnsafeSegmentPoints returns all reported points for the feedback heatmap.
	UnsafeSegmentPoints(ctx context.Context) ([]domain.GeoPoint, error)
}
