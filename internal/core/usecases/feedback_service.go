package usecases

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/arjunrs/saferoutes/internal/core/domain"
	"github.com/arjunrs/saferoutes/internal/core/ports"
)

// Retraining is considered once this many unsafe-segment reports have
// accumulated, and re-triggered at every further multiple.
const retrainEvery = 50

// FeedbackService records route ratings and unsafe-segment reports, feeds
// highly rated routes back into the training set, and schedules model
// retraining as reports accumulate. The feature logger, event publisher, and
// scheduler are optional.
type FeedbackService struct {
	repo       ports.FeedbackRepository
	featureLog ports.FeatureLogger
	events     ports.EventPublisher
	scheduler  ports.RetrainScheduler
	now        func() time.Time
}

// NewFeedbackService creates the service. featureLog, events, and scheduler
// may be nil.
func NewFeedbackService(
	repo ports.FeedbackRepository,
	featureLog ports.FeatureLogger,
	events ports.EventPublisher,
	scheduler ports.RetrainScheduler,
) *FeedbackService {
	return &FeedbackService{
		repo:       repo,
		featureLog: featureLog,
		events:     events,
		scheduler:  scheduler,
		now:        time.Now,
	}
}

// RateRoute persists one rating. When the rating is 4 or above and the rated
// route is supplied, the route's feature vector is logged as a training
// sample labelled by the score discounted to the rating.
func (s *FeedbackService) RateRoute(ctx context.Context, fb *domain.RouteFeedback, route *domain.RankedRoute) error {
	if fb.Rating < 1 || fb.Rating > 5 {
		return ErrInvalidRating
	}
	fb.CreatedAt = s.now()

	if err := s.repo.SaveRating(ctx, fb); err != nil {
		return err
	}
	s.publishFeedback(fb)

	if fb.Rating >= 4 && route != nil && s.featureLog != nil {
		features := ExtractRouteFeatures(route.RouteGeometry, route.SafetyMetrics, fb.CreatedAt)
		s.featureLog.LogSample(ctx, domain.FeatureSample{
			Features: features,
			Label:    route.SafetyScore * float64(fb.Rating) / 5.0,
			LoggedAt: fb.CreatedAt,
		})
	}
	return nil
}

// ReportUnsafeSegments persists the reported points and returns the running
// total. Every 50th report schedules a retraining run; scheduling failures
// are logged, never surfaced.
func (s *FeedbackService) ReportUnsafeSegments(ctx context.Context, segments []domain.UnsafeSegment) (int, error) {
	now := s.now()
	for i := range segments {
		segments[i].CreatedAt = now
	}

	if err := s.repo.SaveUnsafeSegments(ctx, segments); err != nil {
		return 0, err
	}

	total, err := s.repo.CountUnsafeSegments(ctx)
	if err != nil {
		slog.Warn("unsafe segment count failed", "error", err)
		return 0, nil
	}

	if s.scheduler != nil && total >= retrainEvery && total%retrainEvery == 0 {
		if err := s.scheduler.ScheduleRetrain(ctx, total); err != nil {
			slog.Warn("retrain scheduling failed", "error", err, "samples", total)
		} else {
			slog.Info("model retraining scheduled", "samples", total)
		}
	}
	return total, nil
}

func (s *FeedbackService) publishFeedback(fb *domain.RouteFeedback) {
	if s.events == nil {
		return
	}
	data, err := json.Marshal(fb)
	if err != nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.events.PublishFeedback(pubCtx, data); err != nil {
		slog.Warn("feedback event publish failed", "error", err)
	}
}
