package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/arjunrs/saferoutes/internal/core/domain"
	"github.com/arjunrs/saferoutes/internal/core/usecases"
)

// --- Mock FeedbackRepository ---

type mockFeedbackRepo struct {
	saveRatingFn   func(ctx context.Context, fb *domain.RouteFeedback) error
	saveSegmentsFn func(ctx context.Context, segments []domain.UnsafeSegment) error
	countFn        func(ctx context.Context) (int, error)
	pointsFn       func(ctx context.Context) ([]domain.GeoPoint, error)
}

func (m *mockFeedbackRepo) SaveRating(ctx context.Context, fb *domain.RouteFeedback) error {
	if m.saveRatingFn != nil {
		return m.saveRatingFn(ctx, fb)
	}
	return nil
}

func (m *mockFeedbackRepo) SaveUnsafeSegments(ctx context.Context, segments []domain.UnsafeSegment) error {
	if m.saveSegmentsFn != nil {
		return m.saveSegmentsFn(ctx, segments)
	}
	return nil
}

func (m *mockFeedbackRepo) CountUnsafeSegments(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *mockFeedbackRepo) UnsafeSegmentPoints(ctx context.Context) ([]domain.GeoPoint, error) {
	if m.pointsFn != nil {
		return m.pointsFn(ctx)
	}
	return nil, nil
}

// --- Mock RetrainScheduler ---

type mockScheduler struct {
	scheduled []int
	err       error
}

func (m *mockScheduler) ScheduleRetrain(ctx context.Context, sampleCount int) error {
	if m.err != nil {
		return m.err
	}
	m.scheduled = append(m.scheduled, sampleCount)
	return nil
}

func TestRateRoute_RejectsInvalidRating(t *testing.T) {
	svc := usecases.NewFeedbackService(&mockFeedbackRepo{}, nil, nil, nil)

	err := svc.RateRoute(context.Background(), &domain.RouteFeedback{Rating: 0}, nil)
	if !errors.Is(err, usecases.ErrInvalidRating) {
		t.Fatalf("expected ErrInvalidRating, got %v", err)
	}
	err = svc.RateRoute(context.Background(), &domain.RouteFeedback{Rating: 6}, nil)
	if !errors.Is(err, usecases.ErrInvalidRating) {
		t.Fatalf("expected ErrInvalidRating, got %v", err)
	}
}

func TestRateRoute_HighRatingLogsTrainingSample(t *testing.T) {
	logger := &mockFeatureLogger{}
	svc := usecases.NewFeedbackService(&mockFeedbackRepo{}, logger, nil, nil)

	route := &domain.RankedRoute{
		RouteGeometry: domain.RouteGeometry{DistanceKm: 5, DurationMin: 20},
		SafetyMetrics: domain.SafetyMetrics{SafetyScore: 80},
	}

	err := svc.RateRoute(context.Background(), &domain.RouteFeedback{RouteID: "r1", Rating: 4}, route)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger.count() != 1 {
		t.Fatalf("expected one training sample, got %d", logger.count())
	}

	logger.mu.Lock()
	label := logger.samples[0].Label
	logger.mu.Unlock()
	if label != 80*4.0/5.0 {
		t.Errorf("label = %v, want score discounted to the rating", label)
	}
}

func TestRateRoute_LowRatingSkipsTrainingSample(t *testing.T) {
	logger := &mockFeatureLogger{}
	svc := usecases.NewFeedbackService(&mockFeedbackRepo{}, logger, nil, nil)

	route := &domain.RankedRoute{SafetyMetrics: domain.SafetyMetrics{SafetyScore: 80}}
	if err := svc.RateRoute(context.Background(), &domain.RouteFeedback{Rating: 2}, route); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger.count() != 0 {
		t.Errorf("low ratings must not feed the training set, got %d samples", logger.count())
	}
}

func TestRateRoute_RepositoryErrorSurfaces(t *testing.T) {
	repo := &mockFeedbackRepo{
		saveRatingFn: func(ctx context.Context, fb *domain.RouteFeedback) error {
			return errors.New("db down")
		},
	}
	svc := usecases.NewFeedbackService(repo, nil, nil, nil)

	if err := svc.RateRoute(context.Background(), &domain.RouteFeedback{Rating: 5}, nil); err == nil {
		t.Fatal("expected the repository error to surface")
	}
}

func TestReportUnsafeSegments_SchedulesRetrainAtThreshold(t *testing.T) {
	scheduler := &mockScheduler{}
	repo := &mockFeedbackRepo{
		countFn: func(ctx context.Context) (int, error) { return 100, nil },
	}
	svc := usecases.NewFeedbackService(repo, nil, nil, scheduler)

	segments := []domain.UnsafeSegment{{Location: testStart, RouteID: "r1", Rating: 2}}
	total, err := svc.ReportUnsafeSegments(context.Background(), segments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 100 {
		t.Errorf("total = %d, want 100", total)
	}
	if len(scheduler.scheduled) != 1 || scheduler.scheduled[0] != 100 {
		t.Errorf("expected one retrain at 100 samples, got %v", scheduler.scheduled)
	}
}

func TestReportUnsafeSegments_NoRetrainOffThreshold(t *testing.T) {
	scheduler := &mockScheduler{}
	repo := &mockFeedbackRepo{
		countFn: func(ctx context.Context) (int, error) { return 49, nil },
	}
	svc := usecases.NewFeedbackService(repo, nil, nil, scheduler)

	if _, err := svc.ReportUnsafeSegments(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scheduler.scheduled) != 0 {
		t.Errorf("no retrain expected below the threshold, got %v", scheduler.scheduled)
	}
}

func TestReportUnsafeSegments_SchedulerFailureIsSwallowed(t *testing.T) {
	scheduler := &mockScheduler{err: errors.New("temporal unreachable")}
	repo := &mockFeedbackRepo{
		countFn: func(ctx context.Context) (int, error) { return 50, nil },
	}
	svc := usecases.NewFeedbackService(repo, nil, nil, scheduler)

	if _, err := svc.ReportUnsafeSegments(context.Background(), nil); err != nil {
		t.Fatalf("scheduler failures must not surface: %v", err)
	}
}

func TestReportUnsafeSegments_StampsCreatedAt(t *testing.T) {
	var saved []domain.UnsafeSegment
	repo := &mockFeedbackRepo{
		saveSegmentsFn: func(ctx context.Context, segments []domain.UnsafeSegment) error {
			saved = segments
			return nil
		},
	}
	svc := usecases.NewFeedbackService(repo, nil, nil, nil)

	segments := []domain.UnsafeSegment{{Location: testStart}, {Location: testEnd}}
	if _, err := svc.ReportUnsafeSegments(context.Background(), segments); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, s := range saved {
		if s.CreatedAt.IsZero() {
			t.Errorf("segment %d missing timestamp", i)
		}
	}
}
