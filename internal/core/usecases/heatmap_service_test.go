package usecases_test

import (
	"context"
	"testing"

	"github.com/arjunrs/saferoutes/internal/core/domain"
	"github.com/arjunrs/saferoutes/internal/core/usecases"
	"github.com/arjunrs/saferoutes/internal/dataset"
)

func TestHeatmaps_DatasetLayers(t *testing.T) {
	data := dataset.New(
		[]dataset.CrimePoint{{Lat: 12.97, Lon: 77.59}, {Lat: 12.98, Lon: 77.60}},
		[]dataset.LightPoint{{Lat: 12.97, Lon: 77.59, Score: 8}},
		[]dataset.PopulationPoint{{Lat: 12.97, Lon: 77.59, Density: 1200}},
	)
	svc := usecases.NewHeatmapService(data, nil, nil)

	crime := svc.Crime(context.Background())
	if crime.Total != 2 || len(crime.Points) != 2 {
		t.Errorf("crime layer: %+v", crime)
	}
	if crime.Points[0].Weight != nil {
		t.Error("crime points carry no weight")
	}

	lighting := svc.Lighting(context.Background())
	if lighting.Total != 1 {
		t.Fatalf("lighting layer: %+v", lighting)
	}
	if lighting.Points[0].Weight == nil || *lighting.Points[0].Weight != 8 {
		t.Error("lighting points carry their score as weight")
	}

	population := svc.Population(context.Background())
	if population.Total != 1 || *population.Points[0].Weight != 1200 {
		t.Errorf("population layer: %+v", population)
	}
}

func TestHeatmaps_FeedbackLayer(t *testing.T) {
	repo := &mockFeedbackRepo{
		pointsFn: func(ctx context.Context) ([]domain.GeoPoint, error) {
			return []domain.GeoPoint{testStart, testEnd}, nil
		},
	}
	svc := usecases.NewHeatmapService(dataset.New(nil, nil, nil), repo, nil)

	hm, err := svc.Feedback(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hm.Total != 2 {
		t.Errorf("expected 2 reported points, got %d", hm.Total)
	}
}

func TestHeatmaps_FeedbackLayerWithoutRepo(t *testing.T) {
	svc := usecases.NewHeatmapService(dataset.New(nil, nil, nil), nil, nil)

	hm, err := svc.Feedback(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hm.Total != 0 {
		t.Errorf("expected empty layer, got %d", hm.Total)
	}
}

func TestHeatmaps_FeedbackLayerCached(t *testing.T) {
	calls := 0
	repo := &mockFeedbackRepo{
		pointsFn: func(ctx context.Context) ([]domain.GeoPoint, error) {
			calls++
			return []domain.GeoPoint{testStart}, nil
		},
	}
	svc := usecases.NewHeatmapService(dataset.New(nil, nil, nil), repo, newMockCache())

	for i := 0; i < 3; i++ {
		if _, err := svc.Feedback(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("expected a single repository read, got %d", calls)
	}
}
