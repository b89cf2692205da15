package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/arjunrs/saferoutes/internal/core/ports"
	"github.com/arjunrs/saferoutes/internal/dataset"
	"github.com/arjunrs/saferoutes/internal/pkg/metrics"
)

const feedbackHeatmapTTLSeconds = 60

// HeatmapPoint is one weighted coordinate in a heatmap layer. Weight is
// omitted for layers that carry none (crime, feedback).
type HeatmapPoint struct {
	Lat    float64  `json:"lat"`
	Lon    float64  `json:"lon"`
	Weight *float64 `json:"weight,omitempty"`
}

// Heatmap is one visualization layer plus its point count.
type Heatmap struct {
	Points []HeatmapPoint `json:"points"`
	Total  int            `json:"total"`
}

// HeatmapService exposes the spatial datasets and user feedback as heatmap
// layers. Dataset layers are immutable after startup; only the feedback
// layer hits storage, so only it is cached.
type HeatmapService struct {
	data  *dataset.Spatial
	repo  ports.FeedbackRepository
	cache ports.CacheService
}

// NewHeatmapService creates the service. repo and cache may be nil; without
// a repo the feedback layer is empty.
func NewHeatmapService(data *dataset.Spatial, repo ports.FeedbackRepository, cache ports.CacheService) *HeatmapService {
	return &HeatmapService{data: data, repo: repo, cache: cache}
}

// Crime returns every crime incident location.
func (s *HeatmapService) Crime(context.Context) Heatmap {
	crimes := s.data.Crimes()
	points := make([]HeatmapPoint, len(crimes))
	for i, c := range crimes {
		points[i] = HeatmapPoint{Lat: c.Lat, Lon: c.Lon}
	}
	return Heatmap{Points: points, Total: len(points)}
}

// Lighting returns lighting locations weighted by their 0-10 score.
func (s *HeatmapService) Lighting(context.Context) Heatmap {
	lights := s.data.Lights()
	points := make([]HeatmapPoint, len(lights))
	for i, l := range lights {
		w := l.Score
		points[i] = HeatmapPoint{Lat: l.Lat, Lon: l.Lon, Weight: &w}
	}
	return Heatmap{Points: points, Total: len(points)}
}

// Population returns population locations weighted by density.
func (s *HeatmapService) Population(context.Context) Heatmap {
	pop := s.data.Population()
	points := make([]HeatmapPoint, len(pop))
	for i, p := range pop {
		w := p.Density
		points[i] = HeatmapPoint{Lat: p.Lat, Lon: p.Lon, Weight: &w}
	}
	return Heatmap{Points: points, Total: len(points)}
}

// Feedback returns every user-reported unsafe point, cached briefly since
// reports arrive continuously.
func (s *HeatmapService) Feedback(ctx context.Context) (Heatmap, error) {
	if s.repo == nil {
		return Heatmap{Points: []HeatmapPoint{}}, nil
	}

	const key = "heatmap:feedback"
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil && data != nil {
			var hm Heatmap
			if err := json.Unmarshal(data, &hm); err == nil {
				metrics.CacheHits.WithLabelValues("heatmap").Inc()
				return hm, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("heatmap").Inc()
	}

	reported, err := s.repo.UnsafeSegmentPoints(ctx)
	if err != nil {
		return Heatmap{}, fmt.Errorf("load feedback points: %w", err)
	}

	points := make([]HeatmapPoint, len(reported))
	for i, p := range reported {
		points[i] = HeatmapPoint{Lat: p.Lat, Lon: p.Lon}
	}
	hm := Heatmap{Points: points, Total: len(points)}

	if s.cache != nil {
		if data, err := json.Marshal(hm); err == nil {
			if err := s.cache.Set(ctx, key, data, feedbackHeatmapTTLSeconds); err != nil {
				slog.Warn("heatmap cache write failed", "error", err)
			}
		}
	}
	return hm, nil
}

// DatasetSizes reports how many rows each dataset loaded, for the health
// and GraphQL surfaces.
func (s *HeatmapService) DatasetSizes() (crimes, lights, population int) {
	return s.data.Sizes()
}
