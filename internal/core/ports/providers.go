package ports

import (
	"context"

	"github.com/arjunrs/saferoutes/internal/core/domain"
)

// RouteProvider produces polyline alternatives between two coordinates,
// optionally routed through a synthetic waypoint. An error and an empty
// result are treated identically by the engine: that call simply
// contributes no candidates.
type RouteProvider interface {
	GetRoutes(ctx context.Context, start, end domain.GeoPoint, waypoint *domain.GeoPoint) ([]domain.RouteGeometry, error)
}

// Geocoder resolves free-text place queries and reverse-geocodes points.
type Geocoder interface {
	Search(ctx context.Context, query string, limit int) ([]domain.Place, error)
	Reverse(ctx context.Context, p domain.GeoPoint) (string, error)
}

// MLPredictor scores a feature vector in [0,100]. Its absence disables the
// blend step and changes nothing else.
type MLPredictor interface {
	Predict(ctx context.Context, features map[string]float64) (float64, error)
	Info(ctx context.Context) (map[string]any, error)
}

// FeatureLogger receives (features, label) pairs for offline retraining.
// Implementations are fire-and-forget; failures must never surface.
type FeatureLogger interface {
	LogSample(ctx context.Context, sample domain.FeatureSample)
}
