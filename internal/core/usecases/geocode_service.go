package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arjunrs/saferoutes/internal/core/domain"
	"github.com/arjunrs/saferoutes/internal/core/ports"
	"github.com/arjunrs/saferoutes/internal/pkg/metrics"
)

const (
	geocodeCacheTTLSeconds = 24 * 60 * 60
	geocodeSearchLimit     = 6
)

// GeocodeService fronts the geocoder with a read-through cache and filters
// results to the service area. The cache is optional; without it every call
// goes upstream.
type GeocodeService struct {
	geocoder ports.Geocoder
	cache    ports.CacheService
	bounds   domain.Bounds
}

// NewGeocodeService creates the service. cache may be nil.
func NewGeocodeService(geocoder ports.Geocoder, cache ports.CacheService, bounds domain.Bounds) *GeocodeService {
	return &GeocodeService{geocoder: geocoder, cache: cache, bounds: bounds}
}

// Search resolves a free-text place query, keeping only results inside the
// service area.
func (s *GeocodeService) Search(ctx context.Context, query string) ([]domain.Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	key := fmt.Sprintf("geocode:search:%s", strings.ToLower(query))
	if cached, ok := s.cacheGet(ctx, key); ok {
		var places []domain.Place
		if err := json.Unmarshal(cached, &places); err == nil {
			return places, nil
		}
	}

	results, err := s.geocoder.Search(ctx, query, geocodeSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("geocoder search: %w", err)
	}

	places := results[:0]
	for _, p := range results {
		if s.bounds.Contains(p.Location) {
			places = append(places, p)
		}
	}

	s.cacheSet(ctx, key, places)
	return places, nil
}

// Reverse resolves a point to a display address.
func (s *GeocodeService) Reverse(ctx context.Context, p domain.GeoPoint) (string, error) {
	if !p.Finite() || !s.bounds.Contains(p) {
		return "", ErrInvalidCoordinates
	}

	key := fmt.Sprintf("geocode:reverse:%.5f:%.5f", p.Lat, p.Lon)
	if cached, ok := s.cacheGet(ctx, key); ok {
		return string(cached), nil
	}

	address, err := s.geocoder.Reverse(ctx, p)
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, []byte(address), geocodeCacheTTLSeconds); err != nil {
			slog.Warn("geocode cache write failed", "error", err)
		}
	}
	return address, nil
}

func (s *GeocodeService) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil || data == nil {
		metrics.CacheMisses.WithLabelValues("geocode").Inc()
		return nil, false
	}
	metrics.CacheHits.WithLabelValues("geocode").Inc()
	return data, true
}

func (s *GeocodeService) cacheSet(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, geocodeCacheTTLSeconds); err != nil {
		slog.Warn("geocode cache write failed", "error", err)
	}
}
