package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/arjunrs/saferoutes/internal/core/domain"
)

// FeedbackRepo implements ports.FeedbackRepository with pgx.
type FeedbackRepo struct {
	db *DB
}

// NewFeedbackRepo creates a new FeedbackRepo.
func NewFeedbackRepo(db *DB) *FeedbackRepo {
	return &FeedbackRepo{db: db}
}

// SaveRating inserts one route rating.
func (r *FeedbackRepo) SaveRating(ctx context.Context, fb *domain.RouteFeedback) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO route_feedback (route_id, rating, comment, distance_km, duration_min, safety_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, fb.RouteID, fb.Rating, fb.Comment, fb.DistanceKm, fb.DurationMin, fb.SafetyScore, fb.CreatedAt).
		Scan(&fb.ID)
}

// SaveUnsafeSegments inserts reported points using pgx.Batch.
func (r *FeedbackRepo) SaveUnsafeSegments(ctx context.Context, segments []domain.UnsafeSegment) error {
	if len(segments) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, s := range segments {
		batch.Queue(`
			INSERT INTO unsafe_segments (location, route_id, rating, session_id, created_at)
			VALUES (ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3, $4, $5, $6)
		`, s.Location.Lon, s.Location.Lat, s.RouteID, s.Rating, s.SessionID, s.CreatedAt)
	}

	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range segments {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// CountUnsafeSegments returns the total number of reported points.
func (r *FeedbackRepo) CountUnsafeSegments(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM unsafe_segments`).Scan(&count)
	return count, err
}

// UnsafeSegmentPoints returns every reported point, newest first.
func (r *FeedbackRepo) UnsafeSegmentPoints(ctx context.Context) ([]domain.GeoPoint, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT ST_Y(location::geometry) as lat,
		       ST_X(location::geometry) as lon
		FROM unsafe_segments
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []domain.GeoPoint
	for rows.Next() {
		var p domain.GeoPoint
		if err := rows.Scan(&p.Lat, &p.Lon); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
