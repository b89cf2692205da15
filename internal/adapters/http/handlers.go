package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/arjunrs/saferoutes/internal/core/domain"
	"github.com/arjunrs/saferoutes/internal/core/usecases"
)

// optimizeRequest is the body of POST /v1/routes/optimize.
type optimizeRequest struct {
	Start       domain.GeoPoint      `json:"start"`
	End         domain.GeoPoint      `json:"end"`
	Preferences domain.PreferenceSet `json:"preferences"`
}

// OptimizeRouteHandler runs the full candidate/score/curate pipeline.
func OptimizeRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req optimizeRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result, err := deps.Optimizer.OptimizeRoute(c.UserContext(), req.Start, req.End, req.Preferences)
		switch {
		case errors.Is(err, usecases.ErrInvalidCoordinates):
			return errBadRequest(c, "start and end must be valid coordinates inside the service area")
		case errors.Is(err, usecases.ErrNoRoutesFound):
			return errNotFound(c, "no routes found between the given points")
		case err != nil:
			return errInternal(c, err.Error())
		}

		return c.JSON(result)
	}
}

// feedbackRequest is the body of POST /v1/routes/feedback. Route is the
// route the rating refers to; when present, high ratings also feed the
// training sample stream.
type feedbackRequest struct {
	domain.RouteFeedback
	Route *domain.RankedRoute `json:"route,omitempty"`
}

// RouteFeedbackHandler stores a 1-5 route rating.
func RouteFeedbackHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req feedbackRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		err := deps.Feedback.RateRoute(c.UserContext(), &req.RouteFeedback, req.Route)
		switch {
		case errors.Is(err, usecases.ErrInvalidRating):
			return errBadRequest(c, "rating must be between 1 and 5")
		case err != nil:
			return errInternal(c, err.Error())
		}

		return c.Status(201).JSON(fiber.Map{
			"id":     req.RouteFeedback.ID,
			"status": "recorded",
		})
	}
}

// unsafeSegmentsRequest is the body of POST /v1/routes/unsafe-segments.
type unsafeSegmentsRequest struct {
	RouteID   string            `json:"route_id"`
	Rating    int               `json:"rating"`
	SessionID string            `json:"session_id"`
	Segments  []domain.GeoPoint `json:"segments"`
}

// UnsafeSegmentsHandler stores per-point unsafe reports. Every 50
// accumulated reports a model retraining run is scheduled.
func UnsafeSegmentsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req unsafeSegmentsRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(req.Segments) == 0 {
			return errBadRequest(c, "segments must contain at least one point")
		}
		if len(req.Segments) > 500 {
			return errBadRequest(c, "too many segments (max 500)")
		}

		segments := make([]domain.UnsafeSegment, 0, len(req.Segments))
		for _, p := range req.Segments {
			if !p.Finite() {
				return errBadRequest(c, "segments must be valid coordinates")
			}
			segments = append(segments, domain.UnsafeSegment{
				Location:  p,
				RouteID:   req.RouteID,
				Rating:    req.Rating,
				SessionID: req.SessionID,
			})
		}

		total, err := deps.Feedback.ReportUnsafeSegments(c.UserContext(), segments)
		if err != nil {
			return errInternal(c, err.Error())
		}

		return c.Status(201).JSON(fiber.Map{
			"saved":         len(segments),
			"total_reports": total,
		})
	}
}

// HeatmapHandler serves one heatmap layer with offset/limit pagination.
// Layers: crime, lighting, population, feedback.
func HeatmapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		layer := strings.ToLower(c.Params("layer"))

		var (
			hm  usecases.Heatmap
			err error
		)
		switch layer {
		case "crime":
			hm = deps.Heatmaps.Crime(c.UserContext())
		case "lighting":
			hm = deps.Heatmaps.Lighting(c.UserContext())
		case "population":
			hm = deps.Heatmaps.Population(c.UserContext())
		case "feedback":
			hm, err = deps.Heatmaps.Feedback(c.UserContext())
			if err != nil {
				return errInternal(c, err.Error())
			}
		default:
			return errNotFound(c, "unknown heatmap layer: "+layer)
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 1000)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 5000 {
			limit = 1000
		}

		points := hm.Points
		total := len(points)
		if offset >= total {
			points = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			points = points[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: points, Pagination: pg})
	}
}

// GeocodeSearchHandler resolves free-text place queries.
func GeocodeSearchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		if len(query) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}

		places, err := deps.Geocode.Search(c.UserContext(), query)
		switch {
		case errors.Is(err, usecases.ErrEmptyQuery):
			return errBadRequest(c, "q query parameter is required")
		case err != nil:
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(places)
	}
}

// ReverseGeocodeHandler resolves a coordinate to an address.
func ReverseGeocodeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lon") == "" {
			return errBadRequest(c, "lat and lon are required")
		}
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)

		address, err := deps.Geocode.Reverse(c.UserContext(), domain.GeoPoint{Lat: lat, Lon: lon})
		switch {
		case errors.Is(err, usecases.ErrInvalidCoordinates):
			return errBadRequest(c, "coordinates are outside the service area")
		case err != nil:
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(fiber.Map{
			"lat":     lat,
			"lon":     lon,
			"address": address,
		})
	}
}

// MLStatusHandler reports predictor availability and model metadata.
// A missing or unreachable predictor is not an error: the engine degrades
// to rule-based scoring.
func MLStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.ML == nil {
			return c.JSON(fiber.Map{
				"available": false,
				"mode":      "rule_based",
			})
		}

		info, err := deps.ML.Info(c.UserContext())
		if err != nil {
			return c.JSON(fiber.Map{
				"available": false,
				"mode":      "rule_based",
				"error":     err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"available": true,
			"mode":      "hybrid",
			"model":     info,
		})
	}
}

// DatasetStatsHandler returns the sizes of the loaded spatial datasets.
func DatasetStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		crimes, lights, population := deps.Heatmaps.DatasetSizes()
		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(fiber.Map{
			"crime_points":      crimes,
			"lighting_points":   lights,
			"population_points": population,
		})
	}
}
