package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/arjunrs/saferoutes/internal/core/domain"
)

// Client implements ports.RouteProvider against an OSRM routing server.
type Client struct {
	baseURL string
	profile string
	http    *http.Client
}

// NewClient creates an OSRM client. baseURL is the server root, e.g.
// http://router.project-osrm.org; profile is the routing profile (driving,
// walking, ...).
func NewClient(baseURL, profile string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: profile,
		http:    &http.Client{Timeout: timeout},
	}
}

type osrmResponse struct {
	Code   string      `json:"code"`
	Routes []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Geometry struct {
		Coordinates [][]float64 `json:"coordinates"`
	} `json:"geometry"`
	Distance float64   `json:"distance"`
	Duration float64   `json:"duration"`
	Legs     []osrmLeg `json:"legs"`
}

type osrmLeg struct {
	Steps []osrmStep `json:"steps"`
}

type osrmStep struct {
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
	Maneuver struct {
		Instruction string `json:"instruction"`
		Type        string `json:"type"`
		Modifier    string `json:"modifier"`
	} `json:"maneuver"`
}

// GetRoutes asks OSRM for alternatives between start and end, optionally
// forced through a waypoint. Coordinates are lon,lat on the wire.
func (c *Client) GetRoutes(ctx context.Context, start, end domain.GeoPoint, waypoint *domain.GeoPoint) ([]domain.RouteGeometry, error) {
	var coords strings.Builder
	fmt.Fprintf(&coords, "%f,%f", start.Lon, start.Lat)
	if waypoint != nil {
		fmt.Fprintf(&coords, ";%f,%f", waypoint.Lon, waypoint.Lat)
	}
	fmt.Fprintf(&coords, ";%f,%f", end.Lon, end.Lat)

	query := url.Values{
		"overview":     {"full"},
		"geometries":   {"geojson"},
		"alternatives": {"true"},
		"steps":        {"true"},
	}
	endpoint := fmt.Sprintf("%s/route/v1/%s/%s?%s", c.baseURL, c.profile, coords.String(), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("osrm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("osrm status %d", resp.StatusCode)
	}

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if body.Code != "Ok" {
		return nil, fmt.Errorf("osrm code %q", body.Code)
	}

	var routes []domain.RouteGeometry
	for _, r := range body.Routes {
		if len(r.Geometry.Coordinates) < 2 {
			continue
		}

		points := make([]domain.GeoPoint, len(r.Geometry.Coordinates))
		for i, coord := range r.Geometry.Coordinates {
			if len(coord) < 2 {
				return nil, fmt.Errorf("osrm geometry: coordinate %d has %d components", i, len(coord))
			}
			points[i] = domain.GeoPoint{Lat: coord[1], Lon: coord[0]}
		}

		routes = append(routes, domain.RouteGeometry{
			Points:      points,
			DistanceKm:  r.Distance / 1000,
			DurationMin: r.Duration / 60,
			Steps:       parseSteps(r.Legs),
			Waypoint:    waypoint,
		})
	}
	return routes, nil
}

func parseSteps(legs []osrmLeg) []domain.RouteStep {
	var steps []domain.RouteStep
	number := 1
	for _, leg := range legs {
		for _, s := range leg.Steps {
			instruction := s.Maneuver.Instruction
			if instruction == "" {
				instruction = s.Name
			}
			if instruction == "" {
				instruction = "Continue"
			}
			steps = append(steps, domain.RouteStep{
				Number:         number,
				Instruction:    instruction,
				DistanceMeters: s.Distance,
				DistanceText:   formatDistance(s.Distance),
			})
			number++
		}
	}
	return steps
}

func formatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0fm", meters)
	}
	return fmt.Sprintf("%.1fkm", meters/1000)
}
