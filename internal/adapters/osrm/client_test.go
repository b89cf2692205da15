package osrm_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arjunrs/saferoutes/internal/adapters/osrm"
	"github.com/arjunrs/saferoutes/internal/core/domain"
)

var (
	osrmStart = domain.GeoPoint{Lat: 12.9716, Lon: 77.5946}
	osrmEnd   = domain.GeoPoint{Lat: 12.9352, Lon: 77.6245}
)

func newTestClient(t *testing.T, body string, status int) *osrm.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return osrm.NewClient(server.URL, "driving", 5*time.Second)
}

func TestGetRoutesDecodesGeometry(t *testing.T) {
	// OSRM speaks lon,lat pairs, metres and seconds.
	body := `{
		"code": "Ok",
		"routes": [{
			"geometry": {"coordinates": [[77.5946, 12.9716], [77.6100, 12.9500], [77.6245, 12.9352]]},
			"distance": 5200,
			"duration": 840,
			"legs": [{"steps": [
				{"name": "MG Road", "distance": 2600, "maneuver": {"type": "depart"}},
				{"name": "", "distance": 2600, "maneuver": {"instruction": "Turn right", "type": "turn", "modifier": "right"}}
			]}]
		}]
	}`
	client := newTestClient(t, body, http.StatusOK)

	routes, err := client.GetRoutes(context.Background(), osrmStart, osrmEnd, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(routes) != 1 {
		t.Fatalf("routes = %d, want 1", len(routes))
	}

	route := routes[0]
	if len(route.Points) != 3 {
		t.Fatalf("points = %d, want 3", len(route.Points))
	}
	if route.Points[0].Lat != 12.9716 || route.Points[0].Lon != 77.5946 {
		t.Errorf("first point = %+v, lon/lat order not swapped", route.Points[0])
	}
	if route.DistanceKm != 5.2 {
		t.Errorf("distance = %v km, want 5.2", route.DistanceKm)
	}
	if route.DurationMin != 14 {
		t.Errorf("duration = %v min, want 14", route.DurationMin)
	}
	if len(route.Steps) != 2 || route.Steps[1].Instruction != "Turn right" {
		t.Errorf("steps = %+v", route.Steps)
	}
}

func TestGetRoutesRejectsTruncatedCoordinate(t *testing.T) {
	body := `{
		"code": "Ok",
		"routes": [{
			"geometry": {"coordinates": [[77.5946, 12.9716], [77.6245]]},
			"distance": 5200,
			"duration": 840
		}]
	}`
	client := newTestClient(t, body, http.StatusOK)

	_, err := client.GetRoutes(context.Background(), osrmStart, osrmEnd, nil)
	if err == nil {
		t.Fatal("expected an error for a truncated coordinate pair")
	}
	if !strings.Contains(err.Error(), "coordinate") {
		t.Errorf("error = %v, want a geometry decode error", err)
	}
}

func TestGetRoutesRejectsNonOkCode(t *testing.T) {
	client := newTestClient(t, `{"code": "NoRoute", "routes": []}`, http.StatusOK)

	_, err := client.GetRoutes(context.Background(), osrmStart, osrmEnd, nil)
	if err == nil {
		t.Fatal("expected an error for a NoRoute response")
	}
}

func TestGetRoutesRejectsHTTPError(t *testing.T) {
	client := newTestClient(t, `bad gateway`, http.StatusBadGateway)

	_, err := client.GetRoutes(context.Background(), osrmStart, osrmEnd, nil)
	if err == nil {
		t.Fatal("expected an error for a 502 response")
	}
}
