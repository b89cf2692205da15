package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/arjunrs/saferoutes/internal/core/domain"
)

const userAgent = "saferoutes/1.0"

// Client implements ports.Geocoder against a Nominatim server. CitySuffix is
// appended to every search query to anchor results to the service area.
type Client struct {
	baseURL    string
	citySuffix string
	http       *http.Client
}

// NewClient creates a Nominatim client.
func NewClient(baseURL, citySuffix string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		citySuffix: citySuffix,
		http:       &http.Client{Timeout: timeout},
	}
}

type searchResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Type        string `json:"type"`
}

// Search resolves a free-text query against /search.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.Place, error) {
	if c.citySuffix != "" {
		query = query + ", " + c.citySuffix
	}

	params := url.Values{
		"q":               {query},
		"format":          {"jsonv2"},
		"addressdetails":  {"1"},
		"limit":           {strconv.Itoa(limit)},
		"accept-language": {"en"},
	}

	var results []searchResult
	if err := c.get(ctx, "/search", params, &results); err != nil {
		return nil, err
	}

	var places []domain.Place
	for _, r := range results {
		lat, errLat := strconv.ParseFloat(r.Lat, 64)
		lon, errLon := strconv.ParseFloat(r.Lon, 64)
		if errLat != nil || errLon != nil {
			continue
		}
		places = append(places, domain.Place{
			DisplayName: r.DisplayName,
			Location:    domain.GeoPoint{Lat: lat, Lon: lon},
			Category:    r.Type,
		})
	}
	return places, nil
}

// Reverse resolves a point to its display address via /reverse.
func (c *Client) Reverse(ctx context.Context, p domain.GeoPoint) (string, error) {
	params := url.Values{
		"lat":             {strconv.FormatFloat(p.Lat, 'f', -1, 64)},
		"lon":             {strconv.FormatFloat(p.Lon, 'f', -1, 64)},
		"format":          {"jsonv2"},
		"accept-language": {"en"},
	}

	var result struct {
		DisplayName string `json:"display_name"`
	}
	if err := c.get(ctx, "/reverse", params, &result); err != nil {
		return "", err
	}
	return result.DisplayName, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("nominatim status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
