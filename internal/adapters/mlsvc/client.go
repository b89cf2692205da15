package mlsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client talks to the ML scoring sidecar. It implements ports.MLPredictor
// and exposes the retraining endpoints used by the trainer worker.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a sidecar client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Predict scores a feature vector. The sidecar clamps to [0,100]; the value
// is clamped again by the caller before blending.
func (c *Client) Predict(ctx context.Context, features map[string]float64) (float64, error) {
	payload, err := json.Marshal(map[string]any{"features": features})
	if err != nil {
		return 0, fmt.Errorf("encode features: %w", err)
	}

	var out struct {
		Score float64 `json:"score"`
	}
	if err := c.do(ctx, http.MethodPost, "/predict", payload, &out); err != nil {
		return 0, err
	}
	return out.Score, nil
}

// Info returns the sidecar's model metadata (version, training size, ...).
func (c *Client) Info(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodGet, "/info", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SampleCount reports how many training samples the sidecar has collected.
func (c *Client) SampleCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/samples/count", nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// AddSample appends one training sample to the sidecar's dataset.
func (c *Client) AddSample(ctx context.Context, features map[string]float64, label float64) error {
	payload, err := json.Marshal(map[string]any{
		"features": features,
		"label":    label,
	})
	if err != nil {
		return fmt.Errorf("encode sample: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/samples", payload, nil)
}

// Retrain asks the sidecar to rebuild its model from the collected samples.
// The sidecar kicks training off in the background and returns immediately.
func (c *Client) Retrain(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/retrain", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, out any) error {
	var body *bytes.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ml sidecar request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ml sidecar status %d", resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
