// Package client is a typed Go client for the cropcast prediction API. It
// carries its own response types so external callers do not depend on
// server internals.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client talks to a running cropcast server.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a client for the given base URL (e.g. "http://localhost:8099").
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// APIError is the decoded server error envelope.
type APIError struct {
	StatusCode int
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
}

// Predict requests a yield prediction.
func (c *Client) Predict(ctx context.Context, req PredictRequest) (*PredictResponse, error) {
	var resp PredictResponse
	if err := c.do(ctx, "POST", "/api/v1/predict", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Varieties fetches the catalog slice for a crop, optionally scoped to a state.
func (c *Client) Varieties(ctx context.Context, crop, state string) (*VarietiesResponse, error) {
	q := url.Values{}
	q.Set("crop", crop)
	if state != "" {
		q.Set("state", state)
	}
	var resp VarietiesResponse
	if err := c.do(ctx, "GET", "/api/v1/varieties", q, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Crops lists supported crops and their model state.
func (c *Client) Crops(ctx context.Context) ([]CropStatus, error) {
	var resp struct {
		Crops []CropStatus `json:"crops"`
	}
	if err := c.do(ctx, "GET", "/api/v1/crops", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Crops, nil
}

// Recent fetches the newest logged predictions.
func (c *Client) Recent(ctx context.Context, limit int) ([]PredictionRecord, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var resp struct {
		Predictions []PredictionRecord `json:"predictions"`
	}
	if err := c.do(ctx, "GET", "/api/v1/predictions/recent", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Predictions, nil
}

// ModelEvents fetches the newest model load/fallback audit entries.
func (c *Client) ModelEvents(ctx context.Context, limit int) ([]ModelEvent, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var resp struct {
		Events []ModelEvent `json:"events"`
	}
	if err := c.do(ctx, "GET", "/api/v1/models/events", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// Health fetches the health snapshot. A degraded service still decodes; only
// transport failures and unhealthy (503) responses return an error alongside
// the snapshot when available.
func (c *Client) Health(ctx context.Context) (*HealthSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var snap HealthSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode health response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return &snap, fmt.Errorf("service unhealthy (HTTP %d)", resp.StatusCode)
	}
	return &snap, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var envelope struct {
			Error APIError `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return fmt.Errorf("server returned status %d", resp.StatusCode)
		}
		apiErr := envelope.Error
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
