// Package gee fetches seasonal satellite observations (vegetation index,
// cumulative rainfall) from an Earth Engine style HTTP API, with a built-in
// climatology fallback so predictions keep working when the integration is
// down or disabled.
package gee

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"cropcast/internal/agro"
	"cropcast/internal/logging"
)

// Data sources reported with a prediction.
const (
	SourceGEE         = "gee"
	SourceClimatology = "climatology"
	SourceOverride    = "override"
)

// SeasonData is the environmental input block for one prediction.
type SeasonData struct {
	NDVI       float64   `json:"ndvi"`
	RainfallMM float64   `json:"rainfall_mm"`
	Source     string    `json:"source"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// seasonWindowDays is the observation window length from sowing.
const seasonWindowDays = 120

// failuresBeforeCooldown is the consecutive-failure threshold that opens the
// network cooldown.
const failuresBeforeCooldown = 3

// Options configures the client.
type Options struct {
	Enabled  bool
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	CacheTTL time.Duration
	Cooldown time.Duration
}

// Client fetches seasonal observations with a TTL cache. Concurrent
// requests for the same region/window collapse into one upstream call.
type Client struct {
	opts   Options
	client *http.Client
	group  singleflight.Group

	mu        sync.Mutex
	cache     map[string]cacheEntry
	failures  int
	downUntil time.Time
}

type cacheEntry struct {
	data    SeasonData
	expires time.Time
}

// NewClient creates a satellite data client.
func NewClient(opts Options) *Client {
	return &Client{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
		cache:  make(map[string]cacheEntry),
	}
}

// SeasonData returns environmental inputs for a state and sowing date. It
// never fails the prediction path: any fetch problem falls back to the
// climatology table, and the Source field says which one the caller got.
func (c *Client) SeasonData(ctx context.Context, state string, sowing time.Time) SeasonData {
	if !c.opts.Enabled {
		return Climatology(state, sowing)
	}

	key := fmt.Sprintf("%s|%s", agro.Normalize(state), sowing.Format("2006-01-02"))

	c.mu.Lock()
	if entry, ok := c.cache[key]; ok && time.Now().Before(entry.expires) {
		c.mu.Unlock()
		return entry.data
	}
	if time.Now().Before(c.downUntil) {
		c.mu.Unlock()
		logging.GEEWarn("integration in cooldown, serving climatology for %s", state)
		return Climatology(state, sowing)
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		return c.fetch(ctx, state, sowing)
	})
	if err != nil {
		c.noteFailure(err, state)
		return Climatology(state, sowing)
	}

	data := v.(SeasonData)
	c.mu.Lock()
	c.failures = 0
	c.cache[key] = cacheEntry{data: data, expires: time.Now().Add(c.opts.CacheTTL)}
	c.mu.Unlock()
	return data
}

func (c *Client) noteFailure(err error, state string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failures++
	logging.GEEWarn("fetch failed (%d consecutive): %v; serving climatology for %s", c.failures, err, state)
	if c.failures >= failuresBeforeCooldown {
		c.downUntil = time.Now().Add(c.opts.Cooldown)
		logging.GEEWarn("opening cooldown until %s", c.downUntil.Format(time.RFC3339))
	}
}

// seasonalResponse is the upstream JSON payload.
type seasonalResponse struct {
	NDVI       float64 `json:"ndvi"`
	RainfallMM float64 `json:"rainfall_mm"`
}

func (c *Client) fetch(ctx context.Context, state string, sowing time.Time) (SeasonData, error) {
	endpoint := fmt.Sprintf("%s/v1/seasonal", c.opts.BaseURL)
	params := url.Values{}
	params.Set("region", agro.Normalize(state))
	params.Set("start", sowing.Format("2006-01-02"))
	params.Set("end", sowing.AddDate(0, 0, seasonWindowDays).Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return SeasonData{}, fmt.Errorf("failed to create request: %w", err)
	}
	if c.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return SeasonData{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return SeasonData{}, fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload seasonalResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return SeasonData{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if payload.NDVI < 0 || payload.NDVI > 1 {
		return SeasonData{}, fmt.Errorf("implausible NDVI %v in response", payload.NDVI)
	}

	logging.GEE("fetched seasonal data for %s: ndvi=%.2f rain=%.0fmm", state, payload.NDVI, payload.RainfallMM)
	return SeasonData{
		NDVI:       payload.NDVI,
		RainfallMM: payload.RainfallMM,
		Source:     SourceGEE,
		FetchedAt:  time.Now(),
	}, nil
}

// Probe checks upstream reachability for the health endpoint. Disabled
// integration probes successfully.
func (c *Client) Probe(ctx context.Context) error {
	if !c.opts.Enabled {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.opts.BaseURL+"/v1/status", nil)
	if err != nil {
		return fmt.Errorf("failed to create probe request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("probe returned status %d", resp.StatusCode)
	}
	return nil
}

// Enabled reports whether the integration is configured on.
func (c *Client) Enabled() bool {
	return c.opts.Enabled
}
