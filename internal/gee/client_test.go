package gee

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func testOptions(baseURL string) Options {
	return Options{
		Enabled:  true,
		BaseURL:  baseURL,
		APIKey:   "test-key",
		Timeout:  2 * time.Second,
		CacheTTL: time.Minute,
		Cooldown: time.Minute,
	}
}

func TestSeasonDataFromUpstream(t *testing.T) {
	var mu sync.Mutex
	var queries []url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/seasonal", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		mu.Lock()
		queries = append(queries, r.URL.Query())
		mu.Unlock()
		w.Write([]byte(`{"ndvi": 0.62, "rainfall_mm": 180}`))
	}))
	defer srv.Close()

	c := NewClient(testOptions(srv.URL))
	data := c.SeasonData(context.Background(), "Punjab", mustDate(t, "2025-11-05"))

	assert.Equal(t, SourceGEE, data.Source)
	assert.Equal(t, 0.62, data.NDVI)
	assert.Equal(t, 180.0, data.RainfallMM)
	assert.False(t, data.FetchedAt.IsZero())

	// Second identical request is served from cache.
	c.SeasonData(context.Background(), "Punjab", mustDate(t, "2025-11-05"))
	require.Len(t, queries, 1)

	// A different window misses the cache.
	c.SeasonData(context.Background(), "Punjab", mustDate(t, "2025-12-01"))
	require.Len(t, queries, 2)

	// Each upstream call carries its own observation window (sowing date
	// plus 120 days).
	assert.Equal(t, "punjab", queries[0].Get("region"))
	assert.Equal(t, "2025-11-05", queries[0].Get("start"))
	assert.Equal(t, "2026-03-05", queries[0].Get("end"))
	assert.Equal(t, "2025-12-01", queries[1].Get("start"))
	assert.Equal(t, "2026-03-31", queries[1].Get("end"))
}

func TestSeasonDataDisabledUsesClimatology(t *testing.T) {
	c := NewClient(Options{Enabled: false})
	data := c.SeasonData(context.Background(), "Punjab", mustDate(t, "2025-11-05"))
	assert.Equal(t, SourceClimatology, data.Source)
	assert.Greater(t, data.NDVI, 0.0)
}

func TestSeasonDataUpstreamErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(testOptions(srv.URL))
	data := c.SeasonData(context.Background(), "Punjab", mustDate(t, "2025-11-05"))
	assert.Equal(t, SourceClimatology, data.Source)
}

func TestSeasonDataImplausibleNDVIFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ndvi": 3.5, "rainfall_mm": 100}`))
	}))
	defer srv.Close()

	c := NewClient(testOptions(srv.URL))
	data := c.SeasonData(context.Background(), "Punjab", mustDate(t, "2025-11-05"))
	assert.Equal(t, SourceClimatology, data.Source)
}

func TestCooldownAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(testOptions(srv.URL))
	ctx := context.Background()

	// Distinct keys so the cache and singleflight stay out of the way.
	for i, state := range []string{"Punjab", "Haryana", "Bihar"} {
		data := c.SeasonData(ctx, state, mustDate(t, "2025-11-05"))
		assert.Equal(t, SourceClimatology, data.Source, "request %d", i)
	}
	require.Equal(t, int64(failuresBeforeCooldown), calls.Load())

	// The cooldown is open: no more upstream calls.
	data := c.SeasonData(ctx, "Gujarat", mustDate(t, "2025-11-05"))
	assert.Equal(t, SourceClimatology, data.Source)
	assert.Equal(t, int64(failuresBeforeCooldown), calls.Load())
}

func TestSuccessResetsFailureCount(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"ndvi": 0.5, "rainfall_mm": 200}`))
	}))
	defer srv.Close()

	c := NewClient(testOptions(srv.URL))
	ctx := context.Background()

	fail.Store(true)
	c.SeasonData(ctx, "Punjab", mustDate(t, "2025-11-05"))
	c.SeasonData(ctx, "Haryana", mustDate(t, "2025-11-05"))

	fail.Store(false)
	data := c.SeasonData(ctx, "Bihar", mustDate(t, "2025-11-05"))
	require.Equal(t, SourceGEE, data.Source)

	// Two failures then a success: the counter reset, so two more failures
	// must not open the cooldown.
	fail.Store(true)
	c.SeasonData(ctx, "Gujarat", mustDate(t, "2025-11-05"))
	c.SeasonData(ctx, "Kerala", mustDate(t, "2025-11-05"))

	fail.Store(false)
	data = c.SeasonData(ctx, "Odisha", mustDate(t, "2025-11-05"))
	assert.Equal(t, SourceGEE, data.Source)
}

func TestProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/status", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(testOptions(srv.URL))
	assert.NoError(t, c.Probe(context.Background()))
	assert.True(t, c.Enabled())
}

func TestProbeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(testOptions(srv.URL))
	assert.Error(t, c.Probe(context.Background()))
}

func TestProbeDisabled(t *testing.T) {
	c := NewClient(Options{Enabled: false})
	assert.NoError(t, c.Probe(context.Background()))
	assert.False(t, c.Enabled())
}

func TestClimatologyZonesDiffer(t *testing.T) {
	sowing := mustDate(t, "2025-06-15")

	north := Climatology("Punjab", sowing)
	east := Climatology("West Bengal", sowing)

	assert.Equal(t, SourceClimatology, north.Source)
	// East India's monsoon normals are wetter than the north's.
	assert.Greater(t, east.RainfallMM, north.RainfallMM)

	// NDVI stays in the valid range regardless of zone or month.
	for _, state := range []string{"Punjab", "West Bengal", "Gujarat", "Kerala", "Goa"} {
		for m := 1; m <= 12; m++ {
			d := time.Date(2025, time.Month(m), 10, 0, 0, 0, 0, time.UTC)
			data := Climatology(state, d)
			assert.Greater(t, data.NDVI, 0.0, "%s month %d", state, m)
			assert.Less(t, data.NDVI, 1.0, "%s month %d", state, m)
			assert.GreaterOrEqual(t, data.RainfallMM, 0.0)
		}
	}
}

func TestClimatologyUnmappedStateUsesFallback(t *testing.T) {
	sowing := mustDate(t, "2025-11-05")
	data := Climatology("Goa", sowing)
	assert.Equal(t, SourceClimatology, data.Source)
	assert.Greater(t, data.NDVI, 0.0)
	assert.Greater(t, data.RainfallMM, 0.0)
}

func TestClimatologyWindowWrapsYear(t *testing.T) {
	// November sowing spans Nov, Dec, Jan, Feb.
	data := Climatology("Punjab", mustDate(t, "2025-11-05"))
	normals := climatologyTable["All North India"]
	want := normals[10].rainMM + normals[11].rainMM + normals[0].rainMM + normals[1].rainMM
	assert.InDelta(t, want, data.RainfallMM, 1e-9)
}
