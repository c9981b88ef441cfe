package health

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cropcast/internal/agro"
	"cropcast/internal/model"
)

type fakeProber struct {
	enabled bool
	err     error
	calls   int
}

func (f *fakeProber) Probe(ctx context.Context) error {
	f.calls++
	return f.err
}

func (f *fakeProber) Enabled() bool { return f.enabled }

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping() error { return f.err }

// emptyRegistry has every crop on baseline (no artifacts on disk).
func emptyRegistry(t *testing.T) *model.Registry {
	t.Helper()
	r := model.NewRegistry(t.TempDir(), 0.90, 0.25, nil)
	require.NoError(t, r.Load())
	return r
}

// fullRegistry has a trained artifact for every supported crop.
func fullRegistry(t *testing.T) *model.Registry {
	t.Helper()
	dir := t.TempDir()
	for _, crop := range agro.SupportedCrops() {
		a := model.Artifact{
			Crop:          crop,
			Kind:          model.KindLinear,
			FormatVersion: model.CurrentFormatVersion,
			Library:       "agriml-2.1.0",
			Features:      []string{"ndvi"},
			Intercept:     2.0,
			Coefficients:  []float64{3.0},
		}
		data, err := json.Marshal(a)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, crop+".model.json"), data, 0644))
	}
	r := model.NewRegistry(dir, 0.90, 0.25, nil)
	require.NoError(t, r.Load())
	return r
}

func TestSnapshotHealthy(t *testing.T) {
	c := NewChecker(fullRegistry(t), &fakeProber{enabled: true}, &fakePinger{}, "1.2.0")

	snap := c.Snapshot(context.Background())
	assert.Equal(t, StatusHealthy, snap.Status)
	assert.False(t, snap.FallbackMode)
	for _, st := range snap.Models {
		assert.Equal(t, model.StateLoaded, st.State, string(st.Crop))
	}
}

func TestSnapshotDegradedByFallbackMode(t *testing.T) {
	c := NewChecker(emptyRegistry(t), &fakeProber{enabled: true}, &fakePinger{}, "1.2.0")

	snap := c.Snapshot(context.Background())
	assert.Equal(t, StatusDegraded, snap.Status)
	assert.True(t, snap.FallbackMode)
	assert.Equal(t, "1.2.0", snap.Version)
	assert.Len(t, snap.Models, len(agro.SupportedCrops()))
	assert.True(t, snap.GEE.Reachable)
	assert.True(t, snap.Store.OK)
	assert.False(t, snap.CheckedAt.IsZero())
}

func TestSnapshotDegradedByUnreachableGEE(t *testing.T) {
	// GEE enabled but failing: degraded even without fallback consideration.
	prober := &fakeProber{enabled: true, err: errors.New("connection refused")}
	c := NewChecker(emptyRegistry(t), prober, &fakePinger{}, "1.2.0")

	snap := c.Snapshot(context.Background())
	assert.Equal(t, StatusDegraded, snap.Status)
	assert.False(t, snap.GEE.Reachable)
	assert.Contains(t, snap.GEE.Error, "connection refused")
}

func TestSnapshotUnhealthyWhenStoreDown(t *testing.T) {
	pinger := &fakePinger{err: errors.New("database is closed")}
	c := NewChecker(emptyRegistry(t), &fakeProber{enabled: true}, pinger, "1.2.0")

	snap := c.Snapshot(context.Background())
	assert.Equal(t, StatusUnhealthy, snap.Status)
	assert.False(t, snap.Store.OK)
	assert.Contains(t, snap.Store.Error, "database is closed")
}

func TestSnapshotDisabledGEEDoesNotDegrade(t *testing.T) {
	// Disabled integration must not pull the service out of its model-driven
	// state: only fallback mode matters then.
	r := emptyRegistry(t)
	c := NewChecker(r, &fakeProber{enabled: false}, &fakePinger{}, "1.2.0")

	snap := c.Snapshot(context.Background())
	assert.False(t, snap.GEE.Enabled)
	// Still degraded here, but only because of fallback mode.
	assert.Equal(t, StatusDegraded, snap.Status)
	assert.True(t, snap.FallbackMode)
}

func TestSnapshotProbeCached(t *testing.T) {
	prober := &fakeProber{enabled: true}
	c := NewChecker(emptyRegistry(t), prober, &fakePinger{}, "1.2.0")

	ctx := context.Background()
	c.Snapshot(ctx)
	c.Snapshot(ctx)
	c.Snapshot(ctx)
	assert.Equal(t, 1, prober.calls)
}
