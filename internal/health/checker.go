// Package health aggregates the service health snapshot: per-crop model
// status (including fallback mode), satellite integration reachability, and
// store liveness.
package health

import (
	"context"
	"sync"
	"time"

	"cropcast/internal/logging"
	"cropcast/internal/model"
)

// Status is the overall service state.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// probeTTL caches the upstream reachability probe so health polling does not
// hammer the satellite API.
const probeTTL = 30 * time.Second

// probeTimeout bounds a single reachability probe.
const probeTimeout = 5 * time.Second

// SatelliteProber is implemented by the gee client.
type SatelliteProber interface {
	Probe(ctx context.Context) error
	Enabled() bool
}

// StorePinger is implemented by the store.
type StorePinger interface {
	Ping() error
}

// GEEStatus reports the satellite integration state.
type GEEStatus struct {
	Enabled   bool   `json:"enabled"`
	Reachable bool   `json:"reachable"`
	Error     string `json:"error,omitempty"`
}

// StoreStatus reports database liveness.
type StoreStatus struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Snapshot is the health endpoint payload.
type Snapshot struct {
	Status        Status         `json:"status"`
	Version       string         `json:"version"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	FallbackMode  bool           `json:"fallback_mode"`
	Models        []model.Status `json:"models"`
	GEE           GEEStatus      `json:"gee"`
	Store         StoreStatus    `json:"store"`
	CheckedAt     time.Time      `json:"checked_at"`
}

// Checker builds health snapshots.
type Checker struct {
	registry *model.Registry
	prober   SatelliteProber
	pinger   StorePinger
	version  string
	started  time.Time

	mu        sync.Mutex
	probedAt  time.Time
	probeErr  error
	hasProbed bool
}

// NewChecker wires the health checker to its probes.
func NewChecker(registry *model.Registry, prober SatelliteProber, pinger StorePinger, version string) *Checker {
	return &Checker{
		registry: registry,
		prober:   prober,
		pinger:   pinger,
		version:  version,
		started:  time.Now(),
	}
}

// Snapshot assembles the current health view.
//
// healthy   - all crops on trained models, GEE reachable, store up
// degraded  - fallback mode, or GEE unreachable
// unhealthy - store down
func (c *Checker) Snapshot(ctx context.Context) Snapshot {
	timer := logging.StartTimer(logging.CategoryHealth, "Snapshot")
	defer timer.Stop()

	snap := Snapshot{
		Version:       c.version,
		UptimeSeconds: int64(time.Since(c.started).Seconds()),
		Models:        c.registry.Statuses(),
		FallbackMode:  c.registry.FallbackMode(),
		CheckedAt:     time.Now(),
	}

	snap.GEE.Enabled = c.prober.Enabled()
	if err := c.cachedProbe(ctx); err != nil {
		snap.GEE.Error = err.Error()
	} else {
		snap.GEE.Reachable = true
	}

	snap.Store.OK = true
	if err := c.pinger.Ping(); err != nil {
		snap.Store.OK = false
		snap.Store.Error = err.Error()
	}

	switch {
	case !snap.Store.OK:
		snap.Status = StatusUnhealthy
	case snap.FallbackMode || (snap.GEE.Enabled && !snap.GEE.Reachable):
		snap.Status = StatusDegraded
	default:
		snap.Status = StatusHealthy
	}

	if snap.Status != StatusHealthy {
		logging.Health("health=%s fallback_mode=%v gee_reachable=%v store_ok=%v",
			snap.Status, snap.FallbackMode, snap.GEE.Reachable, snap.Store.OK)
	}
	return snap
}

// cachedProbe runs the satellite probe at most once per probeTTL.
func (c *Checker) cachedProbe(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hasProbed && time.Since(c.probedAt) < probeTTL {
		return c.probeErr
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	c.probeErr = c.prober.Probe(probeCtx)
	c.probedAt = time.Now()
	c.hasProbed = true
	return c.probeErr
}
