package model

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"cropcast/internal/agro"
	"cropcast/internal/logging"
)

// LoadState is the serving state of one crop's model.
type LoadState string

const (
	StateLoaded   LoadState = "loaded"
	StateFallback LoadState = "fallback"
)

// Status describes how one crop is currently being served.
type Status struct {
	Crop          agro.Crop `json:"crop"`
	State         LoadState `json:"state"`
	Kind          string    `json:"kind"`
	Reason        string    `json:"reason,omitempty"` // fallback reason, empty when loaded
	ArtifactPath  string    `json:"artifact_path,omitempty"`
	Library       string    `json:"library,omitempty"`
	FormatVersion int       `json:"format_version,omitempty"`
	TrainedAt     time.Time `json:"trained_at,omitempty"`
	LoadedAt      time.Time `json:"loaded_at"`
}

// EventRecorder receives load/fallback/reload audit events. The store
// implements it; a nil recorder is allowed in tests.
type EventRecorder interface {
	RecordModelEvent(crop, event, detail string) error
}

// Registry holds the active engine per crop. Load builds a complete engine
// set (baselines fill any gap) and swaps it in atomically, so a failed
// reload keeps the previous engines serving.
type Registry struct {
	mu sync.RWMutex

	dir        string
	confidence float64
	relBand    float64
	recorder   EventRecorder

	engines  map[agro.Crop]Engine
	statuses map[agro.Crop]Status
}

// NewRegistry creates an empty registry. Call Load before serving.
func NewRegistry(dir string, confidenceLevel, fallbackRelBand float64, recorder EventRecorder) *Registry {
	return &Registry{
		dir:        dir,
		confidence: confidenceLevel,
		relBand:    fallbackRelBand,
		recorder:   recorder,
		engines:    make(map[agro.Crop]Engine),
		statuses:   make(map[agro.Crop]Status),
	}
}

// Load scans the artifact directory and swaps in a fresh engine set. Each
// artifact is all-or-nothing: any compatibility failure sends that crop to
// the baseline engine with a recorded reason. A missing or unreadable
// directory degrades every crop rather than failing the boot.
func (r *Registry) Load() error {
	timer := logging.StartTimer(logging.CategoryModels, "Registry.Load")
	defer timer.Stop()

	engines := make(map[agro.Crop]Engine)
	statuses := make(map[agro.Crop]Status)
	now := time.Now()

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		logging.ModelsWarn("model directory %s unreadable (%v); all crops on baseline", r.dir, err)
		r.fillBaselines(engines, statuses, fmt.Sprintf("model directory unreadable: %v", err), now)
		r.swap(engines, statuses)
		return nil
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".model.json") {
			continue
		}
		path := filepath.Join(r.dir, name)

		artifact, err := ReadArtifact(path)
		if err != nil {
			crop := cropFromFilename(name)
			logging.ModelsWarn("artifact %s rejected: %v", name, err)
			if _, served := engines[crop]; !served && crop != "" && agro.IsSupported(crop) {
				statuses[crop] = Status{
					Crop:     crop,
					State:    StateFallback,
					Kind:     KindBaseline,
					Reason:   reasonOf(err),
					LoadedAt: now,
				}
				r.record(string(crop), "fallback", reasonOf(err))
			}
			continue
		}

		crop := agro.Crop(agro.Normalize(artifact.Crop))
		var engine Engine
		switch artifact.Kind {
		case KindGBTEnsemble:
			engine = compileGBT(artifact, r.confidence)
		case KindLinear:
			engine = compileLinear(artifact, r.relBand)
		}

		engines[crop] = engine
		statuses[crop] = Status{
			Crop:          crop,
			State:         StateLoaded,
			Kind:          artifact.Kind,
			ArtifactPath:  path,
			Library:       artifact.Library,
			FormatVersion: artifact.FormatVersion,
			TrainedAt:     artifact.TrainedAt,
			LoadedAt:      now,
		}
		r.record(string(crop), "loaded", fmt.Sprintf("%s from %s (%s)", artifact.Kind, name, artifact.Library))
		logging.Models("loaded %s model for %s from %s", artifact.Kind, crop, name)
	}

	// Every supported crop must be servable: fill gaps with baselines.
	r.fillBaselines(engines, statuses, "no trained artifact available", now)

	r.swap(engines, statuses)
	logging.Models("registry active: %d crops, fallback_mode=%v", len(engines), r.FallbackMode())
	return nil
}

func (r *Registry) fillBaselines(engines map[agro.Crop]Engine, statuses map[agro.Crop]Status, defaultReason string, now time.Time) {
	for _, name := range agro.SupportedCrops() {
		crop := agro.Crop(name)
		if _, ok := engines[crop]; ok {
			continue
		}
		engines[crop] = newBaseline(crop, r.relBand)
		st, had := statuses[crop]
		if !had {
			st = Status{Crop: crop, State: StateFallback, Kind: KindBaseline, Reason: defaultReason, LoadedAt: now}
			r.record(string(crop), "fallback", defaultReason)
		}
		statuses[crop] = st
	}
}

func (r *Registry) swap(engines map[agro.Crop]Engine, statuses map[agro.Crop]Status) {
	r.mu.Lock()
	r.engines = engines
	r.statuses = statuses
	r.mu.Unlock()
}

func (r *Registry) record(crop, event, detail string) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.RecordModelEvent(crop, event, detail); err != nil {
		logging.ModelsWarn("failed to record model event %s/%s: %v", crop, event, err)
	}
}

// Engine returns the active engine and status for a crop.
func (r *Registry) Engine(crop agro.Crop) (Engine, Status, error) {
	key := agro.Crop(agro.Normalize(string(crop)))

	r.mu.RLock()
	defer r.mu.RUnlock()

	engine, ok := r.engines[key]
	if !ok {
		return nil, Status{}, &agro.ErrUnknownCrop{Crop: string(crop)}
	}
	return engine, r.statuses[key], nil
}

// Statuses returns the per-crop serving status, sorted by crop name.
func (r *Registry) Statuses() []Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Status, 0, len(r.statuses))
	for _, st := range r.statuses {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Crop < out[j].Crop })
	return out
}

// FallbackMode reports whether any crop is served by a baseline engine.
func (r *Registry) FallbackMode() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, st := range r.statuses {
		if st.State == StateFallback {
			return true
		}
	}
	return false
}

// reasonOf extracts the human reason from an artifact error.
func reasonOf(err error) string {
	if ie, ok := err.(*IncompatibleError); ok {
		return ie.Reason
	}
	return err.Error()
}

// cropFromFilename recovers the crop from "<crop>.model.json" so a corrupt
// artifact can still be attributed to its crop in the status report.
func cropFromFilename(name string) agro.Crop {
	base := strings.TrimSuffix(name, ".model.json")
	if base == name {
		return ""
	}
	return agro.Crop(agro.Normalize(base))
}
