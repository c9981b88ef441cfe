package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cropcast/internal/agro"
)

type recordedEvent struct {
	crop, event, detail string
}

type fakeRecorder struct {
	events []recordedEvent
}

func (f *fakeRecorder) RecordModelEvent(crop, event, detail string) error {
	f.events = append(f.events, recordedEvent{crop, event, detail})
	return nil
}

func TestRegistryLoadMixedArtifacts(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "wheat.model.json", validGBTArtifact())

	rice := validGBTArtifact()
	rice.Crop = "rice"
	rice.Library = "agriml-3.0.0" // incompatible major
	writeArtifact(t, dir, "rice.model.json", rice)

	rec := &fakeRecorder{}
	r := NewRegistry(dir, 0.90, 0.25, rec)
	require.NoError(t, r.Load())

	engine, st, err := r.Engine(agro.CropWheat)
	require.NoError(t, err)
	assert.Equal(t, KindGBTEnsemble, engine.Kind())
	assert.Equal(t, StateLoaded, st.State)
	assert.Equal(t, "agriml-2.4.1", st.Library)
	assert.Empty(t, st.Reason)

	engine, st, err = r.Engine(agro.CropRice)
	require.NoError(t, err)
	assert.Equal(t, KindBaseline, engine.Kind())
	assert.Equal(t, StateFallback, st.State)
	assert.Contains(t, st.Reason, "major version 3")

	// Crops with no artifact at all get the stock fallback reason.
	_, st, err = r.Engine(agro.CropMaize)
	require.NoError(t, err)
	assert.Equal(t, StateFallback, st.State)
	assert.Equal(t, "no trained artifact available", st.Reason)

	assert.True(t, r.FallbackMode())

	var loaded, fellBack []string
	for _, ev := range rec.events {
		switch ev.event {
		case "loaded":
			loaded = append(loaded, ev.crop)
		case "fallback":
			fellBack = append(fellBack, ev.crop)
		}
	}
	assert.Equal(t, []string{"wheat"}, loaded)
	assert.Len(t, fellBack, len(agro.SupportedCrops())-1)
}

func TestRegistryAllLoaded(t *testing.T) {
	dir := t.TempDir()
	for _, crop := range agro.SupportedCrops() {
		a := validGBTArtifact()
		a.Crop = crop
		writeArtifact(t, dir, crop+".model.json", a)
	}

	r := NewRegistry(dir, 0.90, 0.25, nil)
	require.NoError(t, r.Load())
	assert.False(t, r.FallbackMode())

	statuses := r.Statuses()
	require.Len(t, statuses, len(agro.SupportedCrops()))
	for _, st := range statuses {
		assert.Equal(t, StateLoaded, st.State, string(st.Crop))
	}
	// Sorted by crop name.
	for i := 1; i < len(statuses); i++ {
		assert.Less(t, string(statuses[i-1].Crop), string(statuses[i].Crop))
	}
}

func TestRegistryMissingDirectory(t *testing.T) {
	r := NewRegistry(filepath.Join(t.TempDir(), "nope"), 0.90, 0.25, nil)
	require.NoError(t, r.Load())

	assert.True(t, r.FallbackMode())
	for _, st := range r.Statuses() {
		assert.Equal(t, StateFallback, st.State)
		assert.Contains(t, st.Reason, "model directory unreadable")
	}

	// Every supported crop is still servable.
	engine, _, err := r.Engine(agro.CropPotato)
	require.NoError(t, err)
	p := engine.Predict(Features{NDVI: 0.6, RainfallMM: 350, SowingDOY: 300})
	assert.Greater(t, p.YieldTPerHa, 0.0)
}

func TestRegistryUnknownCrop(t *testing.T) {
	r := NewRegistry(t.TempDir(), 0.90, 0.25, nil)
	require.NoError(t, r.Load())

	_, _, err := r.Engine("dragonfruit")
	var unknown *agro.ErrUnknownCrop
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "dragonfruit", unknown.Crop)
}

func TestRegistryEngineNormalizesCrop(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "wheat.model.json", validGBTArtifact())

	r := NewRegistry(dir, 0.90, 0.25, nil)
	require.NoError(t, r.Load())

	_, st, err := r.Engine("  Wheat ")
	require.NoError(t, err)
	assert.Equal(t, StateLoaded, st.State)
}

func TestRegistryReloadRecovers(t *testing.T) {
	dir := t.TempDir()

	bad := validGBTArtifact()
	bad.FormatVersion = 1
	path := writeArtifact(t, dir, "wheat.model.json", bad)

	r := NewRegistry(dir, 0.90, 0.25, nil)
	require.NoError(t, r.Load())
	_, st, err := r.Engine(agro.CropWheat)
	require.NoError(t, err)
	assert.Equal(t, StateFallback, st.State)

	// Replace the artifact with a compatible one and reload.
	require.NoError(t, os.Remove(path))
	writeArtifact(t, dir, "wheat.model.json", validGBTArtifact())
	require.NoError(t, r.Load())

	_, st, err = r.Engine(agro.CropWheat)
	require.NoError(t, err)
	assert.Equal(t, StateLoaded, st.State)
	assert.Empty(t, st.Reason)
}

func TestCropFromFilename(t *testing.T) {
	assert.Equal(t, agro.CropWheat, cropFromFilename("wheat.model.json"))
	assert.Equal(t, agro.Crop(""), cropFromFilename("README.md"))
	assert.Equal(t, agro.Crop("notacrop"), cropFromFilename("notacrop.model.json"))
}
