// Package model loads yield-model artifacts from disk and compiles them into
// prediction engines. Artifacts that fail the compatibility check are never a
// boot failure: the affected crop degrades to the built-in baseline engine
// and the registry reports fallback mode.
package model

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"cropcast/internal/agro"
)

// Artifact format versions understood by this binary.
// v1: single-tree payloads, no feature schema (no longer readable)
// v2: added feature schema and library stamp
// v3: added per-tree shrinkage and trained_at
const (
	MinFormatVersion     = 2
	CurrentFormatVersion = 3
)

// SupportedLibraryMajor is the major version of the training library whose
// artifacts this binary can serve. A mismatch is the classic "library version
// incompatibility" that sends a crop into fallback mode.
const SupportedLibraryMajor = 2

// Model kinds.
const (
	KindGBTEnsemble = "gbt_ensemble"
	KindLinear      = "linear"
	KindBaseline    = "baseline"
)

// Feature names an artifact schema may reference.
var knownFeatures = map[string]bool{
	"ndvi":        true,
	"rainfall_mm": true,
	"sowing_doy":  true,
	"area_ha":     true,
}

// Artifact is the on-disk JSON model file (<crop>.model.json).
type Artifact struct {
	Crop          string    `json:"crop"`
	Kind          string    `json:"model_type"`
	FormatVersion int       `json:"format_version"`
	Library       string    `json:"library"` // e.g. "agriml-2.4.1"
	TrainedAt     time.Time `json:"trained_at"`
	Features      []string  `json:"features"`

	// KindGBTEnsemble payload
	Bias      float64 `json:"bias,omitempty"`
	Shrinkage float64 `json:"shrinkage,omitempty"`
	Trees     []Tree  `json:"trees,omitempty"`

	// KindLinear payload
	Intercept    float64   `json:"intercept,omitempty"`
	Coefficients []float64 `json:"coefficients,omitempty"`
	RelBand      float64   `json:"rel_band,omitempty"`
}

// Tree is a binary decision tree in node-array form. Node 0 is the root.
// Leaf nodes have Left == -1.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Node is a single split or leaf.
type Node struct {
	Feature   int     `json:"f"` // index into the artifact feature schema
	Threshold float64 `json:"t"` // go left when value < threshold
	Left      int     `json:"l"` // -1 for leaves
	Right     int     `json:"r"`
	Value     float64 `json:"v"` // leaf output (yield delta t/ha)
}

// IncompatibleError explains why an artifact cannot be served. It is recorded
// as the crop's fallback reason.
type IncompatibleError struct {
	Path   string
	Reason string
}

func (e *IncompatibleError) Error() string {
	return fmt.Sprintf("artifact %s incompatible: %s", e.Path, e.Reason)
}

// ReadArtifact parses and compatibility-checks one artifact file.
func ReadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, &IncompatibleError{Path: path, Reason: fmt.Sprintf("malformed JSON: %v", err)}
	}

	if err := a.checkCompatibility(path); err != nil {
		return nil, err
	}
	return &a, nil
}

func (a *Artifact) checkCompatibility(path string) error {
	if !agro.IsSupported(agro.Crop(a.Crop)) {
		return &IncompatibleError{Path: path, Reason: fmt.Sprintf("unknown crop %q", a.Crop)}
	}

	if a.FormatVersion < MinFormatVersion || a.FormatVersion > CurrentFormatVersion {
		return &IncompatibleError{Path: path, Reason: fmt.Sprintf(
			"format version %d outside supported range [%d, %d]",
			a.FormatVersion, MinFormatVersion, CurrentFormatVersion)}
	}

	major, ok := libraryMajor(a.Library)
	if !ok {
		return &IncompatibleError{Path: path, Reason: fmt.Sprintf("unparseable library stamp %q", a.Library)}
	}
	if major != SupportedLibraryMajor {
		return &IncompatibleError{Path: path, Reason: fmt.Sprintf(
			"library %s major version %d incompatible (supported: %d)",
			a.Library, major, SupportedLibraryMajor)}
	}

	if len(a.Features) == 0 {
		return &IncompatibleError{Path: path, Reason: "empty feature schema"}
	}
	for _, f := range a.Features {
		if !knownFeatures[f] {
			return &IncompatibleError{Path: path, Reason: fmt.Sprintf("unknown feature %q in schema", f)}
		}
	}

	switch a.Kind {
	case KindGBTEnsemble:
		if len(a.Trees) == 0 {
			return &IncompatibleError{Path: path, Reason: "gbt_ensemble artifact has no trees"}
		}
		for ti, tree := range a.Trees {
			if err := tree.validate(len(a.Features)); err != nil {
				return &IncompatibleError{Path: path, Reason: fmt.Sprintf("tree %d: %v", ti, err)}
			}
		}
	case KindLinear:
		if len(a.Coefficients) != len(a.Features) {
			return &IncompatibleError{Path: path, Reason: fmt.Sprintf(
				"coefficient count %d does not match feature schema size %d",
				len(a.Coefficients), len(a.Features))}
		}
	default:
		return &IncompatibleError{Path: path, Reason: fmt.Sprintf("unknown model type %q", a.Kind)}
	}

	return nil
}

func (t Tree) validate(numFeatures int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("empty tree")
	}
	for i, n := range t.Nodes {
		if n.Left == -1 {
			continue // leaf
		}
		if n.Feature < 0 || n.Feature >= numFeatures {
			return fmt.Errorf("node %d references feature %d outside schema", i, n.Feature)
		}
		if n.Left <= i || n.Left >= len(t.Nodes) || n.Right <= i || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d has out-of-order child indices", i)
		}
	}
	return nil
}

// libraryMajor parses "name-X.Y.Z" and returns X.
func libraryMajor(stamp string) (int, bool) {
	idx := strings.LastIndex(stamp, "-")
	if idx < 0 || idx == len(stamp)-1 {
		return 0, false
	}
	version := stamp[idx+1:]
	parts := strings.SplitN(version, ".", 2)
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	return major, true
}
