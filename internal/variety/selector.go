package variety

import (
	"fmt"
	"sort"
	"strings"

	"cropcast/internal/agro"
	"cropcast/internal/logging"
)

// Method records which rung of the selection ladder produced the variety.
type Method string

const (
	MethodUserSpecified Method = "user_specified"
	MethodRegionalMatch Method = "regional_match"
	MethodZonalFallback Method = "zonal_fallback"
	MethodGlobalDefault Method = "global_default"
)

// maxAlternatives caps the alternatives reported with a selection.
const maxAlternatives = 4

// Selection is the outcome of variety resolution, including the metadata the
// API reports so callers can see how the choice was made.
type Selection struct {
	Variety      Variety  `json:"variety"`
	Method       Method   `json:"method"`
	Reason       string   `json:"reason"`
	Alternatives []string `json:"alternatives,omitempty"`
}

// ErrUnknownVariety is returned when a caller names a variety that is not
// registered for the crop.
type ErrUnknownVariety struct {
	Crop    string
	Variety string
	Valid   []string
}

func (e *ErrUnknownVariety) Error() string {
	return fmt.Sprintf("variety %q is not registered for %s (valid: %s)",
		e.Variety, e.Crop, strings.Join(e.Valid, ", "))
}

// Selector resolves varieties against an in-memory catalog snapshot.
type Selector struct {
	catalog []Variety
}

// NewSelector builds a selector over a catalog snapshot (normally loaded
// from the store at boot).
func NewSelector(catalog []Variety) *Selector {
	return &Selector{catalog: catalog}
}

// Select resolves the variety for a prediction request. An empty requested
// variety triggers auto-selection down the ladder; a non-empty one is
// validated against the catalog.
func (s *Selector) Select(crop agro.Crop, state, requested string) (*Selection, error) {
	cropKey := agro.Crop(agro.Normalize(string(crop)))
	if !agro.IsSupported(cropKey) {
		return nil, &agro.ErrUnknownCrop{Crop: string(crop)}
	}
	stateKey := agro.Normalize(state)

	if requested != "" {
		return s.validate(cropKey, requested)
	}

	// Rung 1: regional registrations. Zonal and default rows carry an empty
	// Region, so an empty state must skip this rung entirely.
	if stateKey != "" {
		if regional := s.registrations(cropKey, func(v Variety) bool { return v.Region == stateKey }); len(regional) > 0 {
			rank(regional)
			sel := &Selection{
				Variety:      regional[0],
				Method:       MethodRegionalMatch,
				Reason:       fmt.Sprintf("%d varieties registered for %s in %s", len(regional), cropKey, state),
				Alternatives: names(regional[1:]),
			}
			logging.VarietyDebug("regional match for %s/%s: %s", cropKey, stateKey, sel.Variety.Name)
			return sel, nil
		}
	}

	// Rung 2: zonal fallback.
	if zone := agro.ZoneForState(state); zone != "" {
		if zonal := s.registrations(cropKey, func(v Variety) bool { return v.Zone == zone }); len(zonal) > 0 {
			rank(zonal)
			sel := &Selection{
				Variety:      zonal[0],
				Method:       MethodZonalFallback,
				Reason:       fmt.Sprintf("no varieties registered for %s in %s; using %s zone recommendation", cropKey, state, zone),
				Alternatives: names(zonal[1:]),
			}
			logging.VarietyDebug("zonal fallback for %s/%s via %s: %s", cropKey, stateKey, zone, sel.Variety.Name)
			return sel, nil
		}
	}

	// Rung 3: global default.
	defaults := s.registrations(cropKey, func(v Variety) bool { return v.Default })
	if len(defaults) == 0 {
		return nil, fmt.Errorf("catalog has no global default variety for %s", cropKey)
	}
	others := s.registrations(cropKey, func(v Variety) bool { return !v.Default && v.Name != defaults[0].Name })
	rank(others)
	reason := fmt.Sprintf("no regional or zonal registrations for %s in %s; using the national default", cropKey, state)
	if stateKey == "" {
		reason = fmt.Sprintf("no state given for %s; using the national default", cropKey)
	}
	sel := &Selection{
		Variety:      defaults[0],
		Method:       MethodGlobalDefault,
		Reason:       reason,
		Alternatives: names(others),
	}
	logging.Variety("global default for %s/%s: %s", cropKey, stateKey, sel.Variety.Name)
	return sel, nil
}

// validate checks a caller-specified variety against the catalog.
func (s *Selector) validate(crop agro.Crop, requested string) (*Selection, error) {
	want := agro.Normalize(requested)
	for _, v := range s.catalog {
		if v.Crop == crop && agro.Normalize(v.Name) == want {
			return &Selection{
				Variety: v,
				Method:  MethodUserSpecified,
				Reason:  "variety specified by caller",
			}, nil
		}
	}
	return nil, &ErrUnknownVariety{
		Crop:    string(crop),
		Variety: requested,
		Valid:   s.Names(crop),
	}
}

// Names returns the distinct registered variety names for a crop, sorted.
func (s *Selector) Names(crop agro.Crop) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range s.catalog {
		if v.Crop == crop && !seen[v.Name] {
			seen[v.Name] = true
			out = append(out, v.Name)
		}
	}
	sort.Strings(out)
	return out
}

// ForCrop returns the catalog slice for a crop, optionally filtered to a
// state's regional and zonal registrations.
func (s *Selector) ForCrop(crop agro.Crop, state string) []Variety {
	cropKey := agro.Crop(agro.Normalize(string(crop)))
	stateKey := agro.Normalize(state)
	zone := agro.ZoneForState(state)

	var out []Variety
	for _, v := range s.catalog {
		if v.Crop != cropKey {
			continue
		}
		if state != "" && !(v.Region == stateKey || (zone != "" && v.Zone == zone) || v.Default) {
			continue
		}
		out = append(out, v)
	}
	rank(out)
	return out
}

func (s *Selector) registrations(crop agro.Crop, match func(Variety) bool) []Variety {
	var out []Variety
	for _, v := range s.catalog {
		if v.Crop == crop && match(v) {
			out = append(out, v)
		}
	}
	return out
}

// rank orders candidates deterministically: recommended first, then higher
// yield potential, then name.
func rank(vs []Variety) {
	sort.Slice(vs, func(i, j int) bool {
		if vs[i].Recommended != vs[j].Recommended {
			return vs[i].Recommended
		}
		if vs[i].YieldPotential != vs[j].YieldPotential {
			return vs[i].YieldPotential > vs[j].YieldPotential
		}
		return vs[i].Name < vs[j].Name
	})
}

func names(vs []Variety) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if len(out) == maxAlternatives {
			break
		}
		out = append(out, v.Name)
	}
	return out
}
