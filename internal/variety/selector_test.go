package variety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cropcast/internal/agro"
)

func newTestSelector() *Selector {
	return NewSelector(SeedCatalog())
}

func TestSelectRegionalMatch(t *testing.T) {
	s := newTestSelector()

	sel, err := s.Select(agro.CropWheat, "Punjab", "")
	require.NoError(t, err)

	assert.Equal(t, MethodRegionalMatch, sel.Method)
	// Punjab has three wheat registrations; PBW-725 wins on recommended
	// status and the highest yield potential among the recommended.
	assert.Equal(t, "PBW-725", sel.Variety.Name)
	assert.Equal(t, []string{"HD-2967", "PBW-343"}, sel.Alternatives)
	assert.Contains(t, sel.Reason, "Punjab")
}

func TestSelectZonalFallback(t *testing.T) {
	s := newTestSelector()

	// Gujarat has no regional wheat registrations but sits in West India.
	sel, err := s.Select(agro.CropWheat, "Gujarat", "")
	require.NoError(t, err)

	assert.Equal(t, MethodZonalFallback, sel.Method)
	assert.Equal(t, "GW-322", sel.Variety.Name)
	assert.Equal(t, agro.ZoneWestIndia, sel.Variety.Zone)
	assert.Contains(t, sel.Reason, agro.ZoneWestIndia)
	assert.Empty(t, sel.Alternatives)
}

func TestSelectZonalFallbackSkipsEmptyRegional(t *testing.T) {
	s := newTestSelector()

	// Punjab has no mustard registrations of its own; the North India zone
	// recommendation applies.
	sel, err := s.Select(agro.CropMustard, "Punjab", "")
	require.NoError(t, err)
	assert.Equal(t, MethodZonalFallback, sel.Method)
	assert.Equal(t, "RGN-73", sel.Variety.Name)
}

func TestSelectGlobalDefault(t *testing.T) {
	s := newTestSelector()

	tests := []struct {
		name  string
		state string
	}{
		{"zone without registrations", "Kerala"}, // South India has no wheat rows
		{"unmapped state", "Goa"},
		{"empty state", ""},
		{"whitespace state", "   "},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sel, err := s.Select(agro.CropWheat, tc.state, "")
			require.NoError(t, err)

			assert.Equal(t, MethodGlobalDefault, sel.Method)
			assert.Equal(t, "HD-2967", sel.Variety.Name)
			assert.True(t, sel.Variety.Default)
			assert.Contains(t, sel.Reason, "national default")
		})
	}
}

func TestSelectEmptyStateSkipsRegionalRung(t *testing.T) {
	// Zonal and default catalog rows have Region == ""; an empty state must
	// not treat them as regional registrations for that state.
	s := newTestSelector()

	for _, state := range []string{"", "  "} {
		sel, err := s.Select(agro.CropWheat, state, "")
		require.NoError(t, err)
		assert.NotEqual(t, MethodRegionalMatch, sel.Method, "state=%q", state)
		assert.Equal(t, MethodGlobalDefault, sel.Method, "state=%q", state)
	}
}

func TestSelectGlobalDefaultAlternativesRankedAndCapped(t *testing.T) {
	s := newTestSelector()

	sel, err := s.Select(agro.CropWheat, "Kerala", "")
	require.NoError(t, err)

	// Recommended varieties ranked by yield potential, capped at four, with
	// the default's own regional registration excluded.
	assert.Equal(t, []string{"DBW-187", "PBW-725", "WH-1105", "HD-3086"}, sel.Alternatives)
}

func TestSelectUserSpecified(t *testing.T) {
	s := newTestSelector()

	sel, err := s.Select(agro.CropWheat, "Punjab", "PBW-343")
	require.NoError(t, err)
	assert.Equal(t, MethodUserSpecified, sel.Method)
	assert.Equal(t, "PBW-343", sel.Variety.Name)
	assert.Empty(t, sel.Alternatives)

	// Lookup is case- and whitespace-insensitive.
	sel, err = s.Select(agro.CropWheat, "Punjab", "  pbw-343 ")
	require.NoError(t, err)
	assert.Equal(t, "PBW-343", sel.Variety.Name)
}

func TestSelectUnknownVariety(t *testing.T) {
	s := newTestSelector()

	_, err := s.Select(agro.CropWheat, "Punjab", "NOT-A-VARIETY")
	var unknown *ErrUnknownVariety
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "NOT-A-VARIETY", unknown.Variety)
	assert.Equal(t, "wheat", unknown.Crop)
	assert.Contains(t, unknown.Valid, "HD-2967")
	assert.Contains(t, unknown.Valid, "PBW-725")
	assert.Contains(t, err.Error(), "not registered")
}

func TestSelectUnknownCrop(t *testing.T) {
	s := newTestSelector()

	_, err := s.Select("dragonfruit", "Punjab", "")
	var unknown *agro.ErrUnknownCrop
	require.ErrorAs(t, err, &unknown)

	// The crop check runs before variety validation.
	_, err = s.Select("dragonfruit", "Punjab", "HD-2967")
	require.ErrorAs(t, err, &unknown)
}

func TestSelectNormalizesCropAndState(t *testing.T) {
	s := newTestSelector()

	sel, err := s.Select(" WHEAT ", "  punjab ", "")
	require.NoError(t, err)
	assert.Equal(t, MethodRegionalMatch, sel.Method)
	assert.Equal(t, "PBW-725", sel.Variety.Name)
}

func TestNamesSortedAndDistinct(t *testing.T) {
	s := newTestSelector()

	names := s.Names(agro.CropWheat)
	// HD-2967 appears as both a Punjab registration and the default row but
	// must be listed once.
	count := 0
	for _, n := range names {
		if n == "HD-2967" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
}

func TestForCropScopedToState(t *testing.T) {
	s := newTestSelector()

	vs := s.ForCrop(agro.CropWheat, "Punjab")
	require.NotEmpty(t, vs)
	for _, v := range vs {
		inScope := v.Region == "punjab" || v.Zone == agro.ZoneNorthIndia || v.Default
		assert.True(t, inScope, v.Name)
	}
	// Ranked: a recommended entry leads.
	assert.True(t, vs[0].Recommended)
}

func TestForCropUnscoped(t *testing.T) {
	s := newTestSelector()

	all := s.ForCrop(agro.CropWheat, "")
	scoped := s.ForCrop(agro.CropWheat, "Punjab")
	assert.Greater(t, len(all), len(scoped))
}

func TestRankOrdering(t *testing.T) {
	vs := []Variety{
		{Name: "C", Recommended: false, YieldPotential: 9.0},
		{Name: "B", Recommended: true, YieldPotential: 4.0},
		{Name: "A", Recommended: true, YieldPotential: 4.0},
		{Name: "D", Recommended: true, YieldPotential: 5.0},
	}
	rank(vs)

	got := make([]string, len(vs))
	for i, v := range vs {
		got[i] = v.Name
	}
	assert.Equal(t, []string{"D", "A", "B", "C"}, got)
}
