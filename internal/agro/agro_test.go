package agro

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "uttar pradesh", Normalize("  Uttar   Pradesh "))
	assert.Equal(t, "wheat", Normalize("WHEAT"))
	assert.Equal(t, "", Normalize("   "))
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported(CropWheat))
	assert.True(t, IsSupported(" Rice "))
	assert.False(t, IsSupported("dragonfruit"))
	assert.False(t, IsSupported(""))
}

func TestSupportedCropsSorted(t *testing.T) {
	crops := SupportedCrops()
	assert.Equal(t, []string{"maize", "mustard", "potato", "rice", "wheat"}, crops)
}

func TestErrUnknownCropMessage(t *testing.T) {
	err := &ErrUnknownCrop{Crop: "dragonfruit"}
	assert.Contains(t, err.Error(), "dragonfruit")
	assert.Contains(t, err.Error(), "wheat")
}

func TestZoneForState(t *testing.T) {
	assert.Equal(t, ZoneNorthIndia, ZoneForState("Punjab"))
	assert.Equal(t, ZoneNorthIndia, ZoneForState("uttar   pradesh"))
	assert.Equal(t, ZoneEastIndia, ZoneForState("West Bengal"))
	assert.Equal(t, ZoneWestIndia, ZoneForState("Gujarat"))
	assert.Equal(t, ZoneSouthIndia, ZoneForState("Kerala"))
	assert.Equal(t, "", ZoneForState("Goa"))
	assert.Equal(t, "", ZoneForState(""))
}

func TestSeasonForSowing(t *testing.T) {
	tests := []struct {
		date   string
		season Season
	}{
		{"2025-06-15", SeasonKharif},
		{"2025-09-30", SeasonKharif},
		{"2025-11-05", SeasonRabi},
		{"2026-01-10", SeasonRabi},
		{"2025-03-20", SeasonZaid},
	}
	for _, tc := range tests {
		d, err := time.Parse("2006-01-02", tc.date)
		if err != nil {
			t.Fatalf("bad test date %s: %v", tc.date, err)
		}
		assert.Equal(t, tc.season, SeasonForSowing(d), tc.date)
	}
}
