// Package agro holds the shared agronomic vocabulary: supported crops,
// state-to-zone mapping, and cropping season derivation.
package agro

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Crop identifies a supported crop.
type Crop string

const (
	CropWheat   Crop = "wheat"
	CropRice    Crop = "rice"
	CropMaize   Crop = "maize"
	CropMustard Crop = "mustard"
	CropPotato  Crop = "potato"
)

// Agro-climatic zones used for zonal variety fallback.
const (
	ZoneNorthIndia = "All North India"
	ZoneEastIndia  = "All East India"
	ZoneWestIndia  = "All West India"
	ZoneSouthIndia = "All South India"
)

var supportedCrops = map[Crop]bool{
	CropWheat:   true,
	CropRice:    true,
	CropMaize:   true,
	CropMustard: true,
	CropPotato:  true,
}

// stateZones maps a (normalized) state name to its agro-climatic zone.
var stateZones = map[string]string{
	"punjab":           ZoneNorthIndia,
	"haryana":          ZoneNorthIndia,
	"uttar pradesh":    ZoneNorthIndia,
	"uttarakhand":      ZoneNorthIndia,
	"rajasthan":        ZoneNorthIndia,
	"delhi":            ZoneNorthIndia,
	"himachal pradesh": ZoneNorthIndia,
	"bihar":            ZoneEastIndia,
	"jharkhand":        ZoneEastIndia,
	"west bengal":      ZoneEastIndia,
	"odisha":           ZoneEastIndia,
	"gujarat":          ZoneWestIndia,
	"maharashtra":      ZoneWestIndia,
	"madhya pradesh":   ZoneWestIndia,
	"karnataka":        ZoneSouthIndia,
	"tamil nadu":       ZoneSouthIndia,
	"andhra pradesh":   ZoneSouthIndia,
	"telangana":        ZoneSouthIndia,
	"kerala":           ZoneSouthIndia,
}

// Normalize lowercases and collapses whitespace in a crop/state/region name.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

// IsSupported reports whether the crop is known to the service.
func IsSupported(crop Crop) bool {
	return supportedCrops[Crop(Normalize(string(crop)))]
}

// SupportedCrops returns the sorted list of supported crop names.
func SupportedCrops() []string {
	out := make([]string, 0, len(supportedCrops))
	for c := range supportedCrops {
		out = append(out, string(c))
	}
	sort.Strings(out)
	return out
}

// ErrUnknownCrop is returned for crops outside the supported set.
type ErrUnknownCrop struct {
	Crop string
}

func (e *ErrUnknownCrop) Error() string {
	return fmt.Sprintf("unknown crop %q (supported: %s)", e.Crop, strings.Join(SupportedCrops(), ", "))
}

// ZoneForState returns the agro-climatic zone for a state, or "" when the
// state is not mapped. An empty zone skips the zonal fallback rung during
// variety selection; the global default still applies.
func ZoneForState(state string) string {
	return stateZones[Normalize(state)]
}

// Season identifies the cropping season.
type Season string

const (
	SeasonKharif Season = "kharif" // monsoon sowing, Jun-Sep
	SeasonRabi   Season = "rabi"   // winter sowing, Oct-Jan
	SeasonZaid   Season = "zaid"   // summer sowing, Feb-May
)

// SeasonForSowing derives the cropping season from a sowing date.
func SeasonForSowing(sowing time.Time) Season {
	switch sowing.Month() {
	case time.June, time.July, time.August, time.September:
		return SeasonKharif
	case time.October, time.November, time.December, time.January:
		return SeasonRabi
	default:
		return SeasonZaid
	}
}
