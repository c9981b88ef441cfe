// Package variety implements the variety catalog and the auto-selection
// ladder: regional registration, then the agro-climatic zone, then the
// crop's global default.
package variety

import (
	"cropcast/internal/agro"
)

// Variety is one catalog registration. A row is scoped to a state (Region),
// to a zone, or marked as the crop's global default.
type Variety struct {
	Name           string    `json:"name"`
	Crop           agro.Crop `json:"crop"`
	Region         string    `json:"region,omitempty"` // state-level registration
	Zone           string    `json:"zone,omitempty"`   // zonal registration, e.g. "All North India"
	MaturityDays   int       `json:"maturity_days"`
	YieldPotential float64   `json:"yield_potential_t_ha"`
	Recommended    bool      `json:"recommended"`
	Default        bool      `json:"default"` // global default for the crop
}

// SeedCatalog is the built-in registration set used to populate the store on
// first boot. Yield potentials are release-notification values, t/ha.
func SeedCatalog() []Variety {
	return []Variety{
		// Wheat
		{Name: "HD-2967", Crop: agro.CropWheat, Region: "punjab", MaturityDays: 150, YieldPotential: 5.0, Recommended: true},
		{Name: "PBW-725", Crop: agro.CropWheat, Region: "punjab", MaturityDays: 155, YieldPotential: 5.2, Recommended: true},
		{Name: "PBW-343", Crop: agro.CropWheat, Region: "punjab", MaturityDays: 155, YieldPotential: 4.8},
		{Name: "WH-1105", Crop: agro.CropWheat, Region: "haryana", MaturityDays: 152, YieldPotential: 5.1, Recommended: true},
		{Name: "DBW-17", Crop: agro.CropWheat, Region: "haryana", MaturityDays: 148, YieldPotential: 4.7},
		{Name: "HD-3086", Crop: agro.CropWheat, Region: "uttar pradesh", MaturityDays: 145, YieldPotential: 5.0, Recommended: true},
		{Name: "DBW-187", Crop: agro.CropWheat, Zone: agro.ZoneNorthIndia, MaturityDays: 150, YieldPotential: 5.4, Recommended: true},
		{Name: "HD-2733", Crop: agro.CropWheat, Zone: agro.ZoneEastIndia, MaturityDays: 140, YieldPotential: 4.5, Recommended: true},
		{Name: "GW-322", Crop: agro.CropWheat, Zone: agro.ZoneWestIndia, MaturityDays: 145, YieldPotential: 4.4, Recommended: true},
		{Name: "HD-2967", Crop: agro.CropWheat, Default: true, MaturityDays: 150, YieldPotential: 5.0},

		// Rice
		{Name: "PR-126", Crop: agro.CropRice, Region: "punjab", MaturityDays: 123, YieldPotential: 7.0, Recommended: true},
		{Name: "Pusa Basmati-1121", Crop: agro.CropRice, Region: "punjab", MaturityDays: 145, YieldPotential: 4.5},
		{Name: "Pusa-44", Crop: agro.CropRice, Region: "punjab", MaturityDays: 160, YieldPotential: 7.2},
		{Name: "CSR-30", Crop: agro.CropRice, Region: "haryana", MaturityDays: 142, YieldPotential: 4.2, Recommended: true},
		{Name: "Swarna", Crop: agro.CropRice, Region: "west bengal", MaturityDays: 150, YieldPotential: 5.5, Recommended: true},
		{Name: "Pusa Basmati-1509", Crop: agro.CropRice, Zone: agro.ZoneNorthIndia, MaturityDays: 120, YieldPotential: 5.0, Recommended: true},
		{Name: "MTU-7029", Crop: agro.CropRice, Zone: agro.ZoneEastIndia, MaturityDays: 150, YieldPotential: 5.5, Recommended: true},
		{Name: "BPT-5204", Crop: agro.CropRice, Zone: agro.ZoneSouthIndia, MaturityDays: 150, YieldPotential: 5.8, Recommended: true},
		{Name: "PR-126", Crop: agro.CropRice, Default: true, MaturityDays: 123, YieldPotential: 7.0},

		// Maize
		{Name: "PMH-1", Crop: agro.CropMaize, Region: "punjab", MaturityDays: 95, YieldPotential: 5.5, Recommended: true},
		{Name: "HM-4", Crop: agro.CropMaize, Region: "haryana", MaturityDays: 87, YieldPotential: 5.0, Recommended: true},
		{Name: "DHM-117", Crop: agro.CropMaize, Zone: agro.ZoneSouthIndia, MaturityDays: 95, YieldPotential: 6.0, Recommended: true},
		{Name: "Vivek-QPM-9", Crop: agro.CropMaize, Zone: agro.ZoneNorthIndia, MaturityDays: 90, YieldPotential: 4.8, Recommended: true},
		{Name: "PMH-1", Crop: agro.CropMaize, Default: true, MaturityDays: 95, YieldPotential: 5.5},

		// Mustard
		{Name: "RH-749", Crop: agro.CropMustard, Region: "haryana", MaturityDays: 146, YieldPotential: 2.6, Recommended: true},
		{Name: "Pusa Bold", Crop: agro.CropMustard, Region: "rajasthan", MaturityDays: 135, YieldPotential: 2.2, Recommended: true},
		{Name: "RGN-73", Crop: agro.CropMustard, Zone: agro.ZoneNorthIndia, MaturityDays: 140, YieldPotential: 2.4, Recommended: true},
		{Name: "Pusa Bold", Crop: agro.CropMustard, Default: true, MaturityDays: 135, YieldPotential: 2.2},

		// Potato
		{Name: "Kufri Pukhraj", Crop: agro.CropPotato, Region: "punjab", MaturityDays: 90, YieldPotential: 40.0, Recommended: true},
		{Name: "Kufri Jyoti", Crop: agro.CropPotato, Region: "west bengal", MaturityDays: 90, YieldPotential: 30.0, Recommended: true},
		{Name: "Kufri Bahar", Crop: agro.CropPotato, Zone: agro.ZoneNorthIndia, MaturityDays: 100, YieldPotential: 35.0, Recommended: true},
		{Name: "Kufri Jyoti", Crop: agro.CropPotato, Default: true, MaturityDays: 90, YieldPotential: 30.0},
	}
}
