package model

import "cropcast/internal/agro"

// Features are the environmental and field inputs a yield model consumes.
// Engines pick the subset their artifact schema names.
type Features struct {
	NDVI       float64 // peak-season vegetation index, 0..1
	RainfallMM float64 // seasonal cumulative rainfall
	SowingDOY  float64 // sowing day of year, 1..366
	AreaHa     float64 // field area in hectares
}

// vector assembles the feature values in artifact schema order.
func (f Features) vector(schema []string) []float64 {
	out := make([]float64, len(schema))
	for i, name := range schema {
		switch name {
		case "ndvi":
			out[i] = f.NDVI
		case "rainfall_mm":
			out[i] = f.RainfallMM
		case "sowing_doy":
			out[i] = f.SowingDOY
		case "area_ha":
			out[i] = f.AreaHa
		}
	}
	return out
}

// Prediction is a point yield estimate with an uncertainty band.
type Prediction struct {
	YieldTPerHa float64 // tonnes per hectare
	Lower       float64
	Upper       float64
}

// Engine generates yield predictions for one crop. An artifact is compiled
// into an engine once at load time; the parsed artifact can then be
// discarded.
type Engine interface {
	Crop() agro.Crop

	// Kind is gbt_ensemble, linear, or baseline.
	Kind() string

	Predict(f Features) Prediction
}

// clampYield keeps predictions in a physically plausible band.
func clampYield(p Prediction) Prediction {
	clamp := func(v float64) float64 {
		if v < 0 {
			return 0
		}
		if v > 25 {
			return 25
		}
		return v
	}
	p.YieldTPerHa = clamp(p.YieldTPerHa)
	p.Lower = clamp(p.Lower)
	p.Upper = clamp(p.Upper)
	if p.Lower > p.YieldTPerHa {
		p.Lower = p.YieldTPerHa
	}
	if p.Upper < p.YieldTPerHa {
		p.Upper = p.YieldTPerHa
	}
	return p
}
