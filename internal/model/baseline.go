package model

import (
	"math"

	"cropcast/internal/agro"
)

// baselineParams are the built-in agronomic constants used when no trained
// artifact can be served for a crop. Derived from published state-level
// yield averages, deliberately conservative.
type baselineParams struct {
	baseYield   float64 // t/ha at reference conditions
	ndviSlope   float64 // yield response per unit NDVI above reference
	ndviRef     float64
	rainOptMM   float64 // rainfall optimum for the season
	rainPenalty float64 // relative penalty per 100mm deviation
	sowingOpt   float64 // optimal sowing day of year
	sowingCost  float64 // relative penalty per 30 days off-optimum
}

var baselines = map[agro.Crop]baselineParams{
	agro.CropWheat:   {baseYield: 3.2, ndviSlope: 4.5, ndviRef: 0.55, rainOptMM: 300, rainPenalty: 0.04, sowingOpt: 315, sowingCost: 0.08},
	agro.CropRice:    {baseYield: 2.8, ndviSlope: 4.0, ndviRef: 0.60, rainOptMM: 900, rainPenalty: 0.03, sowingOpt: 180, sowingCost: 0.06},
	agro.CropMaize:   {baseYield: 2.5, ndviSlope: 3.5, ndviRef: 0.55, rainOptMM: 600, rainPenalty: 0.03, sowingOpt: 170, sowingCost: 0.05},
	agro.CropMustard: {baseYield: 1.3, ndviSlope: 2.0, ndviRef: 0.45, rainOptMM: 250, rainPenalty: 0.05, sowingOpt: 295, sowingCost: 0.07},
	agro.CropPotato:  {baseYield: 22.0, ndviSlope: 10.0, ndviRef: 0.60, rainOptMM: 350, rainPenalty: 0.04, sowingOpt: 300, sowingCost: 0.10},
}

// baselineEngine is the simplified fallback model for one crop.
type baselineEngine struct {
	crop    agro.Crop
	params  baselineParams
	relBand float64
}

// newBaseline returns the built-in fallback engine for a crop.
// Every supported crop has baseline parameters; this cannot fail.
func newBaseline(crop agro.Crop, relBand float64) *baselineEngine {
	return &baselineEngine{
		crop:    agro.Crop(agro.Normalize(string(crop))),
		params:  baselines[agro.Crop(agro.Normalize(string(crop)))],
		relBand: relBand,
	}
}

func (e *baselineEngine) Crop() agro.Crop { return e.crop }
func (e *baselineEngine) Kind() string    { return KindBaseline }

func (e *baselineEngine) Predict(f Features) Prediction {
	p := e.params

	yield := p.baseYield + p.ndviSlope*(f.NDVI-p.ndviRef)

	// Rainfall deviation from the optimum costs yield either way.
	rainDev := math.Abs(f.RainfallMM-p.rainOptMM) / 100.0
	yield *= math.Max(0.4, 1.0-p.rainPenalty*rainDev)

	// Sowing-window deviation, wrapped around the year boundary.
	sowDev := math.Abs(f.SowingDOY - p.sowingOpt)
	if sowDev > 183 {
		sowDev = 366 - sowDev
	}
	yield *= math.Max(0.5, 1.0-p.sowingCost*(sowDev/30.0))

	half := yield * e.relBand
	return clampYield(Prediction{
		YieldTPerHa: yield,
		Lower:       yield - half,
		Upper:       yield + half,
	})
}
