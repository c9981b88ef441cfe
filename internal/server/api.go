package server

import (
	"time"

	"cropcast/internal/variety"
)

// PredictRequest is the POST /api/v1/predict body.
type PredictRequest struct {
	Crop       string  `json:"crop"`
	State      string  `json:"state"`
	District   string  `json:"district,omitempty"`
	SowingDate string  `json:"sowing_date"` // YYYY-MM-DD
	AreaHa     float64 `json:"area_ha"`
	Variety    string  `json:"variety,omitempty"`

	// Optional caller-supplied environmental overrides. When set, the
	// satellite integration is bypassed for that field and its data source
	// is reported as "override".
	Environment *EnvironmentOverride `json:"environment,omitempty"`
}

// EnvironmentOverride carries caller-supplied environmental inputs.
type EnvironmentOverride struct {
	NDVI       *float64 `json:"ndvi,omitempty"`
	RainfallMM *float64 `json:"rainfall_mm,omitempty"`
}

// Interval is the prediction uncertainty band.
type Interval struct {
	Lower           float64 `json:"lower_t_ha"`
	Upper           float64 `json:"upper_t_ha"`
	ConfidenceLevel float64 `json:"confidence_level"`
}

// EnvironmentBlock reports the environmental inputs used and where each
// came from (gee, climatology, or override).
type EnvironmentBlock struct {
	NDVI           float64 `json:"ndvi"`
	NDVISource     string  `json:"ndvi_source"`
	RainfallMM     float64 `json:"rainfall_mm"`
	RainfallSource string  `json:"rainfall_source"`
}

// ModelBlock reports which engine served the prediction.
type ModelBlock struct {
	Kind           string `json:"kind"`
	State          string `json:"state"` // loaded | fallback
	FallbackReason string `json:"fallback_reason,omitempty"`
	Library        string `json:"library,omitempty"`
	FormatVersion  int    `json:"format_version,omitempty"`
}

// PredictResponse is the POST /api/v1/predict reply.
type PredictResponse struct {
	PredictionID string            `json:"prediction_id"`
	Crop         string            `json:"crop"`
	State        string            `json:"state"`
	District     string            `json:"district,omitempty"`
	Season       string            `json:"season"`
	YieldTPerHa  float64           `json:"yield_t_ha"`
	ProductionT  float64           `json:"production_t"`
	Interval     Interval          `json:"interval"`
	Variety      variety.Selection `json:"variety_selection"`
	Environment  EnvironmentBlock  `json:"environment"`
	Model        ModelBlock        `json:"model"`
	LatencyMs    int64             `json:"latency_ms"`
	CreatedAt    time.Time         `json:"created_at"`
}

// VarietiesResponse is the GET /api/v1/varieties reply.
type VarietiesResponse struct {
	Crop          string             `json:"crop"`
	State         string             `json:"state,omitempty"`
	Varieties     []variety.Variety  `json:"varieties"`
	AutoSelection *variety.Selection `json:"auto_selection,omitempty"`
}

// CropStatus is one entry of the GET /api/v1/crops reply. The usage fields
// aggregate the prediction log for the crop.
type CropStatus struct {
	Crop        string  `json:"crop"`
	ModelState  string  `json:"model_state"`
	ModelKind   string  `json:"model_kind"`
	Reason      string  `json:"reason,omitempty"`
	Predictions int64   `json:"predictions"`
	MeanYield   float64 `json:"mean_yield_t_ha,omitempty"`
}
