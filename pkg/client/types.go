package client

import "time"

// PredictRequest mirrors POST /api/v1/predict.
type PredictRequest struct {
	Crop        string               `json:"crop"`
	State       string               `json:"state"`
	District    string               `json:"district,omitempty"`
	SowingDate  string               `json:"sowing_date"`
	AreaHa      float64              `json:"area_ha"`
	Variety     string               `json:"variety,omitempty"`
	Environment *EnvironmentOverride `json:"environment,omitempty"`
}

// EnvironmentOverride carries caller-supplied environmental inputs.
type EnvironmentOverride struct {
	NDVI       *float64 `json:"ndvi,omitempty"`
	RainfallMM *float64 `json:"rainfall_mm,omitempty"`
}

// Variety is one catalog registration.
type Variety struct {
	Name           string  `json:"name"`
	Crop           string  `json:"crop"`
	Region         string  `json:"region,omitempty"`
	Zone           string  `json:"zone,omitempty"`
	MaturityDays   int     `json:"maturity_days"`
	YieldPotential float64 `json:"yield_potential_t_ha"`
	Recommended    bool    `json:"recommended"`
	Default        bool    `json:"default"`
}

// Selection explains how a variety was chosen.
type Selection struct {
	Variety      Variety  `json:"variety"`
	Method       string   `json:"method"` // user_specified, regional_match, zonal_fallback, global_default
	Reason       string   `json:"reason"`
	Alternatives []string `json:"alternatives,omitempty"`
}

// Interval is the prediction uncertainty band.
type Interval struct {
	Lower           float64 `json:"lower_t_ha"`
	Upper           float64 `json:"upper_t_ha"`
	ConfidenceLevel float64 `json:"confidence_level"`
}

// EnvironmentBlock reports environmental inputs and their sources.
type EnvironmentBlock struct {
	NDVI           float64 `json:"ndvi"`
	NDVISource     string  `json:"ndvi_source"`
	RainfallMM     float64 `json:"rainfall_mm"`
	RainfallSource string  `json:"rainfall_source"`
}

// ModelBlock reports which engine served the prediction.
type ModelBlock struct {
	Kind           string `json:"kind"`
	State          string `json:"state"`
	FallbackReason string `json:"fallback_reason,omitempty"`
	Library        string `json:"library,omitempty"`
	FormatVersion  int    `json:"format_version,omitempty"`
}

// PredictResponse mirrors the prediction reply.
type PredictResponse struct {
	PredictionID string           `json:"prediction_id"`
	Crop         string           `json:"crop"`
	State        string           `json:"state"`
	District     string           `json:"district,omitempty"`
	Season       string           `json:"season"`
	YieldTPerHa  float64          `json:"yield_t_ha"`
	ProductionT  float64          `json:"production_t"`
	Interval     Interval         `json:"interval"`
	Variety      Selection        `json:"variety_selection"`
	Environment  EnvironmentBlock `json:"environment"`
	Model        ModelBlock       `json:"model"`
	LatencyMs    int64            `json:"latency_ms"`
	CreatedAt    time.Time        `json:"created_at"`
}

// VarietiesResponse mirrors GET /api/v1/varieties.
type VarietiesResponse struct {
	Crop          string     `json:"crop"`
	State         string     `json:"state,omitempty"`
	Varieties     []Variety  `json:"varieties"`
	AutoSelection *Selection `json:"auto_selection,omitempty"`
}

// CropStatus is one entry of GET /api/v1/crops.
type CropStatus struct {
	Crop        string  `json:"crop"`
	ModelState  string  `json:"model_state"`
	ModelKind   string  `json:"model_kind"`
	Reason      string  `json:"reason,omitempty"`
	Predictions int64   `json:"predictions"`
	MeanYield   float64 `json:"mean_yield_t_ha,omitempty"`
}

// ModelEvent is one entry of the model load/fallback audit trail.
type ModelEvent struct {
	ID        int64     `json:"id"`
	Crop      string    `json:"crop"`
	Event     string    `json:"event"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ModelStatus is one per-crop entry of the health snapshot.
type ModelStatus struct {
	Crop          string    `json:"crop"`
	State         string    `json:"state"`
	Kind          string    `json:"kind"`
	Reason        string    `json:"reason,omitempty"`
	Library       string    `json:"library,omitempty"`
	FormatVersion int       `json:"format_version,omitempty"`
	TrainedAt     time.Time `json:"trained_at,omitempty"`
	LoadedAt      time.Time `json:"loaded_at"`
}

// HealthSnapshot mirrors GET /health.
type HealthSnapshot struct {
	Status        string        `json:"status"`
	Version       string        `json:"version"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	FallbackMode  bool          `json:"fallback_mode"`
	Models        []ModelStatus `json:"models"`
	GEE           struct {
		Enabled   bool   `json:"enabled"`
		Reachable bool   `json:"reachable"`
		Error     string `json:"error,omitempty"`
	} `json:"gee"`
	Store struct {
		OK    bool   `json:"ok"`
		Error string `json:"error,omitempty"`
	} `json:"store"`
	CheckedAt time.Time `json:"checked_at"`
}

// PredictionRecord is one entry of the prediction log.
type PredictionRecord struct {
	ID              int64     `json:"id"`
	RequestID       string    `json:"request_id"`
	Crop            string    `json:"crop"`
	State           string    `json:"state"`
	District        string    `json:"district,omitempty"`
	Variety         string    `json:"variety"`
	SelectionMethod string    `json:"selection_method"`
	YieldTPerHa     float64   `json:"yield_t_ha"`
	YieldLower      float64   `json:"yield_lower"`
	YieldUpper      float64   `json:"yield_upper"`
	AreaHa          float64   `json:"area_ha"`
	DataSource      string    `json:"data_source"`
	ModelKind       string    `json:"model_kind"`
	LatencyMs       int64     `json:"latency_ms"`
	CreatedAt       time.Time `json:"created_at"`
}
