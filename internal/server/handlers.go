package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cropcast/internal/agro"
	"cropcast/internal/gee"
	"cropcast/internal/health"
	"cropcast/internal/logging"
	"cropcast/internal/model"
	"cropcast/internal/store"
	"cropcast/internal/variety"
)

// maxAreaHa bounds a single prediction request.
const maxAreaHa = 10000

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqID := RequestID(r.Context())
	rlog := logging.WithRequestID(logging.CategoryAPI, reqID)

	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest,
			"request body is not valid JSON", map[string]string{"decode": err.Error()})
		return
	}

	sowing, fieldErrs := req.validate()
	if len(fieldErrs) > 0 {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest,
			"request validation failed", fieldErrs)
		return
	}

	crop := agro.Crop(agro.Normalize(req.Crop))

	sel, err := s.selector.Select(crop, req.State, req.Variety)
	if err != nil {
		var unknownCrop *agro.ErrUnknownCrop
		var unknownVariety *variety.ErrUnknownVariety
		switch {
		case errors.As(err, &unknownCrop):
			writeError(w, http.StatusBadRequest, CodeUnknownCrop, err.Error(),
				map[string]interface{}{"supported_crops": agro.SupportedCrops()})
		case errors.As(err, &unknownVariety):
			writeError(w, http.StatusBadRequest, CodeUnknownVariety, err.Error(),
				map[string]interface{}{"valid_varieties": unknownVariety.Valid})
		default:
			rlog.Error("variety selection failed: %v", err)
			writeError(w, http.StatusInternalServerError, CodeInternal, "variety selection failed", nil)
		}
		return
	}

	env := s.resolveEnvironment(r, &req, sowing)

	engine, status, err := s.registry.Engine(crop)
	if err != nil {
		// Selection already validated the crop; a miss here means the
		// registry and catalog disagree.
		rlog.Error("no engine for validated crop %s: %v", crop, err)
		writeError(w, http.StatusInternalServerError, CodeInternal, "no model available for crop", nil)
		return
	}

	pred := engine.Predict(model.Features{
		NDVI:       env.NDVI,
		RainfallMM: env.RainfallMM,
		SowingDOY:  float64(sowing.YearDay()),
		AreaHa:     req.AreaHa,
	})

	latency := time.Since(start).Milliseconds()
	resp := PredictResponse{
		PredictionID: reqID,
		Crop:         string(crop),
		State:        req.State,
		District:     req.District,
		Season:       string(agro.SeasonForSowing(sowing)),
		YieldTPerHa:  round2(pred.YieldTPerHa),
		ProductionT:  round2(pred.YieldTPerHa * req.AreaHa),
		Interval: Interval{
			Lower:           round2(pred.Lower),
			Upper:           round2(pred.Upper),
			ConfidenceLevel: s.confidence,
		},
		Variety:     *sel,
		Environment: env,
		Model: ModelBlock{
			Kind:           status.Kind,
			State:          string(status.State),
			FallbackReason: status.Reason,
			Library:        status.Library,
			FormatVersion:  status.FormatVersion,
		},
		LatencyMs: latency,
		CreatedAt: time.Now(),
	}

	// Log to the store best-effort; a full disk should not fail predictions.
	if err := s.store.InsertPrediction(store.PredictionRecord{
		RequestID:       reqID,
		Crop:            string(crop),
		State:           req.State,
		District:        req.District,
		Variety:         sel.Variety.Name,
		SelectionMethod: string(sel.Method),
		YieldTPerHa:     resp.YieldTPerHa,
		YieldLower:      resp.Interval.Lower,
		YieldUpper:      resp.Interval.Upper,
		AreaHa:          req.AreaHa,
		DataSource:      env.NDVISource,
		ModelKind:       status.Kind,
		LatencyMs:       latency,
	}); err != nil {
		rlog.Warn("failed to log prediction: %v", err)
	}

	writeJSON(w, http.StatusOK, resp)
}

// validate checks field constraints and parses the sowing date.
func (req *PredictRequest) validate() (time.Time, map[string]string) {
	errs := make(map[string]string)

	if strings.TrimSpace(req.Crop) == "" {
		errs["crop"] = "crop is required"
	}
	if strings.TrimSpace(req.State) == "" {
		errs["state"] = "state is required"
	}
	if req.AreaHa <= 0 {
		errs["area_ha"] = "area_ha must be positive"
	} else if req.AreaHa > maxAreaHa {
		errs["area_ha"] = fmt.Sprintf("area_ha must not exceed %d", maxAreaHa)
	}

	var sowing time.Time
	if req.SowingDate == "" {
		errs["sowing_date"] = "sowing_date is required"
	} else {
		var err error
		sowing, err = time.Parse("2006-01-02", req.SowingDate)
		if err != nil {
			errs["sowing_date"] = "sowing_date must be YYYY-MM-DD"
		}
	}

	if req.Environment != nil {
		if req.Environment.NDVI != nil && (*req.Environment.NDVI < 0 || *req.Environment.NDVI > 1) {
			errs["environment.ndvi"] = "ndvi must be within [0, 1]"
		}
		if req.Environment.RainfallMM != nil && (*req.Environment.RainfallMM < 0 || *req.Environment.RainfallMM > 10000) {
			errs["environment.rainfall_mm"] = "rainfall_mm must be within [0, 10000]"
		}
	}

	if len(errs) > 0 {
		return time.Time{}, errs
	}
	return sowing, nil
}

// resolveEnvironment merges caller overrides over fetched seasonal data.
func (s *Server) resolveEnvironment(r *http.Request, req *PredictRequest, sowing time.Time) EnvironmentBlock {
	needFetch := req.Environment == nil || req.Environment.NDVI == nil || req.Environment.RainfallMM == nil

	var data gee.SeasonData
	if needFetch {
		data = s.satellite.SeasonData(r.Context(), req.State, sowing)
	}

	env := EnvironmentBlock{
		NDVI:           data.NDVI,
		NDVISource:     data.Source,
		RainfallMM:     data.RainfallMM,
		RainfallSource: data.Source,
	}
	if req.Environment != nil {
		if req.Environment.NDVI != nil {
			env.NDVI = *req.Environment.NDVI
			env.NDVISource = gee.SourceOverride
		}
		if req.Environment.RainfallMM != nil {
			env.RainfallMM = *req.Environment.RainfallMM
			env.RainfallSource = gee.SourceOverride
		}
	}
	return env
}

func (s *Server) handleVarieties(w http.ResponseWriter, r *http.Request) {
	cropParam := r.URL.Query().Get("crop")
	state := r.URL.Query().Get("state")

	if cropParam == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest,
			"crop query parameter is required", nil)
		return
	}
	crop := agro.Crop(agro.Normalize(cropParam))
	if !agro.IsSupported(crop) {
		writeError(w, http.StatusBadRequest, CodeUnknownCrop,
			(&agro.ErrUnknownCrop{Crop: cropParam}).Error(),
			map[string]interface{}{"supported_crops": agro.SupportedCrops()})
		return
	}

	resp := VarietiesResponse{
		Crop:      string(crop),
		State:     state,
		Varieties: s.selector.ForCrop(crop, state),
	}
	if sel, err := s.selector.Select(crop, state, ""); err == nil {
		resp.AutoSelection = sel
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCrops(w http.ResponseWriter, r *http.Request) {
	// Usage counters are best-effort; the model states still answer when the
	// log cannot be aggregated.
	usage := make(map[string]store.CropStats)
	if stats, err := s.store.PredictionStats(); err != nil {
		logging.Get(logging.CategoryAPI).Warn("failed to aggregate prediction log: %v", err)
	} else {
		for _, st := range stats {
			usage[st.Crop] = st
		}
	}

	statuses := s.registry.Statuses()
	out := make([]CropStatus, 0, len(statuses))
	for _, st := range statuses {
		cs := CropStatus{
			Crop:       string(st.Crop),
			ModelState: string(st.State),
			ModelKind:  st.Kind,
			Reason:     st.Reason,
		}
		if u, ok := usage[cs.Crop]; ok {
			cs.Predictions = u.Count
			cs.MeanYield = round2(u.MeanYield)
		}
		out = append(out, cs)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"crops": out})
}

func (s *Server) handleModelEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, CodeInvalidRequest,
				"limit must be a positive integer", nil)
			return
		}
		limit = parsed
	}

	events, err := s.store.RecentModelEvents(limit)
	if err != nil {
		logging.Get(logging.CategoryAPI).Error("failed to read model audit trail: %v", err)
		writeError(w, http.StatusInternalServerError, CodeInternal,
			"failed to read model audit trail", nil)
		return
	}
	if events == nil {
		events = []store.ModelEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, CodeInvalidRequest,
				"limit must be a positive integer", nil)
			return
		}
		limit = parsed
	}

	records, err := s.store.RecentPredictions(limit)
	if err != nil {
		logging.Get(logging.CategoryAPI).Error("failed to read prediction log: %v", err)
		writeError(w, http.StatusInternalServerError, CodeInternal,
			"failed to read prediction log", nil)
		return
	}
	if records == nil {
		records = []store.PredictionRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"predictions": records})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.checker.Snapshot(r.Context())

	status := http.StatusOK
	if snap.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, snap)
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
