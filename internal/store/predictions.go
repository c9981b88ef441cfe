package store

import (
	"fmt"
	"time"

	"cropcast/internal/logging"
)

// PredictionRecord is one row of the prediction log.
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

// InsertPrediction appends one request/response pair to the log.
func (s *LocalStore) InsertPrediction(rec PredictionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO predictions
			(request_id, crop, state, district, variety, selection_method,
			 yield_t_ha, yield_lower, yield_upper, area_ha, data_source, model_kind, latency_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RequestID, rec.Crop, rec.State, rec.District, rec.Variety, rec.SelectionMethod,
		rec.YieldTPerHa, rec.YieldLower, rec.YieldUpper, rec.AreaHa, rec.DataSource, rec.ModelKind, rec.LatencyMs)
	if err != nil {
		return fmt.Errorf("failed to insert prediction: %w", err)
	}
	logging.StoreDebug("logged prediction %s (%s/%s)", rec.RequestID, rec.Crop, rec.State)
	return nil
}

// RecentPredictions returns the newest entries of the prediction log.
func (s *LocalStore) RecentPredictions(limit int) ([]PredictionRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, request_id, crop, state, district, variety, selection_method,
		       yield_t_ha, yield_lower, yield_upper, area_ha, data_source, model_kind, latency_ms, created_at
		FROM predictions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var out []PredictionRecord
	for rows.Next() {
		var rec PredictionRecord
		if err := rows.Scan(&rec.ID, &rec.RequestID, &rec.Crop, &rec.State, &rec.District,
			&rec.Variety, &rec.SelectionMethod, &rec.YieldTPerHa, &rec.YieldLower, &rec.YieldUpper,
			&rec.AreaHa, &rec.DataSource, &rec.ModelKind, &rec.LatencyMs, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan prediction row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CropStats summarizes logged predictions for one crop.
type CropStats struct {
	Crop       string  `json:"crop"`
	Count      int64   `json:"count"`
	MeanYield  float64 `json:"mean_yield_t_ha"`
	MinYield   float64 `json:"min_yield_t_ha"`
	MaxYield   float64 `json:"max_yield_t_ha"`
	MeanLatMs float64 `json:"mean_latency_ms"`
}

// PredictionStats aggregates the log per crop.
func (s *LocalStore) PredictionStats() ([]CropStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT crop, COUNT(*), AVG(yield_t_ha), MIN(yield_t_ha), MAX(yield_t_ha), AVG(latency_ms)
		FROM predictions GROUP BY crop ORDER BY crop`)
	if err != nil {
		return nil, fmt.Errorf("failed to query prediction stats: %w", err)
	}
	defer rows.Close()

	var out []CropStats
	for rows.Next() {
		var st CropStats
		if err := rows.Scan(&st.Crop, &st.Count, &st.MeanYield, &st.MinYield, &st.MaxYield, &st.MeanLatMs); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
