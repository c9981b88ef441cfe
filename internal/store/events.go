package store

import (
	"fmt"
	"time"
)

// ModelEvent is one row of the model load/fallback audit trail.
type ModelEvent struct {
	ID        int64     `json:"id"`
	Crop      string    `json:"crop"`
	Event     string    `json:"event"` // loaded, fallback, reload
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordModelEvent appends to the model audit trail. Satisfies
// model.EventRecorder.
func (s *LocalStore) RecordModelEvent(crop, event, detail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT INTO model_events (crop, event, detail) VALUES (?, ?, ?)",
		crop, event, detail)
	if err != nil {
		return fmt.Errorf("failed to record model event: %w", err)
	}
	return nil
}

// RecentModelEvents returns the newest audit entries.
func (s *LocalStore) RecentModelEvents(limit int) ([]ModelEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		"SELECT id, crop, event, detail, created_at FROM model_events ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query model events: %w", err)
	}
	defer rows.Close()

	var out []ModelEvent
	for rows.Next() {
		var ev ModelEvent
		if err := rows.Scan(&ev.ID, &ev.Crop, &ev.Event, &ev.Detail, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan model event row: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
