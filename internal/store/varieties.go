package store

import (
	"fmt"

	"cropcast/internal/agro"
	"cropcast/internal/logging"
	"cropcast/internal/variety"
)

// SeedVarieties inserts the built-in catalog if the varieties table is
// empty. Idempotent: an already-populated catalog is left alone so operator
// edits survive restarts.
func (s *LocalStore) SeedVarieties(seed []variety.Variety) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM varieties").Scan(&count); err != nil {
		return fmt.Errorf("failed to count varieties: %w", err)
	}
	if count > 0 {
		logging.StoreDebug("variety catalog already populated (%d rows), skipping seed", count)
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO varieties (name, crop, region, zone, maturity_days, yield_potential, recommended, is_default)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare seed insert: %w", err)
	}
	defer stmt.Close()

	for _, v := range seed {
		if _, err := stmt.Exec(
			v.Name, string(v.Crop), v.Region, v.Zone,
			v.MaturityDays, v.YieldPotential, boolInt(v.Recommended), boolInt(v.Default),
		); err != nil {
			return fmt.Errorf("failed to seed variety %s: %w", v.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}
	logging.Store("Seeded variety catalog with %d registrations", len(seed))
	return nil
}

// LoadVarieties returns the full catalog for the in-memory selector.
func (s *LocalStore) LoadVarieties() ([]variety.Variety, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT name, crop, region, zone, maturity_days, yield_potential, recommended, is_default
		FROM varieties ORDER BY crop, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query varieties: %w", err)
	}
	defer rows.Close()

	var out []variety.Variety
	for rows.Next() {
		var v variety.Variety
		var crop string
		var recommended, isDefault int
		if err := rows.Scan(&v.Name, &crop, &v.Region, &v.Zone, &v.MaturityDays, &v.YieldPotential, &recommended, &isDefault); err != nil {
			return nil, fmt.Errorf("failed to scan variety row: %w", err)
		}
		v.Crop = agro.Crop(crop)
		v.Recommended = recommended != 0
		v.Default = isDefault != 0
		out = append(out, v)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
