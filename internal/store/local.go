// Package store provides SQLite persistence for cropcast: the variety
// catalog, the prediction log, and the model load/fallback audit trail.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"cropcast/internal/logging"
)

// LocalStore wraps the SQLite database. A single writer connection with WAL
// keeps concurrent prediction logging cheap without a queue.
type LocalStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// NewLocalStore initializes the SQLite database at the given path.
// ":memory:" is supported for tests.
func NewLocalStore(path string) (*LocalStore, error) {
	timer := logging.StartTimer(logging.CategoryStore, "NewLocalStore")
	defer timer.Stop()

	logging.Store("Initializing LocalStore at path: %s", path)

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}
	// synchronous=NORMAL is safe under WAL and much faster than FULL.
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite synchronous=NORMAL: %v", err)
	}

	store := &LocalStore{db: db, dbPath: path}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logging.Store("LocalStore initialization complete")
	return store, nil
}

// initialize creates the required tables.
func (s *LocalStore) initialize() error {
	varietiesTable := `
	CREATE TABLE IF NOT EXISTS varieties (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		crop TEXT NOT NULL,
		region TEXT NOT NULL DEFAULT '',
		zone TEXT NOT NULL DEFAULT '',
		maturity_days INTEGER NOT NULL DEFAULT 0,
		yield_potential REAL NOT NULL DEFAULT 0,
		recommended INTEGER NOT NULL DEFAULT 0,
		is_default INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(name, crop, region, zone, is_default)
	);
	CREATE INDEX IF NOT EXISTS idx_varieties_crop ON varieties(crop);
	CREATE INDEX IF NOT EXISTS idx_varieties_region ON varieties(crop, region);
	`

	predictionsTable := `
	CREATE TABLE IF NOT EXISTS predictions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id TEXT NOT NULL,
		crop TEXT NOT NULL,
		state TEXT NOT NULL,
		district TEXT NOT NULL DEFAULT '',
		variety TEXT NOT NULL,
		selection_method TEXT NOT NULL,
		yield_t_ha REAL NOT NULL,
		yield_lower REAL NOT NULL,
		yield_upper REAL NOT NULL,
		area_ha REAL NOT NULL,
		data_source TEXT NOT NULL,
		model_kind TEXT NOT NULL,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_predictions_crop ON predictions(crop);
	CREATE INDEX IF NOT EXISTS idx_predictions_created ON predictions(created_at);
	`

	eventsTable := `
	CREATE TABLE IF NOT EXISTS model_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		crop TEXT NOT NULL,
		event TEXT NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_model_events_crop ON model_events(crop);
	`

	for _, ddl := range []string{varietiesTable, predictionsTable, eventsTable} {
		if _, err := s.db.Exec(ddl); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *LocalStore) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable (used by health checks).
func (s *LocalStore) Ping() error {
	return s.db.Ping()
}
