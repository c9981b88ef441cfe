package store

import (
	"database/sql"
	"fmt"

	"cropcast/internal/logging"
)

// Schema versions:
// v1: varieties, predictions, model_events
// v2: predictions gained district and latency_ms
const CurrentSchemaVersion = 2

// Migration defines a column addition for databases created before the
// column existed. CREATE TABLE IF NOT EXISTS does not add columns to
// existing tables, so these run on every boot.
type Migration struct {
	Table  string
	Column string
	Def    string
}

var pendingMigrations = []Migration{
	{"predictions", "district", "TEXT NOT NULL DEFAULT ''"},
	{"predictions", "latency_ms", "INTEGER NOT NULL DEFAULT 0"},
}

// RunMigrations applies schema migrations for existing databases.
func RunMigrations(db *sql.DB) error {
	timer := logging.StartTimer(logging.CategoryStore, "RunMigrations")
	defer timer.Stop()

	applied := 0
	for _, m := range pendingMigrations {
		if !tableExists(db, m.Table) {
			continue
		}
		if columnExists(db, m.Table, m.Column) {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.Table, m.Column, m.Def)
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %s.%s failed: %w", m.Table, m.Column, err)
		}
		logging.Store("Applied migration: %s.%s", m.Table, m.Column)
		applied++
	}

	if applied > 0 {
		logging.Store("Schema migrations complete (%d applied)", applied)
	}
	return nil
}

func tableExists(db *sql.DB, table string) bool {
	var name string
	err := db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
	).Scan(&name)
	return err == nil
}

func columnExists(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			continue
		}
		if name == column {
			return true
		}
	}
	return false
}
