package store

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"cropcast/internal/agro"
	"cropcast/internal/variety"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(":memory:")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewLocalStoreOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "cropcast.db")

	s, err := NewLocalStore(path)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	defer s.Close()

	if err := s.Ping(); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestSeedVarietiesIdempotent(t *testing.T) {
	s := newTestStore(t)
	seed := variety.SeedCatalog()

	if err := s.SeedVarieties(seed); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	loaded, err := s.LoadVarieties()
	if err != nil {
		t.Fatalf("LoadVarieties: %v", err)
	}
	if len(loaded) != len(seed) {
		t.Fatalf("expected %d varieties, got %d", len(seed), len(loaded))
	}

	// A second seed must not duplicate rows.
	if err := s.SeedVarieties(seed); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	loaded, err = s.LoadVarieties()
	if err != nil {
		t.Fatalf("LoadVarieties after reseed: %v", err)
	}
	if len(loaded) != len(seed) {
		t.Fatalf("reseed duplicated rows: expected %d, got %d", len(seed), len(loaded))
	}
}

func TestLoadVarietiesRoundtrip(t *testing.T) {
	s := newTestStore(t)
	if err := s.SeedVarieties(variety.SeedCatalog()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	loaded, err := s.LoadVarieties()
	if err != nil {
		t.Fatalf("LoadVarieties: %v", err)
	}

	var found *variety.Variety
	for i := range loaded {
		v := &loaded[i]
		if v.Name == "PBW-725" && v.Crop == agro.CropWheat {
			found = v
			break
		}
	}
	if found == nil {
		t.Fatal("PBW-725 missing from loaded catalog")
	}

	want := variety.Variety{
		Name:           "PBW-725",
		Crop:           agro.CropWheat,
		Region:         "punjab",
		MaturityDays:   155,
		YieldPotential: 5.2,
		Recommended:    true,
	}
	if diff := cmp.Diff(want, *found); diff != "" {
		t.Errorf("loaded variety mismatch (-want +got):\n%s", diff)
	}
}

func TestPredictionLog(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 3; i++ {
		rec := PredictionRecord{
			RequestID:       fmt.Sprintf("req-%d", i),
			Crop:            "wheat",
			State:           "Punjab",
			Variety:         "PBW-725",
			SelectionMethod: "regional_match",
			YieldTPerHa:     4.0 + float64(i),
			YieldLower:      3.5,
			YieldUpper:      5.5,
			AreaHa:          2.5,
			DataSource:      "climatology",
			ModelKind:       "baseline",
			LatencyMs:       int64(10 + i),
		}
		if err := s.InsertPrediction(rec); err != nil {
			t.Fatalf("InsertPrediction %d: %v", i, err)
		}
	}

	recent, err := s.RecentPredictions(10)
	if err != nil {
		t.Fatalf("RecentPredictions: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recent))
	}
	// Newest first.
	if recent[0].RequestID != "req-2" {
		t.Errorf("expected req-2 first, got %s", recent[0].RequestID)
	}
	if recent[0].YieldTPerHa != 6.0 {
		t.Errorf("expected yield 6.0, got %v", recent[0].YieldTPerHa)
	}
	if recent[0].CreatedAt.IsZero() {
		t.Error("created_at not populated")
	}

	// Limit applies.
	recent, err = s.RecentPredictions(2)
	if err != nil {
		t.Fatalf("RecentPredictions limit: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 records with limit, got %d", len(recent))
	}

	// Out-of-range limits fall back to the default.
	if _, err := s.RecentPredictions(-5); err != nil {
		t.Fatalf("RecentPredictions negative limit: %v", err)
	}
	if _, err := s.RecentPredictions(10000); err != nil {
		t.Fatalf("RecentPredictions huge limit: %v", err)
	}
}

func TestPredictionStats(t *testing.T) {
	s := newTestStore(t)

	inserts := []struct {
		crop  string
		yield float64
	}{
		{"wheat", 4.0},
		{"wheat", 6.0},
		{"rice", 3.0},
	}
	for i, in := range inserts {
		rec := PredictionRecord{
			RequestID: fmt.Sprintf("req-%d", i), Crop: in.crop, State: "Punjab",
			Variety: "X", SelectionMethod: "global_default",
			YieldTPerHa: in.yield, YieldLower: in.yield - 1, YieldUpper: in.yield + 1,
			AreaHa: 1, DataSource: "gee", ModelKind: "gbt_ensemble", LatencyMs: 20,
		}
		if err := s.InsertPrediction(rec); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	stats, err := s.PredictionStats()
	if err != nil {
		t.Fatalf("PredictionStats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 crops in stats, got %d", len(stats))
	}
	// Ordered by crop: rice then wheat.
	if stats[0].Crop != "rice" || stats[0].Count != 1 {
		t.Errorf("unexpected rice stats: %+v", stats[0])
	}
	wheat := stats[1]
	if wheat.Crop != "wheat" || wheat.Count != 2 {
		t.Fatalf("unexpected wheat stats: %+v", wheat)
	}
	if wheat.MeanYield != 5.0 || wheat.MinYield != 4.0 || wheat.MaxYield != 6.0 {
		t.Errorf("wheat yield aggregates wrong: %+v", wheat)
	}
}

func TestModelEventTrail(t *testing.T) {
	s := newTestStore(t)

	if err := s.RecordModelEvent("wheat", "loaded", "gbt_ensemble from wheat.model.json"); err != nil {
		t.Fatalf("RecordModelEvent: %v", err)
	}
	if err := s.RecordModelEvent("rice", "fallback", "library major version 3 incompatible"); err != nil {
		t.Fatalf("RecordModelEvent: %v", err)
	}

	events, err := s.RecentModelEvents(10)
	if err != nil {
		t.Fatalf("RecentModelEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Crop != "rice" || events[0].Event != "fallback" {
		t.Errorf("expected rice fallback first, got %+v", events[0])
	}
	if events[1].Detail == "" {
		t.Error("event detail not persisted")
	}
}

func TestMigrationsAddColumns(t *testing.T) {
	// Build a v1-era predictions table by hand and verify the boot-time
	// migrations add the missing columns.
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE predictions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT NOT NULL,
			crop TEXT NOT NULL,
			state TEXT NOT NULL,
			variety TEXT NOT NULL,
			selection_method TEXT NOT NULL,
			yield_t_ha REAL NOT NULL,
			yield_lower REAL NOT NULL,
			yield_upper REAL NOT NULL,
			area_ha REAL NOT NULL,
			data_source TEXT NOT NULL,
			model_kind TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		t.Fatalf("create v1 table: %v", err)
	}

	if columnExists(db, "predictions", "district") {
		t.Fatal("district should not exist before migration")
	}

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}

	for _, col := range []string{"district", "latency_ms"} {
		if !columnExists(db, "predictions", col) {
			t.Errorf("column %s missing after migration", col)
		}
	}

	// Running again is a no-op.
	if err := RunMigrations(db); err != nil {
		t.Fatalf("second RunMigrations: %v", err)
	}
}

func TestTableExists(t *testing.T) {
	s := newTestStore(t)

	for _, table := range []string{"varieties", "predictions", "model_events"} {
		if !tableExists(s.db, table) {
			t.Errorf("table %s missing", table)
		}
	}
	if tableExists(s.db, "nonexistent") {
		t.Error("tableExists reported a table that does not exist")
	}
}
