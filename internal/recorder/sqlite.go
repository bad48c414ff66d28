package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists forecast runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (dashboards read
	// while the watcher writes).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS forecast_runs (
			run_id         TEXT PRIMARY KEY,
			timestamp      INTEGER NOT NULL,
			symbol         TEXT NOT NULL,
			lookback_years INTEGER,
			rows_fitted    INTEGER,
			cache_hit      INTEGER,
			last_date      INTEGER,
			last_price     REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol_ts ON forecast_runs(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS horizon_results (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL REFERENCES forecast_runs(run_id),
			label       TEXT NOT NULL,
			days        INTEGER NOT NULL,
			target_date INTEGER NOT NULL,
			predicted   REAL,
			lower_bound REAL,
			upper_bound REAL,
			abs_change  REAL,
			pct_change  REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_horizons_run ON horizon_results(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun inserts the run row and its horizon rows in one transaction,
// so a recorded run is always complete.
func (r *SQLiteRecorder) RecordRun(run *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	cacheHit := 0
	if run.CacheHit {
		cacheHit = 1
	}
	if _, err := tx.Exec(`INSERT INTO forecast_runs
		(run_id, timestamp, symbol, lookback_years, rows_fitted, cache_hit, last_date, last_price)
		VALUES (?,?,?,?,?,?,?,?)`,
		run.RunID, run.RanAt.Unix(), run.Symbol, run.LookbackYears,
		run.RowsFitted, cacheHit, run.LastObserved.Date.Unix(), run.LastObserved.Price,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, h := range run.Horizons {
		if _, err := tx.Exec(`INSERT INTO horizon_results
			(run_id, label, days, target_date, predicted, lower_bound, upper_bound, abs_change, pct_change)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			run.RunID, h.Label, h.Days, h.TargetDate.Unix(),
			h.Predicted, h.Lower, h.Upper, h.AbsChange, h.PctChange,
		); err != nil {
			return fmt.Errorf("insert horizon %s: %w", h.Label, err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
