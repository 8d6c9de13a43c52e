// Package store persists screening run reports to a local SQLite database.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Faultbox/meshscreen/internal/pipeline"
)

// Store wraps the run-report database.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the database at path and applies the
// schema. Migrations are idempotent, so reopening an existing database
// is safe.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TIMESTAMP NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		total_assets INTEGER NOT NULL,
		exported INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS asset_outcomes (
		run_id TEXT NOT NULL REFERENCES runs(id),
		asset_id TEXT NOT NULL,
		source TEXT NOT NULL,
		status TEXT NOT NULL,
		reasons TEXT NOT NULL,
		PRIMARY KEY (run_id, asset_id)
	);
	CREATE INDEX IF NOT EXISTS idx_outcomes_status ON asset_outcomes(status);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// SaveRun records a completed run and every per-asset outcome in one
// transaction.
func (s *Store) SaveRun(startedAt time.Time, res *pipeline.Result) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, started_at, elapsed_ms, total_assets, exported)
		 VALUES (?, ?, ?, ?, ?)`,
		res.RunID, startedAt.UTC(), res.Elapsed.Milliseconds(),
		len(res.Assets), res.ExportedCount(),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO asset_outcomes (run_id, asset_id, source, status, reasons)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing outcome insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range res.Assets {
		reasons, err := json.Marshal(a.Reasons)
		if err != nil {
			return fmt.Errorf("encoding reasons for %s: %w", a.ID, err)
		}
		if _, err := stmt.Exec(res.RunID, a.ID, a.Source, a.Status.String(), string(reasons)); err != nil {
			return fmt.Errorf("inserting outcome for %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

// Outcome is one persisted per-asset result.
type Outcome struct {
	AssetID string
	Source  string
	Status  string
	Reasons []string
}

// RunOutcomes returns the stored outcomes of one run, ordered by asset id.
func (s *Store) RunOutcomes(runID string) ([]Outcome, error) {
	rows, err := s.db.Query(
		`SELECT asset_id, source, status, reasons
		 FROM asset_outcomes WHERE run_id = ? ORDER BY asset_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []Outcome
	for rows.Next() {
		var o Outcome
		var reasons string
		if err := rows.Scan(&o.AssetID, &o.Source, &o.Status, &reasons); err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}
		if err := json.Unmarshal([]byte(reasons), &o.Reasons); err != nil {
			return nil, fmt.Errorf("decoding reasons for %s: %w", o.AssetID, err)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
