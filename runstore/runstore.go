// Package runstore records pipeline runs, their metrics, and the
// artifacts they published. Reporting reads pass/fail from here; no
// downstream computation does.
package runstore

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one pipeline run's lifecycle row.
type Run struct {
	ID         string
	Task       string
	StartedAt  int64
	FinishedAt int64
	Status     string
	Error      string
}

// Run statuses.
const (
	StatusRunning = "running"
	StatusPassed  = "passed"
	StatusFailed  = "failed"
)

// Store is SQLite-backed persistence for runs, metrics, and artifacts.
type Store struct {
	db *sql.DB
}

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	task TEXT NOT NULL,
	started_at INTEGER NOT NULL,
	finished_at INTEGER DEFAULT 0,
	status TEXT NOT NULL,
	error TEXT DEFAULT ''
);

CREATE TABLE IF NOT EXISTS metrics (
	run_id TEXT NOT NULL,
	name TEXT NOT NULL,
	value REAL NOT NULL,
	PRIMARY KEY (run_id, name)
);

CREATE TABLE IF NOT EXISTS artifacts (
	run_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	path TEXT NOT NULL,
	PRIMARY KEY (run_id, kind)
);
`

// Open opens (creating if needed) the run database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("runstore: open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("runstore: set WAL mode: %w", err)
	}
	if _, err := db.Exec(createTablesSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("runstore: create tables: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// StartRun records a new run in the running state.
func (s *Store) StartRun(id, task string) error {
	_, err := s.db.Exec(
		"INSERT INTO runs (id, task, started_at, status) VALUES (?, ?, ?, ?)",
		id, task, time.Now().Unix(), StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("runstore: start run %s: %w", id, err)
	}
	return nil
}

// FinishRun marks the run passed or failed. errMsg is empty on pass.
func (s *Store) FinishRun(id, status, errMsg string) error {
	_, err := s.db.Exec(
		"UPDATE runs SET finished_at = ?, status = ?, error = ? WHERE id = ?",
		time.Now().Unix(), status, errMsg, id,
	)
	if err != nil {
		return fmt.Errorf("runstore: finish run %s: %w", id, err)
	}
	return nil
}

// RecordMetric upserts one named metric value for a run.
func (s *Store) RecordMetric(runID, name string, value float64) error {
	_, err := s.db.Exec(
		"INSERT INTO metrics (run_id, name, value) VALUES (?, ?, ?) ON CONFLICT (run_id, name) DO UPDATE SET value = excluded.value",
		runID, name, value,
	)
	if err != nil {
		return fmt.Errorf("runstore: record metric %s/%s: %w", runID, name, err)
	}
	return nil
}

// RecordArtifact notes where a run's artifact landed.
func (s *Store) RecordArtifact(runID, kind, path string) error {
	_, err := s.db.Exec(
		"INSERT INTO artifacts (run_id, kind, path) VALUES (?, ?, ?) ON CONFLICT (run_id, kind) DO UPDATE SET path = excluded.path",
		runID, kind, path,
	)
	if err != nil {
		return fmt.Errorf("runstore: record artifact %s/%s: %w", runID, kind, err)
	}
	return nil
}

// GetRun fetches one run row.
func (s *Store) GetRun(id string) (Run, error) {
	var r Run
	err := s.db.QueryRow(
		"SELECT id, task, started_at, finished_at, status, error FROM runs WHERE id = ?", id,
	).Scan(&r.ID, &r.Task, &r.StartedAt, &r.FinishedAt, &r.Status, &r.Error)
	if err != nil {
		return Run{}, fmt.Errorf("runstore: get run %s: %w", id, err)
	}
	return r, nil
}

// Metrics returns all metric values recorded for a run.
func (s *Store) Metrics(runID string) (map[string]float64, error) {
	rows, err := s.db.Query("SELECT name, value FROM metrics WHERE run_id = ?", runID)
	if err != nil {
		return nil, fmt.Errorf("runstore: metrics for %s: %w", runID, err)
	}
	defer rows.Close()
	out := make(map[string]float64)
	for rows.Next() {
		var name string
		var value float64
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("runstore: scan metric: %w", err)
		}
		out[name] = value
	}
	return out, rows.Err()
}
