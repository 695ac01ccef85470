package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// Run is one recorded guardian scan.
type Run struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	Mode         string    `json:"mode"`
	ScannedCount int       `json:"scanned_count"`
	AlertedCount int       `json:"alerted_count"`
	LastTS       string    `json:"last_ts,omitempty"`
	Status       string    `json:"status"`
}

// Store keeps scan run history in SQLite so `guardian status` can show
// what happened across invocations.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL,
	mode TEXT NOT NULL,
	scanned_count INTEGER NOT NULL,
	alerted_count INTEGER NOT NULL,
	last_ts TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
`

// Open creates or opens the history database at path.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("history database path is required")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.With().Str("component", "history").Logger(),
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts a run. The run's ID is generated when empty.
func (s *Store) Record(run Run) (Run, error) {
	if run.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return Run{}, fmt.Errorf("failed to generate run ID: %w", err)
		}
		run.ID = id
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (id, started_at, mode, scanned_count, alerted_count, last_ts, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UnixMilli(), run.Mode,
		run.ScannedCount, run.AlertedCount, run.LastTS, run.Status,
	)
	if err != nil {
		return Run{}, fmt.Errorf("failed to record run: %w", err)
	}

	s.logger.Debug().Str("run_id", run.ID).Str("status", run.Status).Msg("Run recorded")
	return run, nil
}

// Recent returns up to n runs, newest first.
func (s *Store) Recent(n int) ([]Run, error) {
	if n <= 0 {
		n = 10
	}

	rows, err := s.db.Query(
		`SELECT id, started_at, mode, scanned_count, alerted_count, last_ts, status
		 FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedMs int64
		if err := rows.Scan(&run.ID, &startedMs, &run.Mode,
			&run.ScannedCount, &run.AlertedCount, &run.LastTS, &run.Status); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		run.StartedAt = time.UnixMilli(startedMs)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LastRun returns the most recent run, or nil when history is empty.
func (s *Store) LastRun() (*Run, error) {
	runs, err := s.Recent(1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}
