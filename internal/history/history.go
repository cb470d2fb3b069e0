// Package history persists run provenance: one row per run, one row per
// final draft, in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/docsmith/docsmith/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY,
	created_at     TIMESTAMP NOT NULL,
	source_path    TEXT NOT NULL,
	style          TEXT NOT NULL,
	elements       INTEGER NOT NULL,
	avg_confidence REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS drafts (
	run_id          TEXT NOT NULL REFERENCES runs(id),
	element_name    TEXT NOT NULL,
	docstring       TEXT NOT NULL,
	confidence      REAL NOT NULL,
	iteration       INTEGER NOT NULL,
	warnings        TEXT NOT NULL,
	processing_time REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_drafts_run ON drafts(run_id);
`

// Run summarizes one recorded pipeline run.
type Run struct {
	ID            string
	CreatedAt     time.Time
	SourcePath    string
	Style         string
	Elements      int
	AvgConfidence float64
}

// Store is a SQLite-backed history store. Safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open creates or opens the history database at path, with WAL enabled.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// RecordRun writes one run and its final drafts atomically and returns the
// new run ID.
func (s *Store) RecordRun(ctx context.Context, sourcePath string, style types.Style, results []*types.DraftResult) (string, error) {
	runID := uuid.New().String()

	avg := 0.0
	for _, r := range results {
		avg += r.Confidence
	}
	if len(results) > 0 {
		avg /= float64(len(results))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning history transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, source_path, style, elements, avg_confidence) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, time.Now().UTC(), sourcePath, string(style), len(results), avg)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	for _, r := range results {
		warnings, err := json.Marshal(r.Warnings)
		if err != nil {
			return "", fmt.Errorf("encoding warnings for %s: %w", r.ElementName, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO drafts (run_id, element_name, docstring, confidence, iteration, warnings, processing_time) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, r.ElementName, r.Docstring, r.Confidence, r.Iteration, string(warnings), r.ProcessingTime)
		if err != nil {
			return "", fmt.Errorf("inserting draft for %s: %w", r.ElementName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing history transaction: %w", err)
	}
	return runID, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, source_path, style, elements, avg_confidence FROM runs ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.SourcePath, &r.Style, &r.Elements, &r.AvgConfidence); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunDrafts returns the drafts recorded for one run, in insertion order.
func (s *Store) RunDrafts(ctx context.Context, runID string) ([]*types.DraftResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT element_name, docstring, confidence, iteration, warnings, processing_time FROM drafts WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}
	defer rows.Close()

	var drafts []*types.DraftResult
	for rows.Next() {
		var d types.DraftResult
		var warnings string
		if err := rows.Scan(&d.ElementName, &d.Docstring, &d.Confidence, &d.Iteration, &warnings, &d.ProcessingTime); err != nil {
			return nil, fmt.Errorf("scanning draft: %w", err)
		}
		if err := json.Unmarshal([]byte(warnings), &d.Warnings); err != nil {
			return nil, fmt.Errorf("decoding warnings for %s: %w", d.ElementName, err)
		}
		drafts = append(drafts, &d)
	}
	return drafts, rows.Err()
}
