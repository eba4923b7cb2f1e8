// Package storage provides the SQLite run database used by the CLI
// tools: run tracking with resume state, outbound API call audit, and
// discovered ASIN results for export.
package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Storage is the SQLite-backed Repository implementation.
type Storage struct {
	db *sql.DB
}

// NewStorage opens (creating if needed) the run database at dbPath and
// applies pending migrations.
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db}
	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

// StartRun implements RunRepository.
func (s *Storage) StartRun(tool string, planned int, dryRun bool) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO discovery_runs (tool, planned, dry_run, last_index, status)
		VALUES (?, ?, ?, -1, 'running')
	`, tool, planned, dryRun)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// UpdateRunProgress implements RunRepository.
func (s *Storage) UpdateRunProgress(runID int64, lastIndex, processed, found int) error {
	_, err := s.db.Exec(`
		UPDATE discovery_runs
		SET last_index = ?, processed = ?, found = ?
		WHERE id = ?
	`, lastIndex, processed, found, runID)
	return err
}

// CompleteRun implements RunRepository.
func (s *Storage) CompleteRun(runID int64, processed, found, errored int) error {
	_, err := s.db.Exec(`
		UPDATE discovery_runs
		SET completed_at = CURRENT_TIMESTAMP,
		    processed = ?,
		    found = ?,
		    errored = ?,
		    status = CASE WHEN ? > 0 THEN 'completed_with_errors' ELSE 'completed' END
		WHERE id = ?
	`, processed, found, errored, errored, runID)
	return err
}

// LastProcessedIndex implements RunRepository.
func (s *Storage) LastProcessedIndex(tool string) (int, error) {
	var lastIndex int
	err := s.db.QueryRow(`
		SELECT last_index FROM discovery_runs
		WHERE tool = ?
		ORDER BY id DESC LIMIT 1
	`, tool).Scan(&lastIndex)
	if err == sql.ErrNoRows {
		return -1, nil
	}
	if err != nil {
		return -1, err
	}
	return lastIndex, nil
}

// ListRuns implements RunRepository.
func (s *Storage) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, tool, started_at, COALESCE(completed_at, ''), planned,
		       processed, found, errored, last_index, dry_run, status
		FROM discovery_runs
		ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Tool, &r.StartedAt, &r.CompletedAt, &r.Planned,
			&r.Processed, &r.Found, &r.Errored, &r.LastIndex, &r.DryRun, &r.Status); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun implements RunRepository.
func (s *Storage) GetRun(runID int64) (*Run, error) {
	var r Run
	err := s.db.QueryRow(`
		SELECT id, tool, started_at, COALESCE(completed_at, ''), planned,
		       processed, found, errored, last_index, dry_run, status
		FROM discovery_runs WHERE id = ?
	`, runID).Scan(&r.ID, &r.Tool, &r.StartedAt, &r.CompletedAt, &r.Planned,
		&r.Processed, &r.Found, &r.Errored, &r.LastIndex, &r.DryRun, &r.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// LogAPICall implements APICallRepository.
func (s *Storage) LogAPICall(call *APICall) error {
	_, err := s.db.Exec(`
		INSERT INTO api_calls
		(run_id, product_id, operation, query, status_code, error, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, call.RunID, call.ProductID, call.Operation, call.Query,
		call.StatusCode, call.Error, call.DurationMs)
	return err
}

// GetAPICallsByRunID implements APICallRepository.
func (s *Storage) GetAPICallsByRunID(runID int64) ([]APICall, error) {
	rows, err := s.db.Query(`
		SELECT run_id, product_id, operation, query, status_code, error, duration_ms
		FROM api_calls
		WHERE run_id = ?
		ORDER BY timestamp ASC, rowid ASC
	`, runID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var calls []APICall
	for rows.Next() {
		var c APICall
		if err := rows.Scan(&c.RunID, &c.ProductID, &c.Operation, &c.Query,
			&c.StatusCode, &c.Error, &c.DurationMs); err != nil {
			return nil, err
		}
		calls = append(calls, c)
	}
	return calls, rows.Err()
}

// CountAPICallsSince implements APICallRepository.
func (s *Storage) CountAPICallsSince(since string) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM api_calls WHERE timestamp >= ?
	`, since).Scan(&count)
	return count, err
}

// SaveResult implements ResultRepository. A re-discovered (product, ASIN)
// pair replaces the earlier row.
func (s *Storage) SaveResult(result *ASINResult) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO asin_results
		(run_id, product_id, asin, title, confidence, source)
		VALUES (?, ?, ?, ?, ?, ?)
	`, result.RunID, result.ProductID, result.ASIN, result.Title,
		result.Confidence, result.Source)
	return err
}

// ResultsByRunID implements ResultRepository.
func (s *Storage) ResultsByRunID(runID int64) ([]ASINResult, error) {
	return s.queryResults(`
		SELECT run_id, product_id, asin, title, confidence, source, found_at
		FROM asin_results WHERE run_id = ? ORDER BY product_id, confidence DESC
	`, runID)
}

// AllResults implements ResultRepository.
func (s *Storage) AllResults() ([]ASINResult, error) {
	return s.queryResults(`
		SELECT run_id, product_id, asin, title, confidence, source, found_at
		FROM asin_results ORDER BY product_id, confidence DESC
	`)
}

func (s *Storage) queryResults(query string, args ...any) ([]ASINResult, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []ASINResult
	for rows.Next() {
		var r ASINResult
		if err := rows.Scan(&r.RunID, &r.ProductID, &r.ASIN, &r.Title,
			&r.Confidence, &r.Source, &r.FoundAt); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
