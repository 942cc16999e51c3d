package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the ledger database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

// BeginRun records a new run in the running state.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run ID is required")
	}
	started := run.StartedAt
	if started.IsZero() {
		started = time.Now().UTC()
	}
	return s.execWithRetry(ctx,
		`INSERT INTO runs (id, start_stage, stop_stage, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.StartStage, run.StopStage, string(RunRunning), started.Format(time.RFC3339Nano),
	)
}

// FinishRun marks a run terminal with the given status and optional error message.
func (s *Store) FinishRun(ctx context.Context, runID string, status RunStatus, errMsg string) error {
	return s.execWithRetry(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, error = ? WHERE id = ?`,
		string(status), time.Now().UTC().Format(time.RFC3339Nano), strings.TrimSpace(errMsg), runID,
	)
}

// StageStarted records a stage entering execution within a run.
func (s *Store) StageStarted(ctx context.Context, runID string, index int, name string) error {
	return s.execWithRetry(ctx,
		`INSERT INTO stages (run_id, stage_index, stage_name, status, started_at)
		 VALUES (?, ?, ?, 'running', ?)
		 ON CONFLICT(run_id, stage_index) DO UPDATE SET status='running', started_at=excluded.started_at, finished_at=NULL, error=''`,
		runID, index, name, time.Now().UTC().Format(time.RFC3339Nano),
	)
}

// StageFinished records a stage's terminal outcome within a run.
func (s *Store) StageFinished(ctx context.Context, runID string, index int, status, errMsg string) error {
	return s.execWithRetry(ctx,
		`UPDATE stages SET status = ?, finished_at = ?, error = ? WHERE run_id = ? AND stage_index = ?`,
		status, time.Now().UTC().Format(time.RFC3339Nano), strings.TrimSpace(errMsg), runID, index,
	)
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, start_stage, stop_stage, status, started_at, finished_at, error
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// StagesForRun returns the stage records of one run in index order.
func (s *Store) StagesForRun(ctx context.Context, runID string) ([]StageRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, stage_index, stage_name, status, started_at, finished_at, error
		 FROM stages WHERE run_id = ? ORDER BY stage_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("query stages: %w", err)
	}
	defer rows.Close()

	var records []StageRecord
	for rows.Next() {
		var record StageRecord
		var started string
		var finished sql.NullString
		if err := rows.Scan(&record.RunID, &record.StageIndex, &record.StageName, &record.Status, &started, &finished, &record.Error); err != nil {
			return nil, fmt.Errorf("scan stage record: %w", err)
		}
		record.StartedAt, err = parseTime(started)
		if err != nil {
			return nil, err
		}
		if finished.Valid {
			ts, err := parseTime(finished.String)
			if err != nil {
				return nil, err
			}
			record.FinishedAt = &ts
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanRun(rows *sql.Rows) (Run, error) {
	var run Run
	var status, started string
	var finished sql.NullString
	if err := rows.Scan(&run.ID, &run.StartStage, &run.StopStage, &status, &started, &finished, &run.Error); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Status = RunStatus(status)
	var err error
	run.StartedAt, err = parseTime(started)
	if err != nil {
		return Run{}, err
	}
	if finished.Valid {
		ts, err := parseTime(finished.String)
		if err != nil {
			return Run{}, err
		}
		run.FinishedAt = &ts
	}
	return run, nil
}

func parseTime(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return ts, nil
}
