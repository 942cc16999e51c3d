package ledger

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	start_stage INTEGER NOT NULL,
	stop_stage INTEGER NOT NULL,
	status TEXT NOT NULL,
	started_at TEXT NOT NULL,
	finished_at TEXT,
	error TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS stages (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	stage_index INTEGER NOT NULL,
	stage_name TEXT NOT NULL,
	status TEXT NOT NULL,
	started_at TEXT NOT NULL,
	finished_at TEXT,
	error TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, stage_index)
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("initialize ledger schema: %w", err)
	}
	return nil
}
