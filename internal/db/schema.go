package db

import (
	"context"
	"fmt"
)

const (
	createAnalysisRunsTable = `CREATE TABLE IF NOT EXISTS analysis_runs (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		operation TEXT NOT NULL,
		schema_names TEXT[] NOT NULL,
		status TEXT NOT NULL DEFAULT 'running',
		error_message TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at TIMESTAMPTZ
	);`

	createRunArtifactsTable = `CREATE TABLE IF NOT EXISTS run_artifacts (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		run_id UUID NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		content JSONB,
		file_path TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (run_id, name)
	);`

	createRunsCreatedAtIndex = `CREATE INDEX IF NOT EXISTS idx_analysis_runs_created_at
		ON analysis_runs (created_at DESC);`
)

// EnsureSchema creates the run and artifact tables when they do not exist yet,
// so a fresh database works without a separate migration step.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{createAnalysisRunsTable, createRunArtifactsTable, createRunsCreatedAtIndex} {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
