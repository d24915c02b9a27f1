// Package db provides PostgreSQL persistence for analysis runs and their artifacts.
package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// CreateRun records a new toolkit invocation and returns its ID
func (db *DB) CreateRun(ctx context.Context, operation string, schemaNames []string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO analysis_runs (operation, schema_names, status)
		 VALUES ($1, $2, 'running')
		 RETURNING id`,
		operation, schemaNames,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a run as completed
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE analysis_runs SET status = $1, completed_at = NOW() WHERE id = $2`,
		RunStatusCompleted, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// FailRun marks a run as failed and records the failure message
func (db *DB) FailRun(ctx context.Context, runID uuid.UUID, message string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE analysis_runs SET status = $1, error_message = $2, completed_at = NOW() WHERE id = $3`,
		RunStatusFailed, message, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to fail run: %w", err)
	}
	return nil
}

// SaveJSONArtifact stores a JSON artifact for a run
func (db *DB) SaveJSONArtifact(ctx context.Context, runID uuid.UUID, name, kind string, content any) error {
	jsonBytes, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO run_artifacts (run_id, name, kind, content)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (run_id, name) DO UPDATE SET kind = $3, content = $4, created_at = NOW()`,
		runID, name, kind, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", name, err)
	}
	return nil
}

// SaveFileArtifact records the on-disk location of a generated artifact
// (workbooks, HTML pages) for a run
func (db *DB) SaveFileArtifact(ctx context.Context, runID uuid.UUID, name, kind, filePath string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO run_artifacts (run_id, name, kind, file_path)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (run_id, name) DO UPDATE SET kind = $3, file_path = $4, created_at = NOW()`,
		runID, name, kind, filePath,
	)
	if err != nil {
		return fmt.Errorf("failed to save file artifact %s: %w", name, err)
	}
	return nil
}

// GetArtifact retrieves an artifact by run ID and name
func (db *DB) GetArtifact(ctx context.Context, runID uuid.UUID, name string) (*Artifact, error) {
	var artifact Artifact
	var contentBytes []byte
	var filePath *string

	err := db.pool.QueryRow(ctx,
		`SELECT id, run_id, name, kind, content, file_path, created_at
		 FROM run_artifacts WHERE run_id = $1 AND name = $2`,
		runID, name,
	).Scan(&artifact.ID, &artifact.RunID, &artifact.Name, &artifact.Kind,
		&contentBytes, &filePath, &artifact.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artifact %s: %w", name, err)
	}

	if filePath != nil {
		artifact.FilePath = *filePath
	}
	if len(contentBytes) > 0 {
		var content any
		if err := json.Unmarshal(contentBytes, &content); err == nil {
			artifact.Content = content
		}
	}

	return &artifact, nil
}

// GetRun retrieves a run by ID
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	var errorMessage *string

	err := db.pool.QueryRow(ctx,
		`SELECT id, operation, schema_names, status, error_message, created_at, completed_at
		 FROM analysis_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.Operation, &run.SchemaNames, &run.Status,
		&errorMessage, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if errorMessage != nil {
		run.ErrorMessage = *errorMessage
	}
	return &run, nil
}

// RunFilters holds optional filters for listing runs
type RunFilters struct {
	Operation string
	Status    string
	Limit     int
}

// ListRuns retrieves recent runs with optional filters
func (db *DB) ListRuns(ctx context.Context, filters RunFilters) ([]Run, error) {
	if filters.Limit == 0 {
		filters.Limit = 50
	}

	query := `SELECT id, operation, schema_names, status, error_message, created_at, completed_at
		FROM analysis_runs WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.Operation != "" {
		query += fmt.Sprintf(" AND operation = $%d", argNum)
		args = append(args, filters.Operation)
		argNum++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filters.Status)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var errorMessage *string
		if err := rows.Scan(&run.ID, &run.Operation, &run.SchemaNames, &run.Status,
			&errorMessage, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if errorMessage != nil {
			run.ErrorMessage = *errorMessage
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// ListArtifacts retrieves the artifacts of a run in creation order
func (db *DB) ListArtifacts(ctx context.Context, runID uuid.UUID) ([]ArtifactSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, name, kind, created_at,
		        content IS NOT NULL as has_json, file_path IS NOT NULL as has_file
		 FROM run_artifacts WHERE run_id = $1 ORDER BY created_at ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []ArtifactSummary
	for rows.Next() {
		var a ArtifactSummary
		if err := rows.Scan(&a.ID, &a.Name, &a.Kind, &a.CreatedAt, &a.HasJSON, &a.HasFile); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, nil
}

// DeleteRun deletes a run and all its artifacts (via cascade)
func (db *DB) DeleteRun(ctx context.Context, runID uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM analysis_runs WHERE id = $1`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}
