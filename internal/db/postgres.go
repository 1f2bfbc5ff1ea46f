// Package db persists run manifests and evaluation reports to Postgres,
// adapted from the teacher's internal/db/postgres.go pgxpool wiring
// (connection, schema load, transactional writes) repurposed from forensics
// evidence storage to synthesis run bookkeeping.
package db

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PostgresStore wraps a pooled Postgres connection for run manifest and
// evaluation report persistence.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// Connect establishes the pool and verifies connectivity.
func Connect(ctx context.Context, connStr string, log zerolog.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping failed: %w", err)
	}
	log.Info().Msg("connected to postgres for datasynth engine")
	return &PostgresStore{pool: pool, log: log}, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema loads and executes internal/db/schema.sql.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	schemaBytes, err := os.ReadFile("internal/db/schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}
	if _, err := s.pool.Exec(ctx, string(schemaBytes)); err != nil {
		return fmt.Errorf("failed to execute schema migrations: %w", err)
	}
	s.log.Info().Msg("datasynth schema initialized")
	return nil
}

// RunManifestRecord is one row persisted per completed or aborted run.
type RunManifestRecord struct {
	RunID        string
	RootSeed     int64
	StartedAt    int64
	CompletedAt  *int64
	PhasesDone   []string
	Failed       bool
	ErrorMessage string
}

// SaveRunManifest upserts a run's manifest row.
func (s *PostgresStore) SaveRunManifest(ctx context.Context, m RunManifestRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	sql := `
		INSERT INTO run_manifest (run_id, root_seed, started_at, completed_at, phases_done, failed, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (run_id) DO UPDATE
		SET completed_at = EXCLUDED.completed_at,
		    phases_done = EXCLUDED.phases_done,
		    failed = EXCLUDED.failed,
		    error_message = EXCLUDED.error_message;
	`
	if _, err := tx.Exec(ctx, sql, m.RunID, m.RootSeed, m.StartedAt, m.CompletedAt, m.PhasesDone, m.Failed, m.ErrorMessage); err != nil {
		return fmt.Errorf("failed to upsert run_manifest: %w", err)
	}
	return tx.Commit(ctx)
}

// EvaluationReportRecord is one persisted evaluation report.
type EvaluationReportRecord struct {
	RunID      string
	Passed     bool
	ReportJSON []byte
}

// SaveEvaluationReport persists an evaluation report against its run.
func (s *PostgresStore) SaveEvaluationReport(ctx context.Context, r EvaluationReportRecord) error {
	sql := `
		INSERT INTO evaluation_report (run_id, passed, report_json)
		VALUES ($1, $2, $3)
		ON CONFLICT (run_id) DO UPDATE
		SET passed = EXCLUDED.passed, report_json = EXCLUDED.report_json;
	`
	_, err := s.pool.Exec(ctx, sql, r.RunID, r.Passed, r.ReportJSON)
	return err
}

// GetPool exposes the underlying pool for callers needing direct access.
func (s *PostgresStore) GetPool() *pgxpool.Pool {
	return s.pool
}
