package migration

import (
	"context"

	"slicefinder/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	for _, step := range r.steps() {
		if _, err := db.ExecContext(ctx, step.sql); err != nil {
			return errors.Wrapf(errors.DatabaseError(step.name, err), "migration %s failed", r.version)
		}
	}
	return nil
}

type step struct {
	name string
	sql  string
}

func (r *MigrationRunner) steps() []step {
	return []step{
		{"create slice_runs table", `
			CREATE TABLE IF NOT EXISTS slice_runs (
				id UUID PRIMARY KEY,
				metric_key VARCHAR(255) NOT NULL,
				comparison VARCHAR(16) NOT NULL,
				input_hash CHAR(64) NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			)
		`},
		{"create slice_results table", `
			CREATE TABLE IF NOT EXISTS slice_results (
				run_id UUID NOT NULL REFERENCES slice_runs(id) ON DELETE CASCADE,
				rank INTEGER NOT NULL,
				slice_key TEXT NOT NULL,
				num_examples DOUBLE PRECISION NOT NULL,
				slice_metric DOUBLE PRECISION NOT NULL,
				base_metric DOUBLE PRECISION NOT NULL,
				p_value DOUBLE PRECISION NOT NULL,
				effect_size DOUBLE PRECISION NOT NULL,
				PRIMARY KEY (run_id, rank),
				UNIQUE (run_id, slice_key)
			)
		`},
		{"create indexes", `
			CREATE INDEX IF NOT EXISTS idx_slice_runs_created_at ON slice_runs(created_at DESC);
			CREATE INDEX IF NOT EXISTS idx_slice_runs_input_hash ON slice_runs(input_hash);
		`},
	}
}
