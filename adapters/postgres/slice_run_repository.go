package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"slicefinder/domain/core"
	"slicefinder/domain/slicing"
	"slicefinder/internal/errors"
	"slicefinder/ports"

	"github.com/jmoiron/sqlx"
)

// SliceRunRepositoryImpl implements SliceRunRepository for PostgreSQL
type SliceRunRepositoryImpl struct {
	db *sqlx.DB
}

// NewSliceRunRepository creates a new PostgreSQL slice run repository
func NewSliceRunRepository(db *sqlx.DB) ports.SliceRunRepository {
	return &SliceRunRepositoryImpl{db: db}
}

type runRow struct {
	ID         string    `db:"id"`
	MetricKey  string    `db:"metric_key"`
	Comparison string    `db:"comparison"`
	InputHash  string    `db:"input_hash"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r runRow) toDomain() *slicing.Run {
	return &slicing.Run{
		ID:         core.RunID(r.ID),
		MetricKey:  r.MetricKey,
		Comparison: slicing.ComparisonType(r.Comparison),
		InputHash:  core.Hash(r.InputHash),
		CreatedAt:  r.CreatedAt,
	}
}

type resultRow struct {
	SliceKey    string  `db:"slice_key"`
	NumExamples float64 `db:"num_examples"`
	SliceMetric float64 `db:"slice_metric"`
	BaseMetric  float64 `db:"base_metric"`
	PValue      float64 `db:"p_value"`
	EffectSize  float64 `db:"effect_size"`
}

// SaveRun stores the run header and its results in one transaction
func (r *SliceRunRepositoryImpl) SaveRun(ctx context.Context, run *slicing.Run) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO slice_runs (id, metric_key, comparison, input_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, run.ID.String(), run.MetricKey, string(run.Comparison), run.InputHash.String(), run.CreatedAt)
	if err != nil {
		return errors.DatabaseError("failed to insert slice run", err)
	}

	for i, result := range run.Results {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO slice_results (run_id, rank, slice_key, num_examples, slice_metric, base_metric, p_value, effect_size)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, run.ID.String(), i+1, result.SliceKey, float8(result.NumExamples), float8(result.SliceMetric),
			float8(result.BaseMetric), float8(result.PValue), float8(result.EffectSize))
		if err != nil {
			return errors.DatabaseError("failed to insert slice result", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit slice run", err)
	}
	return nil
}

// GetRun retrieves a run with its results in rank order
func (r *SliceRunRepositoryImpl) GetRun(ctx context.Context, id core.RunID) (*slicing.Run, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, metric_key, comparison, input_hash, created_at
		FROM slice_runs
		WHERE id = $1
	`, id.String())
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, errors.DatabaseError("failed to load slice run", err)
	}

	var rows []resultRow
	err = r.db.SelectContext(ctx, &rows, `
		SELECT slice_key, num_examples, slice_metric, base_metric, p_value, effect_size
		FROM slice_results
		WHERE run_id = $1
		ORDER BY rank
	`, id.String())
	if err != nil {
		return nil, errors.DatabaseError("failed to load slice results", err)
	}

	run := row.toDomain()
	run.Results = make([]slicing.SliceComparisonResult, 0, len(rows))
	for _, res := range rows {
		run.Results = append(run.Results, slicing.SliceComparisonResult{
			SliceKey:    res.SliceKey,
			NumExamples: res.NumExamples,
			SliceMetric: res.SliceMetric,
			BaseMetric:  res.BaseMetric,
			PValue:      res.PValue,
			EffectSize:  res.EffectSize,
		})
	}
	return run, nil
}

// ListRuns returns run headers newest first
func (r *SliceRunRepositoryImpl) ListRuns(ctx context.Context, limit int) ([]*slicing.Run, error) {
	query := `
		SELECT id, metric_key, comparison, input_hash, created_at
		FROM slice_runs
		ORDER BY created_at DESC, id DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	var rows []runRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.DatabaseError("failed to list slice runs", err)
	}

	runs := make([]*slicing.Run, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, row.toDomain())
	}
	return runs, nil
}
