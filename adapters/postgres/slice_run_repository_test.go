package postgres

import (
	"context"
	"math"
	"os"
	"testing"
	"time"

	"slicefinder/domain/core"
	"slicefinder/domain/slicing"
	"slicefinder/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloat8_Value(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.25, "0.25"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
		{math.NaN(), "NaN"},
		{7.356017854191938e-70, "7.356017854191938e-70"},
	}
	for _, tt := range tests {
		got, err := float8(tt.in).Value()
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestSliceRunRepository_Live(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("Skipping live test: TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, migration.NewRunner().Run(ctx, db))

	repo := NewSliceRunRepository(db)
	run := &slicing.Run{
		ID:         core.NewRunID(),
		MetricKey:  "accuracy",
		Comparison: slicing.Lower,
		InputHash:  core.NewHash([]byte("live")),
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
		Results: []slicing.SliceComparisonResult{
			{SliceKey: "age:[1.0, 6.0]", NumExamples: 500, SliceMetric: 0.4, BaseMetric: 0.8, PValue: 0, EffectSize: 4},
			{SliceKey: "country:USA", NumExamples: 500, SliceMetric: 0.7, BaseMetric: 0.8, PValue: 0.001, EffectSize: math.Inf(1)},
		},
	}
	require.NoError(t, repo.SaveRun(ctx, run))

	got, err := repo.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.MetricKey, got.MetricKey)
	require.Len(t, got.Results, 2)
	assert.Equal(t, "age:[1.0, 6.0]", got.Results[0].SliceKey)
	assert.True(t, math.IsInf(got.Results[1].EffectSize, 1))

	runs, err := repo.ListRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	_, err = repo.GetRun(ctx, core.NewRunID())
	assert.ErrorIs(t, err, core.ErrRunNotFound)
}
