package bootstrap

import (
	"math"
	"testing"

	"slicefinder/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	replicates := []float64{0.7, 0.8, 0.9, 0.8, 0.8}

	dist, err := Summarize(replicates, 0.81)
	require.NoError(t, err)

	assert.InDelta(t, 0.8, dist.SampleMean, 1e-12)
	assert.InDelta(t, math.Sqrt(0.02/4), dist.SampleStandardDeviation, 1e-12)
	assert.Equal(t, 4.0, dist.SampleDegreesOfFreedom)
	assert.Equal(t, 0.81, dist.UnsampledValue)
}

func TestSummarize_Invalid(t *testing.T) {
	_, err := Summarize([]float64{0.5}, 0.5)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = Summarize([]float64{0.5, math.NaN()}, 0.5)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestMetricValue(t *testing.T) {
	mv, err := MetricValue([]float64{1, 2, 3}, 2.5)
	require.NoError(t, err)
	require.NotNil(t, mv.TDistribution)
	assert.Equal(t, 2.5, mv.Value)
	assert.InDelta(t, 1.0, mv.TDistribution.SampleStandardDeviation, 1e-12)
}

func TestConfidenceInterval(t *testing.T) {
	dist, err := Summarize([]float64{0.7, 0.8, 0.9, 0.8, 0.8, 0.75, 0.85, 0.8, 0.8, 0.8}, 0.8)
	require.NoError(t, err)

	lower, upper, err := ConfidenceInterval(dist, 0.95)
	require.NoError(t, err)
	assert.Less(t, lower, 0.8)
	assert.Greater(t, upper, 0.8)
	assert.InDelta(t, 0.8-lower, upper-0.8, 1e-12, "interval is symmetric")

	_, _, err = ConfidenceInterval(dist, 1)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}
