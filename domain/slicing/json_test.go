package slicing

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliceComparisonResult_JSONInfiniteEffect(t *testing.T) {
	result := SliceComparisonResult{
		SliceKey:    "country:USA",
		NumExamples: 500,
		SliceMetric: 0.9,
		BaseMetric:  0.8,
		PValue:      0,
		EffectSize:  math.Inf(1),
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"slice_key":"country:USA","num_examples":500,"slice_metric":0.9,"base_metric":0.8,"pvalue":0,"effect_size":"Infinity"}`, string(data))

	var decoded SliceComparisonResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, result.SliceKey, decoded.SliceKey)
	assert.True(t, math.IsInf(decoded.EffectSize, 1))
	assert.Equal(t, 0.9, decoded.SliceMetric)
}
