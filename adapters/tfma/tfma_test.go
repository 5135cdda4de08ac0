package tfma

import (
	"math"
	"regexp"
	"strings"
	"testing"

	slicer "slicefinder/adapters/stats/slicing"
	"slicefinder/domain/core"
	"slicefinder/domain/slicing"
	"slicefinder/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMetrics_NewlineDelimited(t *testing.T) {
	records, err := ReadMetrics(strings.NewReader(testkit.AutoSlicingMetricsJSON))
	require.NoError(t, err)
	require.Len(t, records, 5)

	overall := records[0]
	assert.True(t, overall.SliceKey.IsOverall())
	assert.Equal(t, 1500.0, overall.ExampleCount)
	acc := overall.Metrics["accuracy"]
	assert.Equal(t, 0.8, acc.Value)
	require.NotNil(t, acc.TDistribution)
	assert.Equal(t, 0.1, acc.TDistribution.SampleStandardDeviation)
	assert.Equal(t, 9.0, acc.TDistribution.SampleDegreesOfFreedom)

	assert.Equal(t, testkit.Key("transformed_age", 1), records[1].SliceKey)
	assert.Equal(t, testkit.Key("transformed_age", 3), records[3].SliceKey, "bare int64 numbers are accepted")
	assert.Equal(t, testkit.Key("country", "USA"), records[4].SliceKey, "bytes values are base64")
	assert.Equal(t, 500.0, records[4].ExampleCount)
}

func TestReadMetrics_Array(t *testing.T) {
	lines := strings.Split(strings.TrimSpace(testkit.AutoSlicingMetricsJSON), "\n")
	array := "[" + strings.Join(lines, ",") + "]"

	records, err := ReadMetrics(strings.NewReader(array))
	require.NoError(t, err)
	assert.Len(t, records, 5)
}

func TestReadMetrics_Values(t *testing.T) {
	doc := `{"sliceKey":{"singleSliceKeys":[{"column":"city","bytesValue":"not base64!"},{"column":"score","floatValue":"NaN"}]},
	"metricKeysAndValues":[
	  {"key":{"name":"auc"},"value":{"doubleValue":0.7}},
	  {"key":{"name":"loss"},"value":{"confidenceInterval":{"tDistributionValue":{"sampleMean":"Infinity","unsampledValue":0.3}}}}
	]}`

	records, err := ReadMetrics(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, records, 1)

	key := records[0].SliceKey
	require.Len(t, key, 2)
	assert.Equal(t, "not base64!", key[0].Value)
	require.NotNil(t, key[1].Float)
	assert.True(t, math.IsNaN(*key[1].Float))

	auc := records[0].Metrics["auc"]
	assert.Equal(t, 0.7, auc.Value)
	assert.Nil(t, auc.TDistribution)

	loss := records[0].Metrics["loss"]
	assert.Equal(t, 0.3, loss.Value, "unsampled value backs a missing point estimate")
	assert.True(t, math.IsInf(loss.TDistribution.SampleMean, 1))
}

func TestReadMetrics_Errors(t *testing.T) {
	tests := map[string]string{
		"malformed json":   `{"sliceKey": `,
		"key without value": `{"sliceKey":{"singleSliceKeys":[{"column":"city"}]}}`,
		"bad int64":        `{"sliceKey":{"singleSliceKeys":[{"column":"age","int64Value":"x"}]}}`,
		"unnamed metric":   `{"metricKeysAndValues":[{"key":{},"value":{"doubleValue":1}}]}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadMetrics(strings.NewReader(doc))
			assert.ErrorIs(t, err, core.ErrInvalidInput)
		})
	}

	records, err := ReadMetrics(strings.NewReader("  \n"))
	assert.NoError(t, err)
	assert.Empty(t, records)
}

var jsonFieldName = regexp.MustCompile(`"([a-z]+[A-Z][A-Za-z]*)":`)

// snakeFields rewrites every lowerCamel field name to its proto spelling.
func snakeFields(doc string) string {
	upper := regexp.MustCompile(`[A-Z]`)
	return jsonFieldName.ReplaceAllStringFunc(doc, func(field string) string {
		return upper.ReplaceAllStringFunc(field, func(r string) string {
			return "_" + strings.ToLower(r)
		})
	})
}

func TestReadMetrics_ProtoFieldNames(t *testing.T) {
	doc := `[{"slice_key":{},"metric_keys_and_values":[{"key":{"name":"accuracy"},"value":{"bounded_value":{"value":0.8}}}]},
	{"slice_key":{"single_slice_keys":[{"column":"country","bytes_value":"VVNB"}]},
	 "metric_keys_and_values":[{"key":{"name":"accuracy"},"value":{"confidence_interval":{"t_distribution_value":{"sample_mean":0.9,"sample_standard_deviation":0.1,"sample_degrees_of_freedom":9,"unsampled_value":0.9}}}}]}]`

	records, err := ReadMetrics(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.True(t, records[0].SliceKey.IsOverall())
	assert.Equal(t, 0.8, records[0].Metrics["accuracy"].Value)

	assert.Equal(t, testkit.Key("country", "USA"), records[1].SliceKey)
	acc := records[1].Metrics["accuracy"]
	assert.Equal(t, 0.9, acc.Value)
	require.NotNil(t, acc.TDistribution)
	assert.Equal(t, 0.1, acc.TDistribution.SampleStandardDeviation)
	assert.Equal(t, 9.0, acc.TDistribution.SampleDegreesOfFreedom)

	snake, err := ReadMetrics(strings.NewReader(snakeFields(testkit.AutoSlicingMetricsJSON)))
	require.NoError(t, err)
	camel, err := ReadMetrics(strings.NewReader(testkit.AutoSlicingMetricsJSON))
	require.NoError(t, err)
	assert.Equal(t, camel, snake)
}

func TestReadStatistics_ProtoFieldNames(t *testing.T) {
	doc := snakeFields(testkit.AutoSlicingStatisticsJSON)
	require.Contains(t, doc, `"num_stats":`)
	require.Contains(t, doc, `"low_value":`)

	stats, err := ReadStatistics(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 1500.0, stats.NumExamples)
	assert.Equal(t, testkit.AutoSlicingStatistics().Features, stats.Features)

	records, err := ReadMetrics(strings.NewReader(snakeFields(testkit.AutoSlicingMetricsJSON)))
	require.NoError(t, err)
	results, err := slicer.FindTopSlices(records, "accuracy", stats, slicing.Lower)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "age:[1.0, 6.0]", results[0].SliceKey)
}

func TestLowerCamel(t *testing.T) {
	tests := map[string]string{
		"slice_key":                 "sliceKey",
		"sample_degrees_of_freedom": "sampleDegreesOfFreedom",
		"sliceKey":                  "sliceKey",
		"name":                      "name",
	}
	for in, want := range tests {
		assert.Equal(t, want, lowerCamel(in), in)
	}
}

func TestReadStatistics(t *testing.T) {
	stats, err := ReadStatistics(strings.NewReader(testkit.AutoSlicingStatisticsJSON))
	require.NoError(t, err)

	assert.Equal(t, 1500.0, stats.NumExamples)
	assert.Equal(t, testkit.AutoSlicingStatistics().Features, stats.Features)
}

func TestReadStatistics_Empty(t *testing.T) {
	stats, err := ReadStatistics(strings.NewReader(`{}`))
	require.NoError(t, err)
	assert.Empty(t, stats.Features)

	_, err = ReadStatistics(strings.NewReader(`{"datasets": 3}`))
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

// The decoded documents must reproduce the in-memory fixture end to end.
func TestRoundTripThroughComparator(t *testing.T) {
	records, err := ReadMetrics(strings.NewReader(testkit.AutoSlicingMetricsJSON))
	require.NoError(t, err)
	stats, err := ReadStatistics(strings.NewReader(testkit.AutoSlicingStatisticsJSON))
	require.NoError(t, err)

	fromJSON, err := slicer.FindTopSlices(records, "accuracy", stats, slicing.Higher)
	require.NoError(t, err)
	fromFixture, err := slicer.FindTopSlices(testkit.AutoSlicingMetrics(), "accuracy", testkit.AutoSlicingStatistics(), slicing.Higher)
	require.NoError(t, err)

	assert.Equal(t, fromFixture, fromJSON)
}
