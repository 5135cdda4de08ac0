package slicing

import (
	"math"
	"testing"

	"slicefinder/domain/slicing"
	"slicefinder/internal/testkit"

	"github.com/stretchr/testify/assert"
)

func TestBucketBoundaries(t *testing.T) {
	boundaries := BucketBoundaries(testkit.AutoSlicingStatistics())

	assert.Equal(t, map[string][]float64{"age": {1, 6, 12, 18}}, boundaries)
	assert.Empty(t, BucketBoundaries(nil))
}

func TestBucketBoundaries_SkipsStandardHistograms(t *testing.T) {
	stats := &slicing.FeatureStatistics{Features: map[string]slicing.FeatureStats{
		"income": {Type: slicing.FeatureFloat, Histograms: []slicing.Histogram{{
			Type:    slicing.HistogramStandard,
			Buckets: []slicing.Bucket{{Low: 0, High: 10}},
		}}},
	}}
	assert.Empty(t, BucketBoundaries(stats))
}

func TestDisplayValue(t *testing.T) {
	boundaries := BucketBoundaries(testkit.AutoSlicingStatistics())
	three := 3.0
	half := 1.5

	tests := []struct {
		name string
		fv   slicing.FeatureValue
		want string
	}{
		{"first bucket", slicing.IntValue("transformed_age", 1), "age:[1.0, 6.0]"},
		{"last bucket", slicing.IntValue("transformed_age", 3), "age:[12.0, 18.0]"},
		{"float index", slicing.FeatureValue{Feature: "transformed_age", Float: &three}, "age:[12.0, 18.0]"},
		{"string index", slicing.StringValue("transformed_age", "2"), "age:[6.0, 12.0]"},
		{"fractional index", slicing.FeatureValue{Feature: "transformed_age", Float: &half}, "transformed_age:1.5"},
		{"below range", slicing.IntValue("transformed_age", 0), "transformed_age:0"},
		{"above range", slicing.IntValue("transformed_age", 4), "transformed_age:4"},
		{"unknown feature", slicing.IntValue("transformed_height", 2), "transformed_height:2"},
		{"categorical", slicing.StringValue("country", "USA"), "country:USA"},
		{"plain int", slicing.IntValue("age", 42), "age:42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayValue(tt.fv, boundaries))
		})
	}
}

func TestFormatSliceKey(t *testing.T) {
	stats := testkit.AutoSlicingStatistics()

	assert.Equal(t, OverallSliceLabel, FormatSliceKey(nil, stats))
	assert.Equal(t, "age:[1.0, 6.0],country:USA",
		FormatSliceKey(testkit.Key("transformed_age", 1, "country", "USA"), stats))
	assert.Equal(t, "transformed_age:1", FormatSliceKey(testkit.Key("transformed_age", 1), nil))
}

func TestFormatEdge(t *testing.T) {
	tests := map[float64]string{
		1:           "1.0",
		-3:          "-3.0",
		0:           "0.0",
		0.5:         "0.5",
		12.25:       "12.25",
		1e-5:        "1e-05",
		1e16:        "1e+16",
		1234567:     "1234567.0",
		math.Inf(1): "inf",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatEdge(in), "formatEdge(%v)", in)
	}
}
