package slicing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"slicefinder/domain/core"
)

// ExampleCountMetric is the metric name carrying a slice's example count
// when a record does not set ExampleCount directly.
const ExampleCountMetric = "example_count"

// ValueKind tells which field of a FeatureValue holds the value
type ValueKind string

const (
	KindString ValueKind = "string"
	KindInt    ValueKind = "int"
	KindFloat  ValueKind = "float"
)

// FeatureValue is one (feature, value) constraint of a slice
type FeatureValue struct {
	Feature string   `json:"feature"`
	Value   string   `json:"value,omitempty"`
	Int     *int64   `json:"int_value,omitempty"`
	Float   *float64 `json:"float_value,omitempty"`
}

// StringValue creates a categorical constraint
func StringValue(feature, value string) FeatureValue {
	return FeatureValue{Feature: feature, Value: value}
}

// IntValue creates an integer constraint (bucket indexes are ints)
func IntValue(feature string, value int64) FeatureValue {
	return FeatureValue{Feature: feature, Int: &value}
}

// FloatValue creates a float constraint
func FloatValue(feature string, value float64) FeatureValue {
	return FeatureValue{Feature: feature, Float: &value}
}

// Kind reports which field holds the value
func (fv FeatureValue) Kind() ValueKind {
	switch {
	case fv.Int != nil:
		return KindInt
	case fv.Float != nil:
		return KindFloat
	default:
		return KindString
	}
}

// Raw renders the value without consulting feature statistics
func (fv FeatureValue) Raw() string {
	switch fv.Kind() {
	case KindInt:
		return strconv.FormatInt(*fv.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(*fv.Float, 'g', -1, 64)
	default:
		return fv.Value
	}
}

// SliceKey is an ordered set of constraints. The empty key is the overall slice.
type SliceKey []FeatureValue

// IsOverall reports whether the key selects the whole dataset
func (k SliceKey) IsOverall() bool {
	return len(k) == 0
}

// String renders the raw key, used for error messages and duplicate detection
func (k SliceKey) String() string {
	if k.IsOverall() {
		return "Overall"
	}
	parts := make([]string, len(k))
	for i, fv := range k {
		parts[i] = fv.Feature + ":" + fv.Raw()
	}
	return strings.Join(parts, ",")
}

// TDistributionValue describes the sampling distribution of a metric
type TDistributionValue struct {
	SampleMean              float64 `json:"sample_mean"`
	SampleStandardDeviation float64 `json:"sample_standard_deviation"`
	SampleDegreesOfFreedom  float64 `json:"sample_degrees_of_freedom"`
	UnsampledValue          float64 `json:"unsampled_value"`
}

// MetricValue is a point estimate with an optional confidence distribution
type MetricValue struct {
	Value         float64             `json:"value"`
	TDistribution *TDistributionValue `json:"t_distribution,omitempty"`
}

// Defined reports whether the point estimate is a finite number
func (m MetricValue) Defined() bool {
	return !math.IsNaN(m.Value) && !math.IsInf(m.Value, 0)
}

// MetricRecord holds the evaluation metrics of one slice
type MetricRecord struct {
	SliceKey     SliceKey               `json:"slice_key"`
	Metrics      map[string]MetricValue `json:"metrics"`
	ExampleCount float64                `json:"example_count"`
}

// NumExamples returns ExampleCount, falling back to the example_count metric
func (r MetricRecord) NumExamples() float64 {
	if r.ExampleCount > 0 {
		return r.ExampleCount
	}
	if m, ok := r.Metrics[ExampleCountMetric]; ok {
		if m.TDistribution != nil {
			return m.TDistribution.UnsampledValue
		}
		return m.Value
	}
	return 0
}

// ComparisonType selects which direction of difference is reported
type ComparisonType string

const (
	Lower  ComparisonType = "LOWER"
	Higher ComparisonType = "HIGHER"
	Both   ComparisonType = "BOTH"
)

// ParseComparisonType accepts the names case-insensitively
func ParseComparisonType(s string) (ComparisonType, error) {
	switch ComparisonType(strings.ToUpper(strings.TrimSpace(s))) {
	case Lower:
		return Lower, nil
	case Higher:
		return Higher, nil
	case Both:
		return Both, nil
	}
	return "", core.NewInvalidInputError("unknown comparison type %q", s)
}

// RankBy selects the primary sort key of results
type RankBy string

const (
	RankByPValue     RankBy = "PVALUE"
	RankByEffectSize RankBy = "EFFECT_SIZE"
)

// ParseRankBy accepts the names case-insensitively
func ParseRankBy(s string) (RankBy, error) {
	switch RankBy(strings.ToUpper(strings.TrimSpace(s))) {
	case RankByPValue:
		return RankByPValue, nil
	case RankByEffectSize:
		return RankByEffectSize, nil
	}
	return "", core.NewInvalidInputError("unknown rank_by %q", s)
}

// SliceComparisonResult describes one slice that differs from the baseline
type SliceComparisonResult struct {
	SliceKey    string  `json:"slice_key"`
	NumExamples float64 `json:"num_examples"`
	SliceMetric float64 `json:"slice_metric"`
	BaseMetric  float64 `json:"base_metric"`
	PValue      float64 `json:"pvalue"`
	EffectSize  float64 `json:"effect_size"`
}

// Direction reports whether the slice is above or below the baseline
func (r SliceComparisonResult) Direction() ComparisonType {
	if r.SliceMetric < r.BaseMetric {
		return Lower
	}
	return Higher
}

func (r SliceComparisonResult) String() string {
	return fmt.Sprintf("%s n=%.0f metric=%.4f base=%.4f p=%.4g d=%.3f",
		r.SliceKey, r.NumExamples, r.SliceMetric, r.BaseMetric, r.PValue, r.EffectSize)
}

// Run is one persisted slice-discovery call
type Run struct {
	ID         core.RunID              `json:"id"`
	MetricKey  string                  `json:"metric_key"`
	Comparison ComparisonType          `json:"comparison"`
	InputHash  core.Hash               `json:"input_hash"`
	CreatedAt  time.Time               `json:"created_at"`
	Results    []SliceComparisonResult `json:"results"`
}
