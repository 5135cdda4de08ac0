// Package testkit provides fixtures shared by tests across packages.
package testkit

import (
	"slicefinder/domain/slicing"
)

// Metric names used by the fixtures
const (
	AccuracyMetric = "accuracy"
)

// Record builds a metric record carrying a single t-distributed metric and
// the example_count metric, the shape auto-slicing evaluations produce.
func Record(key slicing.SliceKey, metric string, mean, std, n float64) slicing.MetricRecord {
	return slicing.MetricRecord{
		SliceKey: key,
		Metrics: map[string]slicing.MetricValue{
			metric: {
				Value: mean,
				TDistribution: &slicing.TDistributionValue{
					SampleMean:              mean,
					SampleStandardDeviation: std,
					SampleDegreesOfFreedom:  9,
					UnsampledValue:          mean,
				},
			},
			slicing.ExampleCountMetric: {
				Value: n,
				TDistribution: &slicing.TDistributionValue{
					SampleMean:             n,
					SampleDegreesOfFreedom: 9,
					UnsampledValue:         n,
				},
			},
		},
	}
}

// Key builds a slice key from alternating feature/value pairs. Values of
// type int become int constraints; everything else is categorical.
func Key(pairs ...interface{}) slicing.SliceKey {
	key := make(slicing.SliceKey, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		feature := pairs[i].(string)
		switch v := pairs[i+1].(type) {
		case int:
			key = append(key, slicing.IntValue(feature, int64(v)))
		case float64:
			key = append(key, slicing.FloatValue(feature, v))
		default:
			key = append(key, slicing.StringValue(feature, v.(string)))
		}
	}
	return key
}

// AutoSlicingMetrics is the reference evaluation: overall accuracy 0.8 over
// 1500 examples and four 500-example slices.
func AutoSlicingMetrics() []slicing.MetricRecord {
	return []slicing.MetricRecord{
		Record(nil, AccuracyMetric, 0.8, 0.1, 1500),
		Record(Key("transformed_age", 1), AccuracyMetric, 0.4, 0.1, 500),
		Record(Key("transformed_age", 2), AccuracyMetric, 0.79, 0.1, 500),
		Record(Key("transformed_age", 3), AccuracyMetric, 0.9, 0.1, 500),
		Record(Key("country", "USA"), AccuracyMetric, 0.9, 0.1, 500),
	}
}

// AutoSlicingStatistics profiles "country" as a string feature and "age" as
// an int feature with three quantile buckets.
func AutoSlicingStatistics() *slicing.FeatureStatistics {
	return &slicing.FeatureStatistics{
		NumExamples: 1500,
		Features: map[string]slicing.FeatureStats{
			"country": {Name: "country", Type: slicing.FeatureString, Unique: 10},
			"age": {
				Name: "age",
				Type: slicing.FeatureInt,
				Histograms: []slicing.Histogram{{
					Type: slicing.HistogramQuantiles,
					Buckets: []slicing.Bucket{
						{Low: 1, High: 6, SampleCount: 500},
						{Low: 6, High: 12, SampleCount: 500},
						{Low: 12, High: 18, SampleCount: 500},
					},
				}},
			},
		},
	}
}
