// Package slicing finds evaluation slices whose metric differs significantly
// from the overall baseline.
package slicing

import (
	"math"
	"sort"

	"slicefinder/domain/core"
	"slicefinder/domain/slicing"
)

// FindTopSlices compares every slice in metrics with the overall record on
// metricKey and returns the slices that move in the requested direction
// with a one-sided Welch p-value below the configured alpha.
//
// metrics must hold exactly one overall record (empty slice key), and every
// record must carry metricKey with a t-distribution description. Results
// are ordered by p-value ascending, then effect size descending, then slice
// key, unless RankByEffectSize is requested.
func FindTopSlices(metrics []slicing.MetricRecord, metricKey string, stats *slicing.FeatureStatistics, comparison slicing.ComparisonType, opts ...Option) ([]slicing.SliceComparisonResult, error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if err := options.validate(); err != nil {
		return nil, err
	}
	if comparison != slicing.Lower && comparison != slicing.Higher && comparison != slicing.Both {
		return nil, core.NewInvalidInputError("unknown comparison type %q", comparison)
	}
	if metricKey == "" {
		return nil, core.NewInvalidInputError("metric key is required")
	}

	overall, slices, err := splitOverall(metrics)
	if err != nil {
		return nil, err
	}

	base, err := summarize(overall, metricKey)
	if err != nil {
		return nil, err
	}
	if !overall.Metrics[metricKey].Defined() {
		return nil, core.NewInvalidInputError("overall %s is undefined", metricKey)
	}

	boundaries := BucketBoundaries(stats)
	seen := make(map[string]string, len(slices))
	results := make([]slicing.SliceComparisonResult, 0, len(slices))

	for _, record := range slices {
		summary, err := summarize(record, metricKey)
		if err != nil {
			return nil, err
		}

		label := formatSliceKey(record.SliceKey, boundaries)
		if prev, dup := seen[label]; dup {
			return nil, core.NewInvalidInputError("slices %s and %s both render as %q", prev, record.SliceKey, label)
		}
		seen[label] = record.SliceKey.String()

		if !record.Metrics[metricKey].Defined() {
			if summary.n == 0 {
				return nil, core.NewInvalidInputError("slice %s has no examples and an undefined %s", record.SliceKey, metricKey)
			}
			continue
		}
		if summary.n < options.MinNumExamples {
			continue
		}
		if !movesInDirection(summary.mean, base.mean, comparison) {
			continue
		}

		test := welchTTest(summary, base)
		if test.pValue >= options.Alpha {
			continue
		}

		results = append(results, slicing.SliceComparisonResult{
			SliceKey:    label,
			NumExamples: summary.n,
			SliceMetric: summary.mean,
			BaseMetric:  base.mean,
			PValue:      test.pValue,
			EffectSize:  effectSize(summary, base),
		})
	}

	rank(results, options.RankBy)

	if options.TopK > 0 && len(results) > options.TopK {
		results = results[:options.TopK]
	}
	return results, nil
}

func splitOverall(metrics []slicing.MetricRecord) (slicing.MetricRecord, []slicing.MetricRecord, error) {
	var overall slicing.MetricRecord
	found := 0
	slices := make([]slicing.MetricRecord, 0, len(metrics))
	for _, record := range metrics {
		if record.SliceKey.IsOverall() {
			overall = record
			found++
			continue
		}
		slices = append(slices, record)
	}
	if found != 1 {
		return slicing.MetricRecord{}, nil, core.NewInvalidInputError("expected exactly one overall slice, found %d", found)
	}
	return overall, slices, nil
}

// summarize extracts the test inputs of one record. The unsampled value is
// the point estimate; the standard deviation comes from the t-distribution.
func summarize(record slicing.MetricRecord, metricKey string) (sampleSummary, error) {
	value, ok := record.Metrics[metricKey]
	if !ok {
		return sampleSummary{}, core.NewInvalidInputError("slice %s has no metric %q", record.SliceKey, metricKey)
	}
	if value.TDistribution == nil {
		return sampleSummary{}, core.NewInvalidInputError("metric %q of slice %s has no confidence distribution", metricKey, record.SliceKey)
	}
	n := record.NumExamples()
	if n < 0 || math.IsNaN(n) {
		return sampleSummary{}, core.NewInvalidInputError("slice %s has invalid example count %v", record.SliceKey, n)
	}
	std := value.TDistribution.SampleStandardDeviation
	if std < 0 || math.IsNaN(std) {
		return sampleSummary{}, core.NewInvalidInputError("metric %q of slice %s has invalid standard deviation %v", metricKey, record.SliceKey, std)
	}
	return sampleSummary{mean: value.Value, std: std, n: n}, nil
}

func movesInDirection(slice, base float64, comparison slicing.ComparisonType) bool {
	switch comparison {
	case slicing.Lower:
		return slice < base
	case slicing.Higher:
		return slice > base
	default:
		return slice != base
	}
}

func rank(results []slicing.SliceComparisonResult, by slicing.RankBy) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if by == slicing.RankByEffectSize {
			if a.EffectSize != b.EffectSize {
				return a.EffectSize > b.EffectSize
			}
			if a.PValue != b.PValue {
				return a.PValue < b.PValue
			}
			return a.SliceKey < b.SliceKey
		}
		if a.PValue != b.PValue {
			return a.PValue < b.PValue
		}
		if a.EffectSize != b.EffectSize {
			return a.EffectSize > b.EffectSize
		}
		return a.SliceKey < b.SliceKey
	})
}
