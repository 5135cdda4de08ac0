// Package bootstrap turns bootstrap replicates of a metric into the
// t-distribution description the slice comparator consumes.
package bootstrap

import (
	"math"

	"slicefinder/domain/core"
	"slicefinder/domain/slicing"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// MinReplicates is the smallest replicate count with a defined sample std-dev
const MinReplicates = 2

// Summarize describes replicates by their sample mean, sample standard
// deviation and n-1 degrees of freedom. unsampled is the metric computed on
// the full, unresampled data.
func Summarize(replicates []float64, unsampled float64) (slicing.TDistributionValue, error) {
	if len(replicates) < MinReplicates {
		return slicing.TDistributionValue{}, core.NewInvalidInputError("need at least %d bootstrap replicates, got %d", MinReplicates, len(replicates))
	}
	for i, r := range replicates {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return slicing.TDistributionValue{}, core.NewInvalidInputError("replicate %d is not finite", i)
		}
	}

	data := stats.LoadRawData(replicates)
	mean, err := stats.Mean(data)
	if err != nil {
		return slicing.TDistributionValue{}, err
	}
	std, err := stats.StandardDeviationSample(data)
	if err != nil {
		return slicing.TDistributionValue{}, err
	}

	return slicing.TDistributionValue{
		SampleMean:              mean,
		SampleStandardDeviation: std,
		SampleDegreesOfFreedom:  float64(len(replicates) - 1),
		UnsampledValue:          unsampled,
	}, nil
}

// MetricValue wraps Summarize into a MetricValue whose point estimate is
// the unsampled value.
func MetricValue(replicates []float64, unsampled float64) (slicing.MetricValue, error) {
	dist, err := Summarize(replicates, unsampled)
	if err != nil {
		return slicing.MetricValue{}, err
	}
	return slicing.MetricValue{Value: unsampled, TDistribution: &dist}, nil
}

// ConfidenceInterval returns the two-sided interval at the given level
// around the unsampled value using the Student-t quantile for the
// replicate degrees of freedom.
func ConfidenceInterval(dist slicing.TDistributionValue, level float64) (lower, upper float64, err error) {
	if level <= 0 || level >= 1 {
		return 0, 0, core.NewInvalidInputError("confidence level must be in (0, 1), got %v", level)
	}
	if dist.SampleDegreesOfFreedom <= 0 {
		return 0, 0, core.NewInvalidInputError("degrees of freedom must be positive, got %v", dist.SampleDegreesOfFreedom)
	}
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dist.SampleDegreesOfFreedom}.Quantile(1 - (1-level)/2)
	margin := t * dist.SampleStandardDeviation
	return dist.UnsampledValue - margin, dist.UnsampledValue + margin, nil
}
