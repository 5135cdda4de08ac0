package slicing

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// sampleSummary is the (mean, std, n) triple a Welch test needs per side
type sampleSummary struct {
	mean float64
	std  float64
	n    float64
}

// welchTest holds the outcome of a two-sample test from summary statistics
type welchTest struct {
	tStat float64
	df    float64
	// pValue is one-sided: P(T >= |t|) under equal means.
	pValue float64
}

// welchTTest compares a slice against the baseline without assuming equal
// variances. Degrees of freedom follow Welch-Satterthwaite.
func welchTTest(slice, base sampleSummary) welchTest {
	diff := slice.mean - base.mean

	if slice.n <= 1 || base.n <= 1 {
		return welchTest{pValue: 1}
	}

	vn1 := slice.std * slice.std / slice.n
	vn2 := base.std * base.std / base.n
	se2 := vn1 + vn2

	if se2 == 0 {
		if diff == 0 {
			return welchTest{pValue: 1}
		}
		return welchTest{tStat: math.Copysign(math.Inf(1), diff), pValue: 0}
	}

	df := se2 * se2 / (vn1*vn1/(slice.n-1) + vn2*vn2/(base.n-1))
	tStat := diff / math.Sqrt(se2)
	if math.IsNaN(df) || math.IsNaN(tStat) {
		return welchTest{tStat: tStat, df: df, pValue: 1}
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := tDist.Survival(math.Abs(tStat))

	return welchTest{tStat: tStat, df: df, pValue: clampProbability(p)}
}

// effectSize is the standardized mean difference using the average of the
// two variances as the pooled variance.
func effectSize(slice, base sampleSummary) float64 {
	diff := math.Abs(slice.mean - base.mean)
	variance := slice.std*slice.std + base.std*base.std
	if variance == 0 {
		if diff == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return math.Sqrt2 * diff / math.Sqrt(variance)
}

func clampProbability(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return 1
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
