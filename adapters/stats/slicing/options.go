package slicing

import (
	"math"

	"slicefinder/domain/core"
	"slicefinder/domain/slicing"
)

// DefaultAlpha is the one-sided significance level a slice must beat
const DefaultAlpha = 0.01

// Options tune filtering and ranking of FindTopSlices
type Options struct {
	// Alpha is the significance level; slices need pvalue < Alpha.
	Alpha float64
	// MinNumExamples drops slices with fewer examples. Zero keeps everything.
	MinNumExamples float64
	// TopK truncates the ranked list. Zero returns all results.
	TopK int
	// RankBy picks the primary sort key of the ranked list.
	RankBy slicing.RankBy
}

// Option mutates Options
type Option func(*Options)

// DefaultOptions returns alpha 0.01, p-value ranking and no truncation
func DefaultOptions() Options {
	return Options{
		Alpha:  DefaultAlpha,
		RankBy: slicing.RankByPValue,
	}
}

// WithAlpha sets the significance level
func WithAlpha(alpha float64) Option {
	return func(o *Options) { o.Alpha = alpha }
}

// WithMinNumExamples sets the minimum slice size
func WithMinNumExamples(n float64) Option {
	return func(o *Options) { o.MinNumExamples = n }
}

// WithTopK caps the number of returned results
func WithTopK(k int) Option {
	return func(o *Options) { o.TopK = k }
}

// WithRankBy sets the primary ranking criterion
func WithRankBy(r slicing.RankBy) Option {
	return func(o *Options) { o.RankBy = r }
}

func (o Options) validate() error {
	if math.IsNaN(o.Alpha) || o.Alpha <= 0 || o.Alpha > 1 {
		return core.NewInvalidInputError("alpha must be in (0, 1], got %v", o.Alpha)
	}
	if o.MinNumExamples < 0 {
		return core.NewInvalidInputError("min_num_examples must be >= 0, got %v", o.MinNumExamples)
	}
	if o.TopK < 0 {
		return core.NewInvalidInputError("top_k must be >= 0, got %d", o.TopK)
	}
	if o.RankBy != slicing.RankByPValue && o.RankBy != slicing.RankByEffectSize {
		return core.NewInvalidInputError("unknown rank_by %q", o.RankBy)
	}
	return nil
}

// WithOptions replaces every setting at once
func WithOptions(o Options) Option {
	return func(dst *Options) { *dst = o }
}
