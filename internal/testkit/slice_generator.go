package testkit

import (
	"fmt"
	"math/rand"

	"slicefinder/domain/slicing"
)

// SliceGeneratorConfig configures synthetic evaluation runs
type SliceGeneratorConfig struct {
	Slices       int     `json:"slices"`
	BaseMean     float64 `json:"base_mean"`
	BaseStdDev   float64 `json:"base_std_dev"`
	BaseExamples float64 `json:"base_examples"`
	// Spread bounds how far a slice mean may drift from the baseline.
	Spread float64 `json:"spread"`
	Seed   int64   `json:"seed"`
}

// DefaultSliceConfig returns a run with 40 slices around accuracy 0.8
func DefaultSliceConfig() SliceGeneratorConfig {
	return SliceGeneratorConfig{
		Slices:       40,
		BaseMean:     0.8,
		BaseStdDev:   0.1,
		BaseExamples: 5000,
		Spread:       0.15,
		Seed:         42,
	}
}

// SliceGenerator produces reproducible metric records for property tests
type SliceGenerator struct {
	config SliceGeneratorConfig
	rng    *rand.Rand
}

// NewSliceGenerator creates a seeded generator
func NewSliceGenerator(config SliceGeneratorConfig) *SliceGenerator {
	return &SliceGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate returns the overall record followed by the slice records. A few
// slices are exact ties of each other and one matches the baseline mean.
func (g *SliceGenerator) Generate() []slicing.MetricRecord {
	cfg := g.config
	records := []slicing.MetricRecord{
		Record(nil, AccuracyMetric, cfg.BaseMean, cfg.BaseStdDev, cfg.BaseExamples),
	}

	for i := 0; i < cfg.Slices; i++ {
		key := Key("feature_"+string(rune('a'+i%5)), fmt.Sprintf("v%d", i))
		mean := cfg.BaseMean + (g.rng.Float64()*2-1)*cfg.Spread
		std := cfg.BaseStdDev * (0.5 + g.rng.Float64())
		n := float64(50 + g.rng.Intn(1000))

		switch {
		case i == 0:
			mean = cfg.BaseMean
		case i%7 == 0:
			prev := records[len(records)-1].Metrics[AccuracyMetric]
			mean = prev.Value
			std = prev.TDistribution.SampleStandardDeviation
			n = records[len(records)-1].NumExamples()
		}
		records = append(records, Record(key, AccuracyMetric, mean, std, n))
	}
	return records
}
