package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"sort"
	"strconv"
	"time"

	"slicefinder/adapters/stats/slicing"
	"slicefinder/domain/core"
	domain "slicefinder/domain/slicing"
	"slicefinder/internal"
	"slicefinder/internal/errors"
	"slicefinder/ports"

	"golang.org/x/sync/errgroup"
)

// SliceDiscoveryService runs slice comparisons and records them as runs
type SliceDiscoveryService struct {
	repo        ports.SliceRunRepository
	defaults    slicing.Options
	concurrency int
	logger      *internal.Logger
	now         func() time.Time
}

// DiscoveryRequest is one FindTopSlices call
type DiscoveryRequest struct {
	Metrics    []domain.MetricRecord
	Statistics *domain.FeatureStatistics
	MetricKey  string
	Comparison domain.ComparisonType
	Overrides  OptionOverrides
}

// OptionOverrides replace individual service defaults; nil or empty fields keep them
type OptionOverrides struct {
	Alpha          *float64
	MinNumExamples *float64
	TopK           *int
	RankBy         domain.RankBy
}

// NewSliceDiscoveryService creates a discovery service. repo may be nil, in
// which case runs are returned but not stored.
func NewSliceDiscoveryService(repo ports.SliceRunRepository, defaults slicing.Options, concurrency int) *SliceDiscoveryService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &SliceDiscoveryService{
		repo:        repo,
		defaults:    defaults,
		concurrency: concurrency,
		logger:      internal.DefaultLogger.WithComponent("SliceDiscovery"),
		now:         time.Now,
	}
}

// Discover ranks the slices of one evaluation and persists the run
func (s *SliceDiscoveryService) Discover(ctx context.Context, req DiscoveryRequest) (*domain.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	started := s.now()
	options := s.resolveOptions(req.Overrides)
	results, err := slicing.FindTopSlices(req.Metrics, req.MetricKey, req.Statistics, req.Comparison, slicing.WithOptions(options))
	if err != nil {
		return nil, errors.Wrapf(err, "slice discovery on %q failed", req.MetricKey)
	}

	run := &domain.Run{
		ID:         core.NewRunID(),
		MetricKey:  req.MetricKey,
		Comparison: req.Comparison,
		InputHash:  inputHash(req, options),
		CreatedAt:  started.UTC(),
		Results:    results,
	}

	if s.repo != nil {
		if err := s.repo.SaveRun(ctx, run); err != nil {
			return nil, errors.Wrapf(err, "failed to save run %s", run.ID)
		}
	}

	s.logger.Info("run %s: %d of %d slices reported for %s %s (input %s, %s)",
		run.ID, len(results), len(req.Metrics)-1, req.Comparison, req.MetricKey,
		run.InputHash.Short(), time.Since(started))
	return run, nil
}

// RunBatch executes requests concurrently, at most the configured number at
// a time. Results keep request order; the first failure cancels the rest.
func (s *SliceDiscoveryService) RunBatch(ctx context.Context, reqs []DiscoveryRequest) ([]*domain.Run, error) {
	runs := make([]*domain.Run, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			run, err := s.Discover(ctx, req)
			if err != nil {
				return errors.Wrapf(err, "batch request %d", i)
			}
			runs[i] = run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return runs, nil
}

// GetRun loads a stored run
func (s *SliceDiscoveryService) GetRun(ctx context.Context, id core.RunID) (*domain.Run, error) {
	if s.repo == nil {
		return nil, core.ErrRunNotFound
	}
	return s.repo.GetRun(ctx, id)
}

// ListRuns returns stored run headers, newest first
func (s *SliceDiscoveryService) ListRuns(ctx context.Context, limit int) ([]*domain.Run, error) {
	if s.repo == nil {
		return []*domain.Run{}, nil
	}
	return s.repo.ListRuns(ctx, limit)
}

func (s *SliceDiscoveryService) resolveOptions(o OptionOverrides) slicing.Options {
	options := s.defaults
	if o.Alpha != nil {
		options.Alpha = *o.Alpha
	}
	if o.MinNumExamples != nil {
		options.MinNumExamples = *o.MinNumExamples
	}
	if o.TopK != nil {
		options.TopK = *o.TopK
	}
	if o.RankBy != "" {
		options.RankBy = o.RankBy
	}
	return options
}

// inputHash fingerprints the comparison inputs so identical evaluations can
// be recognized across runs. Map iteration is sorted to stay deterministic.
func inputHash(req DiscoveryRequest, options slicing.Options) core.Hash {
	h := sha256.New()
	write := func(parts ...string) {
		for _, p := range parts {
			h.Write([]byte(p))
			h.Write([]byte{0})
		}
	}
	num := func(v float64) string {
		if math.IsNaN(v) {
			return "NaN"
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	}

	write(req.MetricKey, string(req.Comparison), num(options.Alpha), num(options.MinNumExamples),
		strconv.Itoa(options.TopK), string(options.RankBy))

	for _, record := range req.Metrics {
		write("record", record.SliceKey.String(), num(record.ExampleCount))
		names := make([]string, 0, len(record.Metrics))
		for name := range record.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			m := record.Metrics[name]
			write(name, num(m.Value))
			if d := m.TDistribution; d != nil {
				write(num(d.SampleMean), num(d.SampleStandardDeviation), num(d.SampleDegreesOfFreedom), num(d.UnsampledValue))
			}
		}
	}

	if stats := req.Statistics; stats != nil {
		write("stats", num(stats.NumExamples))
		features := make([]string, 0, len(stats.Features))
		for name := range stats.Features {
			features = append(features, name)
		}
		sort.Strings(features)
		for _, name := range features {
			f := stats.Features[name]
			write(name, string(f.Type))
			for _, hist := range f.Histograms {
				write(string(hist.Type))
				for _, b := range hist.Buckets {
					write(num(b.Low), num(b.High), num(b.SampleCount))
				}
			}
		}
	}

	return core.Hash(hex.EncodeToString(h.Sum(nil)))
}
