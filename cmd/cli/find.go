package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"slicefinder/adapters/excel"
	"slicefinder/adapters/tfma"
	"slicefinder/app"
	"slicefinder/domain/slicing"
	"slicefinder/internal/config"
	"slicefinder/internal/container"
	"slicefinder/internal/report"

	"github.com/spf13/cobra"
)

type findOptions struct {
	metricsPath    string
	statsPath      string
	metricKey      string
	comparison     string
	alpha          float64
	minNumExamples float64
	topK           int
	rankBy         string
	xlsxOut        string
	markdownOut    string
	jsonOut        string
	saveReport     bool
}

func newFindCmd() *cobra.Command {
	var opts findOptions

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Rank slices whose metric is significantly lower or higher than overall",
		Long: `Compare every slice of a model evaluation with the overall baseline and
report the slices that differ significantly, ranked by p-value.

Metrics are read from TFMA MetricsForSlice JSON (array or one record per line),
or from an .xlsx / .csv table with slice, metric, value, std_dev, dof,
example_count and replicates columns. Statistics are an optional TFDV
DatasetFeatureStatisticsList JSON used to label auto-bucketized features.

Defaults for alpha, min examples, top-k and rank-by come from SLICE_ALPHA,
SLICE_MIN_EXAMPLES, SLICE_TOP_K and SLICE_RANK_BY.

Example: slicefinder find --metrics metrics.json --stats stats.json --metric accuracy --comparison LOWER`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.metricsPath, "metrics", "", "Metrics file (.json, .jsonl, .xlsx or .csv)")
	cmd.Flags().StringVar(&opts.statsPath, "stats", "", "Feature statistics JSON file")
	cmd.Flags().StringVar(&opts.metricKey, "metric", "", "Metric to compare")
	cmd.Flags().StringVar(&opts.comparison, "comparison", "LOWER", "LOWER, HIGHER or BOTH")
	cmd.Flags().Float64Var(&opts.alpha, "alpha", 0, "Significance level (overrides SLICE_ALPHA)")
	cmd.Flags().Float64Var(&opts.minNumExamples, "min-examples", 0, "Drop slices with fewer examples")
	cmd.Flags().IntVar(&opts.topK, "top-k", 0, "Report at most this many slices")
	cmd.Flags().StringVar(&opts.rankBy, "rank-by", "", "PVALUE or EFFECT_SIZE")
	cmd.Flags().StringVar(&opts.xlsxOut, "xlsx", "", "Write ranked results to this workbook")
	cmd.Flags().StringVar(&opts.markdownOut, "markdown", "", "Write a Markdown report to this file")
	cmd.Flags().StringVar(&opts.jsonOut, "json", "", "Write the run as JSON to this file")
	cmd.Flags().BoolVar(&opts.saveReport, "save-report", false, "Write <run-id>.md and <run-id>.html under REPORTS_DIR")
	_ = cmd.MarkFlagRequired("metrics")
	_ = cmd.MarkFlagRequired("metric")

	return cmd
}

func runFind(cmd *cobra.Command, opts findOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	comparison, err := slicing.ParseComparisonType(opts.comparison)
	if err != nil {
		return err
	}

	metrics, err := readMetrics(opts.metricsPath)
	if err != nil {
		return err
	}

	var stats *slicing.FeatureStatistics
	if opts.statsPath != "" {
		if stats, err = tfma.ReadStatisticsFile(opts.statsPath); err != nil {
			return err
		}
	}

	overrides := app.OptionOverrides{}
	flags := cmd.Flags()
	if flags.Changed("alpha") {
		overrides.Alpha = &opts.alpha
	}
	if flags.Changed("min-examples") {
		overrides.MinNumExamples = &opts.minNumExamples
	}
	if flags.Changed("top-k") {
		overrides.TopK = &opts.topK
	}
	if opts.rankBy != "" {
		if overrides.RankBy, err = slicing.ParseRankBy(opts.rankBy); err != nil {
			return err
		}
	}

	service := app.NewSliceDiscoveryService(nil, container.SlicingDefaults(cfg.Slicing), 1)
	run, err := service.Discover(cmd.Context(), app.DiscoveryRequest{
		Metrics:    metrics,
		Statistics: stats,
		MetricKey:  opts.metricKey,
		Comparison: comparison,
		Overrides:  overrides,
	})
	if err != nil {
		return err
	}

	printResults(cmd.OutOrStdout(), run)

	if opts.xlsxOut != "" {
		if err := excel.WriteResults(opts.xlsxOut, run); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
	}
	if opts.markdownOut != "" {
		if err := os.WriteFile(opts.markdownOut, report.Markdown(run), 0o644); err != nil {
			return fmt.Errorf("failed to write markdown report: %w", err)
		}
	}
	if opts.saveReport {
		if err := saveReports(cfg.Reports.Dir, run); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report saved to %s\n", filepath.Join(cfg.Reports.Dir, run.ID.String()+".html"))
	}
	if opts.jsonOut != "" {
		data, err := json.MarshalIndent(run, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.jsonOut, data, 0o644); err != nil {
			return fmt.Errorf("failed to write run JSON: %w", err)
		}
	}
	return nil
}

func saveReports(dir string, run *slicing.Run) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create reports directory: %w", err)
	}
	base := filepath.Join(dir, run.ID.String())
	if err := os.WriteFile(base+".md", report.Markdown(run), 0o644); err != nil {
		return fmt.Errorf("failed to write markdown report: %w", err)
	}
	if err := os.WriteFile(base+".html", report.HTML(run), 0o644); err != nil {
		return fmt.Errorf("failed to write html report: %w", err)
	}
	return nil
}

func readMetrics(path string) ([]slicing.MetricRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".csv":
		return excel.NewMetricsReader(path).ReadMetrics()
	default:
		return tfma.ReadMetricsFile(path)
	}
}

func printResults(w io.Writer, run *slicing.Run) {
	direction := strings.ToLower(string(run.Comparison))
	if run.Comparison == slicing.Both {
		direction = "different"
	}
	if len(run.Results) == 0 {
		fmt.Fprintf(w, "No slice is significantly %s than overall %s.\n", direction, run.MetricKey)
		return
	}

	fmt.Fprintf(w, "\n📊 SLICES %s THAN OVERALL %s (%.4f)\n", strings.ToUpper(direction), run.MetricKey, run.Results[0].BaseMetric)
	fmt.Fprintf(w, "Run: %s\n", run.ID)
	for i, r := range run.Results {
		fmt.Fprintf(w, "%d. %s\n", i+1, r.SliceKey)
		fmt.Fprintf(w, "   Metric: %.4f, Examples: %.0f, p-value: %.3g, Effect size: %.3f\n",
			r.SliceMetric, r.NumExamples, r.PValue, r.EffectSize)
	}
}
