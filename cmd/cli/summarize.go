package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"slicefinder/adapters/stats/bootstrap"
	"slicefinder/domain/slicing"

	"github.com/spf13/cobra"
)

type summaryOutput struct {
	slicing.TDistributionValue
	ConfidenceLevel float64 `json:"confidence_level"`
	LowerBound      float64 `json:"lower_bound"`
	UpperBound      float64 `json:"upper_bound"`
}

func newSummarizeCmd() *cobra.Command {
	var unsampled float64
	var level float64

	cmd := &cobra.Command{
		Use:   "summarize [replicate values...]",
		Short: "Describe bootstrap replicates as a t-distribution",
		Long: `Summarize bootstrap replicate values of a metric into the t-distribution
description (sample mean, sample standard deviation, degrees of freedom)
consumed by find, plus a confidence interval around the unsampled value.

Example: slicefinder summarize --unsampled 0.8 0.78 0.81 0.83 0.79 0.80`,
		Args: cobra.MinimumNArgs(bootstrap.MinReplicates),
		RunE: func(cmd *cobra.Command, args []string) error {
			replicates := make([]float64, len(args))
			for i, arg := range args {
				v, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return fmt.Errorf("replicate %d: %w", i, err)
				}
				replicates[i] = v
			}

			dist, err := bootstrap.Summarize(replicates, unsampled)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("unsampled") {
				dist.UnsampledValue = dist.SampleMean
			}
			lower, upper, err := bootstrap.ConfidenceInterval(dist, level)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summaryOutput{
				TDistributionValue: dist,
				ConfidenceLevel:    level,
				LowerBound:         lower,
				UpperBound:         upper,
			})
		},
	}

	cmd.Flags().Float64Var(&unsampled, "unsampled", 0, "Metric on the full data (default: replicate mean)")
	cmd.Flags().Float64Var(&level, "level", 0.95, "Confidence level of the reported interval")

	return cmd
}
