package excel

import (
	"fmt"
	"time"

	"slicefinder/domain/slicing"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the results workbook
const (
	ResultsSheet = "slices"
	RunSheet     = "run"
)

// ResultHeaders is the header row of the results sheet
var ResultHeaders = []interface{}{
	"rank", "slice_key", "direction", "num_examples",
	"slice_metric", "base_metric", "pvalue", "effect_size",
}

// WriteResults saves a run as a workbook with a ranked results sheet and a
// run metadata sheet.
func WriteResults(path string, run *slicing.Run) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ResultsSheet); err != nil {
		return fmt.Errorf("failed to name results sheet: %w", err)
	}

	if err := f.SetSheetRow(ResultsSheet, "A1", &ResultHeaders); err != nil {
		return err
	}
	for i, r := range run.Results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			i + 1, r.SliceKey, string(r.Direction()), r.NumExamples,
			r.SliceMetric, r.BaseMetric, r.PValue, r.EffectSize,
		}
		if err := f.SetSheetRow(ResultsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write result %d: %w", i+1, err)
		}
	}

	if _, err := f.NewSheet(RunSheet); err != nil {
		return err
	}
	meta := [][]interface{}{
		{"id", run.ID.String()},
		{"metric_key", run.MetricKey},
		{"comparison", string(run.Comparison)},
		{"input_hash", run.InputHash.String()},
		{"created_at", run.CreatedAt.UTC().Format(time.RFC3339)},
		{"results", len(run.Results)},
	}
	for i := range meta {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(RunSheet, cell, &meta[i]); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
