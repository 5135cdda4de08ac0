// Package excel reads slice metrics from spreadsheets and writes ranked
// slice reports back out as workbooks.
package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"slicefinder/adapters/stats/bootstrap"
	"slicefinder/domain/core"
	"slicefinder/domain/slicing"

	"github.com/xuri/excelize/v2"
)

// Column names of the long-format metrics sheet: one row per slice/metric.
const (
	ColSlice        = "slice"
	ColMetric       = "metric"
	ColValue        = "value"
	ColStdDev       = "std_dev"
	ColDOF          = "dof"
	ColExampleCount = "example_count"
	// ColReplicates holds ';'-separated bootstrap replicates. When present
	// it replaces std_dev and dof.
	ColReplicates = "replicates"
)

// MetricsSheet is read when present; otherwise the first sheet is used
const MetricsSheet = "metrics"

// MetricsReader loads metric records from an .xlsx or .csv file
type MetricsReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewMetricsReader picks the format from the file extension
func NewMetricsReader(filePath string) *MetricsReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &MetricsReader{filePath: filePath, fileType: fileType}
}

// ReadMetrics returns one record per distinct slice, in first-seen order
func (r *MetricsReader) ReadMetrics() ([]slicing.MetricRecord, error) {
	log.Printf("[MetricsReader] Reading %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var rows [][]string
	var err error
	start := time.Now()
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}
	log.Printf("[MetricsReader] %d rows read in %.2fms", len(rows), float64(time.Since(start).Nanoseconds())/1e6)

	return ParseRows(rows)
}

func (r *MetricsReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := MetricsSheet
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func (r *MetricsReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// ParseRows converts a header row plus data rows into metric records
func ParseRows(rows [][]string) ([]slicing.MetricRecord, error) {
	if len(rows) < 2 {
		return nil, core.NewInvalidInputError("metrics sheet must have a header row and at least one data row")
	}

	header := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{ColSlice, ColMetric, ColValue} {
		if _, ok := header[required]; !ok {
			return nil, core.NewInvalidInputError("metrics sheet is missing column %q", required)
		}
	}

	cell := func(row []string, col string) string {
		i, ok := header[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []slicing.MetricRecord
	index := make(map[string]int)

	for n, row := range rows[1:] {
		line := n + 2
		if isBlank(row) {
			continue
		}

		key, err := slicing.ParseSliceKey(cell(row, ColSlice))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		metric := cell(row, ColMetric)
		if metric == "" {
			return nil, core.NewInvalidInputError("row %d: metric name is empty", line)
		}

		value, err := parseFloat(cell(row, ColValue))
		if err != nil {
			return nil, fmt.Errorf("row %d: value: %w", line, err)
		}

		mv, err := metricValue(value, cell(row, ColStdDev), cell(row, ColDOF), cell(row, ColReplicates))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}

		id := key.String()
		i, ok := index[id]
		if !ok {
			i = len(records)
			index[id] = i
			records = append(records, slicing.MetricRecord{SliceKey: key, Metrics: map[string]slicing.MetricValue{}})
		}
		if _, dup := records[i].Metrics[metric]; dup {
			return nil, core.NewInvalidInputError("row %d: metric %q repeated for slice %s", line, metric, id)
		}
		records[i].Metrics[metric] = mv

		if raw := cell(row, ColExampleCount); raw != "" {
			count, err := parseFloat(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d: example_count: %w", line, err)
			}
			if records[i].ExampleCount != 0 && records[i].ExampleCount != count {
				return nil, core.NewInvalidInputError("row %d: slice %s has conflicting example counts %v and %v", line, id, records[i].ExampleCount, count)
			}
			records[i].ExampleCount = count
		}
	}
	return records, nil
}

func metricValue(value float64, stdDev, dof, replicates string) (slicing.MetricValue, error) {
	if replicates != "" {
		var samples []float64
		for _, s := range strings.Split(replicates, ";") {
			if s = strings.TrimSpace(s); s == "" {
				continue
			}
			f, err := parseFloat(s)
			if err != nil {
				return slicing.MetricValue{}, fmt.Errorf("replicates: %w", err)
			}
			samples = append(samples, f)
		}
		return bootstrap.MetricValue(samples, value)
	}

	if stdDev == "" {
		return slicing.MetricValue{Value: value}, nil
	}
	std, err := parseFloat(stdDev)
	if err != nil {
		return slicing.MetricValue{}, fmt.Errorf("std_dev: %w", err)
	}
	var degrees float64
	if dof != "" {
		if degrees, err = parseFloat(dof); err != nil {
			return slicing.MetricValue{}, fmt.Errorf("dof: %w", err)
		}
	}
	return slicing.MetricValue{
		Value: value,
		TDistribution: &slicing.TDistributionValue{
			SampleMean:              value,
			SampleStandardDeviation: std,
			SampleDegreesOfFreedom:  degrees,
			UnsampledValue:          value,
		},
	}, nil
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, core.NewInvalidInputError("%q is not a number", s)
	}
	return f, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
