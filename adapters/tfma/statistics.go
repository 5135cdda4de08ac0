package tfma

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"slicefinder/domain/core"
	"slicefinder/domain/slicing"
)

type datasetFeatureStatisticsList struct {
	Datasets []datasetFeatureStatistics `json:"datasets"`
}

type datasetFeatureStatistics struct {
	NumExamples int64Value              `json:"numExamples"`
	Features    []featureNameStatistics `json:"features"`
}

type featureNameStatistics struct {
	Name string `json:"name"`
	Path *struct {
		Step []string `json:"step"`
	} `json:"path"`
	Type        string `json:"type"`
	NumStats    *struct {
		Histograms []histogram `json:"histograms"`
	} `json:"numStats"`
	StringStats *struct {
		Unique int64Value `json:"unique"`
	} `json:"stringStats"`
}

type histogram struct {
	Buckets []struct {
		LowValue    doubleValue `json:"lowValue"`
		HighValue   doubleValue `json:"highValue"`
		SampleCount doubleValue `json:"sampleCount"`
	} `json:"buckets"`
	Type string `json:"type"`
}

// ReadStatistics decodes a DatasetFeatureStatisticsList. Only the first
// dataset is used; an empty list yields empty statistics.
func ReadStatistics(r io.Reader) (*slicing.FeatureStatistics, error) {
	var doc json.RawMessage
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return &slicing.FeatureStatistics{Features: map[string]slicing.FeatureStats{}}, nil
		}
		return nil, fmt.Errorf("%w: decode statistics: %v", core.ErrInvalidInput, err)
	}
	var list datasetFeatureStatisticsList
	if err := unmarshalProto(doc, &list); err != nil {
		return nil, fmt.Errorf("%w: decode statistics: %v", core.ErrInvalidInput, err)
	}
	return list.toDomain(), nil
}

// ReadStatisticsFile opens path and calls ReadStatistics
func ReadStatisticsFile(path string) (*slicing.FeatureStatistics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open statistics file: %w", err)
	}
	defer f.Close()
	return ReadStatistics(f)
}

func (l datasetFeatureStatisticsList) toDomain() *slicing.FeatureStatistics {
	stats := &slicing.FeatureStatistics{Features: map[string]slicing.FeatureStats{}}
	if len(l.Datasets) == 0 {
		return stats
	}

	ds := l.Datasets[0]
	stats.NumExamples = float64(ds.NumExamples)
	for _, f := range ds.Features {
		name := f.Name
		if f.Path != nil && len(f.Path.Step) > 0 {
			name = strings.Join(f.Path.Step, ".")
		}
		if name == "" {
			continue
		}

		fs := slicing.FeatureStats{Name: name, Type: featureType(f.Type)}
		if f.StringStats != nil {
			fs.Unique = int64(f.StringStats.Unique)
		}
		if f.NumStats != nil {
			for _, h := range f.NumStats.Histograms {
				fs.Histograms = append(fs.Histograms, h.toDomain())
			}
		}
		stats.Features[name] = fs
	}
	return stats
}

func (h histogram) toDomain() slicing.Histogram {
	out := slicing.Histogram{Type: slicing.HistogramStandard}
	if strings.EqualFold(h.Type, string(slicing.HistogramQuantiles)) {
		out.Type = slicing.HistogramQuantiles
	}
	for _, b := range h.Buckets {
		out.Buckets = append(out.Buckets, slicing.Bucket{
			Low:         float64(b.LowValue),
			High:        float64(b.HighValue),
			SampleCount: float64(b.SampleCount),
		})
	}
	return out
}

// featureType maps the profile enum; protojson omits INT since it is the
// zero value.
func featureType(s string) slicing.FeatureType {
	switch t := slicing.FeatureType(strings.ToUpper(s)); t {
	case slicing.FeatureFloat, slicing.FeatureString, slicing.FeatureBytes, slicing.FeatureStruct:
		return t
	}
	return slicing.FeatureInt
}
