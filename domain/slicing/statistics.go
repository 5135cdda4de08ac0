package slicing

// FeatureType mirrors the data-profiling feature types
type FeatureType string

const (
	FeatureInt    FeatureType = "INT"
	FeatureFloat  FeatureType = "FLOAT"
	FeatureString FeatureType = "STRING"
	FeatureBytes  FeatureType = "BYTES"
	FeatureStruct FeatureType = "STRUCT"
)

// IsNumeric reports whether the feature can carry bucket boundaries
func (t FeatureType) IsNumeric() bool {
	return t == FeatureInt || t == FeatureFloat
}

// HistogramType distinguishes equal-width from quantile histograms
type HistogramType string

const (
	HistogramStandard  HistogramType = "STANDARD"
	HistogramQuantiles HistogramType = "QUANTILES"
)

// Bucket is one histogram bucket
type Bucket struct {
	Low         float64 `json:"low_value"`
	High        float64 `json:"high_value"`
	SampleCount float64 `json:"sample_count"`
}

// Histogram of a numeric feature
type Histogram struct {
	Type    HistogramType `json:"type"`
	Buckets []Bucket      `json:"buckets"`
}

// FeatureStats is the per-feature profile used for labeling slices
type FeatureStats struct {
	Name       string      `json:"name"`
	Type       FeatureType `json:"type"`
	Unique     int64       `json:"unique,omitempty"`
	Histograms []Histogram `json:"histograms,omitempty"`
}

// QuantilesHistogram returns the first QUANTILES histogram, if any
func (f FeatureStats) QuantilesHistogram() (Histogram, bool) {
	for _, h := range f.Histograms {
		if h.Type == HistogramQuantiles && len(h.Buckets) > 0 {
			return h, true
		}
	}
	return Histogram{}, false
}

// FeatureStatistics is the dataset profile keyed by feature name
type FeatureStatistics struct {
	NumExamples float64                 `json:"num_examples"`
	Features    map[string]FeatureStats `json:"features"`
}

// Feature looks up a feature; safe on a nil receiver
func (s *FeatureStatistics) Feature(name string) (FeatureStats, bool) {
	if s == nil || s.Features == nil {
		return FeatureStats{}, false
	}
	f, ok := s.Features[name]
	return f, ok
}
