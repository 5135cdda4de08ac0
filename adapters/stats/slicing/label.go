package slicing

import (
	"math"
	"strconv"
	"strings"

	"slicefinder/domain/slicing"
)

// TransformedFeaturePrefix marks features bucketized by the auto-slicing
// key extractor; their values are 1-based quantile bucket indexes.
const TransformedFeaturePrefix = "transformed_"

// OverallSliceLabel is the label of the empty slice key
const OverallSliceLabel = "Overall"

const keyDelimiter = ","

// BucketBoundaries returns, for every numeric feature with a quantiles
// histogram, the ordered edges [low_0, high_0, high_1, ...].
func BucketBoundaries(stats *slicing.FeatureStatistics) map[string][]float64 {
	boundaries := make(map[string][]float64)
	if stats == nil {
		return boundaries
	}
	for name, feature := range stats.Features {
		if !feature.Type.IsNumeric() {
			continue
		}
		hist, ok := feature.QuantilesHistogram()
		if !ok {
			continue
		}
		edges := make([]float64, 0, len(hist.Buckets)+1)
		edges = append(edges, hist.Buckets[0].Low)
		for _, b := range hist.Buckets {
			edges = append(edges, b.High)
		}
		boundaries[name] = edges
	}
	return boundaries
}

// DisplayValue renders one constraint as "feature:value". Transformed
// features are mapped back to their bucket range; anything that cannot be
// resolved falls back to the raw value.
func DisplayValue(fv slicing.FeatureValue, boundaries map[string][]float64) string {
	if !strings.HasPrefix(fv.Feature, TransformedFeaturePrefix) {
		return fv.Feature + ":" + fv.Raw()
	}

	feature := strings.TrimPrefix(fv.Feature, TransformedFeaturePrefix)
	edges, ok := boundaries[feature]
	if !ok {
		return fv.Feature + ":" + fv.Raw()
	}
	idx, ok := bucketIndex(fv)
	if !ok || idx < 1 || idx >= int64(len(edges)) {
		return fv.Feature + ":" + fv.Raw()
	}
	return feature + ":[" + formatEdge(edges[idx-1]) + ", " + formatEdge(edges[idx]) + "]"
}

// FormatSliceKey joins the display values of every constraint
func FormatSliceKey(key slicing.SliceKey, stats *slicing.FeatureStatistics) string {
	return formatSliceKey(key, BucketBoundaries(stats))
}

func formatSliceKey(key slicing.SliceKey, boundaries map[string][]float64) string {
	if key.IsOverall() {
		return OverallSliceLabel
	}
	parts := make([]string, len(key))
	for i, fv := range key {
		parts[i] = DisplayValue(fv, boundaries)
	}
	return strings.Join(parts, keyDelimiter)
}

func bucketIndex(fv slicing.FeatureValue) (int64, bool) {
	switch fv.Kind() {
	case slicing.KindInt:
		return *fv.Int, true
	case slicing.KindFloat:
		f := *fv.Float
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return int64(f), true
	default:
		i, err := strconv.ParseInt(strings.TrimSpace(fv.Value), 10, 64)
		return i, err == nil
	}
}

// formatEdge prints floats the way dataset profiles display them:
// integral values keep a trailing ".0", tiny and huge values use exponents.
func formatEdge(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
