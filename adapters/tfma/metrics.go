// Package tfma translates TensorFlow Model Analysis protojson documents into
// the slicing domain model.
package tfma

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"slicefinder/domain/core"
	"slicefinder/domain/slicing"
)

type metricsForSlice struct {
	SliceKey struct {
		SingleSliceKeys []singleSliceKey `json:"singleSliceKeys"`
	} `json:"sliceKey"`
	MetricKeysAndValues []metricKeyAndValue `json:"metricKeysAndValues"`
}

type singleSliceKey struct {
	Column     string       `json:"column"`
	BytesValue *string      `json:"bytesValue"`
	Int64Value *int64Value  `json:"int64Value"`
	FloatValue *doubleValue `json:"floatValue"`
}

type metricKeyAndValue struct {
	Key struct {
		Name string `json:"name"`
	} `json:"key"`
	Value metricValue `json:"value"`
}

type metricValue struct {
	DoubleValue  *doubleValue `json:"doubleValue"`
	BoundedValue *struct {
		Value       *doubleValue `json:"value"`
		Methodology string       `json:"methodology"`
	} `json:"boundedValue"`
	ConfidenceInterval *struct {
		TDistributionValue *tDistributionValue `json:"tDistributionValue"`
	} `json:"confidenceInterval"`
}

type tDistributionValue struct {
	SampleMean              *doubleValue `json:"sampleMean"`
	SampleStandardDeviation *doubleValue `json:"sampleStandardDeviation"`
	SampleDegreesOfFreedom  *doubleValue `json:"sampleDegreesOfFreedom"`
	UnsampledValue          *doubleValue `json:"unsampledValue"`
}

// ReadMetrics decodes MetricsForSlice documents given either as a JSON
// array or as a stream of concatenated / newline-delimited objects. Field
// names may be lowerCamel or the original snake_case.
func ReadMetrics(r io.Reader) ([]slicing.MetricRecord, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(br)
	var docs []json.RawMessage
	if first == '[' {
		if err := dec.Decode(&docs); err != nil {
			return nil, fmt.Errorf("%w: decode metrics array: %v", core.ErrInvalidInput, err)
		}
	} else {
		for {
			var doc json.RawMessage
			err := dec.Decode(&doc)
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("%w: decode metrics record %d: %v", core.ErrInvalidInput, len(docs), err)
			}
			docs = append(docs, doc)
		}
	}

	records := make([]slicing.MetricRecord, 0, len(docs))
	for i, doc := range docs {
		var m metricsForSlice
		if err := unmarshalProto(doc, &m); err != nil {
			return nil, fmt.Errorf("%w: decode metrics record %d: %v", core.ErrInvalidInput, i, err)
		}
		record, err := m.toRecord()
		if err != nil {
			return nil, fmt.Errorf("metrics record %d: %w", i, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// ReadMetricsFile opens path and calls ReadMetrics
func ReadMetricsFile(path string) ([]slicing.MetricRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open metrics file: %w", err)
	}
	defer f.Close()
	return ReadMetrics(f)
}

func (m metricsForSlice) toRecord() (slicing.MetricRecord, error) {
	key := make(slicing.SliceKey, 0, len(m.SliceKey.SingleSliceKeys))
	for _, sk := range m.SliceKey.SingleSliceKeys {
		fv, err := sk.toFeatureValue()
		if err != nil {
			return slicing.MetricRecord{}, err
		}
		key = append(key, fv)
	}

	record := slicing.MetricRecord{
		SliceKey: key,
		Metrics:  make(map[string]slicing.MetricValue, len(m.MetricKeysAndValues)),
	}
	for _, kv := range m.MetricKeysAndValues {
		if kv.Key.Name == "" {
			return slicing.MetricRecord{}, core.NewInvalidInputError("metric without a name in slice %s", key)
		}
		record.Metrics[kv.Key.Name] = kv.Value.toMetricValue()
	}
	record.ExampleCount = record.NumExamples()
	return record, nil
}

func (sk singleSliceKey) toFeatureValue() (slicing.FeatureValue, error) {
	switch {
	case sk.Column == "":
		return slicing.FeatureValue{}, core.NewInvalidInputError("slice key without a column")
	case sk.Int64Value != nil:
		return slicing.IntValue(sk.Column, int64(*sk.Int64Value)), nil
	case sk.FloatValue != nil:
		return slicing.FloatValue(sk.Column, float64(*sk.FloatValue)), nil
	case sk.BytesValue != nil:
		return slicing.StringValue(sk.Column, decodeBytes(*sk.BytesValue)), nil
	}
	return slicing.FeatureValue{}, core.NewInvalidInputError("slice key %q has no value", sk.Column)
}

// decodeBytes undoes protojson's base64 encoding of bytes fields. Values
// that are not valid base64 of UTF-8 text are taken literally.
func decodeBytes(s string) string {
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil || !utf8.Valid(decoded) {
		return s
	}
	return string(decoded)
}

func (v metricValue) toMetricValue() slicing.MetricValue {
	var mv slicing.MetricValue
	var haveValue bool

	if v.BoundedValue != nil {
		mv.Value, haveValue = v.BoundedValue.Value.float()
	}
	if !haveValue {
		mv.Value, haveValue = v.DoubleValue.float()
	}

	if v.ConfidenceInterval != nil && v.ConfidenceInterval.TDistributionValue != nil {
		td := v.ConfidenceInterval.TDistributionValue
		dist := &slicing.TDistributionValue{}
		dist.SampleMean, _ = td.SampleMean.float()
		dist.SampleStandardDeviation, _ = td.SampleStandardDeviation.float()
		dist.SampleDegreesOfFreedom, _ = td.SampleDegreesOfFreedom.float()
		unsampled, ok := td.UnsampledValue.float()
		if !ok {
			unsampled = mv.Value
		}
		dist.UnsampledValue = unsampled
		if !haveValue {
			mv.Value = unsampled
		}
		mv.TDistribution = dist
	}
	return mv
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b, br.UnreadByte()
	}
}
