package slicing

import (
	"encoding/json"
	"math"
	"strconv"
)

// jsonFloat encodes non-finite values as the strings "Infinity", "-Infinity"
// and "NaN", the same spelling protobuf JSON uses for doubles.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Infinity"`), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

func (f *jsonFloat) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = jsonFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = jsonFloat(v)
	return nil
}

type resultJSON struct {
	SliceKey    string    `json:"slice_key"`
	NumExamples jsonFloat `json:"num_examples"`
	SliceMetric jsonFloat `json:"slice_metric"`
	BaseMetric  jsonFloat `json:"base_metric"`
	PValue      jsonFloat `json:"pvalue"`
	EffectSize  jsonFloat `json:"effect_size"`
}

// MarshalJSON keeps zero-variance results (infinite effect size) encodable
func (r SliceComparisonResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		SliceKey:    r.SliceKey,
		NumExamples: jsonFloat(r.NumExamples),
		SliceMetric: jsonFloat(r.SliceMetric),
		BaseMetric:  jsonFloat(r.BaseMetric),
		PValue:      jsonFloat(r.PValue),
		EffectSize:  jsonFloat(r.EffectSize),
	})
}

func (r *SliceComparisonResult) UnmarshalJSON(data []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = SliceComparisonResult{
		SliceKey:    raw.SliceKey,
		NumExamples: float64(raw.NumExamples),
		SliceMetric: float64(raw.SliceMetric),
		BaseMetric:  float64(raw.BaseMetric),
		PValue:      float64(raw.PValue),
		EffectSize:  float64(raw.EffectSize),
	}
	return nil
}
