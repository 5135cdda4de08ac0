package tfma

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// doubleValue decodes a google.protobuf.DoubleValue as protojson writes it
// (a bare number, or "NaN"/"Infinity" strings) and also as the
// {"value": x} object form text-format conversions produce.
type doubleValue float64

func (d *doubleValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = 0
		return nil
	}

	switch data[0] {
	case '{':
		var wrapped struct {
			Value *doubleValue `json:"value"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return err
		}
		if wrapped.Value != nil {
			*d = *wrapped.Value
		}
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch s {
		case "NaN":
			*d = doubleValue(math.NaN())
		case "Infinity":
			*d = doubleValue(math.Inf(1))
		case "-Infinity":
			*d = doubleValue(math.Inf(-1))
		default:
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fmt.Errorf("invalid double %q", s)
			}
			*d = doubleValue(f)
		}
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*d = doubleValue(f)
	return nil
}

func (d *doubleValue) float() (float64, bool) {
	if d == nil {
		return 0, false
	}
	return float64(*d), true
}

// int64Value decodes protojson int64/uint64, which are strings, and also
// accepts bare numbers.
type int64Value int64

func (v *int64Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid int64 %q", s)
		}
		*v = int64Value(i)
		return nil
	}
	var i int64
	if err := json.Unmarshal(data, &i); err != nil {
		return err
	}
	*v = int64Value(i)
	return nil
}
