package tfma

import (
	"bytes"
	"encoding/json"
	"strings"
)

// unmarshalProto decodes a protojson document into dst, accepting the
// original proto field names (slice_key) as well as lowerCamel (sliceKey).
func unmarshalProto(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return err
	}
	normalized, err := json.Marshal(camelKeys(tree))
	if err != nil {
		return err
	}
	return json.Unmarshal(normalized, dst)
}

func camelKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			camel := lowerCamel(k)
			if _, clash := t[camel]; clash && camel != k {
				continue
			}
			out[camel] = camelKeys(child)
		}
		return out
	case []any:
		for i := range t {
			t[i] = camelKeys(t[i])
		}
		return t
	}
	return v
}

// lowerCamel maps protobuf field names the way protoc derives json_name.
func lowerCamel(name string) string {
	if !strings.Contains(name, "_") {
		return name
	}
	var b strings.Builder
	b.Grow(len(name))
	upper := false
	for _, r := range name {
		if r == '_' {
			upper = true
			continue
		}
		if upper && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		upper = false
		b.WriteRune(r)
	}
	return b.String()
}
