package slicing

import (
	"strings"

	"slicefinder/domain/core"
)

// ParseSliceKey reads the raw "feature:value,feature:value" form written by
// SliceKey.String. "Overall" and the empty string are the overall slice.
// Values stay strings exactly as written, so "zip:02139" keeps its leading
// zero. Values cannot contain commas.
func ParseSliceKey(s string) (SliceKey, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "overall") {
		return SliceKey{}, nil
	}

	parts := strings.Split(s, ",")
	key := make(SliceKey, 0, len(parts))
	for _, part := range parts {
		feature, value, ok := strings.Cut(strings.TrimSpace(part), ":")
		feature = strings.TrimSpace(feature)
		if !ok || feature == "" {
			return nil, core.NewInvalidInputError("slice constraint %q is not feature:value", part)
		}
		key = append(key, StringValue(feature, strings.TrimSpace(value)))
	}
	return key, nil
}
