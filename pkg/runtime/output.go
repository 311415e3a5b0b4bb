package runtime

import (
	"encoding/json"
	"math"
)

// Number converts a numeric output value.
func Number(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	}

	return 0, false
}

// Int converts a numeric output value holding an integer.
func Int(v any) (int, bool) {
	f, ok := Number(v)

	if !ok || f != math.Trunc(f) {
		return 0, false
	}

	return int(f), true
}

// Field returns the first present key of an object output.
func Field(v any, keys ...string) (any, bool) {
	m, ok := v.(map[string]any)

	if !ok {
		return nil, false
	}

	for _, key := range keys {
		if val, ok := m[key]; ok && val != nil {
			return val, true
		}
	}

	return nil, false
}
