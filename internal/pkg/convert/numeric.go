// Package convert provides type conversion utilities.
package convert

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseFloat64 converts the numeric forms found in decoded JSON to float64.
// Strings must parse fully and unsupported types are an error.
func ParseFloat64(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	case json.Number:
		return t.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("not numeric: %q", t)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("not numeric: null")
	default:
		return 0, fmt.Errorf("not numeric: %T", v)
	}
}

// ParseInt64 accepts integral numbers in any of the forms ParseFloat64 does.
// Millisecond timestamps exceed float32 but fit float64 exactly.
func ParseInt64(v any) (int64, error) {
	if s, ok := v.(string); ok {
		if i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return i, nil
		}
	}
	f, err := ParseFloat64(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not an integer: %v", v)
	}
	return int64(f), nil
}
