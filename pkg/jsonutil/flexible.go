package jsonutil

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FlexibleStringValue converts a loosely-typed document value to a string, handling
// documents that store numbers or booleans where a string is expected.
// Returns ("", false) for nil and for values that have no sensible string form (maps, slices).
func FlexibleStringValue(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case bool:
		return strconv.FormatBool(val), true
	case []byte:
		return string(val), true
	case map[string]any, []any:
		return "", false
	}

	if f, ok := FlexibleFloatValue(v); ok {
		if f == math.Trunc(f) && math.Abs(f) < 1e15 {
			return strconv.FormatInt(int64(f), 10), true
		}
		return strconv.FormatFloat(f, 'g', -1, 64), true
	}

	if s, ok := v.(fmt.Stringer); ok {
		return s.String(), true
	}
	return "", false
}

// FlexibleFloatValue converts numbers and numeric strings to float64.
// Strings are trimmed; anything that does not parse cleanly returns false,
// and so do NaN and the infinities, which no numeric column can hold.
func FlexibleFloatValue(v any) (float64, bool) {
	f, ok := numericValue(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func numericValue(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

// FlexibleIntValue converts a value to int64, truncating fractional parts.
func FlexibleIntValue(v any) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int64:
		return val, true
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, true
		}
	}
	f, ok := FlexibleFloatValue(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}

// FlexibleBoolValue accepts booleans, 0/1 style numbers and the usual string spellings.
func FlexibleBoolValue(v any) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "1", "yes", "y", "on":
			return true, true
		case "false", "0", "no", "n", "off":
			return false, true
		}
		return false, false
	}
	if f, ok := FlexibleFloatValue(v); ok {
		return f != 0, true
	}
	return false, false
}
