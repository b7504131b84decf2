package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coercion helpers for loosely-typed JSON input. Each converts
// best-effort into the strict field type and fails with a
// ValidationError when the value cannot be represented.

func toNumber(v any) (float64, error) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int32:
		n = float64(x)
	case int64:
		n = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, validationErrorf("expected a numeric value")
		}
		n = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, validationErrorf("expected a numeric value")
		}
		n = parsed
	case bool:
		if x {
			n = 1
		}
	default:
		return 0, validationErrorf("expected a numeric value")
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, validationErrorf("expected a numeric value")
	}
	return n, nil
}

func toBoolean(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case float64:
		return x != 0, nil
	case int:
		return x != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "1", "yes", "on":
			return true, nil
		case "false", "0", "no", "off":
			return false, nil
		}
	}
	return false, validationErrorf("expected a boolean value")
}

func toStringSlice(v any) ([]string, error) {
	switch x := v.(type) {
	case nil:
		return []string{}, nil
	case []string:
		out := make([]string, len(x))
		copy(out, x)
		return out, nil
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			out = append(out, toText(item))
		}
		return out, nil
	}
	return nil, validationErrorf("expected thumbnails to be an array of strings")
}

// toText stringifies any scalar the way loosely-typed clients expect:
// numbers without a trailing ".0", booleans as "true"/"false".
func toText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	return fmt.Sprint(v)
}

// formatID renders a coerced numeric id for error messages ("3", not "3.000000").
func formatID(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
