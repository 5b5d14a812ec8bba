package collector

import (
	"strconv"
	"strings"
)

// Options wraps the free-form source configuration with typed accessors.
// Values usually come from JSON, so numbers arrive as float64.
type Options map[string]any

// String returns key as a string or def when absent.
func (o Options) String(key, def string) string {
	switch v := o[key].(type) {
	case string:
		if v != "" {
			return v
		}
	case nil:
	default:
		return strings.TrimSpace(toString(v))
	}
	return def
}

// Float returns key as a float64.
func (o Options) Float(key string) (float64, bool) {
	switch v := o[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// Int returns key as an int or def.
func (o Options) Int(key string, def int) int {
	if f, ok := o.Float(key); ok {
		return int(f)
	}
	return def
}

// Bool returns key as a bool or def.
func (o Options) Bool(key string, def bool) bool {
	switch v := o[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Strings returns key as a string slice.
func (o Options) Strings(key string) []string {
	switch v := o[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, s := range v {
			if str, ok := s.(string); ok && str != "" {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// Map returns a nested string map, e.g. web selectors.
func (o Options) Map(key string) map[string]string {
	out := map[string]string{}
	switch v := o[key].(type) {
	case map[string]string:
		for k, s := range v {
			out[k] = s
		}
	case map[string]any:
		for k, s := range v {
			if str, ok := s.(string); ok {
				out[k] = str
			}
		}
	}
	return out
}

func toString(v any) string {
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}
