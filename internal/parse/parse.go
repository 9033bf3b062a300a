// Package parse converts loosely typed JSON values from the Airzone Cloud API
// into normalized optional values. A nil result means the value was absent or
// could not be coerced.
package parse

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Bool accepts booleans, numbers (non-zero is true) and the strings understood
// by strconv.ParseBool.
func Bool(v any) *bool {
	switch t := v.(type) {
	case bool:
		return &t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return nil
		}
		return &b
	}
	if f := number(v); f != nil {
		b := *f != 0
		return &b
	}
	return nil
}

// int64 range, as float bounds
const (
	minInt = -1 << 63
	maxInt = 1 << 63
)

// Int accepts integers, finite floats (truncated) and numeric strings.
func Int(v any) *int {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if i, err := strconv.Atoi(s); err == nil {
			return &i
		}
		v = s
	}
	f := number(v)
	if f == nil || *f < minInt || *f >= maxInt {
		return nil
	}
	i := int(*f)
	return &i
}

// Float accepts any number and numeric strings.
func Float(v any) *float64 {
	return number(v)
}

// Str passes strings through and formats numbers.
func Str(v any) *string {
	switch t := v.(type) {
	case string:
		return &t
	case json.Number:
		s := t.String()
		return &s
	case int:
		s := strconv.Itoa(t)
		return &s
	case int64:
		s := strconv.FormatInt(t, 10)
		return &s
	case bool:
		return nil
	}
	if f := number(v); f != nil {
		s := strconv.FormatFloat(*f, 'f', -1, 64)
		return &s
	}
	return nil
}

// Map returns v as a JSON object, or nil.
func Map(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// Strs returns the string elements of a JSON list. ok is false when v is not
// a list at all; non-string elements are formatted through Str or dropped.
func Strs(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return append([]string{}, t...), true
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s := Str(e); s != nil {
				out = append(out, *s)
			}
		}
		return out, true
	}
	return nil, false
}

func number(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int8:
		f = float64(t)
	case int16:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint8:
		f = float64(t)
	case uint16:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return nil
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		f = n
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
