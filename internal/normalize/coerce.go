package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

const maxSteps = 8

// Number coerces numbers and numeric strings. Empty, non-numeric and non-finite
// inputs yield nil.
func Number(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case nil:
		return nil
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
		parsed, err := t.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Int is Number rounded to the nearest integer.
func Int(v any) *int {
	f := Number(v)
	if f == nil {
		return nil
	}
	i := int(math.Round(*f))
	return &i
}

var truthy = map[string]bool{"true": true, "yes": true, "y": true, "1": true}

// Bool recognises booleans, non-zero numbers and the strings true/yes/y/1.
// Anything else is false.
func Bool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return truthy[strings.ToLower(strings.TrimSpace(t))]
	case nil:
		return false
	}
	if f := Number(v); f != nil {
		return *f != 0
	}
	return false
}

// Text renders a primitive as trimmed text. Nested values render as "".
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case []any, map[string]any:
		return ""
	}
	if f := Number(v); f != nil {
		return strconv.FormatFloat(*f, 'f', -1, 64)
	}
	return ""
}

// OptText is Text with "" mapped to nil.
func OptText(v any) *string {
	s := Text(v)
	if s == "" {
		return nil
	}
	return &s
}

// List accepts a native list, a JSON array string or a string delimited by
// ';', ',' or '|'. Entries
// are trimmed, empties dropped and duplicates removed keeping first occurrence.
func List(v any) []string {
	var parts []string
	switch t := v.(type) {
	case []string:
		parts = t
	case []any:
		for _, item := range t {
			parts = append(parts, Text(item))
		}
	case string:
		s := strings.TrimSpace(t)
		var decoded []any
		if strings.HasPrefix(s, "[") && json.Unmarshal([]byte(s), &decoded) == nil {
			for _, item := range decoded {
				parts = append(parts, Text(item))
			}
			break
		}
		parts = strings.FieldsFunc(s, func(r rune) bool {
			return r == ';' || r == ',' || r == '|'
		})
	default:
		if s := Text(v); s != "" {
			parts = []string{s}
		}
	}

	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Steps accepts a native list, a JSON array string or a "||" delimited string,
// in that order, capped at eight entries.
func Steps(v any) []string {
	var parts []string
	switch t := v.(type) {
	case []string:
		parts = t
	case []any:
		for _, item := range t {
			parts = append(parts, Text(item))
		}
	case string:
		s := strings.TrimSpace(t)
		var decoded []any
		if strings.HasPrefix(s, "[") && json.Unmarshal([]byte(s), &decoded) == nil {
			for _, item := range decoded {
				parts = append(parts, Text(item))
			}
		} else {
			parts = strings.Split(s, "||")
		}
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
		if len(out) == maxSteps {
			break
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Time parses timestamps from strings, time values or epoch numbers (treated as
// milliseconds above 1e12, seconds otherwise). Zone-less inputs are UTC.
func Time(v any) *time.Time {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		if t.IsZero() {
			return nil
		}
		u := t.UTC()
		return &u
	case *time.Time:
		if t == nil {
			return nil
		}
		return Time(*t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		for _, layout := range timeLayouts {
			if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				u := parsed.UTC()
				return &u
			}
		}
		if f := Number(s); f != nil {
			return epoch(*f)
		}
		return nil
	}
	if f := Number(v); f != nil {
		return epoch(*f)
	}
	return nil
}

func epoch(f float64) *time.Time {
	if f <= 0 {
		return nil
	}
	var t time.Time
	if f > 1e12 {
		t = time.UnixMilli(int64(f)).UTC()
	} else {
		t = time.Unix(int64(f), 0).UTC()
	}
	return &t
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}
