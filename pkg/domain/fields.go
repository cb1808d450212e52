package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Fields is a decoded JSON object supplied to Create or Update. Keys outside a
// kind's schema are ignored.
type Fields map[string]any

// Reserved keys are owned by the store and never read from input.
const (
	fieldID        = "id"
	fieldCreatedAt = "createdAt"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Dates must stay within the years encoding/json can render.
var (
	minDate = time.Date(0, time.January, 1, 0, 0, 0, 0, time.UTC)
	maxDate = time.Date(9999, time.December, 31, 23, 59, 59, 999999999, time.UTC)
)

// applier copies schema fields out of Fields, remembering the first coercion
// failure. Absent keys leave the destination untouched; null resets it.
type applier struct {
	kind   Kind
	fields Fields
	err    error
}

func (f Fields) applier(kind Kind) *applier {
	return &applier{kind: kind, fields: f}
}

func (a *applier) Err() error { return a.err }

func (a *applier) lookup(name string) (any, bool) {
	if a.err != nil || name == fieldID || name == fieldCreatedAt {
		return nil, false
	}
	v, ok := a.fields[name]
	return v, ok
}

func (a *applier) fail(name, format string, args ...any) {
	if a.err == nil {
		a.err = &ValidationError{Kind: a.kind, Field: name, Message: fmt.Sprintf(format, args...)}
	}
}

func (a *applier) String(name string, dst *string) {
	v, ok := a.lookup(name)
	if !ok {
		return
	}
	switch t := v.(type) {
	case nil:
		*dst = ""
	case string:
		*dst = t
	case json.Number:
		*dst = t.String()
	case float64:
		*dst = strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		*dst = strconv.Itoa(t)
	case bool:
		*dst = strconv.FormatBool(t)
	default:
		a.fail(name, "expected string, got %T", v)
	}
}

func (a *applier) Strings(name string, dst *[]string) {
	v, ok := a.lookup(name)
	if !ok {
		return
	}
	if v == nil {
		*dst = []string{}
		return
	}
	items, isList := v.([]any)
	if !isList {
		// a scalar becomes a single-element list
		var s string
		sub := &applier{kind: a.kind, fields: Fields{name: v}}
		sub.String(name, &s)
		if sub.err != nil {
			a.fail(name, "expected list of strings, got %T", v)
			return
		}
		*dst = []string{s}
		return
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		var s string
		sub := &applier{kind: a.kind, fields: Fields{name: item}}
		sub.String(name, &s)
		if sub.err != nil {
			a.fail(fmt.Sprintf("%s[%d]", name, i), "expected string, got %T", item)
			return
		}
		out = append(out, s)
	}
	*dst = out
}

func (a *applier) number(name string, v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			a.fail(name, "invalid number %q", t.String())
			return 0, false
		}
		f = parsed
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			return 0, true
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			a.fail(name, "invalid number %q", t)
			return 0, false
		}
		f = parsed
	default:
		a.fail(name, "expected number, got %T", v)
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		a.fail(name, "number out of range")
		return 0, false
	}
	return f, true
}

func (a *applier) Number(name string, dst *float64) {
	v, ok := a.lookup(name)
	if !ok {
		return
	}
	if v == nil {
		*dst = 0
		return
	}
	if f, ok := a.number(name, v); ok {
		*dst = f
	}
}

func (a *applier) Int(name string, dst *int) {
	v, ok := a.lookup(name)
	if !ok {
		return
	}
	if v == nil {
		*dst = 0
		return
	}
	f, ok := a.number(name, v)
	if !ok {
		return
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		a.fail(name, "expected integer, got %v", f)
		return
	}
	*dst = int(f)
}

func (a *applier) date(name string, v any) (time.Time, bool) {
	switch t := v.(type) {
	case string:
		trimmed := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				parsed = parsed.UTC()
				if parsed.Before(minDate) || parsed.After(maxDate) {
					a.fail(name, "date %q out of range", t)
					return time.Time{}, false
				}
				return parsed, true
			}
		}
		a.fail(name, "invalid date %q", t)
		return time.Time{}, false
	case json.Number, float64:
		ms, ok := a.number(name, t)
		if !ok {
			return time.Time{}, false
		}
		if ms < float64(minDate.UnixMilli()) || ms > float64(maxDate.UnixMilli()) {
			a.fail(name, "date %v out of range", ms)
			return time.Time{}, false
		}
		return time.UnixMilli(int64(ms)).UTC(), true
	default:
		a.fail(name, "expected date, got %T", v)
		return time.Time{}, false
	}
}

func (a *applier) Date(name string, dst *time.Time) {
	v, ok := a.lookup(name)
	if !ok {
		return
	}
	if v == nil {
		*dst = time.Time{}
		return
	}
	if t, ok := a.date(name, v); ok {
		*dst = t
	}
}

func (a *applier) OptionalDate(name string, dst **time.Time) {
	v, ok := a.lookup(name)
	if !ok {
		return
	}
	if v == nil {
		*dst = nil
		return
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		*dst = nil
		return
	}
	if t, ok := a.date(name, v); ok {
		*dst = &t
	}
}

func applyEnum[T ~string](a *applier, name string, dst *T, allowed []T) {
	v, ok := a.lookup(name)
	if !ok {
		return
	}
	if v == nil {
		*dst = ""
		return
	}
	s, isString := v.(string)
	if !isString {
		a.fail(name, "expected one of %v, got %T", allowed, v)
		return
	}
	for _, candidate := range allowed {
		if string(candidate) == s {
			*dst = candidate
			return
		}
	}
	a.fail(name, "%q is not one of %v", s, allowed)
}
