package intake

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/homeeasy/internal/model"
)

const (
	reasonRequired    = "is required"
	reasonNotNumber   = "must be a number"
	reasonNegative    = "must not be negative"
	reasonNotInteger  = "must be a whole number"
	reasonTooLarge    = "is too large"
	reasonNotDate     = "must be a valid date (YYYY-MM-DD)"
	reasonNotBool     = "must be true or false"
	reasonNotTime     = "must be a time of day (HH:MM)"
	reasonNotClientID = "must be a numeric client identifier"
)

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// fields reads typed values out of a Raw map, accumulating every problem
// instead of stopping at the first one.
type fields struct {
	raw  Raw
	errs Errors
}

func newFields(raw Raw) *fields {
	return &fields{raw: raw}
}

func (f *fields) fail(field, reason string) {
	f.errs = append(f.errs, ValidationError{Field: field, Reason: reason})
}

func (f *fields) err() error {
	if len(f.errs) == 0 {
		return nil
	}
	return f.errs
}

// lookup returns the value for field, treating nil, blank strings and empty
// lists as absent.
func (f *fields) lookup(field string) (any, bool) {
	v, ok := f.raw[field]
	if !ok || v == nil {
		return nil, false
	}
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return nil, false
		}
	case []string:
		if len(t) == 0 {
			return nil, false
		}
		if len(t) == 1 {
			return f.lookupValue(t[0])
		}
	case []any:
		if len(t) == 0 {
			return nil, false
		}
	}
	return v, true
}

func (f *fields) lookupValue(s string) (any, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, false
	}
	return s, true
}

func (f *fields) present(field string) bool {
	_, ok := f.lookup(field)
	return ok
}

// require records one "is required" error per absent field and reports
// whether all were present.
func (f *fields) require(names ...string) bool {
	all := true
	for _, name := range names {
		if !f.present(name) {
			f.fail(name, reasonRequired)
			all = false
		}
	}
	return all
}

func (f *fields) text(field string) string {
	v, ok := f.lookup(field)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []string:
		return strings.TrimSpace(strings.Join(t, "\n"))
	case json.Number:
		return t.String()
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// number parses a non-negative number. ok is false when the field is absent
// or invalid; invalid values are recorded.
func (f *fields) number(field string) (float64, bool) {
	v, ok := f.lookup(field)
	if !ok {
		return 0, false
	}
	n, err := toFloat(v)
	if err != nil {
		f.fail(field, reasonNotNumber)
		return 0, false
	}
	if n < 0 {
		f.fail(field, reasonNegative)
		return 0, false
	}
	return n, true
}

func (f *fields) integer(field string) (int64, bool) {
	n, ok := f.number(field)
	if !ok {
		return 0, false
	}
	if n != math.Trunc(n) {
		f.fail(field, reasonNotInteger)
		return 0, false
	}
	// float64(math.MaxInt64) rounds up to 1<<63, which int64 cannot hold.
	if n >= 1<<63 {
		f.fail(field, reasonTooLarge)
		return 0, false
	}
	return int64(n), true
}

// between applies an inclusive range check to a parsed value.
func (f *fields) between(field string, v, lo, hi float64) bool {
	if v < lo || v > hi {
		f.fail(field, fmt.Sprintf("must be between %s and %s", formatNumber(lo), formatNumber(hi)))
		return false
	}
	return true
}

// halfStep checks that v is a multiple of 0.5.
func (f *fields) halfStep(field string, v float64) bool {
	if math.Mod(v*2, 1) != 0 {
		f.fail(field, "must be in steps of 0.5")
		return false
	}
	return true
}

func (f *fields) optNumber(field string) *float64 {
	n, ok := f.number(field)
	if !ok {
		return nil
	}
	return &n
}

func (f *fields) optInteger(field string) *int64 {
	n, ok := f.integer(field)
	if !ok {
		return nil
	}
	return &n
}

func (f *fields) date(field string) (time.Time, bool) {
	v, ok := f.lookup(field)
	if !ok {
		return time.Time{}, false
	}
	d, err := toDate(v)
	if err != nil {
		f.fail(field, reasonNotDate)
		return time.Time{}, false
	}
	return d, true
}

func (f *fields) optDate(field string) *time.Time {
	d, ok := f.date(field)
	if !ok {
		return nil
	}
	return &d
}

func (f *fields) clock(field string) (*model.Clock, bool) {
	v, ok := f.lookup(field)
	if !ok {
		return nil, true
	}
	c, err := toClock(v)
	if err != nil {
		f.fail(field, reasonNotTime)
		return nil, false
	}
	return &c, true
}

// flag reads a checkbox-style boolean; absent means false.
func (f *fields) flag(field string) bool {
	v, ok := f.lookup(field)
	if !ok {
		return false
	}
	b, err := toBool(v)
	if err != nil {
		f.fail(field, reasonNotBool)
		return false
	}
	return b
}

// list splits a multi-value field. Strings are split on commas, semicolons
// and newlines.
func (f *fields) list(field string) []string {
	v, ok := f.lookup(field)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case string:
		return splitTokens(t)
	case []string:
		var out []string
		for _, s := range t {
			out = append(out, splitTokens(s)...)
		}
		return out
	case []any:
		var out []string
		for _, item := range t {
			switch s := item.(type) {
			case string:
				out = append(out, splitTokens(s)...)
			case nil:
			default:
				out = append(out, fmt.Sprint(s))
			}
		}
		return out
	case json.Number:
		return []string{t.String()}
	default:
		return []string{fmt.Sprint(t)}
	}
}

// enum resolves a categorical field against its closed set. Absent values
// return the zero value.
func enum[T ~string](f *fields, field string, parse func(string) (T, bool)) T {
	var zero T
	s := f.text(field)
	if s == "" || strings.Trim(s, "-") == "" {
		return zero
	}
	v, ok := parse(s)
	if !ok {
		f.fail(field, fmt.Sprintf("has unknown value %q", s))
		return zero
	}
	return v
}

// maxAtLeast checks that an optional "*_max" value is not below its base.
func (f *fields) maxAtLeast(maxField, baseField string, ok bool, cmp int) {
	if ok && cmp < 0 {
		f.fail(maxField, "must be greater than or equal to "+baseField)
	}
}

func (f *fields) clientID(field string) int64 {
	v, ok := f.lookup(field)
	if !ok {
		return 0
	}
	id, err := toClientID(v)
	if err != nil {
		f.fail(field, reasonNotClientID)
		return 0
	}
	return id
}

func toFloat(v any) (float64, error) {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case float32:
		n = float64(t)
	case int:
		n = float64(t)
	case int64:
		n = float64(t)
	case int32:
		n = float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, err
		}
		n = f
	case string:
		s := strings.TrimSpace(t)
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		n = f
	default:
		return 0, fmt.Errorf("unsupported number type %T", v)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	return n, nil
}

func toDate(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, s); err == nil {
				return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	}
	return time.Time{}, fmt.Errorf("unsupported date type %T", v)
}

func toClock(v any) (model.Clock, error) {
	switch t := v.(type) {
	case string:
		return model.ParseClock(t)
	case model.Clock:
		return t, nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, err
		}
		return model.ClockFromMinutes(n)
	}
	return 0, fmt.Errorf("unsupported time type %T", v)
}

func toBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "on", "1", "checked":
			return true, nil
		case "false", "no", "n", "off", "0":
			return false, nil
		}
	case json.Number:
		switch t.String() {
		case "1":
			return true, nil
		case "0":
			return false, nil
		}
	case float64:
		if t == 0 || t == 1 {
			return t == 1, nil
		}
	}
	return false, fmt.Errorf("not a boolean: %v", v)
}

func toClientID(v any) (int64, error) {
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case json.Number:
		s = t.String()
	case int64:
		s = strconv.FormatInt(t, 10)
	case int:
		s = strconv.Itoa(t)
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("fractional id")
		}
		s = strconv.FormatFloat(t, 'f', 0, 64)
	default:
		return 0, fmt.Errorf("unsupported id type %T", v)
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be positive")
	}
	return id, nil
}

func splitTokens(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
