// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package frame

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultDateLayouts are tried in order by ToDate when no layout is given.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
	"Jan-2006",
}

// Series is a named, immutable column of values.
// A value is one of nil (missing), string, float64, bool or time.Time.
type Series struct {
	name   string
	values []any
}

// NewSeries creates a series from arbitrary values. Integers are widened to
// float64 and empty strings become missing.
func NewSeries(name string, values []any) *Series {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = normalize(v)
	}
	return &Series{name: name, values: out}
}

// Floats creates a numeric series.
func Floats(name string, values []float64) *Series {
	out := make([]any, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		out[i] = v
	}
	return &Series{name: name, values: out}
}

// Strings creates a text series; blank entries are missing.
func Strings(name string, values []string) *Series {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = normalize(v)
	}
	return &Series{name: name, values: out}
}

func normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		return t
	case float64:
		if math.IsNaN(t) {
			return nil
		}
		return t
	case float32:
		return normalize(float64(t))
	case int:
		return float64(t)
	case int8:
		return float64(t)
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case uint8:
		return float64(t)
	case uint16:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case bool, time.Time:
		return t
	case *time.Time:
		if t == nil {
			return nil
		}
		return *t
	case []byte:
		return normalize(string(t))
	case fmt.Stringer:
		return normalize(t.String())
	default:
		return fmt.Sprint(t)
	}
}

// Name returns the column name.
func (s *Series) Name() string { return s.name }

// Rename returns a copy of the series under a new name.
func (s *Series) Rename(name string) *Series {
	return &Series{name: name, values: s.values}
}

// Len returns the number of entries, missing ones included.
func (s *Series) Len() int { return len(s.values) }

// At returns the i-th value (nil when missing).
func (s *Series) At(i int) any { return s.values[i] }

// IsMissing reports whether the i-th value is missing.
func (s *Series) IsMissing(i int) bool { return s.values[i] == nil }

// Values returns a copy of the raw values.
func (s *Series) Values() []any {
	out := make([]any, len(s.values))
	copy(out, s.values)
	return out
}

// Count returns the number of non-missing values.
func (s *Series) Count() int {
	n := 0
	for _, v := range s.values {
		if v != nil {
			n++
		}
	}
	return n
}

// IsEmpty reports whether the series holds no non-missing value.
// Mean, Max, Min, IdxMax and IdxMin panic on an empty series.
func (s *Series) IsEmpty() bool { return s.Count() == 0 }

// DropMissing returns the series without missing entries.
func (s *Series) DropMissing() *Series {
	out := make([]any, 0, len(s.values))
	for _, v := range s.values {
		if v != nil {
			out = append(out, v)
		}
	}
	return &Series{name: s.name, values: out}
}

// Map applies fn to every value. The result is normalized like NewSeries.
func (s *Series) Map(fn func(v any) any) *Series {
	out := make([]any, len(s.values))
	for i, v := range s.values {
		out[i] = normalize(fn(v))
	}
	return &Series{name: s.name, values: out}
}

// ToNumeric converts text to float64. Thousands separators and surrounding
// blanks are stripped; anything that still does not parse becomes missing.
func (s *Series) ToNumeric() *Series {
	out := make([]any, len(s.values))
	for i, v := range s.values {
		if f, ok := toFloat(v); ok {
			out[i] = f
		}
	}
	return &Series{name: s.name, values: out}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		clean := strings.TrimSpace(t)
		clean = strings.ReplaceAll(clean, ",", "")
		clean = strings.ReplaceAll(clean, " ", "")
		if clean == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(clean, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ToDate parses text into time.Time using the given layouts (DefaultDateLayouts
// when none). Unparseable entries become missing.
func (s *Series) ToDate(layouts ...string) *Series {
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}
	out := make([]any, len(s.values))
	for i, v := range s.values {
		switch t := v.(type) {
		case time.Time:
			out[i] = t
		case string:
			for _, layout := range layouts {
				if ts, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
					out[i] = ts
					break
				}
			}
		}
	}
	return &Series{name: s.name, values: out}
}

// Period formats dates with a time layout ("2006-01" for months, "2006" for
// years). Entries that are not dates become missing.
func (s *Series) Period(layout string) *Series {
	out := make([]any, len(s.values))
	for i, v := range s.values {
		if t, ok := v.(time.Time); ok {
			out[i] = t.Format(layout)
		}
	}
	return &Series{name: s.name, values: out}
}

// YearsSince returns whole years elapsed between each date and now.
// Entries that are not dates become missing.
func (s *Series) YearsSince(now time.Time) *Series {
	out := make([]any, len(s.values))
	for i, v := range s.values {
		t, ok := v.(time.Time)
		if !ok {
			continue
		}
		years := now.Year() - t.Year()
		if now.Month() < t.Month() || (now.Month() == t.Month() && now.Day() < t.Day()) {
			years--
		}
		out[i] = float64(years)
	}
	return &Series{name: s.name, values: out}
}

// Floats returns the numeric non-missing values.
func (s *Series) Floats() []float64 {
	out := make([]float64, 0, len(s.values))
	for _, v := range s.values {
		if f, ok := v.(float64); ok {
			out = append(out, f)
		}
	}
	return out
}

// Strings renders every value; missing entries become "".
func (s *Series) Strings() []string {
	out := make([]string, len(s.values))
	for i, v := range s.values {
		out[i] = FormatValue(v)
	}
	return out
}

// Unique returns the distinct non-missing values in first-seen order.
func (s *Series) Unique() []any {
	seen := make(map[string]bool)
	var out []any
	for _, v := range s.values {
		if v == nil {
			continue
		}
		k := key(v)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, v)
	}
	return out
}

// Sum adds the numeric values; an empty series sums to 0.
func (s *Series) Sum() float64 {
	total := 0.0
	for _, f := range s.Floats() {
		total += f
	}
	return total
}

// Mean returns the average of the numeric values.
func (s *Series) Mean() float64 {
	vals := s.numeric("mean")
	return sumOf(vals) / float64(len(vals))
}

// Max returns the largest numeric value.
func (s *Series) Max() float64 {
	return s.number("max", "MaxDate", s.IdxMax())
}

// Min returns the smallest numeric value.
func (s *Series) Min() float64 {
	return s.number("min", "MinDate", s.IdxMin())
}

// MaxDate returns the latest date of a ToDate series.
func (s *Series) MaxDate() time.Time {
	return s.date("maxdate", "Max", s.IdxMax())
}

// MinDate returns the earliest date of a ToDate series.
func (s *Series) MinDate() time.Time {
	return s.date("mindate", "Min", s.IdxMin())
}

// IdxMax returns the row position of the largest value. Numbers are
// compared when the series holds any; otherwise dates are.
func (s *Series) IdxMax() int {
	return s.extreme("idxmax", true)
}

// IdxMin returns the row position of the smallest value, with the same
// ordering rules as IdxMax.
func (s *Series) IdxMin() int {
	return s.extreme("idxmin", false)
}

func (s *Series) extreme(op string, largest bool) int {
	best := -1
	var bestVal float64
	for i, v := range s.values {
		f, ok := v.(float64)
		if !ok {
			continue
		}
		if best < 0 || (largest && f > bestVal) || (!largest && f < bestVal) {
			best, bestVal = i, f
		}
	}
	if best >= 0 {
		return best
	}
	var bestTime time.Time
	for i, v := range s.values {
		t, ok := v.(time.Time)
		if !ok {
			continue
		}
		if best < 0 || (largest && t.After(bestTime)) || (!largest && t.Before(bestTime)) {
			best, bestTime = i, t
		}
	}
	if best < 0 {
		panic(fmt.Sprintf("frame: %s of empty series %q", op, s.name))
	}
	return best
}

func (s *Series) number(op, alt string, i int) float64 {
	f, ok := s.values[i].(float64)
	if !ok {
		panic(fmt.Sprintf("frame: %s of date series %q: use %s", op, s.name, alt))
	}
	return f
}

func (s *Series) date(op, alt string, i int) time.Time {
	t, ok := s.values[i].(time.Time)
	if !ok {
		panic(fmt.Sprintf("frame: %s of numeric series %q: use %s", op, s.name, alt))
	}
	return t
}

func (s *Series) numeric(op string) []float64 {
	vals := s.Floats()
	if len(vals) == 0 {
		panic(fmt.Sprintf("frame: %s of empty series %q", op, s.name))
	}
	return vals
}

func (s *Series) take(idx []int) *Series {
	out := make([]any, len(idx))
	for i, j := range idx {
		out[i] = s.values[j]
	}
	return &Series{name: s.name, values: out}
}

func sumOf(vals []float64) float64 {
	total := 0.0
	for _, v := range vals {
		total += v
	}
	return total
}

// FormatValue renders a single value the way tables show it.
// Whole numbers print without decimals, other numbers with two.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', 2, 64)
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format("2006-01-02 15:04:05")
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// key is the grouping identity of a value. Unlike FormatValue it keeps
// every digit, so values that display alike still group apart.
func key(v any) string {
	switch t := v.(type) {
	case float64:
		return "f:" + strconv.FormatFloat(t, 'g', -1, 64)
	case time.Time:
		return "t:" + t.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%T:%s", v, FormatValue(v))
	}
}
