// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dataset

import (
	"strconv"
	"strings"
	"time"

	"askdata/cli/internal/frame"
)

// sampleSize caps how many values are inspected per column.
const sampleSize = 1000

// matchThreshold is the share of non-missing values that must parse for a
// column to count as numeric or date.
const matchThreshold = 0.8

var nullMarkers = map[string]bool{"null": true, "n/a": true, "na": true, "none": true, "-": true}

// InferColumns classifies every column of f by sampling its values:
// type first (date, numeric, text), then cardinality decides between
// identifier, categorical and free text.
func InferColumns(f *frame.Frame) []Column {
	names := f.Columns()
	out := make([]Column, len(names))
	for i, name := range names {
		out[i] = inferColumn(f.Col(name))
	}
	return out
}

func inferColumn(s *frame.Series) Column {
	col := Column{Name: s.Name(), Role: RoleText}

	var (
		texts   []string
		numbers int
		dates   int
		total   int
		unique  = make(map[string]bool)
	)
	for i := 0; i < s.Len() && total < sampleSize; i++ {
		switch v := s.At(i).(type) {
		case nil:
			continue
		case float64:
			numbers++
		case time.Time:
			dates++
		case string:
			if nullMarkers[strings.ToLower(strings.TrimSpace(v))] {
				continue
			}
			texts = append(texts, v)
		}
		total++
		unique[frame.FormatValue(s.At(i))] = true
	}
	if total == 0 {
		return col
	}

	threshold := int(float64(total) * matchThreshold)
	if threshold < 1 {
		threshold = 1
	}

	if layout, n := dateLayout(texts); dates+n >= threshold {
		col.Role = RoleDate
		col.DateLayout = layout
		return col
	}

	textNumbers, formatted := 0, false
	for _, t := range texts {
		if clean, ok := numericText(t); ok {
			textNumbers++
			if clean != strings.TrimSpace(t) {
				formatted = true
			}
		}
	}
	if numbers+textNumbers >= threshold {
		col.Role = RoleNumeric
		col.NumericText = textNumbers > 0 && (formatted || textNumbers < len(texts))
		if looksLikeID(col.Name) && len(unique) == total {
			col.Role = RoleIdentifier
			col.NumericText = false
		}
		return col
	}

	switch {
	case len(unique) == total && (total > 10 || looksLikeID(col.Name)):
		if looksLikeID(col.Name) {
			col.Role = RoleIdentifier
		} else {
			col.Role = RoleText
		}
	case len(unique) <= 20 || float64(len(unique)) <= 0.5*float64(total):
		col.Role = RoleCategorical
	default:
		col.Role = RoleText
	}
	return col
}

// numericText strips thousands separators and blanks and reports whether the
// rest parses as a number.
func numericText(s string) (string, bool) {
	clean := strings.TrimSpace(s)
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.ReplaceAll(clean, " ", "")
	if clean == "" {
		return clean, false
	}
	_, err := strconv.ParseFloat(clean, 64)
	return clean, err == nil
}

// dateLayout finds the layout that parses the most values.
func dateLayout(texts []string) (string, int) {
	best, bestN := "", 0
	for _, layout := range frame.DefaultDateLayouts {
		n := 0
		for _, t := range texts {
			if _, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
				n++
			}
		}
		if n > bestN {
			best, bestN = layout, n
		}
	}
	return best, bestN
}

func looksLikeID(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	return n == "id" || strings.HasSuffix(n, "id") || strings.HasSuffix(n, "_id") || strings.HasSuffix(n, " id")
}
