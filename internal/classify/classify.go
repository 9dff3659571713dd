// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package classify decides how a program's result is explained.
package classify

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"askdata/cli/internal/chart"
	"askdata/cli/internal/errors"
	"askdata/cli/internal/frame"
	"askdata/cli/internal/sandbox"
)

// Kind is the explanation template a result is routed to.
type Kind string

const (
	KindChart Kind = "chart"
	KindValue Kind = "value"
)

// MissingMarker is the payload of a value classification when the program
// bound nothing.
const MissingMarker = "(no result: the program did not bind output_data)"

// Classification is a successful result ready for explanation.
type Classification struct {
	Kind Kind
	// Figure is set for charts.
	Figure *chart.Figure
	// Value is the bound value; nil when Missing.
	Value   any
	Missing bool
}

// Classify maps an execution outcome to a classification. A chart takes
// precedence; everything else, Missing included, is a value. Failed
// outcomes return their typed error.
func Classify(o sandbox.Outcome) (Classification, error) {
	if o.Status != sandbox.StatusSuccess {
		if err := o.Err(); err != nil {
			return Classification{}, err
		}
		return Classification{}, errors.New(errors.KindUnknown, "unexpected outcome "+o.Status.String())
	}

	a := o.Artifact
	switch {
	case a.Kind == sandbox.ArtifactChart && a.Figure != nil:
		return Classification{Kind: KindChart, Figure: a.Figure}, nil
	case a.Kind == sandbox.ArtifactValue:
		return Classification{Kind: KindValue, Value: a.Value}, nil
	}
	return Classification{Kind: KindValue, Missing: true}, nil
}

// Payload is the text handed to the explanation prompt: the structural
// description of a chart, or the displayable content of a value.
func (c Classification) Payload() string {
	if c.Kind == KindChart {
		return c.Figure.Describe()
	}
	if c.Missing {
		return MissingMarker
	}
	return Render(c.Value)
}

// Render formats a value the way it is shown to the explanation stage.
func Render(v any) string {
	switch t := v.(type) {
	case nil:
		return MissingMarker
	case string:
		return t
	case *frame.Frame:
		return t.String()
	case *frame.Series:
		return t.String()
	case float64, time.Time:
		return frame.FormatValue(t)
	case fmt.Stringer:
		return t.String()
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = Render(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, len(keys))
		for i, k := range keys {
			lines[i] = k + ": " + Render(t[k])
		}
		return strings.Join(lines, "\n")
	}
	return fmt.Sprint(v)
}
