// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package chart builds declarative figures from frames. A Figure holds the
// data series and labels only; rendering is left to the presentation surface
// and the explanation stage reads the structural description from Describe.
package chart

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"askdata/cli/internal/frame"
)

// Kind identifies the figure type.
type Kind string

const (
	KindBar       Kind = "bar"
	KindLine      Kind = "line"
	KindScatter   Kind = "scatter"
	KindPie       Kind = "pie"
	KindHistogram Kind = "histogram"
)

// Trace is one named data series of a figure.
type Trace struct {
	Name   string    `json:"name,omitempty"`
	Labels []string  `json:"x"`
	Values []float64 `json:"y"`
}

// Figure is a chart description.
type Figure struct {
	Kind   Kind    `json:"type"`
	Title  string  `json:"title,omitempty"`
	XLabel string  `json:"xaxis,omitempty"`
	YLabel string  `json:"yaxis,omitempty"`
	Traces []Trace `json:"data"`
}

// Bar plots y against the categories in x. Rows where either is missing are
// skipped.
func Bar(df *frame.Frame, x, y string) *Figure {
	return xy(KindBar, df, x, y)
}

// Line plots y against x in row order.
func Line(df *frame.Frame, x, y string) *Figure {
	return xy(KindLine, df, x, y)
}

// Scatter plots y against x as points.
func Scatter(df *frame.Frame, x, y string) *Figure {
	return xy(KindScatter, df, x, y)
}

// GroupedBar plots one bar trace per distinct value of color.
func GroupedBar(df *frame.Frame, x, y, color string) *Figure {
	fig := &Figure{Kind: KindBar, XLabel: x, YLabel: y}
	for _, g := range df.Col(color).Unique() {
		name := frame.FormatValue(g)
		sub := df.Filter(func(r frame.Row) bool { return r.String(color) == name })
		t := trace(sub, x, y)
		t.Name = name
		fig.Traces = append(fig.Traces, t)
	}
	return fig
}

// Pie shows the share of each name. With an empty values column the slices
// are the row counts per name.
func Pie(df *frame.Frame, names, values string) *Figure {
	fig := &Figure{Kind: KindPie, XLabel: names, YLabel: values}
	if values == "" {
		counts := df.ValueCounts(names)
		fig.YLabel = "count"
		fig.Traces = []Trace{trace(counts, names, "count")}
		return fig
	}
	fig.Traces = []Trace{trace(df, names, values)}
	return fig
}

// Histogram buckets the numeric values of col into bins of equal width.
// Text is converted the way Series.ToNumeric does; bins <= 0 means 10.
func Histogram(df *frame.Frame, col string, bins int) *Figure {
	if bins <= 0 {
		bins = 10
	}
	vals := df.Col(col).ToNumeric().Floats()
	fig := &Figure{Kind: KindHistogram, XLabel: col, YLabel: "count"}
	if len(vals) == 0 {
		fig.Traces = []Trace{{Labels: []string{}, Values: []float64{}}}
		return fig
	}
	sort.Float64s(vals)
	lo, hi := vals[0], vals[len(vals)-1]
	if lo == hi {
		fig.Traces = []Trace{{Labels: []string{frame.FormatValue(lo)}, Values: []float64{float64(len(vals))}}}
		return fig
	}
	width := (hi - lo) / float64(bins)
	counts := make([]float64, bins)
	for _, v := range vals {
		b := int(math.Floor((v - lo) / width))
		if b >= bins {
			b = bins - 1
		}
		counts[b]++
	}
	labels := make([]string, bins)
	for i := range labels {
		from := lo + float64(i)*width
		labels[i] = fmt.Sprintf("%s-%s", frame.FormatValue(from), frame.FormatValue(from+width))
	}
	fig.Traces = []Trace{{Labels: labels, Values: counts}}
	return fig
}

// WithTitle returns a copy of the figure with a title.
func (f *Figure) WithTitle(title string) *Figure {
	out := *f
	out.Title = title
	return &out
}

// WithLabels returns a copy of the figure with axis labels.
func (f *Figure) WithLabels(x, y string) *Figure {
	out := *f
	out.XLabel, out.YLabel = x, y
	return &out
}

// Points returns the number of data points across all traces.
func (f *Figure) Points() int {
	n := 0
	for _, t := range f.Traces {
		n += len(t.Values)
	}
	return n
}

// Describe returns the structural JSON description of the figure.
func (f *Figure) Describe() string {
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Sprintf("{\"type\": %q}", f.Kind)
	}
	return string(b)
}

func (f *Figure) String() string { return f.Describe() }

func xy(kind Kind, df *frame.Frame, x, y string) *Figure {
	return &Figure{Kind: kind, XLabel: x, YLabel: y, Traces: []Trace{trace(df, x, y)}}
}

func trace(df *frame.Frame, x, y string) Trace {
	xs, ys := df.Col(x), df.Col(y).ToNumeric()
	t := Trace{Labels: []string{}, Values: []float64{}}
	for i := 0; i < df.Len(); i++ {
		if xs.IsMissing(i) {
			continue
		}
		v, ok := ys.At(i).(float64)
		if !ok {
			continue
		}
		t.Labels = append(t.Labels, frame.FormatValue(xs.At(i)))
		t.Values = append(t.Values, v)
	}
	return t
}
