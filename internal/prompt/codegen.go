// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package prompt builds the two completion requests of a query: the code
// generation prompt and the explanation prompt.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"askdata/cli/internal/llm"
)

// Descriptor is everything the code generation prompt says about a dataset.
type Descriptor struct {
	Dataset string
	Columns []string
	// Synonyms map informal terms to columns.
	Synonyms []Synonym
	// NumericText columns hold numbers as text and need ToNumeric.
	NumericText []string
	Dates       []DateColumn
	// Required fields are dropped when missing before any computation.
	Required []string
	// Rules are extra domain rules, one sentence each.
	Rules   []string
	Framing Framing
}

// Synonym maps informal terms to a column.
type Synonym struct {
	Column string   `yaml:"column"`
	Terms  []string `yaml:"terms"`
}

// DateColumn describes a date stored as text.
type DateColumn struct {
	Column string `yaml:"column"`
	Layout string `yaml:"layout"`
	Note   string `yaml:"note,omitempty"`
}

const codegenSystem = "You are a helpful data assistant that generates Go code to process tabular data."

// contract is the output contract every generated program must follow.
var contract = []string{
	"Before computing anything, drop rows with missing values in the fields the answer needs using DropMissing.",
	"Before grouping or bucketing by anything derived from a date (months, quarters, years, ages), convert the column with ToDate and drop the rows whose date could not be parsed.",
	"Numeric-looking text columns must go through ToNumeric (it strips thousands separators; invalid entries become missing) before any arithmetic or comparison.",
	"Before Max, Min, MaxDate, MinDate, Mean, IdxMax or IdxMin, check IsEmpty() on the series; if it is empty, fall back to a neutral default such as nil or 0 instead of calling the aggregation.",
	"Show charts only with st.Chart(fig). Never write files or open external viewers.",
	"Display the result through st (st.Table, st.Chart or st.Write) before binding it, and make the assignment to output_data the final statement.",
	"If the result is a chart, assign it to fig and leave output_data nil: no descriptive text.",
	"Return only Go code: no markdown fences, no explanations, no prose before or after the code.",
}

const libraryReference = `Your code is the body of this Go function (do not write the signature, package clause or a return statement):

    func Run(df *frame.Frame, st display.Surface) (fig *chart.Figure, output_data interface{})

df is a private copy of the dataset. fig and output_data are already declared: assign them with =, never :=.
You may import only "askdata/frame", "askdata/chart", fmt, math, sort, strconv, strings, time and unicode.
Cells loaded from files are text: convert numeric columns with ToNumeric before arithmetic.

frame.Frame (every method returns a new frame; df itself is never modified):
  Len() int; Columns() []string; Col(name) *frame.Series; Has(name) bool
  Select(names...) ; Head(n) ; Filter(func(r frame.Row) bool) ; DropMissing(names...)
  WithColumn(s *frame.Series) adds or replaces the column named s.Name()
  Rename(from, to) ; SortBy(name, ascending bool)
  ValueCounts(name) -> columns name and "count", most frequent first
  GroupBy(name).Count() / .Sum(col) / .Mean(col) / .Max(col) / .Min(col) -> key column plus aggregate
  Row(i) frame.Row ; Rows() []frame.Row
  frame.New(series...) ; frame.FromRows(names []string, rows [][]any)
frame.Row: Get(name) any ; String(name) string ; Float(name) (float64, bool) ; Time(name) (time.Time, bool) ; IsMissing(name) bool
frame.Series:
  ToNumeric() ; ToDate(layouts...) ; Period("2006-01") ; YearsSince(time.Now())
  DropMissing() ; Count() int ; IsEmpty() bool ; Unique() []any ; Map(func(v any) any)
  Sum() ; Mean() ; Max() ; Min() ; IdxMax() int ; IdxMin() int  (all but Sum panic on an empty series)
  MaxDate() time.Time ; MinDate() time.Time for ToDate series (Max and Min are numeric only; IdxMax and IdxMin order dates too)
  Rename(name) ; At(i) any ; Values() []any ; Floats() []float64 ; Strings() []string
  frame.NewSeries(name, []any) ; frame.Floats(name, []float64) ; frame.Strings(name, []string)
chart (returns *chart.Figure):
  chart.Bar(df, x, y) ; chart.Line(df, x, y) ; chart.Scatter(df, x, y)
  chart.GroupedBar(df, x, y, color) ; chart.Pie(df, names, values) (values "" counts rows)
  chart.Histogram(df, col, bins) ; fig.WithTitle(title) ; fig.WithLabels(xLabel, yLabel)
st: st.Table(df) ; st.Chart(fig) ; st.Write(values...) ; st.Error(msg)`

// BuildCodegen builds the code generation request for query. now supplies
// today's date for age and period computations.
func BuildCodegen(query string, d Descriptor, now time.Time) llm.Request {
	var b strings.Builder

	name := d.Dataset
	if name == "" {
		name = "the dataset"
	}
	fmt.Fprintf(&b, "You generate Go code for data analysis. The dataset %s contains the following columns:\n", quote(name))
	b.WriteString(strings.Join(d.Columns, ", "))
	b.WriteString("\n\n")

	if len(d.Required) > 0 {
		fmt.Fprintf(&b, "These fields are required: drop rows where any of them is missing: %s.\n\n", quoteAll(d.Required))
	}
	if len(d.NumericText) > 0 {
		fmt.Fprintf(&b, "The numeric columns %s are stored as text and may contain thousands separators: convert them with ToNumeric before processing.\n\n", quoteAll(d.NumericText))
	}
	for _, dc := range d.Dates {
		fmt.Fprintf(&b, "The %s column is a date", quote(dc.Column))
		if dc.Layout != "" {
			fmt.Fprintf(&b, " in the Go layout %q", dc.Layout)
		}
		if dc.Note != "" {
			fmt.Fprintf(&b, "; %s", dc.Note)
		}
		b.WriteString(".\n")
	}
	if len(d.Dates) > 0 {
		b.WriteString("\n")
	}

	if len(d.Synonyms) > 0 {
		b.WriteString("The relevant columns for specific terms are as follows:\n")
		for _, s := range d.Synonyms {
			fmt.Fprintf(&b, "  %s refer to %s\n", quoteAll(s.Terms), quote(s.Column))
		}
		b.WriteString("\n")
	}
	for _, r := range d.Rules {
		b.WriteString(r)
		b.WriteString("\n")
	}
	if len(d.Rules) > 0 {
		b.WriteString("\n")
	}

	b.WriteString("Rules the code must follow:\n")
	for i, rule := range contract {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rule)
	}
	b.WriteString("\n")

	b.WriteString(libraryReference)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Today's date is %s.\n\n", now.Format("2006-01-02"))
	b.WriteString("The user has requested the following:\n")
	b.WriteString(strings.TrimSpace(query))
	b.WriteString("\n\nReturn only the Go code.")

	return llm.Request{System: codegenSystem, User: b.String()}
}

func quote(s string) string { return "'" + s + "'" }

func quoteAll(items []string) string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = quote(s)
	}
	return strings.Join(out, ", ")
}
