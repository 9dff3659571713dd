// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package chart

import (
	"encoding/json"
	"strings"
	"testing"

	"askdata/cli/internal/frame"
)

func users() *frame.Frame {
	return frame.FromRecords(
		[]string{"gender", "meal goals", "weight"},
		[][]string{
			{"F", "lose weight", "61"},
			{"M", "gain muscle", "1,080"},
			{"F", "lose weight", ""},
			{"", "maintain", "70"},
		},
	)
}

func TestBarSkipsMissingPoints(t *testing.T) {
	fig := Bar(users(), "gender", "weight")
	if fig.Kind != KindBar {
		t.Errorf("Kind = %s, want bar", fig.Kind)
	}
	if got := fig.Points(); got != 2 {
		t.Fatalf("Points() = %d, want 2", got)
	}
	if fig.Traces[0].Values[1] != 1080 {
		t.Errorf("text weight should be parsed, got %v", fig.Traces[0].Values)
	}
}

func TestPieCountsWhenNoValues(t *testing.T) {
	fig := Pie(users(), "meal goals", "")
	tr := fig.Traces[0]
	if tr.Labels[0] != "lose weight" || tr.Values[0] != 2 {
		t.Errorf("first slice = %s/%v, want lose weight/2", tr.Labels[0], tr.Values[0])
	}
	if fig.YLabel != "count" {
		t.Errorf("YLabel = %q", fig.YLabel)
	}
}

func TestGroupedBarOneTracePerGroup(t *testing.T) {
	fig := GroupedBar(users(), "meal goals", "weight", "gender")
	if len(fig.Traces) != 2 {
		t.Fatalf("traces = %d, want 2", len(fig.Traces))
	}
	if fig.Traces[0].Name != "F" || fig.Traces[1].Name != "M" {
		t.Errorf("trace names = %s, %s", fig.Traces[0].Name, fig.Traces[1].Name)
	}
}

func TestHistogram(t *testing.T) {
	df := frame.New(frame.Floats("age", []float64{20, 25, 30, 35, 40}))
	fig := Histogram(df, "age", 2)
	tr := fig.Traces[0]
	if len(tr.Values) != 2 {
		t.Fatalf("bins = %d, want 2", len(tr.Values))
	}
	if tr.Values[0]+tr.Values[1] != 5 {
		t.Errorf("counts = %v, want total 5", tr.Values)
	}
	if tr.Labels[0] != "20-30" {
		t.Errorf("first label = %q", tr.Labels[0])
	}

	empty := Histogram(frame.New(frame.Strings("age", []string{"", ""})), "age", 0)
	if empty.Points() != 0 {
		t.Errorf("empty histogram has %d points", empty.Points())
	}
}

func TestDescribeIsStructuralJSON(t *testing.T) {
	fig := Bar(users(), "gender", "weight").WithTitle("Weight by gender")
	desc := fig.Describe()

	var decoded map[string]any
	if err := json.Unmarshal([]byte(desc), &decoded); err != nil {
		t.Fatalf("Describe() is not JSON: %v", err)
	}
	if decoded["type"] != "bar" || decoded["title"] != "Weight by gender" {
		t.Errorf("decoded = %v", decoded)
	}
	if !strings.Contains(desc, `"data"`) {
		t.Errorf("description lacks data section:\n%s", desc)
	}
}

func TestWithTitleCopies(t *testing.T) {
	fig := Line(users(), "gender", "weight")
	titled := fig.WithTitle("x")
	if fig.Title != "" {
		t.Errorf("WithTitle mutated the receiver")
	}
	if titled.Title != "x" {
		t.Errorf("Title = %q", titled.Title)
	}
}
