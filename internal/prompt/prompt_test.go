// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"askdata/cli/internal/chart"
	"askdata/cli/internal/classify"
	"askdata/cli/internal/dataset"
	"askdata/cli/internal/frame"
)

var today = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func fitnessProfile(t *testing.T) *Profile {
	t.Helper()
	profiles, err := LoadProfiles("")
	require.NoError(t, err)
	p, ok := profiles["fitness"]
	require.True(t, ok, "built-in fitness profile missing")
	return p
}

func TestBuildCodegenAlwaysCarriesContract(t *testing.T) {
	descriptors := map[string]Descriptor{
		"fitness": fitnessProfile(t).Descriptor(nil),
		"empty":   {},
	}
	queries := []string{"", "average weight by gender", "plot the age distribution"}

	for name, d := range descriptors {
		for _, q := range queries {
			req := BuildCodegen(q, d, today)
			for i, rule := range contract {
				if !strings.Contains(req.User, rule) {
					t.Errorf("%s/%q: contract rule %d missing", name, q, i+1)
				}
			}
			if !strings.Contains(req.User, "func Run(df *frame.Frame, st display.Surface)") {
				t.Errorf("%s/%q: library reference missing", name, q)
			}
			if !strings.Contains(req.User, "Today's date is 2026-05-01.") {
				t.Errorf("%s/%q: date missing", name, q)
			}
			if req.System == "" {
				t.Errorf("%s/%q: empty system prompt", name, q)
			}
		}
	}
}

func TestBuildCodegenFitnessProfile(t *testing.T) {
	req := BuildCodegen("  Show the customer name, age and fitness goal  ", fitnessProfile(t).Descriptor(nil), today)

	for _, want := range []string{
		"coach notes about physical problems",
		"'age', 'birthdate' refer to 'birth date'",
		"'goal', 'fitness goal', 'what they want to achieve' refer to 'meal goals'",
		"'weight', 'height', 'weight goal'",
		`The 'birth date' column is a date in the Go layout "2006-01-02"; age is computed from it with today's date.`,
		"The user has requested the following:\nShow the customer name, age and fitness goal\n",
	} {
		assert.Contains(t, req.User, want)
	}
}

func TestDescriptorFollowsDatasetColumns(t *testing.T) {
	f := frame.FromRecords([]string{"first name", "weight", "gender"}, [][]string{{"Ann", "61", "F"}})
	ds := dataset.New("users.csv", "users.csv", f)

	d := fitnessProfile(t).Descriptor(ds)
	assert.Equal(t, "users.csv", d.Dataset)
	assert.Equal(t, []string{"first name", "weight", "gender"}, d.Columns)
	assert.Equal(t, []string{"weight"}, d.NumericText)
	assert.Empty(t, d.Dates, "birth date is not in the dataset")
	assert.Empty(t, d.Synonyms)
	assert.Equal(t, "customer", d.Framing.Subject)
}

func TestGenericDescriptor(t *testing.T) {
	f := frame.FromRecords(
		[]string{"order id", "amount", "ordered on", "region"},
		[][]string{
			{"1", "1,200", "2024-01-03", "north"},
			{"2", "300", "2024-02-11", "south"},
			{"3", "75", "2024-02-20", "north"},
		},
	)
	d := GenericDescriptor(dataset.New("orders", "orders.csv", f))

	assert.Equal(t, []string{"amount"}, d.NumericText)
	require.Len(t, d.Dates, 1)
	assert.Equal(t, DateColumn{Column: "ordered on", Layout: "2006-01-02"}, d.Dates[0])
	assert.NotEmpty(t, d.Framing.ChartAudience)
}

func TestLoadProfilesFromDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sales.yaml"), []byte(`name: sales
columns: [region, amount]
numeric_text: [amount]
synonyms:
  - column: amount
    terms: [revenue, sales]
framing:
  subject: order
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	profiles, err := LoadProfiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"fitness", "sales"}, ProfileNames(profiles))
	assert.Equal(t, filepath.Join(dir, "sales.yaml"), profiles["sales"].Origin)
	assert.Equal(t, "built-in", profiles["fitness"].Origin)

	missing, err := LoadProfiles(filepath.Join(dir, "nope"))
	require.NoError(t, err)
	assert.Len(t, missing, 1)
}

func TestParseProfileErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "no name", data: "columns: [a]\n"},
		{name: "unknown field", data: "name: x\ncolumnz: [a]\n"},
		{name: "synonym without terms", data: "name: x\nsynonyms:\n  - column: a\n"},
		{name: "not yaml", data: "name: [unterminated\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseProfile([]byte(tt.data)); err == nil {
				t.Errorf("ParseProfile() accepted %q", tt.data)
			}
		})
	}
}

func TestBuildExplanationChart(t *testing.T) {
	df := frame.FromRecords([]string{"meal goals", "count"}, [][]string{{"lose weight", "2"}})
	c := classify.Classification{Kind: classify.KindChart, Figure: chart.Bar(df, "meal goals", "count")}
	req := BuildExplanation(c, fitnessProfile(t).Framing)

	assert.Contains(t, req.User, "US-based health and wellness platform")
	assert.Contains(t, req.User, `"type": "bar"`)
	assert.Contains(t, req.User, "- Patterns and trends based on gender, age, fitness goals, or physical problems.")
	assert.Contains(t, req.User, "what the typical customer looks like")
	assert.Contains(t, req.User, "- Age and gender distribution")
	assert.Contains(t, req.User, "Do not provide any code")
	assert.NotContains(t, req.User, "Analyze the following output")
}

func TestBuildExplanationValue(t *testing.T) {
	df := frame.FromRecords([]string{"gender", "weight"}, [][]string{{"F", "61"}, {"M", "80"}})
	req := BuildExplanation(classify.Classification{Kind: classify.KindValue, Value: df}, fitnessProfile(t).Framing)

	assert.Contains(t, req.User, "fitness coaches")
	assert.Contains(t, req.User, "Analyze the following output:\n")
	assert.Contains(t, req.User, "[2 rows x 2 columns]")
	assert.Contains(t, req.User, "- Key observations and their significance.")
	assert.Contains(t, req.User, "Do not provide any code")
	assert.NotContains(t, req.User, "structural description")
}

func TestBuildExplanationMissing(t *testing.T) {
	req := BuildExplanation(classify.Classification{Kind: classify.KindValue, Missing: true}, Framing{})
	assert.Contains(t, req.User, classify.MissingMarker)
	assert.Contains(t, req.User, "no result was produced")
}
