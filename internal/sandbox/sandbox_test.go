// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sandbox

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"askdata/cli/internal/chart"
	"askdata/cli/internal/dataset"
	"askdata/cli/internal/display"
	"askdata/cli/internal/errors"
	"askdata/cli/internal/frame"
)

func fitness() *dataset.Dataset {
	f := frame.FromRecords(
		[]string{"first name", "gender", "birth date", "weight", "weight goal", "meal goals"},
		[][]string{
			{"Ann", "F", "1990-05-01", "1,250", "", "lose weight"},
			{"Bob", "M", "1985-12-31", "80", "", "gain muscle"},
			{"Cid", "M", "", "n/a", "", "lose weight"},
		},
	)
	return dataset.New("fitness_users", "fitness.csv", f)
}

func run(t *testing.T, program string) (Outcome, *display.Recorder) {
	t.Helper()
	rec := display.NewRecorder()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return Run(ctx, program, fitness(), rec), rec
}

func TestTableWithComputedAge(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	out, rec := run(t, `import "time"

users := df.DropMissing("first name", "birth date")
today := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
ages := users.Col("birth date").ToDate("2006-01-02").YearsSince(today).Rename("age")
result := users.WithColumn(ages).Select("first name", "gender", "age", "meal goals")
st.Table(result)
output_data = result`)

	require.Equal(t, StatusSuccess, out.Status, out.Message)
	require.Equal(t, ArtifactValue, out.Artifact.Kind)
	table, ok := out.Artifact.Value.(*frame.Frame)
	require.True(t, ok, "value is %T", out.Artifact.Value)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "36", table.Row(0).String("age"))
	assert.Len(t, rec.Of(display.EventTable), 1)
	assert.NoError(t, out.Err())
}

func TestSyntaxFailureReportsProgramLine(t *testing.T) {
	out, rec := run(t, "n := df.Len()\noutput_data = (n + 1")

	assert.Equal(t, StatusSyntaxFailure, out.Status)
	assert.Contains(t, out.Message, "line 2:")
	assert.True(t, errors.Is(out.Err(), errors.KindSyntax))
	assert.Empty(t, rec.Events(), "nothing may be shown for a program that did not run")
}

func TestChartArtifact(t *testing.T) {
	out, rec := run(t, `counts := df.ValueCounts("meal goals")
fig = chart.Bar(counts, "meal goals", "count").WithTitle("Goals")
st.Chart(fig)
output_data = nil`)

	require.Equal(t, StatusSuccess, out.Status, out.Message)
	require.Equal(t, ArtifactChart, out.Artifact.Kind)
	assert.Equal(t, "Goals", out.Artifact.Figure.Title)
	assert.Len(t, rec.Of(display.EventChart), 1)
}

func TestChartWinsOverValue(t *testing.T) {
	out, _ := run(t, `fig = chart.Pie(df, "gender", "")
output_data = "a pie of genders"`)

	require.Equal(t, StatusSuccess, out.Status, out.Message)
	assert.Equal(t, ArtifactChart, out.Artifact.Kind)
	assert.Nil(t, out.Artifact.Value)
}

func TestFigureBoundToOutputData(t *testing.T) {
	out, _ := run(t, `output_data = chart.Histogram(df, "weight", 3)`)
	require.Equal(t, StatusSuccess, out.Status, out.Message)
	assert.Equal(t, ArtifactChart, out.Artifact.Kind)
}

func TestGuardedEmptyAggregationIsMissing(t *testing.T) {
	out, _ := run(t, `goals := df.Col("weight goal").ToNumeric()
if goals.IsEmpty() {
	output_data = nil
} else {
	output_data = goals.Max()
}`)

	require.Equal(t, StatusSuccess, out.Status, out.Message)
	assert.Equal(t, ArtifactMissing, out.Artifact.Kind)
}

func TestUnguardedEmptyAggregationIsRuntimeFailure(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	out, _ := run(t, `output_data = df.Col("weight goal").ToNumeric().Max()`)
	assert.Equal(t, StatusRuntimeFailure, out.Status)
	assert.Contains(t, out.Message, "empty series")
	assert.True(t, errors.Is(out.Err(), errors.KindRuntime))
}

func TestForbiddenImports(t *testing.T) {
	tests := []struct {
		name    string
		program string
	}{
		{name: "os", program: "import \"os\"\noutput_data = os.Getenv(\"HOME\")"},
		{name: "exec in block", program: "import (\n\t\"strings\"\n\t\"os/exec\"\n)\noutput_data = strings.ToUpper(\"x\")"},
		{name: "net/http", program: "import \"net/http\"\noutput_data = http.MethodGet"},
		{name: "unsafe", program: "import \"unsafe\"\noutput_data = unsafe.Sizeof(1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := run(t, tt.program)
			assert.Equal(t, StatusRuntimeFailure, out.Status)
			assert.Contains(t, out.Message, "not allowed")
		})
	}
}

func TestCompileErrorIsRuntimeFailure(t *testing.T) {
	out, _ := run(t, `output_data = undefinedHelper(df)`)
	assert.Equal(t, StatusRuntimeFailure, out.Status)
	assert.NotEmpty(t, out.Message)
}

func TestNothingBoundIsMissing(t *testing.T) {
	out, rec := run(t, `st.Write("rows:", df.Len())`)
	require.Equal(t, StatusSuccess, out.Status, out.Message)
	assert.Equal(t, ArtifactMissing, out.Artifact.Kind)
	assert.Equal(t, "rows: 3\n", rec.Text())
}

func TestNormalisedCompletionText(t *testing.T) {
	out, _ := run(t, "```go\npackage main\n\nimport \"strings\"\n\noutput_data := strings.ToUpper(\"ok\")\n```")
	require.Equal(t, StatusSuccess, out.Status, out.Message)
	assert.Equal(t, "OK", out.Artifact.Value)
}

func TestProgramCannotMutateDataset(t *testing.T) {
	ds := fitness()
	out := Run(context.Background(), `df = df.DropMissing("birth date")
output_data = df.Len()`, ds, display.NewRecorder())

	require.Equal(t, StatusSuccess, out.Status, out.Message)
	assert.Equal(t, 2, out.Artifact.Value)
	assert.Equal(t, 3, ds.Len())
}

func TestExecutionTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	out := Run(ctx, "import \"time\"\ntime.Sleep(2 * time.Second)\noutput_data = 1", fitness(), display.NewRecorder())
	assert.Equal(t, StatusRuntimeFailure, out.Status)
	assert.Contains(t, out.Message, "timed out")
	assert.Less(t, time.Since(start), 1500*time.Millisecond)
}

func TestStdoutKeepsCallOrder(t *testing.T) {
	out, rec := run(t, `import "fmt"

st.Write("first")
fmt.Println("second")
st.Write("third")
fmt.Print("fourth")`)

	require.Equal(t, StatusSuccess, out.Status, out.Message)
	assert.Equal(t, "first\nsecond\nthird\nfourth\n", rec.Text())
}

func TestSurfaceClosedAfterTimeout(t *testing.T) {
	rec := display.NewRecorder()
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	out := Run(ctx, `import "time"

st.Write("early")
time.Sleep(800 * time.Millisecond)
st.Write("late")
st.Error("late error")`, fitness(), rec)
	require.Equal(t, StatusRuntimeFailure, out.Status)

	time.Sleep(time.Second)
	assert.Equal(t, "early\n", rec.Text())
}

func TestGateDropsCallsWhenClosed(t *testing.T) {
	rec := display.NewRecorder()
	g := newGate(rec)
	w := &lineWriter{st: g}

	g.Write("open")
	_, _ = w.Write([]byte("a\nb"))
	g.close()
	g.Write("closed")
	g.Error("closed")
	g.Table(fitness().Frame())
	w.flush()

	assert.Equal(t, "open\na\n", rec.Text())
	assert.Empty(t, rec.Of(display.EventTable))
}

func TestNormalize(t *testing.T) {
	p := normalize("```\npackage main\nimport (\n\t\"fmt\"\n\tm \"math\"\n)\nfig := chart.Bar(df, \"a\", \"b\")\n  output_data := fmt.Sprint(m.Pi)\n```")
	assert.Equal(t, []string{`"fmt"`, `m "math"`}, p.imports)

	lines := strings.Split(p.body, "\n")
	require.Len(t, lines, 7, "removed lines must keep their place")
	assert.Equal(t, `fig = chart.Bar(df, "a", "b")`, lines[5])
	assert.Equal(t, `  output_data = fmt.Sprint(m.Pi)`, lines[6])
}

func TestWrapDeduplicatesHostImports(t *testing.T) {
	src, header := wrap(program{imports: []string{`"askdata/frame"`, `"fmt"`}, body: "output_data = 1"})
	assert.Equal(t, 1, strings.Count(src, `"askdata/frame"`))
	assert.Contains(t, src, `"fmt"`)
	assert.Equal(t, "output_data = 1", strings.Split(src, "\n")[header])
}

func TestSymbolsExposeOnlyAllowedPackages(t *testing.T) {
	syms := Symbols()
	for key := range syms {
		pkg := key[:strings.LastIndex(key, "/")]
		allowed := pkg == FramePath || pkg == ChartPath || pkg == DisplayPath
		for _, p := range AllowedStdlib {
			allowed = allowed || p == pkg
		}
		assert.True(t, allowed, "unexpected package %s in binding table", key)
	}
	_, hasScan := syms["fmt/fmt"]["Scanln"]
	assert.False(t, hasScan)
	_, hasSprintf := syms["fmt/fmt"]["Sprintf"]
	assert.True(t, hasSprintf)
}

func TestInspect(t *testing.T) {
	var nilFrame *frame.Frame
	fig := &chart.Figure{Kind: chart.KindBar}
	tests := []struct {
		name  string
		fig   *chart.Figure
		value any
		want  ArtifactKind
	}{
		{name: "figure", fig: fig, want: ArtifactChart},
		{name: "both", fig: fig, value: 3.0, want: ArtifactChart},
		{name: "value", value: "text", want: ArtifactValue},
		{name: "zero is a value", value: 0, want: ArtifactValue},
		{name: "nil", want: ArtifactMissing},
		{name: "typed nil", value: nilFrame, want: ArtifactMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inspect(tt.fig, tt.value).Kind; got != tt.want {
				t.Errorf("inspect() = %s, want %s", got, tt.want)
			}
		})
	}
}
