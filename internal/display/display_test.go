// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package display

import (
	"bytes"
	"strings"
	"testing"

	"askdata/cli/internal/chart"
	"askdata/cli/internal/frame"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scores() *frame.Frame {
	return frame.New(
		frame.Strings("coach", []string{"Kim", "Lee"}),
		frame.Floats("clients", []float64{12, 7}),
	)
}

func TestRecorderRoutesWriteArguments(t *testing.T) {
	r := NewRecorder()
	fig := chart.Bar(scores(), "coach", "clients")

	r.Write("Top coaches:", 2.0, scores(), fig, "done")
	r.Error("boom")

	events := r.Events()
	require.Len(t, events, 5)
	assert.Equal(t, Event{Kind: EventText, Text: "Top coaches: 2"}, events[0])
	assert.Equal(t, EventTable, events[1].Kind)
	assert.Equal(t, []string{"coach", "clients"}, events[1].Columns)
	assert.Equal(t, [][]string{{"Kim", "12"}, {"Lee", "7"}}, events[1].Rows)
	assert.Same(t, fig, events[2].Figure)
	assert.Equal(t, "done", events[3].Text)
	assert.Equal(t, EventError, events[4].Kind)

	assert.Len(t, r.Of(EventText), 2)
	assert.Equal(t, "Top coaches: 2\ndone\nboom\n", r.Text())
}

func TestRecorderIgnoresNil(t *testing.T) {
	r := NewRecorder()
	r.Table(nil)
	r.Chart(nil)
	assert.Empty(t, r.Events())
}

func TestTerminalTable(t *testing.T) {
	var buf bytes.Buffer
	NewTerminal(&buf, 0).Table(scores())
	out := buf.String()
	for _, want := range []string{"coach", "clients", "Kim", "12"} {
		assert.Contains(t, out, want)
	}
}

func TestTerminalChartAndText(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, 0)
	term.Chart(chart.Bar(scores(), "coach", "clients").WithTitle("Clients per coach"))
	term.Write("plain text")
	term.Error("  failed  ")

	out := buf.String()
	assert.Contains(t, out, "Clients per coach")
	assert.Contains(t, out, "Kim")
	assert.Contains(t, out, "plain text")
	assert.True(t, strings.Contains(out, "failed"))
}

func TestBarsScaleSmallValues(t *testing.T) {
	b := bars(chart.Trace{Labels: []string{"a", "b"}, Values: []float64{0.5, 2}})
	assert.Equal(t, 25, b[0].Value)
	assert.Equal(t, 100, b[1].Value)
	assert.Equal(t, "a (0.50)", b[0].Label)
}
