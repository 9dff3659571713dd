// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package display

import (
	"fmt"
	"io"
	"math"
	"strings"

	"askdata/cli/internal/chart"
	"askdata/cli/internal/frame"

	"github.com/charmbracelet/glamour"
	"github.com/pterm/pterm"
)

// maxTableRows limits how many rows Terminal.Table prints.
const maxTableRows = 50

// Terminal renders to a terminal writer using pterm tables and bar charts.
// Text is rendered as markdown when a renderer is available.
type Terminal struct {
	w        io.Writer
	renderer *glamour.TermRenderer
}

// NewTerminal creates a terminal surface. wrap is the markdown word-wrap
// width; 0 disables markdown rendering.
func NewTerminal(w io.Writer, wrap int) *Terminal {
	t := &Terminal{w: w}
	if wrap > 0 {
		t.renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		)
	}
	return t
}

// Table prints the frame as a boxed table.
func (t *Terminal) Table(df *frame.Frame) {
	if df == nil {
		return
	}
	shown := df.Head(maxTableRows)
	data := pterm.TableData{df.Columns()}
	data = append(data, shown.Records()...)
	out, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
	if err != nil {
		fmt.Fprintln(t.w, shown.String())
		return
	}
	fmt.Fprintln(t.w, out)
	if df.Len() > shown.Len() {
		fmt.Fprintln(t.w, pterm.Gray(fmt.Sprintf("... %d more rows", df.Len()-shown.Len())))
	}
}

// Chart prints the figure as a horizontal bar chart, one block per trace.
func (t *Terminal) Chart(fig *chart.Figure) {
	if fig == nil {
		return
	}
	title := fig.Title
	if title == "" {
		title = fmt.Sprintf("%s chart: %s by %s", fig.Kind, fig.YLabel, fig.XLabel)
	}
	fmt.Fprintln(t.w, pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(title))
	for _, tr := range fig.Traces {
		if tr.Name != "" {
			fmt.Fprintln(t.w, pterm.Bold.Sprint(tr.Name))
		}
		if len(tr.Values) == 0 {
			fmt.Fprintln(t.w, pterm.Gray("(no data points)"))
			continue
		}
		out, err := pterm.DefaultBarChart.WithHorizontal().WithShowValue().WithBars(bars(tr)).Srender()
		if err != nil {
			fmt.Fprintln(t.w, fig.Describe())
			return
		}
		fmt.Fprintln(t.w, out)
	}
}

// bars scales trace values to the integer heights pterm expects.
func bars(tr chart.Trace) pterm.Bars {
	peak := 0.0
	for _, v := range tr.Values {
		peak = math.Max(peak, math.Abs(v))
	}
	scale := 1.0
	if peak > 0 && peak < 10 {
		scale = 100 / peak
	}
	out := make(pterm.Bars, len(tr.Values))
	for i, v := range tr.Values {
		label := tr.Labels[i]
		if scale != 1 {
			label = fmt.Sprintf("%s (%s)", label, frame.FormatValue(v))
		}
		out[i] = pterm.Bar{Label: label, Value: int(math.Round(v * scale))}
	}
	return out
}

// Write prints text, rendering strings as markdown.
func (t *Terminal) Write(args ...any) {
	dispatch(t, args, func(s string) {
		if t.renderer != nil {
			if out, err := t.renderer.Render(s); err == nil {
				fmt.Fprint(t.w, out)
				return
			}
		}
		fmt.Fprintln(t.w, s)
	})
}

// Error prints a styled error line.
func (t *Terminal) Error(msg string) {
	fmt.Fprint(t.w, pterm.Error.Sprintln(strings.TrimSpace(msg)))
}
