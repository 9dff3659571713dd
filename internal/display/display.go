// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package display defines the presentation surface shared by the pipeline and
// generated programs, with a terminal implementation and an in-memory recorder.
package display

import (
	"askdata/cli/internal/chart"
	"askdata/cli/internal/frame"
)

// Surface is where results are shown. Calls are fire-and-forget: a surface
// never reports failures back to the caller.
type Surface interface {
	// Table shows tabular data.
	Table(df *frame.Frame)
	// Chart shows a figure.
	Chart(fig *chart.Figure)
	// Write shows values as text. Frames and figures are routed to Table and
	// Chart.
	Write(args ...any)
	// Error shows an error message.
	Error(msg string)
}

// dispatch routes Write arguments: frames and figures get their own
// rendering, everything else is collected as text.
func dispatch(s Surface, args []any, text func(string)) {
	var pending []any
	flush := func() {
		if len(pending) == 0 {
			return
		}
		text(sprint(pending))
		pending = nil
	}
	for _, a := range args {
		switch v := a.(type) {
		case *frame.Frame:
			flush()
			if v != nil {
				s.Table(v)
			}
		case *chart.Figure:
			flush()
			if v != nil {
				s.Chart(v)
			}
		default:
			pending = append(pending, a)
		}
	}
	flush()
}
