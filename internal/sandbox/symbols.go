// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sandbox

import (
	"path"
	"reflect"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"askdata/cli/internal/chart"
	"askdata/cli/internal/display"
	"askdata/cli/internal/frame"
)

// stdinFuncs read from the process input and are withheld from programs.
var stdinFuncs = map[string]bool{"Scan": true, "Scanf": true, "Scanln": true}

// Symbols is the complete binding table handed to the interpreter: the host
// packages plus AllowedStdlib. Nothing else is reachable from a program.
func Symbols() interp.Exports {
	out := interp.Exports{
		FramePath + "/frame": {
			"Frame":              reflect.ValueOf((*frame.Frame)(nil)),
			"Series":             reflect.ValueOf((*frame.Series)(nil)),
			"Row":                reflect.ValueOf((*frame.Row)(nil)),
			"Groups":             reflect.ValueOf((*frame.Groups)(nil)),
			"New":                reflect.ValueOf(frame.New),
			"FromRecords":        reflect.ValueOf(frame.FromRecords),
			"FromRows":           reflect.ValueOf(frame.FromRows),
			"NewSeries":          reflect.ValueOf(frame.NewSeries),
			"Floats":             reflect.ValueOf(frame.Floats),
			"Strings":            reflect.ValueOf(frame.Strings),
			"FormatValue":        reflect.ValueOf(frame.FormatValue),
			"DefaultDateLayouts": reflect.ValueOf(&frame.DefaultDateLayouts).Elem(),
		},
		ChartPath + "/chart": {
			"Figure":        reflect.ValueOf((*chart.Figure)(nil)),
			"Trace":         reflect.ValueOf((*chart.Trace)(nil)),
			"Kind":          reflect.ValueOf((*chart.Kind)(nil)),
			"KindBar":       reflect.ValueOf(chart.KindBar),
			"KindLine":      reflect.ValueOf(chart.KindLine),
			"KindScatter":   reflect.ValueOf(chart.KindScatter),
			"KindPie":       reflect.ValueOf(chart.KindPie),
			"KindHistogram": reflect.ValueOf(chart.KindHistogram),
			"Bar":           reflect.ValueOf(chart.Bar),
			"Line":          reflect.ValueOf(chart.Line),
			"Scatter":       reflect.ValueOf(chart.Scatter),
			"GroupedBar":    reflect.ValueOf(chart.GroupedBar),
			"Pie":           reflect.ValueOf(chart.Pie),
			"Histogram":     reflect.ValueOf(chart.Histogram),
		},
		DisplayPath + "/display": {
			"Surface": reflect.ValueOf((*display.Surface)(nil)),
		},
	}

	for _, pkg := range AllowedStdlib {
		key := pkg + "/" + path.Base(pkg)
		syms, ok := stdlib.Symbols[key]
		if !ok {
			continue
		}
		filtered := make(map[string]reflect.Value, len(syms))
		for name, v := range syms {
			if pkg == "fmt" && stdinFuncs[name] {
				continue
			}
			filtered[name] = v
		}
		out[key] = filtered
	}
	return out
}
