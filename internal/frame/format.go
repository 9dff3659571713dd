// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package frame

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// maxStringRows caps how many rows String renders.
const maxStringRows = 50

// String renders the frame as an aligned text table with a row index,
// truncated after maxStringRows rows. Missing values print as NaN.
func (f *Frame) String() string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)

	fmt.Fprint(w, "\t")
	fmt.Fprintln(w, strings.Join(f.Columns(), "\t"))

	n := f.rows
	if n > maxStringRows {
		n = maxStringRows
	}
	for r := 0; r < n; r++ {
		cells := make([]string, len(f.series))
		for c, s := range f.series {
			if s.values[r] == nil {
				cells[c] = "NaN"
			} else {
				cells[c] = FormatValue(s.values[r])
			}
		}
		fmt.Fprintf(w, "%d\t%s\n", r, strings.Join(cells, "\t"))
	}
	w.Flush()

	if f.rows > n {
		fmt.Fprintf(&b, "... (%d more rows)\n", f.rows-n)
	}
	fmt.Fprintf(&b, "[%d rows x %d columns]", f.rows, len(f.series))
	return b.String()
}

// String renders the series as "name: v1, v2, ...".
func (s *Series) String() string {
	vals := s.values
	more := 0
	if len(vals) > maxStringRows {
		more = len(vals) - maxStringRows
		vals = vals[:maxStringRows]
	}
	parts := make([]string, len(vals))
	for i, v := range vals {
		if v == nil {
			parts[i] = "NaN"
		} else {
			parts[i] = FormatValue(v)
		}
	}
	out := s.name + ": " + strings.Join(parts, ", ")
	if more > 0 {
		out += fmt.Sprintf(", ... (%d more)", more)
	}
	return out
}
