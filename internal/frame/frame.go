// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package frame is the tabular computation surface handed to generated
// programs. A Frame is an ordered set of equally long Series. Every operation
// returns a new Frame or Series and leaves its receiver untouched, so a program
// can only ever change its own derived copies of the dataset.
//
// Operations that address a column by name panic when the column does not
// exist, the same way a missing key fails in a dataframe library; the sandbox
// reports such panics as runtime failures.
package frame

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Frame is an immutable table of named columns.
type Frame struct {
	series []*Series
	index  map[string]int
	rows   int
}

// New builds a frame from series of equal length.
func New(columns ...*Series) *Frame {
	f := &Frame{index: make(map[string]int, len(columns))}
	for i, s := range columns {
		if i == 0 {
			f.rows = s.Len()
		} else if s.Len() != f.rows {
			panic(fmt.Sprintf("frame: column %q has %d rows, want %d", s.Name(), s.Len(), f.rows))
		}
		if _, dup := f.index[s.Name()]; dup {
			panic(fmt.Sprintf("frame: duplicate column %q", s.Name()))
		}
		f.index[s.Name()] = len(f.series)
		f.series = append(f.series, s)
	}
	return f
}

// FromRecords builds a text frame from a header and string records, the
// shape produced by encoding/csv. Short records are padded with missing values.
func FromRecords(header []string, records [][]string) *Frame {
	cols := make([][]any, len(header))
	for c := range cols {
		cols[c] = make([]any, len(records))
	}
	for r, rec := range records {
		for c := range header {
			if c < len(rec) {
				cols[c][r] = normalize(rec[c])
			}
		}
	}
	series := make([]*Series, len(header))
	for c, name := range header {
		series[c] = &Series{name: name, values: cols[c]}
	}
	return New(series...)
}

// FromRows builds a frame from row-major values.
func FromRows(names []string, rows [][]any) *Frame {
	cols := make([][]any, len(names))
	for c := range cols {
		cols[c] = make([]any, len(rows))
	}
	for r, row := range rows {
		for c := range names {
			if c < len(row) {
				cols[c][r] = row[c]
			}
		}
	}
	series := make([]*Series, len(names))
	for c, name := range names {
		series[c] = NewSeries(name, cols[c])
	}
	return New(series...)
}

// Len returns the number of rows.
func (f *Frame) Len() int { return f.rows }

// IsEmpty reports whether the frame has no rows.
func (f *Frame) IsEmpty() bool { return f.rows == 0 }

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.series))
	for i, s := range f.series {
		out[i] = s.Name()
	}
	return out
}

// Has reports whether a column exists.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Col returns the named column.
func (f *Frame) Col(name string) *Series {
	i, ok := f.index[name]
	if !ok {
		panic(fmt.Sprintf("frame: no column %q (have %s)", name, strings.Join(f.Columns(), ", ")))
	}
	return f.series[i]
}

// Clone returns an independent copy of the frame.
func (f *Frame) Clone() *Frame {
	series := make([]*Series, len(f.series))
	for i, s := range f.series {
		series[i] = &Series{name: s.name, values: s.Values()}
	}
	return New(series...)
}

// Select keeps the named columns in the given order.
func (f *Frame) Select(names ...string) *Frame {
	series := make([]*Series, len(names))
	for i, n := range names {
		series[i] = f.Col(n)
	}
	return New(series...)
}

// Head returns the first n rows.
func (f *Frame) Head(n int) *Frame {
	if n > f.rows {
		n = f.rows
	}
	if n < 0 {
		n = 0
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return f.take(idx)
}

// Row returns a view of the i-th row.
func (f *Frame) Row(i int) Row { return Row{f: f, i: i} }

// Rows returns views of every row.
func (f *Frame) Rows() []Row {
	out := make([]Row, f.rows)
	for i := range out {
		out[i] = Row{f: f, i: i}
	}
	return out
}

// Filter keeps the rows for which keep returns true.
func (f *Frame) Filter(keep func(r Row) bool) *Frame {
	var idx []int
	for i := 0; i < f.rows; i++ {
		if keep(Row{f: f, i: i}) {
			idx = append(idx, i)
		}
	}
	return f.take(idx)
}

// DropMissing removes rows with a missing value in any of the named columns,
// or in any column when no name is given.
func (f *Frame) DropMissing(names ...string) *Frame {
	cols := f.series
	if len(names) > 0 {
		cols = make([]*Series, len(names))
		for i, n := range names {
			cols[i] = f.Col(n)
		}
	}
	var idx []int
rows:
	for i := 0; i < f.rows; i++ {
		for _, s := range cols {
			if s.values[i] == nil {
				continue rows
			}
		}
		idx = append(idx, i)
	}
	return f.take(idx)
}

// WithColumn adds s, or replaces the column of the same name.
func (f *Frame) WithColumn(s *Series) *Frame {
	if s.Len() != f.rows && len(f.series) > 0 {
		panic(fmt.Sprintf("frame: column %q has %d rows, want %d", s.Name(), s.Len(), f.rows))
	}
	series := make([]*Series, len(f.series), len(f.series)+1)
	copy(series, f.series)
	if i, ok := f.index[s.Name()]; ok {
		series[i] = s
	} else {
		series = append(series, s)
	}
	return New(series...)
}

// Rename changes a column name.
func (f *Frame) Rename(from, to string) *Frame {
	i, ok := f.index[from]
	if !ok {
		panic(fmt.Sprintf("frame: no column %q", from))
	}
	series := make([]*Series, len(f.series))
	copy(series, f.series)
	series[i] = series[i].Rename(to)
	return New(series...)
}

// SortBy orders rows by a column. Missing values always sort last.
func (f *Frame) SortBy(name string, ascending bool) *Frame {
	s := f.Col(name)
	idx := make([]int, f.rows)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		va, vb := s.values[idx[a]], s.values[idx[b]]
		if va == nil || vb == nil {
			return va != nil
		}
		if ascending {
			return less(va, vb)
		}
		return less(vb, va)
	})
	return f.take(idx)
}

// ValueCounts counts occurrences of each non-missing value of a column,
// most frequent first. The result has the columns name and "count", or
// "count_count" when the column itself is named "count".
func (f *Frame) ValueCounts(name string) *Frame {
	counts := f.GroupBy(name).Count()
	return counts.SortBy(counts.Columns()[1], false)
}

// GroupBy groups rows by the values of a column; missing keys are dropped.
func (f *Frame) GroupBy(name string) *Groups {
	s := f.Col(name)
	g := &Groups{f: f, key: name, rows: make(map[string][]int)}
	for i, v := range s.values {
		if v == nil {
			continue
		}
		k := key(v)
		if _, seen := g.rows[k]; !seen {
			g.keys = append(g.keys, v)
		}
		g.rows[k] = append(g.rows[k], i)
	}
	return g
}

// Records renders the rows as strings; missing values are "".
func (f *Frame) Records() [][]string {
	out := make([][]string, f.rows)
	for r := range out {
		row := make([]string, len(f.series))
		for c, s := range f.series {
			row[c] = FormatValue(s.values[r])
		}
		out[r] = row
	}
	return out
}

func (f *Frame) take(idx []int) *Frame {
	series := make([]*Series, len(f.series))
	for i, s := range f.series {
		series[i] = s.take(idx)
	}
	out := New(series...)
	if len(series) == 0 {
		out.rows = len(idx)
	}
	return out
}

func less(a, b any) bool {
	switch x := a.(type) {
	case float64:
		if y, ok := b.(float64); ok {
			return x < y
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Before(y)
		}
	}
	return FormatValue(a) < FormatValue(b)
}

// Row is a read-only view of one frame row.
type Row struct {
	f *Frame
	i int
}

// Index returns the row position in its frame.
func (r Row) Index() int { return r.i }

// Get returns the raw value of a column (nil when missing).
func (r Row) Get(name string) any { return r.f.Col(name).values[r.i] }

// IsMissing reports whether a column is missing in this row.
func (r Row) IsMissing(name string) bool { return r.Get(name) == nil }

// String renders a column value; missing is "".
func (r Row) String(name string) string { return FormatValue(r.Get(name)) }

// Float returns a numeric value, converting text the way ToNumeric does.
func (r Row) Float(name string) (float64, bool) { return toFloat(r.Get(name)) }

// Time returns a date value when the column holds one.
func (r Row) Time(name string) (time.Time, bool) {
	t, ok := r.Get(name).(time.Time)
	return t, ok
}
