// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dataset holds the loaded tabular data a session asks questions about.
// A Dataset is immutable after load: its column set never changes and callers
// only ever receive clones of its frame.
package dataset

import (
	"askdata/cli/internal/frame"
)

// Role is the semantic role of a column.
type Role string

const (
	RoleIdentifier  Role = "identifier"
	RoleCategorical Role = "categorical"
	RoleNumeric     Role = "numeric"
	RoleDate        Role = "date"
	RoleText        Role = "text"
)

// Column describes one dataset column.
type Column struct {
	Name string `json:"name" yaml:"name"`
	Role Role   `json:"role" yaml:"role"`
	// NumericText marks numeric columns stored as text (thousands separators,
	// stray blanks) that need ToNumeric before arithmetic.
	NumericText bool `json:"numeric_text,omitempty" yaml:"numeric_text,omitempty"`
	// DateLayout is the detected layout of a date column.
	DateLayout string `json:"date_layout,omitempty" yaml:"date_layout,omitempty"`
}

// Dataset is a named, read-only table with column roles.
type Dataset struct {
	name    string
	source  string
	columns []Column
	frame   *frame.Frame
}

// New wraps a frame. Roles are inferred for every column not described in
// columns.
func New(name, source string, f *frame.Frame, columns ...Column) *Dataset {
	known := make(map[string]Column, len(columns))
	for _, c := range columns {
		known[c.Name] = c
	}
	inferred := InferColumns(f)
	for i, c := range inferred {
		if k, ok := known[c.Name]; ok {
			inferred[i] = k
		}
	}
	return &Dataset{name: name, source: source, columns: inferred, frame: f.Clone()}
}

// Name returns the dataset name.
func (d *Dataset) Name() string { return d.name }

// Source returns where the dataset was loaded from.
func (d *Dataset) Source() string { return d.source }

// Columns returns the column descriptions in order.
func (d *Dataset) Columns() []Column {
	out := make([]Column, len(d.columns))
	copy(out, d.columns)
	return out
}

// ColumnNames returns the column names in order.
func (d *Dataset) ColumnNames() []string {
	out := make([]string, len(d.columns))
	for i, c := range d.columns {
		out[i] = c.Name
	}
	return out
}

// Column looks up a column description.
func (d *Dataset) Column(name string) (Column, bool) {
	for _, c := range d.columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Frame returns an independent copy of the data.
func (d *Dataset) Frame() *frame.Frame { return d.frame.Clone() }

// Len returns the number of rows.
func (d *Dataset) Len() int { return d.frame.Len() }

// Head returns a copy of the first n rows.
func (d *Dataset) Head(n int) *frame.Frame { return d.frame.Head(n) }
