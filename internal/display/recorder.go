// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package display

import (
	"fmt"
	"strings"
	"sync"

	"askdata/cli/internal/chart"
	"askdata/cli/internal/frame"
)

// EventKind tells what a recorded event showed.
type EventKind string

const (
	EventTable EventKind = "table"
	EventChart EventKind = "chart"
	EventText  EventKind = "text"
	EventError EventKind = "error"
)

// Event is one recorded surface call.
type Event struct {
	Kind    EventKind     `json:"kind"`
	Text    string        `json:"text,omitempty"`
	Columns []string      `json:"columns,omitempty"`
	Rows    [][]string    `json:"rows,omitempty"`
	Figure  *chart.Figure `json:"figure,omitempty"`
}

// Recorder is a Surface that keeps every call in memory.
// It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Table records a table snapshot.
func (r *Recorder) Table(df *frame.Frame) {
	if df == nil {
		return
	}
	r.add(Event{Kind: EventTable, Columns: df.Columns(), Rows: df.Records()})
}

// Chart records a figure.
func (r *Recorder) Chart(fig *chart.Figure) {
	if fig == nil {
		return
	}
	r.add(Event{Kind: EventChart, Figure: fig})
}

// Write records text.
func (r *Recorder) Write(args ...any) {
	dispatch(r, args, func(s string) { r.add(Event{Kind: EventText, Text: s}) })
}

// Error records an error message.
func (r *Recorder) Error(msg string) {
	r.add(Event{Kind: EventError, Text: msg})
}

// Events returns a copy of the recorded events in call order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Of returns the recorded events of one kind.
func (r *Recorder) Of(kind EventKind) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Text joins all recorded text and error messages.
func (r *Recorder) Text() string {
	var b strings.Builder
	for _, e := range r.Events() {
		if e.Kind == EventText || e.Kind == EventError {
			b.WriteString(e.Text)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func sprint(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case string:
			parts[i] = v
		case float64:
			parts[i] = frame.FormatValue(v)
		default:
			parts[i] = fmt.Sprint(v)
		}
	}
	return strings.Join(parts, " ")
}
