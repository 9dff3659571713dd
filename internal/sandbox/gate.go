// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sandbox

import (
	"bytes"
	"sync"

	"askdata/cli/internal/chart"
	"askdata/cli/internal/display"
	"askdata/cli/internal/frame"
)

// gate is the surface a program sees. Once closed it drops every call, so a
// program that outlives Run cannot reach the caller's surface.
type gate struct {
	mu     sync.Mutex
	st     display.Surface
	closed bool
}

func newGate(st display.Surface) *gate { return &gate{st: st} }

func (g *gate) do(fn func(display.Surface)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	fn(g.st)
}

// close waits for an in-flight call to finish.
func (g *gate) close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
}

func (g *gate) Table(df *frame.Frame)   { g.do(func(st display.Surface) { st.Table(df) }) }
func (g *gate) Chart(fig *chart.Figure) { g.do(func(st display.Surface) { st.Chart(fig) }) }
func (g *gate) Write(args ...any)       { g.do(func(st display.Surface) { st.Write(args...) }) }
func (g *gate) Error(msg string)        { g.do(func(st display.Surface) { st.Error(msg) }) }

// lineWriter forwards program stdout to a surface one complete line at a
// time, keeping it in order with the program's own surface calls.
type lineWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
	st  display.Surface
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf.Write(p)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := string(w.buf.Next(i + 1))
		w.st.Write(line[:i])
	}
	return len(p), nil
}

// flush forwards a trailing line that has no newline.
func (w *lineWriter) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.st.Write(w.buf.String())
		w.buf.Reset()
	}
}
