// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package sandbox runs generated programs against a dataset.
//
// A program is the body of
//
//	func Run(df *frame.Frame, st display.Surface) (fig *chart.Figure, output_data interface{})
//
// interpreted by yaegi. The interpreter only sees the binding table from
// Symbols: the frame, chart and display packages plus a small stdlib subset.
// There is no file, network or process access. This is capability
// restriction, not OS isolation.
//
// The program writes to its surface through a gate that closes when Run
// returns. Its stdout is forwarded to the same surface line by line while it
// runs.
package sandbox

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"testing/fstest"

	"github.com/traefik/yaegi/interp"
	"go.uber.org/zap"

	"askdata/cli/internal/chart"
	"askdata/cli/internal/dataset"
	"askdata/cli/internal/display"
	"askdata/cli/internal/errors"
	"askdata/cli/internal/frame"
)

// Status is the outcome of running a program.
type Status int

const (
	StatusSuccess Status = iota
	StatusSyntaxFailure
	StatusRuntimeFailure
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusSyntaxFailure:
		return "syntax failure"
	case StatusRuntimeFailure:
		return "runtime failure"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ArtifactKind tells which binding a successful program left behind.
type ArtifactKind int

const (
	ArtifactMissing ArtifactKind = iota
	ArtifactChart
	ArtifactValue
)

func (k ArtifactKind) String() string {
	switch k {
	case ArtifactChart:
		return "chart"
	case ArtifactValue:
		return "value"
	}
	return "missing"
}

// Artifact is the result a program bound.
type Artifact struct {
	Kind   ArtifactKind
	Figure *chart.Figure
	Value  any
}

// Outcome is the result of Run. Artifact is only set on success and Message
// only on failure.
type Outcome struct {
	Status   Status
	Artifact Artifact
	Message  string
	// Source is the wrapped program that was parsed.
	Source string
}

// Err returns the failure as a typed error, or nil on success.
func (o Outcome) Err() error {
	switch o.Status {
	case StatusSyntaxFailure:
		return errors.New(errors.KindSyntax, o.Message)
	case StatusRuntimeFailure:
		return errors.New(errors.KindRuntime, o.Message)
	}
	return nil
}

type runFunc = func(*frame.Frame, display.Surface) (*chart.Figure, interface{})

// Sandbox runs programs with a fixed binding table.
type Sandbox struct {
	symbols interp.Exports
}

// New creates a sandbox with the default binding table.
func New() *Sandbox {
	return &Sandbox{symbols: Symbols()}
}

var (
	defaultOnce    sync.Once
	defaultSandbox *Sandbox
)

// Run executes program with the package default sandbox.
func Run(ctx context.Context, program string, ds *dataset.Dataset, st display.Surface) Outcome {
	defaultOnce.Do(func() { defaultSandbox = New() })
	return defaultSandbox.Run(ctx, program, ds, st)
}

// Run normalises, checks and interprets program against a clone of the
// dataset frame. It never panics: parse errors are a syntax failure; a
// forbidden import, compile error, panic or expired ctx is a runtime
// failure. A program still running when ctx expires keeps its goroutine
// until it returns, but its surface calls are dropped from then on.
func (s *Sandbox) Run(ctx context.Context, program string, ds *dataset.Dataset, st display.Surface) Outcome {
	log := zap.L().Named("sandbox")

	p := normalize(program)
	src, header := wrap(p)
	out := Outcome{Source: src}

	file, err := preflight(src, header, strings.Count(p.body, "\n")+1)
	if err != nil {
		log.Debug("preflight failed", zap.Error(err))
		out.Status, out.Message = StatusSyntaxFailure, err.Error()
		return out
	}
	if err := checkImports(file); err != nil {
		out.Status, out.Message = StatusRuntimeFailure, err.Error()
		return out
	}
	if ds == nil {
		out.Status, out.Message = StatusRuntimeFailure, "no dataset loaded"
		return out
	}

	g := newGate(st)
	defer g.close()
	stdout := &lineWriter{st: g}
	i := interp.New(interp.Options{
		Stdin:                strings.NewReader(""),
		Stdout:               stdout,
		Stderr:               io.Discard,
		SourcecodeFilesystem: fstest.MapFS{},
	})
	if err := i.Use(s.symbols); err != nil {
		out.Status, out.Message = StatusRuntimeFailure, "loading bindings: "+err.Error()
		return out
	}
	if _, err := i.EvalWithContext(ctx, src); err != nil {
		out.Status, out.Message = StatusRuntimeFailure, compileMessage(ctx, err)
		return out
	}
	v, err := i.Eval("main.Run")
	if err != nil {
		out.Status, out.Message = StatusRuntimeFailure, err.Error()
		return out
	}
	fn, ok := v.Interface().(runFunc)
	if !ok {
		out.Status, out.Message = StatusRuntimeFailure, fmt.Sprintf("Run has unexpected type %s", v.Type())
		return out
	}

	type result struct {
		fig   *chart.Figure
		value any
		panic any
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				stdout.flush()
				done <- result{panic: r}
			}
		}()
		fig, value := fn(ds.Frame(), g)
		stdout.flush()
		done <- result{fig: fig, value: value}
	}()

	select {
	case r := <-done:
		if r.panic != nil {
			log.Debug("program panicked", zap.Any("panic", r.panic))
			out.Status, out.Message = StatusRuntimeFailure, panicMessage(r.panic)
			return out
		}
		out.Status = StatusSuccess
		out.Artifact = inspect(r.fig, r.value)
		return out
	case <-ctx.Done():
		out.Status, out.Message = StatusRuntimeFailure, timeoutMessage(ctx)
		return out
	}
}

// inspect classifies the bindings after a normal return. A figure wins over
// a value; a figure bound to output_data still counts as a chart.
func inspect(fig *chart.Figure, value any) Artifact {
	if fig != nil {
		return Artifact{Kind: ArtifactChart, Figure: fig}
	}
	if f, ok := value.(*chart.Figure); ok && f != nil {
		return Artifact{Kind: ArtifactChart, Figure: f}
	}
	if isNil(value) {
		return Artifact{Kind: ArtifactMissing}
	}
	return Artifact{Kind: ArtifactValue, Value: value}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func panicMessage(r any) string {
	msg := fmt.Sprint(r)
	if err, ok := r.(error); ok {
		msg = err.Error()
	}
	return "panic: " + msg
}

func compileMessage(ctx context.Context, err error) string {
	if ctx.Err() != nil {
		return timeoutMessage(ctx)
	}
	return strings.TrimSpace(err.Error())
}

func timeoutMessage(ctx context.Context) string {
	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "execution timed out"
	}
	return "execution cancelled"
}
