// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package pipeline answers one natural-language question about a dataset:
// generate a program, run it, classify what it bound, have the result
// explained and record the exchange.
//
// Every stage runs once. A failed stage is reported on the surface, ends the
// query and leaves the conversation log untouched.
package pipeline

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"askdata/cli/internal/classify"
	"askdata/cli/internal/conversation"
	"askdata/cli/internal/dataset"
	"askdata/cli/internal/display"
	"askdata/cli/internal/errors"
	"askdata/cli/internal/llm"
	"askdata/cli/internal/logging"
	"askdata/cli/internal/prompt"
	"askdata/cli/internal/sandbox"
)

// State is a step of the per-query state machine.
type State string

const (
	StateIdle                 State = "idle"
	StatePromptBuilt          State = "prompt_built"
	StateGenerated            State = "generated"
	StateGenerationFailed     State = "generation_failed"
	StateSyntaxFailed         State = "syntax_failed"
	StateRuntimeFailed        State = "runtime_failed"
	StateExecuted             State = "executed"
	StateClassified           State = "classified"
	StateExplanationRequested State = "explanation_requested"
	StateExplained            State = "explained"
	StateExplanationFailed    State = "explanation_failed"
)

// Stage names the user-facing step a failure state belongs to.
func (s State) Stage() string {
	switch s {
	case StateGenerationFailed:
		return "code generation"
	case StateSyntaxFailed, StateRuntimeFailed:
		return "execution"
	case StateExplanationFailed:
		return "explanation"
	}
	return ""
}

// Result is everything known about one query.
type Result struct {
	Query          string
	Program        string
	Outcome        sandbox.Outcome
	Classification classify.Classification
	Explanation    string
	// States is the trace of the query, starting and ending in StateIdle.
	States []State
}

// Failed returns the failure state of the query, or "" if it succeeded.
func (r *Result) Failed() State {
	for _, s := range r.States {
		if s.Stage() != "" {
			return s
		}
	}
	return ""
}

// Pipeline holds no per-query state and may be shared.
type Pipeline struct {
	gen     llm.Completer
	explain llm.Completer
	sandbox *sandbox.Sandbox

	generationTimeout  time.Duration
	executionTimeout   time.Duration
	explanationTimeout time.Duration

	now      func() time.Time
	observer func(State)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithGenerationTimeout bounds the code generation call.
func WithGenerationTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.generationTimeout = d }
}

// WithExecutionTimeout bounds the run of the generated program.
func WithExecutionTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.executionTimeout = d }
}

// WithExplanationTimeout bounds the explanation call.
func WithExplanationTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.explanationTimeout = d }
}

// WithClock replaces time.Now for the date in the generation prompt.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithObserver is called on every state transition, e.g. to drive a spinner.
func WithObserver(fn func(State)) Option {
	return func(p *Pipeline) { p.observer = fn }
}

// WithSandbox replaces the default sandbox.
func WithSandbox(s *sandbox.Sandbox) Option {
	return func(p *Pipeline) { p.sandbox = s }
}

// New creates a pipeline. gen and explain may be the same completer.
func New(gen, explain llm.Completer, opts ...Option) *Pipeline {
	p := &Pipeline{
		gen:      gen,
		explain:  explain,
		now:      time.Now,
		observer: func(State) {},
	}
	for _, o := range opts {
		o(p)
	}
	if p.sandbox == nil {
		p.sandbox = sandbox.New()
	}
	return p
}

// Ask runs one query. On success the question and the explanation are
// appended to the session log together; on failure the log is not touched,
// the failure is shown with st.Error and returned as a typed error.
func (p *Pipeline) Ask(ctx context.Context, sess *conversation.Session, ds *dataset.Dataset, d prompt.Descriptor, query string, st display.Surface) (*Result, error) {
	res := &Result{Query: query}
	trace := func(s State) {
		res.States = append(res.States, s)
		p.observer(s)
	}
	trace(StateIdle)
	defer trace(StateIdle)

	if sess == nil {
		return res, errors.New(errors.KindUsage, "no session")
	}
	if strings.TrimSpace(query) == "" {
		return res, errors.New(errors.KindUsage, "empty question")
	}
	log := logging.L().With(zap.String("session", sess.ID))

	req := prompt.BuildCodegen(query, d, p.now())
	trace(StatePromptBuilt)

	start := time.Now()
	program, err := complete(ctx, p.gen, req, p.generationTimeout)
	log.Debug("code generation", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
	if err != nil {
		trace(StateGenerationFailed)
		st.Error("Code generation failed: " + logging.Mask(err.Error()))
		return res, errors.Wrap(errors.KindTransport, "code generation failed", err)
	}
	res.Program = program
	trace(StateGenerated)

	start = time.Now()
	res.Outcome = p.run(ctx, program, ds, st)
	log.Debug("execution", zap.Duration("elapsed", time.Since(start)), zap.Stringer("status", res.Outcome.Status))
	switch res.Outcome.Status {
	case sandbox.StatusSyntaxFailure:
		trace(StateSyntaxFailed)
		st.Error("The generated code had a syntax issue: " + res.Outcome.Message)
		return res, res.Outcome.Err()
	case sandbox.StatusRuntimeFailure:
		trace(StateRuntimeFailed)
		st.Error("An error occurred while executing the generated code: " + res.Outcome.Message)
		return res, res.Outcome.Err()
	}
	trace(StateExecuted)

	c, err := classify.Classify(res.Outcome)
	if err != nil {
		trace(StateRuntimeFailed)
		st.Error(err.Error())
		return res, err
	}
	res.Classification = c
	trace(StateClassified)

	ereq := prompt.BuildExplanation(c, d.Framing)
	trace(StateExplanationRequested)

	start = time.Now()
	explanation, err := complete(ctx, p.explain, ereq, p.explanationTimeout)
	log.Debug("explanation", zap.Duration("elapsed", time.Since(start)), zap.String("kind", string(c.Kind)), zap.Error(err))
	if err != nil {
		trace(StateExplanationFailed)
		st.Error("Explanation failed: " + logging.Mask(err.Error()))
		return res, errors.Wrap(errors.KindTransport, "explanation failed", err)
	}
	res.Explanation = explanation
	trace(StateExplained)

	st.Write("Explanation:")
	st.Write(explanation)

	sess.Log.Append(
		conversation.Turn{Role: conversation.RoleUser, Content: query},
		conversation.Turn{Role: conversation.RoleAssistant, Content: explanation},
	)
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, program string, ds *dataset.Dataset, st display.Surface) sandbox.Outcome {
	if p.executionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.executionTimeout)
		defer cancel()
	}
	return p.sandbox.Run(ctx, program, ds, st)
}

// complete calls c with an optional timeout. Any failure, an expired
// deadline included, is returned as *llm.TransportError.
func complete(ctx context.Context, c llm.Completer, req llm.Request, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	text, err := c.Complete(ctx, req)
	if err != nil {
		var te *llm.TransportError
		if !errors.As(err, &te) {
			err = &llm.TransportError{Body: err.Error(), Err: err}
		}
		return "", err
	}
	if ctx.Err() != nil {
		return "", &llm.TransportError{Body: ctx.Err().Error(), Err: ctx.Err()}
	}
	return text, nil
}
