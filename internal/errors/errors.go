// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages, so each pipeline stage can be reported by what failed.
//
// The package supports wrapping underlying errors while maintaining error kind information,
// making it easier to handle different types of failures appropriately.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// KindTransport indicates the completion service was unreachable or refused the request.
	KindTransport Kind = "transport"
	// KindSyntax indicates a generated program that does not parse.
	KindSyntax Kind = "syntax"
	// KindRuntime indicates a generated program that failed while running.
	KindRuntime Kind = "runtime"
	// KindUsage indicates bad command line input.
	KindUsage Kind = "usage"
	// KindDataset indicates a dataset that could not be loaded.
	KindDataset Kind = "dataset"
	// KindConfig indicates missing or invalid configuration.
	KindConfig Kind = "config"
	// KindUnknown is reported for errors without a kind.
	KindUnknown Kind = "unknown"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying error.
func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the outermost *E in err's chain.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// As is errors.As from the standard library.
func As(err error, target any) bool { return stderrors.As(err, target) }
