// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package llm talks to the text-completion service. The same Completer is used
// for code generation and for explanations; it assumes nothing about the
// shape of the returned text.
package llm

import (
	"context"
	"fmt"
	"strings"

	"askdata/cli/internal/config"
	"askdata/cli/internal/httperrors"
)

// Request is one completion call: a system instruction and a user message.
type Request struct {
	System string `json:"system,omitempty"`
	User   string `json:"user"`
}

// Completer turns a request into completion text.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// TransportError reports a completion call that did not produce text:
// a non-2xx response, a network failure or an expired deadline.
// StatusCode is 0 when no response was received.
type TransportError struct {
	StatusCode int
	Body       string
	Host       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("completion service returned status %d: %s", e.StatusCode, truncate(strings.TrimSpace(e.Body), 300))
	}
	if e.Err != nil {
		return fmt.Sprintf("completion service unreachable: %v", e.Err)
	}
	return "completion service unreachable: " + e.Body
}

// Unwrap exposes the network or context error, if any.
func (e *TransportError) Unwrap() error { return e.Err }

// Explain describes a network-level failure for the terminal.
func (e *TransportError) Explain(context string) string {
	if e.StatusCode != 0 || e.Err == nil {
		return e.Error()
	}
	return httperrors.Describe(e.Err, context, e.Host)
}

// New builds the completer configured for the provider.
func New(ctx context.Context, cfg config.LLMConfig, apiKey string) (Completer, error) {
	cfg = cfg.Resolved()
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("no API key for provider %s", cfg.Provider)
	}
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg.Model, apiKey, cfg.Endpoint)
	case config.ProviderGroq, config.ProviderOpenAI:
		return NewClient(cfg.Endpoint, cfg.Model, apiKey), nil
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
