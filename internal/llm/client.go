// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"askdata/cli/internal/httperrors"
)

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 64 << 10

// Client implements Completer over an OpenAI-compatible chat completions
// endpoint (Groq, OpenAI).
type Client struct {
	// endpoint is the full chat completions URL
	endpoint string
	model    string
	apiKey   string
	// client has no timeout of its own; deadlines come from the context
	client *http.Client
}

// NewClient creates a chat completions client.
func NewClient(endpoint, model, apiKey string) *Client {
	return &Client{
		endpoint: strings.TrimSpace(endpoint),
		model:    model,
		apiKey:   apiKey,
		client:   &http.Client{},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete posts the request and returns the first choice's content, trimmed.
// Every failure is a *TransportError; nothing is retried.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	host := httperrors.ExtractHostFromURL(c.endpoint)

	payload := chatRequest{Model: c.model}
	if req.System != "" {
		payload.Messages = append(payload.Messages, chatMessage{Role: "system", Content: req.System})
	}
	payload.Messages = append(payload.Messages, chatMessage{Role: "user", Content: req.User})
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &TransportError{Host: host, Body: err.Error(), Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		zap.L().Debug("completion request failed", zap.String("host", host), zap.Error(err))
		return "", &TransportError{Host: host, Body: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	zap.L().Debug("completion response",
		zap.String("host", host),
		zap.String("model", c.model),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &TransportError{StatusCode: resp.StatusCode, Body: string(raw), Host: host}
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &TransportError{StatusCode: resp.StatusCode, Body: "malformed response: " + err.Error(), Host: host, Err: err}
	}
	if len(out.Choices) == 0 {
		return "", &TransportError{StatusCode: resp.StatusCode, Body: "response has no choices", Host: host}
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
