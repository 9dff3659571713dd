// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"strings"
)

// FailureType is the category of a query failure
type FailureType int

const (
	FailureUnknown FailureType = iota
	FailureNetwork
	FailureAuth
	FailureTimeout
	FailureRateLimit
	FailureUnavailable
	FailureSyntax
	FailureRuntime
)

// ParseFailure categorizes a failure message
func ParseFailure(errMsg string) FailureType {
	lower := strings.ToLower(errMsg)

	switch {
	case strings.Contains(lower, "syntax"):
		return FailureSyntax
	case strings.Contains(lower, "status 401"), strings.Contains(lower, "status 403"),
		strings.Contains(lower, "unauthorized"), strings.Contains(lower, "invalid api key"):
		return FailureAuth
	case strings.Contains(lower, "status 429"), strings.Contains(lower, "rate limit"):
		return FailureRateLimit
	case strings.Contains(lower, "deadline"), strings.Contains(lower, "timeout"), strings.Contains(lower, "timed out"):
		return FailureTimeout
	case strings.Contains(lower, "status 5"), strings.Contains(lower, "unavailable"):
		return FailureUnavailable
	case strings.Contains(lower, "connection refused"), strings.Contains(lower, "connection reset"),
		strings.Contains(lower, "no such host"), strings.Contains(lower, "network"):
		return FailureNetwork
	case strings.Contains(lower, "runtime"), strings.Contains(lower, "panic"):
		return FailureRuntime
	}
	return FailureUnknown
}

// Hint returns the explanatory lines shown below a failure heading.
func Hint(errMsg string) string {
	var builder strings.Builder
	switch ParseFailure(errMsg) {
	case FailureSyntax:
		builder.WriteString("The generated program could not be parsed.\n")
		builder.WriteString("The model sometimes returns incomplete code; asking again usually helps.\n")
	case FailureRuntime:
		builder.WriteString("The generated program stopped with an error while running.\n")
		builder.WriteString("Rephrasing the question or naming the columns explicitly often helps.\n")
	case FailureAuth:
		builder.WriteString("The completion service rejected the API key.\n")
		builder.WriteString("  • Run 'askdata key set' to store a valid key\n")
		builder.WriteString("  • Or export ASKDATA_API_KEY\n")
	case FailureRateLimit:
		builder.WriteString("The completion service is rate limiting requests.\n")
		builder.WriteString("Wait a moment before asking again.\n")
	case FailureTimeout:
		builder.WriteString("The step did not finish in time.\n")
		builder.WriteString("  • The service may be slow or overloaded\n")
		builder.WriteString("  • Timeouts can be raised in the configuration file\n")
	case FailureUnavailable:
		builder.WriteString("The completion service is currently unavailable.\n")
	case FailureNetwork:
		builder.WriteString("The completion service could not be reached.\n")
		builder.WriteString("Check your internet connection, proxy or firewall.\n")
	default:
		builder.WriteString("The query could not be completed.\n")
	}
	return builder.String()
}
