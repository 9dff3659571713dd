// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns network failures of the completion service into
// user-friendly explanations.
package httperrors

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
)

// Category is the kind of network failure.
type Category int

const (
	CategoryGeneric Category = iota
	CategoryTimeout
	CategoryDNS
	CategoryRefused
	CategoryTLS
	CategoryServer
)

// Classify detects common network error types.
func Classify(err error) Category {
	if err == nil {
		return CategoryGeneric
	}
	switch {
	case isTimeoutError(err):
		return CategoryTimeout
	case isDNSError(err):
		return CategoryDNS
	case isConnectionRefusedError(err):
		return CategoryRefused
	case isSSLError(err):
		return CategoryTLS
	case isServerError(err.Error()):
		return CategoryServer
	}
	return CategoryGeneric
}

// Describe explains a network error in a few lines. context says what was
// being done ("generating code"), host which service was contacted.
func Describe(err error, context, host string) string {
	var b strings.Builder
	switch Classify(err) {
	case CategoryTimeout:
		fmt.Fprintf(&b, "⏱️  Connection timeout while %s\n", context)
		b.WriteString("The server took too long to respond. This could mean:\n")
		b.WriteString("  • Slow internet connection\n")
		b.WriteString("  • Server is under heavy load\n")
		b.WriteString("  • The configured timeout is too short\n")
	case CategoryDNS:
		fmt.Fprintf(&b, "🌐 Cannot resolve server address while %s\n", context)
		fmt.Fprintf(&b, "Unable to look up %s. Please check:\n", host)
		b.WriteString("  • Your internet connection is working\n")
		b.WriteString("  • The endpoint in the configuration is spelled correctly\n")
	case CategoryRefused:
		fmt.Fprintf(&b, "🚫 Connection refused while %s\n", context)
		b.WriteString("The server is not accepting connections. This could mean:\n")
		b.WriteString("  • The service is temporarily down\n")
		b.WriteString("  • Wrong endpoint address or port\n")
	case CategoryTLS:
		fmt.Fprintf(&b, "🔒 Secure connection failed while %s\n", context)
		b.WriteString("Cannot establish a secure HTTPS connection. Try:\n")
		b.WriteString("  • Check your system date and time\n")
		b.WriteString("  • Verify network proxy settings\n")
	case CategoryServer:
		fmt.Fprintf(&b, "⚠️  Server error while %s\n", context)
		fmt.Fprintf(&b, "%s reported an internal error. Please try again in a few minutes.\n", host)
	default:
		fmt.Fprintf(&b, "❌ Cannot reach %s while %s\n", host, context)
		b.WriteString("Please check:\n")
		b.WriteString("  • Your internet connection\n")
		b.WriteString("  • Firewall settings that might block HTTPS requests\n")
	}
	return b.String()
}

// isTimeoutError checks if the error is a timeout error.
func isTimeoutError(err error) bool {
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded") {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isDNSError checks if the error is a DNS resolution error.
func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr) || strings.Contains(strings.ToLower(err.Error()), "no such host")
}

// isConnectionRefusedError checks if the error is a connection refused error.
func isConnectionRefusedError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

// isSSLError checks if the error is an SSL/TLS error.
func isSSLError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") ||
		strings.Contains(errStr, "certificate")
}

// isServerError checks if the error indicates a server-side problem (5xx errors).
func isServerError(errStr string) bool {
	lower := strings.ToLower(errStr)
	for _, s := range []string{"status 500", "status 502", "status 503", "status 504", "internal server error", "bad gateway", "service unavailable", "gateway timeout"} {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}
