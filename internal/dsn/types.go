// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dsn recognises dataset source strings and turns database URLs into
// the connection strings their drivers expect.
package dsn

import "fmt"

// SourceType is the kind of dataset source
type SourceType string

const (
	SourcePostgreSQL SourceType = "postgresql"
	SourceMySQL      SourceType = "mysql"
	SourceSQLite     SourceType = "sqlite"
	SourceCSV        SourceType = "csv"
	SourceUnknown    SourceType = "unknown"
)

// IsDatabase reports whether the source is read through a SQL driver.
func (t SourceType) IsDatabase() bool {
	return t == SourcePostgreSQL || t == SourceMySQL || t == SourceSQLite
}

// DSNInfo contains parsed information from a source string
type DSNInfo struct {
	Type     SourceType
	Host     string
	Port     string
	User     string
	Password string
	// Database is the database name, or the file path for SQLite.
	Database string
	Params   map[string]string
	Original string
}

// String returns the source as given
func (d *DSNInfo) String() string {
	return d.Original
}

// Resolver is implemented per database type
type Resolver interface {
	// Parse splits a source string into its parts
	Parse(dsn string) (*DSNInfo, error)

	// Normalize formats parsed info as the driver's connection string
	Normalize(info *DSNInfo) (string, error)

	// Validate checks a source string without normalizing it
	Validate(dsn string) error
}

// ParseError represents an error that occurred during DSN parsing
type ParseError struct {
	DSN    string
	Reason string
	Hint   string
}

func (e *ParseError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid data source: %s\nHint: %s", e.Reason, e.Hint)
	}
	return fmt.Sprintf("invalid data source: %s", e.Reason)
}

// NewParseError creates a new ParseError
func NewParseError(dsn, reason, hint string) *ParseError {
	return &ParseError{
		DSN:    dsn,
		Reason: reason,
		Hint:   hint,
	}
}
