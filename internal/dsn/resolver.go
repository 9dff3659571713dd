// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"path/filepath"
	"strings"
)

var (
	csvExtensions    = []string{".csv", ".tsv", ".txt"}
	sqliteExtensions = []string{".db", ".sqlite", ".sqlite3"}
)

// DetectSourceType detects the source type from a URL scheme or file extension
func DetectSourceType(source string) SourceType {
	lower := strings.ToLower(strings.TrimSpace(source))

	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return SourcePostgreSQL
	case strings.HasPrefix(lower, "mysql://"):
		return SourceMySQL
	case strings.HasPrefix(lower, "sqlite://"), strings.HasPrefix(lower, "sqlite:"):
		return SourceSQLite
	case strings.Contains(lower, "://"):
		return SourceUnknown
	}

	path, _, _ := strings.Cut(lower, "?")
	ext := filepath.Ext(path)
	for _, e := range csvExtensions {
		if ext == e {
			return SourceCSV
		}
	}
	for _, e := range sqliteExtensions {
		if ext == e {
			return SourceSQLite
		}
	}
	return SourceUnknown
}

// resolverFor returns the resolver of a database source.
func resolverFor(source string) (Resolver, error) {
	if strings.TrimSpace(source) == "" {
		return nil, NewParseError(source, "empty source", "provide a CSV file path or a database URL")
	}

	switch DetectSourceType(source) {
	case SourcePostgreSQL:
		return NewPostgreSQLResolver(), nil
	case SourceMySQL:
		return NewMySQLResolver(), nil
	case SourceSQLite:
		return NewSQLiteResolver(), nil
	case SourceCSV:
		return nil, NewParseError(source, "CSV files are not databases", "load CSV files with the dataset loader")
	default:
		return nil, NewParseError(source, "unknown source type", "use a .csv file, postgres://, mysql://, sqlite:// or a .db file")
	}
}

// Parse resolves a database source into the connection string its driver
// expects. This is the main entry point for database sources.
func Parse(source string) (string, error) {
	resolver, err := resolverFor(source)
	if err != nil {
		return "", err
	}

	info, err := resolver.Parse(source)
	if err != nil {
		return "", err
	}

	return resolver.Normalize(info)
}

// Validate validates a database source without normalizing it
func Validate(source string) error {
	resolver, err := resolverFor(source)
	if err != nil {
		return err
	}
	return resolver.Validate(source)
}

// ParseInfo parses a database source and returns detailed info
// Useful for inspecting connection details
func ParseInfo(source string) (*DSNInfo, error) {
	resolver, err := resolverFor(source)
	if err != nil {
		return nil, err
	}
	return resolver.Parse(source)
}
