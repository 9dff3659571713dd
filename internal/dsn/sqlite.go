// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"net/url"
	"strings"
)

// SQLiteResolver handles sqlite:// URLs and bare .db/.sqlite file paths
type SQLiteResolver struct{}

// NewSQLiteResolver creates a new SQLite resolver
func NewSQLiteResolver() *SQLiteResolver {
	return &SQLiteResolver{}
}

// Parse extracts the database file path
func (r *SQLiteResolver) Parse(dsn string) (*DSNInfo, error) {
	path := strings.TrimSpace(dsn)
	lower := strings.ToLower(path)
	switch {
	case strings.HasPrefix(lower, "sqlite://"):
		path = path[len("sqlite://"):]
	case strings.HasPrefix(lower, "sqlite:"):
		path = path[len("sqlite:"):]
	}

	info := &DSNInfo{Type: SourceSQLite, Params: make(map[string]string), Original: dsn}
	path, query, _ := strings.Cut(path, "?")
	if query != "" {
		values, err := url.ParseQuery(query)
		if err != nil {
			return nil, NewParseError(dsn, "invalid query parameters", "use sqlite://path/to/file.db?key=value")
		}
		for k, v := range values {
			if len(v) > 0 {
				info.Params[k] = v[0]
			}
		}
	}
	if path == "" {
		return nil, NewParseError(dsn, "missing database file", "use sqlite://path/to/file.db")
	}
	info.Database = path
	return info, nil
}

// Normalize returns a read-only file: URI for modernc.org/sqlite.
func (r *SQLiteResolver) Normalize(info *DSNInfo) (string, error) {
	if info == nil {
		return "", NewParseError("", "nil DSN info", "")
	}
	q := url.Values{}
	for k, v := range info.Params {
		q.Set(k, v)
	}
	if q.Get("mode") == "" {
		q.Set("mode", "ro")
	}
	return "file:" + info.Database + "?" + q.Encode(), nil
}

// Validate checks that a file path is present
func (r *SQLiteResolver) Validate(dsn string) error {
	_, err := r.Parse(dsn)
	return err
}
