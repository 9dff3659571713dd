// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ColumnInfo describes one table column.
type ColumnInfo struct {
	Name     string
	DataType string
	Nullable bool
}

// SchemaInspector lists PostgreSQL tables and caches their column metadata.
// It queries information_schema and caches results to minimize roundtrips.
type SchemaInspector struct {
	// pool is the connection pool for executing schema queries
	pool *pgxpool.Pool
	// cache stores column information keyed by table name
	cache map[string][]ColumnInfo
	// mu protects concurrent access to the cache
	mu sync.RWMutex
}

// NewSchemaInspector creates a new SchemaInspector with the given connection pool.
func NewSchemaInspector(pool *pgxpool.Pool) *SchemaInspector {
	return &SchemaInspector{
		pool:  pool,
		cache: make(map[string][]ColumnInfo),
	}
}

// Tables lists base tables outside the system schemas as schema.table.
func (si *SchemaInspector) Tables(ctx context.Context) ([]string, error) {
	rows, err := si.pool.Query(ctx, `
		SELECT table_schema, table_name
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		  AND table_schema NOT IN ('pg_catalog', 'information_schema')
		ORDER BY table_schema, table_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var schema, table string
		if err := rows.Scan(&schema, &table); err != nil {
			return nil, err
		}
		tables = append(tables, schema+"."+table)
	}
	return tables, rows.Err()
}

// Columns retrieves or caches column information for a table.
// The tableName can be either "table" or "schema.table".
func (si *SchemaInspector) Columns(ctx context.Context, tableName string) ([]ColumnInfo, error) {
	si.mu.RLock()
	if cols, ok := si.cache[tableName]; ok {
		si.mu.RUnlock()
		return cols, nil
	}
	si.mu.RUnlock()

	schema, table := parseTableName(tableName)
	rows, err := si.pool.Query(ctx, `
		SELECT column_name, data_type, is_nullable = 'YES'
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`, schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []ColumnInfo
	for rows.Next() {
		var c ColumnInfo
		if err := rows.Scan(&c.Name, &c.DataType, &c.Nullable); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	si.mu.Lock()
	si.cache[tableName] = cols
	si.mu.Unlock()
	return cols, nil
}

// parseTableName splits a table name into schema and table components.
// If no schema is specified, it defaults to "public".
func parseTableName(tableName string) (schema string, table string) {
	parts := strings.SplitN(tableName, ".", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return "public", tableName
}
