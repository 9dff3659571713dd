// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package sqlexec loads query results from SQL databases into frames.
// PostgreSQL goes through a pgx connection pool; MySQL and SQLite go through
// database/sql with their drivers. Every query runs in a read-only transaction.
//
// Key features include:
//   - Read-only execution of SELECT statements and whole-table loads
//   - Identifier quoting per dialect for table names
//   - Table listing for schema discovery
//   - Conversion of driver values (UUIDs, byte arrays, numerics) to frame values
package sqlexec

import (
	"context"
	"fmt"

	"askdata/cli/internal/frame"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func logDebug(msg string, fields ...zap.Field) {
	zap.L().Debug(msg, fields...)
}

// Source is a database a dataset can be loaded from.
type Source interface {
	// QueryFrame runs a read-only query and returns its rows.
	QueryFrame(ctx context.Context, query string) (*frame.Frame, error)
	// SelectTable returns the query that loads a whole table.
	SelectTable(table string) string
	// Tables lists the user tables.
	Tables(ctx context.Context) ([]string, error)
	Close()
}

// Result is a query result before conversion to a frame.
type Result struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Frame converts the result, turning driver-specific values into strings,
// numbers, booleans and times.
func (r Result) Frame() *frame.Frame {
	rows := make([][]any, len(r.Rows))
	for i, row := range r.Rows {
		out := make([]any, len(row))
		for j, v := range row {
			out[j] = convertValue(v)
		}
		rows[i] = out
	}
	return frame.FromRows(r.Columns, rows)
}

// Executor reads from PostgreSQL over a connection pool.
type Executor struct {
	// Pool is the PostgreSQL connection pool
	Pool *pgxpool.Pool
	// inspector lists tables and caches column metadata
	inspector *SchemaInspector
}

// New creates an Executor from an existing pgx pool.
func New(pool *pgxpool.Pool) *Executor {
	return &Executor{
		Pool:      pool,
		inspector: NewSchemaInspector(pool),
	}
}

// Connect opens a pool for a normalized postgresql:// connection string and
// checks that the server answers.
func Connect(ctx context.Context, connString string) (*Executor, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return New(pool), nil
}

// Query runs sql in a read-only transaction and collects every row.
func (e *Executor) Query(ctx context.Context, sql string) (Result, error) {
	res := Result{Columns: []string{}, Rows: [][]any{}}

	conn, err := e.Pool.Acquire(ctx)
	if err != nil {
		return res, err
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return res, err
	}
	// Read-only: nothing to commit.
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, sql)
	if err != nil {
		return res, err
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	res.Columns = make([]string, len(fds))
	for i, fd := range fds {
		res.Columns[i] = fd.Name
	}

	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return res, err
		}
		res.Rows = append(res.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return res, err
	}

	logDebug("postgres query loaded", zap.Int("rows", len(res.Rows)), zap.Int("columns", len(res.Columns)))
	return res, nil
}

// QueryFrame runs sql and converts the result to a frame.
func (e *Executor) QueryFrame(ctx context.Context, sql string) (*frame.Frame, error) {
	res, err := e.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("postgres query failed: %w", err)
	}
	return res.Frame(), nil
}

// SelectTable quotes a table name, optionally schema-qualified.
func (e *Executor) SelectTable(table string) string {
	schema, name := parseTableName(table)
	return "SELECT * FROM " + pgx.Identifier{schema, name}.Sanitize()
}

// Tables lists the user tables as schema.table.
func (e *Executor) Tables(ctx context.Context) ([]string, error) {
	return e.inspector.Tables(ctx)
}

// Inspector exposes the schema inspector.
func (e *Executor) Inspector() *SchemaInspector { return e.inspector }

// Close releases the pool.
func (e *Executor) Close() { e.Pool.Close() }
