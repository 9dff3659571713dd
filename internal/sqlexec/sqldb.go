// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"askdata/cli/internal/frame"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Dialect identifies a database/sql driver.
type Dialect string

const (
	DialectMySQL  Dialect = "mysql"
	DialectSQLite Dialect = "sqlite"
)

// DBExecutor reads from MySQL or SQLite through database/sql.
type DBExecutor struct {
	DB      *sql.DB
	dialect Dialect
}

// Open opens and pings a database/sql connection for the dialect.
// dsn is the driver-specific connection string produced by the dsn package.
func Open(ctx context.Context, dialect Dialect, dsn string) (*DBExecutor, error) {
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &DBExecutor{DB: db, dialect: dialect}, nil
}

// NewDBExecutor wraps an existing connection.
func NewDBExecutor(db *sql.DB, dialect Dialect) *DBExecutor {
	return &DBExecutor{DB: db, dialect: dialect}
}

// Query runs query in a read-only transaction and collects every row.
func (e *DBExecutor) Query(ctx context.Context, query string) (Result, error) {
	res := Result{Columns: []string{}, Rows: [][]any{}}

	tx, err := e.DB.BeginTx(ctx, e.txOptions())
	if err != nil {
		return res, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return res, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return res, err
	}
	res.Columns = cols

	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return res, err
		}
		res.Rows = append(res.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return res, err
	}

	logDebug("sql query loaded", zap.String("dialect", string(e.dialect)), zap.Int("rows", len(res.Rows)))
	return res, nil
}

// txOptions marks the transaction read-only where the driver supports it;
// the SQLite connection is already opened with mode=ro.
func (e *DBExecutor) txOptions() *sql.TxOptions {
	if e.dialect == DialectSQLite {
		return nil
	}
	return &sql.TxOptions{ReadOnly: true}
}

// QueryFrame runs query and converts the result to a frame.
func (e *DBExecutor) QueryFrame(ctx context.Context, query string) (*frame.Frame, error) {
	res, err := e.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s query failed: %w", e.dialect, err)
	}
	return res.Frame(), nil
}

// SelectTable quotes a table name for the dialect.
func (e *DBExecutor) SelectTable(table string) string {
	return "SELECT * FROM " + quoteIdent(e.dialect, table)
}

// Tables lists the user tables.
func (e *DBExecutor) Tables(ctx context.Context) ([]string, error) {
	q := "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE' ORDER BY table_name"
	if e.dialect == DialectSQLite {
		q = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
	}
	rows, err := e.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// Close closes the connection.
func (e *DBExecutor) Close() { e.DB.Close() }

// quoteIdent quotes each dot-separated part of a table name.
func quoteIdent(dialect Dialect, table string) string {
	q := `"`
	if dialect == DialectMySQL {
		q = "`"
	}
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = q + strings.ReplaceAll(p, q, q+q) + q
	}
	return strings.Join(parts, ".")
}
