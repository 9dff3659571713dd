// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dataset

import (
	"context"
	"fmt"
	"strings"

	"askdata/cli/internal/dsn"
	"askdata/cli/internal/errors"
	"askdata/cli/internal/logging"
	"askdata/cli/internal/sqlexec"

	"go.uber.org/zap"
)

// Query selects what to read from a database source. Exactly one of Table
// or SQL is set.
type Query struct {
	Table string
	SQL   string
}

// Key identifies a source and query for caching.
func (q Query) Key(source string) string {
	return source + "\x00" + q.Table + "\x00" + q.SQL
}

// Open loads a dataset from a CSV path or a database URL.
func Open(ctx context.Context, source string, q Query) (*Dataset, error) {
	typ := dsn.DetectSourceType(source)
	logging.L().Debug("opening dataset", zap.String("source", logging.Mask(source)), zap.String("type", string(typ)))

	if typ == dsn.SourceCSV {
		ds, err := LoadCSV(source)
		if err != nil {
			return nil, errors.Wrap(errors.KindDataset, "could not load CSV file", err)
		}
		return ds, nil
	}
	if !typ.IsDatabase() {
		return nil, errors.New(errors.KindUsage, fmt.Sprintf("unsupported data source %q: use a .csv file, postgres://, mysql://, sqlite:// or a .db file", logging.Mask(source)))
	}

	connString, err := dsn.Parse(source)
	if err != nil {
		return nil, errors.Wrap(errors.KindUsage, "invalid data source", err)
	}
	src, err := connect(ctx, typ, connString)
	if err != nil {
		return nil, errors.Wrap(errors.KindDataset, fmt.Sprintf("could not connect to %s", typ), err)
	}
	defer src.Close()

	query, name, err := resolveQuery(ctx, src, q)
	if err != nil {
		return nil, err
	}
	df, err := src.QueryFrame(ctx, query)
	if err != nil {
		return nil, errors.Wrap(errors.KindDataset, "could not load dataset", err)
	}
	return New(name, logging.Mask(source), df), nil
}

func connect(ctx context.Context, typ dsn.SourceType, connString string) (sqlexec.Source, error) {
	switch typ {
	case dsn.SourcePostgreSQL:
		return sqlexec.Connect(ctx, connString)
	case dsn.SourceMySQL:
		return sqlexec.Open(ctx, sqlexec.DialectMySQL, connString)
	default:
		return sqlexec.Open(ctx, sqlexec.DialectSQLite, connString)
	}
}

// resolveQuery picks the statement to run. Without a table or query, a
// database holding exactly one table is read whole.
func resolveQuery(ctx context.Context, src sqlexec.Source, q Query) (query, name string, err error) {
	switch {
	case q.Table != "" && q.SQL != "":
		return "", "", errors.New(errors.KindUsage, "use either --table or --query, not both")
	case q.SQL != "":
		return q.SQL, "query", nil
	case q.Table != "":
		return src.SelectTable(q.Table), q.Table, nil
	}

	tables, err := src.Tables(ctx)
	if err != nil {
		return "", "", errors.Wrap(errors.KindDataset, "could not list tables", err)
	}
	if len(tables) != 1 {
		return "", "", errors.New(errors.KindUsage, fmt.Sprintf("database has %d tables (%s): choose one with --table", len(tables), strings.Join(tables, ", ")))
	}
	return src.SelectTable(tables[0]), tables[0], nil
}

// Tables lists the tables of a database source.
func Tables(ctx context.Context, source string) ([]string, error) {
	typ := dsn.DetectSourceType(source)
	if !typ.IsDatabase() {
		return nil, errors.New(errors.KindUsage, "only database sources have tables")
	}
	connString, err := dsn.Parse(source)
	if err != nil {
		return nil, errors.Wrap(errors.KindUsage, "invalid data source", err)
	}
	src, err := connect(ctx, typ, connString)
	if err != nil {
		return nil, errors.Wrap(errors.KindDataset, fmt.Sprintf("could not connect to %s", typ), err)
	}
	defer src.Close()
	return src.Tables(ctx)
}

// ColumnTypes returns the declared SQL type of each column of a PostgreSQL
// table. Other sources have no declared types and return nil.
func ColumnTypes(ctx context.Context, source, table string) (map[string]string, error) {
	if dsn.DetectSourceType(source) != dsn.SourcePostgreSQL || table == "" {
		return nil, nil
	}
	connString, err := dsn.Parse(source)
	if err != nil {
		return nil, errors.Wrap(errors.KindUsage, "invalid data source", err)
	}
	ex, err := sqlexec.Connect(ctx, connString)
	if err != nil {
		return nil, errors.Wrap(errors.KindDataset, "could not connect to postgresql", err)
	}
	defer ex.Close()

	cols, err := ex.Inspector().Columns(ctx, table)
	if err != nil {
		return nil, errors.Wrap(errors.KindDataset, "could not read column types", err)
	}
	out := make(map[string]string, len(cols))
	for _, c := range cols {
		out[c.Name] = c.DataType
	}
	return out, nil
}
