// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertValue(t *testing.T) {
	uuid := [16]byte{0x12, 0x3e, 0x45, 0x67, 0xe8, 0x9b, 0x12, 0xd3, 0xa4, 0x56, 0x42, 0x66, 0x14, 0x17, 0x40, 0x00}
	when := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want any
	}{
		{name: "nil", in: nil, want: nil},
		{name: "uuid array", in: uuid, want: "123e4567-e89b-12d3-a456-426614174000"},
		{name: "uuid bytes", in: uuid[:], want: "123e4567-e89b-12d3-a456-426614174000"},
		{name: "text bytes", in: []byte("lose weight"), want: "lose weight"},
		{name: "int", in: int64(7), want: int64(7)},
		{name: "time", in: when, want: when},
		{name: "invalid numeric", in: pgtype.Numeric{}, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, convertValue(tt.in))
		})
	}
}

func TestResultFrame(t *testing.T) {
	res := Result{
		Columns: []string{"id", "weight"},
		Rows:    [][]any{{int64(1), []byte("80")}, {int64(2), nil}},
	}
	f := res.Frame()
	require.Equal(t, 2, f.Len())
	assert.Equal(t, 1.0, f.Col("id").At(0))
	assert.Equal(t, "80", f.Col("weight").At(0))
	assert.True(t, f.Col("weight").IsMissing(1))
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, "`fitness`.`users`", quoteIdent(DialectMySQL, "fitness.users"))
	assert.Equal(t, `"we""ird"`, quoteIdent(DialectSQLite, `we"ird`))
	assert.Equal(t, `SELECT * FROM "public"."users"`, (&Executor{}).SelectTable("users"))
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "users.db")

	rw, err := Open(ctx, DialectSQLite, "file:"+path)
	require.NoError(t, err)
	_, err = rw.DB.ExecContext(ctx, `CREATE TABLE users (name TEXT, weight TEXT, age INTEGER)`)
	require.NoError(t, err)
	_, err = rw.DB.ExecContext(ctx, `INSERT INTO users VALUES ('Ann', '1,250', 34), ('Bob', NULL, 41)`)
	require.NoError(t, err)
	rw.Close()

	ro, err := Open(ctx, DialectSQLite, "file:"+path+"?mode=ro")
	require.NoError(t, err)
	defer ro.Close()

	tables, err := ro.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"users"}, tables)

	f, err := ro.QueryFrame(ctx, ro.SelectTable("users"))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "weight", "age"}, f.Columns())
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, 41.0, f.Col("age").At(1))
	assert.True(t, f.Col("weight").IsMissing(1))

	_, err = ro.QueryFrame(ctx, "SELECT * FROM missing_table")
	assert.Error(t, err)
}
