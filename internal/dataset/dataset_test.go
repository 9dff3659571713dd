// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dataset

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"askdata/cli/internal/errors"
	"askdata/cli/internal/frame"
	"askdata/cli/internal/sqlexec"
)

func users() *frame.Frame {
	header := []string{"userid", "gender", "weight", "birth date", "coach notes"}
	var records [][]string
	for i := 1; i <= 12; i++ {
		gender := "F"
		if i%2 == 0 {
			gender = "M"
		}
		records = append(records, []string{
			fmt.Sprint(i),
			gender,
			fmt.Sprintf("%d,%03d", 1, i),
			fmt.Sprintf("19%02d-0%d-1%d", 70+i, 1+i%9, i%9),
			fmt.Sprintf("note number %d", i),
		})
	}
	return frame.FromRecords(header, records)
}

func TestInferColumns(t *testing.T) {
	cols := InferColumns(users())
	want := []Column{
		{Name: "userid", Role: RoleIdentifier},
		{Name: "gender", Role: RoleCategorical},
		{Name: "weight", Role: RoleNumeric, NumericText: true},
		{Name: "birth date", Role: RoleDate, DateLayout: "2006-01-02"},
		{Name: "coach notes", Role: RoleText},
	}
	require.Len(t, cols, len(want))
	for i, w := range want {
		t.Run(w.Name, func(t *testing.T) {
			assert.Equal(t, w, cols[i])
		})
	}
}

func TestInferColumnIgnoresNullMarkers(t *testing.T) {
	f := frame.FromRecords([]string{"height"}, [][]string{{"170"}, {"n/a"}, {"NULL"}, {"165"}, {"-"}})
	col := InferColumns(f)[0]
	assert.Equal(t, RoleNumeric, col.Role)
	assert.False(t, col.NumericText, "plain numbers only need conversion when formatted")
}

func TestInferAllMissingIsText(t *testing.T) {
	f := frame.FromRecords([]string{"allergen tags"}, [][]string{{""}, {""}})
	assert.Equal(t, RoleText, InferColumns(f)[0].Role)
}

func TestNewAppliesOverridesAndClones(t *testing.T) {
	f := users()
	ds := New("users", "users.csv", f, Column{Name: "coach notes", Role: RoleCategorical})

	c, ok := ds.Column("coach notes")
	require.True(t, ok)
	assert.Equal(t, RoleCategorical, c.Role)

	_, ok = ds.Column("height")
	assert.False(t, ok)

	assert.Equal(t, f.Columns(), ds.ColumnNames())
	assert.Equal(t, 12, ds.Len())
	assert.Equal(t, 3, ds.Head(3).Len())

	// derived frames must not leak back into the dataset
	df := ds.Frame()
	df = df.WithColumn(df.Col("weight").ToNumeric())
	assert.Equal(t, "1,001", ds.Frame().Col("weight").At(0))
}

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr string
	}{
		{name: "byte order mark", input: "\ufeffname,age\nAnn,34\n", want: []string{"name", "age"}},
		{name: "blank header", input: "name,,age\nAnn,x,34\n", want: []string{"name", "column_2", "age"}},
		{name: "padded header", input: " first name , email\nAnn,a@x\n", want: []string{"first name", "email"}},
		{name: "duplicate header", input: "a,a\n1,2\n", wantErr: "duplicate column"},
		{name: "empty file", input: "", wantErr: "empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseCSV(strings.NewReader(tt.input), ',')
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Columns())
		})
	}
}

func TestParseCSVRaggedRows(t *testing.T) {
	f, err := ParseCSV(strings.NewReader("a,b,c\n1,2\n4,5,6\n"), ',')
	require.NoError(t, err)
	assert.Equal(t, 2, f.Len())
	assert.True(t, f.Col("c").IsMissing(0))
}

func TestLoadCSVTSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.tsv")
	require.NoError(t, os.WriteFile(path, []byte("planid\tproduct\n1\tbasic\n2\tpremium\n"), 0o600))

	ds, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, "plans.tsv", ds.Name())
	assert.Equal(t, []string{"planid", "product"}, ds.ColumnNames())
}

func TestCacheLoadsOnce(t *testing.T) {
	c := NewCache()
	var calls atomic.Int32
	release := make(chan struct{})
	load := func(ctx context.Context) (*Dataset, error) {
		calls.Add(1)
		<-release
		return New("users", "users.csv", users()), nil
	}

	var wg sync.WaitGroup
	results := make([]*Dataset, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ds, err := c.Get(context.Background(), "users.csv", load)
			if err == nil {
				results[i] = ds
			}
		}(i)
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, c.Len())
	for _, ds := range results {
		assert.Same(t, results[0], ds)
	}
}

func TestCacheDoesNotKeepFailures(t *testing.T) {
	c := NewCache()
	calls := 0
	load := func(ctx context.Context) (*Dataset, error) {
		calls++
		if calls == 1 {
			return nil, stderrors.New("disk unplugged")
		}
		return New("users", "users.csv", users()), nil
	}

	_, err := c.Get(context.Background(), "k", load)
	require.Error(t, err)
	assert.Equal(t, 0, c.Len())

	ds, err := c.Get(context.Background(), "k", load)
	require.NoError(t, err)
	assert.Equal(t, "users", ds.Name())
	assert.Equal(t, 2, calls)
}

func TestQueryKey(t *testing.T) {
	a := Query{Table: "users"}.Key("db.sqlite")
	b := Query{SQL: "users"}.Key("db.sqlite")
	assert.NotEqual(t, a, b)
}

func TestOpenCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.csv")
	require.NoError(t, os.WriteFile(path, []byte("userid,gender\n1,F\n2,M\n"), 0o600))

	ds, err := Open(context.Background(), path, Query{})
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())

	_, err = Open(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), Query{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindDataset))
}

func TestOpenUnsupportedSource(t *testing.T) {
	_, err := Open(context.Background(), "users.parquet", Query{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindUsage))
}

func sqliteFile(t *testing.T, statements ...string) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fitness.db")
	db, err := sqlexec.Open(ctx, sqlexec.DialectSQLite, "file:"+path)
	require.NoError(t, err)
	defer db.Close()
	for _, s := range statements {
		_, err := db.DB.ExecContext(ctx, s)
		require.NoError(t, err)
	}
	return path
}

func TestOpenSQLite(t *testing.T) {
	ctx := context.Background()
	single := sqliteFile(t,
		`CREATE TABLE users (userid INTEGER, gender TEXT)`,
		`INSERT INTO users VALUES (1, 'F'), (2, 'M'), (3, 'F')`,
	)

	ds, err := Open(ctx, single, Query{})
	require.NoError(t, err)
	assert.Equal(t, "users", ds.Name())
	assert.Equal(t, 3, ds.Len())

	ds, err = Open(ctx, "sqlite://"+single, Query{SQL: "SELECT gender FROM users WHERE userid > 1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"gender"}, ds.ColumnNames())
	assert.Equal(t, 2, ds.Len())

	_, err = Open(ctx, single, Query{Table: "users", SQL: "SELECT 1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindUsage))
}

func TestOpenSQLiteNeedsTableChoice(t *testing.T) {
	ctx := context.Background()
	path := sqliteFile(t,
		`CREATE TABLE users (userid INTEGER)`,
		`CREATE TABLE plans (planid INTEGER)`,
	)

	_, err := Open(ctx, path, Query{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindUsage))
	assert.Contains(t, err.Error(), "--table")

	tables, err := Tables(ctx, path)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"users", "plans"}, tables)

	ds, err := Open(ctx, path, Query{Table: "plans"})
	require.NoError(t, err)
	assert.Equal(t, "plans", ds.Name())
}
