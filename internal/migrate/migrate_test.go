package migrate

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "github.com/tursodatabase/go-libsql"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("libsql", "file::memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n))
	return n == 1
}

var fixture = fstest.MapFS{
	"001_first.up.sql":    {Data: []byte("-- first table; with a semicolon\nCREATE TABLE one (id TEXT);")},
	"001_first.down.sql":  {Data: []byte("DROP TABLE one;")},
	"002_second.up.sql":   {Data: []byte("CREATE TABLE two (id TEXT);\nCREATE TABLE three (id TEXT);")},
	"002_second.down.sql": {Data: []byte("DROP TABLE three;\nDROP TABLE two;")},
	"README.md":           {Data: []byte("ignored")},
}

func TestMigrator_UpAndDown(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	var out bytes.Buffer
	m := New(db, WithSource(fixture), WithOutput(&out))

	applied, err := m.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)
	assert.True(t, tableExists(t, db, "three"))
	assert.Contains(t, out.String(), "up 002_second")

	v, dirty, err := m.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.False(t, dirty)

	applied, err = m.Up(ctx)
	require.NoError(t, err)
	assert.Zero(t, applied)

	require.NoError(t, m.To(ctx, 1))
	assert.False(t, tableExists(t, db, "two"))
	assert.True(t, tableExists(t, db, "one"))

	require.NoError(t, m.To(ctx, 0))
	assert.False(t, tableExists(t, db, "one"))
	v, _, err = m.Version(ctx)
	require.NoError(t, err)
	assert.Zero(t, v)

	require.NoError(t, m.To(ctx, 2))
	assert.True(t, tableExists(t, db, "two"))
}

func TestMigrator_UnknownTarget(t *testing.T) {
	m := New(openDB(t), WithSource(fixture))
	assert.Error(t, m.To(context.Background(), 9))
	assert.Error(t, m.To(context.Background(), -1))
}

func TestMigrator_FailedStatementLeavesDirty(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	m := New(db, WithSource(fstest.MapFS{
		"001_broken.up.sql": {Data: []byte("CREATE TABLE ok (id TEXT); CREATE TABLEX nope;")},
	}))

	_, err := m.Up(ctx)
	require.Error(t, err)

	v, dirty, err := m.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.True(t, dirty)

	_, err = m.Up(ctx)
	assert.True(t, errors.Is(err, ErrDirty), "got %v", err)
}

func TestMigrator_MissingDown(t *testing.T) {
	ctx := context.Background()
	m := New(openDB(t), WithSource(fstest.MapFS{
		"001_only_up.up.sql": {Data: []byte("CREATE TABLE x (id TEXT);")},
	}))
	_, err := m.Up(ctx)
	require.NoError(t, err)
	assert.ErrorContains(t, m.To(ctx, 0), "no down migration")
}

func TestLoad_Embedded(t *testing.T) {
	all, err := New(nil).Load()
	require.NoError(t, err)
	require.NotEmpty(t, all)
	assert.Equal(t, 1, all[0].Version)
	assert.NotEmpty(t, all[0].DownSQL)
}

func TestRunAll_CreatesSchema(t *testing.T) {
	db := openDB(t)
	require.NoError(t, RunAll(context.Background(), db))
	for _, table := range []string{"ab_tests", "ab_test_variants", "ab_test_assignments", "ab_test_events"} {
		assert.True(t, tableExists(t, db, table), table)
	}
}

func TestSplitSQL(t *testing.T) {
	got := SplitSQL("-- comment; here\nCREATE TABLE a (x);\n\n  ;CREATE TABLE b (y);\n")
	assert.Equal(t, []string{"CREATE TABLE a (x)", "CREATE TABLE b (y)"}, got)
}
