package sqldriver

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/agnosticeng/dbal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func newSQLiteConnection(t *testing.T) *dbal.Connection {
	t.Helper()

	conn, err := dbal.New(New("sqlite"), dbal.Config{
		Name:     "test",
		WriteDSN: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)

	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSQLiteExecAndFetch(t *testing.T) {
	var (
		ctx  = context.Background()
		conn = newSQLiteConnection(t)
	)

	_, err := conn.Exec(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, active INTEGER)", nil)
	require.NoError(t, err)

	affected, err := conn.Exec(ctx, "INSERT INTO users (name, active) VALUES (?, ?)", []any{"alice", true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	_, err = conn.Exec(ctx, "INSERT INTO users (name, active) VALUES (?, ?)", []any{"bob", false})
	require.NoError(t, err)

	rows, err := conn.FetchAll(ctx, "SELECT id, name FROM users ORDER BY id", nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "alice", rows[0]["name"])
	assert.Equal(t, "bob", rows[1]["name"])

	row, err := conn.FetchOne(ctx, "SELECT name FROM users WHERE id = ?", []any{int64(2)})
	require.NoError(t, err)
	assert.Equal(t, "bob", row["name"])

	row, err = conn.FetchOne(ctx, "SELECT name FROM users WHERE id = ?", []any{int64(99)})
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestSQLiteNamedParameters(t *testing.T) {
	var (
		ctx  = context.Background()
		conn = newSQLiteConnection(t)
	)

	_, err := conn.Exec(ctx, "CREATE TABLE kv (k TEXT, v TEXT)", nil)
	require.NoError(t, err)

	_, err = conn.Exec(ctx, "INSERT INTO kv (k, v) VALUES (:k, :v)", map[string]any{
		"k": "greeting",
		"v": "hello",
	})
	require.NoError(t, err)

	row, err := conn.FetchOne(ctx, "SELECT v FROM kv WHERE k = :k", map[string]any{"k": "greeting"})
	require.NoError(t, err)
	assert.Equal(t, "hello", row["v"])
}

func TestSQLiteFetchColumnAndYield(t *testing.T) {
	var (
		ctx  = context.Background()
		conn = newSQLiteConnection(t)
	)

	_, err := conn.Exec(ctx, "CREATE TABLE nums (n INTEGER)", nil)
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		_, err = conn.Exec(ctx, "INSERT INTO nums (n) VALUES (?)", []any{i})
		require.NoError(t, err)
	}

	values, err := conn.FetchColumn(ctx, "SELECT n FROM nums ORDER BY n", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, values)

	iter, err := conn.YieldColumn(ctx, "SELECT n FROM nums ORDER BY n", nil, 0)
	require.NoError(t, err)

	var got []any

	for iter.Next(ctx) {
		got = append(got, iter.Value())
	}

	require.NoError(t, iter.Err())
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, got)
}

func TestSQLiteTransactions(t *testing.T) {
	var (
		ctx  = context.Background()
		conn = newSQLiteConnection(t)
	)

	_, err := conn.Exec(ctx, "CREATE TABLE t (n INTEGER)", nil)
	require.NoError(t, err)

	require.NoError(t, conn.Begin(ctx))
	assert.True(t, conn.InTransaction())

	_, err = conn.Exec(ctx, "INSERT INTO t (n) VALUES (1)", nil)
	require.NoError(t, err)

	require.NoError(t, conn.Rollback(ctx))
	assert.False(t, conn.InTransaction())

	rows, err := conn.FetchAll(ctx, "SELECT n FROM t", nil)
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.NoError(t, conn.Begin(ctx))

	_, err = conn.Exec(ctx, "INSERT INTO t (n) VALUES (2)", nil)
	require.NoError(t, err)

	require.NoError(t, conn.Commit(ctx))

	rows, err = conn.FetchAll(ctx, "SELECT n FROM t", nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0]["n"])
}

func TestSQLiteLastInsertID(t *testing.T) {
	var (
		ctx  = context.Background()
		conn = newSQLiteConnection(t)
	)

	_, err := conn.Exec(ctx, "CREATE TABLE t (id INTEGER PRIMARY KEY, v TEXT)", nil)
	require.NoError(t, err)

	_, err = conn.Exec(ctx, "INSERT INTO t (v) VALUES ('a')", nil)
	require.NoError(t, err)

	id, err := conn.LastInsertID(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "1", id)
}

func TestSQLiteDriverInfo(t *testing.T) {
	var (
		ctx  = context.Background()
		conn = newSQLiteConnection(t)
	)

	info, err := conn.DriverInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", info.Driver)
	assert.NotEmpty(t, info.Version)
	assert.False(t, info.Capabilities.HasLock())
	assert.True(t, info.Capabilities.HasWindowFunctions())
}

func TestSQLiteReadWriteSplit(t *testing.T) {
	var (
		ctx = context.Background()
		dsn = filepath.Join(t.TempDir(), "shared.db")
	)

	conn, err := dbal.New(New("sqlite"), dbal.Config{
		Name:     "split",
		WriteDSN: dsn,
		ReadDSN:  dsn,
	})
	require.NoError(t, err)

	defer conn.Close()

	_, err = conn.Exec(ctx, "CREATE TABLE t (n INTEGER)", nil)
	require.NoError(t, err)

	_, err = conn.Exec(ctx, "INSERT INTO t (n) VALUES (1)", nil)
	require.NoError(t, err)

	rows, err := conn.FetchAll(ctx, "SELECT n FROM t", nil)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	w, err := conn.WriteHandle(ctx)
	require.NoError(t, err)

	r, err := conn.ReadHandle(ctx)
	require.NoError(t, err)
	assert.NotSame(t, w, r)
}
