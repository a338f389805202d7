package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/dbhandler/internal/logging"
	"github.com/vvka-141/dbhandler/pkg/dbhandler"
)

func sqliteAccess(path string) dbhandler.AccessInformation {
	return dbhandler.AccessInformation{Host: path, User: "sqlite", Password: "sqlite", Driver: dbhandler.DriverSQLite}
}

func openSQLite(t *testing.T, path string) dbhandler.Conn {
	t.Helper()
	ctx := context.Background()

	conn, err := NewSQLDriver(dbhandler.DriverSQLite, logging.NewNullLogger()).Open(ctx, sqliteAccess(path))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(ctx) })
	return conn
}

// run executes statements through one cursor and closes it.
func run(t *testing.T, conn dbhandler.Conn, statements ...string) {
	t.Helper()
	ctx := context.Background()

	cur, err := conn.Cursor(ctx)
	require.NoError(t, err)
	for _, stmt := range statements {
		require.NoError(t, cur.Execute(ctx, dbhandler.Query(stmt)))
		_, err := cur.FetchAll(ctx)
		require.NoError(t, err)
	}
	require.NoError(t, cur.Close(ctx))
}

func TestSQLDriver_Open_InvalidAccess(t *testing.T) {
	_, err := NewSQLDriver(dbhandler.DriverSQLite, logging.NewNullLogger()).Open(context.Background(), dbhandler.AccessInformation{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, dbhandler.ErrInvalidConfig))
}

func TestSQLDriver_Open_UnreachableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "db.sqlite")

	_, err := NewSQLDriver(dbhandler.DriverSQLite, logging.NewNullLogger()).Open(context.Background(), sqliteAccess(path))
	require.Error(t, err)
	assert.True(t, errors.Is(err, dbhandler.ErrConnectionFailed))
}

func TestSQLCursor_FetchAll(t *testing.T) {
	conn := openSQLite(t, ":memory:")
	run(t, conn,
		"CREATE TABLE sales (id INTEGER, region TEXT, amount REAL, note TEXT)",
		"INSERT INTO sales VALUES (1, 'north', 10.5, NULL), (2, 'south', 7.25, 'late')",
	)

	ctx := context.Background()
	cur, err := conn.Cursor(ctx)
	require.NoError(t, err)
	defer cur.Close(ctx)

	require.NoError(t, cur.Execute(ctx, dbhandler.Query("SELECT id, region, amount, note FROM sales WHERE id >= ? ORDER BY id", 1)))
	rows, err := cur.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.True(t, rows[0].Get("id").Equal(dbhandler.IntValue(1)))
	assert.True(t, rows[0].Get("region").Equal(dbhandler.StringValue("north")))
	assert.True(t, rows[0].Get("amount").Equal(dbhandler.FloatValue(10.5)))
	assert.True(t, rows[0].Get("note").IsNull())
	assert.Equal(t, "late", rows[1].Get("note").String())
}

func TestSQLCursor_FetchBeforeExecute(t *testing.T) {
	conn := openSQLite(t, ":memory:")
	ctx := context.Background()

	cur, err := conn.Cursor(ctx)
	require.NoError(t, err)
	defer cur.Close(ctx)

	_, err = cur.FetchAll(ctx)
	assert.True(t, errors.Is(err, dbhandler.ErrQueryExecution))
}

func TestSQLCursor_RollsBackAfterFailure(t *testing.T) {
	conn := openSQLite(t, ":memory:")
	run(t, conn, "CREATE TABLE t (n INTEGER)")

	ctx := context.Background()
	cur, err := conn.Cursor(ctx)
	require.NoError(t, err)
	require.NoError(t, cur.Execute(ctx, dbhandler.Query("INSERT INTO t VALUES (1)")))
	_, err = cur.FetchAll(ctx)
	require.NoError(t, err)

	err = cur.Execute(ctx, dbhandler.Query("SELECT * FROM no_such_table"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, dbhandler.ErrQueryExecution))
	require.NoError(t, cur.Close(ctx))

	table, err := conn.QueryTable(ctx, dbhandler.Query("SELECT COUNT(*) AS n FROM t"))
	require.NoError(t, err)
	assert.True(t, table.Get(0, "n").Equal(dbhandler.IntValue(0)))
}

func TestSQLCursor_CommitsOnSuccess(t *testing.T) {
	conn := openSQLite(t, ":memory:")
	run(t, conn, "CREATE TABLE t (n INTEGER)", "INSERT INTO t VALUES (1), (2)")

	table, err := conn.QueryTable(context.Background(), dbhandler.Query("SELECT COUNT(*) AS n FROM t"))
	require.NoError(t, err)
	assert.True(t, table.Get(0, "n").Equal(dbhandler.IntValue(2)))
}

func TestSQLCursor_CloseIsIdempotent(t *testing.T) {
	conn := openSQLite(t, ":memory:")
	ctx := context.Background()

	cur, err := conn.Cursor(ctx)
	require.NoError(t, err)
	require.NoError(t, cur.Close(ctx))
	require.NoError(t, cur.Close(ctx))

	assert.Error(t, cur.Execute(ctx, dbhandler.Query("SELECT 1")))
}

func TestSQLConn_QueryTable(t *testing.T) {
	conn := openSQLite(t, ":memory:")
	run(t, conn,
		"CREATE TABLE files (name TEXT, size INTEGER, payload BLOB)",
		"INSERT INTO files VALUES ('a.txt', 3, x'616263')",
	)

	table, err := conn.QueryTable(context.Background(), dbhandler.Query("SELECT name, size, payload FROM files"))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "size", "payload"}, table.ColumnNames())
	assert.Equal(t, "TEXT", table.Columns[0].Type)
	assert.Equal(t, "INTEGER", table.Columns[1].Type)
	require.Equal(t, 1, table.Len())

	assert.True(t, table.Get(0, "name").Equal(dbhandler.StringValue("a.txt")))
	payload, ok := table.Get(0, "payload").Bytes()
	require.True(t, ok)
	assert.Equal(t, []byte("abc"), payload)
}

func TestSQLConn_QueryTable_Error(t *testing.T) {
	conn := openSQLite(t, ":memory:")

	_, err := conn.QueryTable(context.Background(), dbhandler.Query("SELEC broken"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, dbhandler.ErrQueryExecution))
}

func TestSQLConn_FetchAndTableAgree(t *testing.T) {
	conn := openSQLite(t, ":memory:")
	run(t, conn,
		"CREATE TABLE t (id INTEGER, label TEXT)",
		"INSERT INTO t VALUES (1, 'one'), (2, 'two'), (3, NULL)",
	)
	ctx := context.Background()
	q := dbhandler.Query("SELECT id, label FROM t ORDER BY id")

	cur, err := conn.Cursor(ctx)
	require.NoError(t, err)
	require.NoError(t, cur.Execute(ctx, q))
	rows, err := cur.FetchAll(ctx)
	require.NoError(t, err)
	require.NoError(t, cur.Close(ctx))

	table, err := conn.QueryTable(ctx, q)
	require.NoError(t, err)

	records := table.Records()
	require.Len(t, records, len(rows))
	for i := range rows {
		for col, v := range rows[i] {
			assert.True(t, v.Equal(records[i][col]), "row %d column %s", i, col)
		}
	}
}

func TestSQLDriver_FileDatabasePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.db")
	ctx := context.Background()
	driver := NewSQLDriver(dbhandler.DriverSQLite, logging.NewNullLogger())

	first, err := driver.Open(ctx, sqliteAccess(path))
	require.NoError(t, err)
	run(t, first, "CREATE TABLE t (n INTEGER)", "INSERT INTO t VALUES (42)")
	require.NoError(t, first.Close(ctx))

	second, err := driver.Open(ctx, sqliteAccess(path))
	require.NoError(t, err)
	defer second.Close(ctx)

	table, err := second.QueryTable(ctx, dbhandler.Query("SELECT n FROM t"))
	require.NoError(t, err)
	assert.True(t, table.Get(0, "n").Equal(dbhandler.IntValue(42)))
}

func TestSQLConn_CloseTwice(t *testing.T) {
	ctx := context.Background()
	conn, err := NewSQLDriver(dbhandler.DriverSQLite, logging.NewNullLogger()).Open(ctx, sqliteAccess(":memory:"))
	require.NoError(t, err)

	require.NoError(t, conn.Close(ctx))
	require.NoError(t, conn.Close(ctx))
}
