package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vvka-141/dbhandler/pkg/dbhandler"
)

// SQLDriver opens sessions through database/sql. It is used for SQLite, where
// AccessInformation.Host is the database file path (or ":memory:").
type SQLDriver struct {
	driverName string
	logger     dbhandler.Logger
}

// NewSQLDriver returns a driver for a database/sql driver registered under driverName.
func NewSQLDriver(driverName string, logger dbhandler.Logger) *SQLDriver {
	return &SQLDriver{driverName: driverName, logger: logger}
}

func (d *SQLDriver) Name() string { return d.driverName }

// Open pins a single connection so that in-memory databases and transactions
// see the same session for the lifetime of the returned Conn.
func (d *SQLDriver) Open(ctx context.Context, access dbhandler.AccessInformation) (dbhandler.Conn, error) {
	if err := access.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open(d.driverName, access.Host)
	if err != nil {
		return nil, fmt.Errorf("open %s database %q: %w: %w", d.driverName, access.Host, dbhandler.ErrConnectionFailed, err)
	}
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err == nil {
		err = conn.PingContext(ctx)
	}
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		db.Close()
		return nil, fmt.Errorf("open %s database %q: %w: %w", d.driverName, access.Host, dbhandler.ErrConnectionFailed, err)
	}

	d.logger.Verbose("Opened %s database %s", d.driverName, access.Host)
	return &sqlConn{db: db, conn: conn}, nil
}

type sqlConn struct {
	db     *sql.DB
	conn   *sql.Conn
	closed bool
}

func (c *sqlConn) Cursor(ctx context.Context) (dbhandler.Cursor, error) {
	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w: %w", dbhandler.ErrQueryExecution, err)
	}
	return &sqlCursor{tx: tx}, nil
}

func (c *sqlConn) QueryTable(ctx context.Context, q dbhandler.QuerySpec) (*dbhandler.Table, error) {
	rows, err := c.conn.QueryContext(ctx, q.Text, q.Params...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dbhandler.ErrQueryExecution, err)
	}
	defer rows.Close()

	table, err := scanTable(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dbhandler.ErrQueryExecution, err)
	}
	return table, nil
}

func (c *sqlConn) Close(ctx context.Context) error {
	if c.closed {
		return nil
	}
	c.closed = true
	return errors.Join(c.conn.Close(), c.db.Close())
}

type sqlCursor struct {
	tx     *sql.Tx
	rows   *sql.Rows
	failed bool
	closed bool
}

func (c *sqlCursor) Execute(ctx context.Context, q dbhandler.QuerySpec) error {
	if c.closed {
		return fmt.Errorf("cursor is closed: %w", dbhandler.ErrQueryExecution)
	}
	if c.rows != nil {
		c.rows.Close()
		c.rows = nil
	}

	rows, err := c.tx.QueryContext(ctx, q.Text, q.Params...)
	if err != nil {
		c.failed = true
		return fmt.Errorf("%w: %w", dbhandler.ErrQueryExecution, err)
	}
	c.rows = rows
	return nil
}

func (c *sqlCursor) FetchAll(ctx context.Context) ([]dbhandler.Row, error) {
	if c.rows == nil {
		return nil, fmt.Errorf("fetch before execute: %w", dbhandler.ErrQueryExecution)
	}
	rows := c.rows
	c.rows = nil
	defer rows.Close()

	table, err := scanTable(rows)
	if err != nil {
		c.failed = true
		return nil, fmt.Errorf("%w: %w", dbhandler.ErrQueryExecution, err)
	}
	return table.Records(), nil
}

func (c *sqlCursor) Close(ctx context.Context) error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.rows != nil {
		c.rows.Close()
		c.rows = nil
	}
	if c.failed {
		return c.tx.Rollback()
	}
	return c.tx.Commit()
}

// scanTable reads every remaining row. Column types come from the declared
// type reported by the driver; []byte is only kept binary for blob columns.
func scanTable(rows *sql.Rows) (*dbhandler.Table, error) {
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	table := &dbhandler.Table{Columns: make([]dbhandler.Column, len(colTypes))}
	binary := make([]bool, len(colTypes))
	for i, ct := range colTypes {
		typeName := ct.DatabaseTypeName()
		table.Columns[i] = dbhandler.Column{Name: ct.Name(), Type: typeName}
		binary[i] = isBinaryType(typeName)
	}

	dest := make([]any, len(colTypes))
	ptrs := make([]any, len(colTypes))
	for i := range dest {
		ptrs[i] = &dest[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		values := make([]dbhandler.Value, len(dest))
		for i, v := range dest {
			if b, ok := v.([]byte); ok && !binary[i] {
				values[i] = dbhandler.StringValue(string(b))
				continue
			}
			values[i] = dbhandler.NewValue(v)
		}
		table.Rows = append(table.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

func isBinaryType(typeName string) bool {
	t := strings.ToUpper(typeName)
	return strings.Contains(t, "BLOB") || strings.Contains(t, "BINARY") || t == "BYTEA"
}
