package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/vvka-141/dbhandler/pkg/dbhandler"
)

var errFakeQuery = errors.New("server closed the connection unexpectedly")

// fakeDriver hands out fakeConns. openErrs is consumed one entry per Open;
// a nil entry (or an exhausted slice) means success.
type fakeDriver struct {
	openErrs []error
	opens    int
	conns    []*fakeConn

	// failures is how many Execute calls fail on each new connection.
	failures int
	// failAll makes every Execute and QueryTable fail.
	failAll bool
	// panicOnOpen makes the Nth Open panic (1-based, 0 disables).
	panicOnOpen int
	// panicOnExecute makes Execute panic.
	panicOnExecute bool
	// closeErr is returned by cursor Close.
	closeErr error

	rows []dbhandler.Row
}

func (d *fakeDriver) Name() string { return "fake" }

func (d *fakeDriver) Open(ctx context.Context, access dbhandler.AccessInformation) (dbhandler.Conn, error) {
	d.opens++
	if d.panicOnOpen == d.opens {
		panic("driver failed while connecting")
	}
	if len(d.openErrs) > 0 {
		err := d.openErrs[0]
		d.openErrs = d.openErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	c := &fakeConn{id: len(d.conns) + 1, driver: d}
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *fakeDriver) last() *fakeConn {
	return d.conns[len(d.conns)-1]
}

type fakeConn struct {
	id       int
	driver   *fakeDriver
	closed   bool
	executes int
	tables   int
	cursors  []*fakeCursor
}

func (c *fakeConn) Cursor(ctx context.Context) (dbhandler.Cursor, error) {
	if c.closed {
		return nil, errors.New("conn closed")
	}
	cur := &fakeCursor{conn: c}
	c.cursors = append(c.cursors, cur)
	return cur, nil
}

func (c *fakeConn) QueryTable(ctx context.Context, q dbhandler.QuerySpec) (*dbhandler.Table, error) {
	c.tables++
	if c.driver.failAll || c.tables <= c.driver.failures {
		return nil, fmt.Errorf("table attempt %d: %w", c.tables, errFakeQuery)
	}
	t := &dbhandler.Table{Columns: []dbhandler.Column{{Name: "id"}, {Name: "name"}}}
	for _, r := range c.driver.rows {
		t.Rows = append(t.Rows, []dbhandler.Value{r.Get("id"), r.Get("name")})
	}
	return t, nil
}

func (c *fakeConn) Close(ctx context.Context) error {
	c.closed = true
	return nil
}

type fakeCursor struct {
	conn     *fakeConn
	executed bool
	closed   bool
	failed   bool
	reused   bool
}

func (c *fakeCursor) Execute(ctx context.Context, q dbhandler.QuerySpec) error {
	if c.executed {
		c.reused = true
	}
	c.executed = true
	c.conn.executes++
	if c.conn.driver.panicOnExecute {
		panic("driver bug")
	}
	d := c.conn.driver
	if d.failAll || c.conn.executes <= d.failures {
		c.failed = true
		return fmt.Errorf("attempt %d: %w", c.conn.executes, errFakeQuery)
	}
	return nil
}

func (c *fakeCursor) FetchAll(ctx context.Context) ([]dbhandler.Row, error) {
	return c.conn.driver.rows, nil
}

func (c *fakeCursor) Close(ctx context.Context) error {
	c.closed = true
	return c.conn.driver.closeErr
}

func sampleRows() []dbhandler.Row {
	return []dbhandler.Row{
		{"id": dbhandler.IntValue(1), "name": dbhandler.StringValue("alpha")},
		{"id": dbhandler.IntValue(2), "name": dbhandler.Null},
	}
}

func validAccess() dbhandler.AccessInformation {
	return dbhandler.AccessInformation{Host: "db.local", User: "analyst", Password: "secret", Database: "dw"}
}
