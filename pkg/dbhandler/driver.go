package dbhandler

import "context"

// Driver opens sessions against a database. Implementations own the wire
// protocol; this package treats them as opaque.
type Driver interface {
	// Name identifies the driver in logs ("postgres", "sqlite3").
	Name() string

	// Open establishes a new session. Failures should wrap ErrConnectionFailed.
	Open(ctx context.Context, access AccessInformation) (Conn, error)
}

// Conn is a single live session.
//
// Thread-Safety: a Conn is used by one goroutine at a time.
type Conn interface {
	// Cursor returns a new cursor whose rows are keyed by column name.
	// The cursor opens a transaction-like scope that ends when it is closed.
	Cursor(ctx context.Context) (Cursor, error)

	// QueryTable executes a query and materializes the whole result into a Table
	// in one call.
	QueryTable(ctx context.Context, q QuerySpec) (*Table, error)

	// Close releases the session. Closing twice is not an error.
	Close(ctx context.Context) error
}

// Cursor executes one query and fetches its rows. It must be closed on every
// path; Close commits the scope if the fetch succeeded and rolls it back otherwise.
type Cursor interface {
	// Execute runs the query with its bind parameters.
	Execute(ctx context.Context, q QuerySpec) error

	// FetchAll returns every row of the executed query, in driver order.
	FetchAll(ctx context.Context) ([]Row, error)

	// Close releases the cursor.
	Close(ctx context.Context) error
}
