package dbal

import "context"

// Row is a single result row keyed by column name.
type Row map[string]any

// Driver opens physical connections from DSN strings.
type Driver interface {
	Connect(ctx context.Context, dsn string, username string, password string) (Handle, error)
}

// Handle is a single physical connection to a database server.
//
// A handle is owned by exactly one Connection and is never shared.
type Handle interface {
	Prepare(ctx context.Context, query string) (Stmt, error)

	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// InTransaction reports the driver-side transaction status of this
	// physical connection, not any bookkeeping done above it.
	InTransaction() bool

	// LastInsertID returns the most recently generated row identifier,
	// or the current value of the given sequence when one is named.
	LastInsertID(ctx context.Context, sequence string) (string, error)

	DriverName() string
	ServerVersion(ctx context.Context) (string, error)

	Close() error
}

// Stmt is a prepared statement on a single handle.
type Stmt interface {
	Bind(p BindParameter) error

	// Exec runs the statement and returns the number of affected rows.
	Exec(ctx context.Context) (int64, error)

	// Query runs the statement and returns a server-side cursor.
	Query(ctx context.Context) (Rows, error)

	Close() error
}

// Rows is an open server-side cursor. Next fetches one row per call and
// returns a nil row once the result set is exhausted.
type Rows interface {
	Columns() []string
	Next(ctx context.Context) (Row, error)
	Close() error
}
