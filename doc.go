/*
Package dbal is a connection-management layer above a SQL database driver.

A Connection owns a write DSN and an optional read DSN, and lazily opens one
physical connection per DSN on first use. Reads go to the read connection,
writes and transaction control go to the write connection, and while a
transaction is open every operation is routed to the write connection so that
a transaction always reads its own writes.

Transactions are reference counted: nested Begin calls only increment a depth
counter, and only the outermost Begin/Commit pair reaches the database.
Rollback unwinds all nesting levels at once.

Parameters may be passed positionally, by name, or as a pre-built
BindParameterList; they are normalized into (name, value, type) triples before
being bound to a prepared statement.

Every connection establishment and statement execution can be recorded through
an optional Logger; a nil logger disables recording without changing behavior.

A Connection is not safe for concurrent use. Callers that need concurrency
must use one Connection per goroutine, or an external pool of Connections.
*/
package dbal
