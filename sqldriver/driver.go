// Package sqldriver adapts database/sql drivers to the dbal driver boundary.
//
// Each Connect call opens a dedicated *sql.DB capped at a single connection
// and pins its one physical connection, so a handle maps one-to-one onto a
// server session. The driver must have been registered with database/sql
// beforehand, typically through a blank import.
package sqldriver

import (
	"context"
	"database/sql"

	"github.com/agnosticeng/dbal"
)

type Driver struct {
	name    string
	dialect dialect
}

// New builds a Driver for the database/sql driver registered under name
// ("mysql", "postgres", "sqlite", "clickhouse", ...).
func New(name string) *Driver {
	return &Driver{name: name, dialect: dialectFor(name)}
}

func (d *Driver) Connect(ctx context.Context, dsn string, username string, password string) (dbal.Handle, error) {
	db, err := sql.Open(d.name, d.dialect.applyCredentials(dsn, username, password))

	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	conn, err := db.Conn(ctx)

	if err != nil {
		db.Close()
		return nil, err
	}

	return &handle{name: d.name, dialect: d.dialect, db: db, conn: conn}, nil
}
