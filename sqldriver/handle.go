package sqldriver

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/agnosticeng/dbal"
	"github.com/hashicorp/go-multierror"
)

// handle is one pinned physical connection.
type handle struct {
	name    string
	dialect dialect
	db      *sql.DB
	conn    *sql.Conn
	version string
	inTx    bool
}

func (h *handle) Prepare(ctx context.Context, query string) (dbal.Stmt, error) {
	st, err := h.conn.PrepareContext(ctx, query)

	if err != nil {
		return nil, err
	}

	return &stmt{stmt: st}, nil
}

func (h *handle) Begin(ctx context.Context) error {
	if _, err := h.conn.ExecContext(ctx, "BEGIN"); err != nil {
		return err
	}

	h.inTx = true
	return nil
}

func (h *handle) Commit(ctx context.Context) error {
	if _, err := h.conn.ExecContext(ctx, "COMMIT"); err != nil {
		return err
	}

	h.inTx = false
	return nil
}

func (h *handle) Rollback(ctx context.Context) error {
	if _, err := h.conn.ExecContext(ctx, "ROLLBACK"); err != nil {
		return err
	}

	h.inTx = false
	return nil
}

func (h *handle) InTransaction() bool {
	return h.inTx
}

func (h *handle) LastInsertID(ctx context.Context, sequence string) (string, error) {
	var q = h.dialect.lastInsertIDQuery(sequence)

	if len(q) == 0 {
		return "", fmt.Errorf("sqldriver: driver %s has no identity-generation facility", h.name)
	}

	var id any

	if err := h.conn.QueryRowContext(ctx, q).Scan(&id); err != nil {
		return "", err
	}

	switch id := id.(type) {
	case []byte:
		return string(id), nil
	default:
		return fmt.Sprintf("%v", id), nil
	}
}

func (h *handle) DriverName() string {
	return h.name
}

func (h *handle) ServerVersion(ctx context.Context) (string, error) {
	if len(h.version) > 0 {
		return h.version, nil
	}

	var version string

	if err := h.conn.QueryRowContext(ctx, h.dialect.versionQuery()).Scan(&version); err != nil {
		return "", err
	}

	h.version = version
	return version, nil
}

func (h *handle) Close() error {
	var res *multierror.Error

	if err := h.conn.Close(); err != nil {
		res = multierror.Append(res, err)
	}

	if err := h.db.Close(); err != nil {
		res = multierror.Append(res, err)
	}

	return res.ErrorOrNil()
}
