package sqldriver

import (
	"context"
	"database/sql"

	"github.com/agnosticeng/dbal"
)

type rows struct {
	rows *sql.Rows
	cols []string
}

func (r *rows) Columns() []string {
	return r.cols
}

func (r *rows) Next(context.Context) (dbal.Row, error) {
	if !r.rows.Next() {
		return nil, r.rows.Err()
	}

	var (
		values  = make([]any, len(r.cols))
		targets = make([]any, len(r.cols))
	)

	for i := range values {
		targets[i] = &values[i]
	}

	if err := r.rows.Scan(targets...); err != nil {
		return nil, err
	}

	var row = make(dbal.Row, len(r.cols))

	for i, col := range r.cols {
		row[col] = values[i]
	}

	return row, nil
}

func (r *rows) Close() error {
	return r.rows.Close()
}
