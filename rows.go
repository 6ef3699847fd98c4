package dbal

import (
	"context"

	"github.com/hashicorp/go-multierror"
)

// RowIter lazily pulls rows from an open cursor, one driver fetch per Next
// call. It is single-pass: once exhausted or closed, it cannot be restarted.
// The cursor and its statement are released automatically on exhaustion;
// callers that abandon iteration early must call Close themselves.
type RowIter struct {
	stmt   Stmt
	rows   Rows
	row    Row
	err    error
	closed bool
}

// Next advances to the next row. It returns false at the end of the result
// set or on error; consult Err afterwards.
func (it *RowIter) Next(ctx context.Context) bool {
	if it.closed {
		return false
	}

	row, err := it.rows.Next(ctx)

	if err != nil {
		it.err = err
		it.Close()
		return false
	}

	if row == nil {
		it.Close()
		return false
	}

	it.row = row
	return true
}

// Row returns the row fetched by the last successful Next call.
func (it *RowIter) Row() Row {
	return it.row
}

func (it *RowIter) Err() error {
	return it.err
}

// Close releases the cursor and its statement. It is idempotent.
func (it *RowIter) Close() error {
	if it.closed {
		return nil
	}

	it.closed = true

	var res *multierror.Error

	if err := it.rows.Close(); err != nil {
		res = multierror.Append(res, err)
	}

	if err := it.stmt.Close(); err != nil {
		res = multierror.Append(res, err)
	}

	return res.ErrorOrNil()
}

// ColumnIter lazily pulls a single column's values from an open cursor, with
// the same single-pass contract as RowIter.
type ColumnIter struct {
	iter   RowIter
	column string
}

func (it *ColumnIter) Next(ctx context.Context) bool {
	return it.iter.Next(ctx)
}

// Value returns the column value of the row fetched by the last Next call.
func (it *ColumnIter) Value() any {
	return it.iter.Row()[it.column]
}

func (it *ColumnIter) Err() error {
	return it.iter.Err()
}

func (it *ColumnIter) Close() error {
	return it.iter.Close()
}
