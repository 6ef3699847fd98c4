package sqldriver

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/agnosticeng/dbal"
)

type stmt struct {
	stmt   *sql.Stmt
	params []dbal.BindParameter
}

func (s *stmt) Bind(p dbal.BindParameter) error {
	if p.Positional() && p.Position() == 0 {
		return fmt.Errorf("sqldriver: invalid positional parameter name %q", p.Name)
	}

	s.params = append(s.params, p)
	return nil
}

func (s *stmt) Exec(ctx context.Context) (int64, error) {
	args, err := s.argv()

	if err != nil {
		return 0, err
	}

	res, err := s.stmt.ExecContext(ctx, args...)

	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (s *stmt) Query(ctx context.Context) (dbal.Rows, error) {
	args, err := s.argv()

	if err != nil {
		return nil, err
	}

	rs, err := s.stmt.QueryContext(ctx, args...)

	if err != nil {
		return nil, err
	}

	cols, err := rs.Columns()

	if err != nil {
		rs.Close()
		return nil, err
	}

	return &rows{rows: rs, cols: cols}, nil
}

func (s *stmt) Close() error {
	return s.stmt.Close()
}

// argv turns the bound parameters into database/sql arguments. A list with
// any named parameter is passed entirely as sql.Named values; a purely
// positional list is ordered by position.
func (s *stmt) argv() ([]any, error) {
	if len(s.params) == 0 {
		return nil, nil
	}

	var named bool

	for _, p := range s.params {
		if !p.Positional() {
			named = true
			break
		}
	}

	if named {
		var args = make([]any, 0, len(s.params))

		for _, p := range s.params {
			args = append(args, sql.Named(strings.TrimPrefix(p.Name, ":"), bindValue(p)))
		}

		return args, nil
	}

	var max int

	for _, p := range s.params {
		if p.Position() > max {
			max = p.Position()
		}
	}

	var args = make([]any, max)

	for _, p := range s.params {
		args[p.Position()-1] = bindValue(p)
	}

	return args, nil
}

func bindValue(p dbal.BindParameter) any {
	switch p.Type {
	case dbal.ParamNull:
		return nil
	case dbal.ParamLob:
		if str, ok := p.Value.(string); ok {
			return []byte(str)
		}

		return p.Value
	default:
		return p.Value
	}
}
