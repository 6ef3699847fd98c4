package dbal

import (
	"context"
	"fmt"
)

// fakeResult is one canned result set, with an explicit column order.
type fakeResult struct {
	cols []string
	rows []Row
}

// fakeDriver is an in-memory driver boundary implementation that records
// every connect, statement and transaction-control call.
type fakeDriver struct {
	name    string
	version string

	connects    []string
	handles     []*fakeHandle
	connectErrs map[string]error
	execErrs    map[string]error
	prepareErrs map[string]error
	results     map[string]fakeResult
	affected    int64
	lastID      string

	lastStmt *fakeStmt
	lastRows *fakeRows
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		name:        "mysql",
		version:     "10.6.12-MariaDB",
		connectErrs: make(map[string]error),
		execErrs:    make(map[string]error),
		prepareErrs: make(map[string]error),
		results:     make(map[string]fakeResult),
		affected:    1,
		lastID:      "42",
	}
}

func (d *fakeDriver) serve(query string, cols []string, rows ...Row) {
	d.results[query] = fakeResult{cols: cols, rows: rows}
}

func (d *fakeDriver) Connect(_ context.Context, dsn string, _ string, _ string) (Handle, error) {
	if err, ok := d.connectErrs[dsn]; ok {
		return nil, err
	}

	d.connects = append(d.connects, dsn)

	var h = &fakeHandle{driver: d, dsn: dsn}
	d.handles = append(d.handles, h)
	return h, nil
}

func (d *fakeDriver) handleFor(dsn string) *fakeHandle {
	for _, h := range d.handles {
		if h.dsn == dsn {
			return h
		}
	}

	return nil
}

type fakeHandle struct {
	driver *fakeDriver
	dsn    string

	executed  []string
	begins    int
	commits   int
	rollbacks int
	inTx      bool
	closed    bool

	lastSequence string
}

func (h *fakeHandle) Prepare(_ context.Context, query string) (Stmt, error) {
	if err, ok := h.driver.prepareErrs[query]; ok {
		return nil, err
	}

	var s = &fakeStmt{handle: h, query: query}
	h.driver.lastStmt = s
	return s, nil
}

func (h *fakeHandle) Begin(context.Context) error {
	h.begins++
	h.inTx = true
	return nil
}

func (h *fakeHandle) Commit(context.Context) error {
	h.commits++
	h.inTx = false
	return nil
}

func (h *fakeHandle) Rollback(context.Context) error {
	h.rollbacks++
	h.inTx = false
	return nil
}

func (h *fakeHandle) InTransaction() bool {
	return h.inTx
}

func (h *fakeHandle) LastInsertID(_ context.Context, sequence string) (string, error) {
	h.lastSequence = sequence
	return h.driver.lastID, nil
}

func (h *fakeHandle) DriverName() string {
	return h.driver.name
}

func (h *fakeHandle) ServerVersion(context.Context) (string, error) {
	return h.driver.version, nil
}

func (h *fakeHandle) Close() error {
	h.closed = true
	return nil
}

type fakeStmt struct {
	handle *fakeHandle
	query  string
	params BindParameterList
	closed bool
}

func (s *fakeStmt) Bind(p BindParameter) error {
	s.params = append(s.params, p)
	return nil
}

func (s *fakeStmt) Exec(context.Context) (int64, error) {
	s.handle.executed = append(s.handle.executed, s.query)

	if err, ok := s.handle.driver.execErrs[s.query]; ok {
		return 0, err
	}

	return s.handle.driver.affected, nil
}

func (s *fakeStmt) Query(context.Context) (Rows, error) {
	s.handle.executed = append(s.handle.executed, s.query)

	if err, ok := s.handle.driver.execErrs[s.query]; ok {
		return nil, err
	}

	res, ok := s.handle.driver.results[s.query]

	if !ok {
		return nil, fmt.Errorf("no canned result for query %q", s.query)
	}

	var rows = &fakeRows{result: res}
	s.handle.driver.lastRows = rows
	return rows, nil
}

func (s *fakeStmt) Close() error {
	s.closed = true
	return nil
}

type fakeRows struct {
	result  fakeResult
	idx     int
	fetches int
	closed  bool
}

func (r *fakeRows) Columns() []string {
	return r.result.cols
}

func (r *fakeRows) Next(context.Context) (Row, error) {
	r.fetches++

	if r.idx >= len(r.result.rows) {
		return nil, nil
	}

	var row = r.result.rows[r.idx]
	r.idx++
	return row, nil
}

func (r *fakeRows) Close() error {
	r.closed = true
	return nil
}
