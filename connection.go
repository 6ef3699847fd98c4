package dbal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/uber-go/tally/v4"
)

const connectStatement = "CONNECT"

// Config describes how a Connection reaches its database.
type Config struct {
	Name     string `json:"name"`
	WriteDSN string `json:"write_dsn"`
	ReadDSN  string `json:"read_dsn,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

func (conf Config) WithDefaults() Config {
	if len(conf.Name) == 0 {
		conf.Name = "default"
	}

	return conf
}

// DriverInfo identifies the server behind the write handle.
type DriverInfo struct {
	Driver       string
	Version      string
	Capabilities Capabilities
}

type Option func(*Connection)

func WithLogger(logger Logger) Option {
	return func(c *Connection) {
		c.logger = logger
	}
}

func WithMetricsScope(scope tally.Scope) Option {
	return func(c *Connection) {
		c.scope = scope
	}
}

// Connection is a logical database connection that lazily materializes one
// physical connection per configured DSN. It is not safe for concurrent use.
type Connection struct {
	conf    Config
	driver  Driver
	logger  Logger
	scope   tally.Scope
	metrics *ConnectionMetrics

	fromHandles bool
	writeHandle Handle
	readHandle  Handle
	txDepth     int
	info        *DriverInfo
}

// New builds a Connection from DSN configuration. No physical connection is
// opened until a handle is first needed.
func New(drv Driver, conf Config, opts ...Option) (*Connection, error) {
	conf = conf.WithDefaults()

	if len(conf.WriteDSN) == 0 {
		return nil, &ConnectionError{Name: conf.Name, Err: errors.New("write DSN must be specified")}
	}

	var c = &Connection{conf: conf, driver: drv}

	for _, opt := range opts {
		opt(c)
	}

	c.initMetrics()
	return c, nil
}

// NewFromHandles builds a Connection around externally supplied physical
// connections. Such a Connection carries no DSN and cannot be serialized.
func NewFromHandles(name string, write Handle, read Handle, opts ...Option) (*Connection, error) {
	if write == nil {
		return nil, &ConnectionError{Name: name, Err: errors.New("write handle must be specified")}
	}

	var c = &Connection{
		conf:        Config{Name: name}.WithDefaults(),
		fromHandles: true,
		writeHandle: write,
		readHandle:  read,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.initMetrics()
	return c, nil
}

func (c *Connection) initMetrics() {
	if c.scope == nil {
		c.scope = tally.NoopScope
	}

	c.metrics = NewConnectionMetrics(c.scope.Tagged(map[string]string{"connection": c.conf.Name}))
}

func (c *Connection) Name() string {
	return c.conf.Name
}

func (c *Connection) Logger() Logger {
	return c.logger
}

// WriteHandle returns the physical connection used for mutating statements
// and transaction control, opening it on first call.
func (c *Connection) WriteHandle(ctx context.Context) (Handle, error) {
	if c.writeHandle != nil {
		return c.writeHandle, nil
	}

	var entry = c.newEntry(connectStatement, nil, EntryConnection)
	defer entry.End()

	h, err := c.driver.Connect(ctx, c.conf.WriteDSN, c.conf.Username, c.conf.Password)

	if err != nil {
		return nil, &ConnectionError{Name: c.conf.Name, DSN: c.conf.WriteDSN, Err: err}
	}

	c.metrics.Connections.Inc(1)
	c.writeHandle = h
	return c.writeHandle, nil
}

// ReadHandle returns the physical connection used for reads. While a
// transaction is open it always returns the write handle, so that reads
// observe the transaction's own writes. Without a read DSN it falls back to
// the write handle as well.
func (c *Connection) ReadHandle(ctx context.Context) (Handle, error) {
	if c.txDepth > 0 {
		return c.WriteHandle(ctx)
	}

	if c.readHandle != nil {
		return c.readHandle, nil
	}

	if len(c.conf.ReadDSN) == 0 {
		return c.WriteHandle(ctx)
	}

	// The entry for the read-side connect carries no type tag; only
	// write-side connects are tagged. Consumers telling the two apart rely
	// on this distinction.
	var entry = c.newEntry(connectStatement, nil, "")
	defer entry.End()

	h, err := c.driver.Connect(ctx, c.conf.ReadDSN, c.conf.Username, c.conf.Password)

	if err != nil {
		return nil, &ConnectionError{Name: c.conf.Name, DSN: c.conf.ReadDSN, Err: err}
	}

	c.metrics.Connections.Inc(1)
	c.readHandle = h
	return c.readHandle, nil
}

// DriverInfo reports driver name, server version and derived capabilities of
// the write handle. It is computed once and cached for the Connection's
// lifetime.
func (c *Connection) DriverInfo(ctx context.Context) (*DriverInfo, error) {
	if c.info != nil {
		return c.info, nil
	}

	h, err := c.WriteHandle(ctx)

	if err != nil {
		return nil, err
	}

	ver, err := h.ServerVersion(ctx)

	if err != nil {
		return nil, err
	}

	c.info = &DriverInfo{
		Driver:       h.DriverName(),
		Version:      ver,
		Capabilities: CapabilitiesFor(h.DriverName(), ver),
	}

	return c.info, nil
}

// Begin opens a transaction, or deepens the current one. Only the outermost
// call issues a real BEGIN. Callers must balance every Begin with exactly one
// Commit, or unwind everything with a single Rollback.
func (c *Connection) Begin(ctx context.Context) error {
	c.txDepth++

	if c.txDepth > 1 {
		return nil
	}

	h, err := c.WriteHandle(ctx)

	if err != nil {
		c.txDepth--
		return err
	}

	if err := h.Begin(ctx); err != nil {
		c.txDepth--
		return err
	}

	c.metrics.Transactions.Inc(1)
	return nil
}

// Commit closes one nesting level. Only the outermost level issues a real
// COMMIT; calling Commit with no transaction open is a no-op.
func (c *Connection) Commit(ctx context.Context) error {
	if c.txDepth == 0 {
		return nil
	}

	if c.txDepth > 1 {
		c.txDepth--
		return nil
	}

	h, err := c.WriteHandle(ctx)

	if err != nil {
		return err
	}

	if err := h.Commit(ctx); err != nil {
		return err
	}

	c.txDepth = 0
	return nil
}

// Rollback issues a real ROLLBACK and unwinds all nesting levels at once.
// This is deliberately asymmetric with Commit.
func (c *Connection) Rollback(ctx context.Context) error {
	if c.txDepth == 0 {
		return nil
	}

	c.txDepth = 0

	h, err := c.WriteHandle(ctx)

	if err != nil {
		return err
	}

	return h.Rollback(ctx)
}

// TransactionDepth returns the current nesting depth of Begin calls.
func (c *Connection) TransactionDepth() int {
	return c.txDepth
}

// InTransaction reports the write handle's live transaction status. It does
// not consult the nesting counter, and the two can in principle diverge.
func (c *Connection) InTransaction() bool {
	if c.writeHandle == nil {
		return false
	}

	return c.writeHandle.InTransaction()
}

// Exec runs a mutating statement on the write handle and returns the number
// of affected rows.
func (c *Connection) Exec(ctx context.Context, query string, args any) (int64, error) {
	h, err := c.WriteHandle(ctx)

	if err != nil {
		return 0, err
	}

	return c.execOn(ctx, h, query, args)
}

// FetchOne returns the first result row, or nil when the result set is empty.
func (c *Connection) FetchOne(ctx context.Context, query string, args any) (Row, error) {
	h, err := c.ReadHandle(ctx)

	if err != nil {
		return nil, err
	}

	stmt, rows, err := c.queryOn(ctx, h, query, args)

	if err != nil {
		return nil, err
	}

	defer stmt.Close()
	defer rows.Close()

	return rows.Next(ctx)
}

// FetchAll returns all result rows, fully materialized.
func (c *Connection) FetchAll(ctx context.Context, query string, args any) ([]Row, error) {
	h, err := c.ReadHandle(ctx)

	if err != nil {
		return nil, err
	}

	stmt, rows, err := c.queryOn(ctx, h, query, args)

	if err != nil {
		return nil, err
	}

	defer stmt.Close()
	defer rows.Close()

	var res []Row

	for {
		row, err := rows.Next(ctx)

		if err != nil {
			return nil, err
		}

		if row == nil {
			return res, nil
		}

		res = append(res, row)
	}
}

// FetchColumn returns the values of one column across all result rows.
func (c *Connection) FetchColumn(ctx context.Context, query string, args any, column int) ([]any, error) {
	h, err := c.ReadHandle(ctx)

	if err != nil {
		return nil, err
	}

	stmt, rows, err := c.queryOn(ctx, h, query, args)

	if err != nil {
		return nil, err
	}

	defer stmt.Close()
	defer rows.Close()

	name, err := columnName(rows, column)

	if err != nil {
		return nil, err
	}

	var res []any

	for {
		row, err := rows.Next(ctx)

		if err != nil {
			return nil, err
		}

		if row == nil {
			return res, nil
		}

		res = append(res, row[name])
	}
}

// YieldAll returns a lazy, single-pass iterator over the result rows. One
// driver fetch happens per Next call; the cursor is released when the
// iterator is exhausted or closed.
func (c *Connection) YieldAll(ctx context.Context, query string, args any) (*RowIter, error) {
	h, err := c.ReadHandle(ctx)

	if err != nil {
		return nil, err
	}

	stmt, rows, err := c.queryOn(ctx, h, query, args)

	if err != nil {
		return nil, err
	}

	return &RowIter{stmt: stmt, rows: rows}, nil
}

// YieldColumn returns a lazy, single-pass iterator over one result column.
func (c *Connection) YieldColumn(ctx context.Context, query string, args any, column int) (*ColumnIter, error) {
	h, err := c.ReadHandle(ctx)

	if err != nil {
		return nil, err
	}

	stmt, rows, err := c.queryOn(ctx, h, query, args)

	if err != nil {
		return nil, err
	}

	name, err := columnName(rows, column)

	if err != nil {
		rows.Close()
		stmt.Close()
		return nil, err
	}

	return &ColumnIter{iter: RowIter{stmt: stmt, rows: rows}, column: name}, nil
}

// LastInsertID delegates to the write handle's identity-generation facility.
func (c *Connection) LastInsertID(ctx context.Context, sequence string) (string, error) {
	h, err := c.WriteHandle(ctx)

	if err != nil {
		return "", err
	}

	return h.LastInsertID(ctx, sequence)
}

// Close closes both physical connections, if they were ever opened.
func (c *Connection) Close() error {
	var res *multierror.Error

	if c.writeHandle != nil {
		if err := c.writeHandle.Close(); err != nil {
			res = multierror.Append(res, err)
		}
	}

	if c.readHandle != nil && c.readHandle != c.writeHandle {
		if err := c.readHandle.Close(); err != nil {
			res = multierror.Append(res, err)
		}
	}

	c.writeHandle = nil
	c.readHandle = nil
	return res.ErrorOrNil()
}

// MarshalJSON persists the Connection's configuration. A Connection that was
// constructed from existing handles has no DSN to persist and fails with a
// *ConnectionError.
func (c *Connection) MarshalJSON() ([]byte, error) {
	if c.fromHandles {
		return nil, &ConnectionError{
			Name: c.conf.Name,
			Err:  errors.New("connection was constructed from existing handles and cannot be serialized"),
		}
	}

	return json.Marshal(c.conf)
}

// UnmarshalConnection reconstructs a Connection persisted with MarshalJSON.
func UnmarshalConnection(data []byte, drv Driver, opts ...Option) (*Connection, error) {
	var conf Config

	if err := json.Unmarshal(data, &conf); err != nil {
		return nil, err
	}

	return New(drv, conf, opts...)
}

// execOn runs the normalize / log / prepare / bind / execute pipeline for a
// statement that returns an affected-row count.
func (c *Connection) execOn(ctx context.Context, h Handle, query string, args any) (affected int64, err error) {
	params, err := NewBindParameterList(args)

	if err != nil {
		return 0, err
	}

	var t0 = time.Now()
	var entry = c.newEntry(query, params, EntryQuery)

	defer entry.End()
	defer func() { c.recordQuery(t0, err) }()

	stmt, err := c.prepareBound(ctx, h, query, params)

	if err != nil {
		return 0, err
	}

	defer stmt.Close()

	return stmt.Exec(ctx)
}

// queryOn is the same pipeline for statements that return a cursor. The
// returned statement and cursor are live; the caller owns their release.
func (c *Connection) queryOn(ctx context.Context, h Handle, query string, args any) (stmt Stmt, rows Rows, err error) {
	params, err := NewBindParameterList(args)

	if err != nil {
		return nil, nil, err
	}

	var t0 = time.Now()
	var entry = c.newEntry(query, params, EntryQuery)

	defer entry.End()
	defer func() { c.recordQuery(t0, err) }()

	stmt, err = c.prepareBound(ctx, h, query, params)

	if err != nil {
		return nil, nil, err
	}

	rows, err = stmt.Query(ctx)

	if err != nil {
		stmt.Close()
		return nil, nil, err
	}

	return stmt, rows, nil
}

func (c *Connection) prepareBound(ctx context.Context, h Handle, query string, params BindParameterList) (Stmt, error) {
	stmt, err := h.Prepare(ctx, query)

	if err != nil {
		return nil, err
	}

	for _, p := range params {
		if err := stmt.Bind(p); err != nil {
			stmt.Close()
			return nil, err
		}
	}

	return stmt, nil
}

func (c *Connection) newEntry(statement string, params BindParameterList, typ EntryType) *LogEntry {
	if c.logger == nil {
		return nil
	}

	return c.logger.NewEntry(c.conf.Name, statement, params, callerTrace(2), typ)
}

func (c *Connection) recordQuery(t0 time.Time, err error) {
	c.metrics.Queries.Inc(1)
	c.metrics.QueryExecutionTime.RecordDuration(time.Since(t0))

	if err != nil {
		c.metrics.QueryErrors.Inc(1)
	}
}

func columnName(rows Rows, column int) (string, error) {
	var cols = rows.Columns()

	if column < 0 || column >= len(cols) {
		return "", fmt.Errorf("dbal: column index %d out of range for %d result columns", column, len(cols))
	}

	return cols[column], nil
}
