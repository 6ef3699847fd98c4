package dbal

import (
	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"
)

// DefaultConnectionName is the name used by ConnectionSet lookups when no
// name is given.
const DefaultConnectionName = "default"

// ConnectionSet is a registry of Connections keyed by name, iterated in
// insertion order.
type ConnectionSet struct {
	names []string
	conns map[string]*Connection
}

func NewConnectionSet(conns ...*Connection) *ConnectionSet {
	var set = &ConnectionSet{conns: make(map[string]*Connection)}

	for _, conn := range conns {
		set.Add(conn)
	}

	return set
}

// Add registers conn under its name. A later registration under the same
// name silently replaces the earlier one, keeping its position.
func (set *ConnectionSet) Add(conn *Connection) {
	if _, ok := set.conns[conn.Name()]; !ok {
		set.names = append(set.names, conn.Name())
	}

	set.conns[conn.Name()] = conn
}

func (set *ConnectionSet) Has(name ...string) bool {
	_, ok := set.conns[lookupName(name)]
	return ok
}

// Get returns the Connection registered under name (or under "default" when
// no name is given). It fails with a *NotFoundError naming the missing key.
func (set *ConnectionSet) Get(name ...string) (*Connection, error) {
	var n = lookupName(name)
	conn, ok := set.conns[n]

	if !ok {
		return nil, &NotFoundError{Name: n}
	}

	return conn, nil
}

func (set *ConnectionSet) Count() int {
	return len(set.conns)
}

func (set *ConnectionSet) Names() []string {
	var names = make([]string, len(set.names))
	copy(names, set.names)
	return names
}

// Connections returns the member Connections in insertion order.
func (set *ConnectionSet) Connections() []*Connection {
	return lo.Map(set.names, func(name string, _ int) *Connection {
		return set.conns[name]
	})
}

// Loggers returns the distinct non-nil loggers across all member
// Connections, for central log aggregation.
func (set *ConnectionSet) Loggers() []Logger {
	var (
		seen    = make(map[Logger]struct{})
		loggers []Logger
	)

	for _, name := range set.names {
		var l = set.conns[name].Logger()

		if l == nil {
			continue
		}

		if _, ok := seen[l]; ok {
			continue
		}

		seen[l] = struct{}{}
		loggers = append(loggers, l)
	}

	return loggers
}

// Close closes every member Connection, aggregating failures.
func (set *ConnectionSet) Close() error {
	var res *multierror.Error

	for _, name := range set.names {
		if err := set.conns[name].Close(); err != nil {
			res = multierror.Append(res, err)
		}
	}

	return res.ErrorOrNil()
}

func lookupName(name []string) string {
	if len(name) == 0 {
		return DefaultConnectionName
	}

	return name[0]
}
