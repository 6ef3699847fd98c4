package dbal

import (
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// Capabilities reports which SQL features are safe to use against a given
// driver family at a given server version.
type Capabilities interface {
	HasLock() bool
	HasLockAndSkip() bool
	HasWindowFunctions() bool
	HasJSON() bool
	HasStrictMode() bool
}

// CapabilitiesFor classifies a driver name and server version string into one
// of a closed set of driver families. Unknown families report no capabilities.
func CapabilitiesFor(driverName string, serverVersion string) Capabilities {
	var v = parseVersion(serverVersion)

	switch normalizeDriverName(driverName) {
	case "mysql":
		return mysqlCapabilities{version: v}
	case "postgres":
		return postgresCapabilities{version: v}
	case "sqlite":
		return sqliteCapabilities{version: v}
	case "clickhouse":
		return clickhouseCapabilities{version: v}
	default:
		return noCapabilities{}
	}
}

func normalizeDriverName(name string) string {
	switch strings.ToLower(name) {
	case "mysql", "mariadb":
		return "mysql"
	case "postgres", "postgresql", "pgx", "pq":
		return "postgres"
	case "sqlite", "sqlite3":
		return "sqlite"
	case "clickhouse":
		return "clickhouse"
	default:
		return strings.ToLower(name)
	}
}

func parseVersion(s string) *goversion.Version {
	// Server version strings often carry a vendor suffix, e.g.
	// "10.6.12-MariaDB-log" or "8.0.32-0ubuntu0.22.04.2".
	if i := strings.IndexAny(s, "-+ "); i > 0 {
		s = s[:i]
	}

	v, err := goversion.NewVersion(s)

	if err != nil {
		return nil
	}

	return v
}

func atLeast(v *goversion.Version, threshold string) bool {
	if v == nil {
		return false
	}

	return v.GreaterThanOrEqual(goversion.Must(goversion.NewVersion(threshold)))
}

// mysqlCapabilities covers the MySQL/MariaDB family. Thresholds follow the
// MariaDB release line: window functions and JSON arrived in 10.2.0, and
// SKIP LOCKED in 10.6.0.
type mysqlCapabilities struct {
	version *goversion.Version
}

func (c mysqlCapabilities) HasLock() bool            { return true }
func (c mysqlCapabilities) HasLockAndSkip() bool     { return atLeast(c.version, "10.6.0") }
func (c mysqlCapabilities) HasWindowFunctions() bool { return atLeast(c.version, "10.2.0") }
func (c mysqlCapabilities) HasJSON() bool            { return atLeast(c.version, "10.2.0") }
func (c mysqlCapabilities) HasStrictMode() bool      { return true }

type postgresCapabilities struct {
	version *goversion.Version
}

func (c postgresCapabilities) HasLock() bool            { return true }
func (c postgresCapabilities) HasLockAndSkip() bool     { return atLeast(c.version, "9.5.0") }
func (c postgresCapabilities) HasWindowFunctions() bool { return atLeast(c.version, "8.4.0") }
func (c postgresCapabilities) HasJSON() bool            { return atLeast(c.version, "9.2.0") }
func (c postgresCapabilities) HasStrictMode() bool      { return true }

// sqliteCapabilities: SQLite has no row locks; STRICT tables arrived in 3.37.0.
type sqliteCapabilities struct {
	version *goversion.Version
}

func (c sqliteCapabilities) HasLock() bool            { return false }
func (c sqliteCapabilities) HasLockAndSkip() bool     { return false }
func (c sqliteCapabilities) HasWindowFunctions() bool { return atLeast(c.version, "3.25.0") }
func (c sqliteCapabilities) HasJSON() bool            { return atLeast(c.version, "3.9.0") }
func (c sqliteCapabilities) HasStrictMode() bool      { return atLeast(c.version, "3.37.0") }

type clickhouseCapabilities struct {
	version *goversion.Version
}

func (c clickhouseCapabilities) HasLock() bool            { return false }
func (c clickhouseCapabilities) HasLockAndSkip() bool     { return false }
func (c clickhouseCapabilities) HasWindowFunctions() bool { return atLeast(c.version, "21.6.0") }
func (c clickhouseCapabilities) HasJSON() bool            { return true }
func (c clickhouseCapabilities) HasStrictMode() bool      { return false }

type noCapabilities struct{}

func (noCapabilities) HasLock() bool            { return false }
func (noCapabilities) HasLockAndSkip() bool     { return false }
func (noCapabilities) HasWindowFunctions() bool { return false }
func (noCapabilities) HasJSON() bool            { return false }
func (noCapabilities) HasStrictMode() bool      { return false }
