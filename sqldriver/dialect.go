package sqldriver

import (
	"fmt"
	"net/url"
	"strings"
)

// dialect covers the engine-specific corners of the adapter: credential
// splicing into DSNs, the server version query, and identity retrieval.
type dialect interface {
	applyCredentials(dsn string, username string, password string) string
	versionQuery() string
	lastInsertIDQuery(sequence string) string
}

func dialectFor(driverName string) dialect {
	switch strings.ToLower(driverName) {
	case "mysql", "mariadb":
		return mysqlDialect{}
	case "postgres", "postgresql", "pq", "pgx":
		return postgresDialect{}
	case "sqlite", "sqlite3":
		return sqliteDialect{}
	case "clickhouse":
		return urlDialect{version: "SELECT version()"}
	default:
		return urlDialect{version: "SELECT version()"}
	}
}

type mysqlDialect struct{}

func (mysqlDialect) applyCredentials(dsn string, username string, password string) string {
	if len(username) == 0 || strings.Contains(dsn, "@") {
		return dsn
	}

	if len(password) > 0 {
		return fmt.Sprintf("%s:%s@%s", username, password, dsn)
	}

	return fmt.Sprintf("%s@%s", username, dsn)
}

func (mysqlDialect) versionQuery() string {
	return "SELECT VERSION()"
}

func (mysqlDialect) lastInsertIDQuery(string) string {
	return "SELECT LAST_INSERT_ID()"
}

type postgresDialect struct{}

func (postgresDialect) applyCredentials(dsn string, username string, password string) string {
	if len(username) == 0 {
		return dsn
	}

	if strings.Contains(dsn, "://") {
		return (urlDialect{}).applyCredentials(dsn, username, password)
	}

	dsn = dsn + " user=" + username

	if len(password) > 0 {
		dsn = dsn + " password=" + password
	}

	return strings.TrimSpace(dsn)
}

func (postgresDialect) versionQuery() string {
	return "SHOW server_version"
}

func (postgresDialect) lastInsertIDQuery(sequence string) string {
	if len(sequence) > 0 {
		return fmt.Sprintf("SELECT currval('%s')", strings.ReplaceAll(sequence, "'", "''"))
	}

	return "SELECT lastval()"
}

type sqliteDialect struct{}

func (sqliteDialect) applyCredentials(dsn string, _ string, _ string) string {
	return dsn
}

func (sqliteDialect) versionQuery() string {
	return "select sqlite_version()"
}

func (sqliteDialect) lastInsertIDQuery(string) string {
	return "select last_insert_rowid()"
}

// urlDialect handles engines with URL-shaped DSNs.
type urlDialect struct {
	version string
}

func (urlDialect) applyCredentials(dsn string, username string, password string) string {
	if len(username) == 0 {
		return dsn
	}

	u, err := url.Parse(dsn)

	if err != nil || u.User != nil {
		return dsn
	}

	if len(password) > 0 {
		u.User = url.UserPassword(username, password)
	} else {
		u.User = url.User(username)
	}

	return u.String()
}

func (d urlDialect) versionQuery() string {
	if len(d.version) == 0 {
		return "SELECT version()"
	}

	return d.version
}

func (urlDialect) lastInsertIDQuery(string) string {
	return ""
}
