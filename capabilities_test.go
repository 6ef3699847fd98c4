package dbal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMariaDBCapabilityThresholds(t *testing.T) {
	var c = CapabilitiesFor("mysql", "10.1.5")
	assert.True(t, c.HasLock())
	assert.True(t, c.HasStrictMode())
	assert.False(t, c.HasWindowFunctions())
	assert.False(t, c.HasJSON())
	assert.False(t, c.HasLockAndSkip())

	c = CapabilitiesFor("mysql", "10.2.0")
	assert.True(t, c.HasWindowFunctions())
	assert.True(t, c.HasJSON())
	assert.False(t, c.HasLockAndSkip())

	c = CapabilitiesFor("mysql", "10.6.0")
	assert.True(t, c.HasLockAndSkip())
}

func TestCapabilitiesVendorSuffixStripped(t *testing.T) {
	var c = CapabilitiesFor("mariadb", "10.6.12-MariaDB-log")
	assert.True(t, c.HasLockAndSkip())

	c = CapabilitiesFor("mysql", "10.1.48-0ubuntu0.18.04.1")
	assert.False(t, c.HasWindowFunctions())
}

func TestPostgresCapabilities(t *testing.T) {
	var c = CapabilitiesFor("postgres", "9.4.0")
	assert.True(t, c.HasLock())
	assert.True(t, c.HasWindowFunctions())
	assert.True(t, c.HasJSON())
	assert.False(t, c.HasLockAndSkip())

	c = CapabilitiesFor("pgx", "9.5.0")
	assert.True(t, c.HasLockAndSkip())
}

func TestSQLiteCapabilities(t *testing.T) {
	var c = CapabilitiesFor("sqlite", "3.38.5")
	assert.False(t, c.HasLock())
	assert.False(t, c.HasLockAndSkip())
	assert.True(t, c.HasWindowFunctions())
	assert.True(t, c.HasJSON())
	assert.True(t, c.HasStrictMode())

	c = CapabilitiesFor("sqlite3", "3.20.0")
	assert.False(t, c.HasWindowFunctions())
	assert.False(t, c.HasStrictMode())
}

func TestClickHouseCapabilities(t *testing.T) {
	var c = CapabilitiesFor("clickhouse", "23.8.1.2")
	assert.True(t, c.HasWindowFunctions())
	assert.True(t, c.HasJSON())
	assert.False(t, c.HasLock())
	assert.False(t, c.HasStrictMode())
}

func TestUnknownDriverHasNoCapabilities(t *testing.T) {
	var c = CapabilitiesFor("frobnicator", "99.0.0")
	assert.False(t, c.HasLock())
	assert.False(t, c.HasLockAndSkip())
	assert.False(t, c.HasWindowFunctions())
	assert.False(t, c.HasJSON())
	assert.False(t, c.HasStrictMode())
}

func TestUnparseableVersionReportsThresholdedFeaturesOff(t *testing.T) {
	var c = CapabilitiesFor("mysql", "not-a-version")
	assert.True(t, c.HasLock())
	assert.False(t, c.HasWindowFunctions())
	assert.False(t, c.HasLockAndSkip())
}
