package testdb

import (
	"os"
	"strings"
)

// EnvDatabaseURL names the variable holding a PostgreSQL URL for tests.
const EnvDatabaseURL = "TASKIFY_TEST_DATABASE_URL"

// DatabaseURL returns the PostgreSQL URL configured for tests, or "" when
// tests should use SQLite.
func DatabaseURL() string {
	return strings.TrimSpace(os.Getenv(EnvDatabaseURL))
}

// UsingPostgres reports whether tests run against PostgreSQL.
func UsingPostgres() bool {
	return DatabaseURL() != ""
}
