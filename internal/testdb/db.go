package testdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/taskify/taskify-api/internal/config"
	"github.com/taskify/taskify-api/internal/platform/database"
)

// Timeout bounds connecting to and migrating a test database.
const Timeout = 30 * time.Second

// tables lists every application table, children first.
var tables = []string{
	"notifications",
	"tasks",
	"labels",
	"board_columns",
	"boards",
	"projects",
	"users",
}

// Config returns the database configuration Open uses for t.
func Config(t *testing.T) config.DatabaseConfig {
	t.Helper()
	if url := DatabaseURL(); url != "" {
		return config.DatabaseConfig{
			Driver:       database.DriverPostgres,
			URL:          url,
			MaxOpenConns: 8,
			MaxIdleConns: 4,
		}
	}
	return config.DatabaseConfig{
		Driver:       database.DriverSQLite,
		URL:          "file:" + filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 4,
		MaxIdleConns: 4,
	}
}

// Open returns an empty, fully migrated database that is closed when t ends.
func Open(t *testing.T) *sql.DB {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()

	cfg := Config(t)
	db, err := database.Open(ctx, cfg)
	require.NoError(t, err, "failed to open test database %s", database.MaskURL(cfg.URL))

	m, err := database.NewMigrator(db, cfg.Driver, nil)
	require.NoError(t, err)
	require.NoError(t, m.Up(ctx), "failed to migrate test database")

	if cfg.Driver == database.DriverPostgres {
		require.NoError(t, Truncate(ctx, db))
		t.Cleanup(func() {
			if err := Truncate(context.Background(), db); err != nil {
				t.Logf("failed to truncate test database: %v", err)
			}
		})
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Truncate empties every application table of a PostgreSQL database.
func Truncate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, "TRUNCATE "+strings.Join(tables, ", ")+" CASCADE")
	return err
}
