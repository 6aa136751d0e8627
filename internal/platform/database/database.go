// Package database opens the SQL connection pool for the configured driver
// and applies the embedded schema migrations.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/taskify/taskify-api/internal/config"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Supported values of config.DatabaseConfig.Driver.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

const pingTimeout = 5 * time.Second

// sqlitePragmas are applied to every SQLite connection. BEGIN IMMEDIATE makes
// each transaction take the write lock up front so concurrent writers wait on
// busy_timeout instead of failing on lock upgrade.
var sqlitePragmas = []string{
	"_pragma=foreign_keys(1)",
	"_pragma=busy_timeout(5000)",
	"_txlock=immediate",
}

// ErrUnsupportedDriver is returned for a driver other than pgx or sqlite.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Open creates a connection pool for cfg and verifies it with a ping.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	log := slog.Default().With(
		slog.String("component", "database"),
		slog.String("driver", cfg.Driver),
		slog.String("url", MaskURL(cfg.URL)),
	)

	dsn := cfg.URL
	switch cfg.Driver {
	case DriverPostgres:
	case DriverSQLite:
		dsn = SQLiteDSN(cfg.URL)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if cfg.Driver == DriverSQLite && strings.Contains(cfg.URL, ":memory:") {
		// Every connection to :memory: is a separate database.
		maxOpen = 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("database ping timed out after %s: %w", pingTimeout, err)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("database connection established",
		slog.Int("max_open_conns", maxOpen),
		slog.Int("max_idle_conns", cfg.MaxIdleConns))
	return db, nil
}

// SQLiteDSN appends the connection pragmas the stores rely on to a SQLite
// file name or URI.
func SQLiteDSN(name string) string {
	sep := "?"
	if strings.Contains(name, "?") {
		sep = "&"
	}
	return name + sep + strings.Join(sqlitePragmas, "&")
}

// MaskURL hides the password of a database URL for logging.
func MaskURL(dbURL string) string {
	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "invalid-url"
	}
	if parsed.User == nil {
		return dbURL
	}
	// Redacted leaves its placeholder unescaped, unlike User.String.
	return strings.Replace(parsed.Redacted(), ":xxxxx@", ":****@", 1)
}
