// Package sqlstore implements the internal/store interfaces and the
// ordering.List surface on database/sql. The same queries run on PostgreSQL
// (pgx) and SQLite (modernc.org/sqlite); placeholders are written as $N,
// which both drivers bind by position.
package sqlstore
