// Package store provides abstractions and implementations for data persistence
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/taskify/taskify-api/internal/platform/logger"
)

// TxFn is a function that executes within a database transaction.
// The transaction is committed if the function returns nil, or rolled back if it returns an error.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// TxOption customizes RunInTransaction.
type TxOption func(*txConfig)

type txConfig struct {
	opts      *sql.TxOptions
	mapCommit func(error) error
}

// WithTxOptions sets the isolation level and read-only flag of the transaction.
func WithTxOptions(opts *sql.TxOptions) TxOption {
	return func(c *txConfig) {
		c.opts = opts
	}
}

// WithCommitErrorMapper translates driver errors raised by COMMIT, such as
// deferred constraint violations or serialization failures, into store errors.
func WithCommitErrorMapper(fn func(error) error) TxOption {
	return func(c *txConfig) {
		c.mapCommit = fn
	}
}

// RunInTransaction executes the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// Otherwise, the transaction is committed.
// Panics roll the transaction back and are re-raised.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn, opts ...TxOption) error {
	log := logger.FromContext(ctx)

	cfg := txConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	tx, err := db.BeginTx(ctx, cfg.opts)
	if err != nil {
		log.Error("failed to begin transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: failed to begin transaction: %w", ErrTransactionFailed, err)
	}

	defer func() {
		if p := recover(); p != nil {
			txErr := tx.Rollback()
			if txErr != nil {
				log.Error("failed to roll back transaction after panic",
					slog.String("error", txErr.Error()),
					slog.Any("panic", p))
			} else {
				log.Error("rolled back transaction after panic",
					slog.Any("panic", p))
			}
			// ALLOW-PANIC: Propagating caught panic from transaction
			panic(p)
		}
	}()

	err = fn(ctx, tx)
	if err != nil {
		rollbackErr := tx.Rollback()
		if rollbackErr != nil {
			log.Error("failed to roll back transaction",
				slog.String("rollback_error", rollbackErr.Error()),
				slog.String("original_error", err.Error()))
			return fmt.Errorf(
				"error rolling back transaction: %v (original error: %w)",
				rollbackErr,
				err,
			)
		}
		log.Debug("rolled back transaction due to error",
			slog.String("error", err.Error()))
		return err
	}

	err = tx.Commit()
	if err != nil {
		log.Error("failed to commit transaction",
			slog.String("error", err.Error()))
		if cfg.mapCommit != nil {
			if mapped := cfg.mapCommit(err); mapped != err {
				return fmt.Errorf("failed to commit transaction: %w", mapped)
			}
		}
		return fmt.Errorf("%w: failed to commit transaction: %w", ErrTransactionFailed, err)
	}

	log.Debug("transaction committed successfully")
	return nil
}
