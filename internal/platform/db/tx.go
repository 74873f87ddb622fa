package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxAttempts bounds how often a transaction is replayed after a serialization conflict.
const TxAttempts = 4

// WithTx executes a function within a transaction using the RepeatableRead isolation level.
// Serialization failures and deadlocks roll back and replay fn from scratch.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	r := retry.New(
		retry.Context(ctx),
		retry.Attempts(TxAttempts),
		retry.Delay(20*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(IsRetryable),
	)
	return r.Do(func() error {
		return runTx(ctx, pool, fn)
	})
}

func runTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("platform/db: commit tx: %w", err)
	}

	return nil
}

// IsNoRows reports whether err signals an empty result.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
