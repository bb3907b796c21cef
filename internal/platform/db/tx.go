package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// TxAttempts bounds how often a unit of work is re-run after the database
	// reports a transient locking failure.
	TxAttempts = 3

	retryBackoff = 50 * time.Millisecond
)

// postgres error codes that signal lock contention worth retrying.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

// IsRetryable reports whether err is a transient locking failure
// (serialization failure, deadlock, lock timeout).
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	}
	return false
}

// InTx runs fn inside a single transaction. The transaction is scoped into the
// context passed to fn, so repositories called within fn issue their
// statements on it. Commit happens only when fn returns nil; any error rolls
// the whole unit of work back.
func InTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(WithQuerier(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// InTxRetry runs fn as InTx does, re-running the whole transaction up to
// TxAttempts times when it fails with a retryable locking error. The last
// error is returned once attempts are exhausted; callers map it to their
// transient error class via IsRetryable.
func InTxRetry(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= TxAttempts; attempt++ {
		err = InTx(ctx, pool, fn)
		if err == nil || !IsRetryable(err) {
			return err
		}
		if attempt < TxAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBackoff):
			}
		}
	}
	return err
}
