// Package pgxutil provides scoped helpers over a pgx connection pool.
// Every helper pairs an acquire with a guaranteed release so a connection
// can never leak, whichever path the callback exits through.
package pgxutil

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WithConn acquires one pooled connection, runs fn with it, and releases it.
// Acquire blocks while the pool is saturated; the connection is returned to
// the pool exactly once whether fn succeeds, fails, or the context is
// cancelled mid-flight.
func WithConn(ctx context.Context, pool *pgxpool.Pool, fn func(*pgxpool.Conn) error) error {
	if pool == nil {
		return errors.New("nil pool")
	}
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire conn: %w", err)
	}
	defer conn.Release()

	return fn(conn)
}

// TxConfig groups parameters for WithTx.
type TxConfig struct {
	Opts pgx.TxOptions
	Fn   func(pgx.Tx) error
}

// WithTx runs the given function within a transaction on one pooled
// connection, committing on success and rolling back on any failure.
func WithTx(ctx context.Context, pool *pgxpool.Pool, cfg TxConfig) error {
	return WithConn(ctx, pool, func(conn *pgxpool.Conn) (err error) {
		tx, err := conn.BeginTx(ctx, cfg.Opts)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer func() {
			if rerr := tx.Rollback(ctx); rerr != nil && !errors.Is(rerr, pgx.ErrTxClosed) {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rerr))
			}
		}()
		if err = cfg.Fn(tx); err != nil {
			return err
		}
		if err = tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		return nil
	})
}
