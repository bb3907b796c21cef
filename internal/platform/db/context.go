package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx operations shared by *pgxpool.Pool, *pgxpool.Conn
// and pgx.Tx. Repositories accept whichever the caller has scoped into context.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type contextKey string

const querierKey contextKey = "db_querier"

// WithQuerier returns a context carrying q, typically an open transaction.
// Repositories resolve it via QuerierFromContext so that all statements issued
// under the same request-scoped unit of work share one transaction.
func WithQuerier(ctx context.Context, q Querier) context.Context {
	return context.WithValue(ctx, querierKey, q)
}

// QuerierFromContext returns the transaction-scoped querier, or nil when the
// context carries none and the repository should fall back to its pool.
func QuerierFromContext(ctx context.Context) Querier {
	q, _ := ctx.Value(querierKey).(Querier)
	return q
}
