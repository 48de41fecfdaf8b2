package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx shared by pools, connections and
// transactions. Repository methods that must run inside a caller-owned
// transaction accept a Querier so the same SQL serves both paths.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB adds transaction creation on top of Querier. *pgxpool.Pool satisfies
// it, as do the pgxmock pools used in tests.
type DB interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}
