package adapters

import (
	"context"
	"errors"
)

// ErrLastInsertIDUnsupported is returned by adapters whose driver can't report generated ids.
var ErrLastInsertIDUnsupported = errors.New("last insert id is not supported by this adapter, use RETURNING")

// DBQuerier defines the statement operations shared by connections and transactions.
type DBQuerier interface {
	Query(ctx context.Context, query string, args ...any) (DBRows, error)
	Exec(ctx context.Context, query string, args ...any) (DBResult, error)
}

// DBAdapter defines the interface for database operations needed by the store.
type DBAdapter interface {
	DBQuerier
	BeginTx(ctx context.Context) (DBTx, error)
}

// DBTx is a running transaction. Exactly one of Commit or Rollback must be called.
type DBTx interface {
	DBQuerier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DBRows defines the interface for query result rows.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult defines the interface for execution results.
type DBResult interface {
	RowsAffected() (int64, error)
	LastInsertId() (int64, error)
}
