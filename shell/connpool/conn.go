package connpool

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Conn is a connection exclusively held by one Acquire call.
type Conn interface {
	// Exec runs a statement with bound arguments and returns the number of affected rows.
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Ping(ctx context.Context) error
}

type pgxConn struct {
	conn *pgxpool.Conn
}

func (c pgxConn) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := c.conn.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (c pgxConn) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

type sqlConn struct {
	conn *sql.Conn
}

func (c sqlConn) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	result, err := c.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (c sqlConn) Ping(ctx context.Context) error {
	return c.conn.PingContext(ctx)
}
