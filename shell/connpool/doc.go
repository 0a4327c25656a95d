// Package connpool owns the bounded pool of database connections of the library application.
//
// A Pool is built once with Open from the database configuration, shared by all stores created
// with NewStore and released with Close. Supported drivers are pgx (pgxpool), postgres (lib/pq),
// sqlx (lib/pq through sqlx), mysql (go-sql-driver) and sqlite3 (mattn/go-sqlite3 through sqlx).
//
// Usage:
//
//	pool, err := connpool.Open(ctx, cfg.Database, connpool.WithLogger(logger))
//	if err != nil {
//		return err // matches librarystore.ErrConnection
//	}
//	defer pool.Close()
//
//	if err := pool.EnsureSchema(ctx); err != nil {
//		return err
//	}
//
//	store, err := pool.NewStore(sqlengine.WithLogger(logger))
//
// This package is part of the shell (infrastructure) layer.
package connpool
