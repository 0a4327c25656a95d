// Package adapters provides database adapter implementations for the SQL library store.
//
// This package implements the adapter pattern to support multiple database libraries:
// pgxpool.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent functionality through
// a common DBAdapter interface, allowing the store to work with any supported connection type
// and with any driver registered for database/sql (lib/pq, go-sql-driver/mysql, go-sqlite3).
//
// The adapters handle the specifics of each database library, including transactions,
// while presenting a unified interface for statement execution and result handling.
package adapters
