// Package sqlengine provides a relational implementation of the library entity store.
//
// The Store maps books, authors, members and loans to rows of a SQL database. Statements are
// built with goqu in prepared mode, so every caller-supplied value is sent as a bound parameter.
// It supports multiple database adapters (pgx, sql.DB, sqlx) and the postgres, mysql and sqlite3 dialects.
//
// Key features:
//   - Save operations insert or update depending on whether the entity already has an ID
//   - Lookups report "not found" with a boolean instead of an error
//   - Case-insensitive substring search on book titles and member names
//   - Atomic loan issuance (AppendLoan) and return (CloseLoan) with concurrency conflict detection
//   - Write paths run in transactions that are rolled back on any failure
//   - Optional logging, metrics and tracing through dependency-free interfaces
//
// Usage examples:
//
//	// Basic usage
//	db, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := sqlengine.NewStoreFromPGXPool(db)
//
//	// SQLite through sqlx, the dialect is taken from the driver name.
//	// DriverSQLite3Unicode makes title and name searches ignore case beyond ASCII.
//	db, _ := sqlx.Open(sqlengine.DriverSQLite3Unicode, "library.db?_foreign_keys=1")
//	store, _ := sqlengine.NewStoreFromSQLX(db, sqlengine.WithLogger(slog.Default()))
//
//	// MySQL through database/sql
//	db, _ := sql.Open("mysql", dsn)
//	store, _ := sqlengine.NewStoreFromSQLDB(db, sqlengine.WithDialect(sqlengine.DialectMySQL))
//
//	count, _ := store.ActiveLoansCount(ctx, memberID)
//	err := store.AppendLoan(ctx, &loan, count)
package sqlengine
