// Package storewrapper opens a store on a fresh database for a test.
//
// The adapter is chosen with the ADAPTER_TYPE environment variable:
//
//	sqlx (default)  connpool with SQLite through sqlx
//	sqldb           plain database/sql with SQLite
//	pgxpool         pgxpool on the Postgres database in LIBRARY_TEST_POSTGRES_DSN, skipped when unset
package storewrapper
