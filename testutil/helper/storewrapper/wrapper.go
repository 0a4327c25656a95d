package storewrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/librarystore/sqlengine"
	"github.com/AntonStoeckl/library-circulation-go/shell/config"
	"github.com/AntonStoeckl/library-circulation-go/shell/connpool"
)

// Adapter type values of the ADAPTER_TYPE environment variable.
const (
	typeSQLX    = "sqlx"
	typeSQLDB   = "sqldb"
	typePGXPool = "pgxpool"

	// EnvAdapterType selects the database adapter the tests run against.
	EnvAdapterType = "ADAPTER_TYPE"

	// EnvPostgresDSN must point to an empty, disposable Postgres database for the pgxpool adapter.
	EnvPostgresDSN = "LIBRARY_TEST_POSTGRES_DSN"

	testPoolSize = 5
)

// Wrapper abstracts over the different database adapters used in tests.
type Wrapper interface {
	GetStore() sqlengine.Store
	Close()
}

// PoolWrapper wraps a connpool.Pool on a temporary SQLite file.
type PoolWrapper struct {
	pool  *connpool.Pool
	store sqlengine.Store
}

// GetStore returns the store under test.
func (w *PoolWrapper) GetStore() sqlengine.Store {
	return w.store
}

// GetPool returns the pool behind the store.
func (w *PoolWrapper) GetPool() *connpool.Pool {
	return w.pool
}

// Close releases the pool.
func (w *PoolWrapper) Close() {
	w.pool.Close()
}

// SQLDBWrapper wraps a plain sql.DB on a temporary SQLite file.
type SQLDBWrapper struct {
	db    *sql.DB
	store sqlengine.Store
}

// GetStore returns the store under test.
func (w *SQLDBWrapper) GetStore() sqlengine.Store {
	return w.store
}

// Close releases the database handle.
func (w *SQLDBWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// PGXPoolWrapper wraps a pgxpool.Pool on an external Postgres database.
type PGXPoolWrapper struct {
	pool  *pgxpool.Pool
	store sqlengine.Store
}

// GetStore returns the store under test.
func (w *PGXPoolWrapper) GetStore() sqlengine.Store {
	return w.store
}

// Close releases the pool.
func (w *PGXPoolWrapper) Close() {
	w.pool.Close()
}

// CreateWrapperWithTestConfig creates a wrapper on an empty, schema-initialized database,
// selected by the ADAPTER_TYPE environment variable. SQLite is the default.
// The wrapper is closed automatically when the test finishes.
func CreateWrapperWithTestConfig(t testing.TB, options ...sqlengine.Option) Wrapper {
	t.Helper()

	var wrapper Wrapper

	adapterTypeFromEnv := strings.ToLower(os.Getenv(EnvAdapterType))
	switch adapterTypeFromEnv {
	case typeSQLX, "":
		wrapper = createPoolWrapper(t, options...)
	case typeSQLDB:
		wrapper = createSQLDBWrapper(t, options...)
	case typePGXPool:
		wrapper = createPGXPoolWrapper(t, options...)
	default:
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterTypeFromEnv))
	}

	t.Cleanup(wrapper.Close)

	return wrapper
}

// CreatePoolWrapper creates a SQLite-backed PoolWrapper regardless of ADAPTER_TYPE.
func CreatePoolWrapper(t testing.TB, options ...sqlengine.Option) *PoolWrapper {
	t.Helper()

	wrapper := createPoolWrapper(t, options...)
	t.Cleanup(wrapper.Close)

	return wrapper
}

func createPoolWrapper(t testing.TB, options ...sqlengine.Option) *PoolWrapper {
	ctx := context.Background()

	pool, err := connpool.Open(ctx, config.Database{
		Driver:   config.DriverSQLite3,
		Path:     filepath.Join(t.TempDir(), "library_test.db"),
		PoolSize: testPoolSize,
	})
	require.NoError(t, err, "error opening the connection pool in test setup")
	require.NoError(t, pool.EnsureSchema(ctx), "error creating the schema in test setup")

	store, err := pool.NewStore(options...)
	require.NoError(t, err, "error creating the store in test setup")

	return &PoolWrapper{pool: pool, store: store}
}

func createSQLDBWrapper(t testing.TB, options ...sqlengine.Option) *SQLDBWrapper {
	ctx := context.Background()

	db, err := sql.Open(sqlengine.DriverSQLite3Unicode, config.SQLiteDSN(filepath.Join(t.TempDir(), "library_test.db")))
	require.NoError(t, err, "error opening the database in test setup")
	db.SetMaxOpenConns(testPoolSize)

	statements, err := connpool.SchemaStatements(sqlengine.DialectSQLite3)
	require.NoError(t, err, "error reading the schema in test setup")
	for _, statement := range statements {
		_, err = db.ExecContext(ctx, statement)
		require.NoError(t, err, "error creating the schema in test setup")
	}

	store, err := sqlengine.NewStoreFromSQLDB(db, append([]sqlengine.Option{sqlengine.WithDialect(sqlengine.DialectSQLite3)}, options...)...)
	require.NoError(t, err, "error creating the store in test setup")

	return &SQLDBWrapper{db: db, store: store}
}

func createPGXPoolWrapper(t testing.TB, options ...sqlengine.Option) *PGXPoolWrapper {
	dsn := os.Getenv(EnvPostgresDSN)
	if dsn == "" {
		t.Skipf("%s is not set", EnvPostgresDSN)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err, "error connecting to DB pool in test setup")

	statements, err := connpool.SchemaStatements(sqlengine.DialectPostgres)
	require.NoError(t, err, "error reading the schema in test setup")
	for _, statement := range statements {
		_, err = pool.Exec(ctx, statement)
		require.NoError(t, err, "error creating the schema in test setup")
	}

	_, err = pool.Exec(ctx, "TRUNCATE TABLE loans, book_authors, books, authors, members RESTART IDENTITY CASCADE")
	require.NoError(t, err, "error cleaning up the tables in test setup")

	store, err := sqlengine.NewStoreFromPGXPool(pool, options...)
	require.NoError(t, err, "error creating the store in test setup")

	return &PGXPoolWrapper{pool: pool, store: store}
}
