package connpool_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/librarystore"
	"github.com/AntonStoeckl/library-circulation-go/librarystore/sqlengine"
	"github.com/AntonStoeckl/library-circulation-go/shell/config"
	"github.com/AntonStoeckl/library-circulation-go/shell/connpool"
	"github.com/AntonStoeckl/library-circulation-go/testutil/helper"
)

func Test_Open_SQLite(t *testing.T) {
	// arrange
	logHandler := helper.NewTestLogHandler(false)

	// act
	pool, err := connpool.Open(context.Background(), givenSQLiteConfig(t, 5), connpool.WithLogger(helper.NewLogger(logHandler)))

	// assert
	require.NoError(t, err)
	defer pool.Close()

	assert.Equal(t, config.DriverSQLite3, pool.Driver())
	assert.Equal(t, sqlengine.DialectSQLite3, pool.Dialect())
	assert.Equal(t, 5, pool.Stats().MaxConns)
	assert.True(t, logHandler.HasInfoLogWithMessage("connection pool opened").Assert())
}

func Test_Open_Failures_AreConnectionErrors(t *testing.T) {
	testCases := []struct {
		name string
		cfg  config.Database
	}{
		{
			name: "unreachable sqlite file",
			cfg: config.Database{
				Driver:   config.DriverSQLite3,
				Path:     filepath.Join(t.TempDir(), "missing", "dir", "library.db"),
				PoolSize: 5,
			},
		},
		{
			name: "pool size zero",
			cfg:  config.Database{Driver: config.DriverSQLite3, Path: filepath.Join(t.TempDir(), "x.db"), PoolSize: 0},
		},
		{
			name: "unsupported driver",
			cfg:  config.Database{Driver: "oracle", PoolSize: 5},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			pool, err := connpool.Open(context.Background(), tc.cfg)

			// assert
			assert.ErrorIs(t, err, librarystore.ErrConnection)
			assert.Nil(t, pool)
		})
	}
}

func Test_Acquire_ReleasesTheConnectionWhenFnFails(t *testing.T) {
	// arrange
	pool := givenOpenPool(t, 2)
	fnErr := errors.New("fn failed")

	// act
	err := pool.Acquire(context.Background(), func(ctx context.Context, conn connpool.Conn) error {
		assert.Equal(t, 1, pool.Stats().AcquiredConns)
		return fnErr
	})

	// assert
	assert.ErrorIs(t, err, fnErr)
	assert.Equal(t, 0, pool.Stats().AcquiredConns)
}

func Test_Acquire_ReleasesTheConnectionWhenFnPanics(t *testing.T) {
	// arrange
	pool := givenOpenPool(t, 2)

	// act
	assert.Panics(t, func() {
		_ = pool.Acquire(context.Background(), func(ctx context.Context, conn connpool.Conn) error {
			panic("boom")
		})
	})

	// assert
	assert.Equal(t, 0, pool.Stats().AcquiredConns)
}

func Test_Acquire_BlocksWhileThePoolIsExhausted(t *testing.T) {
	// arrange
	pool := givenOpenPool(t, 1)
	holding := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error)

	go func() {
		done <- pool.Acquire(context.Background(), func(ctx context.Context, conn connpool.Conn) error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// act
	err := pool.Acquire(ctx, func(ctx context.Context, conn connpool.Conn) error {
		return nil
	})

	// assert
	assert.ErrorIs(t, err, librarystore.ErrConnection)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, <-done)

	assert.NoError(t, pool.Acquire(context.Background(), func(ctx context.Context, conn connpool.Conn) error {
		return conn.Ping(ctx)
	}), "the released connection must be usable again")
}

func Test_Close_RejectsFurtherUse(t *testing.T) {
	// arrange
	pool := givenOpenPool(t, 2)

	// act
	pool.Close()
	pool.Close()

	// assert
	err := pool.Acquire(context.Background(), func(ctx context.Context, conn connpool.Conn) error { return nil })
	assert.ErrorIs(t, err, connpool.ErrPoolClosed)
	assert.ErrorIs(t, err, librarystore.ErrConnection)

	_, err = pool.NewStore()
	assert.ErrorIs(t, err, connpool.ErrPoolClosed)
}

func Test_EnsureSchema_IsIdempotent_AndNewStoreUsesIt(t *testing.T) {
	// arrange
	pool := givenOpenPool(t, 5)
	ctx := context.Background()

	// act
	require.NoError(t, pool.EnsureSchema(ctx))
	require.NoError(t, pool.EnsureSchema(ctx))

	store, err := pool.NewStore()
	require.NoError(t, err)

	book := librarystore.Book{Title: "Harry Potter", ISBN: "978-0-7475-3269-9", Quantity: 2}
	saveErr := store.SaveBook(ctx, &book)

	// assert
	require.NoError(t, saveErr)
	assert.Equal(t, sqlengine.DialectSQLite3, store.Dialect())
	assert.NotZero(t, book.ID)
}

func Test_SchemaStatements(t *testing.T) {
	for _, dialect := range []string{sqlengine.DialectPostgres, sqlengine.DialectMySQL, sqlengine.DialectSQLite3} {
		t.Run(dialect, func(t *testing.T) {
			// act
			statements, err := connpool.SchemaStatements(dialect)

			// assert
			require.NoError(t, err)
			require.NotEmpty(t, statements)
			for _, statement := range statements {
				assert.Contains(t, statement, "CREATE")
				assert.NotContains(t, statement, ";")
			}
		})
	}

	_, err := connpool.SchemaStatements("oracle")
	assert.ErrorIs(t, err, connpool.ErrNoSchemaForDialect)
}

func givenSQLiteConfig(t *testing.T, poolSize int) config.Database {
	t.Helper()

	return config.Database{
		Driver:   config.DriverSQLite3,
		Path:     filepath.Join(t.TempDir(), "library.db"),
		PoolSize: poolSize,
	}
}

func givenOpenPool(t *testing.T, poolSize int) *connpool.Pool {
	t.Helper()

	pool, err := connpool.Open(context.Background(), givenSQLiteConfig(t, poolSize))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}
