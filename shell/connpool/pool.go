package connpool

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql" // mysql driver
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/AntonStoeckl/library-circulation-go/librarystore"
	"github.com/AntonStoeckl/library-circulation-go/librarystore/sqlengine"
	"github.com/AntonStoeckl/library-circulation-go/shell/config"
)

// ErrPoolClosed is returned by every operation on a Pool after Close.
var ErrPoolClosed = errors.New("connection pool is closed")

const (
	logMsgPoolOpened = "connection pool opened"
	logMsgPoolClosed = "connection pool closed"
	logMsgOpenFailed = "connection pool could not be opened"
	logAttrDriver    = "driver"
	logAttrPoolSize  = "pool_size"
	logAttrError     = "error"

	defaultMaxConnLifetime = time.Hour
	defaultMaxConnIdleTime = time.Minute * 5
)

// Logger is the logging interface the pool reports its lifecycle to.
type Logger = librarystore.Logger

// Option defines a functional option for configuring Open.
type Option func(*Pool)

// WithLogger sets the logger for pool lifecycle messages.
func WithLogger(logger Logger) Option {
	return func(p *Pool) {
		p.logger = logger
	}
}

// Pool owns a bounded set of database connections for one configured driver.
// It is constructed once at process start with Open, passed to everything that needs the database
// and released with Close at shutdown.
type Pool struct {
	driver   string
	dialect  string
	poolSize int
	pgx      *pgxpool.Pool
	sqlDB    *sql.DB
	sqlxDB   *sqlx.DB
	logger   Logger
	closed   atomic.Bool
}

// Stats is a snapshot of the pool usage.
type Stats struct {
	MaxConns      int
	AcquiredConns int
	IdleConns     int
}

// Open builds the driver pool for cfg and checks that the database is reachable.
// Every failure matches librarystore.ErrConnection.
func Open(ctx context.Context, cfg config.Database, options ...Option) (*Pool, error) {
	p := &Pool{
		driver:   cfg.Driver,
		poolSize: cfg.PoolSize,
	}

	for _, option := range options {
		option(p)
	}

	if p.poolSize < 1 {
		return nil, p.openFailed(fmt.Errorf("%w: pool size must be at least 1", config.ErrInvalidConfig))
	}

	dsn, err := cfg.DSN()
	if err != nil {
		return nil, p.openFailed(err)
	}

	switch cfg.Driver {
	case config.DriverPGX:
		err = p.openPGX(ctx, cfg)
	case config.DriverPostgres:
		err = p.openSQLDB(ctx, "postgres", dsn, sqlengine.DialectPostgres)
	case config.DriverMySQL:
		err = p.openSQLDB(ctx, "mysql", dsn, sqlengine.DialectMySQL)
	case config.DriverSQLX:
		err = p.openSQLX(ctx, "postgres", dsn, sqlengine.DialectPostgres)
	case config.DriverSQLite3:
		err = p.openSQLX(ctx, sqlengine.DriverSQLite3Unicode, dsn, sqlengine.DialectSQLite3)
	default:
		err = fmt.Errorf("%w: unsupported driver %q", config.ErrInvalidConfig, cfg.Driver)
	}

	if err != nil {
		return nil, p.openFailed(err)
	}

	if p.logger != nil {
		p.logger.Info(logMsgPoolOpened, logAttrDriver, p.driver, logAttrPoolSize, p.poolSize)
	}

	return p, nil
}

func (p *Pool) openPGX(ctx context.Context, cfg config.Database) error {
	poolConfig, err := cfg.PGXPoolConfig()
	if err != nil {
		return err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return err
	}

	if pingErr := pool.Ping(ctx); pingErr != nil {
		pool.Close()
		return pingErr
	}

	p.pgx = pool
	p.dialect = sqlengine.DialectPostgres

	return nil
}

func (p *Pool) openSQLDB(ctx context.Context, driverName, dsn, dialect string) error {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return err
	}

	p.configureSQLDB(db)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return pingErr
	}

	p.sqlDB = db
	p.dialect = dialect

	return nil
}

func (p *Pool) openSQLX(ctx context.Context, driverName, dsn, dialect string) error {
	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return err
	}

	p.configureSQLDB(db.DB)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return pingErr
	}

	p.sqlxDB = db
	p.dialect = dialect

	return nil
}

func (p *Pool) configureSQLDB(db *sql.DB) {
	db.SetMaxOpenConns(p.poolSize)
	db.SetMaxIdleConns(p.poolSize)
	db.SetConnMaxLifetime(defaultMaxConnLifetime)
	db.SetConnMaxIdleTime(defaultMaxConnIdleTime)
}

func (p *Pool) openFailed(err error) error {
	if p.logger != nil {
		p.logger.Error(logMsgOpenFailed, logAttrDriver, p.driver, logAttrError, err.Error())
	}

	return errors.Join(librarystore.ErrConnection, err)
}

// Driver returns the configured driver name.
func (p *Pool) Driver() string {
	return p.driver
}

// Dialect returns the SQL dialect of the underlying database.
func (p *Pool) Dialect() string {
	return p.dialect
}

// Acquire takes one connection from the pool, runs fn with it and always returns the connection to the pool,
// also when fn fails or panics. It blocks while all connections are in use, until ctx is done.
func (p *Pool) Acquire(ctx context.Context, fn func(ctx context.Context, conn Conn) error) error {
	if p.closed.Load() {
		return errors.Join(librarystore.ErrConnection, ErrPoolClosed)
	}

	switch {
	case p.pgx != nil:
		conn, err := p.pgx.Acquire(ctx)
		if err != nil {
			return errors.Join(librarystore.ErrConnection, err)
		}
		defer conn.Release()

		return fn(ctx, pgxConn{conn: conn})

	default:
		conn, err := p.db().Conn(ctx)
		if err != nil {
			return errors.Join(librarystore.ErrConnection, err)
		}
		defer func() { _ = conn.Close() }()

		return fn(ctx, sqlConn{conn: conn})
	}
}

// Stats returns a snapshot of the pool usage.
func (p *Pool) Stats() Stats {
	if p.pgx != nil {
		stat := p.pgx.Stat()

		return Stats{
			MaxConns:      int(stat.MaxConns()),
			AcquiredConns: int(stat.AcquiredConns()),
			IdleConns:     int(stat.IdleConns()),
		}
	}

	stats := p.db().Stats()

	return Stats{
		MaxConns:      stats.MaxOpenConnections,
		AcquiredConns: stats.InUse,
		IdleConns:     stats.Idle,
	}
}

// NewStore creates a store on top of the pool with the matching SQL dialect.
func (p *Pool) NewStore(options ...sqlengine.Option) (sqlengine.Store, error) {
	if p.closed.Load() {
		return sqlengine.Store{}, errors.Join(librarystore.ErrConnection, ErrPoolClosed)
	}

	switch {
	case p.pgx != nil:
		return sqlengine.NewStoreFromPGXPool(p.pgx, options...)
	case p.sqlxDB != nil:
		return sqlengine.NewStoreFromSQLX(p.sqlxDB, append([]sqlengine.Option{sqlengine.WithDialect(p.dialect)}, options...)...)
	default:
		return sqlengine.NewStoreFromSQLDB(p.sqlDB, append([]sqlengine.Option{sqlengine.WithDialect(p.dialect)}, options...)...)
	}
}

// Close releases all connections. Calling it more than once is a no-op.
func (p *Pool) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}

	if p.pgx != nil {
		p.pgx.Close()
	} else {
		_ = p.db().Close()
	}

	if p.logger != nil {
		p.logger.Info(logMsgPoolClosed, logAttrDriver, p.driver)
	}
}

func (p *Pool) db() *sql.DB {
	if p.sqlxDB != nil {
		return p.sqlxDB.DB
	}

	return p.sqlDB
}
