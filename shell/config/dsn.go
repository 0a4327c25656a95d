package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultPostgresPort = 5432
	defaultMySQLPort    = 3306

	// sqliteDSNParams enables foreign keys, waits for competing writers and takes the write lock at BEGIN.
	sqliteDSNParams = "_foreign_keys=1&_busy_timeout=5000&_txlock=immediate&_journal_mode=WAL"
)

// DSN returns the data source name for the configured driver.
func (d Database) DSN() (string, error) {
	switch d.Driver {
	case DriverPGX, DriverPostgres, DriverSQLX:
		return d.postgresDSN(), nil
	case DriverMySQL:
		return d.mySQLDSN(), nil
	case DriverSQLite3:
		return SQLiteDSN(d.Path), nil
	default:
		return "", fmt.Errorf("%w: unsupported driver %q", ErrInvalidConfig, d.Driver)
	}
}

// SQLiteDSN returns the DSN for a SQLite database file.
func SQLiteDSN(path string) string {
	return "file:" + path + "?" + sqliteDSNParams
}

func (d Database) postgresDSN() string {
	port := d.Port
	if port == 0 {
		port = defaultPostgresPort
	}

	query := url.Values{}
	query.Set("sslmode", "disable")
	query.Set("connect_timeout", strconv.Itoa(int(d.connectTimeout().Seconds())))

	dsn := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(port)),
		Path:     "/" + d.Name,
		RawQuery: query.Encode(),
	}

	if d.User != "" {
		dsn.User = url.UserPassword(d.User, d.Password)
	}

	return dsn.String()
}

func (d Database) mySQLDSN() string {
	port := d.Port
	if port == 0 {
		port = defaultMySQLPort
	}

	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(d.Host, strconv.Itoa(port))
	cfg.DBName = d.Name
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Timeout = d.connectTimeout()

	return cfg.FormatDSN()
}

func (d Database) connectTimeout() time.Duration {
	if d.ConnectTimeout <= 0 {
		return defaultConnectTimeout
	}

	return d.ConnectTimeout
}

// PGXPoolConfig creates a pgxpool.Config with MaxConns set to the pool size.
func (d Database) PGXPoolConfig() (*pgxpool.Config, error) {
	const defaultMaxConnLifetime = time.Hour
	const defaultMaxConnIdleTime = time.Minute * 5
	const defaultHealthCheckPeriod = time.Minute

	dbConfig, err := pgxpool.ParseConfig(d.postgresDSN())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	dbConfig.MaxConns = int32(d.PoolSize)
	dbConfig.MinConns = 1
	dbConfig.MaxConnLifetime = defaultMaxConnLifetime
	dbConfig.MaxConnIdleTime = defaultMaxConnIdleTime
	dbConfig.HealthCheckPeriod = defaultHealthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = d.connectTimeout()

	return dbConfig, nil
}
