package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported database drivers.
const (
	DriverPGX      = "pgx"
	DriverPostgres = "postgres"
	DriverSQLX     = "sqlx"
	DriverMySQL    = "mysql"
	DriverSQLite3  = "sqlite3"
)

const (
	defaultDriver         = DriverSQLite3
	defaultSQLitePath     = "library.db"
	defaultPoolSize       = 5
	defaultConnectTimeout = 5 * time.Second
	defaultLogFile        = "library_system.log"
	defaultLogLevel       = "info"
	defaultHTTPAddr       = "127.0.0.1:8080"
	defaultRateLimit      = 20.0
	defaultRateBurst      = 40
	defaultServiceName    = "library-circulation"
	defaultDotEnvFile     = ".env"
)

// Environment variables. The MYSQL_* variables of older deployments are honored when the LIBRARY_DB_* ones are unset.
const (
	EnvDBDriver     = "LIBRARY_DB_DRIVER"
	EnvDBHost       = "LIBRARY_DB_HOST"
	EnvDBPort       = "LIBRARY_DB_PORT"
	EnvDBName       = "LIBRARY_DB_NAME"
	EnvDBUser       = "LIBRARY_DB_USER"
	EnvDBPassword   = "LIBRARY_DB_PASSWORD"
	EnvDBPath       = "LIBRARY_DB_PATH"
	EnvDBPoolSize   = "LIBRARY_DB_POOL_SIZE"
	EnvLogFile      = "LIBRARY_LOG_FILE"
	EnvLogLevel     = "LIBRARY_LOG_LEVEL"
	EnvHTTPAddr     = "LIBRARY_HTTP_ADDR"
	EnvOTLPEndpoint = "LIBRARY_OTEL_ENDPOINT"

	EnvMySQLHost     = "MYSQL_HOST"
	EnvMySQLPort     = "MYSQL_PORT"
	EnvMySQLDatabase = "MYSQL_DATABASE"
	EnvMySQLUser     = "MYSQL_USER"
	EnvMySQLPassword = "MYSQL_PASSWORD"
)

// ErrInvalidConfig is returned when the merged configuration can not be used.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete application configuration.
type Config struct {
	Database  Database  `yaml:"database"`
	Log       Log       `yaml:"log"`
	HTTP      HTTP      `yaml:"http"`
	Telemetry Telemetry `yaml:"telemetry"`
}

// Database configures the connection pool.
type Database struct {
	Driver         string        `yaml:"driver"`
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	Name           string        `yaml:"name"`
	User           string        `yaml:"user"`
	Password       string        `yaml:"password"`
	Path           string        `yaml:"path"`
	PoolSize       int           `yaml:"pool_size"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// Log configures the application log file.
type Log struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// HTTP configures the HTTP API server.
type HTTP struct {
	Addr      string  `yaml:"addr"`
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

// Telemetry configures OpenTelemetry export. It is disabled when OTLPEndpoint is empty.
type Telemetry struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	ServiceName  string `yaml:"service_name"`
}

// Default returns the configuration used when neither a file nor the environment sets a value.
func Default() Config {
	return Config{
		Database: Database{
			Driver:         defaultDriver,
			Path:           defaultSQLitePath,
			PoolSize:       defaultPoolSize,
			ConnectTimeout: defaultConnectTimeout,
		},
		Log: Log{
			File:  defaultLogFile,
			Level: defaultLogLevel,
		},
		HTTP: HTTP{
			Addr:      defaultHTTPAddr,
			RateLimit: defaultRateLimit,
			RateBurst: defaultRateBurst,
		},
		Telemetry: Telemetry{
			ServiceName: defaultServiceName,
		},
	}
}

// Load builds the configuration in this order: defaults, the YAML file (optional), a .env file (optional) and
// the process environment. Variables that are already set in the environment win over the .env file.
// An empty configFile skips the YAML step. If no envFiles are given, ".env" in the working directory is tried.
func Load(configFile string, envFiles ...string) (Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadYAML(configFile, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := loadDotEnv(envFiles...); err != nil {
		return Config{}, err
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the merged configuration.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverPGX, DriverPostgres, DriverSQLX, DriverMySQL:
		if c.Database.Host == "" || c.Database.Name == "" {
			return fmt.Errorf("%w: driver %q needs a host and a database name", ErrInvalidConfig, c.Database.Driver)
		}
	case DriverSQLite3:
		if c.Database.Path == "" {
			return fmt.Errorf("%w: driver %q needs a path", ErrInvalidConfig, c.Database.Driver)
		}
	default:
		return fmt.Errorf("%w: unsupported driver %q", ErrInvalidConfig, c.Database.Driver)
	}

	if c.Database.PoolSize < 1 {
		return fmt.Errorf("%w: pool size must be at least 1, got %d", ErrInvalidConfig, c.Database.PoolSize)
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}

	return nil
}

// SlogLevel parses the configured log level ("debug", "info", "warn", "error").
func (l Log) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log level %q: %w", ErrInvalidConfig, l.Level, err)
	}

	return level, nil
}

func loadYAML(path string, cfg *Config) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %w", ErrInvalidConfig, path, err)
	}

	if err := yaml.Unmarshal(content, cfg); err != nil {
		return fmt.Errorf("%w: parsing %s: %w", ErrInvalidConfig, path, err)
	}

	return nil
}

func loadDotEnv(envFiles ...string) error {
	if len(envFiles) == 0 {
		envFiles = []string{defaultDotEnvFile}
	}

	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return fmt.Errorf("%w: loading %s: %w", ErrInvalidConfig, file, err)
		}
	}

	return nil
}

type lookupFunc func(key string) (string, bool)

// first returns the value of the first key that is set to a non-empty value.
func (lookup lookupFunc) first(keys ...string) (string, bool) {
	for _, key := range keys {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value), true
		}
	}

	return "", false
}

func applyEnv(cfg *Config, lookupEnv func(string) (string, bool)) error {
	lookup := lookupFunc(lookupEnv)

	if driver, ok := lookup.first(EnvDBDriver); ok {
		cfg.Database.Driver = strings.ToLower(driver)
	} else if _, ok := lookup.first(EnvMySQLHost); ok {
		cfg.Database.Driver = DriverMySQL
	}

	if host, ok := lookup.first(EnvDBHost, EnvMySQLHost); ok {
		cfg.Database.Host = host
	}

	if port, ok := lookup.first(EnvDBPort, EnvMySQLPort); ok {
		parsed, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("%w: port %q: %w", ErrInvalidConfig, port, err)
		}

		cfg.Database.Port = parsed
	}

	if name, ok := lookup.first(EnvDBName, EnvMySQLDatabase); ok {
		cfg.Database.Name = name
	}

	if user, ok := lookup.first(EnvDBUser, EnvMySQLUser); ok {
		cfg.Database.User = user
	}

	if password, ok := lookup.first(EnvDBPassword, EnvMySQLPassword); ok {
		cfg.Database.Password = password
	}

	if path, ok := lookup.first(EnvDBPath); ok {
		cfg.Database.Path = path
	}

	if poolSize, ok := lookup.first(EnvDBPoolSize); ok {
		parsed, err := strconv.Atoi(poolSize)
		if err != nil {
			return fmt.Errorf("%w: pool size %q: %w", ErrInvalidConfig, poolSize, err)
		}

		cfg.Database.PoolSize = parsed
	}

	if file, ok := lookup.first(EnvLogFile); ok {
		cfg.Log.File = file
	}

	if level, ok := lookup.first(EnvLogLevel); ok {
		cfg.Log.Level = level
	}

	if addr, ok := lookup.first(EnvHTTPAddr); ok {
		cfg.HTTP.Addr = addr
	}

	if endpoint, ok := lookup.first(EnvOTLPEndpoint); ok {
		cfg.Telemetry.OTLPEndpoint = endpoint
	}

	return nil
}
