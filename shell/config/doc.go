// Package config provides the configuration of the library circulation application.
//
// Values are merged from built-in defaults, an optional YAML file, an optional .env file and
// the process environment (LIBRARY_DB_*, LIBRARY_LOG_*, LIBRARY_HTTP_ADDR, LIBRARY_OTEL_ENDPOINT).
// The package also builds the driver specific DSNs, the pgxpool configuration and the
// OpenTelemetry providers.
//
// This package is part of the shell (infrastructure) layer.
package config
