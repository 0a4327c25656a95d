package sqlengine

import (
	"github.com/AntonStoeckl/library-circulation-go/librarystore"
)

// Logger interface for SQL statement logging, operational summaries, warnings, and error reporting.
type Logger = librarystore.Logger

// ContextualLogger interface for context-aware logging with automatic trace correlation.
type ContextualLogger = librarystore.ContextualLogger

// MetricsCollector interface for collecting store performance and operational metrics.
type MetricsCollector = librarystore.MetricsCollector

// TracingCollector interface for collecting distributed tracing information from store operations.
type TracingCollector = librarystore.TracingCollector

// SpanContext represents an active tracing span.
type SpanContext = librarystore.SpanContext

// Option defines a functional option for configuring Store.
type Option func(*Store) error

// WithDialect sets the SQL dialect the statements are built for.
// Supported: DialectPostgres, DialectMySQL, DialectSQLite3.
func WithDialect(dialect string) Option {
	return func(s *Store) error {
		if dialect == "" {
			return librarystore.ErrEmptyDialect
		}

		switch dialect {
		case DialectPostgres, DialectMySQL, DialectSQLite3:
			s.dialect = dialect
		default:
			return librarystore.ErrUnsupportedDialect
		}

		return nil
	}
}

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: Operation summaries with row counts and durations (production-safe)
// Warn level: Non-critical issues like close or rollback failures
// Error level: Failed statements including the statement text and its parameters.
func WithLogger(logger Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Store.
// When set, it is preferred over the plain Logger so log records carry trace correlation.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
// It receives operation durations, returned row counts, database errors and concurrency conflicts.
func WithMetrics(collector MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Store.
// Every public store operation is wrapped in one span.
func WithTracing(collector TracingCollector) Option {
	return func(s *Store) error {
		s.tracingCollector = collector
		return nil
	}
}
