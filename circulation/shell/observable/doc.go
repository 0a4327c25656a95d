// Package observable decorates circulation command handlers with metrics, tracing and logging.
//
// The wrapped handlers stay free of instrumentation, they only report what happened through
// shell.HandlerResult and their error. Retry metrics are recorded by shell.RetryWithExponentialBackoff
// when a handler is configured with shell.WithMetrics.
package observable
