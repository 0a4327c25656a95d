package shell

import "time"

// HandlerResult represents the outcome of a command handler execution.
// It captures the business outcome (rejection by a rule) and retry information
// without coupling the handler to specific observability implementations.
type HandlerResult struct {
	// Rejected indicates that a business rule rejected the command.
	// The handler also returns the PolicyViolation as error.
	Rejected bool

	// RetryAttempts is the total number of attempts made (1 for no retries, 2+ for retries).
	RetryAttempts int

	// TotalRetryDelay is the cumulative time spent in retry backoff delays.
	TotalRetryDelay time.Duration

	// LastErrorType describes the type of the final error encountered during retries.
	// Values: "none", "concurrency_conflict", "policy_violation", "context_canceled", "context_deadline_exceeded", "other"
	LastErrorType string

	// RetriesExhausted indicates whether max retry attempts were reached with a retryable error.
	RetriesExhausted bool
}

func newHandlerResult(retryMetrics RetryMetrics, rejected bool) HandlerResult {
	return HandlerResult{
		Rejected:         rejected,
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}

// NewSuccessResult creates a HandlerResult for a command that changed state.
func NewSuccessResult(retryMetrics RetryMetrics) HandlerResult {
	return newHandlerResult(retryMetrics, false)
}

// NewRejectedResult creates a HandlerResult for a command a business rule rejected.
func NewRejectedResult(retryMetrics RetryMetrics) HandlerResult {
	return newHandlerResult(retryMetrics, true)
}

// NewErrorResult creates a HandlerResult for a command that failed technically.
func NewErrorResult(retryMetrics RetryMetrics) HandlerResult {
	return newHandlerResult(retryMetrics, false)
}
