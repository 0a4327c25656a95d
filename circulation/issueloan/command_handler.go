package issueloan

import (
	"context"

	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
	"github.com/AntonStoeckl/library-circulation-go/librarystore"
)

// LoanStore defines the store operations needed by the CommandHandler.
type LoanStore interface {
	ActiveLoansCount(ctx context.Context, memberID int64) (int, error)
	AppendLoan(ctx context.Context, loan *librarystore.Loan, expectedActiveLoans int) error
}

// CommandHandler orchestrates the Issue Loan workflow with pure business logic and retry.
// External wrappers handle all observability concerns.
type CommandHandler struct {
	loanStore    LoanStore
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(loanStore LoanStore, opts ...Option) CommandHandler {
	handler := CommandHandler{
		loanStore: loanStore,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the Issue Loan workflow and returns the stored loan.
// A rejection returns the core.PolicyViolation as error and a HandlerResult with Rejected set.
//
// Resilience: lost races against a concurrent issuance for the same member are retried with exponential backoff.
func (h CommandHandler) Handle(ctx context.Context, command Command) (librarystore.Loan, shell.HandlerResult, error) {
	var issued librarystore.Loan
	var rejected bool

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		loan, wasRejected, execErr := h.executeCommand(retryCtx, command)
		issued = loan
		rejected = wasRejected

		return execErr
	}, h.retryOptions...)

	if rejected {
		return librarystore.Loan{}, shell.NewRejectedResult(retryMetrics), err
	}

	if err != nil {
		return librarystore.Loan{}, shell.NewErrorResult(retryMetrics), err
	}

	return issued, shell.NewSuccessResult(retryMetrics), nil
}

func (h CommandHandler) executeCommand(ctx context.Context, command Command) (librarystore.Loan, bool, error) {
	// Query phase
	activeLoans, err := h.loanStore.ActiveLoansCount(ctx, command.MemberID)
	if err != nil {
		return librarystore.Loan{}, false, err
	}

	// Business logic phase
	decision := Decide(activeLoans, command)
	if !decision.IsSuccess() {
		return librarystore.Loan{}, true, decision.HasError()
	}

	// Append phase, conditional on the queried count
	loan := decision.Value()
	if appendErr := h.loanStore.AppendLoan(ctx, &loan, activeLoans); appendErr != nil {
		return librarystore.Loan{}, false, appendErr
	}

	return loan, false, nil
}
