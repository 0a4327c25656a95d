package returnloan

import (
	"context"
	"time"

	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
	"github.com/AntonStoeckl/library-circulation-go/librarystore"
)

// LoanStore defines the store operations needed by the CommandHandler.
type LoanStore interface {
	LoanByID(ctx context.Context, id int64) (librarystore.Loan, bool, error)
	CloseLoan(ctx context.Context, loanID int64, returnDate time.Time, fine float64) error
}

// CommandHandler orchestrates the Return Loan workflow with pure business logic and retry.
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

// Handle executes the Return Loan workflow and returns the loan in its returned state.
// A rejection returns the core.PolicyViolation as error and a HandlerResult with Rejected set.
// On any error the loan must be treated as still active.
func (h CommandHandler) Handle(ctx context.Context, command Command) (ReturnedLoan, shell.HandlerResult, error) {
	var returned ReturnedLoan
	var rejected bool

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		result, wasRejected, execErr := h.executeCommand(retryCtx, command)
		returned = result
		rejected = wasRejected

		return execErr
	}, h.retryOptions...)

	if rejected {
		return ReturnedLoan{}, shell.NewRejectedResult(retryMetrics), err
	}

	if err != nil {
		return ReturnedLoan{}, shell.NewErrorResult(retryMetrics), err
	}

	return returned, shell.NewSuccessResult(retryMetrics), nil
}

func (h CommandHandler) executeCommand(ctx context.Context, command Command) (ReturnedLoan, bool, error) {
	// Query phase
	loan, found, err := h.loanStore.LoanByID(ctx, command.LoanID)
	if err != nil {
		return ReturnedLoan{}, false, err
	}

	// Business logic phase
	decision := Decide(loan, found, command)
	if !decision.IsSuccess() {
		return ReturnedLoan{}, true, decision.HasError()
	}

	// Write phase, only while the loan is still active
	returned := decision.Value()
	closeErr := h.loanStore.CloseLoan(ctx, returned.Loan.ID, *returned.Loan.ReturnDate, returned.Loan.FineAmount)
	if closeErr != nil {
		return ReturnedLoan{}, false, closeErr
	}

	return returned, false, nil
}
