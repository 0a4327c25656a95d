package circulation

import (
	"context"
	"time"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/issueloan"
	"github.com/AntonStoeckl/library-circulation-go/circulation/returnloan"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell/observable"
	"github.com/AntonStoeckl/library-circulation-go/librarystore"
)

// LoanStore is the union of the store operations both use cases need.
type LoanStore interface {
	issueloan.LoanStore
	returnloan.LoanStore
}

// Desk issues and returns loans.
type Desk struct {
	loanStore     LoanStore
	issueHandler  shell.CoreCommandHandler[issueloan.Command, librarystore.Loan]
	returnHandler shell.CoreCommandHandler[returnloan.Command, returnloan.ReturnedLoan]
	now           func() time.Time
}

type deskConfig struct {
	now              func() time.Time
	retryOptions     []shell.RetryOption
	metricsCollector shell.MetricsCollector
	tracingCollector shell.TracingCollector
	contextualLogger shell.ContextualLogger
	logger           shell.Logger
}

// Option configures a Desk.
type Option func(*deskConfig)

// WithClock replaces time.Now as the source of today's date.
func WithClock(now func() time.Time) Option {
	return func(c *deskConfig) {
		c.now = now
	}
}

// WithRetryOptions configures the retry behavior of both command handlers.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(c *deskConfig) {
		c.retryOptions = opts
	}
}

// WithMetrics sets the metrics collector for command and retry metrics.
func WithMetrics(collector shell.MetricsCollector) Option {
	return func(c *deskConfig) {
		c.metricsCollector = collector
	}
}

// WithTracing sets the tracing collector for command spans.
func WithTracing(collector shell.TracingCollector) Option {
	return func(c *deskConfig) {
		c.tracingCollector = collector
	}
}

// WithContextualLogger sets the context-aware logger of the command handlers.
func WithContextualLogger(logger shell.ContextualLogger) Option {
	return func(c *deskConfig) {
		c.contextualLogger = logger
	}
}

// WithLogger sets the basic logger of the command handlers.
func WithLogger(logger shell.Logger) Option {
	return func(c *deskConfig) {
		c.logger = logger
	}
}

// NewDesk builds a Desk on top of loanStore.
func NewDesk(loanStore LoanStore, opts ...Option) (*Desk, error) {
	cfg := deskConfig{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	issueHandler, err := observable.NewCommandWrapper[issueloan.Command, librarystore.Loan](
		issueloan.NewCommandHandler(loanStore, issueloan.WithRetryOptions(cfg.retryOptionsFor(issueloan.Command{}.CommandType())...)),
		observable.WithCommandMetrics[issueloan.Command, librarystore.Loan](cfg.metricsCollector),
		observable.WithCommandTracing[issueloan.Command, librarystore.Loan](cfg.tracingCollector),
		observable.WithCommandContextualLogging[issueloan.Command, librarystore.Loan](cfg.contextualLogger),
		observable.WithCommandLogging[issueloan.Command, librarystore.Loan](cfg.logger),
	)
	if err != nil {
		return nil, err
	}

	returnHandler, err := observable.NewCommandWrapper[returnloan.Command, returnloan.ReturnedLoan](
		returnloan.NewCommandHandler(loanStore, returnloan.WithRetryOptions(cfg.retryOptionsFor(returnloan.Command{}.CommandType())...)),
		observable.WithCommandMetrics[returnloan.Command, returnloan.ReturnedLoan](cfg.metricsCollector),
		observable.WithCommandTracing[returnloan.Command, returnloan.ReturnedLoan](cfg.tracingCollector),
		observable.WithCommandContextualLogging[returnloan.Command, returnloan.ReturnedLoan](cfg.contextualLogger),
		observable.WithCommandLogging[returnloan.Command, returnloan.ReturnedLoan](cfg.logger),
	)
	if err != nil {
		return nil, err
	}

	return &Desk{
		loanStore:     loanStore,
		issueHandler:  issueHandler,
		returnHandler: returnHandler,
		now:           cfg.now,
	}, nil
}

func (c deskConfig) retryOptionsFor(commandType string) []shell.RetryOption {
	opts := append([]shell.RetryOption{}, c.retryOptions...)
	if c.metricsCollector != nil {
		opts = append(opts, shell.WithMetrics(c.metricsCollector, commandType))
	}

	return opts
}

// IssueLoan lends the book to the member, dated today.
// Rejections and failures are reported in the Outcome, never as error.
func (d *Desk) IssueLoan(ctx context.Context, memberID int64, bookID int64) core.Outcome {
	loan, err := d.Issue(ctx, memberID, bookID)
	if err != nil {
		return core.Outcome{Success: false, Message: err.Error()}
	}

	return core.Outcome{Success: true, Message: core.MsgLoanIssued, LoanID: loan.ID}
}

// Issue lends the book to the member, dated today, and returns the stored loan.
// Unlike IssueLoan it keeps the error kind, for callers that branch on it.
func (d *Desk) Issue(ctx context.Context, memberID int64, bookID int64) (librarystore.Loan, error) {
	loan, _, err := d.issueHandler.Handle(ctx, issueloan.BuildCommand(memberID, bookID, d.now()))

	return loan, err
}

// ReturnLoan returns the loan today and finalizes its fine.
// Errors match librarystore.ErrPolicyViolation when the loan does not exist or was already returned.
func (d *Desk) ReturnLoan(ctx context.Context, loanID int64) (core.ReturnOutcome, error) {
	returned, _, err := d.returnHandler.Handle(ctx, returnloan.BuildCommand(loanID, d.now()))
	if err != nil {
		return core.ReturnOutcome{}, err
	}

	return returned.Outcome(), nil
}

// PreviewFine computes what returning the loan today would charge, without writing anything.
// It applies the same rules as ReturnLoan, so it is rejected for unknown or returned loans.
func (d *Desk) PreviewFine(ctx context.Context, loanID int64) (core.ReturnOutcome, error) {
	loan, found, err := d.loanStore.LoanByID(ctx, loanID)
	if err != nil {
		return core.ReturnOutcome{}, err
	}

	decision := returnloan.Decide(loan, found, returnloan.BuildCommand(loanID, d.now()))
	if !decision.IsSuccess() {
		return core.ReturnOutcome{}, decision.HasError()
	}

	return decision.Value().Outcome(), nil
}

// Today returns the Desk's current calendar date.
func (d *Desk) Today() time.Time {
	return librarystore.DateOf(d.now())
}
