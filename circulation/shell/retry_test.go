package shell_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
	"github.com/AntonStoeckl/library-circulation-go/librarystore"
	"github.com/AntonStoeckl/library-circulation-go/testutil/helper"
)

func Test_RetryWithExponentialBackoff_Success_NoRetries(t *testing.T) {
	// arrange
	callCount := 0
	fn := func(_ context.Context) error {
		callCount++
		return nil
	}

	// act
	meta, err := shell.RetryWithExponentialBackoff(context.Background(), fn)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 1, callCount)
	assert.Equal(t, 1, meta.Attempts)
	assert.Equal(t, time.Duration(0), meta.TotalDelay)
	assert.Equal(t, "none", meta.LastErrorType)
	assert.False(t, meta.RetriesExhausted)
}

func Test_RetryWithExponentialBackoff_RetriesOnConcurrencyConflict(t *testing.T) {
	// arrange
	metricsSpy := helper.NewMetricsCollectorSpy()
	callCount := 0
	fn := func(_ context.Context) error {
		callCount++
		if callCount < 3 {
			return errors.Join(librarystore.ErrConcurrencyConflict, errors.New("member row changed"))
		}

		return nil
	}

	// act
	meta, err := shell.RetryWithExponentialBackoff(
		context.Background(),
		fn,
		shell.WithBaseDelay(2*time.Millisecond),
		shell.WithMetrics(metricsSpy, "IssueLoan"),
	)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, callCount)
	assert.Equal(t, 3, meta.Attempts)
	assert.Greater(t, meta.TotalDelay, time.Duration(0))
	assert.Equal(t, "none", meta.LastErrorType)

	assert.Equal(t, 2, metricsSpy.HasCounterRecordForMetric(shell.CommandHandlerRetriesMetric).
		WithLabel("command_type", "IssueLoan").
		WithErrorType("concurrency_conflict").
		Count())
	assert.Equal(t, 2, metricsSpy.HasDurationRecordForMetric(shell.CommandHandlerRetryDelayMetric).Count())
	assert.False(t, metricsSpy.HasCounterRecordForMetric(shell.CommandHandlerMaxRetriesReachedMetric).Assert())
}

func Test_RetryWithExponentialBackoff_FailsFastOnNonRetryableErrors(t *testing.T) {
	testCases := []struct {
		name              string
		err               error
		expectedErrorType string
	}{
		{name: "policy violation", err: core.NewLoanLimitReached(), expectedErrorType: "policy_violation"},
		{name: "storage error", err: errors.Join(librarystore.ErrStorage, errors.New("disk full")), expectedErrorType: "other"},
		{name: "timeout", err: context.DeadlineExceeded, expectedErrorType: "context_deadline_exceeded"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			callCount := 0
			fn := func(_ context.Context) error {
				callCount++
				return tc.err
			}

			// act
			meta, err := shell.RetryWithExponentialBackoff(context.Background(), fn)

			// assert
			assert.ErrorIs(t, err, tc.err)
			assert.Equal(t, 1, callCount)
			assert.Equal(t, 1, meta.Attempts)
			assert.Equal(t, tc.expectedErrorType, meta.LastErrorType)
			assert.False(t, meta.RetriesExhausted)
		})
	}
}

func Test_RetryWithExponentialBackoff_ExhaustsRetries(t *testing.T) {
	// arrange
	metricsSpy := helper.NewMetricsCollectorSpy()
	callCount := 0
	fn := func(_ context.Context) error {
		callCount++
		return librarystore.ErrConcurrencyConflict
	}

	// act
	meta, err := shell.RetryWithExponentialBackoff(
		context.Background(),
		fn,
		shell.WithMaxAttempts(3),
		shell.WithBaseDelay(time.Millisecond),
		shell.WithJitterFactor(0),
		shell.WithMetrics(metricsSpy, "ReturnLoan"),
	)

	// assert
	assert.ErrorIs(t, err, librarystore.ErrConcurrencyConflict)
	assert.Equal(t, 3, callCount)
	assert.Equal(t, 3, meta.Attempts)
	assert.True(t, meta.RetriesExhausted)
	assert.Equal(t, 3*time.Millisecond, meta.TotalDelay)
	assert.Equal(t, "concurrency_conflict", meta.LastErrorType)
	assert.True(t, metricsSpy.HasCounterRecordForMetric(shell.CommandHandlerMaxRetriesReachedMetric).
		WithLabel("command_type", "ReturnLoan").
		WithLabel("final_error_type", "concurrency_conflict").
		Assert())
}

func Test_RetryWithExponentialBackoff_StopsWhenTheContextIsCanceledDuringBackoff(t *testing.T) {
	// arrange
	ctx, cancel := context.WithCancel(context.Background())
	fn := func(_ context.Context) error {
		cancel()
		return librarystore.ErrConcurrencyConflict
	}

	// act
	meta, err := shell.RetryWithExponentialBackoff(ctx, fn, shell.WithBaseDelay(time.Second))

	// assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, meta.Attempts)
	assert.Equal(t, "context_canceled", meta.LastErrorType)
}

func Test_RetryWithExponentialBackoff_InvalidOptions(t *testing.T) {
	fn := func(_ context.Context) error { return nil }

	testCases := []struct {
		name        string
		option      shell.RetryOption
		expectedErr error
	}{
		{name: "max attempts zero", option: shell.WithMaxAttempts(0), expectedErr: shell.ErrInvalidMaxAttempts},
		{name: "negative base delay", option: shell.WithBaseDelay(-time.Second), expectedErr: shell.ErrNegativeBaseDelay},
		{name: "jitter above one", option: shell.WithJitterFactor(1.5), expectedErr: shell.ErrInvalidJitterFactor},
		{name: "nil metrics collector", option: shell.WithMetrics(nil, "IssueLoan"), expectedErr: shell.ErrNilMetricsCollector},
		{name: "empty command type", option: shell.WithMetrics(helper.NewMetricsCollectorSpy(), ""), expectedErr: shell.ErrEmptyCommandType},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, err := shell.RetryWithExponentialBackoff(context.Background(), fn, tc.option)

			// assert
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func Test_StatusOf(t *testing.T) {
	testCases := []struct {
		name     string
		result   shell.HandlerResult
		err      error
		expected string
	}{
		{name: "no error", err: nil, expected: shell.StatusSuccess},
		{name: "rejected", result: shell.HandlerResult{Rejected: true}, err: core.NewLoanLimitReached(), expected: shell.StatusRejected},
		{name: "canceled", err: context.Canceled, expected: shell.StatusCanceled},
		{name: "timeout", err: context.DeadlineExceeded, expected: shell.StatusTimeout},
		{name: "conflict", err: librarystore.ErrConcurrencyConflict, expected: shell.StatusConcurrencyConflict},
		{name: "storage", err: librarystore.ErrStorage, expected: shell.StatusError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, shell.StatusOf(tc.result, tc.err))
		})
	}
}
