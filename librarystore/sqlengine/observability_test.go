package sqlengine_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/librarystore"
	"github.com/AntonStoeckl/library-circulation-go/librarystore/sqlengine"
	. "github.com/AntonStoeckl/library-circulation-go/testutil/helper"              //nolint:revive
	. "github.com/AntonStoeckl/library-circulation-go/testutil/helper/storewrapper" //nolint:revive
)

func Test_Observability_WithLogger_LogsStatementsAndOperations(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logHandler := NewTestLogHandler(false)
	store := CreatePoolWrapper(t, sqlengine.WithLogger(NewLogger(logHandler))).GetStore()

	// arrange
	book := FixtureBook(t, "Middlemarch", 1)

	// act
	err := store.SaveBook(ctxWithTimeout, &book)

	// assert
	require.NoError(t, err)
	assert.True(t,
		logHandler.HasDebugLogWithMessage("executed sql for: insert into books").
			WithDurationMS().
			WithAttr("query").
			Assert(), "should log the executed statement with duration_ms",
	)
	assert.True(t,
		logHandler.HasInfoLogWithMessage("librarystore operation: save_book").
			WithAttrValue("row_count", "1").
			WithDurationMS().
			Assert(), "should log the operation summary with row count and duration",
	)
}

func Test_Observability_WithContextualLogger_IsPreferredOverTheLogger(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	plainHandler := NewTestLogHandler(false)
	contextualHandler := NewTestLogHandler(false)
	store := CreatePoolWrapper(t,
		sqlengine.WithLogger(NewLogger(plainHandler)),
		sqlengine.WithContextualLogger(NewLogger(contextualHandler)),
	).GetStore()

	// act
	_, err := store.CountMembers(ctxWithTimeout)

	// assert
	require.NoError(t, err)
	assert.Zero(t, plainHandler.GetRecordCount())
	assert.True(t,
		contextualHandler.HasInfoLogWithMessage("librarystore operation: count_members").
			WithAttrValue("row_count", "1").
			Assert(),
	)
}

func Test_Observability_WithMetrics_RecordsSuccessfulOperations(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	metricsSpy := NewMetricsCollectorSpy()
	store := givenStore(t, sqlengine.WithMetrics(metricsSpy))

	// arrange
	GivenBookWasSaved(t, ctxWithTimeout, store, "Persuasion", 1)
	GivenBookWasSaved(t, ctxWithTimeout, store, "Emma", 1)
	metricsSpy.Reset()

	// act
	_, err := store.AllBooks(ctxWithTimeout)

	// assert
	require.NoError(t, err)
	assert.True(t,
		metricsSpy.HasDurationRecordForMetric("librarystore_operation_duration_seconds").
			WithOperation("all_books").
			WithStatus("success").
			Assert(),
	)
	assert.True(t,
		metricsSpy.HasValueRecordForMetric("librarystore_rows_returned").
			WithOperation("all_books").
			Assert(),
	)

	records := metricsSpy.GetValueRecords()
	require.Len(t, records, 1)
	assert.InDelta(t, 2.0, records[0].Value, 0.001)
}

func Test_Observability_WithMetrics_CountsConcurrencyConflicts(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	metricsSpy := NewMetricsCollectorSpy()
	store := givenStore(t, sqlengine.WithMetrics(metricsSpy))

	// act
	err := store.CloseLoan(ctxWithTimeout, 4711, librarystore.Today(), 0)

	// assert
	assert.ErrorIs(t, err, librarystore.ErrConcurrencyConflict)
	assert.True(t,
		metricsSpy.HasCounterRecordForMetric("librarystore_concurrency_conflicts_total").
			WithOperation("close_loan").
			Assert(),
	)
	assert.True(t,
		metricsSpy.HasDurationRecordForMetric("librarystore_operation_duration_seconds").
			WithOperation("close_loan").
			WithStatus("error").
			Assert(),
	)
	assert.False(t, metricsSpy.HasCounterRecordForMetric("librarystore_database_errors_total").Assert())
}

func Test_Observability_WithMetrics_CountsDatabaseErrors(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	metricsSpy := NewMetricsCollectorSpy()
	store := givenStore(t, sqlengine.WithMetrics(metricsSpy))

	// arrange
	book := FixtureBook(t, "Negative Stock", -1)

	// act
	err := store.SaveBook(ctxWithTimeout, &book)

	// assert
	assert.ErrorIs(t, err, librarystore.ErrStorage)
	assert.True(t,
		metricsSpy.HasCounterRecordForMetric("librarystore_database_errors_total").
			WithOperation("save_book").
			WithStatus("error").
			WithErrorType("database_error").
			Assert(),
	)
}

func Test_Observability_WithTracing_WrapsOperationsInSpans(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tracingSpy := NewTracingCollectorSpy()
	store := givenStore(t, sqlengine.WithTracing(tracingSpy))

	// arrange
	book := GivenBookWasSaved(t, ctxWithTimeout, store, "Jane Eyre", 1)
	bookID := strconv.FormatInt(book.ID, 10)

	// act
	_, found, err := store.BookByID(ctxWithTimeout, book.ID)

	// assert
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t,
		tracingSpy.HasSpanRecordForName("librarystore.save_book").
			WithStatus("success").
			Assert(),
	)
	assert.True(t,
		tracingSpy.HasSpanRecordForName("librarystore.book_by_id").
			WithStartAttribute("operation", "book_by_id").
			WithStartAttribute("db.dialect", store.Dialect()).
			WithStartAttribute("entity_id", bookID).
			WithStatus("success").
			WithEndAttribute("row_count", "1").
			Assert(),
	)
}

func Test_Observability_WithTracing_MarksFailedSpans(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tracingSpy := NewTracingCollectorSpy()
	store := givenStore(t, sqlengine.WithTracing(tracingSpy))

	// arrange
	member := GivenMemberWasSaved(t, ctxWithTimeout, store, "Jane Bennet")
	book := GivenBookWasSaved(t, ctxWithTimeout, store, "Pride and Prejudice", 1)
	loan := librarystore.Loan{MemberID: member.ID, BookID: book.ID, LoanDate: librarystore.Today(), DueDate: librarystore.Today()}

	// act
	err := store.AppendLoan(ctxWithTimeout, &loan, 3)

	// assert
	assert.ErrorIs(t, err, librarystore.ErrConcurrencyConflict)
	assert.True(t,
		tracingSpy.HasSpanRecordForName("librarystore.append_loan").
			WithStartAttribute("expected_active_loans", "3").
			WithStatus("error").
			WithEndAttribute("error_type", "concurrency_conflict").
			Assert(),
	)
}
