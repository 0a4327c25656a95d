package sqlengine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-circulation-go/librarystore"
)

const (
	metricOperationDuration    = "librarystore_operation_duration_seconds"
	metricRowsReturned         = "librarystore_rows_returned"
	metricDatabaseErrors       = "librarystore_database_errors_total"
	metricConcurrencyConflicts = "librarystore_concurrency_conflicts_total"

	spanNamePrefix       = "librarystore."
	spanAttrOperation    = "operation"
	spanAttrDialect      = "db.dialect"
	spanAttrErrorType    = "error_type"
	spanAttrRowCount     = "row_count"
	spanAttrDurationMS   = "duration_ms"
	spanAttrEntityID     = "entity_id"
	metricLabelStatus    = "status"
	metricLabelConflict  = "conflict_type"
	statusSuccess        = "success"
	statusError          = "error"
	errorTypeConcurrency = "concurrency_conflict"
	errorTypeBuildQuery  = "build_query"
	errorTypeDatabase    = "database_error"
)

// logQueryWithDuration logs SQL statements with execution time at debug level.
func (s Store) logQueryWithDuration(ctx context.Context, stmt statement, duration time.Duration) {
	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+stmt.action, logAttrDurationMS, toMilliseconds(duration), logAttrQuery, stmt.sql)
		return
	}

	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+stmt.action, logAttrDurationMS, toMilliseconds(duration), logAttrQuery, stmt.sql)
	}
}

// logOperation logs operational information at info level.
func (s Store) logOperation(ctx context.Context, operation string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, logMsgOperation+operation, args...)
		return
	}

	if s.logger != nil {
		s.logger.Info(logMsgOperation+operation, args...)
	}
}

func (s Store) logWarn(ctx context.Context, message string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, message, args...)
		return
	}

	if s.logger != nil {
		s.logger.Warn(message, args...)
	}
}

// logError logs error information at the error level.
func (s Store) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
		return
	}

	if s.logger != nil {
		s.logger.Error(message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func (s Store) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(librarystore.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	s.metricsCollector.RecordDuration(metric, duration, labels)
}

func (s Store) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(librarystore.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	s.metricsCollector.IncrementCounter(metric, labels)
}

func (s Store) recordValue(ctx context.Context, metric string, value float64, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(librarystore.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metric, value, labels)
		return
	}

	s.metricsCollector.RecordValue(metric, value, labels)
}

// errorTypeOf maps an error returned by a store operation to a metrics/tracing label.
func errorTypeOf(err error) string {
	switch {
	case errors.Is(err, librarystore.ErrConcurrencyConflict):
		return errorTypeConcurrency
	case errors.Is(err, librarystore.ErrBuildingQueryFailed):
		return errorTypeBuildQuery
	default:
		return errorTypeDatabase
	}
}

// operationObserver encapsulates the tracing span, the metrics and the summary log line of one store operation.
type operationObserver struct {
	s         Store
	ctx       context.Context
	span      SpanContext
	operation string
	start     time.Time
}

// observe starts observing a store operation. The returned context carries the span, if tracing is configured.
func (s Store) observe(ctx context.Context, operation string, attrs ...string) (*operationObserver, context.Context) {
	spanAttrs := map[string]string{
		spanAttrOperation: operation,
		spanAttrDialect:   s.dialect,
	}

	for i := 0; i+1 < len(attrs); i += 2 {
		spanAttrs[attrs[i]] = attrs[i+1]
	}

	newCtx := ctx
	var span SpanContext
	if s.tracingCollector != nil {
		newCtx, span = s.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, spanAttrs)
	}

	return &operationObserver{
		s:         s,
		ctx:       newCtx,
		span:      span,
		operation: operation,
		start:     time.Now(),
	}, newCtx
}

// finishSuccess records a successful operation that touched or returned rowCount rows.
func (o *operationObserver) finishSuccess(rowCount int) {
	duration := time.Since(o.start)

	o.s.recordDuration(o.ctx, metricOperationDuration, duration, map[string]string{
		spanAttrOperation: o.operation,
		metricLabelStatus: statusSuccess,
	})
	o.s.recordValue(o.ctx, metricRowsReturned, float64(rowCount), map[string]string{
		spanAttrOperation: o.operation,
		metricLabelStatus: statusSuccess,
	})

	o.s.logOperation(o.ctx, o.operation, logAttrRowCount, rowCount, logAttrDurationMS, toMilliseconds(duration))

	if o.span == nil || o.s.tracingCollector == nil {
		return
	}

	o.span.AddAttribute(spanAttrRowCount, strconv.Itoa(rowCount))
	o.span.AddAttribute(spanAttrDurationMS, fmt.Sprintf("%.2f", toMilliseconds(duration)))
	o.s.tracingCollector.FinishSpan(o.span, statusSuccess, map[string]string{
		spanAttrRowCount: strconv.Itoa(rowCount),
	})
}

// finishError records a failed operation and passes err through unchanged.
func (o *operationObserver) finishError(err error) error {
	duration := time.Since(o.start)
	errorType := errorTypeOf(err)

	o.s.recordDuration(o.ctx, metricOperationDuration, duration, map[string]string{
		spanAttrOperation: o.operation,
		metricLabelStatus: statusError,
	})

	if errorType == errorTypeConcurrency {
		o.s.incrementCounter(o.ctx, metricConcurrencyConflicts, map[string]string{
			spanAttrOperation:   o.operation,
			metricLabelConflict: "concurrency",
		})
	} else {
		o.s.incrementCounter(o.ctx, metricDatabaseErrors, map[string]string{
			spanAttrOperation: o.operation,
			metricLabelStatus: statusError,
			spanAttrErrorType: errorType,
		})
	}

	if o.span != nil && o.s.tracingCollector != nil {
		o.span.AddAttribute(spanAttrErrorType, errorType)
		o.span.AddAttribute(spanAttrDurationMS, fmt.Sprintf("%.2f", toMilliseconds(duration)))
		o.s.tracingCollector.FinishSpan(o.span, statusError, map[string]string{
			spanAttrErrorType: errorType,
		})
	}

	return err
}
