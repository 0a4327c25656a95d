package oteladapters_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/log/noop"

	"github.com/AntonStoeckl/library-circulation-go/librarystore/oteladapters"
)

func Test_SlogBridgeLogger_AllLevels(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.Background()

	// act
	logger.DebugContext(ctx, "executed sql for: select from books", "duration_ms", 0.42)
	logger.InfoContext(ctx, "librarystore operation: all_books", "row_count", 3)
	logger.WarnContext(ctx, "transaction rolled back", "action", "save_book")
	logger.ErrorContext(ctx, "database query execution failed", "error", "boom")

	// assert
	output := buf.String()
	assert.Contains(t, output, `"level":"DEBUG"`)
	assert.Contains(t, output, `"level":"INFO"`)
	assert.Contains(t, output, `"level":"WARN"`)
	assert.Contains(t, output, `"level":"ERROR"`)
	assert.Contains(t, output, `"row_count":3`)
	assert.Contains(t, output, "librarystore operation: all_books")
}

func Test_SlogBridgeLogger_RespectsHandlerLevel(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	// act
	logger.InfoContext(context.Background(), "should not appear")
	logger.WarnContext(context.Background(), "should appear")

	// assert
	assert.NotContains(t, buf.String(), "should not appear")
	assert.Contains(t, buf.String(), "should appear")
}

func Test_SlogBridgeLogger_WithGlobalProvider(t *testing.T) {
	// arrange
	logger := oteladapters.NewSlogBridgeLogger("library-circulation-test")

	// act + assert
	assert.NotPanics(t, func() {
		logger.InfoContext(context.Background(), "loan issued", "member_id", int64(7))
	})
}

func Test_OTelLogger_EmitsAllArgumentKinds(t *testing.T) {
	// arrange
	logger := oteladapters.NewOTelLogger(noop.NewLoggerProvider().Logger("test"))
	ctx := context.Background()

	// act + assert
	assert.NotPanics(t, func() {
		logger.DebugContext(ctx, "debug", "query", "SELECT 1", "duration_ms", 1.5)
		logger.InfoContext(ctx, "info", "row_count", 3, "loan_id", int64(12), "found", true)
		logger.WarnContext(ctx, "warn", "error", errors.New("boom"), 42, "non-string key is skipped")
		logger.ErrorContext(ctx, "error", "dangling")
	})
}
