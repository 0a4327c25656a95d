package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/library-circulation-go/librarystore"
)

const (
	spanDescriptionFailed   = "operation failed"
	spanDescriptionCanceled = "operation canceled"
	spanDescriptionConflict = "concurrency conflict"
	spanDescriptionRejected = "rejected by loan policy"
	spanAttrStatus          = "status"
)

// TracingCollector implements librarystore.TracingCollector using the OpenTelemetry tracing API.
// Store operations and circulation commands become spans, the returned context carries the span
// so nested operations are linked to their parent.
type TracingCollector struct {
	tracer trace.Tracer
}

// NewTracingCollector creates a new OpenTelemetry tracing collector.
// The tracer should be created from your OpenTelemetry TracerProvider.
func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

// StartSpan starts a span with the given name and attributes.
func (t *TracingCollector) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, librarystore.SpanContext) {
	spanCtx, span := t.tracer.Start(ctx, name, trace.WithAttributes(toAttributes(attrs)...))

	return spanCtx, &OTelSpanContext{span: span}
}

// FinishSpan adds the final attributes, sets the status and ends the span.
// Span contexts that were not created by this collector are ignored.
func (t *TracingCollector) FinishSpan(spanCtx librarystore.SpanContext, status string, attrs map[string]string) {
	otelSpanCtx, ok := spanCtx.(*OTelSpanContext)
	if !ok {
		return
	}

	otelSpanCtx.span.SetAttributes(toAttributes(attrs)...)
	otelSpanCtx.SetStatus(status)
	otelSpanCtx.span.End()
}

// OTelSpanContext implements librarystore.SpanContext by wrapping an OpenTelemetry span.
type OTelSpanContext struct {
	span trace.Span
}

// SetStatus maps the generic status strings used by the store and the command handlers to span status codes.
// Unknown values are recorded as a "status" attribute.
func (s *OTelSpanContext) SetStatus(status string) {
	switch status {
	case "ok", "success", "completed":
		s.span.SetStatus(codes.Ok, "")
	case "error", "failed", "failure":
		s.span.SetStatus(codes.Error, spanDescriptionFailed)
	case "canceled", "cancelled", "timeout":
		s.span.SetStatus(codes.Error, spanDescriptionCanceled)
	case "conflict":
		s.span.SetStatus(codes.Error, spanDescriptionConflict)
	case "rejected":
		// a policy rejection is a regular business outcome
		s.span.SetStatus(codes.Ok, spanDescriptionRejected)
	default:
		s.span.SetAttributes(attribute.String(spanAttrStatus, status))
	}
}

// AddAttribute adds a string attribute to the span.
func (s *OTelSpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

var (
	_ librarystore.TracingCollector = (*TracingCollector)(nil)
	_ librarystore.SpanContext      = (*OTelSpanContext)(nil)
)
