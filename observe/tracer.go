package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// StageMeta describes one gate stage for telemetry purposes.
type StageMeta struct {
	Stage     string // check|validate|purge|authorize|execute (required)
	SessionID string // transport session id (optional)
	UserID    string // caller user id (optional)
	Operation string // requested tool name (optional)
}

// SpanName returns the deterministic span name: toolgate.<stage>.
func (m StageMeta) SpanName() string {
	return "toolgate." + m.Stage
}

func (m StageMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("gate.stage", m.Stage),
	}
	if m.SessionID != "" {
		attrs = append(attrs, attribute.String("session.id", m.SessionID))
	}
	if m.UserID != "" {
		attrs = append(attrs, attribute.String("user.id", m.UserID))
	}
	if m.Operation != "" {
		attrs = append(attrs, attribute.String("gate.operation", m.Operation))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with gate-stage span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a span for one gate stage.
	StartSpan(ctx context.Context, meta StageMeta) (context.Context, trace.Span)

	// EndSpan ends the span with the resulting state and error, if any.
	EndSpan(span trace.Span, state string, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	if t == nil {
		return NopTracer()
	}
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta StageMeta) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(meta.attributes()...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, state string, err error) {
	if state != "" {
		span.SetAttributes(attribute.String("gate.state", state))
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// NopTracer returns a tracer whose spans record nothing.
func NopTracer() Tracer {
	return &noopTracer{noop: tracenoop.NewTracerProvider().Tracer("noop")}
}

type noopTracer struct {
	noop trace.Tracer
}

func (t *noopTracer) StartSpan(ctx context.Context, meta StageMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, _ string, _ error) {
	span.End()
}
