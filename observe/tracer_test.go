package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(attrs))
	for _, a := range attrs {
		m[string(a.Key)] = a.Value
	}
	return m
}

// TestStageMeta_SpanName verifies the span naming scheme.
func TestStageMeta_SpanName(t *testing.T) {
	if got := (StageMeta{Stage: "validate"}).SpanName(); got != "toolgate.validate" {
		t.Errorf("expected toolgate.validate, got %q", got)
	}
}

// TestTracer_SpanAttributes verifies stage attributes and final state.
func TestTracer_SpanAttributes(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tr := NewTracer(tp.Tracer("test"))

	_, span := tr.StartSpan(context.Background(), StageMeta{
		Stage:     "authorize",
		SessionID: "sess-1",
		UserID:    "42",
		Operation: "xano_list_tables",
	})
	tr.EndSpan(span, "authorized", nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Name() != "toolgate.authorize" {
		t.Errorf("unexpected span name %q", s.Name())
	}
	attrs := attrMap(s.Attributes())
	want := map[string]string{
		"gate.stage":     "authorize",
		"session.id":     "sess-1",
		"user.id":        "42",
		"gate.operation": "xano_list_tables",
		"gate.state":     "authorized",
	}
	for k, v := range want {
		if attrs[k].AsString() != v {
			t.Errorf("expected %s=%q, got %q", k, v, attrs[k].AsString())
		}
	}
	if s.Status().Code != codes.Ok {
		t.Errorf("expected Ok status, got %v", s.Status().Code)
	}
}

// TestTracer_OptionalAttributesOmitted verifies empty meta fields are not recorded.
func TestTracer_OptionalAttributesOmitted(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tr := NewTracer(tp.Tracer("test"))

	_, span := tr.StartSpan(context.Background(), StageMeta{Stage: "check"})
	tr.EndSpan(span, "", nil)

	attrs := attrMap(recorder.Ended()[0].Attributes())
	for _, k := range []string{"session.id", "user.id", "gate.operation", "gate.state"} {
		if _, ok := attrs[k]; ok {
			t.Errorf("expected no %s attribute", k)
		}
	}
}

// TestTracer_ErrorStatus verifies errors set span status and an event.
func TestTracer_ErrorStatus(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tr := NewTracer(tp.Tracer("test"))

	_, span := tr.StartSpan(context.Background(), StageMeta{Stage: "purge"})
	tr.EndSpan(span, "downgraded", errors.New("redis down"))

	s := recorder.Ended()[0]
	if s.Status().Code != codes.Error || s.Status().Description != "redis down" {
		t.Errorf("unexpected status %+v", s.Status())
	}
	if len(s.Events()) == 0 {
		t.Error("expected a recorded error event")
	}
}

// TestTracer_ContextPropagation verifies stage spans nest under the caller's span.
func TestTracer_ContextPropagation(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer("test")
	tr := NewTracer(tracer)

	parentCtx, parent := tracer.Start(context.Background(), "request")
	_, child := tr.StartSpan(parentCtx, StageMeta{Stage: "check"})
	tr.EndSpan(child, "authorized", nil)
	parent.End()

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Parent().SpanID() != parent.SpanContext().SpanID() {
		t.Error("stage span is not a child of the request span")
	}
}

// TestNewTracer_NilFallsBackToNoop verifies a nil tracer is tolerated.
func TestNewTracer_NilFallsBackToNoop(t *testing.T) {
	tr := NewTracer(nil)
	_, span := tr.StartSpan(context.Background(), StageMeta{Stage: "check"})
	tr.EndSpan(span, "authorized", errors.New("ignored"))
}
