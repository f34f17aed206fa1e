package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumByAttr(t *testing.T, m *metricdata.Metrics, key attribute.Key) map[string]int64 {
	t.Helper()
	if m == nil {
		t.Fatal("metric not found")
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", m.Data)
	}
	out := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		k := ""
		if v, ok := dp.Attributes.Value(key); ok {
			k = v.Emit()
		}
		out[k] += dp.Value
	}
	return out
}

func newTestMetrics(t *testing.T) (Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// TestMetrics_CheckByState verifies checks are counted per resulting state.
func TestMetrics_CheckByState(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordCheck(ctx, "authorized", 2*time.Millisecond)
	m.RecordCheck(ctx, "authorized", 3*time.Millisecond)
	m.RecordCheck(ctx, "downgraded", 5*time.Millisecond)

	rm := collect(t, reader)
	got := sumByAttr(t, findMetric(rm, "toolgate.check.total"), "gate.state")
	if got["authorized"] != 2 || got["downgraded"] != 1 {
		t.Errorf("unexpected counts %v", got)
	}

	hist := findMetric(rm, "toolgate.check.duration_ms")
	if hist == nil {
		t.Fatal("duration histogram not found")
	}
	h, ok := hist.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", hist.Data)
	}
	var count uint64
	for _, dp := range h.DataPoints {
		count += dp.Count
	}
	if count != 3 {
		t.Errorf("expected 3 observations, got %d", count)
	}
}

// TestMetrics_Purge verifies purge counts and removed records.
func TestMetrics_Purge(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordPurge(ctx, 3, nil)
	m.RecordPurge(ctx, 0, errors.New("redis down"))

	rm := collect(t, reader)
	got := sumByAttr(t, findMetric(rm, "toolgate.purge.total"), "purge.error")
	if got["false"] != 1 || got["true"] != 1 {
		t.Errorf("unexpected purge counts %v", got)
	}
	records := sumByAttr(t, findMetric(rm, "toolgate.purge.records"), "unused")
	if records[""] != 3 {
		t.Errorf("expected 3 removed records, got %v", records)
	}
}

// TestMetrics_Authorize verifies decisions are split by outcome.
func TestMetrics_Authorize(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordAuthorize(ctx, true)
	m.RecordAuthorize(ctx, false)
	m.RecordAuthorize(ctx, false)

	got := sumByAttr(t, findMetric(collect(t, reader), "toolgate.authorize.total"), "gate.allowed")
	if got["true"] != 1 || got["false"] != 2 {
		t.Errorf("unexpected decision counts %v", got)
	}
}

// TestNopMetrics verifies the no-op implementation is safe.
func TestNopMetrics(t *testing.T) {
	m := NopMetrics()
	m.RecordCheck(context.Background(), "authorized", time.Second)
	m.RecordPurge(context.Background(), 1, nil)
	m.RecordAuthorize(context.Background(), true)
}
