package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records gate decisions.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCheck records one credential check and the state it ended in.
	RecordCheck(ctx context.Context, state string, duration time.Duration)

	// RecordPurge records a credential purge and the number of records removed.
	RecordPurge(ctx context.Context, removed int, err error)

	// RecordAuthorize records one permission decision.
	RecordAuthorize(ctx context.Context, allowed bool)
}

type metricsImpl struct {
	checkTotal    metric.Int64Counter
	checkDuration metric.Float64Histogram
	purgeTotal    metric.Int64Counter
	purgedRecords metric.Int64Counter
	authorize     metric.Int64Counter
}

// NewMetrics creates gate instruments on the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	checkTotal, err := meter.Int64Counter(
		"toolgate.check.total",
		metric.WithDescription("Credential checks by resulting gate state"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	checkDuration, err := meter.Float64Histogram(
		"toolgate.check.duration_ms",
		metric.WithDescription("Credential check duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	purgeTotal, err := meter.Int64Counter(
		"toolgate.purge.total",
		metric.WithDescription("Credential purges triggered by invalid credentials"),
		metric.WithUnit("{purge}"),
	)
	if err != nil {
		return nil, err
	}

	purgedRecords, err := meter.Int64Counter(
		"toolgate.purge.records",
		metric.WithDescription("Credential records removed by purges"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}

	authorize, err := meter.Int64Counter(
		"toolgate.authorize.total",
		metric.WithDescription("Permission decisions"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		checkTotal:    checkTotal,
		checkDuration: checkDuration,
		purgeTotal:    purgeTotal,
		purgedRecords: purgedRecords,
		authorize:     authorize,
	}, nil
}

func (m *metricsImpl) RecordCheck(ctx context.Context, state string, duration time.Duration) {
	opt := metric.WithAttributes(attribute.String("gate.state", state))
	m.checkTotal.Add(ctx, 1, opt)
	m.checkDuration.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

func (m *metricsImpl) RecordPurge(ctx context.Context, removed int, err error) {
	m.purgeTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("purge.error", err != nil)))
	if removed > 0 {
		m.purgedRecords.Add(ctx, int64(removed))
	}
}

func (m *metricsImpl) RecordAuthorize(ctx context.Context, allowed bool) {
	m.authorize.Add(ctx, 1, metric.WithAttributes(attribute.Bool("gate.allowed", allowed)))
}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics {
	return noopMetrics{}
}

type noopMetrics struct{}

func (noopMetrics) RecordCheck(context.Context, string, time.Duration) {}
func (noopMetrics) RecordPurge(context.Context, int, error)           {}
func (noopMetrics) RecordAuthorize(context.Context, bool)             {}
