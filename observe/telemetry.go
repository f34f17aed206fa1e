package observe

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Telemetry bundles the instruments a gate stage reports through.
// The zero value is not usable; call NopTelemetry or Observer.Telemetry.
type Telemetry struct {
	Tracer  Tracer
	Metrics Metrics
	Logger  Logger
}

// NopTelemetry returns telemetry that records nothing.
func NopTelemetry() Telemetry {
	return Telemetry{Tracer: NopTracer(), Metrics: NopMetrics(), Logger: NopLogger()}
}

// WithDefaults fills nil members with no-op implementations.
func (t Telemetry) WithDefaults() Telemetry {
	if t.Tracer == nil {
		t.Tracer = NopTracer()
	}
	if t.Metrics == nil {
		t.Metrics = NopMetrics()
	}
	if t.Logger == nil {
		t.Logger = NopLogger()
	}
	return t
}

// InstrumentClient returns a copy of c whose transport emits client spans
// and propagates trace context on outbound requests. A nil c yields a
// default client.
func InstrumentClient(c *http.Client) *http.Client {
	if c == nil {
		c = &http.Client{}
	}
	out := *c
	base := out.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	out.Transport = otelhttp.NewTransport(base)
	return &out
}
