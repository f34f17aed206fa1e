// Package resilience bounds detached outbound calls, such as usage events,
// so that a slow or failing sink cannot pile up work inside the gate.
//
// A Guard composes, from the outside in:
//
//   - RateLimiter: token bucket; sheds calls above the configured rate.
//   - Bulkhead: caps in-flight calls; sheds instead of queueing.
//   - CircuitBreaker: stops calling a sink after consecutive failures and
//     probes it again after a cool-down.
//   - Timeout: bounds each call with a context deadline.
//
// There is no retry stage: a shed or failed call is reported once and
// dropped.
//
//	g := resilience.New(resilience.DefaultConfig())
//	err := g.Do(ctx, func(ctx context.Context) error {
//	    return post(ctx, event)
//	})
//	if resilience.IsShed(err) {
//	    // dropped without being attempted
//	}
package resilience
