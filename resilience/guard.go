package resilience

import (
	"context"
	"errors"
	"time"
)

// Config configures a Guard. Zero values take the defaults of the
// individual stages; a zero Timeout disables the timeout stage.
type Config struct {
	Rate          float64
	Burst         int
	MaxConcurrent int
	MaxFailures   int
	ResetTimeout  time.Duration
	Timeout       time.Duration

	// OnStateChange observes circuit transitions.
	OnStateChange func(from, to State)

	// Now returns the current time. Default: time.Now.
	Now func() time.Time
}

// DefaultConfig suits a low-volume telemetry sink.
func DefaultConfig() Config {
	return Config{
		Rate:          50,
		Burst:         100,
		MaxConcurrent: 16,
		MaxFailures:   5,
		ResetTimeout:  30 * time.Second,
		Timeout:       5 * time.Second,
	}
}

// Guard composes the resilience stages around an operation.
type Guard struct {
	limiter  *RateLimiter
	bulkhead *Bulkhead
	breaker  *CircuitBreaker
	timeout  time.Duration
}

// New creates a Guard with every stage configured from cfg.
func New(cfg Config) *Guard {
	return &Guard{
		limiter:  NewRateLimiter(RateLimiterConfig{Rate: cfg.Rate, Burst: cfg.Burst, Now: cfg.Now}),
		bulkhead: NewBulkhead(BulkheadConfig{MaxConcurrent: cfg.MaxConcurrent}),
		breaker: NewCircuitBreaker(CircuitBreakerConfig{
			MaxFailures:   cfg.MaxFailures,
			ResetTimeout:  cfg.ResetTimeout,
			OnStateChange: cfg.OnStateChange,
			Now:           cfg.Now,
		}),
		timeout: cfg.Timeout,
	}
}

// Do runs op through rate limiter, bulkhead, circuit breaker and timeout,
// in that order. op is attempted at most once.
func (g *Guard) Do(ctx context.Context, op func(context.Context) error) error {
	return g.limiter.Execute(ctx, func(ctx context.Context) error {
		return g.bulkhead.Execute(ctx, func(ctx context.Context) error {
			return g.breaker.Execute(ctx, func(ctx context.Context) error {
				return withTimeout(ctx, g.timeout, op)
			})
		})
	})
}

// withTimeout bounds op with a deadline. op is expected to honor ctx; a
// deadline it reports is translated to ErrTimeout.
func withTimeout(ctx context.Context, d time.Duration, op func(context.Context) error) error {
	if d <= 0 {
		return op(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	err := op(ctx)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Join(ErrTimeout, err)
	}
	return err
}

// Snapshot reports the state of each stage.
type Snapshot struct {
	Circuit  CircuitBreakerMetrics
	Bulkhead BulkheadMetrics
	Tokens   float64
}

// Snapshot returns current stage metrics.
func (g *Guard) Snapshot() Snapshot {
	return Snapshot{
		Circuit:  g.breaker.Metrics(),
		Bulkhead: g.bulkhead.Metrics(),
		Tokens:   g.limiter.Tokens(),
	}
}
