package registry

import (
	"context"
	"time"

	"github.com/jonwraymond/toolgate/health"
)

// Checker reports whether the registry answers. An unreachable registry is
// degraded rather than unhealthy: the gate keeps serving and fails open.
type Checker struct {
	client *Client
}

// NewChecker creates a health checker for client.
func NewChecker(client *Client) *Checker {
	return &Checker{client: client}
}

// Name implements health.Checker.
func (c *Checker) Name() string {
	return "registry"
}

// Check implements health.Checker.
func (c *Checker) Check(ctx context.Context) health.Result {
	start := time.Now()
	err := c.client.Ping(ctx)
	var res health.Result
	if err != nil {
		res = health.Degraded("registry unreachable")
		res.Error = err
	} else {
		res = health.Healthy("registry reachable")
	}
	res.Duration = time.Since(start)
	res.Details = map[string]any{"endpoint": c.client.base}
	return res
}

var _ health.Checker = (*Checker)(nil)
