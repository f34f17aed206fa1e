// Package health reports whether the gate's backends are reachable.
//
// The gate fails open when its backends are down, so an unreachable token
// store or session registry is normally reported as Degraded: the process
// is still serving and should stay in rotation. Unhealthy is reserved for
// checks registered as critical.
//
//	agg := health.NewAggregator()
//	agg.Register(health.NewPingChecker("redis", kv, health.StatusDegraded))
//	agg.Register(registry.NewChecker(client))
//
//	r := chi.NewRouter()
//	health.Mount(r, agg)
//
// Mount serves /healthz (liveness), /readyz (aggregate status) and
// /health (per-check JSON detail) and /health/{name}.
package health
