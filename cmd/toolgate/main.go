// Command toolgate serves gate decisions for a tool-call proxy, together
// with the session admin API, health probes and Prometheus metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jonwraymond/toolgate/admin"
	"github.com/jonwraymond/toolgate/auth"
	"github.com/jonwraymond/toolgate/cache"
	"github.com/jonwraymond/toolgate/config"
	"github.com/jonwraymond/toolgate/gate"
	"github.com/jonwraymond/toolgate/health"
	"github.com/jonwraymond/toolgate/observe"
	"github.com/jonwraymond/toolgate/registry"
	"github.com/jonwraymond/toolgate/resilience"
	"github.com/jonwraymond/toolgate/tokenstore"
	"github.com/jonwraymond/toolgate/usage"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "toolgate:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	obs, err := observe.NewObserver(ctx, cfg.Observe(version))
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(sctx)
	}()
	tel, err := obs.Telemetry()
	if err != nil {
		return err
	}
	log := tel.Logger
	log.Info(ctx, "config loaded",
		observe.F("listen_addr", cfg.ListenAddr),
		observe.F("base_url", cfg.BaseURL),
		observe.F("purge_scope", cfg.PurgeScope.String()),
		observe.F("session_cache_ttl", cfg.SessionCacheTTL.String()),
	)

	rdb, err := tokenstore.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()
	kv := tokenstore.NewRedisKV(rdb)
	store, err := tokenstore.New(kv,
		tokenstore.WithPurgeScope(cfg.PurgeScope),
		tokenstore.WithLogger(log.With(observe.F("component", "tokenstore"))),
	)
	if err != nil {
		return err
	}

	httpClient := observe.InstrumentClient(&http.Client{Timeout: cfg.HTTPTimeout})

	validator, err := auth.NewRemoteValidator(auth.ValidatorConfig{
		BaseURL:    cfg.BaseURL,
		HTTPClient: httpClient,
	})
	if err != nil {
		return err
	}

	sessions, err := registry.New(registry.Config{
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.RegistryAPIKey,
		HTTPClient: httpClient,
		Logger:     log.With(observe.F("component", "registry")),
	})
	if err != nil {
		return err
	}
	policy := cache.NoCachePolicy()
	if cfg.SessionCacheEnabled() {
		policy = cache.Policy{DefaultTTL: cfg.SessionCacheTTL, MaxTTL: cfg.SessionCacheTTL}
	}
	lookup := registry.NewCachedLookup(sessions, cache.NewRedisCache(rdb, "toolgate", policy), policy)

	recorder, err := usage.NewRecorder(usage.Config{
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.RegistryAPIKey,
		HTTPClient: httpClient,
		Guard:      resilience.New(withStateLog(ctx, log, resilience.DefaultConfig())),
		Logger:     log.With(observe.F("component", "usage")),
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := recorder.Close(sctx); err != nil {
			log.Warn(sctx, "usage recorder did not drain", observe.F("error", err))
		}
	}()

	g, err := gate.New(gate.Config{
		Store:     store,
		Validator: validator,
		Registry:  lookup,
		Usage:     recorder,
	}, gate.WithTelemetry(tel))
	if err != nil {
		return err
	}

	adm, err := admin.New(admin.Config{
		Sessions:    lookup,
		Credentials: store,
		Token:       cfg.AdminToken,
		Logger:      log.With(observe.F("component", "admin")),
	})
	if err != nil {
		return err
	}

	agg := health.NewAggregator()
	agg.Register(health.NewPingChecker("redis", kv, health.StatusDegraded))
	agg.Register(registry.NewChecker(sessions))

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)
	health.Mount(r, agg)
	r.Handle("/metrics", promhttp.Handler())
	r.Method(http.MethodPost, "/v1/decide", g.DecisionHandler())
	r.Mount("/admin", adm)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           otelhttp.NewHandler(r, "toolgate"),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info(ctx, "http server starting", observe.F("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info(ctx, "shutting down")
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

// withStateLog logs usage-sink circuit transitions.
func withStateLog(ctx context.Context, log observe.Logger, cfg resilience.Config) resilience.Config {
	cfg.OnStateChange = func(from, to resilience.State) {
		log.Warn(ctx, "usage sink circuit changed",
			observe.F("from", from.String()),
			observe.F("to", to.String()),
		)
	}
	return cfg
}
