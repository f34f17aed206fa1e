package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jonwraymond/toolgate/observe"
	"github.com/jonwraymond/toolgate/secret"
	"github.com/jonwraymond/toolgate/tokenstore"
)

var (
	// ErrMissingBaseURL indicates TOOLGATE_BASE_URL is unset or empty.
	ErrMissingBaseURL = errors.New("config: TOOLGATE_BASE_URL is required")

	// ErrMissingAdminToken indicates the admin API would be reachable beyond
	// loopback without TOOLGATE_ADMIN_TOKEN.
	ErrMissingAdminToken = errors.New("config: TOOLGATE_ADMIN_TOKEN is required when TOOLGATE_LISTEN_ADDR is not loopback")
)

// ServiceName names the process in telemetry.
const ServiceName = "toolgate"

// Config holds the process configuration.
type Config struct {
	// BaseURL is the backend API root shared by the identity endpoint,
	// the session registry and the usage sink.
	BaseURL        string
	RegistryAPIKey string
	HTTPTimeout    time.Duration

	ListenAddr string
	AdminToken string

	PurgeScope      tokenstore.PurgeScope
	SessionCacheTTL time.Duration

	LogLevel        string
	TracingExporter string
	MetricsExporter string

	Redis tokenstore.RedisOptions
}

// Load reads the configuration from the environment.
// Required: TOOLGATE_BASE_URL.
// Optional variables with defaults: TOOLGATE_HTTP_TIMEOUT (10s),
// TOOLGATE_LISTEN_ADDR (127.0.0.1:8090), TOOLGATE_PURGE_SCOPE (all),
// TOOLGATE_SESSION_CACHE_TTL (0, off), TOOLGATE_LOG_LEVEL (info),
// TOOLGATE_TRACING_EXPORTER (none), TOOLGATE_METRICS_EXPORTER (prometheus),
// REDIS_ADDR (localhost:6379), REDIS_DB (0), REDIS_TLS (false).
// TOOLGATE_ADMIN_TOKEN may be empty only on a loopback listen address.
func Load(ctx context.Context) (*Config, error) {
	res, err := secret.DefaultRegistry.NewResolver(map[string]map[string]any{
		"file": {"dir": os.Getenv("TOOLGATE_SECRETS_DIR")},
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Close() }()

	l := loader{ctx: ctx, res: res}
	cfg := &Config{
		BaseURL:         strings.TrimRight(l.str("TOOLGATE_BASE_URL", ""), "/"),
		RegistryAPIKey:  l.str("TOOLGATE_REGISTRY_API_KEY", ""),
		HTTPTimeout:     l.duration("TOOLGATE_HTTP_TIMEOUT", 10*time.Second),
		ListenAddr:      l.str("TOOLGATE_LISTEN_ADDR", "127.0.0.1:8090"),
		AdminToken:      l.str("TOOLGATE_ADMIN_TOKEN", ""),
		SessionCacheTTL: l.duration("TOOLGATE_SESSION_CACHE_TTL", 0),
		LogLevel:        strings.ToLower(l.str("TOOLGATE_LOG_LEVEL", "info")),
		TracingExporter: l.str("TOOLGATE_TRACING_EXPORTER", "none"),
		MetricsExporter: l.str("TOOLGATE_METRICS_EXPORTER", "prometheus"),
		Redis: tokenstore.RedisOptions{
			Addr:     l.str("REDIS_ADDR", "localhost:6379"),
			Password: l.str("REDIS_PASSWORD", ""),
			DB:       l.integer("REDIS_DB", 0),
			TLS:      l.boolean("REDIS_TLS", false),
		},
	}
	if v := l.str("TOOLGATE_PURGE_SCOPE", ""); v != "" {
		scope, err := tokenstore.ParsePurgeScope(v)
		if err != nil {
			l.fail("TOOLGATE_PURGE_SCOPE", err)
		}
		cfg.PurgeScope = scope
	}

	if l.err != nil {
		return nil, l.err
	}
	if cfg.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if cfg.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("config: TOOLGATE_HTTP_TIMEOUT must be positive, got %s", cfg.HTTPTimeout)
	}
	loopback, err := isLoopback(cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("config: TOOLGATE_LISTEN_ADDR: %w", err)
	}
	if cfg.AdminToken == "" && !loopback {
		return nil, ErrMissingAdminToken
	}
	if cfg.SessionCacheTTL < 0 {
		return nil, fmt.Errorf("config: TOOLGATE_SESSION_CACHE_TTL must not be negative, got %s", cfg.SessionCacheTTL)
	}
	obs := cfg.Observe("")
	if err := obs.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Observe returns the telemetry configuration.
func (c *Config) Observe(version string) observe.Config {
	return observe.Config{
		ServiceName: ServiceName,
		Version:     version,
		Tracing: observe.TracingConfig{
			Enabled:   c.TracingExporter != "none",
			Exporter:  c.TracingExporter,
			SamplePct: 1.0,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.MetricsExporter != "none",
			Exporter: c.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   c.LogLevel,
		},
	}
}

// SessionCacheEnabled reports whether registry reads are cached.
func (c *Config) SessionCacheEnabled() bool {
	return c.SessionCacheTTL > 0
}

// isLoopback reports whether addr binds only loopback interfaces. An empty
// host binds every interface.
func isLoopback(addr string) (bool, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false, err
	}
	if strings.EqualFold(host, "localhost") {
		return true, nil
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return false, nil
	}
	return ip.IsLoopback(), nil
}

// loader reads variables and keeps the first error.
type loader struct {
	ctx context.Context
	res *secret.Resolver
	err error
}

func (l *loader) fail(name string, err error) {
	if l.err == nil {
		l.err = fmt.Errorf("config: %s: %w", name, err)
	}
}

func (l *loader) str(name, def string) string {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	resolved, err := l.res.ResolveValue(l.ctx, strings.TrimSpace(v))
	if err != nil {
		l.fail(name, err)
		return def
	}
	return resolved
}

func (l *loader) duration(name string, def time.Duration) time.Duration {
	v := l.str(name, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		l.fail(name, fmt.Errorf("invalid duration %q: %w", v, err))
		return def
	}
	return d
}

func (l *loader) integer(name string, def int) int {
	v := l.str(name, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		l.fail(name, fmt.Errorf("invalid integer %q: %w", v, err))
		return def
	}
	return n
}

func (l *loader) boolean(name string, def bool) bool {
	v := l.str(name, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		l.fail(name, fmt.Errorf("invalid boolean %q: %w", v, err))
		return def
	}
	return b
}
