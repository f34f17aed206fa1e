package usage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jonwraymond/toolgate/observe"
	"github.com/jonwraymond/toolgate/resilience"
)

// DefaultPath is the sink endpoint appended to the base URL.
const DefaultPath = "/usage_logs"

// Config configures a Recorder.
type Config struct {
	// BaseURL is the sink's API root.
	BaseURL string

	// Path is appended to BaseURL. Default: /usage_logs
	Path string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// HTTPClient overrides the client used for requests.
	// Default: a client with a 10 second timeout.
	HTTPClient *http.Client

	// Guard bounds sends. Default: resilience.New(resilience.DefaultConfig()).
	Guard *resilience.Guard

	// ErrorBuffer is the capacity of the Errors channel. Default: 64.
	ErrorBuffer int

	// Logger receives send failures. Default: no-op.
	Logger observe.Logger

	// Now stamps events recorded without a timestamp. Default: time.Now.
	Now func() time.Time
}

// Recorder sends usage events in the background. A nil *Recorder discards
// every event.
type Recorder struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	guard      *resilience.Guard
	logger     observe.Logger
	now        func() time.Time

	errs chan error

	mu       sync.RWMutex
	closed   bool
	inflight sync.WaitGroup
}

// NewRecorder creates a recorder posting to {BaseURL}{Path}.
func NewRecorder(cfg Config) (*Recorder, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrMissingBaseURL
	}
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	endpoint, err := url.JoinPath(cfg.BaseURL, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("usage: invalid base url: %w", err)
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.Guard == nil {
		cfg.Guard = resilience.New(resilience.DefaultConfig())
	}
	if cfg.ErrorBuffer <= 0 {
		cfg.ErrorBuffer = 64
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Recorder{
		endpoint:   endpoint,
		apiKey:     cfg.APIKey,
		httpClient: cfg.HTTPClient,
		guard:      cfg.Guard,
		logger:     cfg.Logger,
		now:        cfg.Now,
		errs:       make(chan error, cfg.ErrorBuffer),
	}, nil
}

// Record schedules ev for delivery and returns immediately. The send
// outlives ctx's cancellation but keeps its values.
func (r *Recorder) Record(ctx context.Context, ev Event) {
	if r == nil {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = r.now()
	}

	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		r.logger.Debug(ctx, "usage event dropped after close", observe.F("tool", ev.ToolName))
		return
	}
	r.inflight.Add(1)
	r.mu.RUnlock()

	detached := context.WithoutCancel(ctx)
	go func() {
		defer r.inflight.Done()
		if err := r.guard.Do(detached, func(ctx context.Context) error {
			return r.send(ctx, ev)
		}); err != nil {
			r.report(detached, ev, err)
		}
	}()
}

func (r *Recorder) send(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("usage: encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("usage: post %s: %w", r.endpoint, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrSinkRejected, resp.StatusCode)
	}
	return nil
}

// report logs err and offers it on Errors without blocking.
func (r *Recorder) report(ctx context.Context, ev Event, err error) {
	fields := []observe.Field{
		observe.F("tool", ev.ToolName),
		observe.F("session_id", ev.SessionID),
		observe.F("error", err),
	}
	if resilience.IsShed(err) {
		r.logger.Debug(ctx, "usage event shed", fields...)
	} else {
		r.logger.Warn(ctx, "usage event not recorded", fields...)
	}

	select {
	case r.errs <- err:
	default:
	}
}

// Errors returns delivery failures. It is buffered and lossy; nothing is
// required to read it. The channel is closed by Close.
func (r *Recorder) Errors() <-chan error {
	return r.errs
}

// Close stops accepting events and waits for in-flight sends or ctx.
func (r *Recorder) Close(ctx context.Context) error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.inflight.Wait()
		close(r.errs)
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
