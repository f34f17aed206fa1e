package gate

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jonwraymond/toolgate/auth"
	"github.com/jonwraymond/toolgate/observe"
	"github.com/jonwraymond/toolgate/permission"
	"github.com/jonwraymond/toolgate/registry"
	"github.com/jonwraymond/toolgate/tokenstore"
	"github.com/jonwraymond/toolgate/usage"
)

// SessionSource is the part of the session registry the gate uses.
// *registry.Client and *registry.CachedLookup satisfy it.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Errors: failures are reported in the result value; methods never panic.
type SessionSource interface {
	Get(ctx context.Context, sessionID string) registry.SessionResult
	Register(ctx context.Context, sessionID, userID string, clientInfo map[string]any) registry.SessionResult
	Touch(ctx context.Context, sessionID string) registry.Result
}

var (
	_ SessionSource = (*registry.Client)(nil)
	_ SessionSource = (*registry.CachedLookup)(nil)
)

// Config wires the gate's collaborators.
type Config struct {
	// Store locates and purges credential records. Required.
	Store *tokenstore.Store

	// Validator checks credentials with the identity provider. Required.
	Validator auth.Validator

	// Registry supplies session records. Without one, Authorize allows
	// every operation.
	Registry SessionSource

	// Engine evaluates permission sets. Default: permission.NewEngine().
	Engine permission.Evaluator

	// Usage receives one event per executed tool call. Optional.
	Usage *usage.Recorder
}

// Option configures a Gate.
type Option func(*Gate)

// WithTelemetry sets tracer, metrics and logger together.
func WithTelemetry(t observe.Telemetry) Option {
	return func(g *Gate) {
		g.tel = t.WithDefaults()
	}
}

// WithLogger sets the logger.
func WithLogger(l observe.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.tel.Logger = l
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(t observe.Tracer) Option {
	return func(g *Gate) {
		if t != nil {
			g.tel.Tracer = t
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observe.Metrics) Option {
	return func(g *Gate) {
		if m != nil {
			g.tel.Metrics = m
		}
	}
}

// WithNow sets the clock used for cached-token expiry and durations.
func WithNow(now func() time.Time) Option {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// Gate is the request-time auth and session gate.
type Gate struct {
	store     *tokenstore.Store
	validator auth.Validator
	sessions  SessionSource
	engine    permission.Evaluator
	usage     *usage.Recorder

	tel observe.Telemetry
	now func() time.Time
}

// New creates a gate.
func New(cfg Config, opts ...Option) (*Gate, error) {
	if cfg.Store == nil {
		return nil, ErrMissingStore
	}
	if cfg.Validator == nil {
		return nil, ErrMissingValidator
	}
	if cfg.Engine == nil {
		cfg.Engine = permission.NewEngine()
	}

	g := &Gate{
		store:     cfg.Store,
		validator: cfg.Validator,
		sessions:  cfg.Registry,
		engine:    cfg.Engine,
		usage:     cfg.Usage,
		tel:       observe.NopTelemetry(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Check runs the credential path for id.
func (g *Gate) Check(ctx context.Context, id auth.Identity) Outcome {
	return g.check(ctx, id, nil)
}

// CheckCached is Check with a caller-held validation result. When cached is
// still valid and is for the stored token, the remote check is skipped.
func (g *Gate) CheckCached(ctx context.Context, id auth.Identity, cached auth.CachedToken) Outcome {
	return g.check(ctx, id, &cached)
}

func (g *Gate) check(ctx context.Context, id auth.Identity, cached *auth.CachedToken) (out Outcome) {
	start := g.now()
	out = Outcome{State: Unchecked, Identity: id, RequestID: uuid.NewString()}

	ctx, span := g.tel.Tracer.StartSpan(ctx, observe.StageMeta{
		Stage:     "check",
		SessionID: id.SessionID,
		UserID:    id.UserID,
	})
	defer func() {
		g.tel.Tracer.EndSpan(span, out.State.String(), out.Advisory)
		g.tel.Metrics.RecordCheck(ctx, out.State.String(), g.now().Sub(start))
	}()

	if id.Anonymous() {
		out.State = Authorized
		return out
	}
	log := g.tel.Logger.With(
		observe.F("request_id", out.RequestID),
		observe.F("session_id", id.SessionID),
		observe.F("user_id", id.UserID),
	)

	out.State = Identified
	rec, err := g.store.Find(ctx, id.UserID)
	if err != nil {
		if !errors.Is(err, tokenstore.ErrNotFound) {
			out.Advisory = err
			log.Warn(ctx, "credential lookup failed; continuing", observe.F("error", err))
		}
		out.State = Authorized
		return out
	}

	if cached != nil && cached.Valid(g.now()) && cached.Matches(rec.Token) {
		out.State = Authorized
		out.Identity = refreshed(id, rec)
		return out
	}

	valid, err := g.validate(ctx, rec.Token, id)
	out.State = Validated
	if err != nil {
		out.Advisory = err
		out.State = Authorized
		log.Warn(ctx, "credential check indeterminate; continuing", observe.F("error", err))
		return out
	}

	if !valid {
		n, err := g.purge(ctx, id)
		out.Purged = n
		if err != nil {
			out.Advisory = err
			log.Error(ctx, "credential purge failed", observe.F("error", err))
		}
		out.State = Downgraded
		out.Identity = id.Downgraded()
		out.Notice = NoticeExpired
		log.Info(ctx, "credential rejected; request downgraded", observe.F("purged", n))
		return out
	}

	out.State = Authorized
	out.Identity = refreshed(id, rec)
	return out
}

func (g *Gate) validate(ctx context.Context, token string, id auth.Identity) (bool, error) {
	ctx, span := g.tel.Tracer.StartSpan(ctx, observe.StageMeta{
		Stage:     "validate",
		SessionID: id.SessionID,
		UserID:    id.UserID,
	})
	valid, err := g.validator.Validate(ctx, token)
	state := "valid"
	switch {
	case err != nil:
		state = "unknown"
	case !valid:
		state = "invalid"
	}
	g.tel.Tracer.EndSpan(span, state, err)
	return valid, err
}

func (g *Gate) purge(ctx context.Context, id auth.Identity) (int, error) {
	ctx, span := g.tel.Tracer.StartSpan(ctx, observe.StageMeta{
		Stage:     "purge",
		SessionID: id.SessionID,
		UserID:    id.UserID,
	})
	n, err := g.store.DeleteAll(ctx, id.UserID)
	g.tel.Tracer.EndSpan(span, "", err)
	g.tel.Metrics.RecordPurge(ctx, n, err)
	return n, err
}

// refreshed copies the stored secondary credential into id.
func refreshed(id auth.Identity, rec *tokenstore.Record) auth.Identity {
	out := id.Clone()
	if rec.APIKey != "" {
		out.APIKey = rec.APIKey
	}
	if rec.LastRefreshed != nil {
		ts := *rec.LastRefreshed
		out.LastRefreshed = &ts
	}
	return out
}

// Authorize runs the session path for operation on an outcome produced by
// Check. Downgraded and rejected outcomes are returned unchanged. A request
// without a session id is allowed and no session is created for it.
func (g *Gate) Authorize(ctx context.Context, out Outcome, operation string) Outcome {
	if out.State == Downgraded || out.State == Rejected {
		return out
	}
	out.Operation = operation

	id := out.Identity
	if id.Anonymous() || !id.HasSession() || g.sessions == nil {
		return g.decide(ctx, out, nil)
	}

	ctx, span := g.tel.Tracer.StartSpan(ctx, observe.StageMeta{
		Stage:     "authorize",
		SessionID: id.SessionID,
		UserID:    id.UserID,
		Operation: operation,
	})
	defer func() {
		g.tel.Tracer.EndSpan(span, out.State.String(), out.Advisory)
	}()

	log := g.tel.Logger.With(
		observe.F("request_id", out.RequestID),
		observe.F("session_id", id.SessionID),
		observe.F("operation", operation),
	)

	res := g.sessions.Get(ctx, id.SessionID)
	var sess *registry.Session
	switch {
	case res.Success:
		sess = res.Session
		if touch := g.sessions.Touch(ctx, id.SessionID); !touch.Success {
			log.Debug(ctx, "session activity update failed", observe.F("error", touch.Error))
		}
	case res.NotFound():
		reg := g.sessions.Register(ctx, id.SessionID, id.UserID, id.ClientInfo)
		if !reg.Success {
			out.Advisory = reg.Err
			log.Warn(ctx, "session registration failed; continuing", observe.F("error", reg.Error))
			break
		}
		sess = reg.Session
	default:
		out.Advisory = res.Err
		log.Warn(ctx, "session registry unavailable; continuing", observe.F("error", res.Error))
	}

	out = g.decide(ctx, out, sess)
	if out.State == Rejected {
		log.Info(ctx, "operation denied", observe.F("reason", out.Decision.Reason))
	}
	return out
}

func (g *Gate) decide(ctx context.Context, out Outcome, sess *registry.Session) Outcome {
	d := permission.Allow()
	if sess != nil {
		d = g.engine.Evaluate(sess, out.Operation)
	}
	out.Decision = &d
	if d.Allowed {
		out.State = Authorized
	} else {
		out.State = Rejected
	}
	g.tel.Metrics.RecordAuthorize(ctx, d.Allowed)
	return out
}
