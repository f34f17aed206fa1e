package gate

import (
	"context"
	"net/http"

	"github.com/jonwraymond/toolgate/auth"
	"github.com/jonwraymond/toolgate/observe"
	"github.com/jonwraymond/toolgate/usage"
)

// NoticeHeader carries the downgrade notice on HTTP responses.
const NoticeHeader = "X-Toolgate-Notice"

// ExecuteFunc runs one tool call.
type ExecuteFunc func(ctx context.Context, tool string, input any) (any, error)

type outcomeKey struct{}

// WithOutcome returns a new context carrying out.
func WithOutcome(ctx context.Context, out Outcome) context.Context {
	return context.WithValue(ctx, outcomeKey{}, out)
}

// OutcomeFromContext returns the outcome stored in ctx.
func OutcomeFromContext(ctx context.Context) (Outcome, bool) {
	out, ok := ctx.Value(outcomeKey{}).(Outcome)
	return out, ok
}

// NoticeFromContext returns the gate's notice for the caller, or "".
func NoticeFromContext(ctx context.Context) string {
	out, _ := OutcomeFromContext(ctx)
	return out.Notice
}

// IdentityFromContext returns a copy of the identity attached to ctx. When
// none is attached, or it lacks a session id, the session id is taken from
// the inbound headers stored by auth.WithAuthHeaders.
func IdentityFromContext(ctx context.Context) auth.Identity {
	var id auth.Identity
	if attached := auth.IdentityFromContext(ctx); attached != nil {
		id = attached.Clone()
	}
	if id.SessionID == "" {
		id.SessionID = auth.GetHeader(ctx, auth.SessionIDHeader)
	}
	return id
}

// Middleware runs the full gate around tool calls.
//
// Contract:
//   - Concurrency: Wrap returns a function safe for concurrent use.
//   - Errors: a rejected call returns *permission.DeniedError without
//     executing; errors from the wrapped function are returned unchanged.
//   - Usage recording never affects the return value.
type Middleware struct {
	gate *Gate
}

// NewMiddleware creates tool-call middleware for g.
func NewMiddleware(g *Gate) *Middleware {
	return &Middleware{gate: g}
}

// Wrap composes Check, Authorize, fn and a usage event.
func (m *Middleware) Wrap(fn ExecuteFunc) ExecuteFunc {
	g := m.gate
	return func(ctx context.Context, tool string, input any) (any, error) {
		out := g.Check(ctx, IdentityFromContext(ctx))
		out = g.Authorize(ctx, out, tool)

		id := out.Identity
		ctx = auth.WithIdentity(WithOutcome(ctx, out), &id)

		if err := out.Err(); err != nil {
			return nil, err
		}

		start := g.now()
		result, err := fn(ctx, tool, input)
		duration := g.now().Sub(start)

		ev := usage.Event{
			SessionID: id.SessionID,
			UserID:    id.UserID,
			ToolName:  tool,
			Params:    input,
			Result:    result,
			Duration:  duration,
			Timestamp: start,
		}
		if err != nil {
			ev.Error = err.Error()
			ev.Result = nil
		}
		g.usage.Record(ctx, ev)

		return result, err
	}
}

// HTTPMiddleware runs the credential path for each request and forwards
// the resulting identity. A downgraded request continues as
// unauthenticated with the notice in NoticeHeader.
func (g *Gate) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out := g.Check(r.Context(), auth.RequestIdentity(r))
		if out.State == Downgraded {
			w.Header().Set(NoticeHeader, out.Notice)
		}

		id := out.Identity
		ctx := auth.WithHeaders(r.Context(), r.Header)
		ctx = auth.WithIdentity(WithOutcome(ctx, out), &id)

		g.tel.Logger.Debug(ctx, "request checked",
			observe.F("request_id", out.RequestID),
			observe.F("state", out.State.String()),
		)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
