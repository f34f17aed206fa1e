package auth

import "net/http"

// SessionIDHeader carries the transport's logical session id.
const SessionIDHeader = "Mcp-Session-Id"

// WithAuthHeaders is HTTP middleware that stores the request headers in the
// context so later stages can read the session header.
//
// Usage:
//
//	mux.Handle("/mcp", auth.WithAuthHeaders(handler))
func WithAuthHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithHeaders(r.Context(), r.Header)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionIDFromHeaders returns the transport session id, or "" when the
// header is absent. A missing id is never replaced with a generated one.
func SessionIDFromHeaders(h http.Header) string {
	return h.Get(SessionIDHeader)
}

// RequestIdentity returns the identity attached to r by an upstream
// authentication layer. When none is attached, an unauthenticated identity
// carrying only the transport session id is returned. A session id already
// set on the attached identity is kept.
func RequestIdentity(r *http.Request) Identity {
	var id Identity
	if attached := IdentityFromContext(r.Context()); attached != nil {
		id = attached.Clone()
	}
	if id.SessionID == "" {
		id.SessionID = SessionIDFromHeaders(r.Header)
	}
	return id
}
