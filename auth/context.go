package auth

import (
	"context"
	"net/http"
)

type contextKey int

const (
	identityKey contextKey = iota
	headersKey
)

// WithIdentity returns a new context carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity in ctx, or nil.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}

// UserIDFromContext returns the user id of the identity in ctx, or "".
func UserIDFromContext(ctx context.Context) string {
	if id := IdentityFromContext(ctx); id != nil {
		return id.UserID
	}
	return ""
}

// SessionIDFromContext returns the session id of the identity in ctx, or "".
func SessionIDFromContext(ctx context.Context) string {
	if id := IdentityFromContext(ctx); id != nil {
		return id.SessionID
	}
	return ""
}

// WithHeaders returns a new context carrying the inbound request headers.
func WithHeaders(ctx context.Context, headers http.Header) context.Context {
	return context.WithValue(ctx, headersKey, headers)
}

// HeadersFromContext returns the headers in ctx, or nil.
func HeadersFromContext(ctx context.Context) http.Header {
	h, _ := ctx.Value(headersKey).(http.Header)
	return h
}

// GetHeader returns the first value of a header stored in ctx.
// Lookup is case-insensitive.
func GetHeader(ctx context.Context, key string) string {
	return HeadersFromContext(ctx).Get(key)
}
