package auth

import (
	"context"
	"net/http"
	"testing"
)

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	if IdentityFromContext(ctx) != nil {
		t.Fatal("expected nil identity in empty context")
	}
	if UserIDFromContext(ctx) != "" || SessionIDFromContext(ctx) != "" {
		t.Fatal("expected empty ids in empty context")
	}

	id := &Identity{Authenticated: true, UserID: "42", SessionID: "s"}
	ctx = WithIdentity(ctx, id)

	if got := IdentityFromContext(ctx); got != id {
		t.Errorf("IdentityFromContext = %v, want %v", got, id)
	}
	if UserIDFromContext(ctx) != "42" {
		t.Errorf("UserIDFromContext = %q", UserIDFromContext(ctx))
	}
	if SessionIDFromContext(ctx) != "s" {
		t.Errorf("SessionIDFromContext = %q", SessionIDFromContext(ctx))
	}
}

func TestHeadersContext(t *testing.T) {
	ctx := context.Background()
	if HeadersFromContext(ctx) != nil {
		t.Fatal("expected nil headers")
	}
	if GetHeader(ctx, "X-Anything") != "" {
		t.Fatal("expected empty header from empty context")
	}

	h := http.Header{}
	h.Add("X-Multi", "first")
	h.Add("X-Multi", "second")
	ctx = WithHeaders(ctx, h)

	if got := GetHeader(ctx, "x-multi"); got != "first" {
		t.Errorf("GetHeader = %q, want first", got)
	}
}
