package auth

import (
	"maps"
	"time"
)

// Identity is the per-request authentication context the gate reads and
// may rewrite. SessionID is owned by the transport and survives a
// downgrade; every other credential field is cleared.
type Identity struct {
	// Authenticated reports whether an upstream layer authenticated the caller.
	Authenticated bool

	// SessionID is the transport-supplied logical session id. Never generated here.
	SessionID string

	// UserID identifies the caller in the identity provider.
	UserID string

	// AuthToken is the caller's bearer credential.
	AuthToken string

	// APIKey is the secondary credential stored alongside the token.
	APIKey string

	// LastRefreshed is when the stored credential was last refreshed.
	LastRefreshed *time.Time

	// ClientInfo is client metadata forwarded to the session registry.
	ClientInfo map[string]any
}

// Anonymous reports whether the gate has nothing to check for this identity.
func (id Identity) Anonymous() bool {
	return !id.Authenticated || id.UserID == ""
}

// HasSession reports whether the transport supplied a session id.
func (id Identity) HasSession() bool {
	return id.SessionID != ""
}

// Clone returns a deep copy.
func (id Identity) Clone() Identity {
	out := id
	if id.LastRefreshed != nil {
		ts := *id.LastRefreshed
		out.LastRefreshed = &ts
	}
	if id.ClientInfo != nil {
		out.ClientInfo = maps.Clone(id.ClientInfo)
	}
	return out
}

// Downgraded returns the unauthenticated form of id: every credential
// field is cleared and only the session id is kept.
func (id Identity) Downgraded() Identity {
	return Identity{SessionID: id.SessionID}
}
