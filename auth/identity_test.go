package auth

import (
	"testing"
	"time"
)

func TestIdentity_Anonymous(t *testing.T) {
	tests := []struct {
		name string
		id   Identity
		want bool
	}{
		{"zero", Identity{}, true},
		{"unauthenticated with user", Identity{UserID: "42"}, true},
		{"authenticated without user", Identity{Authenticated: true}, true},
		{"authenticated user", Identity{Authenticated: true, UserID: "42"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.Anonymous(); got != tt.want {
				t.Errorf("Anonymous() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIdentity_HasSession(t *testing.T) {
	if (Identity{}).HasSession() {
		t.Error("zero identity has no session")
	}
	if !(Identity{SessionID: "s"}).HasSession() {
		t.Error("expected session")
	}
}

func TestIdentity_Clone(t *testing.T) {
	ts := time.Now()
	orig := Identity{
		Authenticated: true,
		UserID:        "42",
		LastRefreshed: &ts,
		ClientInfo:    map[string]any{"name": "cli"},
	}

	c := orig.Clone()
	*c.LastRefreshed = ts.Add(time.Hour)
	c.ClientInfo["name"] = "other"

	if !orig.LastRefreshed.Equal(ts) {
		t.Error("Clone shares LastRefreshed")
	}
	if orig.ClientInfo["name"] != "cli" {
		t.Error("Clone shares ClientInfo")
	}
}

func TestIdentity_Downgraded(t *testing.T) {
	ts := time.Now()
	id := Identity{
		Authenticated: true,
		SessionID:     "sess-1",
		UserID:        "42",
		AuthToken:     "tok",
		APIKey:        "key",
		LastRefreshed: &ts,
		ClientInfo:    map[string]any{"name": "cli"},
	}

	d := id.Downgraded()
	if d.Authenticated || d.UserID != "" || d.AuthToken != "" || d.APIKey != "" || d.LastRefreshed != nil || d.ClientInfo != nil {
		t.Errorf("credential fields survived downgrade: %+v", d)
	}
	if d.SessionID != "sess-1" {
		t.Errorf("session id must survive downgrade, got %q", d.SessionID)
	}
	if !id.Authenticated || id.AuthToken != "tok" {
		t.Error("Downgraded must not modify the receiver")
	}
}
