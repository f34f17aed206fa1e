package registry

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/jonwraymond/toolgate/permission"
)

// Status is the lifecycle status of a session record.
type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

// StatusFor returns the status matching an enabled flag.
func StatusFor(enabled bool) Status {
	if enabled {
		return StatusActive
	}
	return StatusDisabled
}

// Session is a registry record. SessionID originates from the transport and
// is never generated locally.
type Session struct {
	SessionID     string          `json:"session_id"`
	UserID        string          `json:"user_id"`
	Enabled       bool            `json:"enabled"`
	Status        Status          `json:"status"`
	Permissions   *permission.Set `json:"permissions,omitempty"`
	ClientInfo    map[string]any  `json:"client_info,omitempty"`
	LastActive    time.Time       `json:"last_active,omitzero"`
	ToolCallCount int             `json:"tool_call_count"`
	CreatedAt     time.Time       `json:"created_at,omitzero"`
	UpdatedAt     time.Time       `json:"updated_at,omitzero"`
}

// IsEnabled implements permission.Target.
func (s *Session) IsEnabled() bool {
	return s != nil && s.Enabled
}

// PermissionSet implements permission.Target.
func (s *Session) PermissionSet() *permission.Set {
	if s == nil {
		return nil
	}
	return s.Permissions
}

var _ permission.Target = (*Session)(nil)

// wireSession tolerates the shapes the registry backend has produced:
// numeric ids, epoch-millisecond timestamps, camelCase keys and records
// that omit the enabled flag.
type wireSession struct {
	SessionID     json.RawMessage `json:"session_id"`
	SessionIDAlt  json.RawMessage `json:"sessionId"`
	UserID        json.RawMessage `json:"user_id"`
	UserIDAlt     json.RawMessage `json:"userId"`
	Enabled       *bool           `json:"enabled"`
	Status        Status          `json:"status"`
	Permissions   *permission.Set `json:"permissions"`
	ClientInfo    map[string]any  `json:"client_info"`
	LastActive    json.RawMessage `json:"last_active"`
	ToolCallCount json.Number     `json:"tool_call_count"`
	CreatedAt     json.RawMessage `json:"created_at"`
	UpdatedAt     json.RawMessage `json:"updated_at"`
}

// UnmarshalJSON decodes a registry record. A record without an enabled
// flag is enabled unless its status says otherwise.
func (s *Session) UnmarshalJSON(data []byte) error {
	var w wireSession
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*s = Session{
		SessionID:   firstString(w.SessionID, w.SessionIDAlt),
		UserID:      firstString(w.UserID, w.UserIDAlt),
		Status:      w.Status,
		Permissions: w.Permissions,
		ClientInfo:  w.ClientInfo,
		LastActive:  parseTime(w.LastActive),
		CreatedAt:   parseTime(w.CreatedAt),
		UpdatedAt:   parseTime(w.UpdatedAt),
	}
	if w.Enabled != nil {
		s.Enabled = *w.Enabled
	} else {
		s.Enabled = w.Status != StatusDisabled
	}
	if s.Status == "" {
		s.Status = StatusFor(s.Enabled)
	}
	if n, err := w.ToolCallCount.Int64(); err == nil {
		s.ToolCallCount = int(n)
	}
	return nil
}

func firstString(raws ...json.RawMessage) string {
	for _, raw := range raws {
		if v := rawString(raw); v != "" {
			return v
		}
	}
	return ""
}

// rawString reads a JSON string or number as text.
func rawString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// parseTime accepts RFC 3339 strings and epoch milliseconds.
func parseTime(raw json.RawMessage) time.Time {
	v := rawString(raw)
	if v == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	return time.Time{}
}

// userIDValue sends numeric user ids as numbers, which is what the
// registry stores them as.
func userIDValue(userID string) any {
	if userID == "" || strings.TrimLeft(userID, "0123456789") != "" {
		return userID
	}
	if n, err := strconv.ParseInt(userID, 10, 64); err == nil && strconv.FormatInt(n, 10) == userID {
		return n
	}
	return userID
}
