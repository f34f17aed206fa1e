package usage

import (
	"encoding/json"
	"time"
)

// Event describes one tool invocation.
type Event struct {
	SessionID string
	UserID    string
	ToolName  string
	Params    any
	Result    any
	Error     string
	Duration  time.Duration
	Timestamp time.Time
}

// MarshalJSON encodes the event in the sink's snake_case shape with the
// duration in milliseconds.
func (e Event) MarshalJSON() ([]byte, error) {
	out := struct {
		SessionID string `json:"session_id"`
		UserID    string `json:"user_id"`
		ToolName  string `json:"tool_name"`
		Params    any    `json:"params"`
		Result    any    `json:"result"`
		Error     string `json:"error,omitempty"`
		Duration  int64  `json:"duration"`
		Timestamp string `json:"timestamp"`
	}{
		SessionID: e.SessionID,
		UserID:    e.UserID,
		ToolName:  e.ToolName,
		Params:    e.Params,
		Result:    e.Result,
		Error:     e.Error,
		Duration:  e.Duration.Milliseconds(),
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	return json.Marshal(out)
}
