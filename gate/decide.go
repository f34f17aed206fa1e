package gate

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/jonwraymond/toolgate/auth"
)

// DecisionRequest is the body of a decision call. SessionID falls back to
// the Mcp-Session-Id header.
type DecisionRequest struct {
	Authenticated bool           `json:"authenticated"`
	UserID        string         `json:"user_id"`
	SessionID     string         `json:"session_id"`
	AuthToken     string         `json:"auth_token,omitempty"`
	ClientInfo    map[string]any `json:"client_info,omitempty"`

	// Operation is the tool being invoked. When empty only the credential
	// path runs.
	Operation string `json:"operation,omitempty"`
}

// DecisionIdentity is the identity the caller should continue with.
type DecisionIdentity struct {
	Authenticated bool       `json:"authenticated"`
	UserID        string     `json:"user_id,omitempty"`
	SessionID     string     `json:"session_id,omitempty"`
	APIKey        string     `json:"api_key,omitempty"`
	LastRefreshed *time.Time `json:"last_refreshed,omitempty"`
}

// DecisionResponse reports the gate's outcome.
type DecisionResponse struct {
	State     string           `json:"state"`
	Allowed   bool             `json:"allowed"`
	Notice    string           `json:"notice,omitempty"`
	Reason    string           `json:"reason,omitempty"`
	RequestID string           `json:"request_id"`
	Identity  DecisionIdentity `json:"identity"`
}

// DecisionHandler answers gate decisions for a proxy that executes the tool
// call itself. Rejected calls are answered 403 with the denial reason;
// every other outcome is 200, with NoticeHeader set on downgrade.
func (g *Gate) DecisionHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req DecisionRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil {
			writeDecisionError(w, http.StatusBadRequest, "invalid decision request")
			return
		}
		if req.SessionID == "" {
			req.SessionID = auth.SessionIDFromHeaders(r.Header)
		}

		ctx := r.Context()
		out := g.Check(ctx, auth.Identity{
			Authenticated: req.Authenticated,
			SessionID:     req.SessionID,
			UserID:        req.UserID,
			AuthToken:     req.AuthToken,
			ClientInfo:    req.ClientInfo,
		})
		if req.Operation != "" {
			out = g.Authorize(ctx, out, req.Operation)
		}

		resp := DecisionResponse{
			State:     out.State.String(),
			Allowed:   out.Allowed(),
			Notice:    out.Notice,
			RequestID: out.RequestID,
			Identity: DecisionIdentity{
				Authenticated: out.Identity.Authenticated,
				UserID:        out.Identity.UserID,
				SessionID:     out.Identity.SessionID,
				APIKey:        out.Identity.APIKey,
				LastRefreshed: out.Identity.LastRefreshed,
			},
		}
		if out.Decision != nil {
			resp.Reason = out.Decision.Reason
		}

		code := http.StatusOK
		if !resp.Allowed {
			code = http.StatusForbidden
		}
		if out.State == Downgraded {
			w.Header().Set(NoticeHeader, out.Notice)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	})
}

func writeDecisionError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
