package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonwraymond/toolgate/observe"
	"github.com/jonwraymond/toolgate/permission"
)

// maxBody bounds how much of a response is read.
const maxBody = 4 << 20

// Paths on the registry backend.
const (
	SessionsPath = "/mcp_sessions"
	RevokePath   = "/sessions/revoke"
)

// Config configures a Client.
type Config struct {
	// BaseURL is the registry API root.
	BaseURL string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// Timeout bounds each request when HTTPClient is nil.
	// Default: 10 seconds.
	Timeout time.Duration

	// HTTPClient overrides the client used for requests.
	HTTPClient *http.Client

	// Logger receives failure details. Default: no-op.
	Logger observe.Logger

	// Now returns the timestamps written to records. Default: time.Now.
	Now func() time.Time
}

// Client talks to the session registry. It is safe for concurrent use and
// holds no per-session state.
type Client struct {
	base       string
	apiKey     string
	httpClient *http.Client
	logger     observe.Logger
	now        func() time.Time
}

// New creates a registry client.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, ErrMissingBaseURL
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("registry: invalid base url: %w", err)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Client{
		base:       base,
		apiKey:     cfg.APIKey,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
		now:        cfg.Now,
	}, nil
}

// Register creates an active session record for sessionID owned by userID.
func (c *Client) Register(ctx context.Context, sessionID, userID string, clientInfo map[string]any) SessionResult {
	if sessionID == "" {
		return SessionResult{Result: fail(ErrNoSession)}
	}
	if userID == "" {
		return SessionResult{Result: fail(ErrMissingUserID)}
	}
	if clientInfo == nil {
		clientInfo = map[string]any{}
	}

	now := c.timestamp()
	body := map[string]any{
		"session_id":  sessionID,
		"user_id":     userIDValue(userID),
		"client_info": clientInfo,
		"status":      StatusActive,
		"enabled":     true,
		"created_at":  now,
		"updated_at":  now,
	}

	var raw json.RawMessage
	res := c.do(ctx, http.MethodPost, SessionsPath, body, &raw)
	if !res.Success {
		return SessionResult{Result: res}
	}

	// The echoed record is informational; a body that is not a session
	// object does not undo a successful create.
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil || sess.SessionID == "" {
		sess = Session{
			SessionID:  sessionID,
			UserID:     userID,
			Enabled:    true,
			Status:     StatusActive,
			ClientInfo: clientInfo,
		}
	}
	c.logger.Info(ctx, "registered session",
		observe.F("session_id", sessionID),
		observe.F("user_id", userID),
	)
	return SessionResult{Result: res, Session: &sess}
}

// Touch bumps the record's last-activity time.
func (c *Client) Touch(ctx context.Context, sessionID string) Result {
	now := c.timestamp()
	return c.update(ctx, sessionID, map[string]any{
		"last_active": now,
		"updated_at":  now,
	})
}

// SetEnabled enables or disables a session.
func (c *Client) SetEnabled(ctx context.Context, sessionID string, enabled bool) Result {
	res := c.update(ctx, sessionID, map[string]any{
		"enabled":    enabled,
		"status":     StatusFor(enabled),
		"updated_at": c.timestamp(),
	})
	if res.Success {
		c.logger.Info(ctx, "session enabled flag changed",
			observe.F("session_id", sessionID),
			observe.F("enabled", enabled),
		)
	}
	return res
}

// SetPermissions replaces the session's permission set wholesale. A nil set
// clears the permissions, allowing every operation while enabled.
func (c *Client) SetPermissions(ctx context.Context, sessionID string, set *permission.Set) Result {
	if err := set.Validate(); err != nil {
		return fail(err)
	}
	return c.update(ctx, sessionID, map[string]any{
		"permissions": set,
		"updated_at":  c.timestamp(),
	})
}

func (c *Client) update(ctx context.Context, sessionID string, body map[string]any) Result {
	if sessionID == "" {
		return fail(ErrNoSession)
	}
	return c.do(ctx, http.MethodPut, sessionPath(sessionID), body, nil)
}

// Get fetches one session record.
func (c *Client) Get(ctx context.Context, sessionID string) SessionResult {
	if sessionID == "" {
		return SessionResult{Result: fail(ErrNoSession)}
	}
	var raw json.RawMessage
	res := c.do(ctx, http.MethodGet, sessionPath(sessionID), nil, &raw)
	if !res.Success {
		return SessionResult{Result: res}
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || string(trimmed) == "null" {
		return SessionResult{Result: fail(ErrSessionNotFound)}
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return SessionResult{Result: fail(fmt.Errorf("%w: %v", ErrInvalidResponse, err))}
	}
	if sess.SessionID == "" {
		sess.SessionID = sessionID
	}
	return SessionResult{Result: res, Session: &sess}
}

// ListActive returns every session whose status is active.
func (c *Client) ListActive(ctx context.Context) ListResult {
	var raw json.RawMessage
	res := c.do(ctx, http.MethodGet, SessionsPath+"?status="+string(StatusActive), nil, &raw)
	if !res.Success {
		return ListResult{Result: res}
	}
	sessions, err := decodeList(raw)
	if err != nil {
		return ListResult{Result: fail(fmt.Errorf("%w: %v", ErrInvalidResponse, err))}
	}
	return ListResult{Result: res, Sessions: sessions}
}

// decodeList accepts a bare array or a paginated {"items": [...]} envelope.
func decodeList(raw json.RawMessage) ([]Session, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return []Session{}, nil
	}
	var sessions []Session
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &sessions); err != nil {
			return nil, err
		}
	} else {
		var env struct {
			Items []Session `json:"items"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, err
		}
		sessions = env.Items
	}
	if sessions == nil {
		sessions = []Session{}
	}
	return sessions, nil
}

// RevokeAllForUser disables every session owned by userID.
func (c *Client) RevokeAllForUser(ctx context.Context, userID string) RevokeResult {
	if userID == "" {
		return RevokeResult{Result: fail(ErrMissingUserID), SessionIDs: []string{}}
	}

	var out struct {
		RevokedCount    *int     `json:"revoked_count"`
		RevokedCountAlt *int     `json:"revokedCount"`
		SessionIDs      []string `json:"session_ids"`
		SessionIDsAlt   []string `json:"sessionIds"`
	}
	res := c.do(ctx, http.MethodPost, RevokePath, map[string]any{
		"user_id":    userIDValue(userID),
		"revoke_all": true,
	}, &out)
	if !res.Success {
		return RevokeResult{Result: res, SessionIDs: []string{}}
	}

	ids := out.SessionIDs
	if ids == nil {
		ids = out.SessionIDsAlt
	}
	if ids == nil {
		ids = []string{}
	}
	count := len(ids)
	switch {
	case out.RevokedCount != nil:
		count = *out.RevokedCount
	case out.RevokedCountAlt != nil:
		count = *out.RevokedCountAlt
	}

	c.logger.Info(ctx, "revoked user sessions",
		observe.F("user_id", userID),
		observe.F("revoked", count),
	)
	return RevokeResult{Result: res, RevokedCount: count, SessionIDs: ids}
}

// Ping issues a cheap authenticated read to confirm the registry answers.
func (c *Client) Ping(ctx context.Context) error {
	res := c.do(ctx, http.MethodGet, SessionsPath+"?status="+string(StatusActive)+"&per_page=1", nil, nil)
	return res.Err
}

// do performs one request. out, when non-nil, receives the decoded body of
// a success response; an empty body leaves it untouched.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) Result {
	endpoint := c.base + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fail(fmt.Errorf("%w: encode %s %s: %v", ErrRequestFailed, method, path, err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fail(fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "registry unreachable",
			observe.F("method", method),
			observe.F("path", path),
			observe.F("error", err),
		)
		return fail(fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err))
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fail(fmt.Errorf("%w: read %s %s: %v", ErrNetwork, method, path, err))
	}

	switch {
	case resp.StatusCode == http.StatusNotFound && strings.HasPrefix(path, SessionsPath+"/"):
		return fail(ErrSessionNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.logger.Warn(ctx, "registry request failed",
			observe.F("method", method),
			observe.F("path", path),
			observe.F("status", resp.StatusCode),
		)
		return fail(fmt.Errorf("%w: %s %s: status %d%s", ErrRequestFailed, method, path, resp.StatusCode, detail(data)))
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fail(fmt.Errorf("%w: %s %s: %v", ErrInvalidResponse, method, path, err))
		}
	}
	return ok()
}

// detail extracts a short message from an error body.
func detail(body []byte) string {
	var e struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil {
		if e.Message != "" {
			return ": " + e.Message
		}
		if e.Error != "" {
			return ": " + e.Error
		}
	}
	return ""
}

func (c *Client) timestamp() string {
	return c.now().UTC().Format(time.RFC3339Nano)
}

func sessionPath(sessionID string) string {
	return SessionsPath + "/" + url.PathEscape(sessionID)
}
