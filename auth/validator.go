package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultValidatePath is the identity endpoint path appended to the base URL.
const DefaultValidatePath = "/auth/me"

// maxDrain bounds how much of a response body is read before closing.
const maxDrain = 64 << 10

// ErrMissingBaseURL indicates a validator was configured without a base URL.
var ErrMissingBaseURL = errors.New("auth: base url is required")

// Validator decides whether a credential is still accepted by the identity
// provider.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Context: Validate must honor cancellation/deadlines.
//   - Errors: (true, nil) is valid and (false, nil) is a confirmed rejection.
//     Any error means validity is unknown; callers must not treat it as a
//     rejection.
type Validator interface {
	Validate(ctx context.Context, token string) (bool, error)
}

// ValidatorConfig configures a RemoteValidator.
type ValidatorConfig struct {
	// BaseURL is the identity provider's API root.
	BaseURL string

	// Path is appended to BaseURL. Default: /auth/me
	Path string

	// Timeout bounds each shared validation request. Default: 10 seconds.
	Timeout time.Duration

	// HTTPClient overrides the client used for requests.
	HTTPClient *http.Client
}

// RemoteValidator validates a bearer token by asking the identity endpoint
// who it belongs to. It performs exactly one request per validation and
// never retries; concurrent validations of the same token share one request.
// The shared request is not tied to any single caller's cancellation.
type RemoteValidator struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
	group      singleflight.Group
}

// NewRemoteValidator creates a validator for GET {BaseURL}{Path}.
func NewRemoteValidator(cfg ValidatorConfig) (*RemoteValidator, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrMissingBaseURL
	}
	if cfg.Path == "" {
		cfg.Path = DefaultValidatePath
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	endpoint, err := url.JoinPath(cfg.BaseURL, cfg.Path)
	if err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &RemoteValidator{
		endpoint:   endpoint,
		httpClient: httpClient,
		timeout:    cfg.Timeout,
	}, nil
}

// Endpoint returns the URL validations are sent to.
func (v *RemoteValidator) Endpoint() string {
	return v.endpoint
}

// Validate classifies the endpoint's answer:
//
//	2xx          valid
//	401, 403     invalid
//	anything else unknown (*NetworkError, ErrIdentityUnavailable)
//	no response  unknown (*NetworkError)
//
// A caller whose ctx ends first gets an unknown result without affecting
// other callers waiting on the same token.
func (v *RemoteValidator) Validate(ctx context.Context, token string) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, ErrMissingCredentials
	}

	ch := v.group.DoChan(hashToken(token), func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), v.timeout)
		defer cancel()
		return v.validate(shared, token)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return false, res.Err
		}
		return res.Val.(bool), nil
	case <-ctx.Done():
		return false, &NetworkError{Op: "GET", URL: v.endpoint, Err: ctx.Err()}
	}
}

func (v *RemoteValidator) validate(ctx context.Context, token string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint, nil)
	if err != nil {
		return false, &NetworkError{Op: "GET", URL: v.endpoint, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false, &NetworkError{Op: "GET", URL: v.endpoint, Err: err}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))
		_ = resp.Body.Close()
	}()

	switch code := resp.StatusCode; {
	case code >= 200 && code < 300:
		return true, nil
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return false, nil
	default:
		return false, &NetworkError{Op: "GET", URL: v.endpoint, StatusCode: code, Err: ErrIdentityUnavailable}
	}
}

// hashToken keys in-flight validations without holding raw tokens as map keys.
func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// ExtractBearerToken returns the token from an Authorization header value.
func ExtractBearerToken(header string) (string, bool) {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	if token == "" {
		return "", false
	}
	return token, true
}

var _ Validator = (*RemoteValidator)(nil)
