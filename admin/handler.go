package admin

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/jonwraymond/toolgate/auth"
	"github.com/jonwraymond/toolgate/observe"
	"github.com/jonwraymond/toolgate/permission"
	"github.com/jonwraymond/toolgate/registry"
	"github.com/jonwraymond/toolgate/tokenstore"
)

// maxBody bounds request bodies.
const maxBody = 64 << 10

// Sessions is the registry surface the admin routes drive.
// *registry.Client and *registry.CachedLookup satisfy it.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Errors: failures are reported in the result value.
type Sessions interface {
	Get(ctx context.Context, sessionID string) registry.SessionResult
	ListActive(ctx context.Context) registry.ListResult
	SetEnabled(ctx context.Context, sessionID string, enabled bool) registry.Result
	SetPermissions(ctx context.Context, sessionID string, set *permission.Set) registry.Result
	RevokeAllForUser(ctx context.Context, userID string) registry.RevokeResult
}

var (
	_ Sessions = (*registry.Client)(nil)
	_ Sessions = (*registry.CachedLookup)(nil)
)

// Config wires the admin routes.
type Config struct {
	// Sessions is required.
	Sessions Sessions

	// Credentials enables DELETE /users/{id}/credentials. Optional.
	Credentials *tokenstore.Store

	// Token, when set, is required as a bearer token on every route.
	Token string

	// Logger records operator actions. Default: no-op.
	Logger observe.Logger
}

// Handler serves the admin routes.
type Handler struct {
	sessions    Sessions
	credentials *tokenstore.Store
	token       string
	logger      observe.Logger
	router      chi.Router
}

// New creates the admin handler.
func New(cfg Config) (*Handler, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("admin: sessions is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	h := &Handler{
		sessions:    cfg.Sessions,
		credentials: cfg.Credentials,
		token:       cfg.Token,
		logger:      cfg.Logger,
	}

	r := chi.NewRouter()
	r.Use(h.requireToken)
	r.Get("/sessions", h.listSessions)
	r.Get("/sessions/{id}", h.getSession)
	r.Put("/sessions/{id}/enabled", h.setEnabled)
	r.Put("/sessions/{id}/permissions", h.setPermissions)
	r.Post("/users/{id}/revoke", h.revokeUser)
	if h.credentials != nil {
		r.Delete("/users/{id}/credentials", h.purgeCredentials)
	}
	h.router = r
	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.token != "" {
			got, ok := auth.ExtractBearerToken(r.Header.Get("Authorization"))
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) != 1 {
				writeError(w, http.StatusUnauthorized, ErrUnauthorized.Error())
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	res := h.sessions.ListActive(r.Context())
	writeResult(w, res.Result, res)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	res := h.sessions.Get(r.Context(), param(r, "id"))
	writeResult(w, res.Result, res)
}

func (h *Handler) setEnabled(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Enabled *bool `json:"enabled"`
	}
	if err := decode(r, &body); err != nil || body.Enabled == nil {
		writeError(w, http.StatusBadRequest, `body must be {"enabled": bool}`)
		return
	}
	id := param(r, "id")
	res := h.sessions.SetEnabled(r.Context(), id, *body.Enabled)
	if res.Success {
		h.logger.Info(r.Context(), "admin: session enabled flag set",
			observe.F("session_id", id),
			observe.F("enabled", *body.Enabled),
		)
	}
	writeResult(w, res, res)
}

func (h *Handler) setPermissions(w http.ResponseWriter, r *http.Request) {
	var set *permission.Set
	if err := decode(r, &set); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := param(r, "id")
	res := h.sessions.SetPermissions(r.Context(), id, set)
	if res.Success {
		h.logger.Info(r.Context(), "admin: session permissions replaced", observe.F("session_id", id))
	}
	writeResult(w, res, res)
}

func (h *Handler) revokeUser(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	res := h.sessions.RevokeAllForUser(r.Context(), id)
	if res.Success {
		h.logger.Info(r.Context(), "admin: user sessions revoked",
			observe.F("user_id", id),
			observe.F("revoked", res.RevokedCount),
		)
	}
	writeResult(w, res.Result, res)
}

func (h *Handler) purgeCredentials(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	n, err := h.credentials.DeleteAll(r.Context(), id)
	if err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, tokenstore.ErrMissingUserID):
			code = http.StatusBadRequest
		case errors.Is(err, tokenstore.ErrStoreUnavailable):
			code = http.StatusBadGateway
		}
		writeError(w, code, err.Error())
		return
	}
	h.logger.Info(r.Context(), "admin: credentials purged",
		observe.F("user_id", id),
		observe.F("purged", n),
		observe.F("scope", h.credentials.Scope().String()),
	)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "purged": n})
}

// StatusCode maps a registry result to an HTTP status.
func StatusCode(res registry.Result) int {
	switch {
	case res.Success:
		return http.StatusOK
	case res.NotFound():
		return http.StatusNotFound
	case errors.Is(res.Err, registry.ErrNoSession),
		errors.Is(res.Err, registry.ErrMissingUserID),
		errors.Is(res.Err, permission.ErrInvalidSet):
		return http.StatusBadRequest
	case res.Unreachable():
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeResult(w http.ResponseWriter, res registry.Result, body any) {
	if !res.Success {
		writeError(w, StatusCode(res), res.Error)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, registry.Result{Success: false, Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}

// param returns the unescaped URL parameter.
func param(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}
