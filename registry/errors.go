package registry

import "errors"

var (
	// ErrNoSession indicates an operation was attempted without a session id.
	ErrNoSession = errors.New("registry: no session")

	// ErrMissingUserID indicates an operation was attempted without a user id.
	ErrMissingUserID = errors.New("registry: no user")

	// ErrSessionNotFound indicates the registry has no record for the id.
	ErrSessionNotFound = errors.New("registry: session not found")

	// ErrNetwork indicates the registry could not be reached.
	ErrNetwork = errors.New("registry: network error")

	// ErrRequestFailed indicates the registry answered with a non-success status.
	ErrRequestFailed = errors.New("registry: request failed")

	// ErrInvalidResponse indicates a success response that could not be decoded.
	ErrInvalidResponse = errors.New("registry: invalid response")

	// ErrMissingBaseURL indicates a client was configured without a base URL.
	ErrMissingBaseURL = errors.New("registry: base url is required")
)

// Messages carried in Result.Error for the well-known failures.
const (
	MsgNoSession       = "No session"
	MsgNoUser          = "No user"
	MsgSessionNotFound = "Session not found"
)
