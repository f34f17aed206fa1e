package auth

import (
	"errors"
	"fmt"
)

// Sentinel errors for credential validation.
var (
	ErrMissingCredentials  = errors.New("auth: missing credentials")
	ErrInvalidCredentials  = errors.New("auth: invalid credentials")
	ErrTokenExpired        = errors.New("auth: token expired")
	ErrTokenMalformed      = errors.New("auth: token malformed")
	ErrNetwork             = errors.New("auth: identity endpoint unreachable")
	ErrIdentityUnavailable = errors.New("auth: identity endpoint unavailable")
)

// NetworkError reports a validation whose outcome is unknown: the identity
// endpoint could not be reached, or answered with a server-side failure.
// It matches ErrNetwork, and ErrIdentityUnavailable when a status was received.
type NetworkError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("auth: %s %s: status %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("auth: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is reports ErrNetwork for every NetworkError.
func (e *NetworkError) Is(target error) bool {
	if target == ErrNetwork {
		return true
	}
	return target == ErrIdentityUnavailable && e.StatusCode != 0
}

// IsIndeterminate reports whether err leaves credential validity unknown.
func IsIndeterminate(err error) bool {
	return errors.Is(err, ErrNetwork)
}
