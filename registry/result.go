package registry

import "errors"

// Result is the outcome of a registry operation.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	// Err is the cause of a failure; nil on success.
	Err error `json:"-"`
}

// SessionResult carries a session record.
type SessionResult struct {
	Result
	Session *Session `json:"session,omitempty"`
}

// ListResult carries a list of session records.
type ListResult struct {
	Result
	Sessions []Session `json:"sessions"`
}

// RevokeResult reports a bulk revocation.
type RevokeResult struct {
	Result
	RevokedCount int      `json:"revokedCount"`
	SessionIDs   []string `json:"sessionIds"`
}

func ok() Result {
	return Result{Success: true}
}

func fail(err error) Result {
	msg := err.Error()
	switch {
	case errors.Is(err, ErrNoSession):
		msg = MsgNoSession
	case errors.Is(err, ErrMissingUserID):
		msg = MsgNoUser
	case errors.Is(err, ErrSessionNotFound):
		msg = MsgSessionNotFound
	}
	return Result{Success: false, Error: msg, Err: err}
}

// NotFound reports whether the operation failed because the session does not exist.
func (r Result) NotFound() bool {
	return errors.Is(r.Err, ErrSessionNotFound)
}

// Unreachable reports whether the registry could not be reached, so the
// outcome of the operation is unknown.
func (r Result) Unreachable() bool {
	return errors.Is(r.Err, ErrNetwork)
}
