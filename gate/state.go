package gate

import (
	"github.com/jonwraymond/toolgate/auth"
	"github.com/jonwraymond/toolgate/permission"
)

// State is the position of one request in the gate.
type State int

const (
	Unchecked State = iota
	Identified
	Validated
	Authorized
	Rejected
	Downgraded
)

func (s State) String() string {
	switch s {
	case Unchecked:
		return "unchecked"
	case Identified:
		return "identified"
	case Validated:
		return "validated"
	case Authorized:
		return "authorized"
	case Rejected:
		return "rejected"
	case Downgraded:
		return "downgraded"
	default:
		return "unknown"
	}
}

// NoticeExpired is attached to a downgraded outcome for the caller to surface.
const NoticeExpired = "Authentication expired. Please reconnect to re-authenticate."

// Outcome is the result of passing a request through the gate.
type Outcome struct {
	State State

	// Identity is the identity downstream stages should use. After a
	// downgrade it carries only the session id.
	Identity auth.Identity

	// Notice is a human-readable message for the caller, set on downgrade.
	Notice string

	// Advisory records a failure the gate continued past.
	Advisory error

	// Purged is the number of credential records removed on downgrade.
	Purged int

	// Operation and Decision are set by Authorize.
	Operation string
	Decision  *permission.Decision

	// RequestID correlates log lines for this request.
	RequestID string
}

// Allowed reports whether the request may proceed.
func (o Outcome) Allowed() bool {
	return o.State != Rejected
}

// Err returns a *permission.DeniedError for a rejected outcome and nil
// otherwise.
func (o Outcome) Err() error {
	if o.State != Rejected || o.Decision == nil {
		return nil
	}
	return o.Decision.Err(o.Identity.SessionID, o.Operation)
}
