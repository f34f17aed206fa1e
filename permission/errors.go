package permission

import (
	"errors"
	"fmt"
)

var (
	// ErrDenied is matched by every *DeniedError.
	ErrDenied = errors.New("permission: denied")

	// ErrInvalidSet indicates a permission set failed validation.
	ErrInvalidSet = errors.New("permission: invalid permission set")
)

// DeniedError reports a denied operation.
type DeniedError struct {
	SessionID string
	Operation string
	Reason    string
}

func (e *DeniedError) Error() string {
	if e.SessionID != "" {
		return fmt.Sprintf("permission denied: session=%q operation=%q reason=%q", e.SessionID, e.Operation, e.Reason)
	}
	return fmt.Sprintf("permission denied: operation=%q reason=%q", e.Operation, e.Reason)
}

// Is reports whether target is ErrDenied.
func (e *DeniedError) Is(target error) bool {
	return target == ErrDenied
}
