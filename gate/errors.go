package gate

import "errors"

var (
	// ErrMissingStore indicates a gate was configured without a token store.
	ErrMissingStore = errors.New("gate: token store is required")

	// ErrMissingValidator indicates a gate was configured without a validator.
	ErrMissingValidator = errors.New("gate: validator is required")
)
