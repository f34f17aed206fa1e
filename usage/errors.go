package usage

import "errors"

var (
	// ErrMissingBaseURL indicates a recorder was configured without a base URL.
	ErrMissingBaseURL = errors.New("usage: base url is required")

	// ErrSinkRejected indicates the sink answered with a non-success status.
	ErrSinkRejected = errors.New("usage: sink rejected event")
)
