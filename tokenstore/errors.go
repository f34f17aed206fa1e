package tokenstore

import "errors"

var (
	// ErrNotFound indicates no usable credential record exists for the user.
	ErrNotFound = errors.New("tokenstore: credential not found")

	// ErrMalformedRecord indicates a stored value is not a credential record.
	ErrMalformedRecord = errors.New("tokenstore: malformed record")

	// ErrStoreUnavailable indicates the key-value store could not be reached.
	ErrStoreUnavailable = errors.New("tokenstore: store unavailable")

	// ErrMissingUserID indicates an empty user id was supplied.
	ErrMissingUserID = errors.New("tokenstore: user id is required")

	// ErrUnknownPrefix indicates a write to a namespace outside the known set.
	ErrUnknownPrefix = errors.New("tokenstore: unknown key prefix")

	// ErrNilKV indicates a Store was built without a KV backend.
	ErrNilKV = errors.New("tokenstore: kv is nil")
)
