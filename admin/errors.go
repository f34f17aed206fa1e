package admin

import "errors"

var (
	// ErrUnauthorized indicates a missing or wrong admin token.
	ErrUnauthorized = errors.New("admin: unauthorized")

	// ErrBadRequest indicates a request body that could not be decoded.
	ErrBadRequest = errors.New("admin: bad request")
)
