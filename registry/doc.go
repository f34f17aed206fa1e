// Package registry is a client for the remote session registry, the
// authoritative record of each logical session's owner, enabled flag and
// permission set.
//
// Every operation returns a result value carrying Success and a human
// readable Error; none returns a Go error or panics. Result.Err holds the
// matching sentinel (ErrNoSession, ErrSessionNotFound, ErrNetwork,
// ErrRequestFailed) for callers that branch on the cause.
//
// Each call is a single bounded HTTP request with no retries. Writes from
// different gate instances are last-writer-wins; the registry is the only
// arbiter.
package registry
