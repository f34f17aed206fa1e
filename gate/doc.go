// Package gate decides, on every inbound call, whether the caller's stored
// credential still holds and whether its session may run the requested
// operation.
//
// A request moves through these states:
//
//	Unchecked -> Identified -> Validated -> Authorized
//	                                    \-> Downgraded
//	Authorized -> Rejected (session path only)
//
// Anonymous traffic is Authorized without any checks. The only transition
// that changes durable state is a confirmed-invalid credential: every
// stored credential record is purged and the request continues as
// unauthenticated. Missing records, network failures and an unreachable
// registry all continue without blocking.
//
// The Gate holds only immutable collaborators and is safe for concurrent
// use. Check and Authorize can be called directly, or composed around a
// tool executor with Middleware, or around an HTTP handler with
// Gate.HTTPMiddleware.
package gate
