// Package tokenstore reads and purges the credential records an OAuth
// exchange leaves in a shared key-value store.
//
// Records live under three key namespaces:
//
//	xano_auth_token:<userId>   preferred credential records
//	token:<userId>             legacy credential records
//	refresh:<id>               refresh records
//
// A record is a JSON object carrying userId, authToken (or the legacy
// accessToken), apiKey and lastRefreshed. Lookup always filters on the
// userId field rather than trusting the key, and skips records that carry
// no token or fail to parse.
//
// DeleteAll is total or nothing: every key to be removed is collected
// before a single multi-key delete is issued, so a listing failure leaves
// the store untouched.
package tokenstore
