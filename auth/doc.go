// Package auth carries the per-request authentication context and checks
// credentials against a remote identity endpoint.
//
// Tokens are opaque. Nothing here issues or verifies signatures; a
// credential is valid exactly when GET {baseUrl}/auth/me accepts it as a
// bearer token. Validation outcomes are three-way: valid, invalid, or
// unknown (a *NetworkError). Only a confirmed rejection should cause a
// caller to discard the credential.
//
// The session id comes from the transport's Mcp-Session-Id header and is
// never generated by this package.
package auth
