// Package admin serves the operator control plane for gate sessions.
//
//	GET    /sessions                   active sessions
//	GET    /sessions/{id}              one session
//	PUT    /sessions/{id}/enabled      {"enabled": bool}
//	PUT    /sessions/{id}/permissions  permission set, replaced wholesale
//	POST   /users/{id}/revoke          revoke every session of a user
//	DELETE /users/{id}/credentials     purge stored credentials
//
// Failures are answered as {"success":false,"error":"..."} with a status
// derived from the registry result. When a token is configured every route
// requires "Authorization: Bearer <token>".
package admin
