// Package permission decides whether a session may run a named operation.
//
// A session carries an optional permission set with allowedTools and
// deniedTools glob lists. Patterns are matched against the whole name,
// case-insensitively; '*' matches any run of characters and '?' exactly
// one. Everything else is literal.
//
// Precedence, strongest first:
//
//  1. a disabled session is denied regardless of its permission set
//  2. any matching deniedTools pattern denies
//  3. a present allowedTools list that nothing matches denies
//  4. otherwise the operation is allowed
//
// An absent allowedTools list allows everything. A present but empty one
// allows nothing.
//
// rateLimit and ipRestrictions are carried and validated but not enforced.
package permission
