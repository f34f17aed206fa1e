// Package cache holds session records fetched from the registry for a short
// time, in process or in Redis.
//
// Caching trades freshness for fewer registry round trips. A session
// disabled elsewhere keeps its cached state until the entry expires, so
// the default policy keeps entries for seconds, not minutes.
package cache
