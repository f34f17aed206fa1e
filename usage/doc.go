// Package usage records tool-call usage events to a remote sink without
// ever blocking or failing the call that produced them.
//
// Record returns immediately. The POST runs on a detached goroutine whose
// context survives the request's cancellation and is bounded by a
// resilience.Guard. Failures are logged and offered on Errors(); nothing on
// the request path waits for them.
package usage
