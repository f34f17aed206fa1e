package permission

import (
	"regexp"
	"strings"
	"sync"
)

// Decision is the result of evaluating one operation. Denials are values,
// not errors.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Allow returns an allowing decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a denying decision with reason.
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Err returns nil for an allowed decision and a *DeniedError otherwise.
func (d Decision) Err(sessionID, operation string) error {
	if d.Allowed {
		return nil
	}
	return &DeniedError{SessionID: sessionID, Operation: operation, Reason: d.Reason}
}

// Reasons reported by Evaluate.
const (
	ReasonDisabled = "session disabled"
)

// DeniedReason returns the reason for an operation matched by deniedTools.
func DeniedReason(operation string) string {
	return "Tool " + operation + " is denied by permissions"
}

// NotAllowedReason returns the reason for an operation outside allowedTools.
func NotAllowedReason(operation string) string {
	return "Tool " + operation + " is not in allowed tools list"
}

// Evaluator decides operations for targets.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Evaluate never fails; it performs no I/O.
type Evaluator interface {
	Evaluate(t Target, operation string) Decision
}

// Engine evaluates permission sets. Compiled patterns are cached per
// engine; the cache only grows with distinct pattern strings.
type Engine struct {
	mu       sync.RWMutex
	compiled map[string]*regexp.Regexp
}

// NewEngine creates an engine with an empty pattern cache.
func NewEngine() *Engine {
	return &Engine{compiled: make(map[string]*regexp.Regexp)}
}

// Evaluate decides whether t may run operation. A nil target is treated
// as "no session" and allowed.
func (e *Engine) Evaluate(t Target, operation string) Decision {
	if t == nil {
		return Allow()
	}
	if !t.IsEnabled() {
		return Deny(ReasonDisabled)
	}

	set := t.PermissionSet()
	if set == nil {
		return Allow()
	}

	for _, p := range set.DeniedTools {
		if e.Match(p, operation) {
			return Deny(DeniedReason(operation))
		}
	}

	if set.AllowedTools != nil {
		for _, p := range set.AllowedTools {
			if e.Match(p, operation) {
				return Allow()
			}
		}
		return Deny(NotAllowedReason(operation))
	}

	return Allow()
}

// Match reports whether name matches the glob pattern in full, ignoring case.
func (e *Engine) Match(pattern, name string) bool {
	return e.compile(pattern).MatchString(name)
}

func (e *Engine) compile(pattern string) *regexp.Regexp {
	e.mu.RLock()
	re, ok := e.compiled[pattern]
	e.mu.RUnlock()
	if ok {
		return re
	}

	re = regexp.MustCompile(GlobToRegexp(pattern))

	e.mu.Lock()
	e.compiled[pattern] = re
	e.mu.Unlock()
	return re
}

// GlobToRegexp translates a glob into an anchored, case-insensitive
// regular expression. Only '*' and '?' are special.
func GlobToRegexp(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern) + 8)
	b.WriteString("(?is)^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteByte('.')
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteByte('$')
	return b.String()
}

var _ Evaluator = (*Engine)(nil)
