package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CachedToken is a credential a caller has already validated, together with
// the instant that validation stops counting. The caller owns the value and
// passes it back in; there is no process-wide cache. Validity is re-checked
// on every use.
type CachedToken struct {
	Token     string
	ExpiresAt time.Time
}

// NewCachedToken trusts token until now+ttl. When the token happens to be
// a JWT carrying an exp claim earlier than that, exp wins. The signature is
// not checked; exp is only used to shorten the window.
func NewCachedToken(token string, ttl time.Duration, now time.Time) CachedToken {
	expires := now.Add(ttl)
	if exp, ok := TokenExpiry(token); ok && exp.Before(expires) {
		expires = exp
	}
	return CachedToken{Token: token, ExpiresAt: expires}
}

// Valid reports whether the cached value still stands at now.
func (c CachedToken) Valid(now time.Time) bool {
	return strings.TrimSpace(c.Token) != "" && now.Before(c.ExpiresAt)
}

// Matches reports whether the cached value is for token.
func (c CachedToken) Matches(token string) bool {
	return c.Token != "" && c.Token == token
}

// TokenExpiry returns the exp claim of a JWT-shaped token. Opaque tokens
// and tokens without exp report false.
func TokenExpiry(token string) (time.Time, bool) {
	if strings.Count(token, ".") != 2 {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
