package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedJWT(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestCachedToken_ExpiryCheckedOnEveryUse(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewCachedToken("opaque-token", time.Minute, now)

	if !c.Valid(now) {
		t.Error("fresh cached token should be valid")
	}
	if !c.Valid(now.Add(59 * time.Second)) {
		t.Error("cached token should be valid before expiry")
	}
	if c.Valid(now.Add(time.Minute)) {
		t.Error("cached token must be invalid at expiry")
	}
	if (CachedToken{ExpiresAt: now.Add(time.Hour)}).Valid(now) {
		t.Error("empty token is never valid")
	}
}

func TestCachedToken_JWTExpiryShortensWindow(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	exp := now.Add(30 * time.Second)
	token := signedJWT(t, jwt.MapClaims{"sub": "42", "exp": exp.Unix()})

	c := NewCachedToken(token, time.Hour, now)
	if !c.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", c.ExpiresAt, exp)
	}

	late := signedJWT(t, jwt.MapClaims{"exp": now.Add(2 * time.Hour).Unix()})
	if c := NewCachedToken(late, time.Hour, now); !c.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("ttl should win over a later exp, got %v", c.ExpiresAt)
	}
}

func TestCachedToken_Matches(t *testing.T) {
	c := CachedToken{Token: "a"}
	if !c.Matches("a") || c.Matches("b") || (CachedToken{}).Matches("") {
		t.Error("Matches misbehaves")
	}
}

func TestTokenExpiry(t *testing.T) {
	if _, ok := TokenExpiry("opaque"); ok {
		t.Error("opaque token has no expiry")
	}
	if _, ok := TokenExpiry("a.b.c"); ok {
		t.Error("garbage JWT has no expiry")
	}
	if _, ok := TokenExpiry(signedJWT(t, jwt.MapClaims{"sub": "42"})); ok {
		t.Error("JWT without exp has no expiry")
	}
	exp := time.Unix(1900000000, 0)
	got, ok := TokenExpiry(signedJWT(t, jwt.MapClaims{"exp": exp.Unix()}))
	if !ok || !got.Equal(exp) {
		t.Errorf("TokenExpiry = %v, %v", got, ok)
	}
}
