package cache

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"session key", SessionKey("7f9c2b"), nil},
		{"empty", "", ErrInvalidKey},
		{"blank session id", SessionKey("  "), ErrInvalidKey},
		{"header injection", SessionKey("abc\r\nX-Evil: 1"), ErrInvalidKey},
		{"at limit", strings.Repeat("s", MaxKeyLength), nil},
		{"over limit", SessionKey(strings.Repeat("s", MaxKeyLength)), ErrKeyTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateKey(tt.key); !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateKey(%q) = %v, want %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestSessionKey(t *testing.T) {
	if got := SessionKey("abc"); got != "session:abc" {
		t.Errorf("SessionKey() = %q, want session:abc", got)
	}
}
