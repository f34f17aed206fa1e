package permission

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestSet_Validate(t *testing.T) {
	tests := []struct {
		name    string
		set     *Set
		wantErr bool
	}{
		{"nil", nil, false},
		{"empty", &Set{}, false},
		{"full", &Set{AllowedTools: []string{"*"}, DeniedTools: []string{"x"}, RateLimit: 10, IPRestrictions: []string{"10.0.0.0/8", "192.168.1.1", "::1"}}, false},
		{"negative rate limit", &Set{RateLimit: -1}, true},
		{"blank allowed pattern", &Set{AllowedTools: []string{" "}}, true},
		{"blank denied pattern", &Set{DeniedTools: []string{""}}, true},
		{"bad cidr", &Set{IPRestrictions: []string{"10.0.0.0/33"}}, true},
		{"hostname", &Set{IPRestrictions: []string{"example.com"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.set.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidSet) {
				t.Errorf("expected ErrInvalidSet, got %v", err)
			}
		})
	}
}

func TestSet_JSONPreservesAbsentVersusEmpty(t *testing.T) {
	var absent Set
	if err := json.Unmarshal([]byte(`{"deniedTools":["x"]}`), &absent); err != nil {
		t.Fatal(err)
	}
	if absent.AllowedTools != nil {
		t.Errorf("missing allowedTools should decode as nil, got %#v", absent.AllowedTools)
	}

	var empty Set
	if err := json.Unmarshal([]byte(`{"allowedTools":[]}`), &empty); err != nil {
		t.Fatal(err)
	}
	if empty.AllowedTools == nil || len(empty.AllowedTools) != 0 {
		t.Errorf("empty allowedTools should decode as empty non-nil, got %#v", empty.AllowedTools)
	}

	data, err := json.Marshal(empty)
	if err != nil {
		t.Fatal(err)
	}
	var again Set
	if err := json.Unmarshal(data, &again); err != nil {
		t.Fatal(err)
	}
	if again.AllowedTools == nil {
		t.Errorf("empty allowedTools lost on round trip: %s", data)
	}
}

func TestSet_Clone(t *testing.T) {
	var nilSet *Set
	if nilSet.Clone() != nil {
		t.Error("nil clone should be nil")
	}

	orig := &Set{AllowedTools: []string{}, DeniedTools: []string{"a"}}
	c := orig.Clone()
	if c.AllowedTools == nil {
		t.Error("Clone turned an empty list into an absent one")
	}
	c.DeniedTools[0] = "b"
	if orig.DeniedTools[0] != "a" {
		t.Error("Clone shares DeniedTools")
	}
}
