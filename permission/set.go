package permission

import (
	"fmt"
	"net/netip"
	"strings"
)

// Set is the permission set attached to a session. A nil slice means the
// list is absent.
type Set struct {
	AllowedTools   []string `json:"allowedTools"`
	DeniedTools    []string `json:"deniedTools,omitempty"`
	RateLimit      int      `json:"rateLimit,omitempty"`
	IPRestrictions []string `json:"ipRestrictions,omitempty"`
}

// Validate checks the reserved fields and rejects empty patterns.
func (s *Set) Validate() error {
	if s == nil {
		return nil
	}
	if s.RateLimit < 0 {
		return fmt.Errorf("%w: rateLimit must be non-negative, got %d", ErrInvalidSet, s.RateLimit)
	}
	for _, p := range s.AllowedTools {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: empty allowedTools pattern", ErrInvalidSet)
		}
	}
	for _, p := range s.DeniedTools {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: empty deniedTools pattern", ErrInvalidSet)
		}
	}
	for _, r := range s.IPRestrictions {
		if _, err := netip.ParsePrefix(r); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(r); err != nil {
			return fmt.Errorf("%w: ipRestrictions entry %q is not an address or CIDR", ErrInvalidSet, r)
		}
	}
	return nil
}

// Clone returns a deep copy, preserving nil versus empty lists.
func (s *Set) Clone() *Set {
	if s == nil {
		return nil
	}
	return &Set{
		AllowedTools:   cloneList(s.AllowedTools),
		DeniedTools:    cloneList(s.DeniedTools),
		RateLimit:      s.RateLimit,
		IPRestrictions: cloneList(s.IPRestrictions),
	}
}

func cloneList(in []string) []string {
	if in == nil {
		return nil
	}
	return append(make([]string, 0, len(in)), in...)
}

// Target is anything the engine can evaluate: a session's enabled flag and
// its permission set, which may be nil.
type Target interface {
	IsEnabled() bool
	PermissionSet() *Set
}

// Subject is a Target built from plain values.
type Subject struct {
	Enabled     bool
	Permissions *Set
}

func (s Subject) IsEnabled() bool      { return s.Enabled }
func (s Subject) PermissionSet() *Set { return s.Permissions }
