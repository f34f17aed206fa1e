package cache

import (
	"testing"
	"time"
)

func TestPolicy_DefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if p.DefaultTTL != 15*time.Second || p.MaxTTL != 5*time.Minute {
		t.Errorf("DefaultPolicy() = %+v", p)
	}
	if !p.ShouldCache() {
		t.Error("DefaultPolicy should cache")
	}
}

func TestPolicy_NoCachePolicy(t *testing.T) {
	p := NoCachePolicy()
	if p.ShouldCache() || p.EffectiveTTL(0) != 0 {
		t.Errorf("NoCachePolicy() = %+v", p)
	}
}

func TestPolicy_TTLMatrix(t *testing.T) {
	tests := []struct {
		name       string
		defaultTTL time.Duration
		maxTTL     time.Duration
		override   time.Duration
		want       time.Duration
	}{
		{"default used without override", 15 * time.Second, 0, 0, 15 * time.Second},
		{"negative override uses default", 15 * time.Second, 0, -time.Second, 15 * time.Second},
		{"override wins", 15 * time.Second, 0, time.Minute, time.Minute},
		{"override clamped", 15 * time.Second, time.Minute, time.Hour, time.Minute},
		{"default clamped", time.Hour, time.Minute, 0, time.Minute},
		{"override enables caching", 0, time.Minute, 30 * time.Second, 30 * time.Second},
		{"disabled", 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Policy{DefaultTTL: tt.defaultTTL, MaxTTL: tt.maxTTL}
			if got := p.EffectiveTTL(tt.override); got != tt.want {
				t.Errorf("EffectiveTTL(%v) = %v, want %v", tt.override, got, tt.want)
			}
		})
	}
}
