package resilience

import (
	"context"
	"errors"
	"testing"
)

func TestBulkhead_Defaults(t *testing.T) {
	if m := NewBulkhead(BulkheadConfig{}).Metrics(); m.MaxConcurrent != 10 {
		t.Errorf("MaxConcurrent = %d, want 10", m.MaxConcurrent)
	}
}

// TestBulkhead_ShedsWhenFull verifies a call arriving at capacity is
// rejected immediately and the slot is reusable afterwards.
func TestBulkhead_ShedsWhenFull(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1})
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- b.Execute(ctx, func(context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	if err := b.Execute(ctx, okOp); !errors.Is(err, ErrBulkheadFull) {
		t.Fatalf("Execute() at capacity error = %v, want ErrBulkheadFull", err)
	}
	if m := b.Metrics(); m.Active != 1 || m.Rejected != 1 {
		t.Errorf("Metrics() = %+v", m)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	if err := b.Execute(ctx, okOp); err != nil {
		t.Errorf("Execute() after release error = %v", err)
	}
}
