package secret

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestRegistry_RegisterAndCreate(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register("stub", func(cfg map[string]any) (Provider, error) {
		return &stubProvider{name: "stub"}, nil
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	p, err := reg.Create("stub", map[string]any{"k": "v"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p == nil || p.Name() != "stub" {
		t.Fatalf("unexpected provider: %#v", p)
	}
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register("stub", func(cfg map[string]any) (Provider, error) { return &stubProvider{name: "stub"}, nil })

	if err := reg.Register("stub", func(cfg map[string]any) (Provider, error) { return &stubProvider{name: "stub"}, nil }); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestRegistry_CreateUnknown(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Create("missing", nil); !errors.Is(err, ErrProviderNotRegistered) {
		t.Fatalf("Create() error = %v, want ErrProviderNotRegistered", err)
	}
}

func TestDefaultRegistry_Builtins(t *testing.T) {
	if got := DefaultRegistry.List(); !slices.Equal(got, []string{"env", "file"}) {
		t.Fatalf("List() = %v, want [env file]", got)
	}
}

func TestRegistry_NewResolver(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "admin_token"), []byte("s3cret\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TOOLGATE_TEST_KEY", "k-123")

	r, err := DefaultRegistry.NewResolver(map[string]map[string]any{"file": {"dir": dir}})
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}
	defer func() { _ = r.Close() }()

	ctx := context.Background()
	if got, err := r.ResolveValue(ctx, "secretref:file:admin_token"); err != nil || got != "s3cret" {
		t.Fatalf("file ref = %q, %v; want s3cret", got, err)
	}
	if got, err := r.ResolveValue(ctx, "Bearer secretref:env:TOOLGATE_TEST_KEY"); err != nil || got != "Bearer k-123" {
		t.Fatalf("env ref = %q, %v; want Bearer k-123", got, err)
	}
}
