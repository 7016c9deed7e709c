package tests

import (
	"context"
	"testing"

	"github.com/aretw0/dfa/pkg/ports"
)

// SpecLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.SpecLoader.
// The loader must already hold want.
func SpecLoaderContractTest(t *testing.T, loader ports.SpecLoader, want *ports.Spec) {
	t.Helper()

	t.Run("Load_Content", func(t *testing.T) {
		got, err := loader.Load(context.Background())
		if err != nil {
			t.Fatalf("unexpected error loading spec: %v", err)
		}
		if string(got.Data) != string(want.Data) {
			t.Errorf("content mismatch. got %q, want %q", got.Data, want.Data)
		}
		if got.Format != want.Format {
			t.Errorf("format mismatch. got %q, want %q", got.Format, want.Format)
		}
		if got.Source == "" {
			t.Error("expected a non-empty source description")
		}
	})

	t.Run("Load_Repeatable", func(t *testing.T) {
		first, err := loader.Load(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := loader.Load(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(first.Data) != string(second.Data) {
			t.Error("two loads without changes returned different content")
		}
	})

	t.Run("Load_Canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := loader.Load(ctx); err == nil {
			t.Error("expected error for canceled context, got nil")
		}
	})
}

// SpecStoreContractTest verifies that Save replaces what Load returns.
func SpecStoreContractTest(t *testing.T, store ports.SpecStore) {
	t.Helper()

	ctx := context.Background()
	spec := &ports.Spec{Data: []byte("a\nx\na\na\na,x,a\n"), Format: "text", Source: "contract"}
	if err := store.Save(ctx, spec); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	SpecLoaderContractTest(t, store, spec)

	replaced := &ports.Spec{Data: []byte("states: [b]\n"), Format: "yaml", Source: "contract"}
	if err := store.Save(ctx, replaced); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if string(got.Data) != string(replaced.Data) || got.Format != "yaml" {
		t.Errorf("save did not replace the stored spec: %+v", got)
	}
}
