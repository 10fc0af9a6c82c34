package database

import (
	"context"
	"testing"

	"shopcatalog/internal/hierarchy"
)

func TestSeedIdempotent(t *testing.T) {
	ctx := context.Background()
	store := hierarchy.NewMemoryStore()
	svc := hierarchy.NewService(store, nil)

	// Seed only writes into an empty catalog, so a second call is a no-op.
	if err := Seed(ctx, store, svc); err != nil {
		t.Fatalf("first Seed: %v", err)
	}
	if err := Seed(ctx, store, svc); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	cats, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(cats) != len(seedCategories) {
		t.Errorf("categories: got %d, want %d", len(cats), len(seedCategories))
	}
}

func TestSeedPaths(t *testing.T) {
	ctx := context.Background()
	store := hierarchy.NewMemoryStore()
	svc := hierarchy.NewService(store, nil)
	if err := Seed(ctx, store, svc); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	leaf, err := store.FindByTitle(ctx, "Phone Accessories")
	if err != nil {
		t.Fatalf("FindByTitle: %v", err)
	}
	paths, err := svc.CollectPaths(ctx, leaf.ID)
	if err != nil {
		t.Fatalf("CollectPaths: %v", err)
	}

	want := []string{
		"Electronics / Accessories / Phone Accessories / ",
		"Gifts / Phone Accessories / ",
		"Electronics / Phones / Phone Accessories / ",
	}
	if len(paths) != len(want) {
		t.Fatalf("paths: got %d, want %d", len(paths), len(want))
	}
	for i, p := range paths {
		if p.String() != want[i] {
			t.Errorf("path %d: got %q, want %q", i, p.String(), want[i])
		}
	}
}
