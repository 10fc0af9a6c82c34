// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package hierarchy

import (
	"context"
	"errors"
	"testing"
)

func validate(t *testing.T, f *fixture, child, parent string) error {
	t.Helper()
	var err error
	f.store.View(context.Background(), func(repo Repository) error {
		err = ValidateNewEdge(context.Background(), repo, f.id(child), f.id(parent))
		return nil
	})
	return err
}

func TestValidateNewEdge(t *testing.T) {
	f := newFixture(t, "A", "B", "C", "D", "E")
	// D -> B -> A, D -> C -> A, E is isolated.
	f.link("B", "A")
	f.link("C", "A")
	f.link("D", "B")
	f.link("D", "C")

	tests := []struct {
		name          string
		child, parent string
		want          error
	}{
		{"self reference", "A", "A", ErrSelfReference},
		{"root under leaf closes cycle", "A", "D", ErrCycleDetected},
		{"direct reverse edge", "B", "D", ErrCycleDetected},
		{"sibling edge is fine", "B", "C", nil},
		{"isolated node", "E", "D", nil},
		{"new root above root", "A", "E", nil},
		{"existing edge is not a cycle", "D", "B", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(t, f, tt.child, tt.parent)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateNewEdgeChain(t *testing.T) {
	f := newFixture(t, "Electronics", "Phones", "Smartphones")
	f.link("Phones", "Electronics")
	f.link("Smartphones", "Phones")

	err := validate(t, f, "Electronics", "Smartphones")
	var he *Error
	if !errors.As(err, &he) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if he.Kind != KindCycleDetected {
		t.Errorf("kind: got %q, want %q", he.Kind, KindCycleDetected)
	}
	want := []string{"Smartphones", "Phones", "Electronics"}
	if !equalStrings(he.Chain, want) {
		t.Errorf("chain: got %v, want %v", he.Chain, want)
	}
}

func TestValidateNewEdgeTerminatesOnExistingCycle(t *testing.T) {
	f := newFixture(t, "X", "Y", "Z", "W")
	// A corrupted store with Y -> Z -> Y.
	f.link("Y", "Z")
	f.link("Z", "Y")

	if err := validate(t, f, "X", "Y"); err != nil {
		t.Errorf("X under Y: unexpected error: %v", err)
	}
	f.link("X", "Y")
	f.link("W", "X")
	if err := validate(t, f, "Y", "W"); !errors.Is(err, ErrCycleDetected) {
		t.Errorf("Y under W: got %v, want %v", err, ErrCycleDetected)
	}
}

// Independent validations must not share traversal state: a node visited by
// one call has to be visited again by the next.
func TestValidateNewEdgeFreshStatePerCall(t *testing.T) {
	f := newFixture(t, "A", "B", "C")
	f.link("B", "A")

	for i := 0; i < 3; i++ {
		if err := validate(t, f, "C", "B"); err != nil {
			t.Fatalf("round %d: C under B: %v", i, err)
		}
		if err := validate(t, f, "A", "B"); !errors.Is(err, ErrCycleDetected) {
			t.Fatalf("round %d: A under B: got %v, want %v", i, err, ErrCycleDetected)
		}
	}
}

func TestValidateNewEdgeCancelled(t *testing.T) {
	f := newFixture(t, "A", "B")
	f.link("B", "A")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var err error
	f.store.mu.RLock()
	err = ValidateNewEdge(ctx, &memoryRepo{categories: f.store.categories, edges: f.store.edges}, f.id("A"), f.id("B"))
	f.store.mu.RUnlock()
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
