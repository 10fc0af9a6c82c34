// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package hierarchy

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"shopcatalog/internal/models"
)

// fixture is a MemoryStore with categories addressable by title.
type fixture struct {
	store *MemoryStore
	ids   map[string]uuid.UUID
}

func newFixture(t *testing.T, titles ...string) *fixture {
	t.Helper()
	f := &fixture{store: NewMemoryStore(), ids: make(map[string]uuid.UUID)}
	for _, title := range titles {
		c, err := f.store.Create(context.Background(), &models.Category{Title: title})
		if err != nil {
			t.Fatalf("Create(%q): %v", title, err)
		}
		f.ids[title] = c.ID
	}
	return f
}

func (f *fixture) id(title string) uuid.UUID { return f.ids[title] }

// link writes child -> parent directly, bypassing the cycle guard.
func (f *fixture) link(child, parent string) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	c, p := f.ids[child], f.ids[parent]
	if f.store.edges[c] == nil {
		f.store.edges[c] = make(map[uuid.UUID]time.Time)
	}
	f.store.edges[c][p] = time.Now()
}

func (f *fixture) edgeCount() int {
	f.store.mu.RLock()
	defer f.store.mu.RUnlock()
	n := 0
	for _, parents := range f.store.edges {
		n += len(parents)
	}
	return n
}

func (f *fixture) hasEdge(child, parent string) bool {
	f.store.mu.RLock()
	defer f.store.mu.RUnlock()
	_, ok := f.store.edges[f.ids[child]][f.ids[parent]]
	return ok
}

// ancestors computes the ancestor closure of id straight from the edge map.
func (f *fixture) ancestors(id uuid.UUID) map[uuid.UUID]bool {
	f.store.mu.RLock()
	defer f.store.mu.RUnlock()
	seen := make(map[uuid.UUID]bool)
	queue := []uuid.UUID{id}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for p := range f.store.edges[n] {
			if !seen[p] {
				seen[p] = true
				queue = append(queue, p)
			}
		}
	}
	return seen
}

func pathStrings(paths []Path) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p.String()
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
