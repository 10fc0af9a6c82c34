// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package hierarchy

import (
	"context"
	"errors"
	"iter"
	"strings"

	"github.com/google/uuid"

	"shopcatalog/internal/metrics"
	"shopcatalog/internal/models"
)

// PathSeparator joins the titles of a formatted path.
const PathSeparator = " / "

// Path is an ordered list of category titles from a root down to (and
// including) the enumerated category.
type Path []string

// String formats the path the way reporting views display it: every title
// followed by PathSeparator, e.g. "Root / Mid / Leaf / ".
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	return strings.Join(p, PathSeparator) + PathSeparator
}

// errStopped ends a walk when the consumer stops iterating.
var errStopped = errors.New("path enumeration stopped")

// Enumerator produces every distinct root-to-category path.
type Enumerator struct {
	store Store
}

// NewEnumerator returns an Enumerator reading through store.View.
func NewEnumerator(store Store) *Enumerator {
	return &Enumerator{store: store}
}

// Paths returns a sequence of every path from a root to the category id.
// Parents are visited in ascending title order at every level, so the
// output order is deterministic. The sequence ends with a single non-nil
// error if the category does not exist, storage fails, or ctx is
// cancelled; paths yielded before such an error are not a complete result.
// Calling Paths again re-derives the sequence from current storage.
func (e *Enumerator) Paths(ctx context.Context, id uuid.UUID) iter.Seq2[Path, error] {
	return func(yield func(Path, error) bool) {
		count := 0
		err := e.store.View(ctx, func(repo Repository) error {
			return walkPaths(ctx, repo, id, func(p Path) bool {
				count++
				return yield(p, nil)
			})
		})
		switch {
		case errors.Is(err, errStopped):
			metrics.PathEnumerations.WithLabelValues("stopped").Inc()
		case err != nil:
			metrics.PathEnumerations.WithLabelValues("error").Inc()
			yield(nil, classify("enumerate paths", err))
		default:
			metrics.PathEnumerations.WithLabelValues("ok").Inc()
			metrics.PathsPerCategory.Observe(float64(count))
		}
	}
}

// Collect drains Paths. On error no partial result is returned.
func (e *Enumerator) Collect(ctx context.Context, id uuid.UUID) ([]Path, error) {
	var paths []Path
	for p, err := range e.Paths(ctx, id) {
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// pathFrame is one category on the current walk, from the target upwards.
type pathFrame struct {
	id      uuid.UUID
	title   string
	parents []models.Category
	next    int
}

// walkPaths walks upward from id with an explicit stack. Each time the top
// of the stack is a root, the stack read top-down is a complete path.
// A category already on the current stack (only possible if the stored
// graph has a cycle) is a dead end, which bounds the walk.
func walkPaths(ctx context.Context, repo Repository, id uuid.UUID, emit func(Path) bool) error {
	target, err := repo.Category(ctx, id)
	if err != nil {
		return err
	}

	// Parent lists fetched during this call, keyed by category id.
	arena := make(map[uuid.UUID][]models.Category)
	onPath := make(map[uuid.UUID]bool)
	var stack []*pathFrame

	push := func(id uuid.UUID, title string) error {
		parents, ok := arena[id]
		if !ok {
			var err error
			parents, err = repo.Parents(ctx, id)
			if err != nil {
				return err
			}
			arena[id] = parents
		}
		onPath[id] = true
		stack = append(stack, &pathFrame{id: id, title: title, parents: parents})
		return nil
	}
	pop := func() {
		top := stack[len(stack)-1]
		delete(onPath, top.id)
		stack = stack[:len(stack)-1]
	}

	if err := push(target.ID, target.Title); err != nil {
		return err
	}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		top := stack[len(stack)-1]

		if len(top.parents) == 0 {
			path := make(Path, 0, len(stack))
			for i := len(stack) - 1; i >= 0; i-- {
				path = append(path, stack[i].title)
			}
			if !emit(path) {
				return errStopped
			}
			pop()
			continue
		}

		if top.next == len(top.parents) {
			pop()
			continue
		}
		p := top.parents[top.next]
		top.next++
		if onPath[p.ID] {
			continue
		}
		if err := push(p.ID, p.Title); err != nil {
			return err
		}
	}
	return nil
}
