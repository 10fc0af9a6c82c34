// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package hierarchy

import (
	"context"

	"github.com/google/uuid"

	"shopcatalog/internal/metrics"
)

// ValidateNewEdge checks that adding the edge child -> parent keeps the
// graph acyclic. It walks the ancestor closure of parent depth-first; if
// child is already in that closure, the new edge would close a cycle and a
// *Error of kind KindCycleDetected is returned whose Chain runs from parent
// up to child.
//
// Only the new edge can close a cycle, so checking the closure of parent is
// sufficient. repo must be the transactional Repository that will perform
// the insert.
func ValidateNewEdge(ctx context.Context, repo Repository, child, parent uuid.UUID) error {
	if child == parent {
		return ErrSelfReference
	}

	// Per-call traversal state. visited also covers pre-existing cycles:
	// a node is expanded at most once.
	visited := map[uuid.UUID]bool{parent: true}
	via := make(map[uuid.UUID]uuid.UUID)
	titles := make(map[uuid.UUID]string)
	stack := []uuid.UUID{parent}

	expanded := 0
	defer func() { metrics.GuardExpandedNodes.Observe(float64(expanded)) }()

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		expanded++

		parents, err := repo.Parents(ctx, n)
		if err != nil {
			return err
		}
		for _, p := range parents {
			titles[p.ID] = p.Title
			if p.ID == child {
				via[child] = n
				return &Error{
					Kind:  KindCycleDetected,
					Chain: cycleChain(ctx, repo, via, titles, parent, child),
					Err:   ErrCycleDetected,
				}
			}
			if visited[p.ID] {
				continue
			}
			visited[p.ID] = true
			via[p.ID] = n
			stack = append(stack, p.ID)
		}
	}
	return nil
}

// cycleChain rebuilds the titles from parent up to child using the
// predecessor links recorded during the walk.
func cycleChain(ctx context.Context, repo Repository, via map[uuid.UUID]uuid.UUID, titles map[uuid.UUID]string, parent, child uuid.UUID) []string {
	if _, ok := titles[parent]; !ok {
		titles[parent] = parent.String()
		if c, err := repo.Category(ctx, parent); err == nil {
			titles[parent] = c.Title
		}
	}

	var rev []string
	for n := child; ; n = via[n] {
		rev = append(rev, titles[n])
		if n == parent {
			break
		}
	}
	chain := make([]string, len(rev))
	for i, t := range rev {
		chain[len(rev)-1-i] = t
	}
	return chain
}
