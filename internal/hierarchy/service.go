// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package hierarchy

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"shopcatalog/internal/metrics"
	"shopcatalog/internal/models"
)

// Edge identifies one parent edge.
type Edge struct {
	ChildID  uuid.UUID `json:"child_id"`
	ParentID uuid.UUID `json:"parent_id"`
}

// Change describes a committed mutation.
type Change struct {
	Op       string    `json:"op"`
	Category uuid.UUID `json:"category_id"`
	Added    []Edge    `json:"added,omitempty"`
	Removed  []Edge    `json:"removed,omitempty"`
}

// Notifier is told about committed mutations. It runs after commit and
// cannot veto or roll back a change.
type Notifier interface {
	EdgesChanged(ctx context.Context, c Change)
}

// Batch is a two-sided relation edit for one category: parents and
// children may be added or removed in one atomic call.
type Batch struct {
	Category       uuid.UUID
	AddParents     []uuid.UUID
	RemoveParents  []uuid.UUID
	AddChildren    []uuid.UUID
	RemoveChildren []uuid.UUID
}

// Relations is a category with its direct neighbours.
type Relations struct {
	Category models.Category   `json:"category"`
	Parents  []models.Category `json:"parents"`
	Children []models.Category `json:"children"`
}

// Service is the hierarchy mutator. Every mutation runs in one Store.WithTx
// scope: endpoint lookups, duplicate checks, the cycle guard and the writes
// all see the same transaction, so validation and commit cannot interleave
// with another mutation.
type Service struct {
	store    Store
	paths    *Enumerator
	notifier Notifier
}

// NewService creates a Service. notifier may be nil.
func NewService(store Store, notifier Notifier) *Service {
	return &Service{
		store:    store,
		paths:    NewEnumerator(store),
		notifier: notifier,
	}
}

// AddParent adds the edge child -> parent.
func (s *Service) AddParent(ctx context.Context, child, parent uuid.UUID) error {
	return s.mutate(ctx, "add parent", child, func(m *mutation) error {
		c, p, err := m.pair(child, parent)
		if err != nil {
			return err
		}
		return m.add(c, p)
	})
}

// AddChild adds child under parent. It is the same edge as
// AddParent(child, parent), requested from the parent's side.
func (s *Service) AddChild(ctx context.Context, parent, child uuid.UUID) error {
	return s.mutate(ctx, "add child", parent, func(m *mutation) error {
		c, p, err := m.pair(child, parent)
		if err != nil {
			return err
		}
		return m.add(c, p)
	})
}

// RemoveParent removes the edge child -> parent. Removing an edge cannot
// create a cycle, so only existence is checked.
func (s *Service) RemoveParent(ctx context.Context, child, parent uuid.UUID) error {
	return s.mutate(ctx, "remove parent", child, func(m *mutation) error {
		c, p, err := m.pair(child, parent)
		if err != nil {
			return err
		}
		return m.remove(c, p)
	})
}

// RemoveChild removes child from under parent.
func (s *Service) RemoveChild(ctx context.Context, parent, child uuid.UUID) error {
	return s.mutate(ctx, "remove child", parent, func(m *mutation) error {
		c, p, err := m.pair(child, parent)
		if err != nil {
			return err
		}
		return m.remove(c, p)
	})
}

// ReplaceParents makes parents the exact parent set of child. Edges no
// longer wanted are removed first, then new edges are validated and added
// in ascending title order. If any addition is rejected nothing changes.
func (s *Service) ReplaceParents(ctx context.Context, child uuid.UUID, parents []uuid.UUID) error {
	return s.mutate(ctx, "replace parents", child, func(m *mutation) error {
		c, err := m.load(child)
		if err != nil {
			return err
		}
		want, err := m.loadAll(dedupe(parents))
		if err != nil {
			return err
		}
		for _, p := range want {
			if p.ID == c.ID {
				return edgeError(KindSelfReference, c, c, ErrSelfReference)
			}
		}

		current, err := m.repo.Parents(m.ctx, c.ID)
		if err != nil {
			return err
		}
		wanted := make(map[uuid.UUID]bool, len(want))
		for _, p := range want {
			wanted[p.ID] = true
		}
		have := make(map[uuid.UUID]bool, len(current))
		var drop []uuid.UUID
		for _, p := range current {
			have[p.ID] = true
			if !wanted[p.ID] {
				drop = append(drop, p.ID)
			}
		}
		if err := m.removeAll(c.ID, drop); err != nil {
			return err
		}

		sortByTitle(want)
		for i := range want {
			if have[want[i].ID] {
				continue
			}
			if err := m.add(c, &want[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Apply performs a two-sided relation edit atomically. A category may not
// appear both as a new parent and a new child, nor be both added and
// removed on the same side; such batches fail with ConflictingRelation
// before anything is written.
func (s *Service) Apply(ctx context.Context, b Batch) error {
	return s.mutate(ctx, "apply relations", b.Category, func(m *mutation) error {
		c, err := m.load(b.Category)
		if err != nil {
			return err
		}
		addParents, addChildren := dedupe(b.AddParents), dedupe(b.AddChildren)
		removeParents, removeChildren := dedupe(b.RemoveParents), dedupe(b.RemoveChildren)

		for _, ids := range [][]uuid.UUID{addParents, addChildren, removeParents, removeChildren} {
			for _, id := range ids {
				if id == c.ID {
					return edgeError(KindSelfReference, c, c, ErrSelfReference)
				}
			}
		}
		conflicts := []struct {
			a, b   []uuid.UUID
			reason string
		}{
			{addParents, addChildren, "requested as both a parent and a child"},
			{addParents, removeParents, "parent requested to be both added and removed"},
			{addChildren, removeChildren, "child requested to be both added and removed"},
		}
		for _, cf := range conflicts {
			if id, ok := intersect(cf.a, cf.b); ok {
				other, err := m.load(id)
				if err != nil {
					return err
				}
				return &Error{
					Kind:   KindConflictingRelation,
					Child:  c.Title,
					Parent: other.Title,
					Reason: cf.reason,
					Err:    ErrConflictingRelation,
				}
			}
		}

		for _, id := range removeParents {
			p, err := m.load(id)
			if err != nil {
				return err
			}
			if err := m.remove(c, p); err != nil {
				return err
			}
		}
		for _, id := range removeChildren {
			ch, err := m.load(id)
			if err != nil {
				return err
			}
			if err := m.remove(ch, c); err != nil {
				return err
			}
		}
		for _, id := range addParents {
			p, err := m.load(id)
			if err != nil {
				return err
			}
			if err := m.add(c, p); err != nil {
				return err
			}
		}
		for _, id := range addChildren {
			ch, err := m.load(id)
			if err != nil {
				return err
			}
			if err := m.add(ch, c); err != nil {
				return err
			}
		}
		return nil
	})
}

// Paths enumerates every root-to-category path of id.
func (s *Service) Paths(ctx context.Context, id uuid.UUID) iter.Seq2[Path, error] {
	return s.paths.Paths(ctx, id)
}

// CollectPaths returns every root-to-category path of id.
func (s *Service) CollectPaths(ctx context.Context, id uuid.UUID) ([]Path, error) {
	return s.paths.Collect(ctx, id)
}

// Relations returns a category with its direct parents and children.
func (s *Service) Relations(ctx context.Context, id uuid.UUID) (*Relations, error) {
	var rel Relations
	err := s.store.View(ctx, func(repo Repository) error {
		c, err := repo.Category(ctx, id)
		if err != nil {
			return notFound(id, err)
		}
		rel.Category = *c
		if rel.Parents, err = repo.Parents(ctx, id); err != nil {
			return err
		}
		rel.Children, err = repo.Children(ctx, id)
		return err
	})
	if err != nil {
		return nil, classify("relations", err)
	}
	return &rel, nil
}

// ParentCandidates lists the categories that could become a new parent of
// id: every category except id itself, its descendants and its current
// parents. The listing is advisory; AddParent revalidates.
func (s *Service) ParentCandidates(ctx context.Context, id uuid.UUID) ([]models.Category, error) {
	var out []models.Category
	err := s.store.View(ctx, func(repo Repository) error {
		if _, err := repo.Category(ctx, id); err != nil {
			return notFound(id, err)
		}

		excluded := map[uuid.UUID]bool{id: true}
		queue := []uuid.UUID{id}
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			children, err := repo.Children(ctx, n)
			if err != nil {
				return err
			}
			for _, ch := range children {
				if !excluded[ch.ID] {
					excluded[ch.ID] = true
					queue = append(queue, ch.ID)
				}
			}
		}
		parents, err := repo.Parents(ctx, id)
		if err != nil {
			return err
		}
		for _, p := range parents {
			excluded[p.ID] = true
		}

		all, err := repo.Categories(ctx)
		if err != nil {
			return err
		}
		for _, c := range all {
			if !excluded[c.ID] {
				out = append(out, c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, classify("parent candidates", err)
	}
	return out, nil
}

// mutate runs fn in a transaction and reports the outcome.
func (s *Service) mutate(ctx context.Context, op string, category uuid.UUID, fn func(*mutation) error) error {
	var m *mutation
	err := s.store.WithTx(ctx, func(repo Repository) error {
		m = &mutation{ctx: ctx, repo: repo, loaded: make(map[uuid.UUID]*models.Category)}
		return fn(m)
	})
	if err != nil {
		err = classify(op, err)
		kind := KindOf(err)
		metrics.EdgeMutations.WithLabelValues(op, string(kind)).Inc()
		if kind == KindStorageUnavailable {
			slog.Error("hierarchy mutation failed", "op", op, "category", category, "error", err)
		} else {
			slog.Debug("hierarchy mutation rejected", "op", op, "kind", kind, "error", err)
		}
		return err
	}

	metrics.EdgeMutations.WithLabelValues(op, "ok").Inc()
	slog.Info("hierarchy updated",
		"op", op,
		"category", category,
		"added", len(m.added),
		"removed", len(m.removed),
	)
	if s.notifier != nil && (len(m.added) > 0 || len(m.removed) > 0) {
		s.notifier.EdgesChanged(ctx, Change{Op: op, Category: category, Added: m.added, Removed: m.removed})
	}
	return nil
}

// mutation is the state of one transactional mutation.
type mutation struct {
	ctx     context.Context
	repo    Repository
	loaded  map[uuid.UUID]*models.Category
	added   []Edge
	removed []Edge
}

func (m *mutation) load(id uuid.UUID) (*models.Category, error) {
	if c, ok := m.loaded[id]; ok {
		return c, nil
	}
	c, err := m.repo.Category(m.ctx, id)
	if err != nil {
		return nil, notFound(id, err)
	}
	m.loaded[id] = c
	return c, nil
}

func (m *mutation) loadAll(ids []uuid.UUID) ([]models.Category, error) {
	out := make([]models.Category, 0, len(ids))
	for _, id := range ids {
		c, err := m.load(id)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

func (m *mutation) pair(child, parent uuid.UUID) (*models.Category, *models.Category, error) {
	c, err := m.load(child)
	if err != nil {
		return nil, nil, err
	}
	p, err := m.load(parent)
	if err != nil {
		return nil, nil, err
	}
	return c, p, nil
}

// add validates and inserts child -> parent.
func (m *mutation) add(child, parent *models.Category) error {
	if child.ID == parent.ID {
		return edgeError(KindSelfReference, child, parent, ErrSelfReference)
	}
	exists, err := m.repo.EdgeExists(m.ctx, child.ID, parent.ID)
	if err != nil {
		return err
	}
	if exists {
		return edgeError(KindDuplicateEdge, child, parent, ErrDuplicateEdge)
	}

	if err := ValidateNewEdge(m.ctx, m.repo, child.ID, parent.ID); err != nil {
		var he *Error
		if errors.As(err, &he) {
			he.Child, he.Parent = child.Title, parent.Title
			return he
		}
		return err
	}

	if err := m.repo.InsertEdge(m.ctx, child.ID, parent.ID); err != nil {
		return storeEdgeError(child, parent, err)
	}
	m.added = append(m.added, Edge{ChildID: child.ID, ParentID: parent.ID})
	return nil
}

// remove deletes child -> parent, which must exist.
func (m *mutation) remove(child, parent *models.Category) error {
	exists, err := m.repo.EdgeExists(m.ctx, child.ID, parent.ID)
	if err != nil {
		return err
	}
	if !exists {
		return edgeError(KindNotFound, child, parent, ErrNotFound)
	}
	if _, err := m.repo.DeleteEdges(m.ctx, child.ID, parent.ID); err != nil {
		return err
	}
	m.removed = append(m.removed, Edge{ChildID: child.ID, ParentID: parent.ID})
	return nil
}

// removeAll deletes edges already known to exist.
func (m *mutation) removeAll(child uuid.UUID, parents []uuid.UUID) error {
	if len(parents) == 0 {
		return nil
	}
	if _, err := m.repo.DeleteEdges(m.ctx, child, parents...); err != nil {
		return err
	}
	for _, p := range parents {
		m.removed = append(m.removed, Edge{ChildID: child, ParentID: p})
	}
	return nil
}

func edgeError(kind Kind, child, parent *models.Category, err error) *Error {
	return &Error{Kind: kind, Child: child.Title, Parent: parent.Title, Err: err}
}

// storeEdgeError attaches titles to a sentinel returned by InsertEdge.
func storeEdgeError(child, parent *models.Category, err error) error {
	switch {
	case errors.Is(err, ErrDuplicateEdge):
		return edgeError(KindDuplicateEdge, child, parent, err)
	case errors.Is(err, ErrSelfReference):
		return edgeError(KindSelfReference, child, parent, err)
	case errors.Is(err, ErrNotFound):
		return edgeError(KindNotFound, child, parent, err)
	}
	return err
}

// notFound reports a missing category by id.
func notFound(id uuid.UUID, err error) error {
	if errors.Is(err, ErrNotFound) {
		return &Error{Kind: KindNotFound, Child: id.String(), Err: err}
	}
	return err
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func intersect(a, b []uuid.UUID) (uuid.UUID, bool) {
	in := make(map[uuid.UUID]bool, len(a))
	for _, id := range a {
		in[id] = true
	}
	for _, id := range b {
		if in[id] {
			return id, true
		}
	}
	return uuid.Nil, false
}

func sortByTitle(cats []models.Category) {
	sort.Slice(cats, func(i, j int) bool { return cats[i].Title < cats[j].Title })
}
