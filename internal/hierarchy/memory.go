// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"shopcatalog/internal/models"
)

var errReadOnly = errors.New("write in a read-only scope")

// MemoryStore is an in-process Relation Store. Write transactions hold an
// exclusive lock and work on a copy of the edge set that replaces the
// committed one only when fn succeeds and ctx is still live. View holds a
// shared lock for the duration of fn, so a View callback (including a
// ranged Paths sequence) must not start a mutation on the same store.
type MemoryStore struct {
	mu         sync.RWMutex
	categories map[uuid.UUID]models.Category
	// edges maps child -> parent -> creation time.
	edges map[uuid.UUID]map[uuid.UUID]time.Time
	log   []models.EdgeLogEntry
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		categories: make(map[uuid.UUID]models.Category),
		edges:      make(map[uuid.UUID]map[uuid.UUID]time.Time),
	}
}

// WithTx implements Store.
func (s *MemoryStore) WithTx(ctx context.Context, fn func(Repository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryRepo{
		categories: s.categories,
		edges:      cloneEdges(s.edges),
		writable:   true,
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.edges = tx.edges
	for _, e := range tx.log {
		e.ID = int64(len(s.log) + 1)
		s.log = append(s.log, e)
	}
	return nil
}

// View implements Store.
func (s *MemoryStore) View(ctx context.Context, fn func(Repository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&memoryRepo{categories: s.categories, edges: s.edges})
}

// List returns every category ordered by title.
func (s *MemoryStore) List(ctx context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return (&memoryRepo{categories: s.categories}).Categories(ctx)
}

// FindByID returns a category or an error matching ErrNotFound.
func (s *MemoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return (&memoryRepo{categories: s.categories}).Category(ctx, id)
}

// FindByTitle returns the category with the given title.
func (s *MemoryStore) FindByTitle(_ context.Context, title string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.Title == title {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("category %q: %w", title, ErrNotFound)
}

// Create stores a new category. Titles are validated and must be unique.
func (s *MemoryStore) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	if err := models.ValidateTitle(c.Title); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if existing.Title == c.Title {
			return nil, models.ErrTitleTaken
		}
	}
	now := time.Now()
	created := models.Category{
		ID:          uuid.New(),
		Title:       c.Title,
		Description: c.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.categories[created.ID] = created
	return &created, nil
}

// Update changes a category's title and description.
func (s *MemoryStore) Update(_ context.Context, c *models.Category) error {
	if err := models.ValidateTitle(c.Title); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.categories[c.ID]
	if !ok {
		return fmt.Errorf("category %s: %w", c.ID, ErrNotFound)
	}
	for id, existing := range s.categories {
		if id != c.ID && existing.Title == c.Title {
			return models.ErrTitleTaken
		}
	}
	current.Title = c.Title
	current.Description = c.Description
	current.UpdatedAt = time.Now()
	s.categories[c.ID] = current
	return nil
}

// Delete removes a category and every edge touching it.
func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	delete(s.categories, id)
	delete(s.edges, id)
	for _, parents := range s.edges {
		delete(parents, id)
	}
	return nil
}

// Recent returns the latest edge log entries, newest first.
func (s *MemoryStore) Recent(_ context.Context, limit int) ([]models.EdgeLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.EdgeLogEntry
	for i := len(s.log) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.log[i])
	}
	return out, nil
}

func cloneEdges(edges map[uuid.UUID]map[uuid.UUID]time.Time) map[uuid.UUID]map[uuid.UUID]time.Time {
	out := make(map[uuid.UUID]map[uuid.UUID]time.Time, len(edges))
	for child, parents := range edges {
		cp := make(map[uuid.UUID]time.Time, len(parents))
		for p, t := range parents {
			cp[p] = t
		}
		out[child] = cp
	}
	return out
}

// memoryRepo is a Repository over one MemoryStore scope.
type memoryRepo struct {
	categories map[uuid.UUID]models.Category
	edges      map[uuid.UUID]map[uuid.UUID]time.Time
	writable   bool
	log        []models.EdgeLogEntry
}

func (r *memoryRepo) Category(_ context.Context, id uuid.UUID) (*models.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	return &c, nil
}

func (r *memoryRepo) Categories(_ context.Context) ([]models.Category, error) {
	out := make([]models.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	sortByTitle(out)
	return out, nil
}

func (r *memoryRepo) Parents(_ context.Context, child uuid.UUID) ([]models.Category, error) {
	var out []models.Category
	for p := range r.edges[child] {
		out = append(out, r.categories[p])
	}
	sortByTitle(out)
	return out, nil
}

func (r *memoryRepo) Children(_ context.Context, parent uuid.UUID) ([]models.Category, error) {
	var out []models.Category
	for child, parents := range r.edges {
		if _, ok := parents[parent]; ok {
			out = append(out, r.categories[child])
		}
	}
	sortByTitle(out)
	return out, nil
}

func (r *memoryRepo) EdgeExists(_ context.Context, child, parent uuid.UUID) (bool, error) {
	_, ok := r.edges[child][parent]
	return ok, nil
}

func (r *memoryRepo) InsertEdge(_ context.Context, child, parent uuid.UUID) error {
	if !r.writable {
		return errReadOnly
	}
	if child == parent {
		return ErrSelfReference
	}
	if _, ok := r.categories[child]; !ok {
		return fmt.Errorf("category %s: %w", child, ErrNotFound)
	}
	if _, ok := r.categories[parent]; !ok {
		return fmt.Errorf("category %s: %w", parent, ErrNotFound)
	}
	parents := r.edges[child]
	if parents == nil {
		parents = make(map[uuid.UUID]time.Time)
		r.edges[child] = parents
	}
	if _, ok := parents[parent]; ok {
		return ErrDuplicateEdge
	}
	now := time.Now()
	parents[parent] = now
	r.record(models.EdgeActionAdd, child, parent, now)
	return nil
}

func (r *memoryRepo) DeleteEdges(_ context.Context, child uuid.UUID, parents ...uuid.UUID) (int64, error) {
	if !r.writable {
		return 0, errReadOnly
	}
	var n int64
	now := time.Now()
	for _, p := range parents {
		if _, ok := r.edges[child][p]; ok {
			delete(r.edges[child], p)
			r.record(models.EdgeActionRemove, child, p, now)
			n++
		}
	}
	if len(r.edges[child]) == 0 {
		delete(r.edges, child)
	}
	return n, nil
}

func (r *memoryRepo) record(action string, child, parent uuid.UUID, at time.Time) {
	r.log = append(r.log, models.EdgeLogEntry{
		Action:     action,
		ChildID:    child,
		ParentID:   parent,
		RecordedAt: at,
	})
}
