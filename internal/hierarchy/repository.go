// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package hierarchy is the category hierarchy graph engine. It keeps the
// many-to-many "parent of" relation between categories acyclic under
// concurrent edits and enumerates every root-to-category title path.
//
// Storage is reached only through Store and Repository. A Store provides
// two scopes: WithTx for mutations, which must be serializable with respect
// to every other WithTx (the cycle guard's reads and the insert it protects
// run in one transaction), and View for reporting reads, which may be stale.
package hierarchy

import (
	"context"

	"github.com/google/uuid"

	"shopcatalog/internal/models"
)

// Repository is the query surface the engine needs from a Relation Store.
// All category lists are ordered by ascending title.
type Repository interface {
	// Category returns one category or an error matching ErrNotFound.
	Category(ctx context.Context, id uuid.UUID) (*models.Category, error)
	// Categories returns every category.
	Categories(ctx context.Context) ([]models.Category, error)
	// Parents returns the direct parents of child.
	Parents(ctx context.Context, child uuid.UUID) ([]models.Category, error)
	// Children returns the direct children of parent.
	Children(ctx context.Context, parent uuid.UUID) ([]models.Category, error)
	EdgeExists(ctx context.Context, child, parent uuid.UUID) (bool, error)
	// InsertEdge adds one edge. It fails with ErrDuplicateEdge if the pair
	// exists and ErrSelfReference if child == parent.
	InsertEdge(ctx context.Context, child, parent uuid.UUID) error
	// DeleteEdges removes the given parents of child and returns how many
	// edges were removed.
	DeleteEdges(ctx context.Context, child uuid.UUID, parents ...uuid.UUID) (int64, error)
}

// Store scopes Repository access.
type Store interface {
	// WithTx runs fn in one atomic unit of work. If fn returns an error, or
	// ctx is cancelled before commit, nothing fn wrote is kept.
	WithTx(ctx context.Context, fn func(Repository) error) error
	// View runs fn against a read-only snapshot.
	View(ctx context.Context, fn func(Repository) error) error
}
