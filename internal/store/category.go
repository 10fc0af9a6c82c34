// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"shopcatalog/internal/hierarchy"
	"shopcatalog/internal/models"
)

// CategoryStore manages category records. Edges are not written here; they
// belong to EdgeStore and go through the hierarchy service.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, title, description, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(&c.ID, &c.Title, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// scanCategories drains rows into a slice.
func scanCategories(rows *sql.Rows) ([]models.Category, error) {
	defer rows.Close()
	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// List returns all categories ordered by title.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return scanCategories(rows)
}

// FindByID retrieves a category by ID. A missing category is reported as
// hierarchy.ErrNotFound.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %s: %w", id, hierarchy.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindByTitle retrieves a category by its unique title.
func (s *CategoryStore) FindByTitle(ctx context.Context, title string) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE title = $1`, title)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %q: %w", title, hierarchy.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find category by title: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns it.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	if err := models.ValidateTitle(c.Title); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (title, description)
		VALUES ($1, $2)
		RETURNING `+categoryColumns,
		c.Title, c.Description,
	)
	result, err := scanCategory(row)
	if err != nil {
		if pgCode(err) == codeUniqueViolation {
			return nil, models.ErrTitleTaken
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update modifies an existing category's title and description.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) error {
	if err := models.ValidateTitle(c.Title); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE categories SET title = $1, description = $2, updated_at = NOW()
		WHERE id = $3
	`, c.Title, c.Description, c.ID)
	if err != nil {
		if pgCode(err) == codeUniqueViolation {
			return models.ErrTitleTaken
		}
		return fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("category %s: %w", c.ID, hierarchy.ErrNotFound)
	}
	return nil
}

// Delete removes a category by ID. Its edges are removed by ON DELETE CASCADE.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("category %s: %w", id, hierarchy.ErrNotFound)
	}
	return nil
}
