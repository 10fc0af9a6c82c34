package database

import (
	"context"
	"fmt"
	"log/slog"

	"shopcatalog/internal/hierarchy"
	"shopcatalog/internal/models"
)

// CategoryWriter is the category surface Seed needs.
type CategoryWriter interface {
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
}

// seedCategories are created in order; seedEdges are child -> parent pairs
// by title.
var (
	seedCategories = []models.Category{
		{Title: "Electronics", Description: "Consumer electronics"},
		{Title: "Phones", Description: "Mobile and landline phones"},
		{Title: "Accessories", Description: "Cases, chargers and cables"},
		{Title: "Phone Accessories"},
		{Title: "Gifts"},
	}
	seedEdges = [][2]string{
		{"Phones", "Electronics"},
		{"Accessories", "Electronics"},
		{"Phone Accessories", "Phones"},
		{"Phone Accessories", "Accessories"},
		{"Phone Accessories", "Gifts"},
	}
)

// Seed populates an empty catalog with a small development hierarchy.
// Edges go through the hierarchy service like any other mutation.
func Seed(ctx context.Context, cats CategoryWriter, svc *hierarchy.Service) error {
	existing, err := cats.List(ctx)
	if err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}
	if len(existing) > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	ids := make(map[string]models.Category, len(seedCategories))
	for i := range seedCategories {
		c, err := cats.Create(ctx, &seedCategories[i])
		if err != nil {
			return fmt.Errorf("seed category %q: %w", seedCategories[i].Title, err)
		}
		ids[c.Title] = *c
	}
	for _, e := range seedEdges {
		if err := svc.AddParent(ctx, ids[e[0]].ID, ids[e[1]].ID); err != nil {
			return fmt.Errorf("seed edge %s -> %s: %w", e[0], e[1], err)
		}
	}

	slog.Info("database seeded with sample categories",
		"categories", len(seedCategories),
		"edges", len(seedEdges),
	)
	return nil
}
