// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"shopcatalog/internal/hierarchy"
	"shopcatalog/internal/models"
)

// Edge log page sizes.
const (
	defaultLogLimit = 50
	maxLogLimit     = 500
)

// pathsResponse is the body of GET /api/categories/{id}/paths.
type pathsResponse struct {
	Title string   `json:"title"`
	Count int      `json:"count"`
	Paths []string `json:"paths"`
}

// ListCategories returns every category ordered by title, or the children
// of ?parent=<id>.
func (c *Catalog) ListCategories(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("parent"); raw != "" {
		parent, err := uuid.Parse(raw)
		if err != nil {
			badRequest(w, "invalid_id", "invalid parent")
			return
		}
		rel, err := c.hierarchy.Relations(r.Context(), parent)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(rel.Children))
		return
	}

	items, err := c.categories.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

// CreateCategory creates a root category.
func (c *Catalog) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if !decode(w, r, &req) {
		return
	}

	created, err := c.categories.Create(r.Context(), &models.Category{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("category created", "id", created.ID, "title", created.Title)
	w.Header().Set("Location", "/api/categories/"+created.ID.String())
	writeJSON(w, http.StatusCreated, created)
}

// GetCategory returns a category with its direct parents and children.
func (c *Catalog) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	rel, err := c.hierarchy.Relations(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rel.Parents, rel.Children = nonNil(rel.Parents), nonNil(rel.Children)
	writeJSON(w, http.StatusOK, rel)
}

// UpdateCategory renames a category or edits its description. Edges are
// untouched.
func (c *Catalog) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req updateCategoryRequest
	if !decode(w, r, &req) {
		return
	}

	cat := &models.Category{ID: id, Title: req.Title, Description: req.Description}
	if err := c.categories.Update(r.Context(), cat); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := c.categories.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("category updated", "id", id, "title", updated.Title)
	writeJSON(w, http.StatusOK, updated)
}

// DeleteCategory removes a category. Its edges go with it.
func (c *Catalog) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := c.categories.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("category deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// Paths lists every root-to-category path as formatted strings.
func (c *Catalog) Paths(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	cat, err := c.categories.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := pathsResponse{Title: cat.Title, Paths: []string{}}
	for p, err := range c.hierarchy.Paths(r.Context(), id) {
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp.Paths = append(resp.Paths, p.String())
	}
	resp.Count = len(resp.Paths)
	writeJSON(w, http.StatusOK, resp)
}

// ParentCandidates lists categories that may be added as parents.
func (c *Catalog) ParentCandidates(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	items, err := c.hierarchy.ParentCandidates(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

// EdgeLog returns recent edge mutations, newest first.
func (c *Catalog) EdgeLog(w http.ResponseWriter, r *http.Request) {
	limit := defaultLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(w, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = min(n, maxLogLimit)
	}

	entries, err := c.edgeLog.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(entries))
}

// Version reports the hierarchy change counter, or 0 without a change feed.
func (c *Catalog) Version(w http.ResponseWriter, r *http.Request) {
	var v int64
	if c.versions != nil {
		var err error
		if v, err = c.versions.Version(r.Context()); err != nil {
			writeError(w, r, hierarchy.ErrStorageUnavailable)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]int64{"version": v})
}

// nonNil makes empty lists encode as [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
