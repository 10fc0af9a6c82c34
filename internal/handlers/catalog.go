// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the JSON HTTP handlers for the catalog API.
// Handlers receive their dependencies through the Catalog struct and speak
// only to interfaces, so the same handlers serve the PostgreSQL and the
// in-memory stores.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"shopcatalog/internal/hierarchy"
	"shopcatalog/internal/models"
)

// Hierarchy is the edge mutator and path reader.
type Hierarchy interface {
	AddParent(ctx context.Context, child, parent uuid.UUID) error
	AddChild(ctx context.Context, parent, child uuid.UUID) error
	RemoveParent(ctx context.Context, child, parent uuid.UUID) error
	RemoveChild(ctx context.Context, parent, child uuid.UUID) error
	ReplaceParents(ctx context.Context, child uuid.UUID, parents []uuid.UUID) error
	Apply(ctx context.Context, b hierarchy.Batch) error
	Paths(ctx context.Context, id uuid.UUID) iter.Seq2[hierarchy.Path, error]
	Relations(ctx context.Context, id uuid.UUID) (*hierarchy.Relations, error)
	ParentCandidates(ctx context.Context, id uuid.UUID) ([]models.Category, error)
}

// Categories is the category record store.
type Categories interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// EdgeLog reads the edge audit trail.
type EdgeLog interface {
	Recent(ctx context.Context, limit int) ([]models.EdgeLogEntry, error)
}

// VersionSource reports the hierarchy change counter.
type VersionSource interface {
	Version(ctx context.Context) (int64, error)
}

// Catalog groups the category and hierarchy handlers.
type Catalog struct {
	hierarchy  Hierarchy
	categories Categories
	edgeLog    EdgeLog
	versions   VersionSource
}

// NewCatalog creates the handler group. versions may be nil when no change
// feed is configured.
func NewCatalog(h Hierarchy, categories Categories, edgeLog EdgeLog, versions VersionSource) *Catalog {
	return &Catalog{
		hierarchy:  h,
		categories: categories,
		edgeLog:    edgeLog,
		versions:   versions,
	}
}

// errorResponse is the body of every non-2xx API response.
type errorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Chain   []string `json:"chain,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response encode error", "error", err)
	}
}

// writeError maps err to a status and error body. Hierarchy errors carry
// their kind; title validation errors are 422; anything else is a 503 from
// the storage layer.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, body)
}

// errorStatus is the error-to-HTTP mapping used by writeError.
func errorStatus(err error) (int, errorResponse) {
	switch {
	case errors.Is(err, models.ErrTitleTaken):
		return http.StatusConflict, errorResponse{Error: "title_taken", Message: err.Error()}
	case errors.Is(err, models.ErrTitleEmpty),
		errors.Is(err, models.ErrTitlePadded),
		errors.Is(err, models.ErrTitleTooLong):
		return http.StatusUnprocessableEntity, errorResponse{Error: "invalid_title", Message: err.Error()}
	}

	kind := hierarchy.KindOf(err)
	body := errorResponse{Error: string(kind), Message: err.Error()}
	var herr *hierarchy.Error
	if errors.As(err, &herr) {
		body.Chain = herr.Chain
	}

	switch kind {
	case hierarchy.KindSelfReference, hierarchy.KindConflictingRelation:
		return http.StatusUnprocessableEntity, body
	case hierarchy.KindDuplicateEdge, hierarchy.KindCycleDetected:
		return http.StatusConflict, body
	case hierarchy.KindNotFound:
		return http.StatusNotFound, body
	}
	body.Message = "storage unavailable"
	return http.StatusServiceUnavailable, body
}

// badRequest writes a 400 with the given code and message.
func badRequest(w http.ResponseWriter, code, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: code, Message: message})
}

// urlID parses a UUID route parameter, writing a 400 on failure.
func urlID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		badRequest(w, "invalid_id", "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
