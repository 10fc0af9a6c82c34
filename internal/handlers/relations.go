// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"shopcatalog/internal/hierarchy"
)

// AddParent links {id} under the body's parent_id.
func (c *Catalog) AddParent(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req addParentRequest
	if !decode(w, r, &req) {
		return
	}
	if err := c.hierarchy.AddParent(r.Context(), id, req.ParentID); err != nil {
		writeError(w, r, err)
		return
	}
	c.respondRelations(w, r, id, http.StatusCreated)
}

// ReplaceParents sets the parent list of {id} to exactly parent_ids.
func (c *Catalog) ReplaceParents(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req replaceParentsRequest
	if !decode(w, r, &req) {
		return
	}
	if err := c.hierarchy.ReplaceParents(r.Context(), id, req.ParentIDs); err != nil {
		writeError(w, r, err)
		return
	}
	c.respondRelations(w, r, id, http.StatusOK)
}

// RemoveParent unlinks {id} from {parentID}.
func (c *Catalog) RemoveParent(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	parent, ok := urlID(w, r, "parentID")
	if !ok {
		return
	}
	if err := c.hierarchy.RemoveParent(r.Context(), id, parent); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddChild links the body's child_id under {id}.
func (c *Catalog) AddChild(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req addChildRequest
	if !decode(w, r, &req) {
		return
	}
	if err := c.hierarchy.AddChild(r.Context(), id, req.ChildID); err != nil {
		writeError(w, r, err)
		return
	}
	c.respondRelations(w, r, id, http.StatusCreated)
}

// RemoveChild unlinks {childID} from {id}.
func (c *Catalog) RemoveChild(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	child, ok := urlID(w, r, "childID")
	if !ok {
		return
	}
	if err := c.hierarchy.RemoveChild(r.Context(), id, child); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateRelations applies a two-sided batch edit atomically.
func (c *Catalog) UpdateRelations(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req relationsRequest
	if !decode(w, r, &req) {
		return
	}
	err := c.hierarchy.Apply(r.Context(), hierarchy.Batch{
		Category:       id,
		AddParents:     req.AddParents,
		RemoveParents:  req.RemoveParents,
		AddChildren:    req.AddChildren,
		RemoveChildren: req.RemoveChildren,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	c.respondRelations(w, r, id, http.StatusOK)
}

// respondRelations writes the category's relations after a mutation.
func (c *Catalog) respondRelations(w http.ResponseWriter, r *http.Request, id uuid.UUID, status int) {
	rel, err := c.hierarchy.Relations(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rel.Parents, rel.Children = nonNil(rel.Parents), nonNil(rel.Children)
	writeJSON(w, status, rel)
}
