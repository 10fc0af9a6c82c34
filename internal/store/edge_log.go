// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// edge_log.go records edge mutations in the database for audit and
// debugging. Entries are written inside the mutation's transaction, so the
// log only ever contains committed changes.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"shopcatalog/internal/models"
)

// EdgeLogStore reads the edge audit log.
type EdgeLogStore struct {
	db *sql.DB
}

// NewEdgeLogStore creates a new EdgeLogStore.
func NewEdgeLogStore(db *sql.DB) *EdgeLogStore {
	return &EdgeLogStore{db: db}
}

// logEdge records one edge mutation through q.
func logEdge(ctx context.Context, q querier, action string, child, parent uuid.UUID) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO category_edge_log (action, child_id, parent_id)
		VALUES ($1, $2, $3)
	`, action, child, parent)
	if err != nil {
		return fmt.Errorf("log edge %s: %w", action, err)
	}
	return nil
}

// Recent returns the most recent edge mutations, newest first. Limited to
// the specified count.
func (s *EdgeLogStore) Recent(ctx context.Context, limit int) ([]models.EdgeLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action, child_id, parent_id, recorded_at
		FROM category_edge_log
		ORDER BY recorded_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query edge log: %w", err)
	}
	defer rows.Close()

	var entries []models.EdgeLogEntry
	for rows.Next() {
		var e models.EdgeLogEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.ChildID, &e.ParentID, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan edge log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
