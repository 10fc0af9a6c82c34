// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxTitleLen is the maximum number of characters in a category title.
const MaxTitleLen = 200

// Title validation errors.
var (
	ErrTitleEmpty   = errors.New("title is required")
	ErrTitlePadded  = errors.New("title must not start or end with whitespace")
	ErrTitleTooLong = errors.New("title is too long (max 200 characters)")
	ErrTitleTaken   = errors.New("title is already used by another category")
)

// Category is a named node of the catalog hierarchy. A category may have
// any number of parents and children; the parent relation is stored as
// ParentEdge rows and must stay acyclic.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidateTitle checks that a title is non-empty, not padded with
// whitespace, and within MaxTitleLen.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleEmpty
	}
	if strings.TrimSpace(title) != title {
		return ErrTitlePadded
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return ErrTitleTooLong
	}
	return nil
}

// ParentEdge is a directed relation meaning Child is nested under Parent.
// Edges are immutable: changing a relationship is a delete plus an insert.
type ParentEdge struct {
	ChildID   uuid.UUID `json:"child_id"`
	ParentID  uuid.UUID `json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Edge log actions.
const (
	EdgeActionAdd    = "add"
	EdgeActionRemove = "remove"
)

// EdgeLogEntry is one audited edge mutation.
type EdgeLogEntry struct {
	ID         int64     `json:"id"`
	Action     string    `json:"action"`
	ChildID    uuid.UUID `json:"child_id"`
	ParentID   uuid.UUID `json:"parent_id"`
	RecordedAt time.Time `json:"recorded_at"`
}
