// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// edge.go implements the hierarchy Relation Store on PostgreSQL.
//
// Mutations run in SERIALIZABLE transactions that also take
// SHARE ROW EXCLUSIVE on category_parents. That lock mode conflicts with
// itself and with the row locks of plain writes, but not with readers, so
// at most one edge mutation validates and commits at a time while path
// enumeration keeps reading.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/multierr"

	"shopcatalog/internal/hierarchy"
	"shopcatalog/internal/models"
)

// PostgreSQL error codes the store maps to hierarchy errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// pgCode returns the SQLSTATE of err, or "".
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// EdgeStore is the PostgreSQL implementation of hierarchy.Store.
type EdgeStore struct {
	db          *sql.DB
	lockTimeout time.Duration
	txTimeout   time.Duration
}

// NewEdgeStore creates an EdgeStore. lockTimeout bounds how long a mutation
// waits for the edge table lock and txTimeout bounds the whole mutation;
// zero disables either bound.
func NewEdgeStore(db *sql.DB, lockTimeout, txTimeout time.Duration) *EdgeStore {
	return &EdgeStore{db: db, lockTimeout: lockTimeout, txTimeout: txTimeout}
}

// WithTx implements hierarchy.Store.
func (s *EdgeStore) WithTx(ctx context.Context, fn func(hierarchy.Repository) error) (err error) {
	if s.txTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w: %w", hierarchy.ErrStorageUnavailable, err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = multierr.Append(err, fmt.Errorf("rollback: %w", rbErr))
		}
	}()

	// Neither statement takes a snapshot, so the serializable snapshot
	// starts after the lock is granted and sees every earlier commit.
	if s.lockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", s.lockTimeout.Milliseconds())
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("set lock timeout: %w: %w", hierarchy.ErrStorageUnavailable, err)
		}
	}
	if _, err = tx.ExecContext(ctx, `LOCK TABLE category_parents IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return fmt.Errorf("lock edges: %w: %w", hierarchy.ErrStorageUnavailable, err)
	}

	if err = fn(&pgRepo{q: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w: %w", hierarchy.ErrStorageUnavailable, err)
	}
	return nil
}

// View implements hierarchy.Store with a read-only READ COMMITTED
// transaction.
func (s *EdgeStore) View(ctx context.Context, fn func(hierarchy.Repository) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("begin read tx: %w: %w", hierarchy.ErrStorageUnavailable, err)
	}
	defer tx.Rollback()

	if err := fn(&pgRepo{q: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

// pgRepo implements hierarchy.Repository over one transaction.
type pgRepo struct {
	q querier
}

func (r *pgRepo) Category(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %s: %w", id, hierarchy.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *pgRepo) Categories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return scanCategories(rows)
}

func (r *pgRepo) Parents(ctx context.Context, child uuid.UUID) ([]models.Category, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT c.id, c.title, c.description, c.created_at, c.updated_at
		FROM category_parents e
		JOIN categories c ON c.id = e.parent_id
		WHERE e.child_id = $1
		ORDER BY c.title
	`, child)
	if err != nil {
		return nil, fmt.Errorf("list parents: %w", err)
	}
	return scanCategories(rows)
}

func (r *pgRepo) Children(ctx context.Context, parent uuid.UUID) ([]models.Category, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT c.id, c.title, c.description, c.created_at, c.updated_at
		FROM category_parents e
		JOIN categories c ON c.id = e.child_id
		WHERE e.parent_id = $1
		ORDER BY c.title
	`, parent)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	return scanCategories(rows)
}

func (r *pgRepo) EdgeExists(ctx context.Context, child, parent uuid.UUID) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM category_parents WHERE child_id = $1 AND parent_id = $2)
	`, child, parent).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("edge exists: %w", err)
	}
	return exists, nil
}

func (r *pgRepo) InsertEdge(ctx context.Context, child, parent uuid.UUID) error {
	if child == parent {
		return hierarchy.ErrSelfReference
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO category_parents (child_id, parent_id) VALUES ($1, $2)
	`, child, parent)
	if err != nil {
		switch pgCode(err) {
		case codeUniqueViolation:
			return fmt.Errorf("insert edge: %w", hierarchy.ErrDuplicateEdge)
		case codeCheckViolation:
			return fmt.Errorf("insert edge: %w", hierarchy.ErrSelfReference)
		case codeForeignKeyViolation:
			return fmt.Errorf("insert edge: %w", hierarchy.ErrNotFound)
		}
		return fmt.Errorf("insert edge: %w", err)
	}
	return logEdge(ctx, r.q, models.EdgeActionAdd, child, parent)
}

func (r *pgRepo) DeleteEdges(ctx context.Context, child uuid.UUID, parents ...uuid.UUID) (int64, error) {
	if len(parents) == 0 {
		return 0, nil
	}
	ids := make([]string, len(parents))
	for i, p := range parents {
		ids[i] = p.String()
	}
	rows, err := r.q.QueryContext(ctx, `
		DELETE FROM category_parents
		WHERE child_id = $1 AND parent_id = ANY($2::uuid[])
		RETURNING parent_id
	`, child, ids)
	if err != nil {
		return 0, fmt.Errorf("delete edges: %w", err)
	}
	var removed []uuid.UUID
	for rows.Next() {
		var p uuid.UUID
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan deleted edge: %w", err)
		}
		removed = append(removed, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("delete edges: %w", err)
	}

	for _, p := range removed {
		if err := logEdge(ctx, r.q, models.EdgeActionRemove, child, p); err != nil {
			return 0, err
		}
	}
	return int64(len(removed)), nil
}
