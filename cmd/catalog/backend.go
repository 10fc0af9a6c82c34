package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"shopcatalog/internal/cache"
	"shopcatalog/internal/config"
	"shopcatalog/internal/database"
	"shopcatalog/internal/handlers"
	"shopcatalog/internal/hierarchy"
	"shopcatalog/internal/models"
	"shopcatalog/internal/store"
)

// categoryStore is what the commands need from a category store.
type categoryStore interface {
	handlers.Categories
	FindByTitle(ctx context.Context, title string) (*models.Category, error)
}

// backend bundles the stores and service for the configured storage.
type backend struct {
	categories categoryStore
	edgeLog    handlers.EdgeLog
	service    *hierarchy.Service
	versions   handlers.VersionSource
	closers    []io.Closer
}

// openBackend connects the configured store. With feed set, a reachable
// Valkey receives the change feed; an unreachable one is logged and skipped.
// The memory store starts seeded so the API is usable without a database.
func openBackend(ctx context.Context, cfg *config.Config, feed bool) (*backend, error) {
	b := &backend{}

	var notifier hierarchy.Notifier
	if feed {
		client, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Warn("valkey unavailable, hierarchy change feed disabled", "error", err)
		} else {
			pub := cache.NewEdgePublisher(client)
			notifier, b.versions = pub, pub
			b.closers = append(b.closers, client)
		}
	}

	switch cfg.Store {
	case config.StoreMemory:
		mem := hierarchy.NewMemoryStore()
		b.categories, b.edgeLog = mem, mem
		b.service = hierarchy.NewService(mem, notifier)
		if err := database.Seed(ctx, mem, b.service); err != nil {
			return nil, multierr.Append(err, b.Close())
		}
		slog.Info("using in-memory store, data is lost on exit")

	default:
		db, err := openDB(cfg)
		if err != nil {
			return nil, multierr.Append(err, b.Close())
		}
		b.closers = append(b.closers, db)
		b.categories = store.NewCategoryStore(db)
		b.edgeLog = store.NewEdgeLogStore(db)
		b.service = hierarchy.NewService(store.NewEdgeStore(db, cfg.LockTimeout, cfg.TxTimeout), notifier)
	}
	return b, nil
}

// openDB connects to PostgreSQL and applies pending migrations.
func openDB(cfg *config.Config) (*sql.DB, error) {
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, multierr.Append(err, db.Close())
	}
	return db, nil
}

// resolve finds a category by title, falling back to a UUID.
func (b *backend) resolve(ctx context.Context, ref string) (*models.Category, error) {
	c, err := b.categories.FindByTitle(ctx, ref)
	if err == nil {
		return c, nil
	}
	if id, perr := uuid.Parse(ref); perr == nil {
		return b.categories.FindByID(ctx, id)
	}
	return nil, fmt.Errorf("category %q: %w", ref, err)
}

// Close releases connections in reverse order of opening.
func (b *backend) Close() error {
	var err error
	for i := len(b.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, b.closers[i].Close())
	}
	b.closers = nil
	return err
}
