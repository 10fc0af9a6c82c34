// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"shopcatalog/internal/database"
	"shopcatalog/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "shopcatalog")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "shopcatalog")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// createCategories inserts categories with a per-test title prefix and
// removes them (and, by cascade, their edges) when the test finishes.
func createCategories(t *testing.T, db *sql.DB, titles ...string) map[string]uuid.UUID {
	t.Helper()
	prefix := "test-" + uuid.NewString()[:8] + " "
	s := NewCategoryStore(db)
	ids := make(map[string]uuid.UUID, len(titles))
	for _, title := range titles {
		c, err := s.Create(context.Background(), &models.Category{Title: prefix + title})
		if err != nil {
			t.Fatalf("create %q: %v", title, err)
		}
		ids[title] = c.ID
	}
	t.Cleanup(func() { cleanCategories(t, db, ids) })
	return ids
}

// cleanCategories removes test categories and their edge log rows.
func cleanCategories(t *testing.T, db *sql.DB, ids map[string]uuid.UUID) {
	t.Helper()
	for _, id := range ids {
		db.Exec("DELETE FROM category_edge_log WHERE child_id = $1 OR parent_id = $1", id)
		db.Exec("DELETE FROM categories WHERE id = $1", id)
	}
}
