// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Handlers run against the in-memory store so no database is needed.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"shopcatalog/internal/hierarchy"
	"shopcatalog/internal/models"
)

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	Store   *hierarchy.MemoryStore
	Service *hierarchy.Service
	Catalog *Catalog
	ids     map[string]uuid.UUID
}

// newTestEnv creates a catalog backed by a fresh memory store.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := hierarchy.NewMemoryStore()
	svc := hierarchy.NewService(store, nil)
	return &testEnv{
		Store:   store,
		Service: svc,
		Catalog: NewCatalog(svc, store, store, nil),
		ids:     make(map[string]uuid.UUID),
	}
}

// create adds categories by title.
func (e *testEnv) create(t *testing.T, titles ...string) {
	t.Helper()
	for _, title := range titles {
		c, err := e.Store.Create(context.Background(), &models.Category{Title: title})
		if err != nil {
			t.Fatalf("create %q: %v", title, err)
		}
		e.ids[title] = c.ID
	}
}

// link adds child -> parent through the service.
func (e *testEnv) link(t *testing.T, child, parent string) {
	t.Helper()
	if err := e.Service.AddParent(context.Background(), e.ids[child], e.ids[parent]); err != nil {
		t.Fatalf("link %s -> %s: %v", child, parent, err)
	}
}

// id returns the id of a titled category as a string.
func (e *testEnv) id(title string) string {
	return e.ids[title].String()
}

// withChiURLParams sets chi URL parameters on the request context, given as
// key/value pairs.
func withChiURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// jsonRequest builds a request with a JSON-encoded body.
func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// decodeBody decodes a JSON response body into v.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}
