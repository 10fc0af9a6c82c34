// Package router sets up all HTTP routes and middleware chains for the
// catalog API. Reads are open; mutating routes sit behind the per-client
// rate limiter.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"shopcatalog/internal/handlers"
	"shopcatalog/internal/metrics"
	"shopcatalog/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. limiter may be nil to disable rate limiting.
func New(catalog *handlers.Catalog, limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/hierarchy/version", catalog.Version)
		r.Get("/edge-log", catalog.EdgeLog)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", catalog.ListCategories)
			r.With(limit(limiter)).Post("/", catalog.CreateCategory)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", catalog.GetCategory)
				r.Get("/paths", catalog.Paths)
				r.Get("/parent-candidates", catalog.ParentCandidates)

				// Mutations.
				r.Group(func(r chi.Router) {
					r.Use(limit(limiter))

					r.Put("/", catalog.UpdateCategory)
					r.Delete("/", catalog.DeleteCategory)

					r.Post("/parents", catalog.AddParent)
					r.Put("/parents", catalog.ReplaceParents)
					r.Delete("/parents/{parentID}", catalog.RemoveParent)

					r.Post("/children", catalog.AddChild)
					r.Delete("/children/{childID}", catalog.RemoveChild)

					r.Patch("/relations", catalog.UpdateRelations)
				})
			})
		})
	})

	return r
}

// limit returns the rate-limit middleware, or a pass-through when limiter
// is nil.
func limit(limiter *middleware.RateLimiter) func(http.Handler) http.Handler {
	if limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return limiter.Middleware
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
