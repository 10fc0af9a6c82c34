// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics holds the Prometheus collectors for the hierarchy engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EdgeMutations counts mutator calls by operation and result kind
	// ("ok" or a hierarchy error kind).
	EdgeMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_edge_mutations_total",
		Help: "Hierarchy mutations by operation and result",
	}, []string{"op", "result"})

	// GuardExpandedNodes records how many categories each cycle check expanded.
	GuardExpandedNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_cycle_guard_expanded_nodes",
		Help:    "Categories expanded per cycle guard validation",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 1000},
	})

	// PathEnumerations counts path enumerations by result.
	PathEnumerations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_path_enumerations_total",
		Help: "Path enumerations by result",
	}, []string{"result"})

	// PathsPerCategory records the number of paths produced by completed
	// enumerations.
	PathsPerCategory = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_paths_per_category",
		Help:    "Root-to-category paths per completed enumeration",
		Buckets: []float64{1, 2, 4, 8, 16, 64, 256, 1024},
	})

	// HTTPRequests counts served requests by route pattern and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	// HTTPDuration records request latency by route pattern.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// RateLimited counts requests rejected by the rate limiter.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_http_rate_limited_total",
		Help: "Requests rejected with 429",
	})
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
