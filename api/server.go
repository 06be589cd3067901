// Package api implements the HTTP surface layered on top of the storage
// engine's service facade: table creation, record CRUD, scan, and save,
// behind an optional API key and instrumented with Prometheus metrics.
// This surface is an external collaborator of the core engine, not part of
// it.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"plusdb/service"
)

// NewRouter builds the full chi router for a store: an unprotected metrics
// endpoint, and API-key-protected health, table/record and save endpoints
// under /api/v1.
func NewRouter(store *service.Store, cfg ServerConfig) http.Handler {
	metrics := NewMetrics()
	srv := NewServer(store, metrics)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiKeyMiddleware(cfg.APIKey))

		r.Get("/health", metrics.Instrument("GET", "/api/v1/health", srv.handleHealth))

		r.Post("/tables", metrics.Instrument("POST", "/api/v1/tables", srv.handleCreateTable))
		r.Post("/tables/{table}/records", metrics.Instrument("POST", "/api/v1/tables/{table}/records", srv.handleInsert))
		r.Put("/tables/{table}/records", metrics.Instrument("PUT", "/api/v1/tables/{table}/records", srv.handleUpdate))
		r.Get("/tables/{table}/records/one", metrics.Instrument("GET", "/api/v1/tables/{table}/records/one", srv.handleRead))
		r.Delete("/tables/{table}/records/one", metrics.Instrument("DELETE", "/api/v1/tables/{table}/records/one", srv.handleDelete))
		r.Get("/tables/{table}/records", metrics.Instrument("GET", "/api/v1/tables/{table}/records", srv.handleScan))

		r.Post("/save", metrics.Instrument("POST", "/api/v1/save", srv.handleSave))
	})

	return r
}

// ListenAndServe starts the HTTP server, blocking until it exits.
func ListenAndServe(store *service.Store, cfg ServerConfig) error {
	addr := fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port)
	return http.ListenAndServe(addr, NewRouter(store, cfg))
}
