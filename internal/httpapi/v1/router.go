// Package v1 wires the HTTP surface of the net-worth service.
// It keeps handlers thin, delegating business rules to the service layer.
package v1

import (
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tinoosan/networth/internal/finance"
	"github.com/tinoosan/networth/internal/service/dashboard"
	"github.com/tinoosan/networth/internal/service/snapshot"
)

// Server wires handlers and middleware using Chi.
type Server struct {
	snapshots snapshot.Service
	dashboard dashboard.Service
	store     Store
	present   presenter
	log       *slog.Logger
	rt        *chi.Mux
}

// New constructs the HTTP server with routes and middleware. pub may be nil. Amounts
// are rendered in the formatter's currency and locale.
func New(store Store, pub snapshot.Publisher, format finance.Formatter, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)

	opts := []snapshot.Option{
		snapshot.WithIdempotency(store),
		snapshot.WithObserver(classificationObserver{}),
		snapshot.WithLogger(logger),
	}
	if pub != nil {
		opts = append(opts, snapshot.WithPublisher(pub))
	}
	s := &Server{
		snapshots: snapshot.New(store, store, opts...),
		dashboard: dashboard.New(store, format),
		store:     store,
		present:   newPresenter(format, logger),
		log:       logger,
		rt:        r,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints and attaches any per-route middleware.
func (s *Server) routes() {
	// Snapshots (v1)
	s.rt.With(s.validatePostSnapshot()).Post("/v1/snapshots", s.postSnapshot)
	s.rt.With(s.validateOwner()).Get("/v1/snapshots", s.listSnapshots)
	s.rt.With(s.validateOwner()).Get("/v1/snapshots/{id}", s.getSnapshot)
	s.rt.With(s.validateOwner()).Delete("/v1/snapshots/{id}", s.deleteSnapshot)
	// Dictionary
	s.rt.Get("/v1/dictionary/categories", s.getCategoriesDictionary)
	// Dashboard
	s.rt.With(s.validateOwner()).Get("/v1/dashboard/summary", s.getSummary)
	s.rt.With(s.validateOwner()).Get("/v1/dashboard/modules", s.getModules)
	s.rt.With(s.validateOwner(), s.validateInsights()).Get("/v1/dashboard/insights", s.getInsights)
	s.rt.With(s.validateOwner(), s.validateSeries()).Get("/v1/dashboard/series", s.getSeries)
	// Health and metrics (unversioned)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Handle("/metrics", metricsHandler())
}
