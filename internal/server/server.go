// Package server exposes the prediction API over HTTP.
package server

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"cropcast/internal/config"
	"cropcast/internal/gee"
	"cropcast/internal/health"
	"cropcast/internal/logging"
	"cropcast/internal/model"
	"cropcast/internal/store"
	"cropcast/internal/variety"
)

// Server wires the HTTP handlers to the domain components.
type Server struct {
	cfg        *config.Config
	registry   *model.Registry
	selector   *variety.Selector
	satellite  *gee.Client
	checker    *health.Checker
	store      *store.LocalStore
	confidence float64

	httpServer *http.Server
}

// New builds the server and its routing table.
func New(cfg *config.Config, registry *model.Registry, selector *variety.Selector,
	satellite *gee.Client, checker *health.Checker, st *store.LocalStore) *Server {

	s := &Server{
		cfg:        cfg,
		registry:   registry,
		selector:   selector,
		satellite:  satellite,
		checker:    checker,
		store:      st,
		confidence: cfg.Models.ConfidenceLevel,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/predict", s.handlePredict)
	mux.HandleFunc("GET /api/v1/varieties", s.handleVarieties)
	mux.HandleFunc("GET /api/v1/crops", s.handleCrops)
	mux.HandleFunc("GET /api/v1/predictions/recent", s.handleRecent)
	mux.HandleFunc("GET /api/v1/models/events", s.handleModelEvents)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      withRecovery(withRequestID(withAccessLog(mux))),
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
	}
	return s
}

// Handler exposes the middleware-wrapped routing table (used by tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.API("listening on %s", s.cfg.Server.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.GetShutdownTimeout())
		defer cancel()
		logging.API("shutting down")
		return s.httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
