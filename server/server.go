// Package server exposes the search over HTTP.
//
// Routes:
//
//	GET  /health
//	POST /search                  search an inline product description
//	POST /products/{id}/search    search a catalog product and store the result
//	GET  /products/{id}/places    stored places for a catalog product
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/poiesic/wheretobuy/cascade"
	"github.com/poiesic/wheretobuy/core"
)

const maxBodyBytes = 1 << 20

// Service is the search surface the handlers call.
// *wheretobuy.Locator implements it.
type Service interface {
	Locate(ctx context.Context, target core.Target) (*cascade.Result, error)
	LocateProduct(ctx context.Context, id core.ID) (*cascade.Result, error)
	Places(ctx context.Context, id core.ID) ([]core.Placement, error)
}

// NewRouter builds the HTTP routes over svc.
func NewRouter(svc Service, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "server")
	h := &handlers{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(Recover(logger))
	r.Use(RequestID())
	r.Use(Logging(logger))
	r.Use(LimitBytes(maxBodyBytes))

	r.Get("/health", h.health)
	r.Post("/search", h.search)
	r.Route("/products/{id}", func(r chi.Router) {
		r.Post("/search", h.searchProduct)
		r.Get("/places", h.places)
	})
	return r
}

// Server is an HTTP server for a Service.
type Server struct {
	http   *http.Server
	logger *slog.Logger
}

// New creates a server listening on addr.
func New(addr string, svc Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(svc, logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
