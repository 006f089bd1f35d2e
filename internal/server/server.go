// Package server exposes the dashboard's read API over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/lumenfin/pulse/internal/service"
)

// Config holds the HTTP server settings.
type Config struct {
	Addr     string
	CacheTTL time.Duration
}

// Server wraps the HTTP listener with a cached analysis endpoint.
type Server struct {
	httpServer *http.Server
	cache      *resultCache
	logger     *slog.Logger
}

// New creates a server serving accounts, transactions, and analysis from
// the given storage and analyzer.
func New(cfg Config, storage service.Storage, analyzer Analyzer, logger *slog.Logger) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 15 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	cache, err := newResultCache(cfg.CacheTTL)
	if err != nil {
		return nil, err
	}

	h := &handlers{
		storage:  storage,
		analyzer: analyzer,
		cache:    cache,
		logger:   logger,
	}

	router := mux.NewRouter()
	h.routes(router)

	return &Server{
		httpServer: &http.Server{
			Addr:        cfg.Addr,
			Handler:     router,
			ReadTimeout: 15 * time.Second,
			// Analysis runs can take a while when providers are slow.
			WriteTimeout: 5 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		cache:  cache,
		logger: logger,
	}, nil
}

// Run serves requests until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	defer s.cache.Close()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
