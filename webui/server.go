// Package webui provides the HTTP surface of the VRAM estimator service.
// This file contains the Server that wires the API, static assets, and
// middleware together.
package webui

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"vram_backend/core"
)

// Server is the HTTP server for the estimator. It wires together:
//   - EstimateAPI for the REST endpoints
//   - StaticAssetHandler for the embedded frontend
//   - LoggingMiddleware, CORSMiddleware, and an optional RateLimiter
//
// Middleware order, outermost first: logging, CORS, rate limit, mux.
type Server struct {
	httpServer    *http.Server
	mux           *http.ServeMux
	config        core.Config
	logger        *zap.Logger
	loggingMw     *LoggingMiddleware
	corsMw        *CORSMiddleware
	rateLimiter   *RateLimiter
	estimateAPI   *EstimateAPI
	staticHandler *StaticAssetHandler

	limiterCancel context.CancelFunc
}

// NewServer creates a Server from the application config.
func NewServer(config core.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		mux:           http.NewServeMux(),
		config:        config,
		logger:        logger,
		loggingMw:     NewLoggingMiddleware(logger, []string{"/api/health"}),
		corsMw:        NewCORSMiddleware(config.AllowedOrigins),
		estimateAPI:   NewEstimateAPI(),
		staticHandler: NewStaticAssetHandler(config.StaticCacheMaxAge),
	}

	if config.RateLimitEnabled {
		s.rateLimiter = NewRateLimiter(config.RateLimitPerMinute, time.Minute)
	}

	s.estimateAPI.RegisterRoutes(s.mux)
	s.staticHandler.RegisterRoutes(s.mux)

	s.httpServer = &http.Server{
		Addr:         config.Addr(),
		Handler:      s.rootHandler(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return s
}

// rootHandler builds the middleware chain around the mux.
func (s *Server) rootHandler() http.Handler {
	var handler http.Handler = s.mux

	if s.rateLimiter != nil {
		limited := s.rateLimiter.Handler(handler)
		inner := handler
		handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Only API calls count against the limit; asset requests
			// from the embedded frontend pass through.
			if strings.HasPrefix(r.URL.Path, "/api/") {
				limited.ServeHTTP(w, r)
				return
			}
			inner.ServeHTTP(w, r)
		})
	}

	handler = s.corsMw.Handler(handler)
	handler = s.loggingMw.Handler(handler)

	return handler
}

// Start begins listening for HTTP requests. It blocks until the server
// is shut down or fails.
func (s *Server) Start() error {
	if s.rateLimiter != nil {
		var ctx context.Context
		ctx, s.limiterCancel = context.WithCancel(context.Background())
		s.rateLimiter.StartCleanupTicker(ctx, time.Minute)
	}

	s.logger.Info("server starting",
		zap.String("addr", s.httpServer.Addr),
		zap.Bool("cors_enabled", s.corsMw.Enabled()),
		zap.Bool("rate_limit_enabled", s.rateLimiter != nil),
	)

	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight
// requests up to the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")

	if s.limiterCancel != nil {
		s.limiterCancel()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown error: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the fully wired root handler. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
