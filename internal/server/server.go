package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sundayezeilo/shortlinks/internal/config"
	"github.com/sundayezeilo/shortlinks/internal/httpx"
	"github.com/sundayezeilo/shortlinks/internal/metrics"
	"github.com/sundayezeilo/shortlinks/internal/shortener"
)

// Server represents the HTTP server with all dependencies.
type Server struct {
	config   *config.Config
	logger   *slog.Logger
	handler  *shortener.Handler
	verifier httpx.TokenVerifier
	server   *http.Server
}

// New creates a new Server instance. verifier authenticates the /api routes.
func New(cfg *config.Config, logger *slog.Logger, handler *shortener.Handler, verifier httpx.TokenVerifier) *Server {
	return &Server{
		config:   cfg,
		logger:   logger,
		handler:  handler,
		verifier: verifier,
	}
}

// Handler returns the fully wired HTTP handler: routes plus middleware.
func (s *Server) Handler() http.Handler {
	metrics.Init()
	mux := s.setupRoutes()
	return s.applyMiddleware(mux)
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Server.Host, s.config.Server.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	// Listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start server in a goroutine
	go func() {
		s.logger.Info("starting http server",
			"addr", s.server.Addr,
			"env", s.config.App.Environment,
		)
		serverErrors <- s.server.ListenAndServe()
	}()

	// Listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		s.logger.Info("context cancelled, shutting down")
		return s.gracefulStop()

	case sig := <-shutdown:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.gracefulStop()
	}
}

func (s *Server) gracefulStop() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	s.logger.Info("server stopped gracefully")
	return nil
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Operational routes live under /x/, which no short code can match.
	mux.HandleFunc("GET /x/health", s.healthCheckHandler)
	mux.Handle("GET /x/metrics", metrics.Handler())

	// Management API, owner scoped
	auth := httpx.Authenticate(s.verifier, s.logger)
	mux.Handle("POST /api/links", auth(http.HandlerFunc(s.handler.CreateLink)))
	mux.Handle("GET /api/links", auth(http.HandlerFunc(s.handler.ListLinks)))
	mux.Handle("PATCH /api/links/{id}", auth(http.HandlerFunc(s.handler.UpdateLink)))
	mux.Handle("DELETE /api/links/{id}", auth(http.HandlerFunc(s.handler.DeleteLink)))

	// Public redirect
	mux.HandleFunc("GET /{code}", s.handler.ResolveLink)

	return mux
}

// applyMiddleware wraps the handler with middleware in the correct order.
func (s *Server) applyMiddleware(mux *http.ServeMux) http.Handler {
	handler := httpx.Chain(
		httpx.Recovery(s.logger), // Outermost: catch panics
		httpx.RequestID,
		httpx.Logger(s.logger),
		httpx.Metrics(mux),
		httpx.CORS(s.config.Server.CORSOrigins),
	)(mux)

	if s.config.Observability.Enabled {
		handler = otelhttp.NewHandler(handler, s.config.Observability.ServiceName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if _, pattern := mux.Handler(r); pattern != "" {
					return pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		)
	}
	return handler
}

// healthCheckHandler handles health check requests.
func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": s.config.Observability.ServiceName,
		"version": s.config.Observability.ServiceVersion,
	})
}

// Shutdown drains in-flight requests until ctx expires, then closes the
// remaining connections. It is a no-op before Start.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	s.logger.Info("shutting down server")

	err := s.server.Shutdown(ctx)
	if err == nil {
		return nil
	}
	s.logger.Warn("shutdown deadline exceeded, forcing close", "error", err)
	if closeErr := s.server.Close(); closeErr != nil {
		return errors.Join(err, closeErr)
	}
	return err
}
