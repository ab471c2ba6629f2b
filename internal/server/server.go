// Package server provides the HTTP server and routing for finlookup.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/finlookup/internal/config"
	"github.com/aristath/finlookup/internal/di"
	dashboardhandlers "github.com/aristath/finlookup/internal/modules/dashboard/handlers"
)

// refreshGrace is added to the refresh timeout so a selection always has time to
// write its summary.
const refreshGrace = 10 * time.Second

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Config    *config.Config
	Port      int
	DevMode   bool
	Container *di.Container // DI container with all services
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	container      *di.Container
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		cfg:       cfg.Config,
		container: cfg.Container,
		systemHandlers: NewSystemHandlers(
			cfg.Log,
			cfg.Config.DataDir,
			cfg.Container.Companies,
		),
	}

	selectTimeout := s.SelectTimeout()
	s.setupMiddleware(cfg.DevMode, selectTimeout)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: selectTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// SelectTimeout is the request budget of company selection, the longest route.
// Every other route is bounded by handlers.RequestTimeout.
func (s *Server) SelectTimeout() time.Duration {
	timeout := s.cfg.RefreshTimeout + refreshGrace
	if timeout < dashboardhandlers.RequestTimeout {
		return dashboardhandlers.RequestTimeout
	}
	return timeout
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool, timeout time.Duration) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout; routes other than company selection narrow it further
	s.router.Use(middleware.Timeout(timeout))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	timeout := middleware.Timeout(dashboardhandlers.RequestTimeout)
	s.router.With(timeout).Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.With(timeout).Get("/system/status", s.systemHandlers.HandleSystemStatus)

		dashboardHandler := dashboardhandlers.NewHandler(
			s.container.Controller,
			s.cfg.DefaultWindowDays,
			s.log,
		)
		dashboardHandler.RegisterRoutes(r)
	})
}

// Router exposes the configured routes.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs every request with its status and duration.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
