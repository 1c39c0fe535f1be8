// Package web serves the read-mostly HTTP API over the attendance ledger and
// the enrollment store. It is meant for the office LAN; there is no auth.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kozaktomas/punchclock/internal/config"
	"github.com/kozaktomas/punchclock/internal/enroll"
	"github.com/kozaktomas/punchclock/internal/ledger"
	"github.com/kozaktomas/punchclock/internal/web/handlers"
)

// Server represents the web server.
type Server struct {
	config     *config.Config
	router     *chi.Mux
	httpServer *http.Server
	log        *slog.Logger
}

// NewServer creates a new web server.
func NewServer(cfg *config.Config, host string, port int, store *ledger.Ledger, users enroll.Store, index *enroll.Index, log *slog.Logger) *Server {
	r := chi.NewRouter()

	s := &Server{
		config: cfg,
		router: r,
		log:    log,
	}

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(30 * time.Second))

	s.setupRoutes(store, users, index)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes(store *ledger.Ledger, users enroll.Store, index *enroll.Index) {
	attendanceHandler := handlers.NewAttendanceHandler(store)
	usersHandler := handlers.NewUsersHandler(users)
	lookupHandler := handlers.NewLookupHandler(index)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/report", attendanceHandler.Report)
		r.Get("/stats", attendanceHandler.Stats)
		r.Get("/users", usersHandler.List)
		r.Get("/users/{name}/history", attendanceHandler.History)
		r.Post("/lookup", lookupHandler.Lookup)
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.Info("starting web server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down web server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
