package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"modbot/internal/config"
	"modbot/internal/core"
	"modbot/internal/logger"
	"modbot/internal/persistence"
	"modbot/internal/reddit"
)

// ScanRunner executes one pass over the active monitoring rules.
type ScanRunner interface {
	Run(ctx context.Context) (core.ScanSummary, error)
}

// RedditService covers the account-level Reddit operations the API needs.
type RedditService interface {
	AuthURL(state string) (string, error)
	Exchange(ctx context.Context, code string) (string, error)
	Identity(ctx context.Context, token string) (*reddit.Identity, error)
	ModeratedSubreddits(ctx context.Context, token string) ([]reddit.ModeratedSubreddit, error)
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	db         persistence.Database
	scanner    ScanRunner
	reddit     RedditService
	config     config.Server
	log        *slog.Logger
}

// New creates a new HTTP server instance. redditSvc may be nil when Reddit
// credentials are not configured; the auth and sync endpoints then return
// 503.
func New(db persistence.Database, scanner ScanRunner, redditSvc RedditService, cfg config.Server) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		db:      db,
		scanner: scanner,
		reddit:  redditSvc,
		config:  cfg,
		log:     logger.Get(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	if s.config.CORS.Enabled {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-User-ID"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Scan trigger has no tenant scope: it processes every user's
		// active rules, the way an external scheduler would.
		r.Post("/monitor/run", s.handleMonitorRun)

		r.Group(func(r chi.Router) {
			r.Use(s.requireUserID)

			r.Get("/stats", s.handleStats)

			r.Route("/reddit", func(r chi.Router) {
				r.Post("/auth-url", s.handleRedditAuthURL)
				r.Post("/exchange", s.handleRedditExchange)
				r.Post("/sync", s.handleRedditSync)
				r.Post("/disconnect", s.handleRedditDisconnect)
			})

			r.Route("/communities", func(r chi.Router) {
				r.Get("/", s.handleListCommunities)
				r.Post("/", s.handleUpsertCommunity)
				r.Patch("/{id}/status", s.handleUpdateCommunityStatus)
			})

			r.Route("/rules", func(r chi.Router) {
				r.Get("/", s.handleListRules)
				r.Post("/", s.handleCreateRule)
				r.Get("/{id}", s.handleGetRule)
				r.Put("/{id}", s.handleUpdateRule)
				r.Patch("/{id}/active", s.handleSetRuleActive)
				r.Delete("/{id}", s.handleDeleteRule)
			})

			r.Route("/alerts", func(r chi.Router) {
				r.Get("/", s.handleListAlerts)
				r.Patch("/{id}/read", s.handleMarkAlertRead)
			})

			r.Route("/schedules", func(r chi.Router) {
				r.Get("/", s.handleListSchedules)
				r.Post("/", s.handleCreateSchedule)
				r.Patch("/{id}/active", s.handleSetScheduleActive)
				r.Delete("/{id}", s.handleDeleteSchedule)
			})

			r.Route("/notification-settings", func(r chi.Router) {
				r.Get("/", s.handleListNotificationSettings)
				r.Put("/", s.handleUpsertNotificationSetting)
			})
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"read_timeout", s.config.ReadTimeout,
		"write_timeout", s.config.WriteTimeout,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
