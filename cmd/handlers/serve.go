package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"modbot/internal/config"
	"modbot/internal/logger"
	"modbot/internal/reddit"
	"modbot/internal/server"
)

// NewServeCmd creates the serve command for starting the HTTP server
func NewServeCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard HTTP API",
		Long: `Start the ModBot API server backing the moderation dashboard.

The server provides:
  • REST API for communities, rules, alerts, schedules and settings
  • Reddit OAuth connection and community sync endpoints
  • A scan trigger (POST /api/monitor/run) for external schedulers
  • Health check and dashboard stats endpoints

Examples:
  # Start server on default port 8080
  modbot serve

  # Start on custom port
  modbot serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, host)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config: 8080)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config: 0.0.0.0)")

	return cmd
}

func runServe(ctx context.Context, port int, host string) error {
	log := logger.Get()
	cfg := config.Get()

	serverCfg := cfg.Server
	if port != 0 {
		serverCfg.Port = port
	}
	if host != "" {
		serverCfg.Host = host
	}

	log.Info("Connecting to database")
	db, err := getDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w\n\n"+
			"Make sure PostgreSQL is running and the connection string is correct.\n"+
			"Run 'modbot migrate up' to initialize the database schema.", err)
	}

	orchestrator, cleanup, err := buildOrchestrator(ctx, db)
	if err != nil {
		return err
	}
	defer cleanup()

	var redditSvc server.RedditService
	if svc, err := reddit.NewService(cfg.Reddit); err == nil {
		redditSvc = svc
	} else {
		log.Warn("Reddit integration disabled", "reason", err.Error())
	}

	srv := server.New(db, orchestrator, redditSvc, serverCfg)

	serverErrors := make(chan error, 1)
	go func() {
		log.Info(fmt.Sprintf("Server listening on http://%s:%d", serverCfg.Host, serverCfg.Port))
		log.Info("Press Ctrl+C to stop")
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info("Server shutdown initiated", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed, forcing close", "error", err)
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		log.Info("Server stopped successfully")
	}

	return nil
}
