package handlers

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"modbot/internal/schedule"
)

// NewWatchCmd creates the watch command for interval scanning
func NewWatchCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Scan active monitoring rules on an interval",
		Long: `Run the monitoring pipeline immediately and then once per interval
until interrupted. This is the external trigger for deployments without a
cron or job scheduler; the scan itself stays schedule-agnostic.

Examples:
  # Scan every 15 minutes (default)
  modbot watch

  # Scan hourly
  modbot watch --interval 1h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), interval)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 15*time.Minute, "time between scan passes (minimum 1m)")

	return cmd
}

func runWatch(ctx context.Context, interval time.Duration) error {
	db, err := getDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	orchestrator, cleanup, err := buildOrchestrator(ctx, db)
	if err != nil {
		return err
	}
	defer cleanup()

	runner := schedule.NewRunner(interval, func(ctx context.Context) error {
		started := time.Now().UTC()
		summary, err := orchestrator.Run(ctx)
		if err != nil {
			return err
		}
		recordScanRun(summary.Message, summary.TotalRulesProcessed, summary.TotalAlertsCreated, started, time.Now().UTC())
		return nil
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
