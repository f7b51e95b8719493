package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"modbot/internal/config"
	"modbot/internal/logger"
	"modbot/internal/store"
)

// NewScanCmd creates the scan command for a one-shot monitoring pass
func NewScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Run one pass over all active monitoring rules",
		Long: `Run the monitoring pipeline once: fetch recent content for every
active rule, match it, and create alerts for new violations.

Triggering a scan twice against unchanged content creates no duplicate
alerts. The run is recorded in the local scan history (see 'modbot cache').

Example:
  modbot scan`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd.Context())
		},
	}
}

func runScan(ctx context.Context) error {
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

	started := time.Now().UTC()
	summary, err := orchestrator.Run(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	finished := time.Now().UTC()

	recordScanRun(summary.Message, summary.TotalRulesProcessed, summary.TotalAlertsCreated, started, finished)

	fmt.Println(summary.Message)
	fmt.Printf("Rules processed: %d\n", summary.TotalRulesProcessed)
	fmt.Printf("Alerts created:  %d\n", summary.TotalAlertsCreated)
	return nil
}

// recordScanRun appends the pass to the local SQLite history. Failures
// here never fail the scan itself.
func recordScanRun(message string, rulesProcessed, alertsCreated int, started, finished time.Time) {
	cacheStore, err := store.NewStore(config.GetDataDirectory())
	if err != nil {
		logger.Warn("Failed to open local store, scan not recorded", "error", err)
		return
	}
	defer func() { _ = cacheStore.Close() }()

	run := store.ScanRun{
		StartedAt:      started,
		FinishedAt:     finished,
		RulesProcessed: rulesProcessed,
		AlertsCreated:  alertsCreated,
		Message:        message,
	}
	if err := cacheStore.RecordScan(run); err != nil {
		logger.Warn("Failed to record scan run", "error", err)
	}
}
