package handlers

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"modbot/internal/config"
	"modbot/internal/logger"
	"modbot/internal/store"
)

// NewCacheCmd creates the cache management command
func NewCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the listing cache and scan history",
		Long:  `Inspect, clean, and manage the SQLite cache for Reddit listings and recorded scan runs.`,
	}

	cacheCmd.AddCommand(newCacheStatsCmd())
	cacheCmd.AddCommand(newCacheHistoryCmd())
	cacheCmd.AddCommand(newCacheClearCmd())

	return cacheCmd
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics and storage information",
		Long:  `Display statistics about the cache including cached Reddit listings, recorded scan runs, and storage usage.`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := runCacheStats(); err != nil {
				logger.Error("Failed to get cache stats", err)
				os.Exit(1)
			}
		},
	}
}

func newCacheHistoryCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent scan runs",
		Long:  `List the most recent recorded scan runs, newest first.`,
		Run: func(cmd *cobra.Command, args []string) {
			limit, _ := cmd.Flags().GetInt("limit")
			if err := runCacheHistory(limit); err != nil {
				logger.Error("Failed to list scan history", err)
				os.Exit(1)
			}
		},
	}

	historyCmd.Flags().Int("limit", 10, "Maximum number of scan runs to show")
	return historyCmd
}

func newCacheClearCmd() *cobra.Command {
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the cache (removes all cached listings and scan history)",
		Long:  `Remove all cached Reddit listings and recorded scan runs from the SQLite database.`,
		Run: func(cmd *cobra.Command, args []string) {
			confirm, _ := cmd.Flags().GetBool("confirm")
			if err := runCacheClear(confirm); err != nil {
				logger.Error("Failed to clear cache", err)
				os.Exit(1)
			}
		},
	}

	clearCmd.Flags().Bool("confirm", false, "Skip confirmation prompt")
	return clearCmd
}

func openCacheStore() (*store.Store, error) {
	cacheStore, err := store.NewStore(config.GetDataDirectory())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache store: %w", err)
	}
	return cacheStore, nil
}

func runCacheStats() error {
	fmt.Println("📊 Cache Statistics")
	fmt.Println("==================")

	cacheStore, err := openCacheStore()
	if err != nil {
		return err
	}
	defer func() {
		if err := cacheStore.Close(); err != nil {
			logger.Error("Failed to close cache store", err)
		}
	}()

	stats, err := cacheStore.GetCacheStats()
	if err != nil {
		return fmt.Errorf("failed to get cache statistics: %w", err)
	}

	fmt.Printf("📄 Listings cached: %d\n", stats.ListingCount)
	fmt.Printf("🔍 Scan runs recorded: %d\n", stats.ScanRunCount)
	fmt.Printf("💾 Cache size: %.2f MB\n", float64(stats.CacheSize)/1024/1024)
	fmt.Printf("📅 Last updated: %s\n", stats.LastUpdated.Format("2006-01-02 15:04:05"))

	return nil
}

func runCacheHistory(limit int) error {
	cacheStore, err := openCacheStore()
	if err != nil {
		return err
	}
	defer func() {
		if err := cacheStore.Close(); err != nil {
			logger.Error("Failed to close cache store", err)
		}
	}()

	runs, err := cacheStore.RecentScans(limit)
	if err != nil {
		return fmt.Errorf("failed to list scan runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No scan runs recorded yet. Run 'modbot scan' to start.")
		return nil
	}

	fmt.Println("🔍 Recent Scan Runs")
	fmt.Println("==================")
	for _, run := range runs {
		duration := run.FinishedAt.Sub(run.StartedAt).Round(10 * time.Millisecond)
		fmt.Printf("%s  rules=%d alerts=%d took=%s  %s\n",
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.RulesProcessed, run.AlertsCreated, duration, run.Message)
	}

	return nil
}

func runCacheClear(confirm bool) error {
	if !confirm {
		fmt.Print("⚠️  This will remove all cached listings and scan history. Continue? [y/N]: ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" && response != "yes" {
			fmt.Println("Cache clear cancelled")
			return nil
		}
	}

	fmt.Println("🗑️  Clearing cache...")

	cacheStore, err := openCacheStore()
	if err != nil {
		return err
	}
	defer func() {
		if err := cacheStore.Close(); err != nil {
			logger.Error("Failed to close cache store", err)
		}
	}()

	if err := cacheStore.ClearCache(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	fmt.Println("✅ Cache cleared successfully")
	return nil
}
