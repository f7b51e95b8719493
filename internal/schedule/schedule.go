package schedule

import (
	"context"
	"log/slog"
	"time"

	"modbot/internal/core"
	"modbot/internal/logger"
)

// NextRun computes the next execution time for a frequency, counted from
// the given moment. Monthly advances by calendar month, so Jan 31 rolls
// into early March the way time.AddDate normalizes it.
func NextRun(frequency core.ScheduleFrequency, from time.Time) time.Time {
	switch frequency {
	case core.FrequencyHourly:
		return from.Add(time.Hour)
	case core.FrequencyWeekly:
		return from.AddDate(0, 0, 7)
	case core.FrequencyMonthly:
		return from.AddDate(0, 1, 0)
	default:
		return from.AddDate(0, 0, 1)
	}
}

// ScanFunc runs one pass over the active monitoring rules.
type ScanFunc func(ctx context.Context) error

// Runner invokes a scan function on a fixed interval until its context is
// cancelled. Cadence lives here and in external schedulers; the scan itself
// never sleeps or reschedules.
type Runner struct {
	interval time.Duration
	scan     ScanFunc
	log      *slog.Logger
}

// NewRunner creates a runner. Intervals below one minute are clamped to a
// minute to stay inside Reddit API rate limits.
func NewRunner(interval time.Duration, scan ScanFunc) *Runner {
	if interval < time.Minute {
		interval = time.Minute
	}
	return &Runner{
		interval: interval,
		scan:     scan,
		log:      logger.Get(),
	}
}

// Run performs an immediate scan, then one per interval, until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	r.log.Info("Starting scheduled scans", "interval", r.interval.String())

	if err := r.scan(ctx); err != nil {
		r.log.Error("Scan failed", "error", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("Stopping scheduled scans")
			return ctx.Err()
		case <-ticker.C:
			if err := r.scan(ctx); err != nil {
				r.log.Error("Scan failed", "error", err)
			}
		}
	}
}
