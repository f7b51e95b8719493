package monitor

import (
	"context"
	"fmt"
	"log/slog"

	"modbot/internal/core"
	"modbot/internal/logger"
	"modbot/internal/persistence"
	"modbot/internal/reddit"
	"modbot/internal/rules"
)

// SourceFactory builds a content source for a user's Reddit token. The
// token may be empty, in which case the live client falls back to the
// public listing endpoints.
type SourceFactory func(token string) reddit.Source

// AlertDispatcher fans a created alert out to notification channels.
// Delivery failures never affect the scan.
type AlertDispatcher interface {
	Dispatch(ctx context.Context, alert core.Alert, subreddit string)
}

// Orchestrator runs one pass over every active monitoring rule: fetch
// content for the rule's subreddit, match each item, and write an alert
// for every new match. A failing rule is logged and skipped; only the
// initial rule-set load is fatal.
type Orchestrator struct {
	db         persistence.Database
	matcher    *rules.Matcher
	sources    SourceFactory
	dispatcher AlertDispatcher
	fetchLimit int
	log        *slog.Logger
}

// NewOrchestrator creates an orchestrator. dispatcher may be nil when no
// notification channels are configured.
func NewOrchestrator(db persistence.Database, matcher *rules.Matcher, sources SourceFactory, dispatcher AlertDispatcher, fetchLimit int) *Orchestrator {
	if fetchLimit <= 0 {
		fetchLimit = 10
	}
	return &Orchestrator{
		db:         db,
		matcher:    matcher,
		sources:    sources,
		dispatcher: dispatcher,
		fetchLimit: fetchLimit,
		log:        logger.Get(),
	}
}

// Run executes one scan pass and returns its summary. Triggering a scan
// twice against unchanged content creates no additional alerts: every
// candidate passes the per-rule content-id dedup gate before insert.
func (o *Orchestrator) Run(ctx context.Context) (core.ScanSummary, error) {
	activeRules, err := o.db.Rules().ListActive(ctx)
	if err != nil {
		return core.ScanSummary{}, fmt.Errorf("failed to load active monitoring rules: %w", err)
	}

	totalAlerts := 0
	for _, rule := range activeRules {
		created, err := o.processRule(ctx, rule)
		if err != nil {
			o.log.Error("Rule processing failed", "rule", rule.Name, "subreddit", rule.SubredditName, "error", err)
			continue
		}
		totalAlerts += created
	}

	summary := core.ScanSummary{
		Message:             fmt.Sprintf("Monitoring completed. Created %d new alerts.", totalAlerts),
		TotalRulesProcessed: len(activeRules),
		TotalAlertsCreated:  totalAlerts,
	}
	o.log.Info("Scan pass completed", "rules", summary.TotalRulesProcessed, "alerts", summary.TotalAlertsCreated)
	return summary, nil
}

// processRule scans one rule and returns the number of alerts created.
func (o *Orchestrator) processRule(ctx context.Context, rule core.ActiveRule) (int, error) {
	profile, err := o.db.Profiles().GetByUserID(ctx, rule.UserID)
	if err != nil {
		return 0, fmt.Errorf("failed to load user profile: %w", err)
	}
	if profile == nil {
		o.log.Info("No user profile found for rule, skipping", "rule", rule.Name, "user_id", rule.UserID)
		return 0, nil
	}

	source := o.sources(profile.RedditToken)
	items, err := source.Fetch(ctx, rule.SubredditName, rule.MonitoringType, o.fetchLimit)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch content for r/%s: %w", rule.SubredditName, err)
	}

	created := 0
	for _, item := range items {
		// An item without an id cannot pass the dedup gate and would
		// produce a duplicate alert on every pass.
		if item.ID == "" {
			continue
		}

		text := rules.ExtractText(rule.MonitoringType, item)
		if text == "" {
			continue
		}

		verdict, err := o.matcher.Match(ctx, rule.MonitoringRule, text)
		if err != nil {
			o.log.Warn("Match failed for content item", "rule", rule.Name, "content_id", item.ID, "error", err)
			continue
		}
		if !verdict.Flagged {
			continue
		}

		exists, err := o.db.Alerts().Exists(ctx, rule.ID, item.ID)
		if err != nil {
			o.log.Warn("Dedup check failed", "rule", rule.Name, "content_id", item.ID, "error", err)
			continue
		}
		if exists {
			continue
		}

		alert := buildAlert(rule, item, verdict)
		if err := o.db.Alerts().Create(ctx, &alert); err != nil {
			o.log.Error("Failed to create alert", "rule", rule.Name, "content_id", item.ID, "error", err)
			continue
		}
		created++
		o.log.Info("Created alert", "rule", rule.Name, "content_id", item.ID, "severity", string(alert.Severity))

		if o.dispatcher != nil {
			o.dispatcher.Dispatch(ctx, alert, rule.SubredditName)
		}
	}

	return created, nil
}

// buildAlert assembles the alert row for a flagged content item.
func buildAlert(rule core.ActiveRule, item core.ContentItem, verdict rules.Verdict) core.Alert {
	var title string
	if rule.UseAI {
		title = fmt.Sprintf("AI flagged content in rule: %s", rule.Name)
	} else {
		title = fmt.Sprintf("Keyword match detected: %s", rule.Name)
	}

	alert := core.Alert{
		UserID:      rule.UserID,
		CommunityID: rule.CommunityID,
		RuleID:      rule.ID,
		Title:       title,
		Description: fmt.Sprintf("A %s in r/%s was flagged by monitoring rule %q. %s",
			rule.MonitoringType, rule.SubredditName, rule.Name, verdict.Reason),
		Severity: verdict.Severity,
	}

	if item.Kind == core.KindComment {
		alert.RedditCommentID = item.ID
	} else {
		alert.RedditPostID = item.ID
	}
	return alert
}
