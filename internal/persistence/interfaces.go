// Package persistence provides database abstraction interfaces for the
// ModBot entities: communities, monitoring rules, alerts, schedules,
// notification settings, and user profiles. Every query is scoped by the
// owning user identifier, which is the sole tenancy boundary.
package persistence

import (
	"context"
	"time"

	"modbot/internal/core"
)

// CommunityRepository handles community persistence operations.
type CommunityRepository interface {
	// Upsert inserts or updates a community keyed by (user_id, subreddit_name).
	Upsert(ctx context.Context, community *core.Community) error

	// Get retrieves a community by ID.
	Get(ctx context.Context, id string) (*core.Community, error)

	// ListByUser retrieves a user's communities, newest first.
	ListByUser(ctx context.Context, userID string, opts ListOptions) ([]core.Community, error)

	// UpdateStatus changes the lifecycle status of a community.
	UpdateStatus(ctx context.Context, id string, status core.SubredditStatus) error

	// CountByUser returns the number of communities a user tracks.
	CountByUser(ctx context.Context, userID string) (int, error)
}

// RuleRepository handles monitoring rule persistence operations.
type RuleRepository interface {
	// Create inserts a new monitoring rule.
	Create(ctx context.Context, rule *core.MonitoringRule) error

	// Get retrieves a rule by ID.
	Get(ctx context.Context, id string) (*core.MonitoringRule, error)

	// ListByUser retrieves a user's rules, newest first.
	ListByUser(ctx context.Context, userID string, opts ListOptions) ([]core.MonitoringRule, error)

	// ListActive retrieves all active rules across users, joined with the
	// watched community's subreddit name. This feeds the scan orchestrator.
	ListActive(ctx context.Context) ([]core.ActiveRule, error)

	// Update updates a rule's mutable fields and bumps updated_at.
	Update(ctx context.Context, rule *core.MonitoringRule) error

	// SetActive toggles a rule on or off.
	SetActive(ctx context.Context, id string, active bool) error

	// Delete removes a rule by ID.
	Delete(ctx context.Context, id string) error

	// CountActiveByUser returns the number of active rules for a user.
	CountActiveByUser(ctx context.Context, userID string) (int, error)
}

// AlertRepository handles alert persistence operations.
type AlertRepository interface {
	// Create inserts a new alert.
	Create(ctx context.Context, alert *core.Alert) error

	// Exists reports whether an alert already exists for the same rule and
	// source content identifier. This is the deduplication gate.
	Exists(ctx context.Context, ruleID, contentID string) (bool, error)

	// Get retrieves an alert by ID.
	Get(ctx context.Context, id string) (*core.Alert, error)

	// ListByUser retrieves a user's alerts, newest first.
	ListByUser(ctx context.Context, userID string, opts ListOptions) ([]core.Alert, error)

	// MarkRead sets the read flag on an alert.
	MarkRead(ctx context.Context, id string) error

	// CountUnreadByUser returns the number of unread alerts for a user.
	CountUnreadByUser(ctx context.Context, userID string) (int, error)

	// CountSince returns the number of a user's alerts created after a time.
	CountSince(ctx context.Context, userID string, since time.Time) (int, error)
}

// ScheduleRepository handles schedule persistence operations.
type ScheduleRepository interface {
	// Create inserts a new schedule.
	Create(ctx context.Context, schedule *core.Schedule) error

	// Get retrieves a schedule by ID.
	Get(ctx context.Context, id string) (*core.Schedule, error)

	// ListByUser retrieves a user's schedules, newest first.
	ListByUser(ctx context.Context, userID string, opts ListOptions) ([]core.Schedule, error)

	// SetActive toggles a schedule on or off.
	SetActive(ctx context.Context, id string, active bool) error

	// UpdateNextRun records the next computed run time.
	UpdateNextRun(ctx context.Context, id string, nextRun time.Time) error

	// Delete removes a schedule by ID.
	Delete(ctx context.Context, id string) error
}

// NotificationSettingRepository handles notification channel settings,
// one row per (user, channel).
type NotificationSettingRepository interface {
	// Upsert inserts or updates a setting keyed by (user_id, notification_type).
	Upsert(ctx context.Context, setting *core.NotificationSetting) error

	// ListByUser retrieves all of a user's settings.
	ListByUser(ctx context.Context, userID string) ([]core.NotificationSetting, error)

	// ListEnabledByUser retrieves only the enabled settings.
	ListEnabledByUser(ctx context.Context, userID string) ([]core.NotificationSetting, error)
}

// UserProfileRepository handles linked Reddit identity persistence.
type UserProfileRepository interface {
	// Upsert inserts or updates a profile keyed by user_id.
	Upsert(ctx context.Context, profile *core.UserProfile) error

	// GetByUserID retrieves the profile for an application user.
	GetByUserID(ctx context.Context, userID string) (*core.UserProfile, error)

	// SetToken stores the opaque Reddit bearer token for a user.
	SetToken(ctx context.Context, userID, token string) error
}

// ListOptions provides common filtering and pagination options.
type ListOptions struct {
	Limit  int // Maximum number of results (0 for a repository default)
	Offset int // Number of results to skip
}

// Database is the top-level persistence interface.
type Database interface {
	Communities() CommunityRepository
	Rules() RuleRepository
	Alerts() AlertRepository
	Schedules() ScheduleRepository
	NotificationSettings() NotificationSettingRepository
	Profiles() UserProfileRepository

	// Ping verifies the database connection.
	Ping(ctx context.Context) error

	// Close closes the underlying connection pool.
	Close() error
}
