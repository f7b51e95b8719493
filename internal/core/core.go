// Package core defines the domain types shared across the ModBot pipeline.
package core

import "time"

// SubredditStatus is the lifecycle state of a tracked community.
type SubredditStatus string

const (
	StatusActive   SubredditStatus = "active"
	StatusPaused   SubredditStatus = "paused"
	StatusArchived SubredditStatus = "archived"
)

// MonitoringType selects which content surface a rule watches.
type MonitoringType string

const (
	MonitorPosts    MonitoringType = "posts"
	MonitorComments MonitoringType = "comments"
	MonitorModqueue MonitoringType = "modqueue"
	MonitorReports  MonitoringType = "reports"
)

// AlertSeverity is the severity assigned to a generated alert.
type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

// NotificationChannel identifies how a user wants to be notified.
type NotificationChannel string

const (
	ChannelEmail   NotificationChannel = "email"
	ChannelInApp   NotificationChannel = "in_app"
	ChannelWebhook NotificationChannel = "webhook"
)

// ScheduleFrequency is the recurrence of a monitoring schedule.
type ScheduleFrequency string

const (
	FrequencyHourly  ScheduleFrequency = "hourly"
	FrequencyDaily   ScheduleFrequency = "daily"
	FrequencyWeekly  ScheduleFrequency = "weekly"
	FrequencyMonthly ScheduleFrequency = "monthly"
)

// Community represents a subreddit tracked by a user.
// Rows are upserted on sync keyed by (user_id, subreddit_name).
type Community struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	SubredditID   string          `json:"subreddit_id"`
	SubredditName string          `json:"subreddit_name"`
	DisplayName   string          `json:"display_name"`
	Description   string          `json:"description"`
	Subscribers   int64           `json:"subscribers"`
	IsModerator   bool            `json:"is_moderator"`
	Status        SubredditStatus `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// MonitoringRule describes what to look for in a community.
// When UseAI is false the rule matches on Keywords; when true it delegates
// to the classification service with AIPrompt as the criteria.
type MonitoringRule struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	CommunityID    string         `json:"community_id"`
	Name           string         `json:"name"`
	MonitoringType MonitoringType `json:"monitoring_type"`
	IsActive       bool           `json:"is_active"`
	Keywords       []string       `json:"keywords"`
	UseAI          bool           `json:"use_ai"`
	AIPrompt       string         `json:"ai_prompt"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Alert is a flagged piece of content raised by the monitor.
// Alerts are immutable once written except for the read flag.
type Alert struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	CommunityID     string        `json:"community_id"`
	RuleID          string        `json:"monitoring_rule_id,omitempty"` // empty for manually raised alerts
	RedditPostID    string        `json:"reddit_post_id,omitempty"`
	RedditCommentID string        `json:"reddit_comment_id,omitempty"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Severity        AlertSeverity `json:"severity"`
	IsRead          bool          `json:"is_read"`
	CreatedAt       time.Time     `json:"created_at"`
}

// ContentID returns whichever source identifier the alert carries.
func (a Alert) ContentID() string {
	if a.RedditPostID != "" {
		return a.RedditPostID
	}
	return a.RedditCommentID
}

// Schedule records a user's intent to run monitoring on a cadence.
// CommunityID empty means all of the user's communities. The orchestrator
// itself is schedule-agnostic; an external caller owns the trigger cadence.
type Schedule struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	CommunityID string            `json:"community_id,omitempty"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Frequency   ScheduleFrequency `json:"frequency"`
	IsActive    bool              `json:"is_active"`
	NextRun     time.Time         `json:"next_run"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NotificationSetting is one delivery channel for a user, upserted per
// (user, channel).
type NotificationSetting struct {
	ID           string              `json:"id"`
	UserID       string              `json:"user_id"`
	Channel      NotificationChannel `json:"notification_type"`
	IsEnabled    bool                `json:"is_enabled"`
	EmailAddress string              `json:"email_address,omitempty"`
	WebhookURL   string              `json:"webhook_url,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// UserProfile links an application user to a confirmed Reddit identity.
// RedditToken is the opaque bearer token obtained from the OAuth exchange;
// it is never serialized in API responses.
type UserProfile struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	RedditUsername string    `json:"reddit_username"`
	RedditID       string    `json:"reddit_id"`
	IsMod          bool      `json:"is_mod"`
	TotalKarma     int64     `json:"total_karma"`
	RedditToken    string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ActiveRule is a monitoring rule joined with the community it watches,
// as loaded at the start of a scan pass.
type ActiveRule struct {
	MonitoringRule
	SubredditName string `json:"subreddit_name"`
}

// ContentKind discriminates the origin of a fetched item.
type ContentKind string

const (
	KindPost    ContentKind = "post"
	KindComment ContentKind = "comment"
)

// ContentItem is a normalized post or comment from the content source.
type ContentItem struct {
	ID        string      `json:"id"`
	Kind      ContentKind `json:"kind"`
	Subreddit string      `json:"subreddit"`
	Title     string      `json:"title"` // empty for comments
	Body      string      `json:"body"`
	Author    string      `json:"author"`
	Permalink string      `json:"permalink"`
	CreatedAt time.Time   `json:"created_at"`
}

// AnalysisResult is the verdict of the classification service.
type AnalysisResult struct {
	Flagged    bool    `json:"flagged"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// ScanSummary is the result of one full orchestrator pass.
type ScanSummary struct {
	Message             string `json:"message"`
	TotalRulesProcessed int    `json:"totalRulesProcessed"`
	TotalAlertsCreated  int    `json:"totalAlertsCreated"`
}
