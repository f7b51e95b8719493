package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"modbot/internal/core"
)

// postgresCommunityRepo implements CommunityRepository for PostgreSQL.
type postgresCommunityRepo struct {
	db *sql.DB
}

func (r *postgresCommunityRepo) Upsert(ctx context.Context, community *core.Community) error {
	if community.ID == "" {
		community.ID = uuid.NewString()
	}
	if community.Status == "" {
		community.Status = core.StatusActive
	}
	now := time.Now().UTC()

	query := `
		INSERT INTO communities (id, user_id, subreddit_id, subreddit_name, display_name, description, subscribers, is_moderator, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (user_id, subreddit_name) DO UPDATE SET
			subreddit_id = EXCLUDED.subreddit_id,
			display_name = EXCLUDED.display_name,
			description = EXCLUDED.description,
			subscribers = EXCLUDED.subscribers,
			is_moderator = EXCLUDED.is_moderator,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		community.ID, community.UserID, community.SubredditID, community.SubredditName,
		community.DisplayName, community.Description, community.Subscribers,
		community.IsModerator, string(community.Status), now,
	).Scan(&community.ID, &community.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert community: %w", err)
	}
	community.UpdatedAt = now
	return nil
}

func (r *postgresCommunityRepo) Get(ctx context.Context, id string) (*core.Community, error) {
	query := `
		SELECT id, user_id, subreddit_id, subreddit_name, display_name, description, subscribers, is_moderator, status, created_at, updated_at
		FROM communities WHERE id = $1
	`
	return scanCommunity(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresCommunityRepo) ListByUser(ctx context.Context, userID string, opts ListOptions) ([]core.Community, error) {
	limit := opts.Limit
	if limit == 0 {
		limit = 100
	}
	query := `
		SELECT id, user_id, subreddit_id, subreddit_name, display_name, description, subscribers, is_moderator, status, created_at, updated_at
		FROM communities WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list communities: %w", err)
	}
	defer rows.Close()

	var communities []core.Community
	for rows.Next() {
		var c core.Community
		var status string
		if err := rows.Scan(&c.ID, &c.UserID, &c.SubredditID, &c.SubredditName, &c.DisplayName,
			&c.Description, &c.Subscribers, &c.IsModerator, &status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan community: %w", err)
		}
		c.Status = core.SubredditStatus(status)
		communities = append(communities, c)
	}
	return communities, rows.Err()
}

func (r *postgresCommunityRepo) UpdateStatus(ctx context.Context, id string, status core.SubredditStatus) error {
	query := `UPDATE communities SET status = $2, updated_at = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, string(status), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update community status: %w", err)
	}
	return nil
}

func (r *postgresCommunityRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT count(1) FROM communities WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count communities: %w", err)
	}
	return count, nil
}

func scanCommunity(row *sql.Row) (*core.Community, error) {
	var c core.Community
	var status string
	err := row.Scan(&c.ID, &c.UserID, &c.SubredditID, &c.SubredditName, &c.DisplayName,
		&c.Description, &c.Subscribers, &c.IsModerator, &status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan community: %w", err)
	}
	c.Status = core.SubredditStatus(status)
	return &c, nil
}

// postgresRuleRepo implements RuleRepository for PostgreSQL.
type postgresRuleRepo struct {
	db *sql.DB
}

func (r *postgresRuleRepo) Create(ctx context.Context, rule *core.MonitoringRule) error {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	query := `
		INSERT INTO monitoring_rules (id, user_id, community_id, name, monitoring_type, is_active, keywords, use_ai, ai_prompt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		rule.ID, rule.UserID, rule.CommunityID, rule.Name, string(rule.MonitoringType),
		rule.IsActive, pq.Array(rule.Keywords), rule.UseAI, rule.AIPrompt, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert monitoring rule: %w", err)
	}
	rule.CreatedAt = now
	rule.UpdatedAt = now
	return nil
}

const ruleColumns = `id, user_id, community_id, name, monitoring_type, is_active, keywords, use_ai, ai_prompt, created_at, updated_at`

func (r *postgresRuleRepo) Get(ctx context.Context, id string) (*core.MonitoringRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM monitoring_rules WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	rule, err := scanRule(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return rule, nil
}

func (r *postgresRuleRepo) ListByUser(ctx context.Context, userID string, opts ListOptions) ([]core.MonitoringRule, error) {
	limit := opts.Limit
	if limit == 0 {
		limit = 100
	}
	query := `SELECT ` + ruleColumns + ` FROM monitoring_rules WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list monitoring rules: %w", err)
	}
	defer rows.Close()

	var rules []core.MonitoringRule
	for rows.Next() {
		rule, err := scanRule(rows.Scan)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	return rules, rows.Err()
}

func (r *postgresRuleRepo) ListActive(ctx context.Context) ([]core.ActiveRule, error) {
	query := `
		SELECT r.id, r.user_id, r.community_id, r.name, r.monitoring_type, r.is_active, r.keywords, r.use_ai, r.ai_prompt, r.created_at, r.updated_at,
		       c.subreddit_name
		FROM monitoring_rules r
			JOIN communities c ON r.community_id = c.id
		WHERE r.is_active = true AND c.status = 'active'
		ORDER BY r.created_at
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active rules: %w", err)
	}
	defer rows.Close()

	var active []core.ActiveRule
	for rows.Next() {
		var ar core.ActiveRule
		var monitoringType string
		var keywords pq.StringArray
		if err := rows.Scan(&ar.ID, &ar.UserID, &ar.CommunityID, &ar.Name, &monitoringType,
			&ar.IsActive, &keywords, &ar.UseAI, &ar.AIPrompt, &ar.CreatedAt, &ar.UpdatedAt,
			&ar.SubredditName); err != nil {
			return nil, fmt.Errorf("failed to scan active rule: %w", err)
		}
		ar.MonitoringType = core.MonitoringType(monitoringType)
		ar.Keywords = []string(keywords)
		active = append(active, ar)
	}
	return active, rows.Err()
}

func (r *postgresRuleRepo) Update(ctx context.Context, rule *core.MonitoringRule) error {
	now := time.Now().UTC()
	query := `
		UPDATE monitoring_rules
		SET name = $2, monitoring_type = $3, is_active = $4, keywords = $5, use_ai = $6, ai_prompt = $7, updated_at = $8
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, rule.ID, rule.Name, string(rule.MonitoringType),
		rule.IsActive, pq.Array(rule.Keywords), rule.UseAI, rule.AIPrompt, now)
	if err != nil {
		return fmt.Errorf("failed to update monitoring rule: %w", err)
	}
	rule.UpdatedAt = now
	return nil
}

func (r *postgresRuleRepo) SetActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE monitoring_rules SET is_active = $2, updated_at = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to toggle monitoring rule: %w", err)
	}
	return nil
}

func (r *postgresRuleRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM monitoring_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete monitoring rule: %w", err)
	}
	return nil
}

func (r *postgresRuleRepo) CountActiveByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(1) FROM monitoring_rules WHERE user_id = $1 AND is_active = true`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active rules: %w", err)
	}
	return count, nil
}

func scanRule(scan func(dest ...any) error) (*core.MonitoringRule, error) {
	var rule core.MonitoringRule
	var monitoringType string
	var keywords pq.StringArray
	if err := scan(&rule.ID, &rule.UserID, &rule.CommunityID, &rule.Name, &monitoringType,
		&rule.IsActive, &keywords, &rule.UseAI, &rule.AIPrompt, &rule.CreatedAt, &rule.UpdatedAt); err != nil {
		return nil, err
	}
	rule.MonitoringType = core.MonitoringType(monitoringType)
	rule.Keywords = []string(keywords)
	return &rule, nil
}

// postgresAlertRepo implements AlertRepository for PostgreSQL.
type postgresAlertRepo struct {
	db *sql.DB
}

func (r *postgresAlertRepo) Create(ctx context.Context, alert *core.Alert) error {
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO alerts (id, user_id, community_id, monitoring_rule_id, reddit_post_id, reddit_comment_id, title, description, severity, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		alert.ID, alert.UserID, alert.CommunityID, nullable(alert.RuleID),
		nullable(alert.RedditPostID), nullable(alert.RedditCommentID),
		alert.Title, alert.Description, string(alert.Severity), alert.IsRead, alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

func (r *postgresAlertRepo) Exists(ctx context.Context, ruleID, contentID string) (bool, error) {
	if contentID == "" {
		return false, nil
	}

	query := `
		SELECT count(1) FROM alerts
		WHERE monitoring_rule_id = $1 AND (reddit_post_id = $2 OR reddit_comment_id = $2)
	`
	var count int
	if err := r.db.QueryRowContext(ctx, query, ruleID, contentID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check for existing alert: %w", err)
	}
	return count > 0, nil
}

const alertColumns = `id, user_id, community_id, monitoring_rule_id, reddit_post_id, reddit_comment_id, title, description, severity, is_read, created_at`

func (r *postgresAlertRepo) Get(ctx context.Context, id string) (*core.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	alert, err := scanAlert(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return alert, nil
}

func (r *postgresAlertRepo) ListByUser(ctx context.Context, userID string, opts ListOptions) ([]core.Alert, error) {
	limit := opts.Limit
	if limit == 0 {
		limit = 50
	}
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []core.Alert
	for rows.Next() {
		alert, err := scanAlert(rows.Scan)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *alert)
	}
	return alerts, rows.Err()
}

func (r *postgresAlertRepo) MarkRead(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE alerts SET is_read = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark alert read: %w", err)
	}
	return nil
}

func (r *postgresAlertRepo) CountUnreadByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(1) FROM alerts WHERE user_id = $1 AND is_read = false`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread alerts: %w", err)
	}
	return count, nil
}

func (r *postgresAlertRepo) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(1) FROM alerts WHERE user_id = $1 AND created_at >= $2`, userID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent alerts: %w", err)
	}
	return count, nil
}

func scanAlert(scan func(dest ...any) error) (*core.Alert, error) {
	var alert core.Alert
	var ruleID, postID, commentID sql.NullString
	var severity string
	if err := scan(&alert.ID, &alert.UserID, &alert.CommunityID, &ruleID, &postID, &commentID,
		&alert.Title, &alert.Description, &severity, &alert.IsRead, &alert.CreatedAt); err != nil {
		return nil, err
	}
	alert.RuleID = ruleID.String
	alert.RedditPostID = postID.String
	alert.RedditCommentID = commentID.String
	alert.Severity = core.AlertSeverity(severity)
	return &alert, nil
}

// postgresScheduleRepo implements ScheduleRepository for PostgreSQL.
type postgresScheduleRepo struct {
	db *sql.DB
}

func (r *postgresScheduleRepo) Create(ctx context.Context, schedule *core.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	query := `
		INSERT INTO schedules (id, user_id, community_id, name, description, frequency, is_active, next_run, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		schedule.ID, schedule.UserID, nullable(schedule.CommunityID), schedule.Name,
		schedule.Description, string(schedule.Frequency), schedule.IsActive, schedule.NextRun, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert schedule: %w", err)
	}
	schedule.CreatedAt = now
	schedule.UpdatedAt = now
	return nil
}

const scheduleColumns = `id, user_id, community_id, name, description, frequency, is_active, next_run, created_at, updated_at`

func (r *postgresScheduleRepo) Get(ctx context.Context, id string) (*core.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	schedule, err := scanSchedule(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return schedule, nil
}

func (r *postgresScheduleRepo) ListByUser(ctx context.Context, userID string, opts ListOptions) ([]core.Schedule, error) {
	limit := opts.Limit
	if limit == 0 {
		limit = 100
	}
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []core.Schedule
	for rows.Next() {
		schedule, err := scanSchedule(rows.Scan)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *schedule)
	}
	return schedules, rows.Err()
}

func (r *postgresScheduleRepo) SetActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE schedules SET is_active = $2, updated_at = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to toggle schedule: %w", err)
	}
	return nil
}

func (r *postgresScheduleRepo) UpdateNextRun(ctx context.Context, id string, nextRun time.Time) error {
	query := `UPDATE schedules SET next_run = $2, updated_at = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, nextRun, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update schedule next run: %w", err)
	}
	return nil
}

func (r *postgresScheduleRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	return nil
}

func scanSchedule(scan func(dest ...any) error) (*core.Schedule, error) {
	var schedule core.Schedule
	var communityID sql.NullString
	var frequency string
	if err := scan(&schedule.ID, &schedule.UserID, &communityID, &schedule.Name,
		&schedule.Description, &frequency, &schedule.IsActive, &schedule.NextRun,
		&schedule.CreatedAt, &schedule.UpdatedAt); err != nil {
		return nil, err
	}
	schedule.CommunityID = communityID.String
	schedule.Frequency = core.ScheduleFrequency(frequency)
	return &schedule, nil
}

// postgresNotificationSettingRepo implements NotificationSettingRepository
// for PostgreSQL.
type postgresNotificationSettingRepo struct {
	db *sql.DB
}

func (r *postgresNotificationSettingRepo) Upsert(ctx context.Context, setting *core.NotificationSetting) error {
	if setting.ID == "" {
		setting.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	query := `
		INSERT INTO notification_settings (id, user_id, notification_type, is_enabled, email_address, webhook_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (user_id, notification_type) DO UPDATE SET
			is_enabled = EXCLUDED.is_enabled,
			email_address = EXCLUDED.email_address,
			webhook_url = EXCLUDED.webhook_url,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		setting.ID, setting.UserID, string(setting.Channel), setting.IsEnabled,
		setting.EmailAddress, setting.WebhookURL, now,
	).Scan(&setting.ID, &setting.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert notification setting: %w", err)
	}
	setting.UpdatedAt = now
	return nil
}

func (r *postgresNotificationSettingRepo) ListByUser(ctx context.Context, userID string) ([]core.NotificationSetting, error) {
	return r.list(ctx, userID, false)
}

func (r *postgresNotificationSettingRepo) ListEnabledByUser(ctx context.Context, userID string) ([]core.NotificationSetting, error) {
	return r.list(ctx, userID, true)
}

func (r *postgresNotificationSettingRepo) list(ctx context.Context, userID string, enabledOnly bool) ([]core.NotificationSetting, error) {
	query := `
		SELECT id, user_id, notification_type, is_enabled, email_address, webhook_url, created_at, updated_at
		FROM notification_settings WHERE user_id = $1
	`
	if enabledOnly {
		query += ` AND is_enabled = true`
	}
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notification settings: %w", err)
	}
	defer rows.Close()

	var settings []core.NotificationSetting
	for rows.Next() {
		var s core.NotificationSetting
		var channel string
		var email, webhook sql.NullString
		if err := rows.Scan(&s.ID, &s.UserID, &channel, &s.IsEnabled, &email, &webhook,
			&s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification setting: %w", err)
		}
		s.Channel = core.NotificationChannel(channel)
		s.EmailAddress = email.String
		s.WebhookURL = webhook.String
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// postgresProfileRepo implements UserProfileRepository for PostgreSQL.
type postgresProfileRepo struct {
	db *sql.DB
}

func (r *postgresProfileRepo) Upsert(ctx context.Context, profile *core.UserProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	query := `
		INSERT INTO user_profiles (id, user_id, reddit_username, reddit_id, is_mod, total_karma, reddit_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			reddit_username = EXCLUDED.reddit_username,
			reddit_id = EXCLUDED.reddit_id,
			is_mod = EXCLUDED.is_mod,
			total_karma = EXCLUDED.total_karma,
			reddit_token = CASE WHEN EXCLUDED.reddit_token <> '' THEN EXCLUDED.reddit_token ELSE user_profiles.reddit_token END,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		profile.ID, profile.UserID, profile.RedditUsername, profile.RedditID,
		profile.IsMod, profile.TotalKarma, profile.RedditToken, now,
	).Scan(&profile.ID, &profile.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user profile: %w", err)
	}
	profile.UpdatedAt = now
	return nil
}

func (r *postgresProfileRepo) GetByUserID(ctx context.Context, userID string) (*core.UserProfile, error) {
	query := `
		SELECT id, user_id, reddit_username, reddit_id, is_mod, total_karma, reddit_token, created_at, updated_at
		FROM user_profiles WHERE user_id = $1
	`
	var p core.UserProfile
	var token sql.NullString
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&p.ID, &p.UserID, &p.RedditUsername,
		&p.RedditID, &p.IsMod, &p.TotalKarma, &token, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	p.RedditToken = token.String
	return &p, nil
}

func (r *postgresProfileRepo) SetToken(ctx context.Context, userID, token string) error {
	query := `UPDATE user_profiles SET reddit_token = $2, updated_at = $3 WHERE user_id = $1`
	_, err := r.db.ExecContext(ctx, query, userID, token, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to store reddit token: %w", err)
	}
	return nil
}

// nullable maps an empty string onto SQL NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
