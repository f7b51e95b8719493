package persistence

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"modbot/internal/core"
)

// MemoryDB is an in-memory Database implementation. It backs tests and
// local development without a PostgreSQL instance; semantics (upsert keys,
// dedup lookups, active-rule joins) mirror the postgres repositories.
type MemoryDB struct {
	mu sync.RWMutex

	communities map[string]core.Community
	rules       map[string]core.MonitoringRule
	alerts      map[string]core.Alert
	schedules   map[string]core.Schedule
	settings    map[string]core.NotificationSetting
	profiles    map[string]core.UserProfile
}

// NewMemoryDB creates an empty in-memory database.
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		communities: make(map[string]core.Community),
		rules:       make(map[string]core.MonitoringRule),
		alerts:      make(map[string]core.Alert),
		schedules:   make(map[string]core.Schedule),
		settings:    make(map[string]core.NotificationSetting),
		profiles:    make(map[string]core.UserProfile),
	}
}

func (m *MemoryDB) Communities() CommunityRepository { return (*memoryCommunityRepo)(m) }
func (m *MemoryDB) Rules() RuleRepository            { return (*memoryRuleRepo)(m) }
func (m *MemoryDB) Alerts() AlertRepository          { return (*memoryAlertRepo)(m) }
func (m *MemoryDB) Schedules() ScheduleRepository    { return (*memoryScheduleRepo)(m) }
func (m *MemoryDB) NotificationSettings() NotificationSettingRepository {
	return (*memorySettingRepo)(m)
}
func (m *MemoryDB) Profiles() UserProfileRepository { return (*memoryProfileRepo)(m) }

func (m *MemoryDB) Ping(ctx context.Context) error { return nil }
func (m *MemoryDB) Close() error                   { return nil }

type memoryCommunityRepo MemoryDB

func (r *memoryCommunityRepo) Upsert(ctx context.Context, community *core.Community) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for id, existing := range r.communities {
		if existing.UserID == community.UserID && existing.SubredditName == community.SubredditName {
			community.ID = id
			community.CreatedAt = existing.CreatedAt
			community.UpdatedAt = now
			if community.Status == "" {
				community.Status = existing.Status
			}
			r.communities[id] = *community
			return nil
		}
	}

	if community.ID == "" {
		community.ID = uuid.NewString()
	}
	if community.Status == "" {
		community.Status = core.StatusActive
	}
	community.CreatedAt = now
	community.UpdatedAt = now
	r.communities[community.ID] = *community
	return nil
}

func (r *memoryCommunityRepo) Get(ctx context.Context, id string) (*core.Community, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.communities[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (r *memoryCommunityRepo) ListByUser(ctx context.Context, userID string, opts ListOptions) ([]core.Community, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []core.Community
	for _, c := range r.communities {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, opts), nil
}

func (r *memoryCommunityRepo) UpdateStatus(ctx context.Context, id string, status core.SubredditStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.communities[id]; ok {
		c.Status = status
		c.UpdatedAt = time.Now().UTC()
		r.communities[id] = c
	}
	return nil
}

func (r *memoryCommunityRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, c := range r.communities {
		if c.UserID == userID {
			count++
		}
	}
	return count, nil
}

type memoryRuleRepo MemoryDB

func (r *memoryRuleRepo) Create(ctx context.Context, rule *core.MonitoringRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	rule.CreatedAt = now
	rule.UpdatedAt = now
	r.rules[rule.ID] = *rule
	return nil
}

func (r *memoryRuleRepo) Get(ctx context.Context, id string) (*core.MonitoringRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rule, ok := r.rules[id]; ok {
		return &rule, nil
	}
	return nil, nil
}

func (r *memoryRuleRepo) ListByUser(ctx context.Context, userID string, opts ListOptions) ([]core.MonitoringRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []core.MonitoringRule
	for _, rule := range r.rules {
		if rule.UserID == userID {
			out = append(out, rule)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, opts), nil
}

func (r *memoryRuleRepo) ListActive(ctx context.Context) ([]core.ActiveRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []core.ActiveRule
	for _, rule := range r.rules {
		if !rule.IsActive {
			continue
		}
		community, ok := r.communities[rule.CommunityID]
		if !ok || community.Status != core.StatusActive {
			continue
		}
		out = append(out, core.ActiveRule{
			MonitoringRule: rule,
			SubredditName:  community.SubredditName,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRuleRepo) Update(ctx context.Context, rule *core.MonitoringRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.rules[rule.ID]; ok {
		rule.CreatedAt = existing.CreatedAt
		rule.UpdatedAt = time.Now().UTC()
		r.rules[rule.ID] = *rule
	}
	return nil
}

func (r *memoryRuleRepo) SetActive(ctx context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rule, ok := r.rules[id]; ok {
		rule.IsActive = active
		rule.UpdatedAt = time.Now().UTC()
		r.rules[id] = rule
	}
	return nil
}

func (r *memoryRuleRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rules, id)
	return nil
}

func (r *memoryRuleRepo) CountActiveByUser(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, rule := range r.rules {
		if rule.UserID == userID && rule.IsActive {
			count++
		}
	}
	return count, nil
}

type memoryAlertRepo MemoryDB

func (r *memoryAlertRepo) Create(ctx context.Context, alert *core.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}
	r.alerts[alert.ID] = *alert
	return nil
}

func (r *memoryAlertRepo) Exists(ctx context.Context, ruleID, contentID string) (bool, error) {
	// An empty content id would match the unset side column of any prior
	// alert. Postgres stores those columns as NULL, so agree with it here.
	if contentID == "" {
		return false, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, alert := range r.alerts {
		if alert.RuleID == ruleID && (alert.RedditPostID == contentID || alert.RedditCommentID == contentID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryAlertRepo) Get(ctx context.Context, id string) (*core.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if alert, ok := r.alerts[id]; ok {
		return &alert, nil
	}
	return nil, nil
}

func (r *memoryAlertRepo) ListByUser(ctx context.Context, userID string, opts ListOptions) ([]core.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []core.Alert
	for _, alert := range r.alerts {
		if alert.UserID == userID {
			out = append(out, alert)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, opts), nil
}

func (r *memoryAlertRepo) MarkRead(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if alert, ok := r.alerts[id]; ok {
		alert.IsRead = true
		r.alerts[id] = alert
	}
	return nil
}

func (r *memoryAlertRepo) CountUnreadByUser(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, alert := range r.alerts {
		if alert.UserID == userID && !alert.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *memoryAlertRepo) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, alert := range r.alerts {
		if alert.UserID == userID && !alert.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

type memoryScheduleRepo MemoryDB

func (r *memoryScheduleRepo) Create(ctx context.Context, schedule *core.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now
	r.schedules[schedule.ID] = *schedule
	return nil
}

func (r *memoryScheduleRepo) Get(ctx context.Context, id string) (*core.Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if schedule, ok := r.schedules[id]; ok {
		return &schedule, nil
	}
	return nil, nil
}

func (r *memoryScheduleRepo) ListByUser(ctx context.Context, userID string, opts ListOptions) ([]core.Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []core.Schedule
	for _, schedule := range r.schedules {
		if schedule.UserID == userID {
			out = append(out, schedule)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, opts), nil
}

func (r *memoryScheduleRepo) SetActive(ctx context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if schedule, ok := r.schedules[id]; ok {
		schedule.IsActive = active
		schedule.UpdatedAt = time.Now().UTC()
		r.schedules[id] = schedule
	}
	return nil
}

func (r *memoryScheduleRepo) UpdateNextRun(ctx context.Context, id string, nextRun time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if schedule, ok := r.schedules[id]; ok {
		schedule.NextRun = nextRun
		schedule.UpdatedAt = time.Now().UTC()
		r.schedules[id] = schedule
	}
	return nil
}

func (r *memoryScheduleRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.schedules, id)
	return nil
}

type memorySettingRepo MemoryDB

func (r *memorySettingRepo) Upsert(ctx context.Context, setting *core.NotificationSetting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	key := setting.UserID + "|" + string(setting.Channel)
	if existing, ok := r.settings[key]; ok {
		setting.ID = existing.ID
		setting.CreatedAt = existing.CreatedAt
	} else {
		if setting.ID == "" {
			setting.ID = uuid.NewString()
		}
		setting.CreatedAt = now
	}
	setting.UpdatedAt = now
	r.settings[key] = *setting
	return nil
}

func (r *memorySettingRepo) ListByUser(ctx context.Context, userID string) ([]core.NotificationSetting, error) {
	return r.list(userID, false), nil
}

func (r *memorySettingRepo) ListEnabledByUser(ctx context.Context, userID string) ([]core.NotificationSetting, error) {
	return r.list(userID, true), nil
}

func (r *memorySettingRepo) list(userID string, enabledOnly bool) []core.NotificationSetting {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []core.NotificationSetting
	for key, setting := range r.settings {
		if !strings.HasPrefix(key, userID+"|") {
			continue
		}
		if enabledOnly && !setting.IsEnabled {
			continue
		}
		out = append(out, setting)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Channel < out[j].Channel })
	return out
}

type memoryProfileRepo MemoryDB

func (r *memoryProfileRepo) Upsert(ctx context.Context, profile *core.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := r.profiles[profile.UserID]; ok {
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
		if profile.RedditToken == "" {
			profile.RedditToken = existing.RedditToken
		}
	} else {
		if profile.ID == "" {
			profile.ID = uuid.NewString()
		}
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	r.profiles[profile.UserID] = *profile
	return nil
}

func (r *memoryProfileRepo) GetByUserID(ctx context.Context, userID string) (*core.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if profile, ok := r.profiles[userID]; ok {
		return &profile, nil
	}
	return nil, nil
}

func (r *memoryProfileRepo) SetToken(ctx context.Context, userID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if profile, ok := r.profiles[userID]; ok {
		profile.RedditToken = token
		profile.UpdatedAt = time.Now().UTC()
		r.profiles[userID] = profile
	}
	return nil
}

func paginate[T any](items []T, opts ListOptions) []T {
	if opts.Offset > 0 {
		if opts.Offset >= len(items) {
			return nil
		}
		items = items[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items
}
