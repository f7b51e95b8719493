package monitor

import (
	"context"
	"errors"
	"testing"

	"modbot/internal/core"
	"modbot/internal/persistence"
	"modbot/internal/reddit"
	"modbot/internal/rules"
)

type stubSource struct {
	items []core.ContentItem
	err   error
}

func (s *stubSource) Fetch(ctx context.Context, subreddit string, contentType core.MonitoringType, limit int) ([]core.ContentItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	if limit < len(s.items) {
		return s.items[:limit], nil
	}
	return s.items, nil
}

type stubClassifier struct {
	result core.AnalysisResult
	err    error
	calls  int
}

func (s *stubClassifier) Classify(ctx context.Context, content, prompt string) (core.AnalysisResult, error) {
	s.calls++
	if s.err != nil {
		return core.AnalysisResult{}, s.err
	}
	return s.result, nil
}

type recordingDispatcher struct {
	alerts []core.Alert
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, alert core.Alert, subreddit string) {
	d.alerts = append(d.alerts, alert)
}

func seedRule(t *testing.T, db *persistence.MemoryDB, rule core.MonitoringRule, subreddit string) core.MonitoringRule {
	t.Helper()
	ctx := context.Background()

	community := &core.Community{
		UserID:        rule.UserID,
		SubredditName: subreddit,
		DisplayName:   "r/" + subreddit,
		Status:        core.StatusActive,
	}
	if err := db.Communities().Upsert(ctx, community); err != nil {
		t.Fatalf("Failed to seed community: %v", err)
	}

	rule.CommunityID = community.ID
	rule.IsActive = true
	if err := db.Rules().Create(ctx, &rule); err != nil {
		t.Fatalf("Failed to seed rule: %v", err)
	}

	profile := &core.UserProfile{UserID: rule.UserID, RedditUsername: "mod"}
	if err := db.Profiles().Upsert(ctx, profile); err != nil {
		t.Fatalf("Failed to seed profile: %v", err)
	}
	return rule
}

func newOrchestrator(db *persistence.MemoryDB, source reddit.Source, classifier *stubClassifier, dispatcher AlertDispatcher) *Orchestrator {
	matcher := rules.NewMatcher(classifier, 0.5)
	factory := func(token string) reddit.Source { return source }
	return NewOrchestrator(db, matcher, factory, dispatcher, 10)
}

func TestRun_KeywordMatchCreatesAlert(t *testing.T) {
	db := persistence.NewMemoryDB()
	rule := seedRule(t, db, core.MonitoringRule{
		UserID:         "user-1",
		Name:           "Spam watch",
		MonitoringType: core.MonitorPosts,
		Keywords:       []string{"buy now", "discount"},
	}, "golang")

	source := &stubSource{items: []core.ContentItem{
		{ID: "p1", Kind: core.KindPost, Title: "Buy now and save big!", Body: "Limited offer."},
		{ID: "p2", Kind: core.KindPost, Title: "Weekly discussion", Body: "What are you working on?"},
	}}

	orch := newOrchestrator(db, source, &stubClassifier{}, nil)
	summary, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.TotalRulesProcessed != 1 {
		t.Errorf("Expected 1 rule processed, got %d", summary.TotalRulesProcessed)
	}
	if summary.TotalAlertsCreated != 1 {
		t.Fatalf("Expected 1 alert created, got %d", summary.TotalAlertsCreated)
	}
	if summary.Message != "Monitoring completed. Created 1 new alerts." {
		t.Errorf("Unexpected summary message: %q", summary.Message)
	}

	alerts, err := db.Alerts().ListByUser(context.Background(), "user-1", persistence.ListOptions{})
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("Expected 1 stored alert, got %d", len(alerts))
	}

	alert := alerts[0]
	if alert.Title != "Keyword match detected: Spam watch" {
		t.Errorf("Unexpected alert title: %q", alert.Title)
	}
	if alert.Severity != core.SeverityMedium {
		t.Errorf("Keyword alert should be medium severity, got %s", alert.Severity)
	}
	if alert.RedditPostID != "p1" {
		t.Errorf("Expected alert keyed to post p1, got %q", alert.RedditPostID)
	}
	if alert.RuleID != rule.ID {
		t.Errorf("Alert should reference the rule that raised it")
	}
}

func TestRun_SecondPassIsIdempotent(t *testing.T) {
	db := persistence.NewMemoryDB()
	seedRule(t, db, core.MonitoringRule{
		UserID:         "user-1",
		Name:           "Spam watch",
		MonitoringType: core.MonitorPosts,
		Keywords:       []string{"spam"},
	}, "golang")

	source := &stubSource{items: []core.ContentItem{
		{ID: "p1", Kind: core.KindPost, Title: "This is spam", Body: "really"},
	}}

	orch := newOrchestrator(db, source, &stubClassifier{}, nil)

	first, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	if first.TotalAlertsCreated != 1 {
		t.Fatalf("Expected 1 alert on first pass, got %d", first.TotalAlertsCreated)
	}

	second, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if second.TotalAlertsCreated != 0 {
		t.Errorf("Second pass over unchanged content should create no alerts, got %d", second.TotalAlertsCreated)
	}
	if second.TotalRulesProcessed != 1 {
		t.Errorf("Second pass should still process the rule, got %d", second.TotalRulesProcessed)
	}
}

func TestRun_AIRuleCreatesHighSeverityAlert(t *testing.T) {
	db := persistence.NewMemoryDB()
	seedRule(t, db, core.MonitoringRule{
		UserID:         "user-1",
		Name:           "Harassment watch",
		MonitoringType: core.MonitorComments,
		UseAI:          true,
		AIPrompt:       "Flag harassment or personal attacks",
	}, "golang")

	classifier := &stubClassifier{result: core.AnalysisResult{
		Flagged:    true,
		Reason:     "Targeted personal attack",
		Confidence: 0.92,
	}}
	source := &stubSource{items: []core.ContentItem{
		{ID: "c1", Kind: core.KindComment, Body: "You are an idiot and should leave"},
	}}

	dispatcher := &recordingDispatcher{}
	orch := newOrchestrator(db, source, classifier, dispatcher)
	summary, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.TotalAlertsCreated != 1 {
		t.Fatalf("Expected 1 alert, got %d", summary.TotalAlertsCreated)
	}

	alerts, _ := db.Alerts().ListByUser(context.Background(), "user-1", persistence.ListOptions{})
	alert := alerts[0]
	if alert.Severity != core.SeverityHigh {
		t.Errorf("AI alert should be high severity, got %s", alert.Severity)
	}
	if alert.Title != "AI flagged content in rule: Harassment watch" {
		t.Errorf("Unexpected alert title: %q", alert.Title)
	}
	if alert.RedditCommentID != "c1" {
		t.Errorf("Comment alert should carry the comment id, got %q", alert.RedditCommentID)
	}

	if len(dispatcher.alerts) != 1 {
		t.Errorf("Expected 1 dispatched alert, got %d", len(dispatcher.alerts))
	}
}

func TestRun_LowConfidenceAIVerdictIsDropped(t *testing.T) {
	db := persistence.NewMemoryDB()
	seedRule(t, db, core.MonitoringRule{
		UserID:         "user-1",
		Name:           "Harassment watch",
		MonitoringType: core.MonitorComments,
		UseAI:          true,
		AIPrompt:       "Flag harassment",
	}, "golang")

	classifier := &stubClassifier{result: core.AnalysisResult{
		Flagged:    true,
		Reason:     "Maybe rude",
		Confidence: 0.5, // at threshold, not above
	}}
	source := &stubSource{items: []core.ContentItem{
		{ID: "c1", Kind: core.KindComment, Body: "borderline comment"},
	}}

	orch := newOrchestrator(db, source, classifier, nil)
	summary, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.TotalAlertsCreated != 0 {
		t.Errorf("Verdict at the confidence threshold should not alert, got %d", summary.TotalAlertsCreated)
	}
}

func TestRun_VacuousKeywordRuleNeverFlags(t *testing.T) {
	db := persistence.NewMemoryDB()
	seedRule(t, db, core.MonitoringRule{
		UserID:         "user-1",
		Name:           "Empty rule",
		MonitoringType: core.MonitorPosts,
		Keywords:       nil,
	}, "golang")

	source := &stubSource{items: []core.ContentItem{
		{ID: "p1", Kind: core.KindPost, Title: "Anything at all", Body: "text"},
	}}

	orch := newOrchestrator(db, source, &stubClassifier{}, nil)
	summary, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.TotalAlertsCreated != 0 {
		t.Errorf("Rule without keywords should never flag, got %d alerts", summary.TotalAlertsCreated)
	}
}

func TestRun_EmptySourceProducesEmptySummary(t *testing.T) {
	db := persistence.NewMemoryDB()
	seedRule(t, db, core.MonitoringRule{
		UserID:         "user-1",
		Name:           "Spam watch",
		MonitoringType: core.MonitorPosts,
		Keywords:       []string{"spam"},
	}, "golang")

	orch := newOrchestrator(db, &stubSource{}, &stubClassifier{}, nil)
	summary, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.TotalRulesProcessed != 1 {
		t.Errorf("Expected 1 rule processed, got %d", summary.TotalRulesProcessed)
	}
	if summary.TotalAlertsCreated != 0 {
		t.Errorf("Expected 0 alerts from empty source, got %d", summary.TotalAlertsCreated)
	}
	if summary.Message != "Monitoring completed. Created 0 new alerts." {
		t.Errorf("Unexpected summary message: %q", summary.Message)
	}
}

func TestRun_MissingProfileSkipsRule(t *testing.T) {
	db := persistence.NewMemoryDB()
	ctx := context.Background()

	community := &core.Community{UserID: "user-1", SubredditName: "golang", Status: core.StatusActive}
	if err := db.Communities().Upsert(ctx, community); err != nil {
		t.Fatalf("Failed to seed community: %v", err)
	}
	rule := &core.MonitoringRule{
		UserID:         "user-1",
		CommunityID:    community.ID,
		Name:           "Spam watch",
		MonitoringType: core.MonitorPosts,
		IsActive:       true,
		Keywords:       []string{"spam"},
	}
	if err := db.Rules().Create(ctx, rule); err != nil {
		t.Fatalf("Failed to seed rule: %v", err)
	}
	// No profile seeded.

	source := &stubSource{items: []core.ContentItem{
		{ID: "p1", Kind: core.KindPost, Title: "this is spam", Body: ""},
	}}

	orch := newOrchestrator(db, source, &stubClassifier{}, nil)
	summary, err := orch.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.TotalAlertsCreated != 0 {
		t.Errorf("Rule without a profile should be skipped, got %d alerts", summary.TotalAlertsCreated)
	}
	if summary.TotalRulesProcessed != 1 {
		t.Errorf("Skipped rule still counts as processed, got %d", summary.TotalRulesProcessed)
	}
}

func TestRun_FetchFailureIsolatedPerRule(t *testing.T) {
	db := persistence.NewMemoryDB()
	seedRule(t, db, core.MonitoringRule{
		UserID:         "user-1",
		Name:           "Broken rule",
		MonitoringType: core.MonitorPosts,
		Keywords:       []string{"spam"},
	}, "golang")

	source := &stubSource{err: errors.New("boom")}
	orch := newOrchestrator(db, source, &stubClassifier{}, nil)

	summary, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run should isolate per-rule failures, got %v", err)
	}
	if summary.TotalRulesProcessed != 1 {
		t.Errorf("Expected 1 rule processed, got %d", summary.TotalRulesProcessed)
	}
	if summary.TotalAlertsCreated != 0 {
		t.Errorf("Expected 0 alerts, got %d", summary.TotalAlertsCreated)
	}
}

func TestRun_InactiveCommunityExcluded(t *testing.T) {
	db := persistence.NewMemoryDB()
	ctx := context.Background()

	community := &core.Community{UserID: "user-1", SubredditName: "golang", Status: core.StatusPaused}
	if err := db.Communities().Upsert(ctx, community); err != nil {
		t.Fatalf("Failed to seed community: %v", err)
	}
	rule := &core.MonitoringRule{
		UserID:         "user-1",
		CommunityID:    community.ID,
		Name:           "Paused watch",
		MonitoringType: core.MonitorPosts,
		IsActive:       true,
		Keywords:       []string{"spam"},
	}
	if err := db.Rules().Create(ctx, rule); err != nil {
		t.Fatalf("Failed to seed rule: %v", err)
	}

	source := &stubSource{items: []core.ContentItem{
		{ID: "p1", Kind: core.KindPost, Title: "this is spam"},
	}}
	orch := newOrchestrator(db, source, &stubClassifier{}, nil)

	summary, err := orch.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.TotalRulesProcessed != 0 {
		t.Errorf("Rules on paused communities should not load, got %d", summary.TotalRulesProcessed)
	}
}

func TestRun_ItemsWithoutIDSkipped(t *testing.T) {
	db := persistence.NewMemoryDB()
	seedRule(t, db, core.MonitoringRule{
		UserID:         "user-1",
		Name:           "Spam watch",
		MonitoringType: core.MonitorPosts,
		Keywords:       []string{"spam"},
	}, "golang")

	source := &stubSource{items: []core.ContentItem{
		{ID: "", Kind: core.KindPost, Title: "this is spam", Body: "no id on this one"},
	}}

	orch := newOrchestrator(db, source, &stubClassifier{}, nil)

	// An id-less item can never pass the dedup gate, so it must not
	// produce an alert on any pass.
	for i := 0; i < 2; i++ {
		summary, err := orch.Run(context.Background())
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if summary.TotalAlertsCreated != 0 {
			t.Fatalf("pass %d created %d alerts for an id-less item", i+1, summary.TotalAlertsCreated)
		}
	}

	alerts, err := db.Alerts().ListByUser(context.Background(), "user-1", persistence.ListOptions{})
	if err != nil {
		t.Fatalf("Failed to list alerts: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("got %d alerts, want none", len(alerts))
	}
}
