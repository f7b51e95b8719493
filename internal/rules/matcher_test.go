package rules

import (
	"context"
	"errors"
	"strings"
	"testing"

	"modbot/internal/analysis"
	"modbot/internal/core"
)

type fixedClassifier struct {
	result core.AnalysisResult
	err    error
}

func (f fixedClassifier) Classify(ctx context.Context, content, prompt string) (core.AnalysisResult, error) {
	return f.result, f.err
}

func keywordRule(keywords ...string) core.MonitoringRule {
	return core.MonitoringRule{
		Name:           "spam watch",
		MonitoringType: core.MonitorPosts,
		Keywords:       keywords,
	}
}

func aiRule(prompt string) core.MonitoringRule {
	return core.MonitoringRule{
		Name:           "tone watch",
		MonitoringType: core.MonitorPosts,
		UseAI:          true,
		AIPrompt:       prompt,
	}
}

func TestMatchKeywordCaseInsensitive(t *testing.T) {
	matcher := NewMatcher(nil, 0.5)

	tests := []struct {
		name    string
		text    string
		flagged bool
	}{
		{"exact match", "this is spam content", true},
		{"uppercase content", "THIS IS SPAM CONTENT", true},
		{"mixed case keyword", "free crypto giveaway", true},
		{"substring match", "spammy behavior", true},
		{"no match", "a perfectly fine post", false},
		{"empty text", "", false},
	}

	rule := keywordRule("spam", "Crypto")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := matcher.Match(context.Background(), rule, tt.text)
			if err != nil {
				t.Fatalf("Match failed: %v", err)
			}
			if verdict.Flagged != tt.flagged {
				t.Errorf("Flagged = %v, want %v", verdict.Flagged, tt.flagged)
			}
		})
	}
}

func TestMatchKeywordVerdictShape(t *testing.T) {
	matcher := NewMatcher(nil, 0.5)

	verdict, err := matcher.Match(context.Background(), keywordRule("buy now", "click here"), "Buy now while stocks last")
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}

	if !verdict.Flagged {
		t.Fatal("expected keyword match to flag")
	}
	if verdict.Severity != core.SeverityMedium {
		t.Errorf("Severity = %q, want %q", verdict.Severity, core.SeverityMedium)
	}
	if verdict.Reason != "Keyword match detected: buy now, click here" {
		t.Errorf("unexpected reason: %q", verdict.Reason)
	}
}

func TestMatchKeywordEmptyListNeverFlags(t *testing.T) {
	matcher := NewMatcher(nil, 0.5)

	verdict, err := matcher.Match(context.Background(), keywordRule(), "anything at all")
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if verdict.Flagged {
		t.Error("rule with no keywords must never flag")
	}
}

func TestMatchKeywordSkipsBlankKeyword(t *testing.T) {
	matcher := NewMatcher(nil, 0.5)

	verdict, err := matcher.Match(context.Background(), keywordRule("", "scam"), "no offending words here")
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if verdict.Flagged {
		t.Error("blank keyword must not match everything")
	}
}

func TestMatchAIConfidenceGate(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		flagged    bool
		want       bool
	}{
		{"confident violation", 0.9, true, true},
		{"exactly at threshold", 0.5, true, false},
		{"below threshold", 0.3, true, false},
		{"not flagged", 0.9, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := fixedClassifier{result: core.AnalysisResult{
				Flagged:    tt.flagged,
				Reason:     "contains harassment",
				Confidence: tt.confidence,
			}}
			matcher := NewMatcher(classifier, 0.5)

			verdict, err := matcher.Match(context.Background(), aiRule("flag harassment"), "some content")
			if err != nil {
				t.Fatalf("Match failed: %v", err)
			}
			if verdict.Flagged != tt.want {
				t.Errorf("Flagged = %v, want %v", verdict.Flagged, tt.want)
			}
		})
	}
}

func TestMatchAIVerdictShape(t *testing.T) {
	classifier := fixedClassifier{result: core.AnalysisResult{
		Flagged:    true,
		Reason:     "targeted insults toward another user",
		Confidence: 0.92,
	}}
	matcher := NewMatcher(classifier, 0.5)

	verdict, err := matcher.Match(context.Background(), aiRule("flag harassment"), "some content")
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}

	if verdict.Severity != core.SeverityHigh {
		t.Errorf("Severity = %q, want %q", verdict.Severity, core.SeverityHigh)
	}
	if verdict.Reason != "AI Analysis: targeted insults toward another user" {
		t.Errorf("unexpected reason: %q", verdict.Reason)
	}
}

func TestMatchAIClassifierErrorPropagates(t *testing.T) {
	classifier := fixedClassifier{err: errors.New("model unavailable")}
	matcher := NewMatcher(classifier, 0.5)

	_, err := matcher.Match(context.Background(), aiRule("flag spam"), "some content")
	if err == nil {
		t.Fatal("expected classifier error to propagate")
	}
}

func TestMatchAIFailClosedNeverFlags(t *testing.T) {
	classifier := analysis.FailClosed(fixedClassifier{err: errors.New("model unavailable")})
	matcher := NewMatcher(classifier, 0.5)

	verdict, err := matcher.Match(context.Background(), aiRule("flag spam"), "some content")
	if err != nil {
		t.Fatalf("fail-closed classifier must not return an error, got: %v", err)
	}
	if verdict.Flagged {
		t.Error("fail-closed verdict must not flag")
	}
}

func TestMatchAIWithoutClassifier(t *testing.T) {
	matcher := NewMatcher(nil, 0.5)

	verdict, err := matcher.Match(context.Background(), aiRule("flag spam"), "some content")
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if verdict.Flagged {
		t.Error("AI rule without a classifier must never flag")
	}
}

func TestMatchAIRuleWithEmptyPromptFallsBackToKeywords(t *testing.T) {
	classifier := fixedClassifier{result: core.AnalysisResult{Flagged: true, Confidence: 1}}
	matcher := NewMatcher(classifier, 0.5)

	rule := core.MonitoringRule{
		Name:           "mixed rule",
		MonitoringType: core.MonitorPosts,
		UseAI:          true,
		Keywords:       []string{"refund"},
	}

	verdict, err := matcher.Match(context.Background(), rule, "I want a refund")
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if !verdict.Flagged {
		t.Fatal("expected keyword fallback to flag")
	}
	if verdict.Severity != core.SeverityMedium {
		t.Errorf("Severity = %q, want keyword severity %q", verdict.Severity, core.SeverityMedium)
	}
}

func TestNewMatcherDefaultThreshold(t *testing.T) {
	classifier := fixedClassifier{result: core.AnalysisResult{Flagged: true, Confidence: 0.4}}
	matcher := NewMatcher(classifier, 0)

	verdict, err := matcher.Match(context.Background(), aiRule("flag spam"), "some content")
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if verdict.Flagged {
		t.Error("zero threshold should default to 0.5, rejecting 0.4 confidence")
	}
}

func TestExtractText(t *testing.T) {
	post := core.ContentItem{
		Kind:  core.KindPost,
		Title: "  Weekly thread  ",
		Body:  "Post anything here.",
	}
	comment := core.ContentItem{
		Kind: core.KindComment,
		Body: "  nice write-up  ",
	}

	tests := []struct {
		name           string
		monitoringType core.MonitoringType
		item           core.ContentItem
		want           string
	}{
		{"post combines title and body", core.MonitorPosts, post, "Weekly thread\n\nPost anything here."},
		{"post without body", core.MonitorPosts, core.ContentItem{Kind: core.KindPost, Title: "Just a title"}, "Just a title"},
		{"comment uses body only", core.MonitorComments, comment, "nice write-up"},
		{"comment item under post rule", core.MonitorPosts, comment, "nice write-up"},
		{"empty item", core.MonitorPosts, core.ContentItem{Kind: core.KindPost}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractText(tt.monitoringType, tt.item)
			if got != tt.want {
				t.Errorf("ExtractText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractTextModqueueMixedKinds(t *testing.T) {
	// Modqueue listings mix posts and comments; the item kind decides.
	comment := core.ContentItem{Kind: core.KindComment, Body: "reported comment"}
	got := ExtractText(core.MonitorModqueue, comment)
	if got != "reported comment" {
		t.Errorf("ExtractText = %q, want body only for comment items", got)
	}

	post := core.ContentItem{Kind: core.KindPost, Title: "reported post", Body: "details"}
	got = ExtractText(core.MonitorModqueue, post)
	if !strings.Contains(got, "reported post") || !strings.Contains(got, "details") {
		t.Errorf("ExtractText = %q, want title and body for post items", got)
	}
}
