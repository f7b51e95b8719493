// Package rules implements the per-rule matching strategies of the
// monitoring pipeline: case-insensitive keyword matching and AI
// classification with confidence gating.
package rules

import (
	"context"
	"strings"

	"modbot/internal/analysis"
	"modbot/internal/core"
)

// Verdict is the outcome of running one rule against one piece of content.
type Verdict struct {
	Flagged  bool
	Reason   string
	Severity core.AlertSeverity
}

// Matcher evaluates a rule against extracted content text.
type Matcher struct {
	classifier          analysis.Classifier
	confidenceThreshold float64
}

// NewMatcher builds a Matcher. classifier may be nil when no AI rules are
// in use; an AI rule evaluated without a classifier never flags.
func NewMatcher(classifier analysis.Classifier, confidenceThreshold float64) *Matcher {
	if confidenceThreshold <= 0 {
		confidenceThreshold = 0.5
	}
	return &Matcher{
		classifier:          classifier,
		confidenceThreshold: confidenceThreshold,
	}
}

// Match runs the strategy selected by the rule's AI flag. Keyword rules
// with an empty keyword list never flag. AI verdicts are accepted only
// above the confidence threshold; classification failures have already
// been mapped to a not-flagged verdict by the fail-closed classifier.
func (m *Matcher) Match(ctx context.Context, rule core.MonitoringRule, text string) (Verdict, error) {
	if rule.UseAI && rule.AIPrompt != "" {
		return m.matchAI(ctx, rule, text)
	}
	return m.matchKeywords(rule, text), nil
}

func (m *Matcher) matchKeywords(rule core.MonitoringRule, text string) Verdict {
	if len(rule.Keywords) == 0 {
		return Verdict{}
	}

	lower := strings.ToLower(text)
	for _, keyword := range rule.Keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return Verdict{
				Flagged:  true,
				Reason:   "Keyword match detected: " + strings.Join(rule.Keywords, ", "),
				Severity: core.SeverityMedium,
			}
		}
	}
	return Verdict{}
}

func (m *Matcher) matchAI(ctx context.Context, rule core.MonitoringRule, text string) (Verdict, error) {
	if m.classifier == nil {
		return Verdict{}, nil
	}

	result, err := m.classifier.Classify(ctx, text, rule.AIPrompt)
	if err != nil {
		return Verdict{}, err
	}

	if result.Flagged && result.Confidence > m.confidenceThreshold {
		return Verdict{
			Flagged:  true,
			Reason:   "AI Analysis: " + result.Reason,
			Severity: core.SeverityHigh,
		}, nil
	}
	return Verdict{}, nil
}

// ExtractText pulls the text relevant to a rule's monitoring type out of a
// content item: posts combine title and body, comments use the body only.
// An empty result means the item should be skipped.
func ExtractText(monitoringType core.MonitoringType, item core.ContentItem) string {
	if monitoringType == core.MonitorComments || item.Kind == core.KindComment {
		return strings.TrimSpace(item.Body)
	}

	parts := make([]string, 0, 2)
	if t := strings.TrimSpace(item.Title); t != "" {
		parts = append(parts, t)
	}
	if b := strings.TrimSpace(item.Body); b != "" {
		parts = append(parts, b)
	}
	return strings.Join(parts, "\n\n")
}
