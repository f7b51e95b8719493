package reddit

import (
	"context"
	"time"

	"modbot/internal/core"
)

// SampleSource is the explicit degraded source used for demos and test
// environments. It is selected by configuration (reddit.use_sample_data),
// never silently on a live fetch failure, so an outage of the real source
// stays visible as empty scan results.
type SampleSource struct{}

// NewSampleSource creates a source that serves a small fixed set of items.
func NewSampleSource() *SampleSource {
	return &SampleSource{}
}

// Fetch returns the synthetic sample bounded by limit.
func (s *SampleSource) Fetch(ctx context.Context, subreddit string, contentType core.MonitoringType, limit int) ([]core.ContentItem, error) {
	kind := core.KindPost
	if contentType == core.MonitorComments {
		kind = core.KindComment
	}

	now := time.Now().UTC()
	items := []core.ContentItem{
		{
			ID:        "sample1",
			Kind:      kind,
			Subreddit: subreddit,
			Title:     "Limited time offer",
			Body: "Check out this amazing deal on our new product! Get 50% off with code SAVE50. " +
				"Limited time offer! Click the link in my bio to order now. This is totally not spam, " +
				"I'm just sharing a great opportunity with the community.",
			Author:    "deal_hunter_99",
			CreatedAt: now.Add(-10 * time.Minute),
		},
		{
			ID:        "sample2",
			Kind:      kind,
			Subreddit: subreddit,
			Title:     "Weekly discussion thread",
			Body:      "What is everyone working on this week? Share your progress below.",
			Author:    "community_mod",
			CreatedAt: now.Add(-2 * time.Hour),
		},
		{
			ID:        "sample3",
			Kind:      kind,
			Subreddit: subreddit,
			Title:     "Question about the sidebar rules",
			Body:      "Is there a full list of posting rules anywhere? The sidebar only shows three.",
			Author:    "new_member",
			CreatedAt: now.Add(-6 * time.Hour),
		},
	}

	if kind == core.KindComment {
		for i := range items {
			items[i].Title = ""
		}
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items, nil
}
