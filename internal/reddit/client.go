// Package reddit implements the content source adapter: bounded listing
// fetches, OAuth code exchange, and identity/moderated-subreddit lookups.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"modbot/internal/config"
	"modbot/internal/core"
	"modbot/internal/logger"
)

const (
	publicBaseURL = "https://www.reddit.com"
	oauthBaseURL  = "https://oauth.reddit.com"
)

// Source fetches a bounded list of recent content items for a subreddit.
// Implementations degrade to an empty slice on upstream failure; they do
// not retry and do not paginate.
type Source interface {
	Fetch(ctx context.Context, subreddit string, contentType core.MonitoringType, limit int) ([]core.ContentItem, error)
}

// Client is the live Reddit source. With an access token it reads from
// oauth.reddit.com; without one it falls back to the public JSON listings,
// which cover posts and comments but not mod surfaces.
type Client struct {
	httpClient *http.Client
	userAgent  string
	token      string
	log        *slog.Logger
}

// NewClient creates a live Reddit source. token may be empty for
// unauthenticated access to public listings.
func NewClient(cfg config.Reddit, token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: config.ParseTimeout(cfg.Timeout, 15*time.Second)},
		userAgent:  cfg.UserAgent,
		token:      token,
		log:        logger.Get(),
	}
}

// listing mirrors the Reddit listing envelope.
type listing struct {
	Data struct {
		Children []struct {
			Kind string      `json:"kind"`
			Data listingItem `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type listingItem struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	Body       string  `json:"body"`
	Author     string  `json:"author"`
	Subreddit  string  `json:"subreddit"`
	Permalink  string  `json:"permalink"`
	CreatedUTC float64 `json:"created_utc"`
}

// Fetch retrieves up to limit recent items of the given type. Transport
// failures, non-200 responses, and malformed bodies all degrade to an
// empty slice so a single bad subreddit cannot abort a scan.
func (c *Client) Fetch(ctx context.Context, subreddit string, contentType core.MonitoringType, limit int) ([]core.ContentItem, error) {
	endpoint, kind, ok := c.endpointFor(subreddit, contentType)
	if !ok {
		c.log.Warn("Listing requires an authenticated moderator token, skipping",
			"subreddit", subreddit, "content_type", string(contentType))
		return []core.ContentItem{}, nil
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	reqURL := endpoint + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build listing request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("Reddit listing fetch failed", "subreddit", subreddit, "error", err.Error())
		return []core.ContentItem{}, nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("Reddit listing returned non-200", "subreddit", subreddit, "status", resp.StatusCode)
		return []core.ContentItem{}, nil
	}

	var l listing
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		c.log.Warn("Failed to decode Reddit listing", "subreddit", subreddit, "error", err.Error())
		return []core.ContentItem{}, nil
	}

	items := make([]core.ContentItem, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		d := child.Data
		items = append(items, core.ContentItem{
			ID:        d.ID,
			Kind:      kind,
			Subreddit: d.Subreddit,
			Title:     d.Title,
			Body:      itemBody(kind, d),
			Author:    d.Author,
			Permalink: d.Permalink,
			CreatedAt: time.Unix(int64(d.CreatedUTC), 0).UTC(),
		})
	}
	return items, nil
}

// endpointFor maps a monitoring type onto a listing URL. The third return
// is false when the surface is unavailable for the current auth level.
func (c *Client) endpointFor(subreddit string, contentType core.MonitoringType) (string, core.ContentKind, bool) {
	base := publicBaseURL
	if c.token != "" {
		base = oauthBaseURL
	}

	switch contentType {
	case core.MonitorComments:
		return fmt.Sprintf("%s/r/%s/comments.json", base, subreddit), core.KindComment, true
	case core.MonitorModqueue:
		if c.token == "" {
			return "", core.KindPost, false
		}
		return fmt.Sprintf("%s/r/%s/about/modqueue.json", base, subreddit), core.KindPost, true
	case core.MonitorReports:
		if c.token == "" {
			return "", core.KindPost, false
		}
		return fmt.Sprintf("%s/r/%s/about/reports.json", base, subreddit), core.KindPost, true
	default: // posts
		return fmt.Sprintf("%s/r/%s/new.json", base, subreddit), core.KindPost, true
	}
}

func itemBody(kind core.ContentKind, d listingItem) string {
	if kind == core.KindComment {
		return d.Body
	}
	return d.Selftext
}
