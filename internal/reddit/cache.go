package reddit

import (
	"context"
	"log/slog"
	"time"

	"modbot/internal/core"
	"modbot/internal/logger"
)

// ListingCache persists fetched listings between fetches. The store
// package provides the SQLite implementation.
type ListingCache interface {
	GetCachedListing(subreddit string, contentType core.MonitoringType, maxAge time.Duration) ([]core.ContentItem, error)
	CacheListing(subreddit string, contentType core.MonitoringType, items []core.ContentItem) error
}

// CachedSource is a read-through cache around a Source. Several rules
// watching the same subreddit share one listing fetch per pass, and scan
// triggers repeated within maxAge reuse the previous listing instead of
// hitting the Reddit API again.
//
// Only public surfaces are cached. Modqueue and report listings are
// fetched with a user's moderator token, and the cache key carries no
// user, so those must never be served from a shared cache.
type CachedSource struct {
	inner  Source
	cache  ListingCache
	maxAge time.Duration
	log    *slog.Logger
}

// NewCachedSource wraps inner with a listing cache.
func NewCachedSource(inner Source, cache ListingCache, maxAge time.Duration) *CachedSource {
	return &CachedSource{
		inner:  inner,
		cache:  cache,
		maxAge: maxAge,
		log:    logger.Get(),
	}
}

// Fetch serves a fresh-enough cached listing when one exists, otherwise
// fetches from the wrapped source and caches the result. Cache failures
// are logged and fall through to the wrapped source.
func (c *CachedSource) Fetch(ctx context.Context, subreddit string, contentType core.MonitoringType, limit int) ([]core.ContentItem, error) {
	if !cacheable(contentType) {
		return c.inner.Fetch(ctx, subreddit, contentType, limit)
	}

	cached, err := c.cache.GetCachedListing(subreddit, contentType, c.maxAge)
	if err != nil {
		c.log.Warn("Listing cache read failed", "subreddit", subreddit, "error", err.Error())
	} else if cached != nil {
		return clip(cached, limit), nil
	}

	items, err := c.inner.Fetch(ctx, subreddit, contentType, limit)
	if err != nil {
		return nil, err
	}

	// An empty listing is not cached: the live client degrades to an
	// empty slice on upstream failure, and caching that would keep
	// serving the outage after the API recovers.
	if len(items) > 0 {
		if err := c.cache.CacheListing(subreddit, contentType, items); err != nil {
			c.log.Warn("Listing cache write failed", "subreddit", subreddit, "error", err.Error())
		}
	}
	return items, nil
}

func cacheable(contentType core.MonitoringType) bool {
	return contentType == core.MonitorPosts || contentType == core.MonitorComments
}

func clip(items []core.ContentItem, limit int) []core.ContentItem {
	if limit > 0 && limit < len(items) {
		return items[:limit]
	}
	return items
}
