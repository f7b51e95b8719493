package reddit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"modbot/internal/core"
	"modbot/internal/logger"
)

// rewriteTransport redirects every request to the test server so the
// client's real listing URLs can be exercised against canned responses.
type rewriteTransport struct {
	target *url.URL
}

func (t rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = t.target.Scheme
	req.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func newTestClient(t *testing.T, token string, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	target, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("failed to parse test server URL: %v", err)
	}

	return &Client{
		httpClient: &http.Client{Transport: rewriteTransport{target: target}, Timeout: 5 * time.Second},
		userAgent:  "modbot-test/0.1",
		token:      token,
		log:        logger.Get(),
	}
}

const postListing = `{
	"data": {
		"children": [
			{"kind": "t3", "data": {
				"id": "abc123",
				"title": "Flash sale today only",
				"selftext": "Huge discounts, click here",
				"author": "seller42",
				"subreddit": "golang",
				"permalink": "/r/golang/comments/abc123/flash_sale/",
				"created_utc": 1756600000
			}},
			{"kind": "t3", "data": {
				"id": "def456",
				"title": "Show and tell",
				"selftext": "",
				"author": "builder",
				"subreddit": "golang",
				"permalink": "/r/golang/comments/def456/show_and_tell/",
				"created_utc": 1756590000
			}}
		]
	}
}`

const commentListing = `{
	"data": {
		"children": [
			{"kind": "t1", "data": {
				"id": "cmt1",
				"body": "this is clearly spam",
				"author": "watcher",
				"subreddit": "golang",
				"permalink": "/r/golang/comments/abc123/flash_sale/cmt1/",
				"created_utc": 1756600100
			}}
		]
	}
}`

func TestClientFetchPosts(t *testing.T) {
	var gotPath, gotLimit, gotAgent string
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotLimit = r.URL.Query().Get("limit")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(postListing))
	})

	items, err := client.Fetch(context.Background(), "golang", core.MonitorPosts, 10)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if gotPath != "/r/golang/new.json" {
		t.Errorf("path = %q, want /r/golang/new.json", gotPath)
	}
	if gotLimit != "10" {
		t.Errorf("limit query = %q, want 10", gotLimit)
	}
	if gotAgent != "modbot-test/0.1" {
		t.Errorf("User-Agent = %q", gotAgent)
	}

	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	first := items[0]
	if first.ID != "abc123" {
		t.Errorf("ID = %q", first.ID)
	}
	if first.Kind != core.KindPost {
		t.Errorf("Kind = %q, want %q", first.Kind, core.KindPost)
	}
	if first.Body != "Huge discounts, click here" {
		t.Errorf("Body = %q, want selftext", first.Body)
	}
	if first.CreatedAt != time.Unix(1756600000, 0).UTC() {
		t.Errorf("CreatedAt = %v", first.CreatedAt)
	}
}

func TestClientFetchComments(t *testing.T) {
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/r/golang/comments.json" {
			t.Errorf("path = %q, want /r/golang/comments.json", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(commentListing))
	})

	items, err := client.Fetch(context.Background(), "golang", core.MonitorComments, 5)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Kind != core.KindComment {
		t.Errorf("Kind = %q, want %q", items[0].Kind, core.KindComment)
	}
	if items[0].Body != "this is clearly spam" {
		t.Errorf("Body = %q, want comment body", items[0].Body)
	}
	if items[0].Title != "" {
		t.Errorf("Title = %q, want empty for comments", items[0].Title)
	}
}

func TestClientFetchDegradesOnServerError(t *testing.T) {
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	})

	items, err := client.Fetch(context.Background(), "golang", core.MonitorPosts, 10)
	if err != nil {
		t.Fatalf("Fetch must not error on upstream failure, got: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("got %d items, want empty slice", len(items))
	}
	if items == nil {
		t.Error("degraded fetch should return an empty slice, not nil")
	}
}

func TestClientFetchDegradesOnMalformedBody(t *testing.T) {
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>rate limited</html>"))
	})

	items, err := client.Fetch(context.Background(), "golang", core.MonitorPosts, 10)
	if err != nil {
		t.Fatalf("Fetch must not error on malformed body, got: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("got %d items, want empty slice", len(items))
	}
}

func TestClientModqueueRequiresToken(t *testing.T) {
	called := false
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	items, err := client.Fetch(context.Background(), "golang", core.MonitorModqueue, 10)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if called {
		t.Error("modqueue without a token must not hit the network")
	}
	if len(items) != 0 {
		t.Errorf("got %d items, want none", len(items))
	}
}

func TestClientModqueueWithToken(t *testing.T) {
	var gotPath, gotAuth string
	client := newTestClient(t, "mod-token", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(postListing))
	})

	items, err := client.Fetch(context.Background(), "golang", core.MonitorModqueue, 10)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if gotPath != "/r/golang/about/modqueue.json" {
		t.Errorf("path = %q, want /r/golang/about/modqueue.json", gotPath)
	}
	if gotAuth != "Bearer mod-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if len(items) != 2 {
		t.Errorf("got %d items, want 2", len(items))
	}
}

func TestSampleSourceHonorsLimit(t *testing.T) {
	source := NewSampleSource()

	items, err := source.Fetch(context.Background(), "golang", core.MonitorPosts, 2)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("got %d items, want 2", len(items))
	}
	for _, item := range items {
		if item.Subreddit != "golang" {
			t.Errorf("Subreddit = %q, want golang", item.Subreddit)
		}
		if item.Kind != core.KindPost {
			t.Errorf("Kind = %q, want %q", item.Kind, core.KindPost)
		}
	}
}

func TestSampleSourceComments(t *testing.T) {
	source := NewSampleSource()

	items, err := source.Fetch(context.Background(), "golang", core.MonitorComments, 10)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) == 0 {
		t.Fatal("expected sample comments")
	}
	for _, item := range items {
		if item.Kind != core.KindComment {
			t.Errorf("Kind = %q, want %q", item.Kind, core.KindComment)
		}
		if item.Title != "" {
			t.Errorf("Title = %q, want empty for comments", item.Title)
		}
	}
}
