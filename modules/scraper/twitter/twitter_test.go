package twitter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/azura-ai/azura/internal/core"
	"github.com/azura-ai/azura/internal/scraper"
	"github.com/azura-ai/azura/pkg/post"
)

const searchFixture = `{
	"data": [
		{
			"id": "1001",
			"text": "DOGE is mooning #dogecoin #memecoin",
			"created_at": "2025-06-01T12:00:00Z",
			"author_id": "777",
			"public_metrics": {"like_count": 100, "retweet_count": 20, "reply_count": 5, "quote_count": 3},
			"entities": {"hashtags": [{"tag": "Dogecoin"}, {"tag": "memecoin"}]},
			"attachments": {"media_keys": ["3_abc"]}
		},
		{
			"id": "1002",
			"text": "pepe season",
			"created_at": "2025-06-01T13:00:00Z",
			"author_id": "888",
			"public_metrics": {"like_count": 5000, "retweet_count": 900, "reply_count": 100, "quote_count": 40},
			"entities": {"hashtags": [{"tag": "pepe"}]},
			"attachments": {"media_keys": ["3_vid"]}
		}
	],
	"includes": {
		"media": [
			{"media_key": "3_abc", "type": "photo", "url": "https://pbs.twimg.com/media/abc.jpg"},
			{"media_key": "3_vid", "type": "video", "preview_image_url": "https://pbs.twimg.com/preview/vid.jpg"}
		]
	}
}`

func newTestScraper(t *testing.T, baseURL string) *Scraper {
	t.Helper()
	s := &Scraper{config: Config{
		BearerToken: "test-token",
		BaseURL:     baseURL,
	}}
	ctx := core.NewAppContext(slog.Default(), t.TempDir())
	if err := s.Provision(ctx); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return s
}

func TestTrendingPosts(t *testing.T) {
	t.Parallel()

	var gotQuery, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tweets/search/recent" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("query")
		gotAuth = r.Header.Get("Authorization")
		if got := r.URL.Query().Get("tweet.fields"); got != "created_at,public_metrics,entities" {
			t.Errorf("tweet.fields = %q", got)
		}
		if got := r.URL.Query().Get("expansions"); got != "attachments.media_keys" {
			t.Errorf("expansions = %q", got)
		}
		fmt.Fprint(w, searchFixture)
	}))
	defer server.Close()

	s := newTestScraper(t, server.URL)

	posts, err := s.TrendingPosts(context.Background(), 10)
	if err != nil {
		t.Fatalf("TrendingPosts: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if !strings.Contains(gotQuery, "#dogecoin OR") {
		t.Errorf("query missing OR-joined hashtags: %q", gotQuery)
	}
	if !strings.Contains(gotQuery, "has:images -is:retweet") {
		t.Errorf("query missing filters: %q", gotQuery)
	}

	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}
	// 1002 has far higher engagement and must sort first.
	if posts[0].ID != "1002" || posts[1].ID != "1001" {
		t.Errorf("posts not sorted by engagement: %q, %q", posts[0].ID, posts[1].ID)
	}

	p := posts[1]
	if p.Platform != post.PlatformTwitter {
		t.Errorf("Platform = %q", p.Platform)
	}
	if p.Source != "twitter/#dogecoin" {
		t.Errorf("Source = %q", p.Source)
	}
	if p.ImageURL != "https://pbs.twimg.com/media/abc.jpg" {
		t.Errorf("ImageURL = %q", p.ImageURL)
	}
	if p.Permalink != "https://twitter.com/i/status/1001" {
		t.Errorf("Permalink = %q", p.Permalink)
	}
	if p.Metrics.Likes != 100 || p.Metrics.Shares != 20 || p.Metrics.Comments != 5 || p.Metrics.Quotes != 3 {
		t.Errorf("Metrics = %+v", p.Metrics)
	}
	if len(p.Hashtags) != 2 || p.Hashtags[0] != "dogecoin" {
		t.Errorf("Hashtags = %v, want lowercased tags", p.Hashtags)
	}

	// Video attachment falls back to the preview frame.
	if posts[0].ImageURL != "https://pbs.twimg.com/preview/vid.jpg" {
		t.Errorf("preview ImageURL = %q", posts[0].ImageURL)
	}
}

func TestTrendingPostsLimitClamped(t *testing.T) {
	t.Parallel()

	var gotMax string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMax = r.URL.Query().Get("max_results")
		fmt.Fprint(w, `{"data":[]}`)
	}))
	defer server.Close()

	s := newTestScraper(t, server.URL)

	if _, err := s.TrendingPosts(context.Background(), 5); err != nil {
		t.Fatalf("TrendingPosts: %v", err)
	}
	if gotMax != "10" {
		t.Errorf("max_results = %q, want API minimum 10", gotMax)
	}

	if _, err := s.TrendingPosts(context.Background(), 500); err != nil {
		t.Fatalf("TrendingPosts: %v", err)
	}
	if gotMax != "100" {
		t.Errorf("max_results = %q, want API maximum 100", gotMax)
	}
}

func TestTrendingPostsNotConfigured(t *testing.T) {
	t.Parallel()

	s := &Scraper{}
	s.config.defaults()

	_, err := s.TrendingPosts(context.Background(), 10)
	if !errors.Is(err, scraper.ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestTrendingPostsErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"rate limit", http.StatusTooManyRequests, scraper.ErrRateLimit},
		{"bad token", http.StatusUnauthorized, scraper.ErrNotConfigured},
		{"server error", http.StatusInternalServerError, scraper.ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			s := newTestScraper(t, server.URL)
			_, err := s.TrendingPosts(context.Background(), 10)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSearchQuery(t *testing.T) {
	t.Parallel()

	c := Config{Hashtags: []string{"pepe", "#wojak"}}
	got := c.searchQuery()
	want := "(#pepe OR #wojak) has:images -is:retweet"
	if got != want {
		t.Errorf("searchQuery = %q, want %q", got, want)
	}
}

func TestRegistersWithScraperRegistry(t *testing.T) {
	t.Parallel()

	ctx := core.NewAppContext(slog.Default(), t.TempDir())
	s := &Scraper{config: Config{BearerToken: "x"}}
	if err := s.Provision(ctx); err != nil {
		t.Fatalf("Provision: %v", err)
	}

	svc, ok := ctx.Service(scraper.ServiceName)
	if !ok {
		t.Fatal("scraper registry not registered")
	}
	if _, ok := svc.(*scraper.Registry).ByPlatform(post.PlatformTwitter); !ok {
		t.Error("twitter scraper not in registry")
	}
}
