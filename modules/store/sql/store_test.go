package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/azura-ai/azura/internal/storage"
	"github.com/azura-ai/azura/pkg/post"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return newTestModule(t).store
}

func TestAnalysisRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	in := seedAnalysis("abc123", now)
	in.Insight = `{"market_impact":{"sentiment":"bullish"}}`
	in.Hashtags = []string{"#doge"}

	if err := s.SaveAnalysis(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.GetAnalysis(ctx, "abc123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.Hash != in.Hash || got.Platform != in.Platform || got.Source != in.Source {
		t.Errorf("identity mismatch: %+v", got)
	}
	if got.Text != in.Text || got.Insight != in.Insight {
		t.Errorf("content mismatch: %+v", got)
	}
	if got.Sentiment != in.Sentiment {
		t.Errorf("sentiment = %+v, want %+v", got.Sentiment, in.Sentiment)
	}
	if got.ViralityScore != in.ViralityScore || got.EngagementRate != in.EngagementRate {
		t.Errorf("scores mismatch: %+v", got)
	}
	if len(got.Topics) != 2 || got.Topics[0] != "doge" {
		t.Errorf("topics = %v", got.Topics)
	}
	if len(got.RelatedCoins) != 1 || got.RelatedCoins[0] != "DOGE" {
		t.Errorf("related coins = %v", got.RelatedCoins)
	}
	if !got.CreatedAt.Equal(in.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, in.CreatedAt)
	}
	if !got.PostCreatedAt.Equal(in.PostCreatedAt) {
		t.Errorf("post_created_at = %v, want %v", got.PostCreatedAt, in.PostCreatedAt)
	}
}

func TestGetAnalysisNotFound(t *testing.T) {
	s := testStore(t)

	_, err := s.GetAnalysis(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveAnalysisReplaces(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	in := seedAnalysis("dup", now)
	if err := s.SaveAnalysis(ctx, in); err != nil {
		t.Fatalf("first save: %v", err)
	}

	in.Insight = "updated"
	in.ViralityScore = 0.9
	if err := s.SaveAnalysis(ctx, in); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := s.GetAnalysis(ctx, "dup")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Insight != "updated" || got.ViralityScore != 0.9 {
		t.Errorf("replace did not apply: %+v", got)
	}

	all, err := s.RecentAnalyses(ctx, now.Add(-time.Hour), 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("rows = %d, want 1 after replace", len(all))
	}
}

func TestRecentAnalysesOrderAndLimit(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := range 5 {
		a := seedAnalysis(string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))
		if err := s.SaveAnalysis(ctx, a); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	got, err := s.RecentAnalyses(ctx, base, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("rows = %d, want 3", len(got))
	}
	// Newest first: e, d, c.
	if got[0].Hash != "e" || got[1].Hash != "d" || got[2].Hash != "c" {
		t.Errorf("order = %s %s %s, want e d c", got[0].Hash, got[1].Hash, got[2].Hash)
	}

	// The since cutoff excludes older rows.
	later, err := s.RecentAnalyses(ctx, base.Add(3*time.Minute), 0)
	if err != nil {
		t.Fatalf("recent since: %v", err)
	}
	if len(later) != 2 {
		t.Errorf("rows = %d, want 2 at or after cutoff", len(later))
	}
}

func TestPostsRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	posts := []post.Post{
		{
			ID:        "p1",
			Platform:  post.PlatformReddit,
			Source:    "r/dogecoin",
			Title:     "wow such coin",
			Author:    "shibe",
			ImageURL:  "https://example.com/doge.jpg",
			Permalink: "https://reddit.com/p1",
			CreatedAt: now.Add(-time.Minute),
			Metrics:   post.Metrics{Score: 100, UpvoteRatio: 0.97, Comments: 12},
			Hashtags:  []string{"#doge"},
		},
		{
			ID:        "p2",
			Platform:  post.PlatformTwitter,
			Source:    "memecoin",
			Text:      "pepe season",
			CreatedAt: now,
			Metrics:   post.Metrics{Likes: 40, Shares: 8},
		},
	}

	if err := s.SavePosts(ctx, posts); err != nil {
		t.Fatalf("save posts: %v", err)
	}

	reddit, err := s.RecentPosts(ctx, post.PlatformReddit, now.Add(-time.Hour), 0)
	if err != nil {
		t.Fatalf("recent posts: %v", err)
	}
	if len(reddit) != 1 {
		t.Fatalf("reddit posts = %d, want 1", len(reddit))
	}
	got := reddit[0]
	if got.ID != "p1" || got.Title != "wow such coin" || got.Author != "shibe" {
		t.Errorf("post mismatch: %+v", got)
	}
	if got.Metrics.Score != 100 || got.Metrics.UpvoteRatio != 0.97 {
		t.Errorf("metrics mismatch: %+v", got.Metrics)
	}
	if len(got.Hashtags) != 1 || got.Hashtags[0] != "#doge" {
		t.Errorf("hashtags = %v", got.Hashtags)
	}

	// Empty platform matches everything, newest first.
	all, err := s.RecentPosts(ctx, "", now.Add(-time.Hour), 0)
	if err != nil {
		t.Fatalf("all posts: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all posts = %d, want 2", len(all))
	}
	if all[0].ID != "p2" {
		t.Errorf("newest first: got %s", all[0].ID)
	}
}

func TestSavePostsUpserts(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	p := post.Post{
		ID: "p1", Platform: post.PlatformReddit, Source: "r/dogecoin",
		Title: "v1", CreatedAt: now, Metrics: post.Metrics{Score: 10},
	}
	if err := s.SavePosts(ctx, []post.Post{p}); err != nil {
		t.Fatalf("first save: %v", err)
	}

	p.Metrics.Score = 500
	if err := s.SavePosts(ctx, []post.Post{p}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := s.RecentPosts(ctx, post.PlatformReddit, now.Add(-time.Hour), 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("posts = %d, want 1 after upsert", len(got))
	}
	if got[0].Metrics.Score != 500 {
		t.Errorf("score = %d, want refreshed 500", got[0].Metrics.Score)
	}
}

func TestSavePostsEmptyBatch(t *testing.T) {
	s := testStore(t)
	if err := s.SavePosts(context.Background(), nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
}

func TestChannelMetricsLatestPerSource(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	windows := []storage.ChannelMetrics{
		{ID: "reddit-a-1", Platform: post.PlatformReddit, Source: "r/a", WindowStart: base, WindowEnd: base.Add(time.Hour), PostCount: 2, CreatedAt: base.Add(time.Hour)},
		{ID: "reddit-a-2", Platform: post.PlatformReddit, Source: "r/a", WindowStart: base.Add(time.Hour), WindowEnd: base.Add(2 * time.Hour), PostCount: 7, TopTopics: []string{"doge"}, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "reddit-b-1", Platform: post.PlatformReddit, Source: "r/b", WindowStart: base, WindowEnd: base.Add(time.Hour), PostCount: 3, CreatedAt: base.Add(time.Hour)},
		{ID: "twitter-c-1", Platform: post.PlatformTwitter, Source: "c", WindowStart: base, WindowEnd: base.Add(time.Hour), PostCount: 1, CreatedAt: base.Add(time.Hour)},
	}
	for _, w := range windows {
		if err := s.SaveChannelMetrics(ctx, w); err != nil {
			t.Fatalf("save %s: %v", w.ID, err)
		}
	}

	reddit, err := s.LatestChannelMetrics(ctx, post.PlatformReddit)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(reddit) != 2 {
		t.Fatalf("reddit sources = %d, want 2", len(reddit))
	}

	byID := map[string]storage.ChannelMetrics{}
	for _, m := range reddit {
		byID[m.ID] = m
	}
	latest, ok := byID["reddit-a-2"]
	if !ok {
		t.Fatal("expected newest window for r/a")
	}
	if latest.PostCount != 7 {
		t.Errorf("post count = %d, want 7", latest.PostCount)
	}
	if len(latest.TopTopics) != 1 || latest.TopTopics[0] != "doge" {
		t.Errorf("top topics = %v", latest.TopTopics)
	}
	if _, stale := byID["reddit-a-1"]; stale {
		t.Error("stale window returned for r/a")
	}

	all, err := s.LatestChannelMetrics(ctx, "")
	if err != nil {
		t.Fatalf("latest all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all sources = %d, want 3", len(all))
	}
}

func TestCoinReportRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	reports := []storage.CoinReport{
		{ID: "doge-1", Symbol: "DOGE", SentimentScore: 0.2, Confidence: 0.5, SampleSize: 4, Supporting: `{"analysis_count":4}`, CreatedAt: now.Add(-time.Hour)},
		{ID: "doge-2", Symbol: "doge", SentimentScore: 0.4, Confidence: 0.6, SampleSize: 6, CreatedAt: now},
		{ID: "pepe-1", Symbol: "PEPE", SentimentScore: -0.1, SampleSize: 3, CreatedAt: now},
	}
	for _, r := range reports {
		if err := s.SaveCoinReport(ctx, r); err != nil {
			t.Fatalf("save %s: %v", r.ID, err)
		}
	}

	latest, err := s.LatestCoinReport(ctx, "doge")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != "doge-2" {
		t.Errorf("latest = %s, want doge-2", latest.ID)
	}
	if latest.Symbol != "DOGE" {
		t.Errorf("symbol = %q, want normalized DOGE", latest.Symbol)
	}
	if latest.Supporting != "{}" {
		t.Errorf("supporting = %q, want {} default", latest.Supporting)
	}

	history, err := s.ReportHistory(ctx, "DOGE", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history = %d, want 2", len(history))
	}
	if history[0].ID != "doge-2" || history[1].ID != "doge-1" {
		t.Errorf("history order = %s %s", history[0].ID, history[1].ID)
	}
	if history[1].Supporting != `{"analysis_count":4}` {
		t.Errorf("supporting = %q", history[1].Supporting)
	}

	_, err = s.LatestCoinReport(ctx, "WOJAK")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPruneBefore(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	old := seedAnalysis("old", now.Add(-72*time.Hour))
	fresh := seedAnalysis("fresh", now)
	for _, a := range []storage.MemeAnalysis{old, fresh} {
		if err := s.SaveAnalysis(ctx, a); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	// Reports survive pruning.
	if err := s.SaveCoinReport(ctx, storage.CoinReport{ID: "doge-1", Symbol: "DOGE", CreatedAt: now.Add(-72 * time.Hour)}); err != nil {
		t.Fatalf("save report: %v", err)
	}

	n, err := s.PruneBefore(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned = %d, want 1", n)
	}

	if _, err := s.GetAnalysis(ctx, "old"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("old analysis should be pruned, got %v", err)
	}
	if _, err := s.GetAnalysis(ctx, "fresh"); err != nil {
		t.Errorf("fresh analysis should survive: %v", err)
	}
	if _, err := s.LatestCoinReport(ctx, "DOGE"); err != nil {
		t.Errorf("reports should survive pruning: %v", err)
	}
}

func TestPing(t *testing.T) {
	s := testStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
