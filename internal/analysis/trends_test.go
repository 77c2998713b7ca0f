package analysis

import (
	"slices"
	"testing"
	"time"

	"github.com/azura-ai/azura/pkg/post"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	got := Tokenize("DOGE to the MOON!!! don't fade, ser 🚀🚀")
	want := []string{"doge", "to", "the", "moon", "don't", "fade", "ser"}
	if !slices.Equal(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestExtractTrends_Scores(t *testing.T) {
	t.Parallel()

	p := post.Post{
		Title: "pepe holders staying bullish",
		Text:  "hodl the token, wagmi",
	}
	ind := ExtractTrends(p)

	if ind.CryptoScore <= 0 {
		t.Errorf("CryptoScore = %f, want > 0 (bullish, hodl, token)", ind.CryptoScore)
	}
	if ind.MemeScore <= 0 {
		t.Errorf("MemeScore = %f, want > 0 (pepe, wagmi)", ind.MemeScore)
	}
	if len(ind.Topics) == 0 {
		t.Error("expected topics")
	}
}

func TestExtractTrends_RelatedCoins(t *testing.T) {
	t.Parallel()

	byText := ExtractTrends(post.Post{Text: "dogecoin is pumping hard"})
	if !slices.Contains(byText.RelatedCoins, "DOGE") {
		t.Errorf("RelatedCoins = %v, want DOGE via alias", byText.RelatedCoins)
	}

	byHashtag := ExtractTrends(post.Post{Text: "look at this chart", Hashtags: []string{"#PEPE"}})
	if !slices.Contains(byHashtag.RelatedCoins, "PEPE") {
		t.Errorf("RelatedCoins = %v, want PEPE via hashtag", byHashtag.RelatedCoins)
	}

	none := ExtractTrends(post.Post{Text: "nothing coin related here"})
	if len(none.RelatedCoins) != 0 {
		t.Errorf("RelatedCoins = %v, want none", none.RelatedCoins)
	}
}

func TestExtractTrends_Empty(t *testing.T) {
	t.Parallel()

	ind := ExtractTrends(post.Post{})
	if ind.CryptoScore != 0 || ind.MemeScore != 0 || len(ind.Topics) != 0 {
		t.Errorf("empty post should yield zero indicators, got %+v", ind)
	}
}

func TestTopTopics_FiltersShortAndNumeric(t *testing.T) {
	t.Parallel()

	topics := topTopics([]string{"moon", "moon", "gm", "100", "doge"}, 5)
	if slices.Contains(topics, "gm") {
		t.Error("two-letter tokens should be filtered from topics")
	}
	if slices.Contains(topics, "100") {
		t.Error("numeric tokens should be filtered from topics")
	}
	if len(topics) == 0 || topics[0] != "moon" {
		t.Errorf("topics = %v, want moon first by frequency", topics)
	}
}

func TestEngagementRate(t *testing.T) {
	t.Parallel()

	if got := EngagementRate(post.Metrics{Likes: 5000}); got != 0.5 {
		t.Errorf("EngagementRate = %f, want 0.5", got)
	}
	if got := EngagementRate(post.Metrics{Likes: 50000}); got != 1 {
		t.Errorf("EngagementRate should saturate at 1, got %f", got)
	}
	if got := EngagementRate(post.Metrics{}); got != 0 {
		t.Errorf("EngagementRate = %f, want 0", got)
	}
}

func TestViralityScore(t *testing.T) {
	t.Parallel()

	if got := ViralityScore(post.Metrics{Shares: 500}); got != 0.5 {
		t.Errorf("ViralityScore = %f, want 0.5", got)
	}
	if got := ViralityScore(post.Metrics{Shares: 900, Quotes: 500}); got != 1 {
		t.Errorf("ViralityScore should saturate at 1, got %f", got)
	}
}

func TestTrendVelocity(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	fresh := post.Post{
		CreatedAt: now.Add(-30 * time.Minute),
		Metrics:   post.Metrics{Likes: 5000},
	}
	old := post.Post{
		CreatedAt: now.Add(-10 * time.Hour),
		Metrics:   post.Metrics{Likes: 5000},
	}

	vFresh := TrendVelocity(fresh, now)
	vOld := TrendVelocity(old, now)
	if vFresh <= vOld {
		t.Errorf("fresh velocity (%f) should exceed old (%f)", vFresh, vOld)
	}
	// Sub-hour ages floor at one hour.
	if vFresh != 0.5 {
		t.Errorf("fresh velocity = %f, want 0.5", vFresh)
	}

	if got := TrendVelocity(post.Post{Metrics: post.Metrics{Likes: 100}}, now); got != 0 {
		t.Errorf("zero creation time should yield 0, got %f", got)
	}
}

func TestKnownSymbols(t *testing.T) {
	t.Parallel()

	symbols := KnownSymbols()
	if !slices.IsSorted(symbols) {
		t.Errorf("KnownSymbols not sorted: %v", symbols)
	}
	if !slices.Contains(symbols, "DOGE") {
		t.Errorf("KnownSymbols = %v, want DOGE present", symbols)
	}
}
