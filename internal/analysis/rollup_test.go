package analysis

import (
	"testing"
	"time"

	"github.com/azura-ai/azura/internal/storage"
	"github.com/azura-ai/azura/pkg/post"
)

func TestBuildRollup(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	analyses := []storage.MemeAnalysis{
		{
			Sentiment:      storage.SentimentScores{Compound: 0.8},
			ViralityScore:  0.6,
			EngagementRate: 0.5,
			Topics:         []string{"doge", "moon"},
		},
		{
			Sentiment:      storage.SentimentScores{Compound: 0.2},
			ViralityScore:  0.2,
			EngagementRate: 0.1,
			Topics:         []string{"doge"},
		},
	}

	m := BuildRollup(post.PlatformReddit, "r/dogecoin", analyses, start, end)

	if m.ID != "reddit-r/dogecoin-"+"1748779200" {
		t.Errorf("ID = %q", m.ID)
	}
	if m.PostCount != 2 {
		t.Errorf("PostCount = %d, want 2", m.PostCount)
	}
	if m.AvgSentiment != 0.5 {
		t.Errorf("AvgSentiment = %f, want 0.5", m.AvgSentiment)
	}
	if m.AvgVirality != 0.4 {
		t.Errorf("AvgVirality = %f, want 0.4", m.AvgVirality)
	}
	if m.TotalEngagement != 6000 {
		t.Errorf("TotalEngagement = %d, want 6000", m.TotalEngagement)
	}
	if len(m.TopTopics) == 0 || m.TopTopics[0] != "doge" {
		t.Errorf("TopTopics = %v, want doge first", m.TopTopics)
	}
	if !m.WindowStart.Equal(start) || !m.WindowEnd.Equal(end) {
		t.Errorf("window = %v..%v", m.WindowStart, m.WindowEnd)
	}
}

func TestBuildRollupEmptyWindow(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := BuildRollup(post.PlatformTwitter, "cryptomemes", nil, start, start.Add(time.Hour))

	if m.PostCount != 0 {
		t.Errorf("PostCount = %d, want 0", m.PostCount)
	}
	if m.AvgSentiment != 0 || m.AvgVirality != 0 || m.TotalEngagement != 0 {
		t.Errorf("empty window should carry zero aggregates: %+v", m)
	}
	if m.ID == "" {
		t.Error("empty window still needs an ID")
	}
}

func TestGroupBySource(t *testing.T) {
	t.Parallel()

	analyses := []storage.MemeAnalysis{
		{Hash: "a", Platform: post.PlatformReddit, Source: "r/dogecoin"},
		{Hash: "b", Platform: post.PlatformReddit, Source: "r/dogecoin"},
		{Hash: "c", Platform: post.PlatformReddit, Source: "r/cryptomemes"},
		{Hash: "d", Platform: post.PlatformTwitter, Source: "memecoins"},
	}

	grouped := GroupBySource(analyses)

	if len(grouped) != 2 {
		t.Fatalf("platforms = %d, want 2", len(grouped))
	}
	if got := len(grouped[post.PlatformReddit]["r/dogecoin"]); got != 2 {
		t.Errorf("r/dogecoin analyses = %d, want 2", got)
	}
	if got := len(grouped[post.PlatformReddit]["r/cryptomemes"]); got != 1 {
		t.Errorf("r/cryptomemes analyses = %d, want 1", got)
	}
	if got := len(grouped[post.PlatformTwitter]["memecoins"]); got != 1 {
		t.Errorf("twitter memecoins analyses = %d, want 1", got)
	}
}
