// Package storage defines the persistence interfaces and record types for
// analysis results, collected posts, channel rollups, and coin reports,
// plus the versioned migration runner that manages their schema.
package storage

import (
	"time"

	"github.com/azura-ai/azura/pkg/post"
)

// SentimentScores is the normalized sentiment breakdown of a piece of content.
// Positive, Negative, and Neutral sum to 1. Compound is the overall polarity
// in [-1, 1].
type SentimentScores struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
	Compound float64 `json:"compound"`
}

// MemeAnalysis is the stored result of analyzing a single piece of content.
// Hash is a SHA-256 digest of the canonical content and acts as the primary
// key: re-analysis of identical content is a cache hit.
type MemeAnalysis struct {
	Hash           string          `json:"hash"`
	Platform       post.Platform   `json:"platform"`
	Source         string          `json:"source"`
	Permalink      string          `json:"permalink"`
	ImageURL       string          `json:"image_url,omitempty"`
	Text           string          `json:"text"`
	Sentiment      SentimentScores `json:"sentiment"`
	ViralityScore  float64         `json:"virality_score"`
	EngagementRate float64         `json:"engagement_rate"`
	TrendVelocity  float64         `json:"trend_velocity"`
	CryptoScore    float64         `json:"crypto_score"`
	MemeScore      float64         `json:"meme_score"`
	Topics         []string        `json:"topics,omitempty"`
	Hashtags       []string        `json:"hashtags,omitempty"`
	RelatedCoins   []string        `json:"related_coins,omitempty"`
	Insight        string          `json:"insight,omitempty"`
	PostCreatedAt  time.Time       `json:"post_created_at"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ChannelMetrics is an aggregated rollup of activity for one source
// (a subreddit, Twitter query, or feed) over a time window.
type ChannelMetrics struct {
	ID              string        `json:"id"`
	Platform        post.Platform `json:"platform"`
	Source          string        `json:"source"`
	WindowStart     time.Time     `json:"window_start"`
	WindowEnd       time.Time     `json:"window_end"`
	PostCount       int           `json:"post_count"`
	TotalEngagement int           `json:"total_engagement"`
	AvgSentiment    float64       `json:"avg_sentiment"`
	AvgVirality     float64       `json:"avg_virality"`
	TopTopics       []string      `json:"top_topics,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

// CoinReport is a stored market impact prediction for one memecoin symbol.
type CoinReport struct {
	ID               string    `json:"id"`
	Symbol           string    `json:"symbol"`
	SentimentScore   float64   `json:"sentiment_score"`
	ViralityScore    float64   `json:"virality_score"`
	TrendStrength    float64   `json:"trend_strength"`
	VolumePrediction float64   `json:"volume_prediction"`
	PriceImpact      float64   `json:"price_impact"`
	Confidence       float64   `json:"confidence"`
	SampleSize       int       `json:"sample_size"`
	// Supporting holds the JSON-encoded supporting evidence
	// (platform distribution, top viral posts, common topics).
	Supporting string    `json:"supporting,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
