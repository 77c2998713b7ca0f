// Package post defines the platform-agnostic contract between ingestion
// scrapers and the analysis pipeline. A Post is a single piece of meme
// content collected from a social platform along with its engagement
// metrics at collection time.
package post

import "time"

// Platform identifies the social platform a post was collected from.
type Platform string

const (
	PlatformReddit   Platform = "reddit"
	PlatformTwitter  Platform = "twitter"
	PlatformTelegram Platform = "telegram"
	PlatformRSS      Platform = "rss"
)

// Metrics holds engagement counters for a post. Fields that a platform
// does not report stay zero.
type Metrics struct {
	Score       int     `json:"score,omitempty"`        // net upvotes (reddit)
	UpvoteRatio float64 `json:"upvote_ratio,omitempty"` // 0..1 (reddit)
	Comments    int     `json:"comments,omitempty"`
	Likes       int     `json:"likes,omitempty"`
	Shares      int     `json:"shares,omitempty"` // retweets, forwards
	Quotes      int     `json:"quotes,omitempty"`
	Views       int     `json:"views,omitempty"`
}

// Engagement returns the total engagement across all counters.
func (m Metrics) Engagement() int {
	return m.Score + m.Comments + m.Likes + m.Shares + m.Quotes + m.Views
}

// Post is a single piece of content collected by a scraper.
type Post struct {
	// ID is the platform-native post identifier.
	ID string `json:"id"`

	// Platform is the collecting platform.
	Platform Platform `json:"platform"`

	// Source narrows the origin within the platform
	// (e.g. "reddit/r/cryptocurrencymemes", "twitter/#memecoin").
	Source string `json:"source"`

	Title     string    `json:"title,omitempty"`
	Text      string    `json:"text,omitempty"`
	Author    string    `json:"author,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	Permalink string    `json:"permalink,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Metrics   Metrics   `json:"metrics"`
	Hashtags  []string  `json:"hashtags,omitempty"`
}

// Content returns the textual content of the post: title and body
// joined by a space, whichever are present.
func (p Post) Content() string {
	switch {
	case p.Title != "" && p.Text != "":
		return p.Title + " " + p.Text
	case p.Title != "":
		return p.Title
	default:
		return p.Text
	}
}

// HasImage reports whether the post carries an image.
func (p Post) HasImage() bool {
	return p.ImageURL != ""
}

// Age returns the post's age relative to now.
func (p Post) Age(now time.Time) time.Duration {
	if p.CreatedAt.IsZero() {
		return 0
	}
	return now.Sub(p.CreatedAt)
}

// ChannelMetrics is an aggregate snapshot of a single source
// (a subreddit, a hashtag, a feed) over a timeframe.
type ChannelMetrics struct {
	Platform    Platform  `json:"platform"`
	Source      string    `json:"source"`
	Timeframe   string    `json:"timeframe"` // "hour", "day", "week", "month"
	TotalPosts  int       `json:"total_posts"`
	AvgScore    float64   `json:"average_score"`
	AvgComments float64   `json:"average_comments"`
	AvgRatio    float64   `json:"average_upvote_ratio"`
	TopTopics   []string  `json:"top_topics,omitempty"`
	ObservedAt  time.Time `json:"observed_at"`
}
