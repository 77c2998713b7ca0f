package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/azura-ai/azura/internal/scraper"
	"github.com/azura-ai/azura/pkg/post"
)

// maxResponseSize caps search response bodies at 10MB.
const maxResponseSize = 10 * 1024 * 1024

// searchResponse mirrors the subset of the v2 recent search payload we
// consume, including the media expansion.
type searchResponse struct {
	Data     []tweet `json:"data"`
	Includes struct {
		Media []media `json:"media"`
	} `json:"includes"`
}

type tweet struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	CreatedAt     string `json:"created_at"`
	AuthorID      string `json:"author_id"`
	PublicMetrics struct {
		LikeCount    int `json:"like_count"`
		RetweetCount int `json:"retweet_count"`
		ReplyCount   int `json:"reply_count"`
		QuoteCount   int `json:"quote_count"`
	} `json:"public_metrics"`
	Entities struct {
		Hashtags []struct {
			Tag string `json:"tag"`
		} `json:"hashtags"`
	} `json:"entities"`
	Attachments struct {
		MediaKeys []string `json:"media_keys"`
	} `json:"attachments"`
}

type media struct {
	MediaKey        string `json:"media_key"`
	Type            string `json:"type"`
	URL             string `json:"url"`
	PreviewImageURL string `json:"preview_image_url"`
}

// TrendingPosts implements scraper.Scraper. It runs one recent search
// over the configured hashtags and returns the tweets sorted by
// engagement, highest first.
func (s *Scraper) TrendingPosts(ctx context.Context, limit int) ([]post.Post, error) {
	if s.config.BearerToken == "" {
		return nil, fmt.Errorf("twitter: %w: bearer token missing", scraper.ErrNotConfigured)
	}

	maxResults := limit
	if maxResults < 10 {
		maxResults = 10 // v2 minimum
	}
	if maxResults > 100 {
		maxResults = 100 // v2 maximum per page
	}

	query := url.Values{
		"query":        {s.config.searchQuery()},
		"max_results":  {strconv.Itoa(maxResults)},
		"tweet.fields": {"created_at,public_metrics,entities"},
		"expansions":   {"attachments.media_keys"},
		"media.fields": {"url,preview_image_url"},
	}
	endpoint := strings.TrimSuffix(s.config.BaseURL, "/") + "/tweets/search/recent?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("twitter: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.BearerToken)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twitter: %w: %v", scraper.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("twitter: %w", scraper.ErrRateLimit)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("twitter: %w: status %d", scraper.ErrNotConfigured, resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("twitter: %w: status %d", scraper.ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("twitter: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("twitter: read response: %w", err)
	}

	var search searchResponse
	if err := json.Unmarshal(body, &search); err != nil {
		return nil, fmt.Errorf("twitter: decode response: %w", err)
	}

	mediaByKey := make(map[string]media, len(search.Includes.Media))
	for _, m := range search.Includes.Media {
		mediaByKey[m.MediaKey] = m
	}

	posts := make([]post.Post, 0, len(search.Data))
	for _, tw := range search.Data {
		posts = append(posts, s.convertTweet(tw, mediaByKey))
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Metrics.Engagement() > posts[j].Metrics.Engagement()
	})
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (s *Scraper) convertTweet(tw tweet, mediaByKey map[string]media) post.Post {
	createdAt, err := time.Parse(time.RFC3339, tw.CreatedAt)
	if err != nil {
		createdAt = time.Time{}
	}

	hashtags := make([]string, 0, len(tw.Entities.Hashtags))
	for _, h := range tw.Entities.Hashtags {
		hashtags = append(hashtags, strings.ToLower(h.Tag))
	}

	source := "twitter/search"
	if len(hashtags) > 0 {
		source = "twitter/#" + hashtags[0]
	}

	return post.Post{
		ID:        tw.ID,
		Platform:  post.PlatformTwitter,
		Source:    source,
		Text:      tw.Text,
		Author:    tw.AuthorID,
		ImageURL:  imageURLFor(tw, mediaByKey),
		Permalink: "https://twitter.com/i/status/" + tw.ID,
		CreatedAt: createdAt,
		Metrics: post.Metrics{
			Likes:    tw.PublicMetrics.LikeCount,
			Shares:   tw.PublicMetrics.RetweetCount,
			Comments: tw.PublicMetrics.ReplyCount,
			Quotes:   tw.PublicMetrics.QuoteCount,
		},
		Hashtags: hashtags,
	}
}

// imageURLFor resolves the first attached image, preferring the full
// photo URL over the video preview frame.
func imageURLFor(tw tweet, mediaByKey map[string]media) string {
	for _, key := range tw.Attachments.MediaKeys {
		m, ok := mediaByKey[key]
		if !ok {
			continue
		}
		if m.URL != "" {
			return m.URL
		}
		if m.PreviewImageURL != "" {
			return m.PreviewImageURL
		}
	}
	return ""
}
