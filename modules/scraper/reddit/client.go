package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/azura-ai/azura/internal/scraper"
	"github.com/azura-ai/azura/pkg/post"
)

// perSubredditLimit is the listing size requested from each subreddit.
// The combined result is sorted and trimmed to the caller's limit.
const perSubredditLimit = 25

// maxResponseSize caps listing response bodies at 10MB.
const maxResponseSize = 10 * 1024 * 1024

// imageExtensions are the direct-link suffixes accepted as meme images.
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif"}

// listing mirrors the subset of Reddit's listing JSON we consume.
type listing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Author      string  `json:"author"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	CreatedUTC  float64 `json:"created_utc"`
	Score       int     `json:"score"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	NumComments int     `json:"num_comments"`
	PostHint    string  `json:"post_hint"`
	IsSelf      bool    `json:"is_self"`
	Stickied    bool    `json:"stickied"`
}

// TrendingPosts implements scraper.Scraper. It polls the hot listing of
// every configured subreddit, keeps image posts, and returns the combined
// result sorted by engagement, highest first.
func (s *Scraper) TrendingPosts(ctx context.Context, limit int) ([]post.Post, error) {
	var (
		posts   []post.Post
		lastErr error
		fetched int
	)

	for _, sub := range s.config.Subreddits {
		batch, err := s.fetchSubreddit(ctx, sub)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if s.logger != nil {
				s.logger.Warn("reddit scrape failed",
					"subreddit", sub,
					"error", err)
			}
			continue
		}
		fetched++
		posts = append(posts, batch...)
	}

	// Every subreddit failed: surface the error so the scheduler can
	// back off instead of treating a dead API as an empty cycle.
	if fetched == 0 && lastErr != nil {
		return nil, lastErr
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Metrics.Engagement() > posts[j].Metrics.Engagement()
	})
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (s *Scraper) fetchSubreddit(ctx context.Context, subreddit string) ([]post.Post, error) {
	endpoint := fmt.Sprintf("%s/r/%s/hot.json?limit=%d",
		strings.TrimSuffix(s.config.BaseURL, "/"),
		url.PathEscape(subreddit),
		perSubredditLimit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("reddit: build request: %w", err)
	}
	req.Header.Set("User-Agent", s.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reddit: r/%s: %w: %v", subreddit, scraper.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("reddit: r/%s: %w", subreddit, scraper.ErrRateLimit)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("reddit: r/%s: %w: status %d", subreddit, scraper.ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("reddit: r/%s: unexpected status %d", subreddit, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reddit: r/%s: read response: %w", subreddit, err)
	}

	var list listing
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("reddit: r/%s: decode listing: %w", subreddit, err)
	}

	posts := make([]post.Post, 0, len(list.Data.Children))
	for _, child := range list.Data.Children {
		p, ok := s.convertPost(subreddit, child.Data)
		if !ok {
			continue
		}
		posts = append(posts, p)
	}
	return posts, nil
}

func (s *Scraper) convertPost(subreddit string, rp redditPost) (post.Post, bool) {
	if rp.Stickied {
		return post.Post{}, false
	}

	imageURL := ""
	if !rp.IsSelf && isImageURL(rp.URL, rp.PostHint) {
		imageURL = rp.URL
	}
	if s.config.imagesOnly() && imageURL == "" {
		return post.Post{}, false
	}

	p := post.Post{
		ID:        rp.ID,
		Platform:  post.PlatformReddit,
		Source:    "reddit/r/" + subreddit,
		Title:     rp.Title,
		Text:      rp.Selftext,
		Author:    rp.Author,
		ImageURL:  imageURL,
		Permalink: "https://reddit.com" + rp.Permalink,
		CreatedAt: time.Unix(int64(rp.CreatedUTC), 0).UTC(),
		Metrics: post.Metrics{
			Score:       rp.Score,
			UpvoteRatio: rp.UpvoteRatio,
			Comments:    rp.NumComments,
		},
	}
	return p, true
}

// isImageURL reports whether the post links directly to an image, either
// by extension or by Reddit's own post_hint classification.
func isImageURL(rawURL, hint string) bool {
	if hint == "image" {
		return true
	}
	lower := strings.ToLower(rawURL)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
