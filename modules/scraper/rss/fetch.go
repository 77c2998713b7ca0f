package rss

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/azura-ai/azura/internal/scraper"
	"github.com/azura-ai/azura/pkg/post"
	"github.com/mmcdole/gofeed"
)

// maxResponseSize caps feed bodies at 10MB.
const maxResponseSize = 10 * 1024 * 1024

// TrendingPosts implements scraper.Scraper. Feeds carry no engagement
// counters, so items are ordered by publish time, newest first.
func (s *Scraper) TrendingPosts(ctx context.Context, limit int) ([]post.Post, error) {
	var (
		posts   []post.Post
		lastErr error
		fetched int
	)

	for _, feedURL := range s.config.Feeds {
		batch, err := s.fetchFeed(ctx, feedURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if s.logger != nil {
				s.logger.Warn("feed fetch failed", "feed", feedURL, "error", err)
			}
			continue
		}
		fetched++
		posts = append(posts, batch...)
	}

	if fetched == 0 && lastErr != nil {
		return nil, lastErr
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (s *Scraper) fetchFeed(ctx context.Context, feedURL string) ([]post.Post, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("rss: build request: %w", err)
	}
	req.Header.Set("User-Agent", s.config.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rss: %s: %w: %v", feedURL, scraper.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("rss: %s: %w", feedURL, scraper.ErrRateLimit)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("rss: %s: %w: status %d", feedURL, scraper.ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("rss: %s: unexpected status %d", feedURL, resp.StatusCode)
	}

	feed, err := s.parser.Parse(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("rss: %s: parse feed: %w", feedURL, err)
	}

	source := feedSource(feedURL)
	cutoff := s.now().Add(-s.maxAge)

	posts := make([]post.Post, 0, len(feed.Items))
	for _, item := range feed.Items {
		p, ok := s.convertItem(source, item, cutoff)
		if !ok {
			continue
		}
		posts = append(posts, p)
	}
	return posts, nil
}

func (s *Scraper) convertItem(source string, item *gofeed.Item, cutoff time.Time) (post.Post, bool) {
	published := time.Time{}
	if item.PublishedParsed != nil {
		published = item.PublishedParsed.UTC()
	} else if item.UpdatedParsed != nil {
		published = item.UpdatedParsed.UTC()
	}
	if s.maxAge > 0 && !published.IsZero() && published.Before(cutoff) {
		return post.Post{}, false
	}

	id := item.GUID
	if id == "" {
		id = item.Link
	}

	author := ""
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		author = item.Authors[0].Name
	}

	return post.Post{
		ID:        id,
		Platform:  post.PlatformRSS,
		Source:    source,
		Title:     item.Title,
		Text:      itemText(item),
		Author:    author,
		ImageURL:  itemImage(item),
		Permalink: item.Link,
		CreatedAt: published,
		Hashtags:  lowercase(item.Categories),
	}, true
}

// itemText prefers the short description over full article content.
func itemText(item *gofeed.Item) string {
	if item.Description != "" {
		return item.Description
	}
	return item.Content
}

// itemImage resolves the item's image from the feed image element or
// the first image enclosure.
func itemImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}

// feedSource derives the source name "rss/<host>" from the feed URL.
func feedSource(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Host == "" {
		return "rss/" + feedURL
	}
	return "rss/" + strings.TrimPrefix(u.Host, "www.")
}

func lowercase(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = strings.ToLower(t)
	}
	return out
}
