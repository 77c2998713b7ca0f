// Package scrapertest provides test helpers for the scraper package.
package scrapertest

import (
	"context"
	"sync"

	"github.com/azura-ai/azura/internal/scraper"
	"github.com/azura-ai/azura/pkg/post"
)

// MockScraper is a configurable test double for scraper.Scraper.
// Set Posts or Err to control TrendingPosts behavior.
// All methods are safe for concurrent use.
type MockScraper struct {
	PlatformName post.Platform
	Posts        []post.Post
	Err          error

	mu    sync.Mutex
	calls int
}

// Platform returns the configured platform, or post.PlatformReddit if unset.
func (m *MockScraper) Platform() post.Platform {
	if m.PlatformName == "" {
		return post.PlatformReddit
	}
	return m.PlatformName
}

// TrendingPosts returns the configured posts or error, tracking call count.
// The limit is applied to the configured posts.
func (m *MockScraper) TrendingPosts(_ context.Context, limit int) ([]post.Post, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if limit > 0 && limit < len(m.Posts) {
		return m.Posts[:limit], nil
	}
	return m.Posts, nil
}

// Calls returns the number of TrendingPosts calls so far.
func (m *MockScraper) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Interface guard.
var _ scraper.Scraper = (*MockScraper)(nil)
