// Package scraper defines the interface for social platform collectors.
// Concrete implementations live in separate packages (e.g., scraper.reddit)
// and typically also implement core.Module for lifecycle management.
package scraper

import (
	"context"
	"errors"

	"github.com/azura-ai/azura/pkg/post"
)

// Sentinel errors for scraper operations.
var (
	// ErrUnavailable indicates the platform API is temporarily unreachable.
	ErrUnavailable = errors.New("platform unavailable")

	// ErrRateLimit indicates the platform returned a rate limit response.
	ErrRateLimit = errors.New("platform rate limited")

	// ErrNotConfigured indicates the scraper is missing required credentials.
	ErrNotConfigured = errors.New("scraper not configured")
)

// Scraper collects trending posts from a single social platform.
type Scraper interface {
	// Platform returns the platform this scraper collects from.
	Platform() post.Platform

	// TrendingPosts fetches up to limit recent trending posts.
	// The returned posts are normalized and sorted by engagement,
	// highest first.
	TrendingPosts(ctx context.Context, limit int) ([]post.Post, error)
}

// SourceLister is an optional interface for scrapers that poll a fixed
// set of named sources (subreddits, channels, feeds).
type SourceLister interface {
	Sources() []string
}

// IsRetryable reports whether the error is transient and the scrape
// can be retried on the next cycle without operator intervention.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrRateLimit)
}
