package storage

import (
	"context"
	"errors"
	"time"

	"github.com/azura-ai/azura/pkg/post"
)

// ErrNotFound is returned by lookups when no matching record exists.
var ErrNotFound = errors.New("record not found")

// AnalysisStore persists content analysis results keyed by content hash.
// Implementations must be safe for concurrent use.
type AnalysisStore interface {
	// SaveAnalysis stores an analysis result. Saving an existing hash
	// replaces the stored record.
	SaveAnalysis(ctx context.Context, a MemeAnalysis) error

	// GetAnalysis retrieves an analysis by content hash.
	// Returns ErrNotFound if no record exists.
	GetAnalysis(ctx context.Context, hash string) (MemeAnalysis, error)

	// RecentAnalyses returns analyses created at or after since,
	// newest first, up to limit. A limit <= 0 means no limit.
	RecentAnalyses(ctx context.Context, since time.Time, limit int) ([]MemeAnalysis, error)
}

// PostStore persists raw collected posts.
type PostStore interface {
	// SavePosts upserts a batch of posts keyed by (platform, id).
	SavePosts(ctx context.Context, posts []post.Post) error

	// RecentPosts returns posts for a platform created at or after since,
	// newest first, up to limit. An empty platform matches all platforms.
	RecentPosts(ctx context.Context, platform post.Platform, since time.Time, limit int) ([]post.Post, error)
}

// MetricsStore persists per-source rollups.
type MetricsStore interface {
	// SaveChannelMetrics stores a rollup window.
	SaveChannelMetrics(ctx context.Context, m ChannelMetrics) error

	// LatestChannelMetrics returns the most recent rollup per source
	// for a platform. An empty platform matches all platforms.
	LatestChannelMetrics(ctx context.Context, platform post.Platform) ([]ChannelMetrics, error)
}

// ReportStore persists coin reports.
type ReportStore interface {
	// SaveCoinReport stores a report.
	SaveCoinReport(ctx context.Context, r CoinReport) error

	// LatestCoinReport returns the newest report for a symbol.
	// Returns ErrNotFound if the symbol has never been analyzed.
	LatestCoinReport(ctx context.Context, symbol string) (CoinReport, error)

	// ReportHistory returns reports for a symbol, newest first, up to limit.
	ReportHistory(ctx context.Context, symbol string, limit int) ([]CoinReport, error)
}

// Store is the full persistence surface of the service.
type Store interface {
	AnalysisStore
	PostStore
	MetricsStore
	ReportStore

	// PruneBefore deletes analyses and posts created before cutoff.
	// Reports and rollups are kept as long-term history.
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error
}
