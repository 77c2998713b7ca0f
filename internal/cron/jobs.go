package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/azura-ai/azura/internal/analysis"
	"github.com/azura-ai/azura/internal/scraper"
	"github.com/azura-ai/azura/internal/storage"
	"github.com/azura-ai/azura/pkg/post"
)

// PostAnalyzer is the subset of analysis.Analyzer needed by the scrape job.
// Defined here so tests can substitute a fake without a real store.
type PostAnalyzer interface {
	AnalyzePost(ctx context.Context, p post.Post) (storage.MemeAnalysis, bool, error)
}

// Reporter is the subset of analysis.Analyzer needed by the report job.
// CoinReport persists the report it returns.
type Reporter interface {
	CoinReport(ctx context.Context, symbol string, timeframe time.Duration) (storage.CoinReport, analysis.ReportEvidence, error)
}

// SweepMetrics receives pipeline counters. Implemented by the gateway's
// prometheus metrics; optional on jobs.
type SweepMetrics interface {
	RecordScrapedPosts(platform string, n int)
	RecordAnalysis(platform string)
}

// EventSink receives pipeline results for live broadcast. Implemented by
// the gateway's WebSocket hub; optional on jobs.
type EventSink interface {
	BroadcastAnalysis(a storage.MemeAnalysis)
	BroadcastReport(r storage.CoinReport)
}

// ScrapeJob sweeps every registered collector, stores the raw posts, and
// runs each through the analysis pipeline. Individual collector failures
// are tolerated so one platform outage does not starve the others.
type ScrapeJob struct {
	Store        storage.PostStore
	Scrapers     *scraper.Registry
	Analyzer     PostAnalyzer
	Limit        int          // posts per collector, 0 = default 25
	Metrics      SweepMetrics // optional
	Events       EventSink    // optional
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "*/30 * * * *"
}

// Compile-time interface check.
var _ Job = (*ScrapeJob)(nil)

// Name implements Job.
func (j *ScrapeJob) Name() string { return "scrape" }

// Schedule implements Job.
func (j *ScrapeJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "*/30 * * * *"
}

// Run implements Job.
func (j *ScrapeJob) Run(ctx context.Context) error {
	limit := j.Limit
	if limit <= 0 {
		limit = 25
	}

	var swept, analyzed, failed int
	for _, s := range j.Scrapers.All() {
		if ctx.Err() != nil {
			return fmt.Errorf("cron: scrape cancelled: %w", ctx.Err())
		}

		posts, err := s.TrendingPosts(ctx, limit)
		if err != nil {
			if scraper.IsRetryable(err) {
				j.Logger.Warn("cron: collector unavailable, will retry next cycle",
					"platform", s.Platform(), "error", err)
			} else {
				j.Logger.Error("cron: collector failed",
					"platform", s.Platform(), "error", err)
			}
			failed++
			continue
		}
		swept++

		if err := j.Store.SavePosts(ctx, posts); err != nil {
			return fmt.Errorf("cron: save posts for %s: %w", s.Platform(), err)
		}
		if j.Metrics != nil {
			j.Metrics.RecordScrapedPosts(string(s.Platform()), len(posts))
		}

		for _, p := range posts {
			a, cached, err := j.Analyzer.AnalyzePost(ctx, p)
			if err != nil {
				j.Logger.Warn("cron: post analysis failed",
					"platform", p.Platform, "post", p.ID, "error", err)
				continue
			}
			analyzed++
			if cached {
				continue
			}
			if j.Metrics != nil {
				j.Metrics.RecordAnalysis(string(p.Platform))
			}
			if j.Events != nil {
				j.Events.BroadcastAnalysis(a)
			}
		}
	}

	if swept == 0 && failed > 0 {
		return errors.New("cron: all collectors failed")
	}
	j.Logger.Info("cron: scrape sweep finished",
		"collectors", swept, "failed", failed, "analyzed", analyzed)
	return nil
}

// RollupJob aggregates the analyses of the last window into per-source
// channel metrics. Empty windows are stored too so activity gaps show up
// in the history.
type RollupJob struct {
	Store        storage.Store
	Window       time.Duration // 0 = default 1h
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "0 * * * *"

	now func() time.Time // test hook
}

// Compile-time interface check.
var _ Job = (*RollupJob)(nil)

// Name implements Job.
func (j *RollupJob) Name() string { return "rollup" }

// Schedule implements Job.
func (j *RollupJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "0 * * * *"
}

// Run implements Job.
func (j *RollupJob) Run(ctx context.Context) error {
	window := j.Window
	if window <= 0 {
		window = time.Hour
	}
	nowFn := j.now
	if nowFn == nil {
		nowFn = time.Now
	}
	end := nowFn().UTC()
	start := end.Add(-window)

	analyses, err := j.Store.RecentAnalyses(ctx, start, 0)
	if err != nil {
		return fmt.Errorf("cron: load analyses for rollup: %w", err)
	}

	var saved int
	for platform, sources := range analysis.GroupBySource(analyses) {
		for source, group := range sources {
			m := analysis.BuildRollup(platform, source, group, start, end)
			if err := j.Store.SaveChannelMetrics(ctx, m); err != nil {
				return fmt.Errorf("cron: save rollup %s/%s: %w", platform, source, err)
			}
			saved++
		}
	}

	j.Logger.Info("cron: rollup finished",
		"analyses", len(analyses), "rollups", saved)
	return nil
}

// ReportJob refreshes the stored coin report for every tracked symbol.
// The Reporter persists each report it builds, so the job only drives the
// sweep. Symbols without enough recent chatter are skipped, not treated as
// errors.
type ReportJob struct {
	Analyzer     Reporter
	Timeframe    time.Duration // 0 = default 24h
	Events       EventSink     // optional
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "15 * * * *"
}

// Compile-time interface check.
var _ Job = (*ReportJob)(nil)

// Name implements Job.
func (j *ReportJob) Name() string { return "coin_reports" }

// Schedule implements Job.
func (j *ReportJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "15 * * * *"
}

// Run implements Job.
func (j *ReportJob) Run(ctx context.Context) error {
	timeframe := j.Timeframe
	if timeframe <= 0 {
		timeframe = 24 * time.Hour
	}

	var built, skipped int
	for _, symbol := range analysis.KnownSymbols() {
		if ctx.Err() != nil {
			return fmt.Errorf("cron: report refresh cancelled: %w", ctx.Err())
		}

		report, _, err := j.Analyzer.CoinReport(ctx, symbol, timeframe)
		if errors.Is(err, analysis.ErrInsufficientData) {
			skipped++
			continue
		}
		if err != nil {
			j.Logger.Warn("cron: coin report failed", "symbol", symbol, "error", err)
			continue
		}

		if j.Events != nil {
			j.Events.BroadcastReport(report)
		}
		built++
	}

	j.Logger.Info("cron: coin reports refreshed", "built", built, "skipped", skipped)
	return nil
}

// BucketPruner is the subset of security.RateLimiter needed by the
// cleanup job.
type BucketPruner interface {
	Prune()
}

// CleanupJob deletes analyses and posts older than the retention window
// and evicts stale rate limiter buckets. Reports and rollups are kept.
type CleanupJob struct {
	Store        storage.Store
	Retention    time.Duration // 0 = default 7 days
	Limiter      BucketPruner  // optional
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "0 3 * * *"

	now func() time.Time // test hook
}

// Compile-time interface check.
var _ Job = (*CleanupJob)(nil)

// Name implements Job.
func (j *CleanupJob) Name() string { return "cleanup" }

// Schedule implements Job.
func (j *CleanupJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "0 3 * * *"
}

// Run implements Job.
func (j *CleanupJob) Run(ctx context.Context) error {
	retention := j.Retention
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}
	nowFn := j.now
	if nowFn == nil {
		nowFn = time.Now
	}

	cutoff := nowFn().UTC().Add(-retention)
	pruned, err := j.Store.PruneBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("cron: prune old records: %w", err)
	}

	if j.Limiter != nil {
		j.Limiter.Prune()
	}

	if pruned > 0 {
		j.Logger.Info("cron: pruned old records", "count", pruned, "cutoff", cutoff)
	}
	return nil
}
