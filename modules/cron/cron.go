// Package cron implements the cron.jobs module, running the background
// scrape, rollup, report, and cleanup jobs on configurable schedules.
package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/azura-ai/azura/internal/analysis"
	"github.com/azura-ai/azura/internal/core"
	"github.com/azura-ai/azura/internal/cron"
	"github.com/azura-ai/azura/internal/provider"
	"github.com/azura-ai/azura/internal/scraper"
	"github.com/azura-ai/azura/internal/security"
	"github.com/azura-ai/azura/internal/storage"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Jobs{})
}

// Compile-time interface guards.
var (
	_ core.Module       = (*Jobs)(nil)
	_ core.Configurable = (*Jobs)(nil)
	_ core.Provisioner  = (*Jobs)(nil)
	_ core.Validator    = (*Jobs)(nil)
	_ core.Starter      = (*Jobs)(nil)
	_ core.Stopper      = (*Jobs)(nil)
)

// Config holds the schedules and windows for the background jobs.
// Empty schedules fall back to each job's default; a job listed in
// Disabled is not registered at all.
type Config struct {
	ScrapeSchedule  string `yaml:"scrape_schedule"`
	RollupSchedule  string `yaml:"rollup_schedule"`
	ReportSchedule  string `yaml:"report_schedule"`
	CleanupSchedule string `yaml:"cleanup_schedule"`

	// ScrapeLimit is the number of posts fetched per collector per sweep.
	ScrapeLimit int `yaml:"scrape_limit"`

	// RollupWindow and ReportTimeframe are Go durations ("1h", "24h").
	RollupWindow    string `yaml:"rollup_window"`
	ReportTimeframe string `yaml:"report_timeframe"`

	// Retention is how long analyses and posts are kept ("168h" = 7 days).
	Retention string `yaml:"retention"`

	// Disabled lists job names to skip: scrape, rollup, coin_reports, cleanup.
	Disabled []string `yaml:"disabled"`
}

// knownJobs are the job names accepted in Config.Disabled.
var knownJobs = map[string]struct{}{
	"scrape": {}, "rollup": {}, "coin_reports": {}, "cleanup": {},
}

// Jobs is the module wiring the shared store, scrapers, and providers
// into the background scheduler.
type Jobs struct {
	config Config
	logger *slog.Logger
	appCtx *core.AppContext
	sched  *cron.Scheduler

	rollupWindow    time.Duration
	reportTimeframe time.Duration
	retention       time.Duration
}

// ModuleInfo implements core.Module.
func (j *Jobs) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "cron.jobs",
		New: func() core.Module { return &Jobs{} },
	}
}

// Configure implements core.Configurable.
func (j *Jobs) Configure(node *yaml.Node) error {
	if err := node.Decode(&j.config); err != nil {
		return fmt.Errorf("cron.jobs: decode config: %w", err)
	}
	return nil
}

// Provision implements core.Provisioner.
func (j *Jobs) Provision(ctx *core.AppContext) error {
	j.appCtx = ctx
	j.logger = ctx.Logger

	var err error
	if j.rollupWindow, err = parseDuration(j.config.RollupWindow, time.Hour); err != nil {
		return fmt.Errorf("cron.jobs: rollup_window: %w", err)
	}
	if j.reportTimeframe, err = parseDuration(j.config.ReportTimeframe, 24*time.Hour); err != nil {
		return fmt.Errorf("cron.jobs: report_timeframe: %w", err)
	}
	if j.retention, err = parseDuration(j.config.Retention, 7*24*time.Hour); err != nil {
		return fmt.Errorf("cron.jobs: retention: %w", err)
	}
	return nil
}

// Validate implements core.Validator.
func (j *Jobs) Validate() error {
	for _, name := range j.config.Disabled {
		if _, ok := knownJobs[name]; !ok {
			return fmt.Errorf("cron.jobs: unknown job %q in disabled list", name)
		}
	}
	if j.config.ScrapeLimit < 0 {
		return fmt.Errorf("cron.jobs: scrape_limit must be >= 0, got %d", j.config.ScrapeLimit)
	}
	return nil
}

// Start implements core.Starter. It resolves the shared services, builds
// the enabled jobs, and starts the scheduler. Runs after every module's
// Provision, so the store and collectors are already registered.
func (j *Jobs) Start() error {
	svc, ok := j.appCtx.Service("store")
	if !ok {
		return fmt.Errorf("cron.jobs: no store module loaded")
	}
	store, ok := svc.(storage.Store)
	if !ok {
		return fmt.Errorf("cron.jobs: store service has unexpected type %T", svc)
	}

	chain, err := provider.ChainFrom(j.appCtx)
	if err != nil {
		return fmt.Errorf("cron.jobs: build provider chain: %w", err)
	}
	var completer analysis.Completer
	if chain != nil {
		completer = chain
	}
	analyzer := analysis.NewAnalyzer(store, completer, j.logger)

	j.sched = cron.NewScheduler(j.logger)

	// The gateway's metrics and event hub are optional observers.
	var metrics cron.SweepMetrics
	if svc, ok := j.appCtx.Service("gateway.metrics"); ok {
		metrics, _ = svc.(cron.SweepMetrics)
	}
	var events cron.EventSink
	if svc, ok := j.appCtx.Service("gateway.events"); ok {
		events, _ = svc.(cron.EventSink)
	}

	var registry *scraper.Registry
	if svc, ok := j.appCtx.Service(scraper.ServiceName); ok {
		registry, _ = svc.(*scraper.Registry)
	}

	if j.enabled("scrape") {
		if registry != nil {
			job := &cron.ScrapeJob{
				Store:        store,
				Scrapers:     registry,
				Analyzer:     analyzer,
				Limit:        j.config.ScrapeLimit,
				Metrics:      metrics,
				Events:       events,
				Logger:       j.logger,
				ScheduleExpr: j.config.ScrapeSchedule,
			}
			if err := j.sched.RegisterJob(job); err != nil {
				return err
			}
		} else {
			j.logger.Warn("cron.jobs: no collectors registered, scrape job disabled")
		}
	}

	if j.enabled("rollup") {
		job := &cron.RollupJob{
			Store:        store,
			Window:       j.rollupWindow,
			Logger:       j.logger,
			ScheduleExpr: j.config.RollupSchedule,
		}
		if err := j.sched.RegisterJob(job); err != nil {
			return err
		}
	}

	if j.enabled("coin_reports") {
		job := &cron.ReportJob{
			Analyzer:     analyzer,
			Timeframe:    j.reportTimeframe,
			Events:       events,
			Logger:       j.logger,
			ScheduleExpr: j.config.ReportSchedule,
		}
		if err := j.sched.RegisterJob(job); err != nil {
			return err
		}
	}

	if j.enabled("cleanup") {
		job := &cron.CleanupJob{
			Store:        store,
			Retention:    j.retention,
			Logger:       j.logger,
			ScheduleExpr: j.config.CleanupSchedule,
		}
		if svc, ok := j.appCtx.Service("security.ratelimiter"); ok {
			if limiter, ok := svc.(*security.RateLimiter); ok {
				job.Limiter = limiter
			}
		}
		if err := j.sched.RegisterJob(job); err != nil {
			return err
		}
	}

	return j.sched.Start()
}

// Stop implements core.Stopper.
func (j *Jobs) Stop(ctx context.Context) error {
	if j.sched == nil {
		return nil
	}
	return j.sched.Stop(ctx)
}

func (j *Jobs) enabled(name string) bool {
	for _, d := range j.config.Disabled {
		if d == name {
			return false
		}
	}
	return true
}

func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", s)
	}
	return d, nil
}
