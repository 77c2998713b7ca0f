package security

import (
	"errors"
	"sync"
	"time"
)

// ErrRateLimited is returned when a request exceeds the rate limit.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimitConfig holds configurable rate limits.
type RateLimitConfig struct {
	// CommandsPerMin limits bot commands per chat per minute.
	CommandsPerMin int `yaml:"commands_per_min"`
	// AnalysesPerMin limits model-backed analyses per chat per minute.
	// These are the expensive operations (vision calls, report generation).
	AnalysesPerMin int `yaml:"analyses_per_min"`
	// ScrapesPerMin limits outbound scraper requests per platform per minute.
	ScrapesPerMin int `yaml:"scrapes_per_min"`
}

// rateLimitConfigDefaults returns a config with sensible defaults.
func rateLimitConfigDefaults() RateLimitConfig {
	return RateLimitConfig{
		CommandsPerMin: 20,
		AnalysesPerMin: 5,
		ScrapesPerMin:  60,
	}
}

// Event kinds accepted by RateLimiter.Allow.
const (
	KindCommand  = "command"
	KindAnalysis = "analysis"
	KindScrape   = "scrape"
)

// RateLimiter implements per-key sliding window rate limiting.
// Each (kind, key) pair tracks timestamps of recent events within the
// kind's window: commands and analyses are keyed by chat ID, scrapes by
// platform name.
type RateLimiter struct {
	mu      sync.Mutex
	kinds   map[string]kindLimit
	buckets map[bucketKey]*bucket
	config  RateLimitConfig
	now     func() time.Time
}

type kindLimit struct {
	window time.Duration
	limit  int
}

type bucketKey struct {
	kind string
	key  string
}

type bucket struct {
	events []time.Time
}

// NewRateLimiter creates a rate limiter with the given config.
// Zero-value fields in cfg are replaced with defaults.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	defaults := rateLimitConfigDefaults()
	if cfg.CommandsPerMin <= 0 {
		cfg.CommandsPerMin = defaults.CommandsPerMin
	}
	if cfg.AnalysesPerMin <= 0 {
		cfg.AnalysesPerMin = defaults.AnalysesPerMin
	}
	if cfg.ScrapesPerMin <= 0 {
		cfg.ScrapesPerMin = defaults.ScrapesPerMin
	}

	return &RateLimiter{
		config:  cfg,
		now:     time.Now,
		buckets: make(map[bucketKey]*bucket),
		kinds: map[string]kindLimit{
			KindCommand:  {window: time.Minute, limit: cfg.CommandsPerMin},
			KindAnalysis: {window: time.Minute, limit: cfg.AnalysesPerMin},
			KindScrape:   {window: time.Minute, limit: cfg.ScrapesPerMin},
		},
	}
}

// Allow checks whether an event of the given kind is allowed for key.
// Returns nil if allowed, ErrRateLimited if the limit is exceeded.
// Unknown kinds have no limit configured and are always allowed.
func (rl *RateLimiter) Allow(kind, key string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	kl, ok := rl.kinds[kind]
	if !ok {
		return nil
	}

	bk := bucketKey{kind: kind, key: key}
	b, ok := rl.buckets[bk]
	if !ok {
		b = &bucket{}
		rl.buckets[bk] = b
	}

	now := rl.now()
	b.evict(now, kl.window)

	if len(b.events) >= kl.limit {
		return ErrRateLimited
	}

	b.events = append(b.events, now)
	return nil
}

// Prune removes buckets whose every event has left its window.
// Intended to be called periodically so buckets for long-idle chats
// do not accumulate.
func (rl *RateLimiter) Prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for bk, b := range rl.buckets {
		kl := rl.kinds[bk.kind]
		b.evict(now, kl.window)
		if len(b.events) == 0 {
			delete(rl.buckets, bk)
		}
	}
}

// evict removes events outside the sliding window.
func (b *bucket) evict(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	// Find the first event within the window (events are chronologically ordered).
	i := 0
	for i < len(b.events) && b.events[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		b.events = b.events[i:]
	}
}
