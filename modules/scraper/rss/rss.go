// Package rss implements the scraper.rss module, collecting items from
// crypto news and meme feeds.
package rss

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/azura-ai/azura/internal/core"
	"github.com/azura-ai/azura/internal/scraper"
	"github.com/azura-ai/azura/pkg/post"
	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Scraper{})
}

// Compile-time interface guards.
var (
	_ scraper.Scraper      = (*Scraper)(nil)
	_ scraper.SourceLister = (*Scraper)(nil)
	_ core.Module          = (*Scraper)(nil)
	_ core.Configurable    = (*Scraper)(nil)
	_ core.Provisioner     = (*Scraper)(nil)
	_ core.Validator       = (*Scraper)(nil)
)

// defaultFeeds are the crypto news feeds polled when none are configured.
var defaultFeeds = []string{
	"https://cointelegraph.com/rss",
	"https://decrypt.co/feed",
}

const (
	defaultTimeout   = "20s"
	defaultUserAgent = "azura:meme-analyzer:v1.0"

	// defaultMaxAge drops stale items; feeds often republish weeks of
	// history on every fetch.
	defaultMaxAge = "48h"
)

// Config holds the rss scraper configuration.
type Config struct {
	// Feeds is the list of feed URLs to poll.
	Feeds []string `yaml:"feeds"`

	UserAgent string `yaml:"user_agent"`
	Timeout   string `yaml:"timeout"`

	// MaxAge drops items published longer than this duration ago.
	MaxAge string `yaml:"max_age"`
}

func (c *Config) defaults() {
	if len(c.Feeds) == 0 {
		c.Feeds = defaultFeeds
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.Timeout == "" {
		c.Timeout = defaultTimeout
	}
	if c.MaxAge == "" {
		c.MaxAge = defaultMaxAge
	}
}

// Scraper is the scraper.rss module.
type Scraper struct {
	config Config
	client *http.Client
	parser *gofeed.Parser
	logger *slog.Logger
	maxAge time.Duration
	now    func() time.Time
}

// ModuleInfo implements core.Module.
func (s *Scraper) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "scraper.rss",
		New: func() core.Module { return &Scraper{} },
	}
}

// Configure implements core.Configurable.
func (s *Scraper) Configure(node *yaml.Node) error {
	if err := node.Decode(&s.config); err != nil {
		return fmt.Errorf("rss: decode config: %w", err)
	}
	s.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (s *Scraper) Provision(ctx *core.AppContext) error {
	s.config.defaults()
	s.logger = ctx.Logger
	s.parser = gofeed.NewParser()
	s.now = time.Now

	timeout, _ := time.ParseDuration(s.config.Timeout)
	s.client = &http.Client{Timeout: timeout}
	s.maxAge, _ = time.ParseDuration(s.config.MaxAge)

	scraper.Register(ctx, s)
	ctx.RegisterService("scraper.rss", s)

	return nil
}

// Validate implements core.Validator.
func (s *Scraper) Validate() error {
	if len(s.config.Feeds) == 0 {
		return fmt.Errorf("scraper.rss: at least one feed is required")
	}
	if _, err := time.ParseDuration(s.config.Timeout); err != nil {
		return fmt.Errorf("scraper.rss: invalid timeout %q: %w", s.config.Timeout, err)
	}
	if _, err := time.ParseDuration(s.config.MaxAge); err != nil {
		return fmt.Errorf("scraper.rss: invalid max_age %q: %w", s.config.MaxAge, err)
	}
	return nil
}

// Platform implements scraper.Scraper.
func (s *Scraper) Platform() post.Platform {
	return post.PlatformRSS
}

// Sources implements scraper.SourceLister.
func (s *Scraper) Sources() []string {
	out := make([]string, len(s.config.Feeds))
	copy(out, s.config.Feeds)
	return out
}
