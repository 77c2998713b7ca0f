// Package reddit implements the scraper.reddit module, collecting hot posts
// from meme subreddits through Reddit's public JSON listings.
package reddit

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/azura-ai/azura/internal/core"
	"github.com/azura-ai/azura/internal/scraper"
	"github.com/azura-ai/azura/pkg/post"
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

// defaultSubreddits are the meme subreddits polled when none are configured.
var defaultSubreddits = []string{
	"cryptocurrencymemes",
	"dogecoin",
	"wallstreetbets",
	"SatoshiStreetBets",
	"CryptoMemes",
	"memecoin",
	"memeeconomy",
}

const (
	defaultBaseURL   = "https://www.reddit.com"
	defaultUserAgent = "azura:meme-analyzer:v1.0"
	defaultTimeout   = "15s"
)

// Config holds the reddit scraper configuration.
type Config struct {
	// Subreddits to poll. Defaults to the built-in meme subreddit list.
	Subreddits []string `yaml:"subreddits"`

	// UserAgent sent with every request. Reddit throttles generic agents
	// aggressively, so keep it descriptive.
	UserAgent string `yaml:"user_agent"`

	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`

	// ImagesOnly skips posts that do not link to an image. Defaults to true.
	ImagesOnly *bool `yaml:"images_only"`
}

func (c *Config) defaults() {
	if len(c.Subreddits) == 0 {
		c.Subreddits = defaultSubreddits
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Timeout == "" {
		c.Timeout = defaultTimeout
	}
	if c.ImagesOnly == nil {
		t := true
		c.ImagesOnly = &t
	}
}

func (c *Config) imagesOnly() bool {
	return c.ImagesOnly == nil || *c.ImagesOnly
}

// Scraper is the scraper.reddit module.
type Scraper struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

// ModuleInfo implements core.Module.
func (s *Scraper) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "scraper.reddit",
		New: func() core.Module { return &Scraper{} },
	}
}

// Configure implements core.Configurable.
func (s *Scraper) Configure(node *yaml.Node) error {
	if err := node.Decode(&s.config); err != nil {
		return fmt.Errorf("reddit: decode config: %w", err)
	}
	s.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (s *Scraper) Provision(ctx *core.AppContext) error {
	s.config.defaults()
	s.logger = ctx.Logger

	timeout, _ := time.ParseDuration(s.config.Timeout)
	s.client = &http.Client{Timeout: timeout}

	scraper.Register(ctx, s)
	ctx.RegisterService("scraper.reddit", s)

	return nil
}

// Validate implements core.Validator.
func (s *Scraper) Validate() error {
	if len(s.config.Subreddits) == 0 {
		return fmt.Errorf("scraper.reddit: at least one subreddit is required")
	}
	if _, err := time.ParseDuration(s.config.Timeout); err != nil {
		return fmt.Errorf("scraper.reddit: invalid timeout %q: %w", s.config.Timeout, err)
	}
	return nil
}

// Platform implements scraper.Scraper.
func (s *Scraper) Platform() post.Platform {
	return post.PlatformReddit
}

// Sources implements scraper.SourceLister.
func (s *Scraper) Sources() []string {
	out := make([]string, len(s.config.Subreddits))
	for i, sub := range s.config.Subreddits {
		out[i] = "r/" + sub
	}
	return out
}
