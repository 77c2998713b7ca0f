// Package twitter implements the scraper.twitter module, collecting meme
// tweets through the Twitter API v2 recent search endpoint.
package twitter

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
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

// defaultHashtags are the meme hashtags searched when none are configured.
var defaultHashtags = []string{
	"memecoin",
	"memecrypto",
	"cryptomemes",
	"dogecoin",
	"shibainu",
	"pepe",
	"wojak",
	"memeconomy",
	"cryptoart",
	"nftmemes",
}

const (
	defaultBaseURL = "https://api.twitter.com/2"
	defaultTimeout = "15s"
)

// Config holds the twitter scraper configuration.
type Config struct {
	// BearerToken authenticates against the v2 API. Falls back to the
	// TWITTER_BEARER_TOKEN environment variable when empty.
	BearerToken string `yaml:"bearer_token"`

	// Hashtags to search, without the leading #. Defaults to the
	// built-in meme hashtag list.
	Hashtags []string `yaml:"hashtags"`

	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

func (c *Config) defaults() {
	if len(c.Hashtags) == 0 {
		c.Hashtags = defaultHashtags
	}
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Timeout == "" {
		c.Timeout = defaultTimeout
	}
}

// searchQuery builds the v2 search query: hashtags OR-joined, images
// required, retweets excluded.
func (c *Config) searchQuery() string {
	tags := make([]string, len(c.Hashtags))
	for i, h := range c.Hashtags {
		tags[i] = "#" + strings.TrimPrefix(h, "#")
	}
	return "(" + strings.Join(tags, " OR ") + ") has:images -is:retweet"
}

// Scraper is the scraper.twitter module.
type Scraper struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

// ModuleInfo implements core.Module.
func (s *Scraper) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "scraper.twitter",
		New: func() core.Module { return &Scraper{} },
	}
}

// Configure implements core.Configurable.
func (s *Scraper) Configure(node *yaml.Node) error {
	if err := node.Decode(&s.config); err != nil {
		return fmt.Errorf("twitter: decode config: %w", err)
	}
	s.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (s *Scraper) Provision(ctx *core.AppContext) error {
	s.config.defaults()
	s.logger = ctx.Logger

	if s.config.BearerToken == "" {
		s.config.BearerToken = os.Getenv("TWITTER_BEARER_TOKEN")
	}

	timeout, _ := time.ParseDuration(s.config.Timeout)
	s.client = &http.Client{Timeout: timeout}

	scraper.Register(ctx, s)
	ctx.RegisterService("scraper.twitter", s)

	return nil
}

// Validate implements core.Validator.
func (s *Scraper) Validate() error {
	if len(s.config.Hashtags) == 0 {
		return fmt.Errorf("scraper.twitter: at least one hashtag is required")
	}
	if _, err := time.ParseDuration(s.config.Timeout); err != nil {
		return fmt.Errorf("scraper.twitter: invalid timeout %q: %w", s.config.Timeout, err)
	}
	return nil
}

// Platform implements scraper.Scraper.
func (s *Scraper) Platform() post.Platform {
	return post.PlatformTwitter
}

// Sources implements scraper.SourceLister.
func (s *Scraper) Sources() []string {
	out := make([]string, len(s.config.Hashtags))
	for i, h := range s.config.Hashtags {
		out[i] = "#" + strings.TrimPrefix(h, "#")
	}
	return out
}
