// Package bot implements the command router behind the chat channel:
// it turns inbound messages (commands, photos) into analysis operations
// and renders the results as replies.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/azura-ai/azura/internal/analysis"
	"github.com/azura-ai/azura/internal/scraper"
	"github.com/azura-ai/azura/internal/security"
	"github.com/azura-ai/azura/internal/storage"
	"github.com/azura-ai/azura/pkg/message"
)

// Window and limit defaults for the analysis commands.
const (
	defaultRadarLimit = 5
	maxRadarLimit     = 10

	// reportWindow is the lookback for /detective, /vibe, and /crystal.
	reportWindow = 24 * time.Hour
)

// ErrMissingStore is returned by New when no store is provided.
var ErrMissingStore = errors.New("bot: store is required")

// Options configures a Bot. Store and Analyzer are required; the rest
// degrade gracefully when absent (no scrapers = /radar reads the store,
// no limiter = unlimited).
type Options struct {
	Store    storage.Store
	Analyzer *analysis.Analyzer
	Scrapers *scraper.Registry
	Limiter  *security.RateLimiter
	Logger   *slog.Logger
}

// Bot routes inbound chat messages to analysis operations.
type Bot struct {
	store    storage.Store
	analyzer *analysis.Analyzer
	scrapers *scraper.Registry
	limiter  *security.RateLimiter
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Bot from the given options.
func New(opts Options) (*Bot, error) {
	if opts.Store == nil {
		return nil, ErrMissingStore
	}
	if opts.Analyzer == nil {
		return nil, errors.New("bot: analyzer is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		store:    opts.Store,
		analyzer: opts.Analyzer,
		scrapers: opts.Scrapers,
		limiter:  opts.Limiter,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Handle processes one inbound message and returns the reply. A reply
// with empty Text means no response should be sent (plain chatter in
// groups is ignored).
func (b *Bot) Handle(ctx context.Context, in message.InboundMessage) (message.OutboundMessage, error) {
	switch {
	case in.IsCommand():
		return b.handleCommand(ctx, in)
	case in.HasPhoto():
		return b.handlePhoto(ctx, in)
	default:
		return message.OutboundMessage{}, nil
	}
}

func (b *Bot) handleCommand(ctx context.Context, in message.InboundMessage) (message.OutboundMessage, error) {
	if err := b.allow(security.KindCommand, in.Chat.ID); err != nil {
		return reply(in, "⏳ Easy there! Too many commands. Give me a minute to catch up."), nil
	}

	b.logger.Info("handling command",
		"command", in.Command,
		"chat", in.Chat.ID,
		"args", len(in.Args))

	switch in.Command {
	case "start", "help":
		return reply(in, welcomeText), nil
	case "radar":
		return b.handleRadar(ctx, in)
	case "detective":
		return b.handleDetective(ctx, in)
	case "vibe":
		return b.handleVibe(ctx, in)
	case "crystal":
		return b.handleCrystal(ctx, in)
	case "observe":
		return b.handleObserve(ctx, in)
	default:
		return reply(in, fmt.Sprintf("Unknown command /%s. Try /start for the list of commands.", in.Command)), nil
	}
}

// allow checks the rate limit for a kind/key pair. A nil limiter allows
// everything.
func (b *Bot) allow(kind, key string) error {
	if b.limiter == nil {
		return nil
	}
	return b.limiter.Allow(kind, key)
}

// reply builds a Markdown-formatted reply to an inbound message.
func reply(in message.InboundMessage, text string) message.OutboundMessage {
	out := message.NewReply(in, text)
	out.ParseMode = "Markdown"
	out.DisablePreview = true
	return out
}
