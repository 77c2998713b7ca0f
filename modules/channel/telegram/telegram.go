package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/azura-ai/azura/internal/analysis"
	"github.com/azura-ai/azura/internal/bot"
	"github.com/azura-ai/azura/internal/channel"
	"github.com/azura-ai/azura/internal/core"
	"github.com/azura-ai/azura/internal/gateway"
	"github.com/azura-ai/azura/internal/provider"
	"github.com/azura-ai/azura/internal/scraper"
	"github.com/azura-ai/azura/internal/security"
	"github.com/azura-ai/azura/internal/storage"
	"github.com/azura-ai/azura/pkg/message"
	"gopkg.in/yaml.v3"
)

// handleTimeout bounds a single inbound message end to end, including a
// scrape sweep or a vision call.
const handleTimeout = 2 * time.Minute

func init() {
	core.RegisterModule(&Telegram{})
}

// Compile-time interface guards.
var (
	_ channel.Channel       = (*Telegram)(nil)
	_ channel.TypingChannel = (*Telegram)(nil)
	_ core.Configurable     = (*Telegram)(nil)
	_ core.Provisioner      = (*Telegram)(nil)
	_ core.Validator        = (*Telegram)(nil)
	_ core.Starter          = (*Telegram)(nil)
	_ core.Stopper          = (*Telegram)(nil)
)

// Telegram implements the Telegram Bot API channel. It receives commands
// and meme photos from chats and replies with analyses produced by the
// command bot.
type Telegram struct {
	config    Config
	client    *Client
	logger    *slog.Logger
	allowList *channel.AllowList
	limiter   *security.RateLimiter
	inbox     func(message.InboundMessage) error
	bot       *bot.Bot
	botUser   *User
	appCtx    *core.AppContext

	// Set during Start() depending on mode.
	poller          *Poller
	webhookReceiver *WebhookReceiver
}

// ModuleInfo implements core.Module.
func (t *Telegram) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "channel.telegram",
		New: func() core.Module { return &Telegram{} },
	}
}

// Configure implements core.Configurable.
func (t *Telegram) Configure(node *yaml.Node) error {
	if err := node.Decode(&t.config); err != nil {
		return fmt.Errorf("telegram: decode config: %w", err)
	}
	t.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (t *Telegram) Provision(ctx *core.AppContext) error {
	t.appCtx = ctx
	t.logger = ctx.Logger
	t.client = NewClient(t.config.Token, t.config.APIURL)
	t.allowList = channel.NewAllowList(t.config.AllowUsers, t.config.AllowGroups)

	// Reuse the app-level limiter when one is registered so every surface
	// shares the same buckets and the cleanup job prunes the right one.
	if svc, ok := ctx.Service("security.ratelimiter"); ok {
		if limiter, ok := svc.(*security.RateLimiter); ok {
			t.limiter = limiter
		}
	}
	if t.limiter == nil {
		t.limiter = security.NewRateLimiter(t.config.RateLimits)
		ctx.RegisterService("security.ratelimiter", t.limiter)
	}

	if _, err := channel.RegisterChannel(ctx, "telegram", t); err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	return nil
}

// Validate implements core.Validator.
func (t *Telegram) Validate() error {
	if t.config.Token == "" {
		return errors.New("telegram: token is required")
	}
	if err := t.config.validate(); err != nil {
		return err
	}
	switch t.config.Mode {
	case "polling", "webhook":
	default:
		return fmt.Errorf("telegram: invalid mode %q (must be \"polling\" or \"webhook\")", t.config.Mode)
	}
	if t.config.Mode == "webhook" && t.config.WebhookURL == "" {
		return errors.New("telegram: webhook_url is required when mode is \"webhook\"")
	}
	return nil
}

// Start implements core.Starter. It wires the command bot from the shared
// services, validates the bot token, then starts either polling or webhook
// mode.
func (t *Telegram) Start() error {
	if t.inbox == nil {
		if err := t.wireBot(); err != nil {
			return err
		}
		t.inbox = t.enqueue
	}

	// Validate token and get bot info.
	user, err := t.client.GetMe(context.Background())
	if err != nil {
		return fmt.Errorf("telegram: getMe failed (check token): %w", err)
	}
	t.botUser = user
	t.logger.Info("telegram bot authenticated",
		"id", user.ID,
		"username", user.Username,
	)

	channelName := string(t.ModuleInfo().ID)

	switch t.config.Mode {
	case "polling":
		t.poller = NewPoller(
			t.client, t.inbox, t.allowList, t.logger,
			user.Username, channelName, t.config,
		)
		t.poller.Start()
		t.logger.Info("telegram polling started",
			"timeout", t.config.PollingTimeout,
		)

	case "webhook":
		if t.config.WebhookSecret == "" {
			t.logger.Warn("telegram webhook running without secret_token, " +
				"consider setting webhook_secret for production deployments")
		}
		t.webhookReceiver = NewWebhookReceiver(
			t.client, t.inbox, t.allowList, t.logger,
			user.Username, channelName, t.config.WebhookSecret,
		)

		// Register with the gateway's webhook dispatcher.
		if err := t.registerWebhook(); err != nil {
			return err
		}

		// Point Telegram at the webhook URL.
		if err := t.client.SetWebhook(context.Background(), SetWebhookRequest{
			URL:            t.config.WebhookURL,
			SecretToken:    t.config.WebhookSecret,
			AllowedUpdates: t.config.AllowedUpdates,
		}); err != nil {
			return fmt.Errorf("telegram: setWebhook failed: %w", err)
		}
		t.logger.Info("telegram webhook configured",
			"url", t.config.WebhookURL,
		)
	}

	return nil
}

// wireBot assembles the command bot from the shared service registry: the
// SQL store, the scraper registry, and the provider chain. The store is
// required; without a provider chain the bot degrades to lexical analysis,
// and without scrapers /radar reads recent analyses from the store.
func (t *Telegram) wireBot() error {
	svc, ok := t.appCtx.Service("store")
	if !ok {
		return errors.New("telegram: store service not found (is the store.sql module loaded?)")
	}
	store, ok := svc.(storage.Store)
	if !ok {
		return errors.New("telegram: store service does not implement storage.Store")
	}

	chain, err := provider.ChainFrom(t.appCtx)
	if err != nil {
		return fmt.Errorf("telegram: build provider chain: %w", err)
	}
	var completer analysis.Completer
	if chain != nil {
		completer = chain
	} else {
		t.logger.Warn("no model providers configured, analyses will be lexical only")
	}

	var scrapers *scraper.Registry
	if svc, ok := t.appCtx.Service(scraper.ServiceName); ok {
		scrapers, _ = svc.(*scraper.Registry)
	}

	b, err := bot.New(bot.Options{
		Store:    store,
		Analyzer: analysis.NewAnalyzer(store, completer, t.logger),
		Scrapers: scrapers,
		Limiter:  t.limiter,
		Logger:   t.logger,
	})
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	t.bot = b
	return nil
}

// enqueue is the default inbox. Each message is handled in its own
// goroutine so a slow command (scrape sweep, model call) never blocks the
// polling loop.
func (t *Telegram) enqueue(in message.InboundMessage) error {
	go t.process(in)
	return nil
}

// process runs one inbound message through the command bot and delivers
// the reply.
func (t *Telegram) process(in message.InboundMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	if in.IsCommand() || in.HasPhoto() {
		if err := t.SendTyping(ctx, in.Chat); err != nil {
			t.logger.Debug("sendChatAction failed", "error", err)
		}
	}

	if in.HasPhoto() {
		if err := resolvePhotoURL(ctx, t.client, &in); err != nil {
			t.logger.Warn("photo resolution failed", "message_id", in.ID, "error", err)
			return
		}
	}

	out, err := t.bot.Handle(ctx, in)
	if err != nil {
		t.logger.Warn("command failed",
			"command", in.Command,
			"chat", in.Chat.ID,
			"error", err,
		)
	}
	if out.Text == "" {
		return
	}

	if err := t.sendOutbound(ctx, out); err != nil {
		t.logger.Error("reply delivery failed",
			"chat", out.Chat.ID,
			"error", err,
		)
	}
}

// registerWebhook resolves the gateway webhook dispatcher from the service
// registry and registers the WebhookReceiver as a handler.
func (t *Telegram) registerWebhook() error {
	svc, ok := t.appCtx.Service("gateway.webhook_dispatcher")
	if !ok {
		return errors.New("telegram: gateway.webhook_dispatcher service not found (is the gateway module loaded?)")
	}

	dispatcher, ok := svc.(*gateway.WebhookDispatcher)
	if !ok {
		return errors.New("telegram: gateway.webhook_dispatcher is not a *gateway.WebhookDispatcher")
	}

	// Pass an empty HMAC secret: Telegram uses its own
	// X-Telegram-Bot-Api-Secret-Token header instead of HMAC-SHA256.
	// Validation happens inside WebhookReceiver.HandleWebhook.
	dispatcher.Register("telegram", t.webhookReceiver, "")
	return nil
}

// Stop implements core.Stopper.
func (t *Telegram) Stop(ctx context.Context) error {
	t.logger.Info("telegram channel stopping")

	switch t.config.Mode {
	case "polling":
		if t.poller != nil {
			t.poller.Stop()
		}
	case "webhook":
		if err := t.client.DeleteWebhook(ctx); err != nil {
			t.logger.Warn("telegram: failed to delete webhook on shutdown", "error", err)
		}
	}

	return nil
}

// Send implements channel.Channel.
func (t *Telegram) Send(ctx context.Context, msg message.OutboundMessage) error {
	return t.sendOutbound(ctx, msg)
}

// SetInbox implements channel.Channel. It overrides the default wiring to
// the command bot, which tests and alternate routers use.
func (t *Telegram) SetInbox(fn func(msg message.InboundMessage) error) {
	t.inbox = fn
}

// SendTyping implements channel.TypingChannel.
func (t *Telegram) SendTyping(ctx context.Context, chat message.Chat) error {
	chatID, err := strconv.ParseInt(chat.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram: invalid chat ID %q: %w", chat.ID, err)
	}
	return t.client.SendChatAction(ctx, chatID, "typing")
}
