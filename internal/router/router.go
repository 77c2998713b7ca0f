package router

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/azura-ai/azura/internal/security"
	"github.com/azura-ai/azura/pkg/message"
)

const (
	defaultInboxSize = 256

	// defaultHandleTimeout bounds a single command end to end. Scrape
	// sweeps and vision calls are slow, so this is generous.
	defaultHandleTimeout = 2 * time.Minute
)

// Handler processes one inbound message and returns the reply.
// A reply with empty Text means nothing should be sent. *bot.Bot
// satisfies it.
type Handler interface {
	Handle(ctx context.Context, in message.InboundMessage) (message.OutboundMessage, error)
}

// Sender delivers replies and typing indicators to a named channel.
// *channel.Dispatcher satisfies it.
type Sender interface {
	Send(ctx context.Context, channel string, msg message.OutboundMessage) error
	SendTyping(ctx context.Context, channel string, chat message.Chat) error
}

// Config holds the configuration for a Router.
type Config struct {
	WorkerCount   int
	InboxSize     int
	HandleTimeout time.Duration
	Handler       Handler
	Sender        Sender
	Logger        *slog.Logger

	// RateLimiter, if non-nil, is consulted before enqueuing commands.
	RateLimiter *security.RateLimiter

	// MaxMessageSize is the maximum allowed raw message size in bytes.
	// Zero means use the default (1 MiB).
	MaxMessageSize int
}

// withDefaults returns a copy of the config with zero values replaced by defaults.
func (c Config) withDefaults() Config {
	if c.WorkerCount <= 0 {
		c.WorkerCount = DefaultWorkerCount
	}
	if c.InboxSize <= 0 {
		c.InboxSize = defaultInboxSize
	}
	if c.HandleTimeout <= 0 {
		c.HandleTimeout = defaultHandleTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Router is the dispatch layer between channels and the bot. Channels
// push inbound messages in via Submit; a worker pool runs the handler
// and sends each reply back through the originating channel.
type Router struct {
	config   Config
	inbox    chan envelope
	inboxMu  sync.RWMutex
	pool     *WorkerPool
	cancel   context.CancelFunc
	stopOnce sync.Once
	logger   *slog.Logger
	stopped  atomic.Bool
}

// NewRouter creates a new Router with the given configuration.
func NewRouter(cfg Config) (*Router, error) {
	cfg = cfg.withDefaults()

	if cfg.Handler == nil {
		return nil, ErrNoHandler
	}
	if cfg.Sender == nil {
		return nil, ErrNoSender
	}

	return &Router{
		config: cfg,
		inbox:  make(chan envelope, cfg.InboxSize),
		pool:   NewWorkerPool(cfg.WorkerCount),
		logger: cfg.Logger,
	}, nil
}

// Start launches the worker pool and begins processing messages.
func (r *Router) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	r.inboxMu.Lock()
	if r.stopped.Load() {
		r.inboxMu.Unlock()
		cancel()
		r.logger.Warn("router: start ignored, router already stopped")
		return
	}
	r.cancel = cancel
	r.inboxMu.Unlock()

	r.pool.Start(ctx, r.inbox, r.process)
	r.logger.Info("router: started", "workers", r.config.WorkerCount, "inbox_size", r.config.InboxSize)
}

// Submit enqueues an inbound message for processing. Raw payloads are
// validated at the system boundary. If the inbox is full, the message
// is dropped with a warning log.
func (r *Router) Submit(msg message.InboundMessage) error {
	r.inboxMu.RLock()
	defer r.inboxMu.RUnlock()

	if r.stopped.Load() {
		return ErrRouterStopped
	}

	if len(msg.Raw) > 0 {
		if err := security.ValidateMessageSize(msg.Raw, r.config.MaxMessageSize); err != nil {
			r.logger.Warn("router: message too large, rejected",
				"size", len(msg.Raw),
				"channel", msg.Channel,
			)
			return err
		}
		if err := security.ValidateJSONDepth(msg.Raw, 0); err != nil {
			r.logger.Warn("router: message JSON too deep, rejected",
				"channel", msg.Channel,
			)
			return err
		}
	}

	// Non-blocking send. Drop with warning if the inbox is full.
	select {
	case r.inbox <- envelope{Message: msg}:
		return nil
	default:
		r.logger.Warn("router: inbox full, message dropped",
			"channel", msg.Channel,
			"chat_id", msg.Chat.ID,
		)
		return ErrInboxFull
	}
}

// process runs one envelope through the handler and delivers the reply.
func (r *Router) process(ctx context.Context, env envelope) {
	msg := env.Message

	ctx, cancel := context.WithTimeout(ctx, r.config.HandleTimeout)
	defer cancel()

	// Typing feedback while a slow command runs. Best-effort.
	if msg.IsCommand() || msg.HasPhoto() {
		if err := r.config.Sender.SendTyping(ctx, msg.Channel, msg.Chat); err != nil {
			r.logger.Debug("router: typing indicator failed",
				"channel", msg.Channel,
				"error", err,
			)
		}
	}

	out, err := r.config.Handler.Handle(ctx, msg)
	if err != nil {
		r.logger.Error("router: handler failed",
			"channel", msg.Channel,
			"chat_id", msg.Chat.ID,
			"command", msg.Command,
			"error", err,
		)
		out = message.NewReply(msg, "Something went wrong on my side. Try again in a bit.")
	}
	if out.Text == "" && out.PhotoURL == "" {
		return
	}

	if err := r.config.Sender.Send(ctx, msg.Channel, out); err != nil {
		r.logger.Error("router: send failed",
			"channel", msg.Channel,
			"chat_id", msg.Chat.ID,
			"error", err,
		)
	}
}

// Stop gracefully shuts down the router: closes inbox, drains workers, cancels context.
func (r *Router) Stop(_ context.Context) {
	r.stopOnce.Do(func() {
		r.logger.Info("router: stopping")

		r.inboxMu.Lock()
		r.stopped.Store(true)
		close(r.inbox)
		cancel := r.cancel
		r.inboxMu.Unlock()

		if cancel != nil {
			cancel()
		}

		r.pool.Wait()
		r.logger.Info("router: stopped")
	})
}
