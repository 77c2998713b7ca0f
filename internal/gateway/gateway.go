package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/azura-ai/azura/internal/channel"
	"github.com/azura-ai/azura/internal/core"
	"github.com/azura-ai/azura/internal/storage"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Gateway{})
}

// Compile-time interface guards.
var (
	_ core.Module       = (*Gateway)(nil)
	_ core.Configurable = (*Gateway)(nil)
	_ core.Provisioner  = (*Gateway)(nil)
	_ core.Validator    = (*Gateway)(nil)
	_ core.Starter      = (*Gateway)(nil)
	_ core.Stopper      = (*Gateway)(nil)
)

// Gateway is the HTTP gateway module.
type Gateway struct {
	config     Config
	appCtx     *core.AppContext
	logger     *slog.Logger
	server     *http.Server
	metrics    *Metrics
	hub        *Hub
	dispatcher *WebhookDispatcher
	startedAt  time.Time
	addr       net.Addr

	// Resolved lazily at Start() via the service registry.
	store    storage.Store
	channels *channel.Dispatcher
}

// ModuleInfo implements core.Module.
func (g *Gateway) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "gateway.http",
		New: func() core.Module { return &Gateway{} },
	}
}

// Configure implements core.Configurable.
func (g *Gateway) Configure(node *yaml.Node) error {
	if err := node.Decode(&g.config); err != nil {
		return err
	}
	g.config.defaults()
	return nil
}

// Provision implements core.Provisioner. The webhook dispatcher, event
// hub, and metrics are registered as services so channel and cron modules
// can attach to them before Start.
func (g *Gateway) Provision(ctx *core.AppContext) error {
	g.appCtx = ctx
	g.logger = ctx.Logger
	g.metrics = NewMetrics()
	g.hub = NewHub(g.logger)

	secrets := make(map[string]string, len(g.config.Webhooks))
	for source, cfg := range g.config.Webhooks {
		if cfg.Secret != "" {
			secrets[source] = cfg.Secret
		}
	}
	g.dispatcher = NewWebhookDispatcher(g.logger, secrets, g.config.MaxBodyBytes, g.config.MaxJSONDepth)

	ctx.RegisterService("gateway.metrics", g.metrics)
	ctx.RegisterService("gateway.events", g.hub)
	ctx.RegisterService("gateway.webhook_dispatcher", g.dispatcher)
	return nil
}

// Validate implements core.Validator.
func (g *Gateway) Validate() error {
	if _, err := net.ResolveTCPAddr("tcp", g.config.Bind); err != nil {
		return errors.New("gateway: invalid bind address: " + g.config.Bind)
	}
	return nil
}

// Start implements core.Starter. It resolves the store and channel
// dispatcher from the service registry (lazy binding, so module order
// does not matter) and starts the HTTP server.
func (g *Gateway) Start() error {
	if svc, ok := g.appCtx.Service("store"); ok {
		if store, ok := svc.(storage.Store); ok {
			g.store = store
		}
	}
	if svc, ok := g.appCtx.Service(channel.ServiceName); ok {
		if d, ok := svc.(*channel.Dispatcher); ok {
			g.channels = d
		}
	}

	g.startedAt = time.Now()

	g.server = &http.Server{
		Addr:         g.config.Bind,
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Bind)
	if err != nil {
		return errors.New("gateway: listen failed: " + err.Error())
	}
	g.addr = ln.Addr()

	go func() {
		g.logger.Info("gateway listening", "addr", g.addr.String())
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop implements core.Stopper. Graceful shutdown with configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.hub.Close()
	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}
