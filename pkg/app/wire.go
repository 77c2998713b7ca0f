package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/azura-ai/azura/internal/analysis"
	"github.com/azura-ai/azura/internal/bot"
	"github.com/azura-ai/azura/internal/channel"
	"github.com/azura-ai/azura/internal/core"
	"github.com/azura-ai/azura/internal/provider"
	"github.com/azura-ai/azura/internal/router"
	"github.com/azura-ai/azura/internal/scraper"
	"github.com/azura-ai/azura/internal/security"
	"github.com/azura-ai/azura/internal/storage"
)

// routerModule wraps a *router.Router to satisfy core.Module, core.Starter,
// and core.Stopper, so the router participates in the App lifecycle.
type routerModule struct {
	router *router.Router
	ctx    context.Context
}

func (m *routerModule) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{ID: "router"}
}

func (m *routerModule) Start() error {
	m.router.Start(m.ctx)
	return nil
}

func (m *routerModule) Stop(ctx context.Context) error {
	m.router.Stop(ctx)
	return nil
}

// wireBot builds the bot over the shared store, creates the router,
// wires every channel's inbox to it, and appends the router to the app
// lifecycle. Must be called after LoadModules and before Start.
func wireBot(
	app *core.App,
	appCtx *core.AppContext,
	logger *slog.Logger,
	rateLimiter *security.RateLimiter,
) error {
	svc, ok := appCtx.Service(channel.ServiceName)
	if !ok {
		logger.Info("router: no channels loaded, skipping bot wiring")
		return nil
	}
	dispatcher, ok := svc.(*channel.Dispatcher)
	if !ok {
		return fmt.Errorf("app: service %q is not a channel dispatcher", channel.ServiceName)
	}
	names := dispatcher.Channels()
	if len(names) == 0 {
		logger.Info("router: no channels registered, skipping bot wiring")
		return nil
	}

	storeSvc, ok := appCtx.Service("store")
	if !ok {
		return fmt.Errorf("app: channels are configured but no store module is loaded")
	}
	store, ok := storeSvc.(storage.Store)
	if !ok {
		return fmt.Errorf("app: service %q is not a storage.Store", "store")
	}

	var scrapers *scraper.Registry
	if svc, ok := appCtx.Service(scraper.ServiceName); ok {
		scrapers, _ = svc.(*scraper.Registry)
	}

	var completer analysis.Completer
	chain, err := provider.ChainFrom(appCtx)
	if err != nil {
		return fmt.Errorf("app: resolving providers: %w", err)
	}
	if chain != nil {
		completer = chain
	}

	b, err := bot.New(bot.Options{
		Store:    store,
		Analyzer: analysis.NewAnalyzer(store, completer, logger),
		Scrapers: scrapers,
		Limiter:  rateLimiter,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("app: building bot: %w", err)
	}

	r, err := router.NewRouter(router.Config{
		Handler:     b,
		Sender:      dispatcher,
		Logger:      logger,
		RateLimiter: rateLimiter,
	})
	if err != nil {
		return fmt.Errorf("app: creating router: %w", err)
	}

	// Wire each channel's inbox to the router.
	for _, name := range names {
		ch, ok := dispatcher.Get(name)
		if !ok {
			continue
		}
		ch.SetInbox(r.Submit)
		logger.Info("router: wired channel", "channel", name)
	}

	app.AppendModule("router", &routerModule{
		router: r,
		ctx:    context.Background(),
	})

	logger.Info("router: wired", "channels", len(names))
	return nil
}
