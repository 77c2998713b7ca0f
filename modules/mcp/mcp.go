// Package mcp implements the mcp.server module, exposing the analysis
// data as Model Context Protocol tools so external agents can query
// meme trends, coin reports, and sentiment over stdio or HTTP.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/azura-ai/azura/internal/analysis"
	"github.com/azura-ai/azura/internal/core"
	"github.com/azura-ai/azura/internal/provider"
	"github.com/azura-ai/azura/internal/storage"
	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Server{})
}

// Compile-time interface guards.
var (
	_ core.Module       = (*Server)(nil)
	_ core.Configurable = (*Server)(nil)
	_ core.Provisioner  = (*Server)(nil)
	_ core.Validator    = (*Server)(nil)
	_ core.Starter      = (*Server)(nil)
	_ core.Stopper      = (*Server)(nil)
)

// Config selects the MCP transport.
type Config struct {
	// Transport is "stdio" or "http".
	Transport string `yaml:"transport"`

	// Bind is the listen address for the http transport.
	Bind string `yaml:"bind"`
}

func (c *Config) defaults() {
	if c.Transport == "" {
		c.Transport = "stdio"
	}
	if c.Bind == "" {
		c.Bind = "127.0.0.1:8765"
	}
}

// Server is the mcp.server module.
type Server struct {
	config Config
	logger *slog.Logger
	appCtx *core.AppContext

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
	cancel     context.CancelFunc
}

// ModuleInfo implements core.Module.
func (s *Server) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "mcp.server",
		New: func() core.Module { return &Server{} },
	}
}

// Configure implements core.Configurable.
func (s *Server) Configure(node *yaml.Node) error {
	if err := node.Decode(&s.config); err != nil {
		return fmt.Errorf("mcp: decode config: %w", err)
	}
	s.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (s *Server) Provision(ctx *core.AppContext) error {
	s.logger = ctx.Logger
	s.appCtx = ctx
	return nil
}

// Validate implements core.Validator. Defaults are applied here as well
// so the module loads cleanly without a config block.
func (s *Server) Validate() error {
	s.config.defaults()
	switch s.config.Transport {
	case "stdio", "http":
		return nil
	default:
		return fmt.Errorf("mcp: unknown transport %q (want stdio or http)", s.config.Transport)
	}
}

// Start implements core.Starter. It resolves the shared store, builds
// the tool handlers, and serves the selected transport in the background.
func (s *Server) Start() error {
	svc, ok := s.appCtx.Service("store")
	if !ok {
		return fmt.Errorf("mcp: no store module loaded")
	}
	store, ok := svc.(storage.Store)
	if !ok {
		return fmt.Errorf("mcp: service %q is not a storage.Store", "store")
	}

	var completer analysis.Completer
	chain, err := provider.ChainFrom(s.appCtx)
	if err != nil {
		return fmt.Errorf("mcp: resolve providers: %w", err)
	}
	if chain != nil {
		completer = chain
	}
	analyzer := analysis.NewAnalyzer(store, completer, s.logger)

	s.mcpServer = server.NewMCPServer("azura", core.Version,
		server.WithToolCapabilities(false),
	)
	registerTools(s.mcpServer, store, analyzer)

	switch s.config.Transport {
	case "stdio":
		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		stdio := server.NewStdioServer(s.mcpServer)
		go func() {
			if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
				s.logger.Error("mcp stdio server stopped", "error", err)
			}
		}()
		s.logger.Info("mcp server started", "transport", "stdio")
	case "http":
		s.httpServer = server.NewStreamableHTTPServer(s.mcpServer)
		go func() {
			if err := s.httpServer.Start(s.config.Bind); err != nil {
				s.logger.Error("mcp http server stopped", "error", err)
			}
		}()
		s.logger.Info("mcp server started", "transport", "http", "bind", s.config.Bind)
	}
	return nil
}

// Stop implements core.Stopper.
func (s *Server) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("mcp: shutdown: %w", err)
		}
	}
	return nil
}
