package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/azura-ai/azura/internal/config"
	"github.com/azura-ai/azura/internal/core"
	"github.com/azura-ai/azura/pkg/app"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// mcpCmd serves the analysis data over MCP stdio. Only the storage and
// provider modules from the config are loaded; chat channels, scrapers,
// and the gateway stay down so the process owns stdin/stdout.
func mcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve analysis tools over the Model Context Protocol (stdio)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			if cfgPath == "" {
				resolved, err := app.ResolveConfigPath()
				if err != nil {
					return err
				}
				cfgPath = resolved
			}

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			// stdout carries the MCP wire; logs must go to stderr.
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelWarn,
			}))

			var ids []string
			for _, id := range config.Resolve(cfg) {
				if strings.HasPrefix(id, "store.") || strings.HasPrefix(id, "provider.") {
					ids = append(ids, id)
				}
			}

			// Force the MCP server onto stdio regardless of what the
			// config says; the start command serves the configured transport.
			var doc yaml.Node
			if err := yaml.Unmarshal([]byte("transport: stdio\n"), &doc); err != nil {
				return err
			}
			cfg.Modules["mcp.server"] = *doc.Content[0]
			ids = append(ids, "mcp.server")

			appCtx := core.NewAppContext(logger, app.DefaultDataDir())
			appCtx = appCtx.WithModuleConfigs(cfg.Modules)

			application := core.NewApp(appCtx)
			if err := application.LoadModules(ids); err != nil {
				return err
			}
			return application.Run()
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	return cmd
}
