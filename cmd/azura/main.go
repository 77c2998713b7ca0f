// Package main is the entry point for the azura CLI.
package main

import (
	"fmt"
	"os"

	"github.com/azura-ai/azura/internal/core"
	"github.com/spf13/cobra"

	// Modules register themselves in init().
	_ "github.com/azura-ai/azura/internal/gateway"
	_ "github.com/azura-ai/azura/internal/telemetry"
	_ "github.com/azura-ai/azura/modules/channel/telegram"
	_ "github.com/azura-ai/azura/modules/cron"
	_ "github.com/azura-ai/azura/modules/mcp"
	_ "github.com/azura-ai/azura/modules/provider/anthropic"
	_ "github.com/azura-ai/azura/modules/provider/openai"
	_ "github.com/azura-ai/azura/modules/scraper/reddit"
	_ "github.com/azura-ai/azura/modules/scraper/rss"
	_ "github.com/azura-ai/azura/modules/scraper/twitter"
	_ "github.com/azura-ai/azura/modules/store/sql"
)

// Set by goreleaser ldflags.
var (
	commit = "none"
	date   = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "azura",
		Short:         "Meme and memecoin trend analysis bot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		versionCmd(),
		startCmd(),
		configCmd(),
		migrateCmd(),
		serviceCmd(),
		mcpCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and compiled modules",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("azura %s (commit: %s, built: %s)\n", core.Version, commit, date)
			mods := core.GetModules()
			if len(mods) == 0 {
				fmt.Println("\nNo compiled modules.")
				return
			}
			fmt.Println("\nCompiled modules:")
			for _, mod := range mods {
				fmt.Printf("  %s\n", mod.ID)
			}
		},
	}
}
