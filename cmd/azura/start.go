package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/azura-ai/azura/pkg/app"
	"github.com/spf13/cobra"
)

func startCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start azura with all configured modules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			dataDir, _ := cmd.Flags().GetString("data-dir")
			levelStr, _ := cmd.Flags().GetString("log-level")

			level, err := parseLogLevel(levelStr)
			if err != nil {
				return err
			}

			return app.Run(app.RunParams{
				ConfigPath: cfgPath,
				DataDir:    dataDir,
				LogLevel:   level,
			})
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	cmd.Flags().String("data-dir", "", "Persistent data directory")
	cmd.Flags().String("log-level", "info", "Minimum log level (debug, info, warn, error)")
	return cmd
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
