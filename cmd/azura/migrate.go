package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/azura-ai/azura/internal/config"
	"github.com/azura-ai/azura/internal/storage"
	"github.com/azura-ai/azura/pkg/app"
	sqlstore "github.com/azura-ai/azura/modules/store/sql"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	cmd.AddCommand(
		migrateUpCmd(),
		migrateDownCmd(),
		migrateCurrentCmd(),
		migrateHistoryCmd(),
	)
	return cmd
}

// openRunner builds a migration runner from the store.sql module config.
func openRunner(cmd *cobra.Command) (*storage.Runner, *sql.DB, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		resolved, err := app.ResolveConfigPath()
		if err != nil {
			return nil, nil, err
		}
		cfgPath = resolved
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	var storeCfg sqlstore.Config
	if node, ok := cfg.Modules["store.sql"]; ok {
		if err := node.Decode(&storeCfg); err != nil {
			return nil, nil, fmt.Errorf("decoding store.sql config: %w", err)
		}
	}
	if storeCfg.DSN == "" {
		storeCfg.DSN = filepath.Join(app.DefaultDataDir(), sqlstore.DefaultDBFile)
	}

	db, err := sqlstore.Open(cmd.Context(), storeCfg)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	runner, err := storage.NewRunner(db, storeCfg.Dialect(), storage.Migrations, logger)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return runner, db, nil
}

func migrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			runner, db, err := openRunner(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := runner.Upgrade(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Applied %d migration(s)\n", applied)
			return nil
		},
	}
}

func migrateDownCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration(s)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			runner, db, err := openRunner(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			rolled, err := runner.Downgrade(cmd.Context(), steps)
			if err != nil {
				return err
			}
			fmt.Printf("Rolled back %d migration(s)\n", rolled)
			return nil
		},
	}
	cmd.Flags().Int("steps", 1, "Number of migrations to roll back")
	return cmd
}

func migrateCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			runner, db, err := openRunner(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			version, err := runner.Current(cmd.Context())
			if err != nil {
				return err
			}
			if version == 0 {
				fmt.Println("No migrations applied")
				return nil
			}
			fmt.Printf("Schema version %d\n", version)
			return nil
		},
	}
}

func migrateHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List applied migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			runner, db, err := openRunner(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			history, err := runner.History(cmd.Context())
			if err != nil {
				return err
			}
			if len(history) == 0 {
				fmt.Println("No migrations applied")
				return nil
			}
			for _, m := range history {
				fmt.Printf("%4d  %-30s  %s\n", m.Version, m.Name, m.AppliedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}
