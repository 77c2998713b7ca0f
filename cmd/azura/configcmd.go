package main

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"github.com/azura-ai/azura/internal/config"
	"github.com/azura-ai/azura/internal/core"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(configCheckCmd(), configInitCmd())
	return cmd
}

func configCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <path>",
		Short: "Validate configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelWarn,
			}))
			appCtx := core.NewAppContext(logger, os.TempDir())
			appCtx = appCtx.WithModuleConfigs(cfg.Modules)

			app := core.NewApp(appCtx)
			ids := config.Resolve(cfg)
			if err := app.LoadModules(ids); err != nil {
				return err
			}
			defer app.Stop()

			fmt.Printf("Configuration OK (%d modules)\n", len(ids))
			for _, id := range ids {
				fmt.Printf("  %s\n", id)
			}
			return nil
		},
	}
}

// telegramTokenPattern mirrors the channel module's token validation.
var telegramTokenPattern = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)

func configInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Interactively generate a configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "azura.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			force, _ := cmd.Flags().GetBool("force")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			answers, err := runInitWizard()
			if err != nil {
				return err
			}

			data, err := renderConfig(answers)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}

			fmt.Printf("Wrote %s. Review it, export your secrets, then run: azura start -c %s\n", path, path)
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "Overwrite an existing file")
	return cmd
}

// initAnswers collects the wizard results.
type initAnswers struct {
	telegramToken string
	provider      string
	apiKey        string
	scrapers      []string
	gateway       bool
	gatewayBind   string
}

func runInitWizard() (initAnswers, error) {
	a := initAnswers{
		provider:    "anthropic",
		scrapers:    []string{"reddit"},
		gatewayBind: "127.0.0.1:8080",
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Telegram bot token").
				Description("From @BotFather. Leave empty to write a ${TELEGRAM_BOT_TOKEN} placeholder.").
				EchoMode(huh.EchoModePassword).
				Validate(func(s string) error {
					if s != "" && !telegramTokenPattern.MatchString(s) {
						return fmt.Errorf("token must look like 123456:ABC-DEF")
					}
					return nil
				}).
				Value(&a.telegramToken),
			huh.NewSelect[string]().
				Title("Model provider for meme insight").
				Options(
					huh.NewOption("Anthropic", "anthropic"),
					huh.NewOption("OpenAI", "openai"),
					huh.NewOption("None (lexical analysis only)", "none"),
				).
				Value(&a.provider),
			huh.NewMultiSelect[string]().
				Title("Scrapers to enable").
				Options(
					huh.NewOption("Reddit", "reddit").Selected(true),
					huh.NewOption("Twitter", "twitter"),
					huh.NewOption("RSS feeds", "rss"),
				).
				Value(&a.scrapers),
			huh.NewConfirm().
				Title("Enable the HTTP gateway?").
				Description("Health, metrics, webhooks, and the admin API.").
				Value(&a.gateway),
		),
	)
	if err := form.Run(); err != nil {
		return a, err
	}

	if a.provider != "none" {
		keyForm := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("%s API key", a.provider)).
				Description("Leave empty to write an environment placeholder.").
				EchoMode(huh.EchoModePassword).
				Value(&a.apiKey),
		))
		if err := keyForm.Run(); err != nil {
			return a, err
		}
	}
	if a.gateway {
		bindForm := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Gateway bind address").
				Value(&a.gatewayBind),
		))
		if err := bindForm.Run(); err != nil {
			return a, err
		}
	}

	return a, nil
}

// renderConfig turns wizard answers into a YAML config document.
func renderConfig(a initAnswers) ([]byte, error) {
	modules := map[string]any{
		"store.sql": map[string]any{},
		"cron.jobs": map[string]any{},
	}

	token := a.telegramToken
	if token == "" {
		token = "${TELEGRAM_BOT_TOKEN}"
	}
	modules["channel.telegram"] = map[string]any{"token": token}

	switch a.provider {
	case "anthropic":
		key := a.apiKey
		if key == "" {
			key = "${ANTHROPIC_API_KEY}"
		}
		modules["provider.anthropic"] = map[string]any{"api_key": key}
	case "openai":
		key := a.apiKey
		if key == "" {
			key = "${OPENAI_API_KEY}"
		}
		modules["provider.openai"] = map[string]any{"api_key": key}
	}

	for _, s := range a.scrapers {
		switch s {
		case "reddit":
			modules["scraper.reddit"] = map[string]any{}
		case "twitter":
			modules["scraper.twitter"] = map[string]any{
				"bearer_token": "${TWITTER_BEARER_TOKEN}",
				"hashtags":     []string{"#memecoin", "#dogecoin"},
			}
		case "rss":
			modules["scraper.rss"] = map[string]any{
				"feeds": []string{"https://cointelegraph.com/rss"},
			}
		}
	}

	if a.gateway {
		modules["gateway.http"] = map[string]any{"bind": a.gatewayBind}
	}

	doc := map[string]any{
		"version": "1",
		"modules": modules,
	}
	return yaml.Marshal(doc)
}
