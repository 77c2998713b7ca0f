package main

import (
	"log/slog"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"ERROR": slog.LevelError,
	}
	for in, want := range cases {
		got, err := parseLogLevel(in)
		if err != nil {
			t.Errorf("parseLogLevel(%q) error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := parseLogLevel("verbose"); err == nil {
		t.Error("parseLogLevel should reject unknown levels")
	}
}

func TestRenderConfig(t *testing.T) {
	t.Parallel()

	data, err := renderConfig(initAnswers{
		telegramToken: "",
		provider:      "anthropic",
		scrapers:      []string{"reddit", "rss"},
		gateway:       true,
		gatewayBind:   "127.0.0.1:9999",
	})
	if err != nil {
		t.Fatalf("renderConfig() error: %v", err)
	}

	var doc struct {
		Version string                    `yaml:"version"`
		Modules map[string]map[string]any `yaml:"modules"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("generated config is not valid YAML: %v", err)
	}

	if doc.Version != "1" {
		t.Errorf("version = %q, want 1", doc.Version)
	}
	for _, id := range []string{"store.sql", "cron.jobs", "channel.telegram", "provider.anthropic", "scraper.reddit", "scraper.rss", "gateway.http"} {
		if _, ok := doc.Modules[id]; !ok {
			t.Errorf("generated config is missing module %s", id)
		}
	}
	if tok := doc.Modules["channel.telegram"]["token"]; tok != "${TELEGRAM_BOT_TOKEN}" {
		t.Errorf("token placeholder = %v", tok)
	}
	if !strings.Contains(string(data), "127.0.0.1:9999") {
		t.Error("gateway bind missing from generated config")
	}
}

func TestRootCmdHasSubcommands(t *testing.T) {
	t.Parallel()

	root := rootCmd()
	for _, name := range []string{"start", "version", "config", "migrate", "service", "mcp"} {
		found := false
		for _, c := range root.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command is missing subcommand %q", name)
		}
	}
}
