// Package app provides the shared entry point for the azura binary.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/azura-ai/azura/internal/config"
	"github.com/azura-ai/azura/internal/core"
	"github.com/azura-ai/azura/internal/security"
)

// RunParams configures the main application loop.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, ResolveConfigPath is called automatically.
	ConfigPath string

	// DataDir overrides the default persistent data directory.
	DataDir string

	// LogLevel sets the minimum log level. Defaults to slog.LevelInfo.
	LogLevel slog.Level
}

// Run loads configuration, starts all modules, and blocks until a
// shutdown signal is received.
func Run(params RunParams) error {
	cfgPath := params.ConfigPath
	if cfgPath == "" {
		resolved, err := ResolveConfigPath()
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

	// Credential store and redactor come first so nothing logs a secret.
	credStore := security.NewCredentialStore()
	redactor := security.NewRedactor()

	innerHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: params.LogLevel,
	})
	logger := slog.New(security.NewRedactingHandler(innerHandler, redactor))

	var rlCfg security.RateLimitConfig
	if cfg.Security != nil {
		rlCfg = cfg.Security.RateLimits
	}
	rateLimiter := security.NewRateLimiter(rlCfg)

	dataDir := params.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return fmt.Errorf("app: creating data dir %s: %w", dataDir, err)
	}

	appCtx := core.NewAppContext(logger, dataDir)
	appCtx = appCtx.WithModuleConfigs(cfg.Modules)

	// Register security services for cross-module discovery.
	appCtx.RegisterService("security.credentials", credStore)
	appCtx.RegisterService("security.redactor", redactor)
	appCtx.RegisterService("security.ratelimiter", rateLimiter)

	// Register the config path so modules can discover it.
	appCtx.RegisterService("config.path", cfgPath)

	application := core.NewApp(appCtx)
	ids := config.Resolve(cfg)
	if err := application.LoadModules(ids); err != nil {
		return err
	}

	// Wire the router between LoadModules and Start: build the bot over
	// the shared store, hand every channel an inbox, and append the
	// router to the app lifecycle.
	if err := wireBot(application, appCtx, logger, rateLimiter); err != nil {
		return err
	}

	if err := application.Start(); err != nil {
		return err
	}

	// Modules register API keys and bot tokens during Provision and
	// Start; fold them into the redactor so logs stay clean.
	redactor.SyncCredentials(credStore)

	return application.Wait()
}

// ResolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/azura/azura.yaml → ~/.config/azura/azura.yaml → ./azura.yaml
func ResolveConfigPath() (string, error) {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "azura", "azura.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "azura", "azura.yaml"))
	}

	candidates = append(candidates, "azura.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no configuration file found (searched: %v)", candidates)
}

// DefaultDataDir returns the default persistent data directory.
// Uses $XDG_DATA_HOME/azura if set, otherwise ~/.local/share/azura per the XDG spec.
func DefaultDataDir() string {
	if dir, ok := os.LookupEnv("XDG_DATA_HOME"); ok {
		return filepath.Join(dir, "azura")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "azura")
}
