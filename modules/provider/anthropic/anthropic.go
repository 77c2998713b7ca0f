// Package anthropic implements the provider.anthropic module, bridging azura
// to the Anthropic Messages API. Claude models accept image input, so this
// module typically serves the vision or fallback roles in the provider chain.
package anthropic

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	sdkanthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/azura-ai/azura/internal/core"
	"github.com/azura-ai/azura/internal/provider"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Anthropic{})
}

// Interface guards.
var (
	_ core.Module            = (*Anthropic)(nil)
	_ core.Configurable      = (*Anthropic)(nil)
	_ core.Provisioner       = (*Anthropic)(nil)
	_ core.Validator         = (*Anthropic)(nil)
	_ provider.Provider      = (*Anthropic)(nil)
	_ provider.HealthChecker = (*Anthropic)(nil)
)

// Anthropic is the provider.anthropic module. It implements provider.Provider
// and provider.HealthChecker using the Anthropic Messages API.
type Anthropic struct {
	config Config
	client *sdkanthropic.Client
	logger *slog.Logger
}

// ModuleInfo implements core.Module.
func (a *Anthropic) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "provider.anthropic",
		New: func() core.Module { return &Anthropic{} },
	}
}

// Configure implements core.Configurable.
func (a *Anthropic) Configure(node *yaml.Node) error {
	if err := node.Decode(&a.config); err != nil {
		return err
	}
	a.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (a *Anthropic) Provision(ctx *core.AppContext) error {
	a.config.defaults()
	a.logger = ctx.Logger

	// Resolve API key: config takes precedence over environment variable.
	apiKey := a.config.APIKey
	if apiKey == "" {
		if envKey, ok := os.LookupEnv("ANTHROPIC_API_KEY"); ok {
			apiKey = envKey
		}
	}

	// Build SDK client options.
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if a.config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(a.config.BaseURL))
	}
	// Disable SDK-level retries; the provider chain handles retries.
	opts = append(opts, option.WithMaxRetries(0))

	client := sdkanthropic.NewClient(opts...)
	a.client = &client

	entry := provider.ChainEntry{
		Name:     "anthropic",
		Provider: a,
		Role:     provider.Role(a.config.Role),
	}
	if apiKey != "" {
		auth, err := provider.NewAuthProfile(apiKey)
		if err != nil {
			return fmt.Errorf("provider.anthropic: auth profile: %w", err)
		}
		entry.Auth = auth
	}
	provider.RegisterEntry(ctx, entry)

	ctx.RegisterService("provider.anthropic", a)

	return nil
}

// Validate implements core.Validator.
func (a *Anthropic) Validate() error {
	if a.config.Model == "" {
		return errors.New("provider.anthropic: model must not be empty")
	}
	if a.client == nil {
		return errors.New("provider.anthropic: client not initialized (Provision not called)")
	}
	switch provider.Role(a.config.Role) {
	case "", provider.RolePrimary, provider.RoleVision, provider.RoleFallback:
	default:
		return fmt.Errorf("provider.anthropic: invalid role %q", a.config.Role)
	}
	return nil
}

// SupportsVision implements provider.Provider. All current Claude models
// accept image input.
func (a *Anthropic) SupportsVision() bool {
	return true
}

// ModelName implements provider.Provider.
func (a *Anthropic) ModelName() string {
	return a.config.Model
}
