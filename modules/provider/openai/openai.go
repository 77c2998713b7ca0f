// Package openai implements the provider.openai module over the OpenAI
// Chat Completions API, including multimodal (vision) requests and
// JSON-object response formatting.
package openai

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/azura-ai/azura/internal/core"
	"github.com/azura-ai/azura/internal/provider"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Provider{})
}

// Compile-time interface guards.
var (
	_ provider.Provider      = (*Provider)(nil)
	_ provider.HealthChecker = (*Provider)(nil)
	_ core.Module            = (*Provider)(nil)
	_ core.Configurable      = (*Provider)(nil)
	_ core.Provisioner       = (*Provider)(nil)
	_ core.Validator         = (*Provider)(nil)
)

// Provider implements the OpenAI Chat Completions API as an azura provider module.
type Provider struct {
	config Config
	logger *slog.Logger
	client *http.Client
	vision bool
}

// ModuleInfo implements core.Module.
func (p *Provider) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "provider.openai",
		New: func() core.Module { return &Provider{} },
	}
}

// Configure implements core.Configurable.
func (p *Provider) Configure(node *yaml.Node) error {
	if err := node.Decode(&p.config); err != nil {
		return err
	}
	p.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (p *Provider) Provision(ctx *core.AppContext) error {
	p.config.defaults()
	p.logger = ctx.Logger

	p.client = &http.Client{
		Timeout: p.config.parsedTimeout(),
	}

	// Resolve vision capability: explicit config > known model map > false.
	if p.config.Vision != nil {
		p.vision = *p.config.Vision
	} else {
		p.vision = knownVisionModels[p.config.Model]
	}

	entry := provider.ChainEntry{
		Name:     "openai",
		Provider: p,
		Role:     provider.Role(p.config.Role),
	}
	if p.config.APIKey != "" {
		auth, err := provider.NewAuthProfile(p.config.APIKey)
		if err != nil {
			return fmt.Errorf("provider.openai: auth profile: %w", err)
		}
		entry.Auth = auth
	}
	provider.RegisterEntry(ctx, entry)

	ctx.RegisterService("provider.openai", p)

	return nil
}

// Validate implements core.Validator.
func (p *Provider) Validate() error {
	if p.config.APIKey == "" {
		return errors.New("provider.openai: api_key is required")
	}
	if p.config.Model == "" {
		return errors.New("provider.openai: model is required")
	}
	if err := p.config.validateTimeout(); err != nil {
		return err
	}
	if p.config.Role != "" && !validRoles[p.config.Role] {
		return fmt.Errorf("provider.openai: invalid role %q", p.config.Role)
	}
	return nil
}

// SupportsVision implements provider.Provider.
func (p *Provider) SupportsVision() bool {
	return p.vision
}

// ModelName implements provider.Provider.
func (p *Provider) ModelName() string {
	return p.config.Model
}
