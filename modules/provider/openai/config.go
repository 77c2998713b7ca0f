package openai

import (
	"fmt"
	"time"

	"github.com/azura-ai/azura/internal/provider"
)

// Config holds the configuration for the OpenAI provider module.
type Config struct {
	APIKey      string   `yaml:"api_key"`
	Model       string   `yaml:"model"`
	BaseURL     string   `yaml:"base_url"`
	MaxTokens   int      `yaml:"max_tokens"`
	Temperature *float64 `yaml:"temperature"`
	Timeout     string   `yaml:"timeout"`

	// Role places this provider in the failover chain:
	// "primary", "vision", or "fallback".
	Role string `yaml:"role"`

	// Vision overrides the model capability map for models not listed there.
	Vision *bool `yaml:"vision"`
}

// defaults fills zero-valued fields with sensible defaults.
func (c *Config) defaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.Role == "" {
		c.Role = string(provider.RolePrimary)
	}
}

// validRoles are the chain roles a provider module may be configured with.
var validRoles = map[string]bool{
	string(provider.RolePrimary):  true,
	string(provider.RoleVision):   true,
	string(provider.RoleFallback): true,
}

// parsedTimeout returns the timeout as a time.Duration.
// Assumes the value has been validated by validateTimeout.
func (c *Config) parsedTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// validateTimeout checks that the timeout string is a valid Go duration.
func (c *Config) validateTimeout() error {
	_, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("provider.openai: invalid timeout %q: %w", c.Timeout, err)
	}
	return nil
}

// knownVisionModels marks models that accept image input. Used when
// vision is not explicitly set in config.
var knownVisionModels = map[string]bool{
	"gpt-4-turbo":  true,
	"gpt-4o":       true,
	"gpt-4o-mini":  true,
	"gpt-4.1":      true,
	"gpt-4.1-mini": true,
	"gpt-4.1-nano": true,
	"o1":           true,
	"o3":           true,
	"o4-mini":      true,
}
