package anthropic

import (
	"time"

	"github.com/azura-ai/azura/internal/provider"
)

// defaultModel is the model used when none is specified.
// Pinned to a dated release for reproducibility; update when a newer
// stable version is validated.
const defaultModel = "claude-sonnet-4-5-20250929"

// defaultTimeout bounds the initial connection phase of each request.
const defaultTimeout = 30 * time.Second

// Config holds the YAML-decoded configuration for the Anthropic provider.
type Config struct {
	APIKey    string        `yaml:"api_key"`
	Model     string        `yaml:"model"`
	BaseURL   string        `yaml:"base_url"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`

	// Role places this provider in the failover chain. Claude models all
	// accept images, so the default is the vision role.
	Role string `yaml:"role"`
}

// defaults fills in zero-value fields with sensible defaults.
func (c *Config) defaults() {
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 4096
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.Role == "" {
		c.Role = string(provider.RoleVision)
	}
}
