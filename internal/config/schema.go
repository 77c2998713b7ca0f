// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for azura.
package config

import (
	"github.com/azura-ai/azura/internal/security"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// Security tunes the app-wide security services. Optional; zero
	// values fall back to the built-in limits.
	Security *SecurityConfig `yaml:"security"`

	// Modules maps module IDs to their raw YAML configuration.
	// Keys must match registered module IDs (e.g. "channel.telegram").
	Modules map[string]yaml.Node `yaml:"modules"`
}

// SecurityConfig holds the rate limits applied across channels and jobs.
type SecurityConfig struct {
	RateLimits security.RateLimitConfig `yaml:"rate_limits"`
}
