package provider

import "context"

// Provider is the interface for communicating with an LLM.
// Concrete implementations live in separate packages (e.g., provider.openai)
// and typically also implement core.Module for lifecycle management.
type Provider interface {
	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)

	// SupportsVision reports whether the provider accepts image inputs.
	SupportsVision() bool

	// ModelName returns the identifier of the underlying model.
	ModelName() string
}

// HealthChecker is an optional interface that providers may implement
// to support active health probing. When a provider is in cooldown,
// the health tracker will call HealthCheck periodically to determine
// if the provider has recovered.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
