// Package providertest provides test helpers for the provider package.
package providertest

import (
	"context"
	"sync"

	"github.com/azura-ai/azura/internal/provider"
)

// MockProvider is a configurable test double for provider.Provider.
// Set the Func fields to control behavior. Unset funcs panic on call.
// All methods are safe for concurrent use.
type MockProvider struct {
	CompleteFunc    func(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error)
	HealthCheckFunc func(ctx context.Context) error
	Vision          bool
	Model           string

	mu            sync.Mutex
	CompleteCalls int
	HealthCalls   int
}

// Complete delegates to CompleteFunc and tracks call count.
func (m *MockProvider) Complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	m.mu.Lock()
	m.CompleteCalls++
	m.mu.Unlock()
	return m.CompleteFunc(ctx, req)
}

// SupportsVision returns the configured Vision flag.
func (m *MockProvider) SupportsVision() bool {
	return m.Vision
}

// ModelName returns the configured Model, or "mock" if unset.
func (m *MockProvider) ModelName() string {
	if m.Model == "" {
		return "mock"
	}
	return m.Model
}

// HealthCheck delegates to HealthCheckFunc and tracks call count.
func (m *MockProvider) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	m.HealthCalls++
	m.mu.Unlock()
	return m.HealthCheckFunc(ctx)
}

// Calls returns the number of Complete calls so far.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CompleteCalls
}

// Interface guards.
var (
	_ provider.Provider      = (*MockProvider)(nil)
	_ provider.HealthChecker = (*MockProvider)(nil)
)
