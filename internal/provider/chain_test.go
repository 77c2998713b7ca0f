package provider_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/azura-ai/azura/internal/provider"
	"github.com/azura-ai/azura/internal/provider/providertest"
)

func okProvider(content string) *providertest.MockProvider {
	return &providertest.MockProvider{
		CompleteFunc: func(_ context.Context, _ provider.CompletionRequest) (provider.CompletionResponse, error) {
			return provider.CompletionResponse{Content: content, FinishReason: provider.FinishReasonStop}, nil
		},
	}
}

func failProvider(err error) *providertest.MockProvider {
	return &providertest.MockProvider{
		CompleteFunc: func(_ context.Context, _ provider.CompletionRequest) (provider.CompletionResponse, error) {
			return provider.CompletionResponse{}, err
		},
	}
}

func TestChain_CompletePrimary(t *testing.T) {
	t.Parallel()

	primary := okProvider("from primary")
	chain, err := provider.NewChain([]provider.ChainEntry{
		{Name: "p1", Provider: primary, Role: provider.RolePrimary},
	})
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}

	resp, err := chain.Complete(context.Background(), provider.RolePrimary, provider.CompletionRequest{})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "from primary" {
		t.Errorf("content = %q, want %q", resp.Content, "from primary")
	}
}

func TestChain_FailoverToFallback(t *testing.T) {
	t.Parallel()

	primary := failProvider(fmt.Errorf("api: %w", provider.ErrProviderDown))
	fallback := okProvider("from fallback")

	chain, err := provider.NewChain([]provider.ChainEntry{
		{Name: "p1", Provider: primary, Role: provider.RolePrimary},
		{Name: "fb", Provider: fallback, Role: provider.RoleFallback},
	})
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}

	resp, err := chain.Complete(context.Background(), provider.RolePrimary, provider.CompletionRequest{})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "from fallback" {
		t.Errorf("content = %q, want %q", resp.Content, "from fallback")
	}
	if primary.Calls() != 1 {
		t.Errorf("primary calls = %d, want 1", primary.Calls())
	}
}

func TestChain_NonRetryableStopsFailover(t *testing.T) {
	t.Parallel()

	primary := failProvider(fmt.Errorf("api: %w", provider.ErrContextLength))
	fallback := okProvider("should not be reached")

	chain, err := provider.NewChain([]provider.ChainEntry{
		{Name: "p1", Provider: primary, Role: provider.RolePrimary},
		{Name: "fb", Provider: fallback, Role: provider.RoleFallback},
	})
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}

	_, err = chain.Complete(context.Background(), provider.RolePrimary, provider.CompletionRequest{})
	if !errors.Is(err, provider.ErrContextLength) {
		t.Fatalf("expected ErrContextLength, got %v", err)
	}
	if fallback.Calls() != 0 {
		t.Errorf("fallback calls = %d, want 0", fallback.Calls())
	}
}

func TestChain_AllProvidersExhausted(t *testing.T) {
	t.Parallel()

	chain, err := provider.NewChain([]provider.ChainEntry{
		{Name: "p1", Provider: failProvider(provider.ErrProviderDown), Role: provider.RolePrimary},
		{Name: "p2", Provider: failProvider(provider.ErrRateLimit), Role: provider.RoleFallback},
	})
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}

	_, err = chain.Complete(context.Background(), provider.RolePrimary, provider.CompletionRequest{})
	if !errors.Is(err, provider.ErrAllProviders) {
		t.Fatalf("expected ErrAllProviders, got %v", err)
	}
}

func TestChain_NoProviderForRole(t *testing.T) {
	t.Parallel()

	chain, err := provider.NewChain([]provider.ChainEntry{
		{Name: "p1", Provider: okProvider("x"), Role: provider.RolePrimary, FallbackFor: nil},
	})
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}

	_, err = chain.Complete(context.Background(), provider.RoleVision, provider.CompletionRequest{})
	if !errors.Is(err, provider.ErrNoProvider) {
		t.Fatalf("expected ErrNoProvider, got %v", err)
	}
}

func TestChain_VisionRequestSkipsTextOnlyProvider(t *testing.T) {
	t.Parallel()

	textOnly := okProvider("text only")
	visionCapable := okProvider("vision")
	visionCapable.Vision = true

	chain, err := provider.NewChain([]provider.ChainEntry{
		{Name: "text", Provider: textOnly, Role: provider.RoleVision},
		{Name: "vision", Provider: visionCapable, Role: provider.RoleFallback},
	})
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}

	req := provider.CompletionRequest{
		Messages: []provider.Message{
			{Role: provider.MessageRoleUser, Content: "what is this meme?", Images: []provider.ImageInput{{URL: "https://example.com/meme.jpg"}}},
		},
	}

	resp, err := chain.Complete(context.Background(), provider.RoleVision, req)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "vision" {
		t.Errorf("content = %q, want %q", resp.Content, "vision")
	}
	if textOnly.Calls() != 0 {
		t.Errorf("text-only provider should be skipped, got %d calls", textOnly.Calls())
	}
}

func TestChain_AuthRotationOnRateLimit(t *testing.T) {
	t.Parallel()

	auth, err := provider.NewAuthProfile("key-a", "key-b")
	if err != nil {
		t.Fatalf("NewAuthProfile: %v", err)
	}

	chain, err := provider.NewChain([]provider.ChainEntry{
		{Name: "p1", Provider: failProvider(provider.ErrRateLimit), Role: provider.RolePrimary, Auth: auth},
	})
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}

	_, _ = chain.Complete(context.Background(), provider.RolePrimary, provider.CompletionRequest{})

	if auth.CurrentIndex() != 1 {
		t.Errorf("auth index = %d, want 1 after rotation", auth.CurrentIndex())
	}
	if auth.CurrentKey() != "key-b" {
		t.Errorf("current key = %q, want %q", auth.CurrentKey(), "key-b")
	}
}

func TestChain_CancelledContext(t *testing.T) {
	t.Parallel()

	chain, err := provider.NewChain([]provider.ChainEntry{
		{Name: "p1", Provider: okProvider("x"), Role: provider.RolePrimary},
	})
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = chain.Complete(ctx, provider.RolePrimary, provider.CompletionRequest{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestChain_EmptyEntries(t *testing.T) {
	t.Parallel()

	_, err := provider.NewChain(nil)
	if !errors.Is(err, provider.ErrNoProvider) {
		t.Fatalf("expected ErrNoProvider, got %v", err)
	}
}

func TestChain_NilProviderEntry(t *testing.T) {
	t.Parallel()

	_, err := provider.NewChain([]provider.ChainEntry{
		{Name: "broken", Provider: nil, Role: provider.RolePrimary},
	})
	if !errors.Is(err, provider.ErrNoProvider) {
		t.Fatalf("expected ErrNoProvider, got %v", err)
	}
}

func TestAuthProfile_SingleKeyNoRotation(t *testing.T) {
	t.Parallel()

	auth, err := provider.NewAuthProfile("only-key")
	if err != nil {
		t.Fatalf("NewAuthProfile: %v", err)
	}
	if auth.Rotate() {
		t.Error("Rotate() should return false with a single key")
	}
	if auth.CurrentKey() != "only-key" {
		t.Errorf("current key = %q, want %q", auth.CurrentKey(), "only-key")
	}
}

func TestAuthProfile_NoKeys(t *testing.T) {
	t.Parallel()

	_, err := provider.NewAuthProfile()
	if !errors.Is(err, provider.ErrNoKeys) {
		t.Fatalf("expected ErrNoKeys, got %v", err)
	}
}
