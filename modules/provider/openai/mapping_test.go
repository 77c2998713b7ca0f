package openai

import (
	"strings"
	"testing"

	"github.com/azura-ai/azura/internal/provider"
)

func TestToMessagesPlainText(t *testing.T) {
	t.Parallel()

	msgs := toMessages([]provider.Message{
		{Role: provider.MessageRoleSystem, Content: "you are a meme analyst"},
		{Role: provider.MessageRoleUser, Content: "analyze this"},
	})

	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if msgs[0].Role != "system" {
		t.Errorf("role = %q", msgs[0].Role)
	}
	if s, ok := msgs[1].Content.(string); !ok || s != "analyze this" {
		t.Errorf("content = %v, want plain string", msgs[1].Content)
	}
}

func TestToMessagesWithImage(t *testing.T) {
	t.Parallel()

	msgs := toMessages([]provider.Message{
		{
			Role:    provider.MessageRoleUser,
			Content: "what is this",
			Images:  []provider.ImageInput{{URL: "https://example.com/a.png"}},
		},
	})

	parts, ok := msgs[0].Content.([]contentPart)
	if !ok {
		t.Fatalf("content = %T, want part list", msgs[0].Content)
	}
	if len(parts) != 2 {
		t.Fatalf("parts = %d, want 2", len(parts))
	}
	if parts[1].ImageURL.URL != "https://example.com/a.png" {
		t.Errorf("image url = %q", parts[1].ImageURL.URL)
	}
}

func TestToMessagesImageOnly(t *testing.T) {
	t.Parallel()

	msgs := toMessages([]provider.Message{
		{
			Role:   provider.MessageRoleUser,
			Images: []provider.ImageInput{{URL: "https://example.com/a.png"}},
		},
	})

	parts := msgs[0].Content.([]contentPart)
	if len(parts) != 1 {
		t.Fatalf("parts = %d, want image only (no empty text part)", len(parts))
	}
	if parts[0].Type != "image_url" {
		t.Errorf("type = %q", parts[0].Type)
	}
}

func TestImageRefInlineData(t *testing.T) {
	t.Parallel()

	ref := imageRef(provider.ImageInput{Data: "aGVsbG8=", MediaType: "image/png"})
	if ref != "data:image/png;base64,aGVsbG8=" {
		t.Errorf("ref = %q", ref)
	}

	// Missing media type falls back to jpeg.
	ref = imageRef(provider.ImageInput{Data: "aGVsbG8="})
	if !strings.HasPrefix(ref, "data:image/jpeg;base64,") {
		t.Errorf("ref = %q, want jpeg fallback", ref)
	}

	// URL wins over inline data.
	ref = imageRef(provider.ImageInput{URL: "https://x/y.png", Data: "aGVsbG8="})
	if ref != "https://x/y.png" {
		t.Errorf("ref = %q", ref)
	}
}

func TestMapFinishReason(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   *string
		want provider.FinishReason
	}{
		{nil, ""},
		{strPtr("stop"), provider.FinishReasonStop},
		{strPtr("length"), provider.FinishReasonLength},
		{strPtr("content_filter"), provider.FinishReasonFiltering},
		{strPtr("weird"), provider.FinishReason("weird")},
	}

	for _, tt := range tests {
		if got := mapFinishReason(tt.in); got != tt.want {
			t.Errorf("mapFinishReason(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFromResponseEmptyChoices(t *testing.T) {
	t.Parallel()

	cr := fromResponse(&chatResponse{Usage: chatUsage{TotalTokens: 3}})
	if cr.Content != "" {
		t.Errorf("content = %q, want empty", cr.Content)
	}
	if cr.Usage.TotalTokens != 3 {
		t.Errorf("usage = %d", cr.Usage.TotalTokens)
	}
}

func strPtr(s string) *string { return &s }
