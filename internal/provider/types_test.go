package provider

import "testing"

func TestCompletionRequest_HasImages(t *testing.T) {
	t.Parallel()

	textOnly := CompletionRequest{
		Messages: []Message{
			{Role: MessageRoleSystem, Content: "you are a meme analyst"},
			{Role: MessageRoleUser, Content: "describe doge"},
		},
	}
	if textOnly.HasImages() {
		t.Error("text-only request should not report images")
	}

	withImage := CompletionRequest{
		Messages: []Message{
			{Role: MessageRoleUser, Content: "analyze this", Images: []ImageInput{{URL: "https://example.com/m.jpg"}}},
		},
	}
	if !withImage.HasImages() {
		t.Error("request with image should report images")
	}

	empty := CompletionRequest{}
	if empty.HasImages() {
		t.Error("empty request should not report images")
	}
}
