package openai

import (
	"github.com/azura-ai/azura/internal/provider"
)

// --- OpenAI API request/response types (unexported, serialization only) ---

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    *float64        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatMessage carries either a plain string or a multimodal part list in
// Content, matching the API's polymorphic content field.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *imageURLPart `json:"image_url,omitempty"`
}

type imageURLPart struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Message      responseMessage `json:"message"`
	FinishReason *string         `json:"finish_reason"`
}

type responseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// --- Converter functions ---

// toMessages converts provider messages to OpenAI API messages. Messages
// without images keep a plain string content; messages with images become
// a part list of text plus image_url entries.
func toMessages(msgs []provider.Message) []chatMessage {
	out := make([]chatMessage, len(msgs))
	for i, m := range msgs {
		if len(m.Images) == 0 {
			out[i] = chatMessage{Role: string(m.Role), Content: m.Content}
			continue
		}

		parts := make([]contentPart, 0, len(m.Images)+1)
		if m.Content != "" {
			parts = append(parts, contentPart{Type: "text", Text: m.Content})
		}
		for _, img := range m.Images {
			parts = append(parts, contentPart{
				Type:     "image_url",
				ImageURL: &imageURLPart{URL: imageRef(img)},
			})
		}
		out[i] = chatMessage{Role: string(m.Role), Content: parts}
	}
	return out
}

// imageRef returns the URL form of an image input. Inline data is encoded
// as a data: URL the API accepts in place of a fetchable URL.
func imageRef(img provider.ImageInput) string {
	if img.URL != "" {
		return img.URL
	}
	mediaType := img.MediaType
	if mediaType == "" {
		mediaType = "image/jpeg"
	}
	return "data:" + mediaType + ";base64," + img.Data
}

// fromResponse converts an OpenAI API response to a provider CompletionResponse.
func fromResponse(resp *chatResponse) provider.CompletionResponse {
	var cr provider.CompletionResponse
	if len(resp.Choices) > 0 {
		choice := resp.Choices[0]
		cr.Content = choice.Message.Content
		cr.FinishReason = mapFinishReason(choice.FinishReason)
	}
	cr.Usage = provider.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	return cr
}

// mapFinishReason converts an OpenAI finish_reason string to a provider FinishReason.
func mapFinishReason(reason *string) provider.FinishReason {
	if reason == nil {
		return ""
	}
	switch *reason {
	case "stop":
		return provider.FinishReasonStop
	case "length":
		return provider.FinishReasonLength
	case "content_filter":
		return provider.FinishReasonFiltering
	default:
		return provider.FinishReason(*reason)
	}
}
