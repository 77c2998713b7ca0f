package provider

// Role describes the purpose a provider serves in the system.
type Role string

// Role constants for provider chain configuration.
const (
	// RolePrimary handles text analysis and report generation.
	RolePrimary Role = "primary"
	// RoleVision handles requests carrying images (meme analysis).
	// Providers registered under this role must support multimodal input.
	RoleVision Role = "vision"
	// RoleFallback providers take over when a role's direct providers fail.
	RoleFallback Role = "fallback"
)

// MessageRole identifies the sender of a message in a conversation.
type MessageRole string

// MessageRole constants for conversation messages.
const (
	MessageRoleSystem    MessageRole = "system"
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// FinishReason describes why the model stopped generating.
type FinishReason string

// FinishReason constants for model completion termination.
const (
	FinishReasonStop      FinishReason = "stop"
	FinishReasonLength    FinishReason = "length"
	FinishReasonFiltering FinishReason = "filtering"
)

// ImageInput is an image attached to a message, referenced by URL or
// carried inline as base64 data. Exactly one of URL or Data is set.
type ImageInput struct {
	URL string `json:"url,omitempty"`
	// Data is base64-encoded image bytes, used when the image was
	// downloaded locally (e.g. from a chat photo).
	Data string `json:"data,omitempty"`
	// MediaType is the MIME type for inline data (e.g. "image/jpeg").
	MediaType string `json:"media_type,omitempty"`
}

// Message represents a single message in a conversation.
// Images are only meaningful on user messages.
type Message struct {
	Role    MessageRole  `json:"role"`
	Content string       `json:"content"`
	Images  []ImageInput `json:"images,omitempty"`
}

// CompletionRequest is the input to a Provider.Complete call.
type CompletionRequest struct {
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	// JSONOnly requests that the model emit a single JSON object.
	// Providers map this to their native structured-output mechanism.
	JSONOnly bool `json:"json_only,omitempty"`
}

// HasImages reports whether any message in the request carries an image.
func (r CompletionRequest) HasImages() bool {
	for _, m := range r.Messages {
		if len(m.Images) > 0 {
			return true
		}
	}
	return false
}

// CompletionResponse is the output of a Provider.Complete call.
type CompletionResponse struct {
	Content      string       `json:"content"`
	FinishReason FinishReason `json:"finish_reason"`
	Usage        TokenUsage   `json:"usage"`
}

// TokenUsage tracks token consumption for a completion.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
