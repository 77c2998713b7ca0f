package anthropic

import (
	"log/slog"

	sdkanthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/azura-ai/azura/internal/provider"
)

// jsonPrefill is the assistant turn appended when a request asks for JSON
// output. The Messages API has no response-format parameter; prefilling the
// opening brace forces the model to continue the object.
const jsonPrefill = "{"

// convertRequest transforms a CompletionRequest into Anthropic SDK parameters.
// System messages are extracted from the message list into the dedicated
// System field. When req.JSONOnly is set an assistant prefill turn is
// appended; the caller must re-attach the opening brace to the response.
func convertRequest(req provider.CompletionRequest, cfg *Config, logger *slog.Logger) sdkanthropic.MessageNewParams {
	system, messages := splitSystemMessages(req.Messages)

	params := sdkanthropic.MessageNewParams{
		Model:    sdkanthropic.Model(cfg.Model),
		Messages: convertMessages(messages, logger),
		System:   system,
	}

	// MaxTokens: request-level override takes precedence over config default.
	params.MaxTokens = int64(cfg.MaxTokens)
	if req.MaxTokens > 0 {
		params.MaxTokens = int64(req.MaxTokens)
	}

	if req.Temperature != nil {
		params.Temperature = sdkanthropic.Float(*req.Temperature)
	}

	if req.JSONOnly {
		params.Messages = append(params.Messages, sdkanthropic.NewAssistantMessage(
			sdkanthropic.NewTextBlock(jsonPrefill),
		))
	}

	return params
}

// splitSystemMessages extracts leading system messages into Anthropic's System
// parameter format and returns the remaining messages.
func splitSystemMessages(msgs []provider.Message) ([]sdkanthropic.TextBlockParam, []provider.Message) {
	var system []sdkanthropic.TextBlockParam
	var idx int
	for idx = 0; idx < len(msgs); idx++ {
		if msgs[idx].Role != provider.MessageRoleSystem {
			break
		}
		system = append(system, sdkanthropic.TextBlockParam{
			Text: msgs[idx].Content,
		})
	}
	return system, msgs[idx:]
}

// convertMessages transforms messages into Anthropic SDK message params.
// User messages carrying images become multi-block messages with image
// blocks ahead of the text. Non-leading system messages are logged and
// dropped since the API only accepts system text as a separate parameter.
func convertMessages(msgs []provider.Message, logger *slog.Logger) []sdkanthropic.MessageParam {
	var result []sdkanthropic.MessageParam

	for i, msg := range msgs {
		switch msg.Role {
		case provider.MessageRoleAssistant:
			result = append(result, sdkanthropic.NewAssistantMessage(
				sdkanthropic.NewTextBlock(msg.Content),
			))

		case provider.MessageRoleUser:
			result = append(result, convertUserMessage(msg))

		case provider.MessageRoleSystem:
			if logger != nil {
				logger.Warn("dropping non-leading system message; Anthropic API only supports system messages at the start",
					"index", i,
				)
			}
		}
	}

	return result
}

// convertUserMessage converts a user message, placing image blocks before
// the text block as the API documentation recommends.
func convertUserMessage(msg provider.Message) sdkanthropic.MessageParam {
	if len(msg.Images) == 0 {
		return sdkanthropic.NewUserMessage(sdkanthropic.NewTextBlock(msg.Content))
	}

	blocks := make([]sdkanthropic.ContentBlockParamUnion, 0, len(msg.Images)+1)
	for _, img := range msg.Images {
		blocks = append(blocks, convertImage(img))
	}
	if msg.Content != "" {
		blocks = append(blocks, sdkanthropic.NewTextBlock(msg.Content))
	}

	return sdkanthropic.NewUserMessage(blocks...)
}

// convertImage builds an image block from either a URL or inline base64 data.
func convertImage(img provider.ImageInput) sdkanthropic.ContentBlockParamUnion {
	if img.URL != "" {
		return sdkanthropic.NewImageBlock(sdkanthropic.URLImageSourceParam{
			URL: img.URL,
		})
	}

	mediaType := img.MediaType
	if mediaType == "" {
		mediaType = "image/jpeg"
	}
	return sdkanthropic.NewImageBlockBase64(mediaType, img.Data)
}

// convertResponse transforms an Anthropic SDK Message into a CompletionResponse.
func convertResponse(msg *sdkanthropic.Message) provider.CompletionResponse {
	var content string

	for _, block := range msg.Content {
		if v, ok := block.AsAny().(sdkanthropic.TextBlock); ok {
			if content != "" {
				content += "\n"
			}
			content += v.Text
		}
	}

	return provider.CompletionResponse{
		Content:      content,
		FinishReason: convertStopReason(msg.StopReason),
		Usage: provider.TokenUsage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}
}

// convertStopReason maps an Anthropic stop reason to a FinishReason.
func convertStopReason(reason sdkanthropic.StopReason) provider.FinishReason {
	switch reason {
	case sdkanthropic.StopReasonEndTurn, sdkanthropic.StopReasonStopSequence:
		return provider.FinishReasonStop
	case sdkanthropic.StopReasonMaxTokens:
		return provider.FinishReasonLength
	case sdkanthropic.StopReasonRefusal:
		return provider.FinishReasonFiltering
	default:
		return provider.FinishReasonStop
	}
}
