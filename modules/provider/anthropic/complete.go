package anthropic

import (
	"context"
	"strings"

	"github.com/azura-ai/azura/internal/provider"
)

// Complete sends a synchronous completion request to the Anthropic Messages API.
func (a *Anthropic) Complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	params := convertRequest(req, &a.config, a.logger)

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return provider.CompletionResponse{}, mapError(err)
	}

	resp := convertResponse(msg)

	// The JSON prefill turn consumed the opening brace; restore it so the
	// content parses as a complete object.
	if req.JSONOnly && !strings.HasPrefix(strings.TrimSpace(resp.Content), jsonPrefill) {
		resp.Content = jsonPrefill + resp.Content
	}

	return resp, nil
}
