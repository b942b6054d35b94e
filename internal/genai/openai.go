// This file contains the unified OpenAI-compatible implementation of the
// narrator. It works with any OpenAI-compatible provider (Groq, Cerebras)
// via custom BaseURL.
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// openaiNarrator rewrites rule-based answers via an OpenAI-compatible API.
// It implements the Narrator interface.
type openaiNarrator struct {
	client   openai.Client
	model    string
	provider Provider
}

// newOpenAINarrator creates a new OpenAI-compatible narrator.
// Returns nil if apiKey is empty (narration disabled).
//
// Parameters:
//   - provider: The provider type (ProviderGroq, ProviderCerebras)
//   - apiKey: The API key for the provider
//   - model: The model name to use (uses provider defaults if empty)
func newOpenAINarrator(_ context.Context, provider Provider, apiKey, model string) (*openaiNarrator, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: feature disabled when no API key
	}

	baseURL, ok := ProviderEndpoint[provider]
	if !ok {
		return nil, fmt.Errorf("unsupported OpenAI-compatible provider: %s", provider)
	}

	if model == "" {
		switch provider {
		case ProviderGroq:
			model = DefaultGroqModels[0]
		case ProviderCerebras:
			model = DefaultCerebrasModels[0]
		default:
			return nil, fmt.Errorf("no default model for provider: %s", provider)
		}
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &openaiNarrator{
		client:   client,
		model:    model,
		provider: provider,
	}, nil
}

// Narrate rewrites the rule-based answer as conversational prose.
func (n *openaiNarrator) Narrate(ctx context.Context, req NarrationRequest) (*Narration, error) {
	if n == nil {
		return nil, fmt.Errorf("narrator not initialized")
	}

	params := openai.ChatCompletionNewParams{
		Model: n.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(NarratorSystemPrompt),
			openai.UserMessage(NarrationPrompt(req)),
		},
		Temperature: openai.Float(0.6),
		MaxTokens:   openai.Int(600),
	}

	start := time.Now()
	resp, err := n.client.Chat.Completions.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "narration API call failed",
			"provider", n.provider,
			"model", n.model,
			"intent", req.Intent,
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty narration response")
	}

	result := strings.TrimSpace(resp.Choices[0].Message.Content)
	if result == "" {
		return nil, fmt.Errorf("empty narration response")
	}

	narration := &Narration{
		Text:             result,
		Provider:         n.provider,
		Model:            n.model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}

	if resp.Usage.TotalTokens > 0 {
		slog.DebugContext(ctx, "narration completed",
			"provider", n.provider,
			"model", n.model,
			"input_tokens", resp.Usage.PromptTokens,
			"output_tokens", resp.Usage.CompletionTokens,
			"duration_ms", duration.Milliseconds())
	}

	return narration, nil
}

// IsEnabled returns true if the narrator is initialized.
func (n *openaiNarrator) IsEnabled() bool {
	return n != nil
}

// Provider returns the provider type for this narrator.
func (n *openaiNarrator) Provider() Provider {
	if n == nil {
		return ""
	}
	return n.provider
}

// Close releases resources.
// Safe to call on nil receiver.
func (n *openaiNarrator) Close() error {
	// openai-go client doesn't require cleanup
	return nil
}
