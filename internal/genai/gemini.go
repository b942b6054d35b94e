// This file contains the Gemini implementation of the narrator.
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// geminiNarrator rewrites rule-based answers via the Gemini API.
// It implements the Narrator interface.
type geminiNarrator struct {
	client *genai.Client
	model  string
}

// newGeminiNarrator creates a new Gemini-based narrator.
// Returns nil if apiKey is empty (narration disabled).
func newGeminiNarrator(ctx context.Context, apiKey, model string) (*geminiNarrator, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: feature disabled when no API key
	}

	if model == "" {
		model = DefaultGeminiModels[0]
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiNarrator{
		client: client,
		model:  model,
	}, nil
}

// Narrate rewrites the rule-based answer as conversational prose.
func (n *geminiNarrator) Narrate(ctx context.Context, req NarrationRequest) (*Narration, error) {
	if n == nil || n.client == nil {
		return nil, fmt.Errorf("gemini narrator not initialized")
	}

	config := &genai.GenerateContentConfig{
		// Some temperature keeps the prose from sounding canned, but low
		// enough that the model sticks to the given facts.
		Temperature:       genai.Ptr[float32](0.6),
		MaxOutputTokens:   600,
		SystemInstruction: genai.NewContentFromText(NarratorSystemPrompt, genai.RoleUser),
	}

	prompt := NarrationPrompt(req)

	start := time.Now()
	resp, err := n.client.Models.GenerateContent(ctx, n.model, genai.Text(prompt), config)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "narration API call failed",
			"provider", "gemini",
			"model", n.model,
			"intent", req.Intent,
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return nil, fmt.Errorf("generate content failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty narration response")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}

	result := strings.TrimSpace(text.String())
	if result == "" {
		return nil, fmt.Errorf("empty narration response")
	}

	narration := &Narration{
		Text:     result,
		Provider: ProviderGemini,
		Model:    n.model,
	}

	if resp.UsageMetadata != nil {
		narration.PromptTokens = int64(resp.UsageMetadata.PromptTokenCount)
		narration.CompletionTokens = int64(resp.UsageMetadata.CandidatesTokenCount)
		slog.DebugContext(ctx, "narration completed",
			"provider", "gemini",
			"model", n.model,
			"input_tokens", resp.UsageMetadata.PromptTokenCount,
			"output_tokens", resp.UsageMetadata.CandidatesTokenCount,
			"duration_ms", duration.Milliseconds())
	}

	return narration, nil
}

// IsEnabled returns true if the narrator is initialized.
func (n *geminiNarrator) IsEnabled() bool {
	return n != nil && n.client != nil
}

// Provider returns the provider type for this narrator.
func (n *geminiNarrator) Provider() Provider {
	return ProviderGemini
}

// Close releases resources.
// Safe to call on nil receiver.
func (n *geminiNarrator) Close() error {
	if n == nil {
		return nil
	}
	// Note: genai.Client does not require explicit cleanup in current SDK version
	return nil
}
