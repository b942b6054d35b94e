// This file contains factory functions for creating the narrator chain.
package genai

import (
	"context"
	"log/slog"
	"time"

	"github.com/coursewise/advisor-go/internal/metrics"
)

// CreateNarrator builds the full narrator stack from configuration:
// one narrator per configured provider model, chained for fallback, then
// wrapped with the TTL response cache.
//
// Provider selection logic:
//  1. Providers are tried in cfg.Providers order.
//  2. Within a provider, models are tried in its Models order.
//  3. Each narrator gets retry logic (configured in RetryConfig).
//  4. Returns (nil, nil) if no providers are configured; the advisor then
//     keeps its rule-based narratives.
func CreateNarrator(ctx context.Context, cfg LLMConfig, cacheTTL time.Duration, m *metrics.Metrics) (Narrator, error) {
	var chain []Narrator

	addNarrators := func(provider Provider) {
		pc := cfg.GetProviderConfig(provider)
		if pc == nil || pc.APIKey == "" {
			return
		}

		models := pc.Models
		if len(models) == 0 {
			models = defaultModels(provider)
		}

		for _, model := range models {
			var (
				n   Narrator
				err error
			)
			if provider == ProviderGemini {
				n, err = newGeminiNarrator(ctx, pc.APIKey, model)
			} else {
				n, err = newOpenAINarrator(ctx, provider, pc.APIKey, model)
			}
			if err != nil {
				slog.WarnContext(ctx, "failed to create narrator",
					"provider", provider, "model", model, "error", err)
				continue
			}
			chain = append(chain, n)
		}
	}

	providers := cfg.Providers
	if len(providers) == 0 {
		providers = DefaultProviders
	}
	for _, p := range providers {
		addNarrators(p)
	}

	if len(chain) == 0 {
		slog.InfoContext(ctx, "no LLM provider configured, narration disabled")
		return nil, nil
	}

	slog.InfoContext(ctx, "narrator configured",
		"primary", chain[0].Provider(),
		"chainSize", len(chain))

	retryCfg := cfg.RetryConfig
	if retryCfg.MaxAttempts == 0 {
		retryCfg = DefaultRetryConfig()
	}

	fallback := NewFallbackNarrator(retryCfg, m, chain...)
	return NewCachingNarrator(fallback, cacheTTL, m), nil
}

// defaultModels returns the default model chain for a provider.
func defaultModels(p Provider) []string {
	switch p {
	case ProviderGemini:
		return DefaultGeminiModels
	case ProviderGroq:
		return DefaultGroqModels
	case ProviderCerebras:
		return DefaultCerebrasModels
	default:
		return nil
	}
}
