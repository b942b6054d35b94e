// This file contains the fallback wrapper for cross-provider failover.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/coursewise/advisor-go/internal/metrics"
)

// FallbackNarrator wraps an ordered chain of narrators.
// It implements three-layer fallback:
// 1. Per-narrator retry with backoff
// 2. Chain fallback (next model, then next provider)
// 3. Graceful degradation (error returned, caller keeps the rule narrative)
type FallbackNarrator struct {
	chain       []Narrator
	retryConfig RetryConfig
	metrics     *metrics.Metrics
}

// NewFallbackNarrator creates a fallback-enabled narrator over the chain.
// Metrics may be nil.
func NewFallbackNarrator(cfg RetryConfig, m *metrics.Metrics, chain ...Narrator) *FallbackNarrator {
	return &FallbackNarrator{
		chain:       chain,
		retryConfig: cfg,
		metrics:     m,
	}
}

// Narrate walks the chain until one narrator succeeds. Permanent errors on
// one narrator still advance to the next: a bad key for one provider must
// not take down the whole chain.
func (f *FallbackNarrator) Narrate(ctx context.Context, req NarrationRequest) (*Narration, error) {
	if f == nil || len(f.chain) == 0 {
		return nil, errors.New("narrator not configured")
	}

	var lastErr error
	for i, narrator := range f.chain {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		start := time.Now()
		result, err := f.narrateWithRetry(ctx, narrator, req)
		if err == nil {
			f.recordSuccess(narrator.Provider(), result)
			if i > 0 {
				slog.InfoContext(ctx, "narration succeeded on fallback",
					"provider", narrator.Provider(),
					"position", i,
					"duration", time.Since(start))
			}
			return result, nil
		}

		lastErr = err
		f.recordError(narrator.Provider(), err)
		slog.WarnContext(ctx, "narrator failed, trying next in chain",
			"provider", narrator.Provider(),
			"position", i,
			"action", ClassifyError(err),
			"error", err)
	}

	return nil, fmt.Errorf("all narrators failed: %w", lastErr)
}

// narrateWithRetry attempts narration with retry logic on one narrator.
func (f *FallbackNarrator) narrateWithRetry(ctx context.Context, narrator Narrator, req NarrationRequest) (*Narration, error) {
	var lastErr error

	for attempt := range f.retryConfig.MaxAttempts {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		result, err := narrator.Narrate(ctx, req)
		if err == nil {
			return result, nil
		}

		lastErr = err

		// Retry only transient errors; quota and permanent errors go
		// straight to the next narrator in the chain.
		if ClassifyError(err) != ActionRetry {
			return nil, err
		}

		if attempt == f.retryConfig.MaxAttempts-1 {
			break
		}

		backoff := CalculateBackoff(attempt+1, f.retryConfig.InitialDelay, f.retryConfig.MaxDelay)
		if !HasSufficientBudget(ctx, backoff) {
			return nil, fmt.Errorf("timeout during retry: %w", lastErr)
		}

		slog.DebugContext(ctx, "retrying narration",
			"provider", narrator.Provider(),
			"attempt", attempt+1,
			"backoff", backoff,
			"error", err)

		if err := Sleep(ctx, backoff); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

// IsEnabled returns true if at least one narrator in the chain is enabled.
func (f *FallbackNarrator) IsEnabled() bool {
	if f == nil {
		return false
	}
	for _, n := range f.chain {
		if n.IsEnabled() {
			return true
		}
	}
	return false
}

// Provider returns the primary provider type.
func (f *FallbackNarrator) Provider() Provider {
	if f == nil || len(f.chain) == 0 {
		return ""
	}
	return f.chain[0].Provider()
}

// Close closes every narrator in the chain.
func (f *FallbackNarrator) Close() error {
	if f == nil {
		return nil
	}

	var errs []error
	for _, n := range f.chain {
		if err := n.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func (f *FallbackNarrator) recordSuccess(provider Provider, n *Narration) {
	if f.metrics == nil {
		return
	}
	f.metrics.RecordNarratorRequest(string(provider), "success")
	if n != nil {
		f.metrics.AddNarratorTokens(string(provider), n.PromptTokens, n.CompletionTokens)
	}
}

func (f *FallbackNarrator) recordError(provider Provider, err error) {
	if f.metrics == nil {
		return
	}
	f.metrics.RecordNarratorRequest(string(provider), classifyErrorType(err))
}

// classifyErrorType maps error to a metric status label.
func classifyErrorType(err error) string {
	if err == nil {
		return "success"
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}

	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		switch {
		case llmErr.StatusCode == http.StatusTooManyRequests:
			return "rate_limit"
		case llmErr.StatusCode >= 500:
			return "server_error"
		case llmErr.StatusCode == http.StatusUnauthorized || llmErr.StatusCode == http.StatusForbidden:
			return "auth_error"
		case llmErr.StatusCode == http.StatusBadRequest:
			return "invalid_request"
		}
	}

	switch ClassifyError(err) {
	case ActionFallback:
		return "quota_exhausted"
	case ActionRetry:
		return "transient_error"
	default:
		return "error"
	}
}
