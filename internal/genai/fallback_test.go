package genai

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/coursewise/advisor-go/internal/metrics"
)

// stubNarrator is a scriptable Narrator for fallback tests.
type stubNarrator struct {
	provider Provider
	text     string
	errs     []error // errors returned per call until exhausted
	calls    atomic.Int32
}

func (s *stubNarrator) Narrate(_ context.Context, _ NarrationRequest) (*Narration, error) {
	n := int(s.calls.Add(1)) - 1
	if n < len(s.errs) && s.errs[n] != nil {
		return nil, s.errs[n]
	}
	return &Narration{
		Text:             s.text,
		Provider:         s.provider,
		PromptTokens:     10,
		CompletionTokens: 20,
	}, nil
}

func (s *stubNarrator) IsEnabled() bool    { return true }
func (s *stubNarrator) Close() error       { return nil }
func (s *stubNarrator) Provider() Provider { return s.provider }

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts:  2,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
	}
}

func testMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func TestFallbackNarrator_PrimarySuccess(t *testing.T) {
	primary := &stubNarrator{provider: ProviderGemini, text: "hello"}
	secondary := &stubNarrator{provider: ProviderGroq, text: "fallback"}
	f := NewFallbackNarrator(fastRetry(), testMetrics(), primary, secondary)

	result, err := f.Narrate(context.Background(), NarrationRequest{Query: "hi"})
	if err != nil {
		t.Fatalf("Narrate() error = %v", err)
	}
	if result.Text != "hello" {
		t.Errorf("Text = %q, want %q", result.Text, "hello")
	}
	if result.Provider != ProviderGemini {
		t.Errorf("Provider = %s, want gemini", result.Provider)
	}
	if secondary.calls.Load() != 0 {
		t.Error("fallback narrator should not be called on primary success")
	}
}

func TestFallbackNarrator_RetryThenSuccess(t *testing.T) {
	primary := &stubNarrator{
		provider: ProviderGemini,
		text:     "recovered",
		errs:     []error{errors.New("service unavailable")},
	}
	f := NewFallbackNarrator(fastRetry(), nil, primary)

	result, err := f.Narrate(context.Background(), NarrationRequest{Query: "hi"})
	if err != nil {
		t.Fatalf("Narrate() error = %v", err)
	}
	if result.Text != "recovered" {
		t.Errorf("Text = %q, want %q", result.Text, "recovered")
	}
	if primary.calls.Load() != 2 {
		t.Errorf("calls = %d, want 2 (one retry)", primary.calls.Load())
	}
}

func TestFallbackNarrator_ProviderFallback(t *testing.T) {
	// Quota errors skip retry and advance to the next provider
	primary := &stubNarrator{
		provider: ProviderGemini,
		errs:     []error{errors.New("quota exceeded"), errors.New("quota exceeded")},
	}
	secondary := &stubNarrator{provider: ProviderGroq, text: "from groq"}
	f := NewFallbackNarrator(fastRetry(), testMetrics(), primary, secondary)

	result, err := f.Narrate(context.Background(), NarrationRequest{Query: "hi"})
	if err != nil {
		t.Fatalf("Narrate() error = %v", err)
	}
	if result.Provider != ProviderGroq {
		t.Errorf("Provider = %s, want groq", result.Provider)
	}
	if primary.calls.Load() != 1 {
		t.Errorf("primary calls = %d, want 1 (quota errors are not retried)", primary.calls.Load())
	}
}

func TestFallbackNarrator_PermanentErrorAdvancesChain(t *testing.T) {
	primary := &stubNarrator{
		provider: ProviderGemini,
		errs:     []error{errors.New("invalid api key")},
	}
	secondary := &stubNarrator{provider: ProviderCerebras, text: "ok"}
	f := NewFallbackNarrator(fastRetry(), nil, primary, secondary)

	result, err := f.Narrate(context.Background(), NarrationRequest{Query: "hi"})
	if err != nil {
		t.Fatalf("Narrate() error = %v", err)
	}
	if result.Provider != ProviderCerebras {
		t.Errorf("Provider = %s, want cerebras", result.Provider)
	}
}

func TestFallbackNarrator_AllFail(t *testing.T) {
	bad := errors.New("service unavailable")
	primary := &stubNarrator{provider: ProviderGemini, errs: []error{bad, bad}}
	secondary := &stubNarrator{provider: ProviderGroq, errs: []error{bad, bad}}
	f := NewFallbackNarrator(fastRetry(), testMetrics(), primary, secondary)

	_, err := f.Narrate(context.Background(), NarrationRequest{Query: "hi"})
	if err == nil {
		t.Fatal("expected error when every narrator fails")
	}
}

func TestFallbackNarrator_EmptyChain(t *testing.T) {
	f := NewFallbackNarrator(fastRetry(), nil)

	if f.IsEnabled() {
		t.Error("empty chain should not be enabled")
	}
	if _, err := f.Narrate(context.Background(), NarrationRequest{}); err == nil {
		t.Error("expected error from empty chain")
	}
}

func TestFallbackNarrator_ContextCanceled(t *testing.T) {
	primary := &stubNarrator{provider: ProviderGemini, text: "never"}
	f := NewFallbackNarrator(fastRetry(), nil, primary)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Narrate(ctx, NarrationRequest{Query: "hi"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestClassifyErrorType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "success"},
		{"timeout", context.DeadlineExceeded, "timeout"},
		{"canceled", context.Canceled, "canceled"},
		{"rate limit status", &LLMError{Err: errors.New("slow down"), StatusCode: 429}, "rate_limit"},
		{"server error status", &LLMError{Err: errors.New("boom"), StatusCode: 503}, "server_error"},
		{"auth status", &LLMError{Err: errors.New("nope"), StatusCode: 401}, "auth_error"},
		{"quota text", errors.New("quota exceeded"), "quota_exhausted"},
		{"transient text", errors.New("service unavailable"), "transient_error"},
		{"permanent text", errors.New("invalid api key"), "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyErrorType(tt.err); got != tt.want {
				t.Errorf("classifyErrorType() = %q, want %q", got, tt.want)
			}
		})
	}
}
