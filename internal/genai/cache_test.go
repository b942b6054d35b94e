package genai

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCachingNarrator_HitAndMiss(t *testing.T) {
	inner := &stubNarrator{provider: ProviderGemini, text: "cached answer"}
	c := NewCachingNarrator(inner, time.Minute, testMetrics())

	req := NarrationRequest{Query: "what should i take", Intent: "course_recommendation"}

	first, err := c.Narrate(context.Background(), req)
	if err != nil {
		t.Fatalf("Narrate() error = %v", err)
	}
	second, err := c.Narrate(context.Background(), req)
	if err != nil {
		t.Fatalf("Narrate() error = %v", err)
	}

	if first.Text != second.Text {
		t.Error("cached narration differs from original")
	}
	if inner.calls.Load() != 1 {
		t.Errorf("inner calls = %d, want 1 (second call served from cache)", inner.calls.Load())
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCachingNarrator_DistinctRequests(t *testing.T) {
	inner := &stubNarrator{provider: ProviderGemini, text: "answer"}
	c := NewCachingNarrator(inner, time.Minute, nil)

	_, _ = c.Narrate(context.Background(), NarrationRequest{Query: "a", Intent: "greeting"})
	_, _ = c.Narrate(context.Background(), NarrationRequest{Query: "b", Intent: "greeting"})

	if inner.calls.Load() != 2 {
		t.Errorf("inner calls = %d, want 2 for distinct queries", inner.calls.Load())
	}
}

func TestCachingNarrator_Expiry(t *testing.T) {
	inner := &stubNarrator{provider: ProviderGemini, text: "answer"}
	c := NewCachingNarrator(inner, 10*time.Millisecond, nil)

	req := NarrationRequest{Query: "hello", Intent: "greeting"}
	_, _ = c.Narrate(context.Background(), req)
	time.Sleep(20 * time.Millisecond)
	_, _ = c.Narrate(context.Background(), req)

	if inner.calls.Load() != 2 {
		t.Errorf("inner calls = %d, want 2 after TTL expiry", inner.calls.Load())
	}
}

func TestCachingNarrator_ErrorsNotCached(t *testing.T) {
	inner := &stubNarrator{
		provider: ProviderGemini,
		text:     "eventually",
		errs:     []error{errors.New("service unavailable")},
	}
	c := NewCachingNarrator(inner, time.Minute, nil)

	req := NarrationRequest{Query: "hello", Intent: "greeting"}
	if _, err := c.Narrate(context.Background(), req); err == nil {
		t.Fatal("expected first call to fail")
	}
	result, err := c.Narrate(context.Background(), req)
	if err != nil {
		t.Fatalf("second call error = %v", err)
	}
	if result.Text != "eventually" {
		t.Errorf("Text = %q, want %q", result.Text, "eventually")
	}
}

func TestCachingNarrator_DisabledTTL(t *testing.T) {
	inner := &stubNarrator{provider: ProviderGemini, text: "answer"}
	c := NewCachingNarrator(inner, 0, nil)

	req := NarrationRequest{Query: "hello", Intent: "greeting"}
	_, _ = c.Narrate(context.Background(), req)
	_, _ = c.Narrate(context.Background(), req)

	if inner.calls.Load() != 2 {
		t.Errorf("inner calls = %d, want 2 with caching disabled", inner.calls.Load())
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 with caching disabled", c.Len())
	}
}

func TestCacheKey_Stable(t *testing.T) {
	a := NarrationRequest{Query: "  Hello ", Intent: "greeting", Major: "CS"}
	b := NarrationRequest{Query: "hello", Intent: "greeting", Major: "CS"}
	if cacheKey(a) != cacheKey(b) {
		t.Error("cache key should normalize query whitespace and case")
	}

	c := NarrationRequest{Query: "hello", Intent: "greeting", Major: "Finance"}
	if cacheKey(a) == cacheKey(c) {
		t.Error("different majors must not share a cache key")
	}
}
