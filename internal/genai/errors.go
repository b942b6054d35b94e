package genai

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrorAction is the decision the retry/fallback chain takes for a
// failed narration call.
type ErrorAction int

const (
	// ActionRetry repeats the call against the same provider and model.
	ActionRetry ErrorAction = iota
	// ActionFallback moves on to the next provider in the chain.
	ActionFallback
	// ActionFail gives up; the caller serves the rule-based narrative.
	ActionFail
)

func (a ErrorAction) String() string {
	switch a {
	case ActionRetry:
		return "retry"
	case ActionFallback:
		return "fallback"
	case ActionFail:
		return "fail"
	default:
		return "unknown"
	}
}

// LLMError carries the provider and HTTP status alongside the cause so
// the chain can classify without string matching.
type LLMError struct {
	Err        error
	StatusCode int
	Provider   Provider
	Retryable  bool
}

func (e *LLMError) Error() string {
	if e.StatusCode > 0 {
		return e.Err.Error() + " (status: " + strconv.Itoa(e.StatusCode) + ")"
	}
	return e.Err.Error()
}

func (e *LLMError) Unwrap() error {
	return e.Err
}

// messagePatterns maps substrings of provider error text to an action.
// Groups are checked in order; quota exhaustion must come before the
// rate-limit group because provider messages often mention both.
var messagePatterns = []struct {
	action   ErrorAction
	patterns []string
}{
	{ActionFallback, []string{"quota", "daily limit", "monthly limit", "billing", "quota exceeded"}},
	{ActionRetry, []string{"rate limit", "too many requests", "resource_exhausted"}},
	{ActionRetry, []string{
		"unavailable", "503", "502", "500", "504",
		"service temporarily unavailable", "internal server error",
		"bad gateway", "gateway timeout", "overloaded", "capacity",
	}},
	{ActionRetry, []string{"429", "rate limit", "too many"}},
	{ActionRetry, []string{"408", "409", "timeout", "deadline", "connection"}},
	{ActionFail, []string{"400", "invalid", "bad request", "malformed"}},
	{ActionFail, []string{"401", "unauthorized", "unauthenticated", "invalid api key"}},
	{ActionFail, []string{"403", "forbidden", "permission denied"}},
	{ActionFail, []string{"404", "not found"}},
	{ActionFail, []string{"422", "unprocessable"}},
}

// ClassifyError decides what the chain does with err. Transient trouble
// (throttling, 5xx, network) retries, exhausted quota falls back to the
// next provider, and malformed requests or bad credentials fail at once.
// Unrecognized errors retry.
func ClassifyError(err error) ErrorAction {
	if err == nil {
		return ActionFail
	}

	// Cancellation means the student stopped waiting.
	if errors.Is(err, context.Canceled) {
		return ActionFail
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ActionRetry
	}

	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		return classifyStatusCode(llmErr.StatusCode)
	}

	errStr := strings.ToLower(err.Error())
	for _, group := range messagePatterns {
		if containsAny(errStr, group.patterns...) {
			return group.action
		}
	}

	return ActionRetry
}

// classifyStatusCode maps an HTTP status to an action.
func classifyStatusCode(statusCode int) ErrorAction {
	switch {
	case statusCode == http.StatusTooManyRequests,
		statusCode == http.StatusRequestTimeout,
		statusCode == http.StatusConflict:
		return ActionRetry
	case statusCode >= 500 && statusCode < 600:
		return ActionRetry
	case statusCode >= 400 && statusCode < 500:
		return ActionFail
	default:
		return ActionRetry
	}
}

// ParseRetryAfter extracts a wait hint from response headers. It accepts
// retry-after-ms (milliseconds), the standard retry-after in seconds or
// HTTP-date form, and Groq's x-ratelimit-reset-tokens duration. Returns
// 0 when no usable hint is present.
func ParseRetryAfter(headers http.Header) time.Duration {
	if msStr := headers.Get("retry-after-ms"); msStr != "" {
		if ms, err := strconv.Atoi(msStr); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}

	if secStr := headers.Get("retry-after"); secStr != "" {
		if sec, err := strconv.Atoi(secStr); err == nil && sec > 0 {
			return time.Duration(sec) * time.Second
		}
		if t, err := http.ParseTime(secStr); err == nil {
			return time.Until(t)
		}
	}

	if resetStr := headers.Get("x-ratelimit-reset-tokens"); resetStr != "" {
		if d, err := time.ParseDuration(resetStr); err == nil {
			return d
		}
	}

	return 0
}

// ShouldFallback reports whether the next provider should be tried.
func ShouldFallback(err error) bool {
	return ClassifyError(err) == ActionFallback
}

// IsRetryable reports whether the error is transient.
func IsRetryable(err error) bool {
	return ClassifyError(err) == ActionRetry
}

// IsPermanent reports whether retrying is pointless.
func IsPermanent(err error) bool {
	return ClassifyError(err) == ActionFail
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// WrapError attaches provider and status context to a raw client error.
func WrapError(err error, provider Provider, statusCode int) error {
	if err == nil {
		return nil
	}
	return &LLMError{
		Err:        err,
		StatusCode: statusCode,
		Provider:   provider,
		Retryable:  ClassifyError(err) == ActionRetry,
	}
}
