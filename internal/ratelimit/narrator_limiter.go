package ratelimit

import (
	"time"

	"github.com/coursewise/advisor-go/internal/metrics"
)

// NarratorLimiter tracks per-session narrator (LLM) usage. It is separate
// from the general session limiter so expensive narrator calls can be
// budgeted independently from rule-based query handling.
//
// Two layers apply per session:
//   - token bucket: burst capacity refilled hourly
//   - sliding window: rolling 24h daily cap (0 = disabled)
type NarratorLimiter struct {
	kl    *KeyedLimiter
	burst float64
}

// NewNarratorLimiter creates a narrator rate limiter.
//
// Parameters:
//   - burst: maximum narrator requests a session can burst (e.g., 20)
//   - refillPerHour: tokens refilled per hour per session (e.g., 20)
//   - dailyLimit: rolling 24h cap per session (0 = disabled)
//   - cleanup: interval for removing inactive session limiters
//   - m: optional metrics reporter
//
// Example:
//
//	limiter := NewNarratorLimiter(20, 20, 100, 5*time.Minute, m)
//	defer limiter.Stop()
//
//	if limiter.Allow(sessionID) {
//	    // Make narrator API call
//	}
func NewNarratorLimiter(burst, refillPerHour float64, dailyLimit int, cleanup time.Duration, m *metrics.Metrics) *NarratorLimiter {
	return &NarratorLimiter{
		burst: burst,
		kl: NewKeyedLimiter(KeyedConfig{
			Name:          "narrator",
			Burst:         burst,
			RefillRate:    refillPerHour / 3600.0,
			DailyLimit:    dailyLimit,
			CleanupPeriod: cleanup,
			Metrics:       m,
		}),
	}
}

// Allow checks if a narrator request for sessionID is allowed under both
// the hourly bucket and the daily window.
func (nl *NarratorLimiter) Allow(sessionID string) bool {
	return nl.kl.Allow(sessionID)
}

// GetAvailable returns the remaining burst tokens for a session.
// Returns the full burst for sessions with no limiter yet.
func (nl *NarratorLimiter) GetAvailable(sessionID string) float64 {
	if sessionID == "" {
		return nl.burst
	}
	return nl.kl.GetAvailable(sessionID)
}

// GetDailyRemaining returns the remaining daily quota for a session.
// Returns -1 if the daily limit is disabled.
func (nl *NarratorLimiter) GetDailyRemaining(sessionID string) int {
	return nl.kl.GetDailyRemaining(sessionID)
}

// GetActiveCount returns the number of sessions with active limiters.
func (nl *NarratorLimiter) GetActiveCount() int {
	return nl.kl.GetActiveCount()
}

// Stop gracefully stops the cleanup goroutine.
// Safe to call multiple times.
func (nl *NarratorLimiter) Stop() {
	nl.kl.Stop()
}
