// Package ratelimit provides the token-bucket and rolling-window limiters
// that cap narrator usage per session.
package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindowCounter enforces a rolling quota, such as the per-session
// daily narrator budget. Instead of storing one timestamp per request it
// keeps two fixed windows and weights the previous one by how much of it
// still overlaps the rolling window:
//
//	effective = curr + prev * (window - elapsed) / window
//
// The estimate is O(1) in space and smooth across window boundaries. A
// session that spent 8 of 10 narrations yesterday morning does not get a
// fresh 10 at midnight; the old spend decays linearly over the next 24h.
type SlidingWindowCounter struct {
	mu              sync.Mutex
	currCount       int
	prevCount       int
	currWindowStart time.Time
	windowDuration  time.Duration
	maxRequests     int
}

// NewSlidingWindowCounter creates a counter allowing maxRequests per
// rolling windowDuration. A maxRequests of zero or less disables the
// quota and returns nil; all methods are safe on a nil receiver.
func NewSlidingWindowCounter(maxRequests int, windowDuration time.Duration) *SlidingWindowCounter {
	if maxRequests <= 0 {
		return nil
	}
	return &SlidingWindowCounter{
		currWindowStart: time.Now(),
		windowDuration:  windowDuration,
		maxRequests:     maxRequests,
	}
}

// Allow consumes one unit of quota if any remains. Thread-safe.
func (swc *SlidingWindowCounter) Allow() bool {
	if swc == nil {
		return true
	}

	swc.mu.Lock()
	defer swc.mu.Unlock()

	swc.maybeRotateWindow()

	if swc.calculateWeightedCount() >= float64(swc.maxRequests) {
		return false
	}
	swc.currCount++
	return true
}

// Check reports whether a request would currently be allowed, without
// consuming quota. Pair with Consume under an external lock when the
// counter is one layer of a multi-layer check.
func (swc *SlidingWindowCounter) Check() bool {
	if swc == nil {
		return true
	}

	swc.mu.Lock()
	defer swc.mu.Unlock()

	swc.maybeRotateWindow()
	return swc.calculateWeightedCount() < float64(swc.maxRequests)
}

// Consume records one request. Callers are expected to have passed Check
// first; Consume still refuses to push the count past the limit.
func (swc *SlidingWindowCounter) Consume() {
	if swc == nil {
		return
	}

	swc.mu.Lock()
	defer swc.mu.Unlock()

	swc.maybeRotateWindow()

	if swc.calculateWeightedCount() < float64(swc.maxRequests) {
		swc.currCount++
	}
}

// maybeRotateWindow shifts to a fresh window once the current one has
// fully elapsed. Must be called with mu held.
func (swc *SlidingWindowCounter) maybeRotateWindow() {
	elapsed := time.Since(swc.currWindowStart)
	if elapsed < swc.windowDuration {
		return
	}

	windowsPassed := int(elapsed / swc.windowDuration)
	if windowsPassed == 1 {
		swc.prevCount = swc.currCount
	} else {
		// After a gap of two or more windows nothing from the old
		// window overlaps the rolling window anymore.
		swc.prevCount = 0
	}

	swc.currCount = 0
	swc.currWindowStart = swc.currWindowStart.Add(time.Duration(windowsPassed) * swc.windowDuration)
}

// calculateWeightedCount estimates usage within the rolling window.
// Must be called with mu held.
func (swc *SlidingWindowCounter) calculateWeightedCount() float64 {
	elapsed := time.Since(swc.currWindowStart)

	overlapRatio := float64(swc.windowDuration-elapsed) / float64(swc.windowDuration)
	if overlapRatio < 0 {
		overlapRatio = 0
	}
	if overlapRatio > 1 {
		overlapRatio = 1
	}

	return float64(swc.currCount) + float64(swc.prevCount)*overlapRatio
}

// GetEffectiveCount returns the current weighted usage estimate.
func (swc *SlidingWindowCounter) GetEffectiveCount() float64 {
	if swc == nil {
		return 0
	}

	swc.mu.Lock()
	defer swc.mu.Unlock()

	swc.maybeRotateWindow()
	return swc.calculateWeightedCount()
}

// GetRemaining returns the approximate quota left, or -1 when the
// counter is disabled.
func (swc *SlidingWindowCounter) GetRemaining() int {
	if swc == nil {
		return -1
	}

	swc.mu.Lock()
	defer swc.mu.Unlock()

	swc.maybeRotateWindow()
	remaining := float64(swc.maxRequests) - swc.calculateWeightedCount()
	if remaining < 0 {
		return 0
	}
	return int(remaining)
}

// IsFull reports whether the quota is currently exhausted.
func (swc *SlidingWindowCounter) IsFull() bool {
	if swc == nil {
		return false
	}

	swc.mu.Lock()
	defer swc.mu.Unlock()

	swc.maybeRotateWindow()
	return swc.calculateWeightedCount() >= float64(swc.maxRequests)
}
