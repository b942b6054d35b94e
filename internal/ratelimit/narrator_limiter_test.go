package ratelimit

import (
	"testing"
	"time"
)

func TestNarratorLimiter_Basic(t *testing.T) {
	t.Parallel()
	nl := NewNarratorLimiter(2, 1, 0, time.Hour, nil)
	defer nl.Stop()

	if !nl.Allow("session1") {
		t.Error("First request failed")
	}
	if !nl.Allow("session1") {
		t.Error("Second request failed (burst 2)")
	}
	if nl.Allow("session1") {
		t.Error("Third request allowed (should exceed burst)")
	}

	// Independent session gets its own budget
	if !nl.Allow("session2") {
		t.Error("Other session first request failed")
	}
}

func TestNarratorLimiter_DailyLimit(t *testing.T) {
	t.Parallel()
	// Generous burst, tight daily cap: daily layer must be the one that trips
	nl := NewNarratorLimiter(100, 100, 3, time.Hour, nil)
	defer nl.Stop()

	for i := 0; i < 3; i++ {
		if !nl.Allow("s1") {
			t.Fatalf("Request %d failed before daily cap", i+1)
		}
	}
	if nl.Allow("s1") {
		t.Error("Request allowed beyond daily cap")
	}
	if r := nl.GetDailyRemaining("s1"); r != 0 {
		t.Errorf("Daily remaining = %d, want 0", r)
	}
}

func TestNarratorLimiter_GetAvailable(t *testing.T) {
	t.Parallel()
	nl := NewNarratorLimiter(20, 20, 0, time.Hour, nil)
	defer nl.Stop()

	if v := nl.GetAvailable(""); v != 20 {
		t.Errorf("Empty session available = %f, want 20", v)
	}
	if v := nl.GetAvailable("fresh"); v != 20 {
		t.Errorf("Fresh session available = %f, want 20", v)
	}

	nl.Allow("s1")
	if v := nl.GetAvailable("s1"); v >= 20 {
		t.Errorf("Used session available = %f, want < 20", v)
	}
}

func TestNarratorLimiter_DailyDisabled(t *testing.T) {
	t.Parallel()
	nl := NewNarratorLimiter(20, 20, 0, time.Hour, nil)
	defer nl.Stop()

	if r := nl.GetDailyRemaining("s1"); r != -1 {
		t.Errorf("Disabled daily remaining = %d, want -1", r)
	}
}

func TestNarratorLimiter_ActiveCount(t *testing.T) {
	t.Parallel()
	nl := NewNarratorLimiter(20, 20, 100, time.Hour, mockMetrics())
	defer nl.Stop()

	nl.Allow("s1")
	nl.Allow("s2")
	if count := nl.GetActiveCount(); count != 2 {
		t.Errorf("Active count = %d, want 2", count)
	}
}
