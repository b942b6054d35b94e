package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	t.Parallel()
	l := New(10, 5)
	if l.maxTokens != 10 {
		t.Errorf("maxTokens = %v, want 10", l.maxTokens)
	}
	if l.refillRate != 5 {
		t.Errorf("refillRate = %v, want 5", l.refillRate)
	}
	// The bucket starts full so a fresh session gets its burst.
	if l.tokens != 10 {
		t.Errorf("initial tokens = %v, want 10", l.tokens)
	}
}

func TestAllow(t *testing.T) {
	t.Parallel()
	t.Run("spends the burst", func(t *testing.T) {
		t.Parallel()
		l := New(5, 1)
		for i := 0; i < 5; i++ {
			if !l.Allow() {
				t.Errorf("Allow() = false on narration %d, want true", i+1)
			}
		}
	})

	t.Run("denies past the burst", func(t *testing.T) {
		t.Parallel()
		l := New(2, 0) // no refill
		l.Allow()
		l.Allow()
		if l.Allow() {
			t.Error("Allow() = true with an empty bucket, want false")
		}
	})

	t.Run("refills over time", func(t *testing.T) {
		t.Parallel()
		l := New(1, 100)
		l.Allow()

		time.Sleep(20 * time.Millisecond)

		if !l.Allow() {
			t.Error("Allow() = false after refill time, want true")
		}
	})
}

func TestCheckConsume(t *testing.T) {
	t.Parallel()
	l := New(1, 0)

	if !l.Check() {
		t.Error("Check() = false on a full bucket, want true")
	}

	l.Consume()

	if l.Check() {
		t.Error("Check() = true on an empty bucket, want false")
	}

	// Consume on an empty bucket is a no-op, not a debt.
	l.Consume()
	if avail := l.Available(); avail < 0 {
		t.Errorf("Available() = %v after over-consume, want >= 0", avail)
	}
}

func TestAvailable(t *testing.T) {
	t.Parallel()
	l := New(10, 1)
	l.Allow()
	l.Allow()

	available := l.Available()
	if available < 7.9 || available > 8.1 {
		t.Errorf("Available() = %v, want ~8", available)
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()
	l := New(100, 100)

	var wg sync.WaitGroup
	allowed := make(chan struct{}, 200)

	for range 50 {
		wg.Go(func() {
			if l.Allow() {
				allowed <- struct{}{}
			}
			if l.Allow() {
				allowed <- struct{}{}
			}
		})
	}

	wg.Wait()
	close(allowed)

	count := 0
	for range allowed {
		count++
	}

	// Exactly the initial burst, nothing double-spent.
	if count != 100 {
		t.Errorf("concurrent Allow() allowed %d requests, want 100", count)
	}
}

func TestIsFull(t *testing.T) {
	t.Parallel()
	t.Run("fresh bucket is full", func(t *testing.T) {
		t.Parallel()
		l := New(10, 1)
		if !l.IsFull() {
			t.Error("IsFull() = false for new limiter, want true")
		}
	})

	t.Run("not full after spending", func(t *testing.T) {
		t.Parallel()
		l := New(10, 0)
		l.Allow()
		if l.IsFull() {
			t.Error("IsFull() = true after Allow(), want false")
		}
	})

	t.Run("full again after refill", func(t *testing.T) {
		t.Parallel()
		l := New(1, 100)
		l.Allow()

		time.Sleep(20 * time.Millisecond)

		if !l.IsFull() {
			t.Error("IsFull() = false after refill, want true")
		}
	})
}
