package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestBreakerOpensAtThreshold(t *testing.T) {
	b := NewBreaker(5, time.Minute)

	for i := 0; i < 4; i++ {
		b.Failure()
		if b.Open() {
			t.Fatalf("breaker opened after %d failures", i+1)
		}
	}
	b.Failure()
	if !b.Open() {
		t.Fatal("breaker should open after 5 failures")
	}
	if b.Allow() {
		t.Fatal("open breaker should not allow calls before recovery")
	}
}

func TestBreakerTrialAfterRecovery(t *testing.T) {
	b := NewBreaker(2, time.Minute)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return clock }

	b.Failure()
	b.Failure()
	if b.Allow() {
		t.Fatal("breaker should be open")
	}

	clock = clock.Add(time.Minute)
	if !b.Allow() {
		t.Fatal("trial call should be allowed after recovery timeout")
	}

	// Failed trial restarts the timer.
	b.Failure()
	if b.Allow() {
		t.Fatal("failed trial should re-open without a new window")
	}

	clock = clock.Add(time.Minute)
	if !b.Allow() {
		t.Fatal("second trial should be allowed after another window")
	}
	b.Success()
	if b.Open() {
		t.Fatal("successful trial should close the breaker")
	}
	if !b.Allow() {
		t.Fatal("closed breaker should allow calls")
	}
}

func TestBreakerDo(t *testing.T) {
	b := NewBreaker(1, time.Hour)
	boom := errors.New("boom")

	if err := b.Do(func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("Do should surface the call error, got %v", err)
	}
	if err := b.Do(func() error { t.Fatal("call should be skipped"); return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("want ErrCircuitOpen, got %v", err)
	}
}
