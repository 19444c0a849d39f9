package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestQueueRejectsWhenFull(t *testing.T) {
	q := NewRetryQueue(2, 3)

	if !q.Enqueue("struggle", 1) || !q.Enqueue("struggle", 2) {
		t.Fatal("enqueue under capacity should succeed")
	}
	if q.Enqueue("struggle", 3) {
		t.Fatal("enqueue at capacity should be rejected")
	}
	// Capacity is per kind.
	if !q.Enqueue("hint_event", 1) {
		t.Fatal("other kinds should be unaffected")
	}

	rejected, _ := q.Stats()
	if rejected != 1 {
		t.Fatalf("rejected = %d, want 1", rejected)
	}
}

func TestQueueDrainOldestFirst(t *testing.T) {
	q := NewRetryQueue(10, 3)
	for i := 1; i <= 4; i++ {
		q.Enqueue("struggle", i)
	}

	var seen []int
	done, dropped := q.Drain("struggle", 3, func(p any) error {
		seen = append(seen, p.(int))
		return nil
	})
	if done != 3 || dropped != 0 {
		t.Fatalf("done=%d dropped=%d, want 3 0", done, dropped)
	}
	if len(seen) != 3 || seen[0] != 1 || seen[2] != 3 {
		t.Fatalf("drain order = %v, want oldest first", seen)
	}
	if q.Len("struggle") != 1 {
		t.Fatalf("pending = %d, want 1", q.Len("struggle"))
	}
}

func TestQueueDropsAfterMaxAttempts(t *testing.T) {
	q := NewRetryQueue(10, 3)
	q.Enqueue("struggle", "s1")
	fail := func(any) error { return errors.New("db down") }

	for i := 0; i < 2; i++ {
		done, dropped := q.Drain("struggle", 5, fail)
		if done != 0 || dropped != 0 {
			t.Fatalf("attempt %d: done=%d dropped=%d", i+1, done, dropped)
		}
		if q.Len("struggle") != 1 {
			t.Fatal("entry should be requeued before max attempts")
		}
	}

	_, dropped := q.Drain("struggle", 5, fail)
	if dropped != 1 {
		t.Fatalf("dropped = %d, want 1 on third attempt", dropped)
	}
	if q.Len("struggle") != 0 {
		t.Fatal("dropped entry should leave the queue")
	}
}

func TestSweeperReplaysRegisteredKinds(t *testing.T) {
	q := NewRetryQueue(10, 3)
	q.Enqueue("struggle", "s1")
	q.Enqueue("hint_event", "h1")
	q.Enqueue("unknown", "u1")

	s := NewSweeper(q, time.Hour, 10, zap.NewNop())
	var struggles, hints []string
	s.Register("struggle", func(_ context.Context, p any) error {
		struggles = append(struggles, p.(string))
		return nil
	})
	s.Register("hint_event", func(_ context.Context, p any) error {
		hints = append(hints, p.(string))
		return nil
	})

	s.sweep(context.Background())

	if len(struggles) != 1 || len(hints) != 1 {
		t.Fatalf("replayed struggles=%v hints=%v", struggles, hints)
	}
	if q.Len("unknown") != 1 {
		t.Fatal("kinds without a handler should stay queued")
	}
}
