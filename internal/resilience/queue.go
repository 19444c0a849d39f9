package resilience

import (
	"sync"
	"time"
)

// Default bounds for the retry queue.
const (
	DefaultQueueCap    = 200
	DefaultMaxAttempts = 3
)

// Entry is a deferred operation waiting for retry. Payload is the
// operation-specific data the drain handler needs to replay it.
type Entry struct {
	Kind       string
	Payload    any
	EnqueuedAt time.Time
	Attempts   int
}

// RetryQueue holds failed persistence operations for later replay,
// partitioned by operation kind. Each sub-queue has a hard cap: when it
// is full new entries are rejected so memory stays bounded under a long
// outage. Entries that keep failing are dropped after a fixed number of
// attempts.
type RetryQueue struct {
	mu   sync.Mutex
	subs map[string][]*Entry

	cap         int
	maxAttempts int
	now         func() time.Time

	rejected int
	dropped  int
}

// NewRetryQueue creates a RetryQueue. Zero values select the defaults.
func NewRetryQueue(queueCap, maxAttempts int) *RetryQueue {
	if queueCap <= 0 {
		queueCap = DefaultQueueCap
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &RetryQueue{
		subs:        make(map[string][]*Entry),
		cap:         queueCap,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// Enqueue adds a deferred operation to the kind's sub-queue. It returns
// false when the sub-queue is at capacity and the entry was rejected.
func (q *RetryQueue) Enqueue(kind string, payload any) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.subs[kind]) >= q.cap {
		q.rejected++
		return false
	}
	q.subs[kind] = append(q.subs[kind], &Entry{
		Kind:       kind,
		Payload:    payload,
		EnqueuedAt: q.now(),
	})
	return true
}

// Len returns the number of pending entries for a kind.
func (q *RetryQueue) Len(kind string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.subs[kind])
}

// Kinds returns the kinds that currently have pending entries.
func (q *RetryQueue) Kinds() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	kinds := make([]string, 0, len(q.subs))
	for k, sub := range q.subs {
		if len(sub) > 0 {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Stats returns how many entries were rejected at capacity and dropped
// after exhausting their attempts.
func (q *RetryQueue) Stats() (rejected, dropped int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.rejected, q.dropped
}

// Drain replays up to batch entries from the kind's sub-queue, oldest
// first. Entries whose replay succeeds are removed; entries that fail
// again go to the back of the queue unless they have exhausted their
// attempts, in which case they are dropped. It returns the number of
// entries replayed successfully and the number dropped.
func (q *RetryQueue) Drain(kind string, batch int, fn func(payload any) error) (done, dropped int) {
	q.mu.Lock()
	sub := q.subs[kind]
	if batch > len(sub) {
		batch = len(sub)
	}
	taken := sub[:batch]
	q.subs[kind] = sub[batch:]
	q.mu.Unlock()

	var requeue []*Entry
	for _, e := range taken {
		if err := fn(e.Payload); err != nil {
			e.Attempts++
			if e.Attempts >= q.maxAttempts {
				dropped++
				continue
			}
			requeue = append(requeue, e)
			continue
		}
		done++
	}

	q.mu.Lock()
	q.subs[kind] = append(q.subs[kind], requeue...)
	q.dropped += dropped
	q.mu.Unlock()
	return done, dropped
}
