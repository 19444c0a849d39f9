package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by Do when the breaker skips the call.
// Callers take the fallback path immediately; no network attempt happens.
var ErrCircuitOpen = errors.New("circuit open")

// Defaults for the process-wide breaker.
const (
	DefaultThreshold       = 5
	DefaultRecoveryTimeout = 30 * time.Second
)

// Breaker is a circuit breaker guarding calls to an external dependency.
// Failures past the threshold open the circuit; after the recovery
// timeout one trial call is let through — success resets the breaker,
// failure re-opens it and restarts the timer.
type Breaker struct {
	mu          sync.Mutex
	failures    int
	open        bool
	lastFailure time.Time

	threshold int
	recovery  time.Duration
	now       func() time.Time
}

// NewBreaker creates a Breaker. Zero values select the defaults.
func NewBreaker(threshold int, recovery time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if recovery <= 0 {
		recovery = DefaultRecoveryTimeout
	}
	return &Breaker{
		threshold: threshold,
		recovery:  recovery,
		now:       time.Now,
	}
}

// Allow reports whether a call may proceed. While the circuit is open it
// returns false until the recovery timeout has elapsed since the last
// failure, after which a trial call is allowed through.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return true
	}
	return b.now().Sub(b.lastFailure) >= b.recovery
}

// Success resets the failure count and closes the circuit.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.open = false
}

// Failure records a failed call, opening the circuit once the threshold
// is reached and restarting the recovery timer.
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.lastFailure = b.now()
	if b.failures >= b.threshold {
		b.open = true
	}
}

// Open reports whether the circuit is currently open.
func (b *Breaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

// Do executes fn under the breaker. When the circuit is open and the
// recovery timeout has not elapsed, fn is skipped and ErrCircuitOpen is
// returned so the caller can use its fallback path.
func (b *Breaker) Do(fn func() error) error {
	if !b.Allow() {
		return ErrCircuitOpen
	}
	if err := fn(); err != nil {
		b.Failure()
		return err
	}
	b.Success()
	return nil
}
