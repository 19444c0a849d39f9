package resilience

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultSweepInterval is how often the sweeper drains the queue.
const DefaultSweepInterval = 15 * time.Second

// DefaultSweepBatch bounds how many entries one sweep replays per kind.
const DefaultSweepBatch = 25

// Handler replays one deferred operation of a given kind.
type Handler func(ctx context.Context, payload any) error

// Sweeper periodically drains the retry queue, replaying each kind's
// pending entries through its registered handler.
type Sweeper struct {
	queue    *RetryQueue
	interval time.Duration
	batch    int
	handlers map[string]Handler
	log      *zap.Logger
}

// NewSweeper creates a Sweeper over the queue. Zero interval and batch
// select the defaults.
func NewSweeper(queue *RetryQueue, interval time.Duration, batch int, log *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if batch <= 0 {
		batch = DefaultSweepBatch
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{
		queue:    queue,
		interval: interval,
		batch:    batch,
		handlers: make(map[string]Handler),
		log:      log,
	}
}

// Register sets the replay handler for a kind. Kinds without a handler
// are skipped by the sweep.
func (s *Sweeper) Register(kind string, h Handler) {
	s.handlers[kind] = h
}

// Run sweeps the queue on a fixed interval until ctx is cancelled.
// It blocks; callers run it in a goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	g, ctx := errgroup.WithContext(ctx)
	for _, kind := range s.queue.Kinds() {
		h, ok := s.handlers[kind]
		if !ok {
			s.log.Warn("no handler for retry kind", zap.String("kind", kind))
			continue
		}
		kind := kind
		g.Go(func() error {
			done, dropped := s.queue.Drain(kind, s.batch, func(payload any) error {
				return h(ctx, payload)
			})
			if done > 0 || dropped > 0 {
				s.log.Debug("retry sweep",
					zap.String("kind", kind),
					zap.Int("replayed", done),
					zap.Int("dropped", dropped),
					zap.Int("pending", s.queue.Len(kind)))
			}
			return nil
		})
	}
	_ = g.Wait()
}
