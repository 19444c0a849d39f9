// Package tutor wires the full pipeline together: input intake,
// clarification, hint resolution, difficulty adjustment and persistence.
package tutor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rahulj/hintloop/internal/clarify"
	"github.com/rahulj/hintloop/internal/config"
	"github.com/rahulj/hintloop/internal/extract"
	"github.com/rahulj/hintloop/internal/hint"
	"github.com/rahulj/hintloop/internal/llm"
	"github.com/rahulj/hintloop/internal/resilience"
	"github.com/rahulj/hintloop/internal/session"
	"github.com/rahulj/hintloop/internal/store"
)

// Retry queue kinds. Each kind has its own sub-queue and replay handler.
const (
	kindStruggle   = "struggle"
	kindDifficulty = "difficulty"
	kindHintEvent  = "hint_event"
	kindLLMEvent   = "llm_event"
)

// Deps are the service's external collaborators.
type Deps struct {
	Struggles  store.StruggleRepo
	Difficulty store.DifficultyRepo
	HintEvents store.HintEventRepo

	// LLMEvents receives one record per backend completion. Nil disables
	// request event persistence.
	LLMEvents store.LLMEventRepo

	// Extractor turns images into text. Nil disables photo intake.
	Extractor extract.Extractor

	// Provider is the generative backend. Nil disables the generative
	// hint tier; the pipeline still resolves through the other tiers.
	Provider llm.Provider

	Logger *zap.Logger
}

// Service is the application facade. One per process; all methods are
// safe for concurrent use, with per-session turns serialized by the
// session's own lock.
type Service struct {
	cfg *config.Config
	log *zap.Logger

	sessions *session.Manager
	policy   *extract.Policy
	machine  *clarify.Machine
	hints    *hint.Pipeline

	extractor extract.Extractor

	queue        *resilience.RetryQueue
	sweeper      *resilience.Sweeper
	storeBreaker *resilience.Breaker

	struggles  store.StruggleRepo
	difficulty store.DifficultyRepo
	hintEvents store.HintEventRepo
	llmEvents  store.LLMEventRepo

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a Service from configuration and collaborators.
func New(cfg *config.Config, deps Deps) *Service {
	if cfg == nil {
		cfg = config.Default()
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	extractor := deps.Extractor
	if extractor != nil {
		// Identical images resolve from the cache without re-extraction.
		extractor = extract.WithCache(extractor, 0)
	}

	breaker := resilience.NewBreaker(cfg.Resilience.BreakerThreshold, cfg.Resilience.BreakerRecovery.Std())
	queue := resilience.NewRetryQueue(cfg.Resilience.QueueCap, cfg.Resilience.QueueMaxAttempts)

	s := &Service{
		cfg:      cfg,
		log:      log,
		sessions: session.NewManager(cfg.Sessions.IdleWindow.Std()),
		policy:   extract.NewPolicy(),
		machine: clarify.NewMachine(clarify.Config{
			MaxAttempts:       cfg.Clarification.MaxAttempts,
			FallbackThreshold: cfg.Clarification.FallbackThreshold,
		}),
		extractor:    extractor,
		queue:        queue,
		storeBreaker: resilience.NewBreaker(cfg.Resilience.BreakerThreshold, cfg.Resilience.BreakerRecovery.Std()),
		sweeper:      resilience.NewSweeper(queue, cfg.Resilience.SweepInterval.Std(), cfg.Resilience.SweepBatch, log.Named("sweep")),
		struggles:    deps.Struggles,
		difficulty:   deps.Difficulty,
		hintEvents:   deps.HintEvents,
		llmEvents:    deps.LLMEvents,
	}

	// Every backend completion flows through the same deferred
	// persistence path as the other stored records.
	var gen *hint.Generator
	if deps.Provider != nil {
		provider := llm.WithLogging(deps.Provider, s.recordLLMEvent, log.Named("llm"))
		gen = hint.NewGenerator(provider, cfg.Hints.GenerateTimeout.Std(), cfg.Hints.MaxWords)
	}
	s.hints = hint.NewPipeline(
		hint.NewCache(cfg.Hints.CacheSize),
		gen,
		breaker,
		hint.NewMetrics(cfg.Hints.MetricsWindow),
		log.Named("hints"),
	)

	s.registerHandlers()
	return s
}

// recordLLMEvent is the provider's event sink. Fire and forget: a broken
// store defers the event to the retry queue and never blocks completion.
func (s *Service) recordLLMEvent(data store.LLMRequestEventData) {
	if s.llmEvents == nil {
		return
	}
	payload := data
	s.persist(kindLLMEvent, &payload, func() error {
		return s.llmEvents.AppendLLMRequest(context.Background(), payload)
	})
}

func (s *Service) registerHandlers() {
	s.sweeper.Register(kindStruggle, s.replaying(func(ctx context.Context, p any) error {
		return s.struggles.Upsert(ctx, p.(*store.StruggleRecord))
	}))
	s.sweeper.Register(kindDifficulty, s.replaying(func(ctx context.Context, p any) error {
		return s.difficulty.Upsert(ctx, p.(*store.DifficultyRecord))
	}))
	s.sweeper.Register(kindHintEvent, s.replaying(func(ctx context.Context, p any) error {
		return s.hintEvents.Append(ctx, p.(store.HintEventData))
	}))
	s.sweeper.Register(kindLLMEvent, s.replaying(func(ctx context.Context, p any) error {
		return s.llmEvents.AppendLLMRequest(ctx, *p.(*store.LLMRequestEventData))
	}))
}

// replaying feeds replay results back into the storage breaker so a
// recovered store closes the circuit for the request path too.
func (s *Service) replaying(h resilience.Handler) resilience.Handler {
	return func(ctx context.Context, p any) error {
		err := h(ctx, p)
		if err == nil {
			s.storeBreaker.Success()
		}
		return err
	}
}

// Start launches the background loops: the retry-queue sweep and the
// idle-session eviction sweep.
func (s *Service) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.sweeper.Run(ctx)
	}()
	go func() {
		defer s.wg.Done()
		s.evictLoop(ctx)
	}()
}

// Stop shuts down the background loops and waits for them.
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Service) evictLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Sessions.EvictInterval.Std())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.EvictIdle(time.Now()); n > 0 {
				s.log.Debug("evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}

// Sessions exposes the session manager, mainly for transports and tests.
func (s *Service) Sessions() *session.Manager { return s.sessions }

// HintMetrics exposes the rolling hint resolution window.
func (s *Service) HintMetrics() *hint.Metrics { return s.hints.Metrics() }

// persist attempts the write once through the storage circuit breaker,
// deferring it to the retry queue on failure. While the breaker is open
// the direct attempt is skipped entirely. The user-facing path never
// waits on a broken store.
func (s *Service) persist(kind string, payload any, write func() error) {
	if err := s.storeBreaker.Do(write); err == nil {
		return
	} else if !s.queue.Enqueue(kind, payload) {
		s.log.Warn("retry queue full, write lost",
			zap.String("kind", kind),
			zap.Error(err))
	} else {
		s.log.Debug("write deferred to retry queue",
			zap.String("kind", kind),
			zap.Error(err))
	}
}
