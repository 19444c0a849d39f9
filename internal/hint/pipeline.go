package hint

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/rahulj/hintloop/internal/resilience"
	"github.com/rahulj/hintloop/internal/segment"
)

// Pipeline resolves hints through a tiered ladder: instant template,
// cache, generative backend, static fallback, emergency. Resolve always
// returns a hint; tier failures only demote, never fail the request.
type Pipeline struct {
	cache   *Cache
	gen     *Generator
	breaker *resilience.Breaker
	metrics *Metrics
	log     *zap.Logger
}

// NewPipeline wires the tiers together. gen may be nil when no backend
// is configured; the generative tier is then skipped entirely.
func NewPipeline(cache *Cache, gen *Generator, breaker *resilience.Breaker, metrics *Metrics, log *zap.Logger) *Pipeline {
	if cache == nil {
		cache = NewCache(0)
	}
	if breaker == nil {
		breaker = resilience.NewBreaker(0, 0)
	}
	if metrics == nil {
		metrics = NewMetrics(0)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{cache: cache, gen: gen, breaker: breaker, metrics: metrics, log: log}
}

// Metrics exposes the rolling resolution window.
func (p *Pipeline) Metrics() *Metrics { return p.metrics }

// Resolve produces a hint for the question and confirmed struggle
// description. Tiers are tried in order and the first success wins.
func (p *Pipeline) Resolve(ctx context.Context, q segment.Question, struggle string) *Hint {
	start := time.Now()
	h := p.resolve(ctx, q, struggle)
	h.Latency = time.Since(start)

	p.metrics.Record(Sample{
		Source:  h.Source,
		Latency: h.Latency,
		Tokens:  h.Tokens,
		At:      start,
	})
	p.log.Debug("hint resolved",
		zap.String("question", q.ContentID),
		zap.String("type", string(q.Type)),
		zap.String("source", string(h.Source)),
		zap.Duration("latency", h.Latency))
	return h
}

func (p *Pipeline) resolve(ctx context.Context, q segment.Question, struggle string) *Hint {
	if h := instantLookup(q, struggle); h != nil {
		return h
	}
	if h := p.cache.Get(q, struggle); h != nil {
		return h
	}

	if p.gen != nil {
		var h *Hint
		err := p.breaker.Do(func() error {
			var genErr error
			h, genErr = p.gen.Generate(ctx, q, struggle)
			return genErr
		})
		if err == nil {
			p.cache.Put(q, struggle, *h)
			return h
		}
		if !errors.Is(err, resilience.ErrCircuitOpen) {
			p.log.Warn("generative tier failed",
				zap.String("question", q.ContentID),
				zap.Error(err))
		}
	}

	if h := staticLookup(q.Type); h != nil {
		return h
	}
	return emergencyHint()
}
