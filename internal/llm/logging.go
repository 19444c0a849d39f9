package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rahulj/hintloop/internal/store"
)

// Purpose labels what a completion was issued for. Call sites attach it
// to the context and it travels onto the recorded request event.
type Purpose string

const (
	PurposeHint    Purpose = "hint"
	PurposeUnknown Purpose = "unknown"
)

type contextKey string

const purposeKey contextKey = "llm_purpose"

// WithPurpose attaches a purpose label to the context.
func WithPurpose(ctx context.Context, p Purpose) context.Context {
	return context.WithValue(ctx, purposeKey, p)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) Purpose {
	if v, ok := ctx.Value(purposeKey).(Purpose); ok {
		return v
	}
	return PurposeUnknown
}

// EventSink receives one request event per completion. Sinks must not
// block: the service hands events to its fire-and-forget persistence
// path, so a broken store never slows a completion down.
type EventSink func(data store.LLMRequestEventData)

// LoggingProvider is a decorator that emits one event per completion.
type LoggingProvider struct {
	inner Provider
	sink  EventSink
	log   *zap.Logger
}

// WithLogging wraps a Provider with event recording. A nil sink keeps
// only the debug log.
func WithLogging(p Provider, sink EventSink, log *zap.Logger) Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingProvider{inner: p, sink: sink, log: log}
}

func (l *LoggingProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Complete(ctx, req)

	latencyMs := time.Since(start).Milliseconds()

	data := store.LLMRequestEventData{
		Provider:  l.inner.ModelID(),
		Model:     l.inner.ModelID(),
		Purpose:   string(purpose),
		LatencyMs: latencyMs,
		Success:   err == nil,
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
	}

	if err != nil {
		data.ErrorMessage = err.Error()
	}

	l.log.Debug("completion finished",
		zap.String("purpose", string(purpose)),
		zap.String("model", data.Model),
		zap.Int64("latency_ms", latencyMs),
		zap.Bool("success", err == nil))

	if l.sink != nil {
		l.sink(data)
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
