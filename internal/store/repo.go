package store

import (
	"context"
	"time"
)

// StruggleRecord is a confirmed struggle for one question in one session.
type StruggleRecord struct {
	SessionID   string
	QuestionID  string
	Description string
	Clarity     string
	Confidence  float64
	ConfirmedAt time.Time
}

// StruggleRepo persists confirmed struggle records.
// All methods may fail with *StorageError; callers go through the
// resilience layer and never block the user-facing path on these.
type StruggleRepo interface {
	Upsert(ctx context.Context, rec *StruggleRecord) error
	Get(ctx context.Context, sessionID, questionID string) (*StruggleRecord, error)
}

// DifficultyRecord is the per-user, per-topic rolling difficulty state.
type DifficultyRecord struct {
	UserID        string
	Topic         string
	Level         int
	Attempts      int
	Successes     int
	AvgConfidence float64
	UpdatedAt     time.Time
}

// DifficultyRepo persists difficulty state snapshots.
type DifficultyRepo interface {
	Upsert(ctx context.Context, rec *DifficultyRecord) error
	Get(ctx context.Context, userID, topic string) (*DifficultyRecord, error)
}

// HintEventData captures one hint resolution for later reporting.
type HintEventData struct {
	SessionID    string
	QuestionType string
	Source       string
	LatencyMs    int64
	Tokens       int
	CostUSD      float64
}

// HintEvent is a stored hint event row.
type HintEvent struct {
	ID        int64
	Timestamp time.Time
	HintEventData
}

// HintEventRepo provides append and query access to hint events.
type HintEventRepo interface {
	Append(ctx context.Context, data HintEventData) error
	Recent(ctx context.Context, limit int) ([]HintEvent, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// LLMEventRepo provides append access to LLM request events.
type LLMEventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}
