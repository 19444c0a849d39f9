package tutor

import (
	"context"
	"time"

	"github.com/rahulj/hintloop/internal/clarify"
	"github.com/rahulj/hintloop/internal/hint"
	"github.com/rahulj/hintloop/internal/llm"
	"github.com/rahulj/hintloop/internal/segment"
	"github.com/rahulj/hintloop/internal/session"
	"github.com/rahulj/hintloop/internal/store"
)

// Turn is the outcome of one conversational turn.
type Turn struct {
	Intent       clarify.Intent
	Stage        session.Stage
	Struggle     *session.StruggleAnalysis
	Probe        string
	AttemptsMade int
	Selected     *segment.Question

	// Hint is set when the turn confirmed a struggle and resolution ran.
	Hint *hint.Hint
}

// HandleTurn feeds one user utterance through the clarification state
// machine and, when the struggle is confirmed, resolves a hint. Turns
// for one user apply strictly in arrival order.
func (s *Service) HandleTurn(ctx context.Context, userID, utterance string) *Turn {
	sess := s.sessions.GetOrCreate(userID)
	sess.Lock()
	defer sess.Unlock()
	sess.Touch()

	res := s.machine.Advance(sess, utterance)
	turn := &Turn{
		Intent:       res.Intent,
		Stage:        res.Stage,
		Struggle:     res.Struggle,
		Probe:        res.Probe,
		AttemptsMade: res.AttemptsMade,
		Selected:     res.Selected,
	}

	if res.Intent == clarify.IntentHintReady && res.Struggle != nil {
		if q := sess.Selected(); q != nil {
			turn.Hint = s.resolveHint(ctx, sess, *q, res.Struggle)
		}
	}
	return turn
}

// resolveHint runs the pipeline and records the result. Persistence is
// fire and forget: a broken store defers to the retry queue and never
// delays the hint. Caller holds the session lock.
func (s *Service) resolveHint(ctx context.Context, sess *session.Session, q segment.Question, struggle *session.StruggleAnalysis) *hint.Hint {
	ctx = llm.WithPurpose(ctx, llm.PurposeHint)
	h := s.hints.Resolve(ctx, q, struggle.Description)

	sess.RecordHint(session.HintRecord{
		QuestionID: q.ContentID,
		Source:     string(h.Source),
		Text:       h.Text,
		At:         time.Now(),
	})

	strugglePayload := &store.StruggleRecord{
		SessionID:   sess.ID,
		QuestionID:  q.ContentID,
		Description: struggle.Description,
		Clarity:     string(struggle.Clarity),
		Confidence:  struggle.Confidence,
		ConfirmedAt: time.Now(),
	}
	// Asking again for the same question upserts over the earlier row;
	// keep the first confirmation time.
	if prev := s.priorStruggle(ctx, sess.ID, q.ContentID); prev != nil {
		strugglePayload.ConfirmedAt = prev.ConfirmedAt
	}
	s.persist(kindStruggle, strugglePayload, func() error {
		return s.struggles.Upsert(context.Background(), strugglePayload)
	})

	eventPayload := store.HintEventData{
		SessionID:    sess.ID,
		QuestionType: string(q.Type),
		Source:       string(h.Source),
		LatencyMs:    h.Latency.Milliseconds(),
		Tokens:       h.Tokens,
		CostUSD:      hintCost(h),
	}
	s.persist(kindHintEvent, eventPayload, func() error {
		return s.hintEvents.Append(context.Background(), eventPayload)
	})

	return h
}

// priorStruggle reads the stored struggle for a question through the
// storage breaker. Best effort: any failure, or an open circuit, just
// means no prior record.
func (s *Service) priorStruggle(ctx context.Context, sessionID, questionID string) *store.StruggleRecord {
	var prev *store.StruggleRecord
	err := s.storeBreaker.Do(func() error {
		var getErr error
		prev, getErr = s.struggles.Get(ctx, sessionID, questionID)
		return getErr
	})
	if err != nil {
		return nil
	}
	return prev
}

// hintCost estimates the dollar cost of a generated hint. Non-generated
// tiers are free.
func hintCost(h *hint.Hint) float64 {
	if h.Source != hint.SourceGenerated || h.Model == "" {
		return 0
	}
	cost := llm.LookupCost(h.Model)
	if cost == nil {
		return 0
	}
	// Generation is prompt-light; charge everything at the output rate
	// as a conservative upper bound.
	return cost.Cost(0, h.Tokens)
}
