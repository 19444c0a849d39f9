package tutor

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/rahulj/hintloop/internal/difficulty"
	"github.com/rahulj/hintloop/internal/resilience"
	"github.com/rahulj/hintloop/internal/store"
)

// ReportOutcome records one solution analysis for a topic and returns
// the difficulty decision for the user's next question on that topic.
func (s *Service) ReportOutcome(ctx context.Context, userID, topic string, a difficulty.Analysis) difficulty.Result {
	sess := s.sessions.GetOrCreate(userID)
	sess.Lock()
	defer sess.Unlock()
	sess.Touch()

	// The read goes through the storage breaker like every other store
	// call. An open circuit skips the store entirely and falls back to
	// the default level.
	current := difficulty.DefaultLevel
	var rec *store.DifficultyRecord
	err := s.storeBreaker.Do(func() error {
		var getErr error
		rec, getErr = s.difficulty.Get(ctx, userID, topic)
		return getErr
	})
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		s.log.Debug("difficulty read skipped while store circuit open",
			zap.String("user", userID),
			zap.String("topic", topic))
	case err != nil:
		s.log.Warn("difficulty read failed, using default level",
			zap.String("user", userID),
			zap.String("topic", topic),
			zap.Error(err))
	case rec != nil:
		current = rec.Level
	}

	history := sess.OutcomesForTopic(topic)
	res := difficulty.Next(current, history, a)

	success := a.CorrectMethod && a.CorrectAnswer
	sess.RecordOutcome(difficulty.Outcome{
		Topic:      topic,
		Success:    success,
		Confidence: a.Confidence,
		At:         time.Now(),
	})

	payload := &store.DifficultyRecord{
		UserID:        userID,
		Topic:         topic,
		Level:         res.Level,
		Attempts:      1,
		AvgConfidence: a.Confidence,
		UpdatedAt:     time.Now(),
	}
	if success {
		payload.Successes = 1
	}
	if rec != nil {
		payload.Attempts = rec.Attempts + 1
		payload.Successes = rec.Successes + payload.Successes
		// Running mean over all attempts.
		payload.AvgConfidence = rec.AvgConfidence + (a.Confidence-rec.AvgConfidence)/float64(payload.Attempts)
	}
	s.persist(kindDifficulty, payload, func() error {
		return s.difficulty.Upsert(context.Background(), payload)
	})

	return res
}
