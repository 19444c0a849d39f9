package tutor

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/rahulj/hintloop/internal/extract"
	"github.com/rahulj/hintloop/internal/segment"
	"github.com/rahulj/hintloop/internal/session"
)

// ErrNoExtractor is returned by SubmitImage when no extraction backend
// is configured.
var ErrNoExtractor = errors.New("no extractor configured")

// Intake is the outcome of one problem submission.
type Intake struct {
	// Decision is how the quality policy ruled on the extraction. Text
	// submissions always proceed.
	Decision extract.Decision

	// Questions is the segmented set when the decision proceeds.
	Questions []segment.Question

	// Stage is the session stage after intake.
	Stage session.Stage

	// Mode is the session's input mode after intake; the policy may
	// have switched it to direct text.
	Mode session.InputMode
}

// SubmitImage runs photo intake: extraction, quality scoring, the
// retry-or-switch policy and, when the text is usable, segmentation.
func (s *Service) SubmitImage(ctx context.Context, userID string, image []byte) (*Intake, error) {
	if s.extractor == nil {
		return nil, ErrNoExtractor
	}

	sess := s.sessions.GetOrCreate(userID)
	sess.Lock()
	defer sess.Unlock()
	sess.Touch()

	res, err := s.extractor.Extract(ctx, image)
	if err != nil {
		// Upstream failure counts like an unusable extraction: same
		// guidance ladder, never a raw error to the user.
		s.log.Warn("extraction failed", zap.String("user", userID), zap.Error(err))
		return s.applyDecision(sess, s.policy.Decide(userID, "photo", extract.Assessment{Verdict: extract.VerdictLow}), nil), nil
	}

	a := extract.Score(res.Text, res.TokenConfidences)
	d := s.policy.Decide(userID, "photo", a)
	s.log.Debug("extraction scored",
		zap.String("user", userID),
		zap.Float64("score", a.Score),
		zap.String("verdict", string(a.Verdict)),
		zap.String("decision", string(d)))

	var qs []segment.Question
	if d == extract.DecisionProceed || d == extract.DecisionProceedFlagged {
		qs = segment.Segment(res.Text, a.Score)
	}
	return s.applyDecision(sess, d, qs), nil
}

// SubmitText runs direct-text intake. Typed input skips quality scoring
// and segments immediately.
func (s *Service) SubmitText(_ context.Context, userID, text string) (*Intake, error) {
	sess := s.sessions.GetOrCreate(userID)
	sess.Lock()
	defer sess.Unlock()
	sess.Touch()

	s.policy.Reset(userID, "photo")
	qs := segment.Segment(text, 1.0)
	sess.ExtraValidation = false
	sess.SetQuestions(qs)
	return &Intake{
		Decision:  extract.DecisionProceed,
		Questions: qs,
		Stage:     sess.Stage,
		Mode:      sess.Mode,
	}, nil
}

// applyDecision mutates the session per the policy decision. Caller
// holds the session lock.
func (s *Service) applyDecision(sess *session.Session, d extract.Decision, qs []segment.Question) *Intake {
	switch d {
	case extract.DecisionProceed, extract.DecisionProceedFlagged:
		sess.ExtraValidation = d == extract.DecisionProceedFlagged
		sess.SetQuestions(qs)
	case extract.DecisionSwitchInput, extract.DecisionForceInput:
		sess.Mode = session.InputText
	}
	return &Intake{
		Decision:  d,
		Questions: qs,
		Stage:     sess.Stage,
		Mode:      sess.Mode,
	}
}
