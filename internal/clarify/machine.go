package clarify

import (
	"strconv"
	"strings"

	"github.com/rahulj/hintloop/internal/segment"
	"github.com/rahulj/hintloop/internal/session"
)

// Intent tells the caller (the transport/formatting layer) what kind of
// message to render next. No presentation is prescribed here.
type Intent string

const (
	IntentSelectQuestion Intent = "select_question" // ask which question to work on
	IntentProbe          Intent = "probe"           // ask a clarifying question
	IntentConfirm        Intent = "confirm"         // ask the user to confirm the struggle
	IntentHintReady      Intent = "hint_ready"      // struggle confirmed, resolve a hint
	IntentDecline        Intent = "decline"         // structured decline with resources
	IntentMenuReset      Intent = "menu_reset"      // session was reset to the menu
)

// Result is what one clarification turn produced.
type Result struct {
	Stage        session.Stage
	Intent       Intent
	Struggle     *session.StruggleAnalysis
	Probe        string
	AttemptsMade int
	Selected     *segment.Question
}

// Config tunes the state machine. The fallback threshold is heuristic,
// not a contract; see FallbackAnalysis.
type Config struct {
	MaxAttempts       int
	FallbackThreshold float64
}

// DefaultConfig returns the standard machine tuning.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:       3,
		FallbackThreshold: 0.6,
	}
}

// Machine is the bounded-attempt clarification state machine. It mutates
// only the session it is handed; callers hold the session's turn lock.
type Machine struct {
	cfg Config
}

// NewMachine creates a Machine.
func NewMachine(cfg Config) *Machine {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.FallbackThreshold <= 0 {
		cfg.FallbackThreshold = 0.6
	}
	return &Machine{cfg: cfg}
}

// Advance feeds one user turn to the machine and transitions the session.
func (m *Machine) Advance(sess *session.Session, utterance string) Result {
	switch sess.Stage {
	case session.StageQuestionSelection:
		return m.advanceSelection(sess, utterance)
	case session.StagePainpointExcavation:
		return m.advanceExcavation(sess, utterance)
	case session.StagePainpointConfirmation:
		return m.advanceConfirmation(sess, utterance)
	case session.StageIntelligenceFailed:
		return m.advanceFailed(sess, utterance)
	case session.StageHintGeneration:
		// Clarification is finished for this question; the caller should
		// be resolving a hint, not advancing the machine.
		return Result{Stage: sess.Stage, Intent: IntentHintReady, Struggle: sess.Struggle, Selected: sess.Selected()}
	default:
		return Result{Stage: sess.Stage, Intent: IntentProbe}
	}
}

func (m *Machine) advanceSelection(sess *session.Session, utterance string) Result {
	idx, err := strconv.Atoi(strings.TrimSpace(utterance))
	if err != nil || !sess.Select(idx-1) {
		return Result{Stage: sess.Stage, Intent: IntentSelectQuestion}
	}
	return Result{
		Stage:    sess.Stage,
		Intent:   IntentProbe,
		Selected: sess.Selected(),
	}
}

func (m *Machine) advanceExcavation(sess *session.Session, utterance string) Result {
	sess.Transcript = append(sess.Transcript, utterance)

	qtype := segment.TypeGeneral
	if q := sess.Selected(); q != nil {
		qtype = q.Type
	}

	analysis := ClassifyClarity(qtype, utterance)
	if analysis.Clarity == session.ClarityClear {
		sess.Struggle = &analysis
		sess.Stage = session.StagePainpointConfirmation
		return Result{
			Stage:    sess.Stage,
			Intent:   IntentConfirm,
			Struggle: sess.Struggle,
			Selected: sess.Selected(),
		}
	}

	sess.ExcavationAttempts++
	sess.Struggle = &analysis

	if sess.ExcavationAttempts >= m.cfg.MaxAttempts {
		if fb, ok := FallbackAnalysis(sess.Transcript, m.cfg.FallbackThreshold); ok {
			sess.Struggle = &fb
			sess.Stage = session.StagePainpointConfirmation
			return Result{
				Stage:    sess.Stage,
				Intent:   IntentConfirm,
				Struggle: sess.Struggle,
				Selected: sess.Selected(),
			}
		}
		sess.Stage = session.StageIntelligenceFailed
		return Result{
			Stage:        sess.Stage,
			Intent:       IntentDecline,
			AttemptsMade: sess.ExcavationAttempts,
		}
	}

	return Result{
		Stage:        sess.Stage,
		Intent:       IntentProbe,
		Struggle:     sess.Struggle,
		Probe:        analysis.NextProbe,
		AttemptsMade: sess.ExcavationAttempts,
		Selected:     sess.Selected(),
	}
}

func (m *Machine) advanceConfirmation(sess *session.Session, utterance string) Result {
	if ClassifyConfirmation(utterance) == Confirmed {
		confirmed := *sess.Struggle
		confirmed.Confirmed = true
		sess.Struggle = &confirmed
		sess.Stage = session.StageHintGeneration
		return Result{
			Stage:    sess.Stage,
			Intent:   IntentHintReady,
			Struggle: sess.Struggle,
			Selected: sess.Selected(),
		}
	}

	// Rejecting the synthesized last-resort analysis ends clarification;
	// the same transcript cannot yield a different proposal.
	if sess.Struggle != nil && sess.Struggle.Clarity == session.ClarityFallback {
		sess.Stage = session.StageIntelligenceFailed
		return Result{
			Stage:        sess.Stage,
			Intent:       IntentDecline,
			AttemptsMade: sess.ExcavationAttempts,
		}
	}

	// Negative or ambiguous: back to excavation for another probe turn,
	// counting the attempt. The bounded-attempt check runs on the next
	// excavation turn, once new transcript exists for the fallback.
	sess.ExcavationAttempts++
	sess.Stage = session.StagePainpointExcavation

	return Result{
		Stage:        sess.Stage,
		Intent:       IntentProbe,
		AttemptsMade: sess.ExcavationAttempts,
		Selected:     sess.Selected(),
	}
}

// advanceFailed accepts only "retry" and "menu"; anything else keeps the
// session in the failed state.
func (m *Machine) advanceFailed(sess *session.Session, utterance string) Result {
	switch strings.ToLower(strings.TrimSpace(utterance)) {
	case "retry":
		sess.ExcavationAttempts = 0
		sess.Transcript = nil
		sess.Stage = session.StagePainpointExcavation
		return Result{Stage: sess.Stage, Intent: IntentProbe, Selected: sess.Selected()}
	case "menu":
		sess.Reset()
		return Result{Stage: sess.Stage, Intent: IntentMenuReset}
	default:
		return Result{Stage: sess.Stage, Intent: IntentDecline}
	}
}
