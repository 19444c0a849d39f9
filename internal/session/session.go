package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rahulj/hintloop/internal/difficulty"
	"github.com/rahulj/hintloop/internal/segment"
)

// Stage is the current pipeline stage for a session. Transitions happen
// only through the clarification state machine or an explicit reset.
type Stage string

const (
	StageQuestionSelection     Stage = "question_selection"
	StagePainpointExcavation   Stage = "painpoint_excavation"
	StagePainpointConfirmation Stage = "painpoint_confirmation"
	StageHintGeneration        Stage = "hint_generation"
	StageIntelligenceFailed    Stage = "intelligence_failed"
)

// InputMode is how the user currently submits problems.
type InputMode string

const (
	InputPhoto InputMode = "photo"
	InputText  InputMode = "text"
)

// ClarityLevel is the categorical judgment of how specific a student's
// struggle description is.
type ClarityLevel string

const (
	ClarityClear    ClarityLevel = "clear"
	ClarityModerate ClarityLevel = "moderate"
	ClarityUnclear  ClarityLevel = "unclear"
	ClarityVague    ClarityLevel = "vague"
	ClarityFallback ClarityLevel = "fallback"
)

// StruggleAnalysis is the result of one clarification turn. The latest
// analysis is attached to the session and superseded each turn until
// confirmed, after which it is immutable for that question.
type StruggleAnalysis struct {
	Clarity     ClarityLevel
	Description string
	Confidence  float64
	Reason      string // closed set of causes, e.g. "type_indicator", "generic_indicator"
	NextProbe   string // optional suggested probe identifier
	Confirmed   bool
}

// HintRecord is one delivered hint in the session's bounded history.
type HintRecord struct {
	QuestionID string
	Source     string
	Text       string
	At         time.Time
}

const (
	maxHintHistory    = 10
	maxOutcomeHistory = 20
)

// Session holds all per-user pipeline state. One per end user; mutated on
// every turn; evicted after an inactivity window by the manager's sweep.
type Session struct {
	// mu serializes turns for this session. The service locks it for the
	// duration of a turn so turns apply strictly in arrival order.
	mu sync.Mutex

	ID     string
	UserID string
	Stage  Stage

	// Questions is the current segmented set. Re-segmentation replaces it.
	Questions []segment.Question

	// SelectedIdx indexes Questions; -1 when nothing is selected.
	// At most one question is selected at a time.
	SelectedIdx int

	// Struggle is the latest clarification analysis for the selected
	// question.
	Struggle *StruggleAnalysis

	// ExcavationAttempts counts excavation turns without reaching clear.
	ExcavationAttempts int

	// Transcript accumulates the user's excavation turns for the current
	// question, feeding the intelligent fallback.
	Transcript []string

	// HintHistory is a bounded ring of delivered hints, newest last.
	HintHistory []HintRecord

	// Outcomes is a bounded ring of per-topic results feeding the
	// difficulty controller, newest last.
	Outcomes []difficulty.Outcome

	// Mode is the current input mode.
	Mode InputMode

	// ExtraValidation is set when a medium-confidence extraction flagged
	// the session for additional checks.
	ExtraValidation bool

	LastActive time.Time
}

// New creates a session for a user.
func New(userID string) *Session {
	return &Session{
		ID:          uuid.NewString(),
		UserID:      userID,
		Stage:       StagePainpointExcavation,
		SelectedIdx: -1,
		Mode:        InputPhoto,
		LastActive:  time.Now(),
	}
}

// Lock acquires the session's turn lock.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session's turn lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// SetQuestions replaces the question set and resets selection and
// clarification state. Initial stage is question_selection when more than
// one question exists, else excavation directly.
func (s *Session) SetQuestions(qs []segment.Question) {
	s.Questions = qs
	s.SelectedIdx = -1
	s.Struggle = nil
	s.ExcavationAttempts = 0
	s.Transcript = nil

	if len(qs) > 1 {
		s.Stage = StageQuestionSelection
	} else {
		if len(qs) == 1 {
			s.SelectedIdx = 0
		}
		s.Stage = StagePainpointExcavation
	}
}

// Select marks the question at idx as the selected one.
// Returns false when idx is out of range.
func (s *Session) Select(idx int) bool {
	if idx < 0 || idx >= len(s.Questions) {
		return false
	}
	s.SelectedIdx = idx
	s.Struggle = nil
	s.ExcavationAttempts = 0
	s.Transcript = nil
	s.Stage = StagePainpointExcavation
	return true
}

// Selected returns the selected question, or nil.
func (s *Session) Selected() *segment.Question {
	if s.SelectedIdx < 0 || s.SelectedIdx >= len(s.Questions) {
		return nil
	}
	return &s.Questions[s.SelectedIdx]
}

// Reset returns the session to its initial state, keeping identity.
func (s *Session) Reset() {
	s.Stage = StagePainpointExcavation
	s.Questions = nil
	s.SelectedIdx = -1
	s.Struggle = nil
	s.ExcavationAttempts = 0
	s.Transcript = nil
}

// RecordHint appends to the bounded hint history.
func (s *Session) RecordHint(rec HintRecord) {
	s.HintHistory = append(s.HintHistory, rec)
	if len(s.HintHistory) > maxHintHistory {
		s.HintHistory = s.HintHistory[len(s.HintHistory)-maxHintHistory:]
	}
}

// RecordOutcome appends to the bounded outcome history.
func (s *Session) RecordOutcome(o difficulty.Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	if len(s.Outcomes) > maxOutcomeHistory {
		s.Outcomes = s.Outcomes[len(s.Outcomes)-maxOutcomeHistory:]
	}
}

// OutcomesForTopic returns this session's outcomes for one topic,
// oldest first.
func (s *Session) OutcomesForTopic(topic string) []difficulty.Outcome {
	var out []difficulty.Outcome
	for _, o := range s.Outcomes {
		if o.Topic == topic {
			out = append(out, o)
		}
	}
	return out
}

// Touch updates the inactivity clock.
func (s *Session) Touch() {
	s.LastActive = time.Now()
}
