package session

import (
	"testing"
	"time"

	"github.com/rahulj/hintloop/internal/difficulty"
	"github.com/rahulj/hintloop/internal/segment"
)

func twoQuestions() []segment.Question {
	return []segment.Question{
		{Ordinal: 1, Text: "Solve 2x + 4 = 10", Type: segment.TypeLinearEquation, ContentID: "q1"},
		{Ordinal: 2, Text: "Area of triangle, base = 6", Type: segment.TypeTriangleArea, ContentID: "q2"},
	}
}

func TestSetQuestionsStageDependsOnCount(t *testing.T) {
	s := New("u1")

	s.SetQuestions(twoQuestions())
	if s.Stage != StageQuestionSelection {
		t.Errorf("stage = %q, want question_selection for 2 questions", s.Stage)
	}
	if s.Selected() != nil {
		t.Error("no question should be selected yet")
	}

	s.SetQuestions(twoQuestions()[:1])
	if s.Stage != StagePainpointExcavation {
		t.Errorf("stage = %q, want painpoint_excavation for 1 question", s.Stage)
	}
	if s.Selected() == nil {
		t.Error("single question should be auto-selected")
	}
}

func TestSelectBounds(t *testing.T) {
	s := New("u1")
	s.SetQuestions(twoQuestions())

	if s.Select(5) {
		t.Error("out-of-range select should fail")
	}
	if !s.Select(1) {
		t.Fatal("valid select failed")
	}
	if s.Selected().ContentID != "q2" {
		t.Errorf("selected %q, want q2", s.Selected().ContentID)
	}
	if s.Stage != StagePainpointExcavation {
		t.Errorf("stage = %q, want painpoint_excavation after select", s.Stage)
	}
}

func TestSelectionIsExclusive(t *testing.T) {
	s := New("u1")
	s.SetQuestions(twoQuestions())
	s.Select(0)
	s.Select(1)
	// Re-selecting replaces, never adds.
	if s.Selected().ContentID != "q2" {
		t.Errorf("selected %q, want q2", s.Selected().ContentID)
	}
}

func TestHintHistoryBounded(t *testing.T) {
	s := New("u1")
	for i := range maxHintHistory + 5 {
		s.RecordHint(HintRecord{QuestionID: "q", Source: "instant", Text: string(rune('a' + i))})
	}
	if len(s.HintHistory) != maxHintHistory {
		t.Errorf("history len = %d, want %d", len(s.HintHistory), maxHintHistory)
	}
}

func TestOutcomeHistoryBoundedAndFiltered(t *testing.T) {
	s := New("u1")
	for i := range maxOutcomeHistory + 3 {
		topic := "linear_equation"
		if i%2 == 0 {
			topic = "trigonometry"
		}
		s.RecordOutcome(difficulty.Outcome{Topic: topic, Success: true})
	}
	if len(s.Outcomes) != maxOutcomeHistory {
		t.Errorf("outcomes len = %d, want %d", len(s.Outcomes), maxOutcomeHistory)
	}

	linear := s.OutcomesForTopic("linear_equation")
	for _, o := range linear {
		if o.Topic != "linear_equation" {
			t.Errorf("filter leaked topic %q", o.Topic)
		}
	}
}

func TestManagerEviction(t *testing.T) {
	m := NewManager(time.Minute)

	s1 := m.GetOrCreate("u1")
	m.GetOrCreate("u2")
	if m.Len() != 2 {
		t.Fatalf("len = %d, want 2", m.Len())
	}

	// Age u1 beyond the window.
	s1.LastActive = time.Now().Add(-2 * time.Minute)
	evicted := m.EvictIdle(time.Now())
	if evicted != 1 {
		t.Errorf("evicted = %d, want 1", evicted)
	}
	if m.Get("u1") != nil {
		t.Error("u1 should be gone")
	}
	if m.Get("u2") == nil {
		t.Error("u2 should survive")
	}
}

func TestGetOrCreateReusesSession(t *testing.T) {
	m := NewManager(time.Minute)
	a := m.GetOrCreate("u1")
	b := m.GetOrCreate("u1")
	if a != b {
		t.Error("expected the same session instance")
	}
	if a.ID == "" {
		t.Error("session ID should be set")
	}
}
