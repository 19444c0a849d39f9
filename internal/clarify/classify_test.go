package clarify

import (
	"testing"

	"github.com/rahulj/hintloop/internal/segment"
	"github.com/rahulj/hintloop/internal/session"
)

func TestTypeIndicatorIsClearAndConfident(t *testing.T) {
	a := ClassifyClarity(segment.TypeLinearEquation, "I don't know how to isolate x")
	if a.Clarity != session.ClarityClear {
		t.Fatalf("clarity = %q, want clear", a.Clarity)
	}
	if a.Confidence < 0.85 {
		t.Errorf("confidence = %f, want >= 0.85", a.Confidence)
	}
	if a.Reason != ReasonTypeIndicator {
		t.Errorf("reason = %q, want type_indicator", a.Reason)
	}
	if a.Description == "" {
		t.Error("description should be synthesized")
	}
}

func TestTypeIndicatorsPerType(t *testing.T) {
	tests := []struct {
		qtype     segment.QuestionType
		utterance string
	}{
		{segment.TypeTriangleArea, "I can never remember which formula to use"},
		{segment.TypeTrigonometry, "I mix up opposite and adjacent"},
		{segment.TypeFraction, "finding the common denominator confuses me"},
		{segment.TypeQuadraticEquation, "I don't get the discriminant"},
		{segment.TypeCircleArea, "do I use the radius or the diameter?"},
	}

	for _, tt := range tests {
		a := ClassifyClarity(tt.qtype, tt.utterance)
		if a.Clarity != session.ClarityClear {
			t.Errorf("%s/%q: clarity = %q, want clear", tt.qtype, tt.utterance, a.Clarity)
		}
		if a.Reason != ReasonTypeIndicator {
			t.Errorf("%s/%q: reason = %q, want type_indicator", tt.qtype, tt.utterance, a.Reason)
		}
	}
}

func TestGenericIndicatorLowerConfidence(t *testing.T) {
	// No percentage-specific indicator matches, but generic struggle
	// language does.
	a := ClassifyClarity(segment.TypePercentage, "I'm stuck on the second part")
	if a.Clarity != session.ClarityClear {
		t.Fatalf("clarity = %q, want clear", a.Clarity)
	}
	if a.Reason != ReasonGenericIndicator {
		t.Errorf("reason = %q, want generic_indicator", a.Reason)
	}
	if a.Confidence >= 0.85 {
		t.Errorf("generic confidence %f should sit below type-specific matches", a.Confidence)
	}
}

func TestHeuristicBuckets(t *testing.T) {
	tests := []struct {
		utterance string
		want      session.ClarityLevel
	}{
		{"this whole thing is hard for me today", session.ClarityModerate},
		{"the second one looks strange", session.ClarityUnclear},
		{"idk", session.ClarityVague},
		{"", session.ClarityVague},
	}

	for _, tt := range tests {
		a := ClassifyClarity(segment.TypeGeneral, tt.utterance)
		if a.Clarity != tt.want {
			t.Errorf("%q: clarity = %q, want %q", tt.utterance, a.Clarity, tt.want)
		}
	}
}

func TestFallbackAnalysisOverThreshold(t *testing.T) {
	transcript := []string{
		"it is just hard",
		"something about the equation I think",
		"maybe the first step",
	}
	a, ok := FallbackAnalysis(transcript, 0.6)
	if !ok {
		t.Fatal("expected fallback to fire")
	}
	if a.Clarity != session.ClarityFallback {
		t.Errorf("clarity = %q, want fallback", a.Clarity)
	}
	if a.Confidence <= 0.6 {
		t.Errorf("confidence = %f, want > 0.6", a.Confidence)
	}
}

func TestFallbackAnalysisNoMatch(t *testing.T) {
	_, ok := FallbackAnalysis([]string{"banana", "purple", "tuesday"}, 0.6)
	if ok {
		t.Fatal("fallback should not fire on unrelated turns")
	}
}

func TestClassifyConfirmation(t *testing.T) {
	tests := []struct {
		utterance string
		want      Confirmation
	}{
		{"yes", Confirmed},
		{"yeah exactly", Confirmed},
		{"that's it", Confirmed},
		{"no", NotConfirmed},
		{"yes but not really", NotConfirmed}, // negative marker wins
		{"hmm maybe", NotConfirmed},          // ambiguous defaults to re-probe
		{"", NotConfirmed},
		{"I know", NotConfirmed}, // "no" must not match inside "know"
	}

	for _, tt := range tests {
		if got := ClassifyConfirmation(tt.utterance); got != tt.want {
			t.Errorf("ClassifyConfirmation(%q) = %v, want %v", tt.utterance, got, tt.want)
		}
	}
}
