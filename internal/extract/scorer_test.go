package extract

import (
	"strings"
	"testing"
)

func TestScoreAlwaysBounded(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		confs []float64
	}{
		{"empty", "", nil},
		{"normal equation", "Solve the equation 2x + 4 = 10 for x", []float64{0.9, 0.95, 0.9}},
		{"degenerate repeats", strings.Repeat("a", 40), []float64{0.99}},
		{"symbols only", "@#$%^&*()!@#$%^&*()", []float64{0.8}},
		{"over-confident tokens", "area of a triangle with base = 6", []float64{1.5, 1.2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Score(tt.text, tt.confs)
			if a.Score < 0 || a.Score > 1 {
				t.Errorf("score %f out of [0,1]", a.Score)
			}
		})
	}
}

func TestVerdictBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  Verdict
	}{
		{0.75, VerdictHigh},
		{0.9, VerdictHigh},
		{0.74, VerdictMedium},
		{0.60, VerdictMedium},
		{0.59, VerdictLow},
		{0.0, VerdictLow},
	}

	for _, tt := range tests {
		if got := verdictFor(tt.score); got != tt.want {
			t.Errorf("verdictFor(%f) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestScoreGoodExtractionIsHigh(t *testing.T) {
	text := "Solve the equation 3x - 5 = 16. Find the area of a triangle with base = 6 and height = 4."
	a := Score(text, []float64{0.95, 0.92, 0.96, 0.94})
	if a.Verdict != VerdictHigh {
		t.Errorf("verdict = %q (score %f), want high", a.Verdict, a.Score)
	}
}

func TestScoreDefaultTokenConfidence(t *testing.T) {
	// No token confidences: mean defaults to 0.7, so even perfect text
	// cannot reach the high band on its own.
	text := "Solve the equation 3x - 5 = 16 for x please"
	a := Score(text, nil)
	if a.Score > 0.7+1e-9 {
		t.Errorf("score %f exceeds default mean 0.7", a.Score)
	}
}

func TestScoreDegenerateRepeatsIsLow(t *testing.T) {
	a := Score(strings.Repeat("x", 50), []float64{0.99, 0.99})
	if a.Verdict != VerdictLow {
		t.Errorf("verdict = %q (score %f), want low", a.Verdict, a.Score)
	}
}

func TestScoreShortTextPenalized(t *testing.T) {
	long := Score("solve the equation 2x + 4 = 10 for x", []float64{0.9})
	short := Score("2x", []float64{0.9})
	if short.Score >= long.Score {
		t.Errorf("short text score %f should be below long text score %f", short.Score, long.Score)
	}
}

func TestHasRepeatRun(t *testing.T) {
	if !hasRepeatRun([]rune("abcddddef"), 4) {
		t.Error("expected run of 4 detected")
	}
	if hasRepeatRun([]rune("abcdddef"), 4) {
		t.Error("run of 3 should not trigger")
	}
	// Whitespace runs don't count.
	if hasRepeatRun([]rune("a    b"), 4) {
		t.Error("space run should not trigger")
	}
}
