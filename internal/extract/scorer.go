package extract

import (
	"strings"
	"unicode"
)

// Verdict is the categorical quality judgment for an extraction.
type Verdict string

const (
	VerdictHigh   Verdict = "high"   // proceed directly to segmentation
	VerdictMedium Verdict = "medium" // proceed, but flag for extra validation
	VerdictLow    Verdict = "low"    // retry guidance or input-mode switch
)

// Verdict thresholds.
const (
	highThreshold   = 0.75
	mediumThreshold = 0.60
)

// defaultTokenConfidence is assumed when the extraction backend reports
// no per-token confidences.
const defaultTokenConfidence = 0.7

// minUsefulLength is the rune count at which the length factor saturates.
const minUsefulLength = 20

// Assessment is the scored quality of one extraction.
type Assessment struct {
	Score   float64 // always in [0,1]
	Verdict Verdict
}

// Score turns raw extraction output into a bounded confidence score and
// verdict. The score is the mean per-token confidence multiplied by four
// independent factors, each clamped to [0,1]: length saturation, subject
// relevance, character diversity, and readability.
func Score(text string, tokenConfs []float64) Assessment {
	score := meanConfidence(tokenConfs)
	score *= lengthFactor(text)
	score *= relevanceFactor(text)
	score *= diversityFactor(text)
	score *= readabilityFactor(text)
	score = clamp01(score)

	return Assessment{Score: score, Verdict: verdictFor(score)}
}

func verdictFor(score float64) Verdict {
	switch {
	case score >= highThreshold:
		return VerdictHigh
	case score >= mediumThreshold:
		return VerdictMedium
	default:
		return VerdictLow
	}
}

func meanConfidence(confs []float64) float64 {
	if len(confs) == 0 {
		return defaultTokenConfidence
	}
	sum := 0.0
	for _, c := range confs {
		sum += c
	}
	return clamp01(sum / float64(len(confs)))
}

// lengthFactor saturates once the text exceeds the minimum useful length.
func lengthFactor(text string) float64 {
	n := len([]rune(strings.TrimSpace(text)))
	if n == 0 {
		return 0
	}
	return clamp01(float64(n) / minUsefulLength)
}

// subjectMarkers are recognizable subject-matter fragments. Their presence
// boosts the relevance factor; their total absence penalizes it.
var subjectMarkers = []string{
	"solve", "equation", "area", "triangle", "circle", "radius",
	"fraction", "percent", "angle", "graph", "simplify", "factor",
	"sin", "cos", "tan", "derivative", "integral", "x", "=",
}

func relevanceFactor(text string) float64 {
	lower := strings.ToLower(text)
	hits := 0
	for _, m := range subjectMarkers {
		if strings.Contains(lower, m) {
			hits++
		}
	}
	if hits == 0 {
		return 0.6
	}
	// 0.8 base on any hit, +0.05 per additional marker.
	return clamp01(0.8 + 0.05*float64(hits-1))
}

// diversityFactor guards against degenerate repeated-character extraction.
func diversityFactor(text string) float64 {
	runes := []rune(text)
	if len(runes) == 0 {
		return 0
	}
	distinct := make(map[rune]struct{}, len(runes))
	for _, r := range runes {
		distinct[r] = struct{}{}
	}
	ratio := float64(len(distinct)) / float64(len(runes))
	// Real text comfortably exceeds 25% distinct runes at OCR scale.
	return clamp01(ratio * 4)
}

// readabilityFactor penalizes a high non-alphanumeric ratio and runs of
// four or more identical characters.
func readabilityFactor(text string) float64 {
	runes := []rune(text)
	if len(runes) == 0 {
		return 0
	}

	nonAlnum := 0
	total := 0
	for _, r := range runes {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			nonAlnum++
		}
	}
	if total == 0 {
		return 0
	}

	factor := 1.0
	ratio := float64(nonAlnum) / float64(total)
	if ratio > 0.3 {
		factor -= ratio - 0.3
	}

	if hasRepeatRun(runes, 4) {
		factor *= 0.5
	}

	return clamp01(factor)
}

// hasRepeatRun reports whether runes contains a run of n identical
// non-space characters.
func hasRepeatRun(runes []rune, n int) bool {
	run := 1
	for i := 1; i < len(runes); i++ {
		if runes[i] == runes[i-1] && !unicode.IsSpace(runes[i]) {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
