package clarify

import (
	"strings"

	"github.com/rahulj/hintloop/internal/segment"
	"github.com/rahulj/hintloop/internal/session"
)

// Classification reason tags (closed set).
const (
	ReasonTypeIndicator    = "type_indicator"
	ReasonGenericIndicator = "generic_indicator"
	ReasonLengthHeuristic  = "length_heuristic"
	ReasonTranscriptTopic  = "transcript_topic"
)

// ClassifyClarity judges how specific and actionable one free-text turn
// is for the given question type. The ladder: type-specific indicators,
// then generic struggle language, then length/keyword heuristics.
func ClassifyClarity(qtype segment.QuestionType, utterance string) session.StruggleAnalysis {
	for _, ind := range typeIndicators[qtype] {
		if ind.Pattern.MatchString(utterance) {
			return session.StruggleAnalysis{
				Clarity:     session.ClarityClear,
				Description: ind.Struggle,
				Confidence:  ind.Confidence,
				Reason:      ReasonTypeIndicator,
				NextProbe:   ind.Probe,
			}
		}
	}

	for _, ind := range genericIndicators {
		if ind.Pattern.MatchString(utterance) {
			return session.StruggleAnalysis{
				Clarity:     session.ClarityClear,
				Description: ind.Struggle,
				Confidence:  ind.Confidence,
				Reason:      ReasonGenericIndicator,
				NextProbe:   ind.Probe,
			}
		}
	}

	return heuristicClarity(utterance)
}

// heuristicClarity buckets a non-matching turn by length and struggle
// keywords.
func heuristicClarity(utterance string) session.StruggleAnalysis {
	words := len(strings.Fields(utterance))
	hasKeyword := struggleKeywords.MatchString(utterance)

	switch {
	case words >= 5 && hasKeyword:
		return session.StruggleAnalysis{
			Clarity:    session.ClarityModerate,
			Confidence: 0.5,
			Reason:     ReasonLengthHeuristic,
			NextProbe:  "probe_narrow_down",
		}
	case words >= 4:
		return session.StruggleAnalysis{
			Clarity:    session.ClarityUnclear,
			Confidence: 0.3,
			Reason:     ReasonLengthHeuristic,
			NextProbe:  "probe_specific_part",
		}
	default:
		return session.StruggleAnalysis{
			Clarity:    session.ClarityVague,
			Confidence: 0.1,
			Reason:     ReasonLengthHeuristic,
			NextProbe:  "probe_open",
		}
	}
}

// FallbackAnalysis concatenates all prior turns for the question and
// re-tests them against the looser topic-level pattern set. Returns a
// fallback-clarity analysis and true when the combined confidence
// exceeds the threshold.
func FallbackAnalysis(transcript []string, threshold float64) (session.StruggleAnalysis, bool) {
	combined := strings.Join(transcript, " ")

	best := 0.0
	description := ""
	matches := 0
	for _, ind := range topicIndicators {
		if !ind.Pattern.MatchString(combined) {
			continue
		}
		matches++
		if ind.Confidence > best {
			best = ind.Confidence
			description = ind.Struggle
		}
	}

	if matches == 0 {
		return session.StruggleAnalysis{}, false
	}

	// Each extra topic match adds a small boost, capped below clear
	// territory so fallback stays distinguishable.
	confidence := best + 0.03*float64(matches-1)
	if confidence > 0.75 {
		confidence = 0.75
	}

	if confidence <= threshold {
		return session.StruggleAnalysis{}, false
	}

	return session.StruggleAnalysis{
		Clarity:     session.ClarityFallback,
		Description: description,
		Confidence:  confidence,
		Reason:      ReasonTranscriptTopic,
	}, true
}
