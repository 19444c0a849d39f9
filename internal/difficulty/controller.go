// Package difficulty adjusts per-topic question difficulty from rolling
// outcome history and the latest solution analysis.
package difficulty

import "time"

// Levels are ordinal 0-4. A learner with no history starts at basic.
const (
	MinLevel     = 0
	MaxLevel     = 4
	DefaultLevel = 1
)

// VariantClass buckets the next question's flavor by historical success.
type VariantClass string

const (
	VariantFoundation   VariantClass = "foundation"
	VariantBasic        VariantClass = "basic"
	VariantIntermediate VariantClass = "intermediate"
	VariantAdvanced     VariantClass = "advanced"
)

// historyWindow is how many recent attempts feed the variant class.
const historyWindow = 5

// Analysis is the latest solution analysis for a topic.
type Analysis struct {
	CorrectMethod  bool
	CorrectAnswer  bool
	SpecificIssues []string
	Confidence     float64
}

// Outcome is one historical attempt for a topic.
type Outcome struct {
	Topic      string
	Success    bool
	Confidence float64
	At         time.Time
}

// Result is the controller's decision for the next question.
type Result struct {
	Level   int
	Variant VariantClass

	// CalculationSupport flags a calculation-only error: method right,
	// answer wrong. The next question should carry calculation scaffolding.
	CalculationSupport bool
}

// Next computes the next difficulty level and variant class. The level
// adjustment applies to current and is clamped to [0,4]; history drives
// the variant class independently.
func Next(current int, history []Outcome, a Analysis) Result {
	level := clampLevel(current + adjustment(a))

	res := Result{
		Level:   level,
		Variant: variantFor(history),
	}
	if a.CorrectMethod && !a.CorrectAnswer {
		res.CalculationSupport = true
	}
	return res
}

// adjustment applies the level rules in priority order.
func adjustment(a Analysis) int {
	switch {
	case a.CorrectMethod && a.CorrectAnswer && a.Confidence > 0.8:
		return +1
	case !a.CorrectMethod || distinctCount(a.SpecificIssues) > 2:
		return -1
	default:
		// Method correct: hold the level. Covers both the
		// moderate-confidence case and calculation-only errors.
		return 0
	}
}

// variantFor derives the variant class from the success rate over the
// last historyWindow attempts.
func variantFor(history []Outcome) VariantClass {
	if len(history) == 0 {
		return VariantBasic
	}

	window := history
	if len(window) > historyWindow {
		window = window[len(window)-historyWindow:]
	}

	successes := 0
	for _, o := range window {
		if o.Success {
			successes++
		}
	}
	rate := float64(successes) / float64(len(window))

	switch {
	case rate >= 0.8:
		return VariantAdvanced
	case rate >= 0.6:
		return VariantIntermediate
	case rate >= 0.4:
		return VariantBasic
	default:
		return VariantFoundation
	}
}

func distinctCount(issues []string) int {
	seen := make(map[string]struct{}, len(issues))
	for _, issue := range issues {
		seen[issue] = struct{}{}
	}
	return len(seen)
}

func clampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}
