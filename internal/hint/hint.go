package hint

import (
	"strconv"
	"time"
)

// Source identifies which tier produced a hint. Ordered from fastest to
// last resort; resolution tries them in this order.
type Source string

const (
	SourceInstant   Source = "instant"
	SourceCached    Source = "cached"
	SourceGenerated Source = "generated"
	SourceFallback  Source = "fallback"
	SourceEmergency Source = "emergency"
)

// Hint is one resolved hint ready for delivery.
type Hint struct {
	// Text is the hint body shown to the student.
	Text string

	// WorkedExample is an optional short parallel example. Empty for
	// tiers that cannot produce one.
	WorkedExample string

	// Confidence is how well the hint is expected to match the struggle,
	// in [0,1].
	Confidence float64

	// Source is the tier that produced the hint.
	Source Source

	// Model is the backend model for generated hints, empty otherwise.
	Model string

	// Tokens is the total token cost for generated hints, zero otherwise.
	Tokens int

	// Latency is the wall time resolution spent on this hint.
	Latency time.Duration
}

// formatNum renders a parameter value the way a tutor would write it,
// without a trailing ".0" on whole numbers.
func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
