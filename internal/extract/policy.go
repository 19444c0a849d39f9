package extract

import "sync"

// Decision is the retry-vs-proceed-vs-switch outcome for one extraction.
type Decision string

const (
	// DecisionProceed moves straight to segmentation.
	DecisionProceed Decision = "proceed"

	// DecisionProceedFlagged proceeds but marks the session for extra
	// validation downstream.
	DecisionProceedFlagged Decision = "proceed_flagged"

	// DecisionRetry asks the user to re-capture the input.
	DecisionRetry Decision = "retry"

	// DecisionSwitchInput switches the session to direct-text input after
	// repeated low-confidence extractions.
	DecisionSwitchInput Decision = "switch_input"

	// DecisionForceInput forces direct-text input unconditionally.
	DecisionForceInput Decision = "force_input"
)

// Policy tracks consecutive low-confidence failures per user and input
// slot and decides how to proceed after each extraction. Failure counts
// are per user, never global.
type Policy struct {
	mu       sync.Mutex
	failures map[string]int // "userID|slot" → consecutive low count
}

// NewPolicy creates an empty Policy.
func NewPolicy() *Policy {
	return &Policy{failures: make(map[string]int)}
}

// Decide applies the verdict policy for one user and input slot.
// A high or medium verdict resets the failure streak. A low verdict
// escalates: retry guidance on the first failure, input-mode switch on
// the second consecutive failure, forced switch on the third.
func (p *Policy) Decide(userID, slot string, a Assessment) Decision {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := userID + "|" + slot

	switch a.Verdict {
	case VerdictHigh:
		delete(p.failures, key)
		return DecisionProceed
	case VerdictMedium:
		delete(p.failures, key)
		return DecisionProceedFlagged
	}

	p.failures[key]++
	switch p.failures[key] {
	case 1:
		return DecisionRetry
	case 2:
		return DecisionSwitchInput
	default:
		return DecisionForceInput
	}
}

// Reset clears the failure streak for a user's input slot, e.g. when the
// session is reset.
func (p *Policy) Reset(userID, slot string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failures, userID+"|"+slot)
}
