package clarify

import "strings"

// Confirmation is the outcome of classifying a confirmation utterance.
type Confirmation int

const (
	// NotConfirmed covers negative and ambiguous responses alike:
	// ambiguity defaults to re-probing, never to silent confirmation.
	NotConfirmed Confirmation = iota
	Confirmed
)

// affirmativePhrases and negativePhrases form the fixed confirmation
// vocabulary. Any negative marker wins over affirmatives.
var affirmativePhrases = []string{
	"yes", "yeah", "yep", "yup", "right", "correct", "exactly",
	"that's it", "thats it", "true", "sure", "ok", "okay",
}

var negativePhrases = []string{
	"no", "nope", "nah", "not", "wrong", "incorrect",
	"that's not", "thats not", "actually",
}

// ClassifyConfirmation applies the vocabulary: affirmative without any
// negative marker confirms; anything else does not.
func ClassifyConfirmation(utterance string) Confirmation {
	lower := strings.ToLower(strings.TrimSpace(utterance))
	if lower == "" {
		return NotConfirmed
	}

	for _, neg := range negativePhrases {
		if containsPhrase(lower, neg) {
			return NotConfirmed
		}
	}
	for _, aff := range affirmativePhrases {
		if containsPhrase(lower, aff) {
			return Confirmed
		}
	}
	return NotConfirmed
}

// containsPhrase matches the phrase on word boundaries so "no" does not
// match inside "know".
func containsPhrase(text, phrase string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], phrase)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(phrase)
		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '\''
}
