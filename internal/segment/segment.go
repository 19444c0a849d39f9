package segment

import (
	"regexp"
	"strings"
)

const (
	// minBlockLength is the shortest numbered-list block kept as a question.
	minBlockLength = 6

	// minWholeLength is the shortest whole-text fallback question.
	minWholeLength = 10

	// minEquationLength applies to the whole-text fallback when math
	// operator or equality characters are present: equations are
	// information-dense per character.
	minEquationLength = 3
)

// listMarker matches numbered-list item starts like "1." or "2)" at the
// beginning of a line.
var listMarker = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+`)

// mathChars signal equation-like content in the fallback path.
const mathChars = "=+−-*/×÷^√<>"

// Segment splits raw text into an ordered list of typed questions.
// The confidence argument is the extraction confidence; it is carried for
// future use by callers and does not change segmentation behavior.
func Segment(text string, confidence float64) []Question {
	_ = confidence
	blocks := splitNumbered(text)

	if len(blocks) == 0 {
		whole := strings.TrimSpace(text)
		minLen := minWholeLength
		if strings.ContainsAny(whole, mathChars) {
			minLen = minEquationLength
		}
		if len([]rune(whole)) < minLen {
			return nil
		}
		blocks = []string{whole}
	}

	questions := make([]Question, 0, len(blocks))
	for i, block := range blocks {
		q := Question{
			Ordinal:   i + 1,
			Text:      block,
			Type:      Classify(block),
			Params:    ExtractParams(block),
			ContentID: contentID(block),
		}
		questions = append(questions, q)
	}
	return questions
}

// splitNumbered splits text on numbered-list markers and discards blocks
// shorter than the minimum block length.
func splitNumbered(text string) []string {
	locs := listMarker.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	var blocks []string
	for i, loc := range locs {
		start := loc[1] // content begins after the marker
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		block := strings.TrimSpace(text[start:end])
		if len([]rune(block)) < minBlockLength {
			continue
		}
		blocks = append(blocks, block)
	}
	return blocks
}
