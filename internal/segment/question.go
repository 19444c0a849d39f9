package segment

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// QuestionType classifies a segmented question. The taxonomy is closed
// but extensible: unknown material falls through to TypeGeneral.
type QuestionType string

const (
	TypeLinearEquation    QuestionType = "linear_equation"
	TypeQuadraticEquation QuestionType = "quadratic_equation"
	TypeTriangleArea      QuestionType = "triangle_area"
	TypeCircleArea        QuestionType = "circle_area"
	TypeTrigonometry      QuestionType = "trigonometry"
	TypeFraction          QuestionType = "fraction"
	TypePercentage        QuestionType = "percentage"
	TypeWordProblem       QuestionType = "word_problem"
	TypeGeneral           QuestionType = "general"
)

// Question is one segmented unit of problem text. Immutable once created;
// re-segmentation replaces the whole set.
type Question struct {
	// Ordinal is the 1-based position within the segmented input.
	Ordinal int

	// Text is the raw question text.
	Text string

	// Type is the classified question type.
	Type QuestionType

	// Params holds extracted numeric parameters, e.g. "base" → 6.
	Params map[string]float64

	// ContentID is a stable identifier derived from the question text.
	ContentID string
}

// contentID derives a stable identifier from normalized question text.
func contentID(text string) string {
	norm := strings.ToLower(strings.Join(strings.Fields(text), " "))
	sum := sha256.Sum256([]byte(norm))
	return hex.EncodeToString(sum[:])[:12]
}
