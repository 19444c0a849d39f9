package segment

import "strings"

// TypeRule is one entry in the classification ladder. A rule matches when
// every phrase in All and at least one phrase in Any (when set) appear in
// the lowercased question text.
type TypeRule struct {
	Type QuestionType
	All  []string
	Any  []string
}

// DefaultTypeRules returns the classification ladder in priority order.
// Evaluation is top-down, first-match-wins; the table is data so each
// rule can be tested on its own.
func DefaultTypeRules() []TypeRule {
	return []TypeRule{
		{Type: TypeTriangleArea, All: []string{"area", "triangle"}},
		{Type: TypeCircleArea, All: []string{"circle"}, Any: []string{"area", "circumference", "radius"}},
		{Type: TypeTrigonometry, Any: []string{"sin", "cos", "tan", "trigonometr"}},
		{Type: TypeQuadraticEquation, Any: []string{"quadratic", "x^2", "x²"}},
		{Type: TypeLinearEquation, All: []string{"="}, Any: []string{"solve", "x", "y"}},
		{Type: TypeFraction, Any: []string{"fraction", "numerator", "denominator"}},
		{Type: TypePercentage, Any: []string{"percent", "%"}},
		{Type: TypeWordProblem, Any: []string{"how many", "how much", "altogether", "in total"}},
	}
}

// Classify returns the question type for a block of text using the
// default rule ladder.
func Classify(text string) QuestionType {
	return ClassifyWith(DefaultTypeRules(), text)
}

// ClassifyWith evaluates rules top-down and returns the first match,
// or TypeGeneral when nothing applies.
func ClassifyWith(rules []TypeRule, text string) QuestionType {
	lower := strings.ToLower(text)
	for _, r := range rules {
		if r.matches(lower) {
			return r.Type
		}
	}
	return TypeGeneral
}

func (r TypeRule) matches(lower string) bool {
	for _, phrase := range r.All {
		if !strings.Contains(lower, phrase) {
			return false
		}
	}
	if len(r.Any) == 0 {
		return len(r.All) > 0
	}
	for _, phrase := range r.Any {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
