package hint

import "github.com/rahulj/hintloop/internal/segment"

// staticConfidence is assigned to per-type fallback hints. They address
// the question type, not the specific struggle.
const staticConfidence = 0.5

// staticHints are the per-type fallbacks used when every earlier tier
// fails. Generic but always available and always on topic.
var staticHints = map[segment.QuestionType]string{
	segment.TypeLinearEquation:    "Work on getting x by itself. Undo what is around it one operation at a time, and always do the same thing to both sides of the equation.",
	segment.TypeQuadraticEquation: "Get everything onto one side so the equation equals zero, then try factoring. If no factors jump out, the quadratic formula always works.",
	segment.TypeTriangleArea:      "The area of a triangle is half of base times height. Identify which measurement is the base and which is the perpendicular height before multiplying.",
	segment.TypeCircleArea:        "The area of a circle is pi times the radius squared. Make sure you are using the radius, not the diameter.",
	segment.TypeTrigonometry:      "Label the sides of the triangle as opposite, adjacent and hypotenuse relative to your angle, then choose the ratio that links the sides you know to the one you want.",
	segment.TypeFraction:          "When the denominators differ, rewrite the fractions over a common denominator before combining them. Only the numerators get added or subtracted.",
	segment.TypePercentage:        "Convert the percentage to a decimal by dividing by 100, then multiply. Keep track of which value is the original whole.",
	segment.TypeWordProblem:       "Name the unknown with a letter, then translate the problem one sentence at a time into equations using that letter. Solve the equations, then check the answer against the story.",
	segment.TypeGeneral:           "Break the problem into smaller steps and write down what you know alongside what you are asked to find. Often the first step is just connecting those two lists.",
}

// emergencyText is the terminal tier; delivered when even the static
// table has nothing for the question type.
const emergencyText = "I'm having trouble putting together a good hint right now. Try re-reading the question and writing down what it gives you and what it asks for, or ask me again in a moment."

// staticLookup returns the per-type fallback hint, or nil for a type
// outside the table.
func staticLookup(t segment.QuestionType) *Hint {
	text, ok := staticHints[t]
	if !ok {
		return nil
	}
	return &Hint{
		Text:       text,
		Confidence: staticConfidence,
		Source:     SourceFallback,
	}
}

// emergencyHint returns the terminal hint.
func emergencyHint() *Hint {
	return &Hint{
		Text:       emergencyText,
		Confidence: 0.2,
		Source:     SourceEmergency,
	}
}
