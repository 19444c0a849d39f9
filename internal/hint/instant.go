package hint

import (
	"strings"

	"github.com/rahulj/hintloop/internal/segment"
)

// instantTemplate is one pre-written hint for a (type, struggle) pairing.
// Any matches the struggle description case-insensitively; first match
// wins. Text and Example may carry {param} placeholders filled from the
// question's extracted parameters; a template whose placeholders cannot
// all be filled is skipped.
type instantTemplate struct {
	Any        []string
	Text       string
	Example    string
	Confidence float64
}

// instantTemplates maps question types to their template ladders.
// Confidence reflects how precisely the keyword pins down the struggle;
// broader keywords sit lower in the ladder with lower confidence.
var instantTemplates = map[segment.QuestionType][]instantTemplate{
	segment.TypeLinearEquation: {
		{
			Any:        []string{"isolate", "get x alone", "x by itself"},
			Text:       "To isolate x, undo the operations around it one at a time. Whatever you do to one side of the equation, do the same to the other side. Deal with addition or subtraction first, then multiplication or division.",
			Example:    "For 2x + 3 = 11: subtract 3 from both sides to get 2x = 8, then divide both sides by 2.",
			Confidence: 0.95,
		},
		{
			Any:        []string{"other side", "move the", "across the equals"},
			Text:       "Moving a term to the other side means applying its inverse operation to both sides. A term that is added moves across as a subtraction, and one that multiplies moves across as a division.",
			Example:    "In x + 5 = 9, subtracting 5 from both sides gives x = 9 - 5.",
			Confidence: 0.9,
		},
		{
			Any:        []string{"negative", "minus sign"},
			Text:       "Treat the minus sign as part of the number it sits in front of. When you move a negative term across the equals sign it becomes positive, and dividing both sides by a negative flips the sign of the result.",
			Confidence: 0.88,
		},
		{
			Any:        []string{"both sides", "balance"},
			Text:       "Think of the equation as a balance scale. It stays true only if you change both sides the same way, so every step you take must be applied to the left and the right.",
			Confidence: 0.85,
		},
	},
	segment.TypeQuadraticEquation: {
		{
			Any:        []string{"factor", "factoring", "factorise", "factorize"},
			Text:       "Look for two numbers that multiply to the constant term and add to the middle coefficient. Those two numbers give you the factored brackets, and each bracket set to zero gives one solution.",
			Example:    "x^2 + 5x + 6: 2 and 3 multiply to 6 and add to 5, so (x + 2)(x + 3) = 0.",
			Confidence: 0.92,
		},
		{
			Any:        []string{"formula", "quadratic formula"},
			Text:       "Write the equation as ax^2 + bx + c = 0 first, then read off a, b and c carefully, signs included. Substitute them into the quadratic formula and simplify under the square root before anything else.",
			Confidence: 0.88,
		},
	},
	segment.TypeTriangleArea: {
		{
			Any:        []string{"formula", "which numbers", "what to multiply", "area"},
			Text:       "The area of a triangle is half of base times height. Here the base is {base} and the height is {height}, so multiply {base} by {height} and then halve the result.",
			Confidence: 0.92,
		},
		{
			Any:        []string{"formula", "area", "half"},
			Text:       "The area of a triangle is half of base times height. Find the side the triangle sits on for the base, and the straight-up distance from that side to the opposite corner for the height.",
			Confidence: 0.85,
		},
		{
			Any:        []string{"height", "which side"},
			Text:       "The height is not always a side of the triangle. It is the perpendicular distance from the base to the opposite vertex, often drawn as a dashed line at a right angle to the base.",
			Confidence: 0.87,
		},
	},
	segment.TypeCircleArea: {
		{
			Any:        []string{"formula", "area", "pi"},
			Text:       "The area of a circle is pi times the radius squared. With radius {radius}, square {radius} first and then multiply by pi.",
			Confidence: 0.92,
		},
		{
			Any:        []string{"diameter", "radius"},
			Text:       "Check whether the question gives the radius or the diameter. The area formula uses the radius, which is half the diameter, so halve the diameter before squaring.",
			Confidence: 0.88,
		},
	},
	segment.TypeTrigonometry: {
		{
			Any:        []string{"which ratio", "sin or cos", "sohcahtoa", "which one"},
			Text:       "Label the triangle's sides relative to the angle you are working with: opposite, adjacent, hypotenuse. Then pick the ratio that uses the two sides you know or need: sin is opposite over hypotenuse, cos adjacent over hypotenuse, tan opposite over adjacent.",
			Confidence: 0.9,
		},
	},
	segment.TypeFraction: {
		{
			Any:        []string{"common denominator", "denominator", "different bottom"},
			Text:       "Before adding or subtracting fractions, rewrite them over a common denominator. Multiply top and bottom of each fraction by whatever makes the denominators equal, then combine only the numerators.",
			Example:    "1/3 + 1/4 becomes 4/12 + 3/12 = 7/12.",
			Confidence: 0.92,
		},
		{
			Any:        []string{"simplify", "lowest terms", "reduce"},
			Text:       "To simplify a fraction, find a number that divides both the top and the bottom, and divide both by it. Repeat until no shared factor is left.",
			Confidence: 0.85,
		},
	},
	segment.TypePercentage: {
		{
			Any:        []string{"percent of", "of a number", "find the percent"},
			Text:       "Turn the percentage into a decimal by dividing by 100, then multiply it by the amount. \"30% of 80\" is 0.30 times 80.",
			Confidence: 0.9,
		},
		{
			Any:        []string{"increase", "decrease", "change"},
			Text:       "For a percentage change, work out the change amount first, then divide it by the original value and multiply by 100. The original value is always the denominator.",
			Confidence: 0.85,
		},
	},
	segment.TypeWordProblem: {
		{
			Any:        []string{"where to start", "set up", "into an equation", "translate"},
			Text:       "Read the problem once just to find what it is asking for, and give that unknown a letter. Then go back through sentence by sentence and write each fact as an equation using that letter.",
			Confidence: 0.85,
		},
	},
}

// instantLookup returns a pre-written hint for the struggle, or nil when
// no template matches. Placeholders are substituted from the question's
// parameters; templates missing a required parameter are skipped so a
// later, parameter-free template can still match.
func instantLookup(q segment.Question, struggle string) *Hint {
	desc := strings.ToLower(struggle)
	for _, tpl := range instantTemplates[q.Type] {
		if !matchesAny(desc, tpl.Any) {
			continue
		}
		text, ok := fillParams(tpl.Text, q.Params)
		if !ok {
			continue
		}
		example, ok := fillParams(tpl.Example, q.Params)
		if !ok {
			example = ""
		}
		return &Hint{
			Text:          text,
			WorkedExample: example,
			Confidence:    tpl.Confidence,
			Source:        SourceInstant,
		}
	}
	return nil
}

func matchesAny(desc string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}

// fillParams substitutes {name} placeholders from params. It reports
// false when a placeholder has no matching parameter.
func fillParams(text string, params map[string]float64) (string, bool) {
	for {
		start := strings.IndexByte(text, '{')
		if start < 0 {
			return text, true
		}
		end := strings.IndexByte(text[start:], '}')
		if end < 0 {
			return text, true
		}
		name := text[start+1 : start+end]
		v, ok := params[name]
		if !ok {
			return "", false
		}
		text = text[:start] + formatNum(v) + text[start+end+1:]
	}
}
