package clarify

import (
	"regexp"

	"github.com/rahulj/hintloop/internal/segment"
)

// Indicator is one weighted clarity rule. Tables are data so every rule
// can be unit-tested on its own; evaluation is top-down, first-match-wins.
type Indicator struct {
	Pattern    *regexp.Regexp
	Confidence float64
	// Struggle is the synthesized struggle description for a match.
	Struggle string
	// Probe suggests the next clarification question when this indicator
	// almost-matches the conversation (used by fallback synthesis).
	Probe string
}

// typeIndicators are question-type-specific struggle patterns. A match
// classifies the turn as clear with the indicator's confidence.
var typeIndicators = map[segment.QuestionType][]Indicator{
	segment.TypeLinearEquation: {
		{regexp.MustCompile(`(?i)isolat\w*`), 0.9, "isolating the variable on one side", "probe_isolate"},
		{regexp.MustCompile(`(?i)(move|moving|get)\b.*\b(other side|across)`), 0.88, "moving terms across the equals sign", "probe_transpose"},
		{regexp.MustCompile(`(?i)(inverse|opposite)\s+operation`), 0.87, "choosing the inverse operation", "probe_inverse"},
		{regexp.MustCompile(`(?i)both\s+sides`), 0.85, "applying the same operation to both sides", "probe_balance"},
		{regexp.MustCompile(`(?i)negative\s+(sign|number)`), 0.82, "handling negative signs", "probe_signs"},
	},
	segment.TypeQuadraticEquation: {
		{regexp.MustCompile(`(?i)factor\w*`), 0.88, "factoring the quadratic", "probe_factor"},
		{regexp.MustCompile(`(?i)(quadratic\s+)?formula`), 0.85, "applying the quadratic formula", "probe_formula"},
		{regexp.MustCompile(`(?i)discriminant`), 0.9, "using the discriminant", "probe_discriminant"},
	},
	segment.TypeTriangleArea: {
		{regexp.MustCompile(`(?i)(which|what)\s+formula`), 0.88, "recalling the area formula", "probe_formula"},
		{regexp.MustCompile(`(?i)(base|height)`), 0.85, "identifying the base and height", "probe_base_height"},
		{regexp.MustCompile(`(?i)(half|1/2|divide\w*\s+by\s+(2|two))`), 0.85, "remembering the half in (1/2) x base x height", "probe_half"},
	},
	segment.TypeCircleArea: {
		{regexp.MustCompile(`(?i)(pi|π)`), 0.85, "using pi in the circle formula", "probe_pi"},
		{regexp.MustCompile(`(?i)(radius|diameter)`), 0.85, "telling radius and diameter apart", "probe_radius"},
		{regexp.MustCompile(`(?i)squar\w*`), 0.82, "squaring the radius", "probe_square"},
	},
	segment.TypeTrigonometry: {
		{regexp.MustCompile(`(?i)(which|what)\s+(ratio|function)`), 0.9, "choosing the right trig ratio", "probe_ratio"},
		{regexp.MustCompile(`(?i)soh\s*cah\s*toa`), 0.88, "applying SOH CAH TOA", "probe_sohcahtoa"},
		{regexp.MustCompile(`(?i)(opposite|adjacent|hypotenuse)`), 0.86, "labeling the triangle sides", "probe_sides"},
	},
	segment.TypeFraction: {
		{regexp.MustCompile(`(?i)common\s+denominator`), 0.9, "finding a common denominator", "probe_denominator"},
		{regexp.MustCompile(`(?i)simplif\w*`), 0.85, "simplifying the fraction", "probe_simplify"},
		{regexp.MustCompile(`(?i)(top|bottom|numerator|denominator)`), 0.82, "working with numerator and denominator", "probe_parts"},
	},
	segment.TypePercentage: {
		{regexp.MustCompile(`(?i)(convert|turn)\w*\b.*\b(decimal|fraction|percent)`), 0.88, "converting between percent and decimal", "probe_convert"},
		{regexp.MustCompile(`(?i)\bof\s+(a\s+)?(number|amount|total)`), 0.82, "taking a percentage of an amount", "probe_of"},
	},
	segment.TypeWordProblem: {
		{regexp.MustCompile(`(?i)(set|write|turn)\w*\b.*\b(equation|expression)`), 0.88, "translating the words into an equation", "probe_translate"},
		{regexp.MustCompile(`(?i)(what|which)\s+operation`), 0.85, "choosing the operation", "probe_operation"},
	},
}

// genericIndicators are struggle-language patterns that apply to any
// question type. A match classifies the turn as clear, at lower
// confidence than a type-specific hit.
var genericIndicators = []Indicator{
	{regexp.MustCompile(`(?i)(don'?t|do\s+not)\s+(know|understand|get)\s+(how|where|what|why)`), 0.75, "not knowing how to approach the problem", "probe_approach"},
	{regexp.MustCompile(`(?i)(stuck|confused|lost)\s+(on|about|with|at)`), 0.72, "being stuck on a specific part", "probe_where_stuck"},
	{regexp.MustCompile(`(?i)(first|next)\s+step`), 0.72, "finding the first or next step", "probe_step"},
	{regexp.MustCompile(`(?i)how\s+(do|to|can)\s+(i|you|we)?`), 0.7, "not knowing the method", "probe_method"},
}

// topicIndicators is the looser topic-level pattern set the intelligent
// fallback re-tests the whole transcript against. Heuristic, tunable.
var topicIndicators = []Indicator{
	{regexp.MustCompile(`(?i)(equation|solve|\bx\b|variable)`), 0.65, "working with the equation", ""},
	{regexp.MustCompile(`(?i)(formula|area|shape)`), 0.65, "recalling and applying the right formula", ""},
	{regexp.MustCompile(`(?i)(fraction|percent|decimal)`), 0.65, "working with fractions and percentages", ""},
	{regexp.MustCompile(`(?i)(step|start|begin|first)`), 0.62, "getting started on the problem", ""},
	{regexp.MustCompile(`(?i)(hard|difficult|tricky|help)`), 0.6, "the overall approach to this problem", ""},
}

// struggleKeywords feed the moderate/unclear/vague heuristics.
var struggleKeywords = regexp.MustCompile(`(?i)\b(know|understand|stuck|confused|hard|difficult|help|wrong|can'?t)\b`)
