package segment

import (
	"fmt"
	"regexp"
	"strconv"
)

// paramLabels is the fixed set of labeled-value patterns recognized in
// question text.
var paramLabels = []string{
	"base", "height", "radius", "diameter", "width", "length",
	"side", "angle", "rate", "time", "distance", "price",
}

var paramPatterns = buildParamPatterns()

func buildParamPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(paramLabels))
	for _, label := range paramLabels {
		patterns[label] = regexp.MustCompile(
			fmt.Sprintf(`(?i)\b%s\s*[=:]\s*(-?\d+(?:\.\d+)?)`, label))
	}
	return patterns
}

// ExtractParams pulls labeled numeric parameters ("base = 6",
// "radius: 2.5") out of question text. Unmatched labels are absent from
// the returned map.
func ExtractParams(text string) map[string]float64 {
	params := make(map[string]float64)
	for label, re := range paramPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		params[label] = v
	}
	return params
}
