package inference

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/vincentarsontaneli/data-processor-app/internal/convert"
)

// Evidence records why a heuristic matched.
type Evidence struct {
	// Heuristic is the name of the heuristic that decided the type.
	Heuristic string `json:"heuristic"`
	// Matched is the number of sample values that satisfied the test.
	Matched int `json:"matched"`
	// Considered is the number of sample values the test looked at.
	Considered int `json:"considered"`
	// Ratio is Matched/Considered, or the distinct ratio for
	// identifier and categorical tests.
	Ratio float64 `json:"ratio"`
	// Threshold is the configured bound the ratio was compared against.
	Threshold float64 `json:"threshold"`
}

// Heuristic is one step of the classifier chain. Evaluate returns ok=false
// when the sample does not satisfy the heuristic.
type Heuristic struct {
	Name     string
	Evaluate func(s Sample, th Thresholds) (SemanticType, Evidence, bool)
}

// Heuristic names.
const (
	HeuristicAllMissing  = "all_missing"
	HeuristicBoolean     = "boolean"
	HeuristicPercentage  = "percentage"
	HeuristicComplex     = "complex_number"
	HeuristicNumeric     = "numeric"
	HeuristicDatetime    = "datetime"
	HeuristicIdentifier  = "identifier_string"
	HeuristicCategorical = "categorical"
	HeuristicText        = "text"
	HeuristicFallback    = "fallback"
	HeuristicOverride    = "override"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9\-_.]+$`)

// DefaultChain returns the heuristics in precedence order.
func DefaultChain() []Heuristic {
	return []Heuristic{
		{Name: HeuristicBoolean, Evaluate: evalBoolean},
		{Name: HeuristicPercentage, Evaluate: evalPercentage},
		{Name: HeuristicComplex, Evaluate: evalComplex},
		{Name: HeuristicNumeric, Evaluate: evalNumeric},
		{Name: HeuristicDatetime, Evaluate: evalDatetime},
		{Name: HeuristicIdentifier, Evaluate: evalIdentifier},
		{Name: HeuristicCategorical, Evaluate: evalCategorical},
		{Name: HeuristicText, Evaluate: evalText},
		{Name: HeuristicFallback, Evaluate: evalFallback},
	}
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func countMatching(values []string, pred func(string) bool) int {
	n := 0
	for _, v := range values {
		if pred(v) {
			n++
		}
	}
	return n
}

func evalBoolean(s Sample, th Thresholds) (SemanticType, Evidence, bool) {
	matched := countMatching(s.Values, convert.IsBooleanToken)
	ev := Evidence{
		Heuristic:  HeuristicBoolean,
		Matched:    matched,
		Considered: s.Len(),
		Ratio:      ratio(matched, s.Len()),
		Threshold:  th.BooleanMinRatio,
	}
	return Boolean, ev, s.Len() > 0 && ev.Ratio >= th.BooleanMinRatio
}

func evalPercentage(s Sample, _ Thresholds) (SemanticType, Evidence, bool) {
	matched := countMatching(s.Values, convert.HasPercentSuffix)
	ev := Evidence{
		Heuristic:  HeuristicPercentage,
		Matched:    matched,
		Considered: s.Len(),
		Ratio:      ratio(matched, s.Len()),
	}
	return Percentage, ev, matched > 0
}

func evalComplex(s Sample, _ Thresholds) (SemanticType, Evidence, bool) {
	matched := countMatching(s.Values, convert.IsComplexLiteral)
	ev := Evidence{
		Heuristic:  HeuristicComplex,
		Matched:    matched,
		Considered: s.Len(),
		Ratio:      ratio(matched, s.Len()),
	}
	return ComplexNumber, ev, matched > 0
}

func evalNumeric(s Sample, th Thresholds) (SemanticType, Evidence, bool) {
	matched := 0
	integral := true
	for _, v := range s.Values {
		if !convert.IsNumeric(v) {
			continue
		}
		matched++
		if integral {
			d, ok := convert.ParseDecimal(v)
			if !ok || !convert.IsIntegral(d) {
				integral = false
			}
		}
	}

	ev := Evidence{
		Heuristic:  HeuristicNumeric,
		Matched:    matched,
		Considered: s.Len(),
		Ratio:      ratio(matched, s.Len()),
		Threshold:  th.NumericMinRatio,
	}
	if matched == 0 || ev.Ratio < th.NumericMinRatio {
		return Unknown, ev, false
	}
	if integral {
		return Integer, ev, true
	}
	return Float, ev, true
}

func evalDatetime(s Sample, th Thresholds) (SemanticType, Evidence, bool) {
	probe := s.Values
	if len(probe) > th.DateProbeCount {
		probe = probe[:th.DateProbeCount]
	}

	attempted, parsed := 0, 0
	for _, v := range probe {
		if len(strings.TrimSpace(v)) < th.DateMinLength {
			continue
		}
		attempted++
		if _, ok := convert.ParseDateTime(v); ok {
			parsed++
		}
	}

	ev := Evidence{
		Heuristic:  HeuristicDatetime,
		Matched:    parsed,
		Considered: attempted,
		Ratio:      ratio(parsed, attempted),
		Threshold:  th.DateMinRatio,
	}
	return Datetime, ev, attempted > 0 && parsed > 0 && ev.Ratio >= th.DateMinRatio
}

func distinct(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}

func hasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

func evalIdentifier(s Sample, th Thresholds) (SemanticType, Evidence, bool) {
	ev := Evidence{
		Heuristic:  HeuristicIdentifier,
		Considered: s.Len(),
		Threshold:  th.IdentifierMinDistinctRatio,
	}
	if s.Len() == 0 {
		return IdentifierString, ev, false
	}
	for _, v := range s.Values {
		if !identifierPattern.MatchString(v) || !hasDigit(v) {
			return IdentifierString, ev, false
		}
		ev.Matched++
	}
	ev.Ratio = ratio(distinct(s.Values), s.Len())
	return IdentifierString, ev, ev.Ratio >= th.IdentifierMinDistinctRatio
}

func evalCategorical(s Sample, th Thresholds) (SemanticType, Evidence, bool) {
	d := distinct(s.Values)
	ev := Evidence{
		Heuristic:  HeuristicCategorical,
		Matched:    d,
		Considered: s.Len(),
		Ratio:      ratio(d, s.Len()),
		Threshold:  th.CategoricalMaxRatio,
	}
	return Categorical, ev, s.Len() > th.CategoricalMinCount && ev.Ratio < th.CategoricalMaxRatio
}

func isTextValue(v string) bool {
	letters := 0
	for _, r := range v {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsSpace(r):
		case strings.ContainsRune("-_.,'&/", r):
		default:
			return false
		}
	}
	return letters > 0
}

func evalText(s Sample, _ Thresholds) (SemanticType, Evidence, bool) {
	matched := countMatching(s.Values, isTextValue)
	ev := Evidence{
		Heuristic:  HeuristicText,
		Matched:    matched,
		Considered: s.Len(),
		Ratio:      ratio(matched, s.Len()),
		Threshold:  1,
	}
	return Text, ev, s.Len() > 0 && matched == s.Len()
}

func evalFallback(s Sample, _ Thresholds) (SemanticType, Evidence, bool) {
	return Unknown, Evidence{Heuristic: HeuristicFallback, Considered: s.Len()}, true
}
