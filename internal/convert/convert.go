// Package convert provides value-level parsing for raw table cells.
//
// These functions handle the messy reality of user-provided spreadsheets:
//   - Multiple date formats (US, EU, ISO, long month names, timestamps)
//   - Thousands separators and trailing percent signs in numbers
//   - Various boolean representations (yes/no, true/false, 1/0, t/f, y/n)
//   - Complex literals written with either an i or a j suffix
//   - Excel formula prefixes (="value")
//
// Parse* functions report success with a bool and never panic. ToPg*
// functions return pgtype values with Valid=false for empty/invalid input,
// which is the missing marker of typed columns.
package convert

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// NumericPattern matches a plain numeric literal once thousands separators
// are removed: optional sign, optional decimal point, digits.
var NumericPattern = regexp.MustCompile(`^[-+]?\d*\.?\d+$`)

// complexPattern matches an optional real part followed by a signed
// imaginary part with an i or j suffix.
var complexPattern = regexp.MustCompile(`^(?:[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?)?[-+]?(?:\d+\.?\d*|\.\d+)?(?:[eE][-+]?\d+)?[ij]$`)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

// Date layouts split by year format for proper 2-digit year handling
var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"Jan 2, 2006", "January 2, 2006", "2 Jan 2006", "2 January 2006", "02-Jan-2006",
		"20060102",
	}
	timestampLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04",
		"1/2/2006 15:04:05",
		"1/2/2006 15:04",
		"01/02/2006 3:04 PM",
	}
)

// booleanTokens maps upper-cased tokens to their boolean value.
var booleanTokens = map[string]bool{
	"TRUE": true, "FALSE": false,
	"YES": true, "NO": false,
	"Y": true, "N": false,
	"1": true, "0": false,
	"T": true, "F": false,
}

// IsBooleanToken reports whether s belongs to the truthy/falsy token set.
func IsBooleanToken(s string) bool {
	_, ok := booleanTokens[strings.ToUpper(strings.TrimSpace(s))]
	return ok
}

// ParseBool accepts various representations: true/false, yes/no, t/f, y/n, 1/0.
// Matching is case-insensitive and whitespace-tolerant.
func ParseBool(s string) (bool, bool) {
	b, ok := booleanTokens[strings.ToUpper(strings.TrimSpace(s))]
	return b, ok
}

// StripThousands removes thousands separators and surrounding whitespace.
func StripThousands(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
}

// IsNumeric reports whether s is a numeric literal after removing
// thousands separators.
func IsNumeric(s string) bool {
	return NumericPattern.MatchString(StripThousands(s))
}

// ParseDecimal parses a numeric literal exactly. Thousands separators are
// removed first; scientific notation is accepted.
func ParseDecimal(s string) (decimal.Decimal, bool) {
	s = StripThousands(s)
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// IsIntegral reports whether d has no fractional part.
func IsIntegral(d decimal.Decimal) bool {
	return d.Mod(decimal.NewFromInt(1)).IsZero()
}

// ParseInt parses an integral numeric literal. It returns integral=false
// when the value parses but has a fractional part or overflows int64.
func ParseInt(s string) (n int64, integral bool, ok bool) {
	d, ok := ParseDecimal(s)
	if !ok {
		return 0, false, false
	}
	if !IsIntegral(d) {
		return 0, false, true
	}
	bi := d.BigInt()
	if !bi.IsInt64() {
		return 0, false, true
	}
	return bi.Int64(), true, true
}

// ParseFloat parses a numeric literal as float64. Thousands separators are
// removed first; "inf" and "nan" spellings are rejected.
func ParseFloat(s string) (float64, bool) {
	d, ok := ParseDecimal(s)
	if !ok {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

// HasPercentSuffix reports whether s ends with a percent sign.
func HasPercentSuffix(s string) bool {
	return strings.HasSuffix(strings.TrimSpace(s), "%")
}

// ParsePercentage strips a trailing % and thousands separators and returns
// the amount divided by 100.
func ParsePercentage(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	f, ok := ParseFloat(s)
	if !ok {
		return 0, false
	}
	return f / 100, true
}

// normalizeComplex removes spaces and rewrites a j suffix to i.
func normalizeComplex(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if strings.HasSuffix(s, "j") || strings.HasSuffix(s, "J") {
		s = s[:len(s)-1] + "i"
	}
	return s
}

// IsComplexLiteral reports whether s looks like a complex number literal
// such as "3+4j", "-2.5i" or "1-0.5i". At least one digit is required.
func IsComplexLiteral(s string) bool {
	s = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if !strings.ContainsAny(s, "0123456789") {
		return false
	}
	return complexPattern.MatchString(s)
}

// ParseComplex parses a complex literal with an i or j suffix.
// Plain real numbers are accepted as complex values with zero imaginary part.
func ParseComplex(s string) (complex128, bool) {
	s = normalizeComplex(s)
	if s == "" {
		return 0, false
	}
	c, err := strconv.ParseComplex(s, 128)
	if err != nil {
		return 0, false
	}
	return c, true
}

// ParseDateTime parses s with the known layouts first and falls back to
// general-purpose date parsing.
func ParseDateTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	// Try 4-digit year layouts first (unambiguous)
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	// Try 2-digit year layouts with pivot year adjustment
	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ToPgText converts a string to pgtype.Text.
// Returns invalid if the string is empty or only whitespace.
func ToPgText(s string) pgtype.Text {
	if strings.TrimSpace(s) == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgBool converts a string to pgtype.Bool.
func ToPgBool(s string) pgtype.Bool {
	b, ok := ParseBool(s)
	if !ok {
		return pgtype.Bool{Valid: false}
	}
	return pgtype.Bool{Bool: b, Valid: true}
}

// ToPgFloat8 converts a numeric string to pgtype.Float8.
func ToPgFloat8(s string) pgtype.Float8 {
	f, ok := ParseFloat(s)
	if !ok {
		return pgtype.Float8{Valid: false}
	}
	return pgtype.Float8{Float64: f, Valid: true}
}

// ToPgTimestamp converts a date/time string to pgtype.Timestamp.
func ToPgTimestamp(s string) pgtype.Timestamp {
	t, ok := ParseDateTime(s)
	if !ok {
		return pgtype.Timestamp{Valid: false}
	}
	return pgtype.Timestamp{Time: t, Valid: true}
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}

	return strings.Trim(s, `"`)
}
