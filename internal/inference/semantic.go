package inference

import (
	"fmt"
	"strings"
)

// SemanticType is the inferred logical type of a column.
type SemanticType string

const (
	Boolean          SemanticType = "boolean"
	Integer          SemanticType = "integer"
	Float            SemanticType = "float"
	Percentage       SemanticType = "percentage"
	ComplexNumber    SemanticType = "complex_number"
	Datetime         SemanticType = "datetime"
	Categorical      SemanticType = "categorical"
	IdentifierString SemanticType = "identifier_string"
	Text             SemanticType = "text"
	Unknown          SemanticType = "unknown"
)

// AllTypes lists every semantic type in classifier precedence order, with
// Unknown last.
var AllTypes = []SemanticType{
	Boolean, Percentage, ComplexNumber, Integer, Float, Datetime,
	IdentifierString, Categorical, Text, Unknown,
}

// String implements fmt.Stringer.
func (t SemanticType) String() string {
	return string(t)
}

// Label returns the display name used by the preview UI.
func (t SemanticType) Label() string {
	switch t {
	case Boolean:
		return "Boolean"
	case Integer:
		return "Integer"
	case Float:
		return "Decimal"
	case Percentage:
		return "Percentage"
	case ComplexNumber:
		return "Complex Number"
	case Datetime:
		return "Date/Time"
	case Categorical:
		return "Category"
	case IdentifierString:
		return "Alphanumeric"
	case Text:
		return "Text"
	default:
		return "Unknown"
	}
}

// ParseSemanticType parses a type name case-insensitively. A few aliases
// used by older clients ("int64", "float64", "bool", "category",
// "datetime64[ns]", "object", "complex") are accepted.
func ParseSemanticType(s string) (SemanticType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, t := range AllTypes {
		if name == string(t) {
			return t, nil
		}
	}
	switch name {
	case "int64", "int", "int32":
		return Integer, nil
	case "float64", "float32", "decimal", "number":
		return Float, nil
	case "bool":
		return Boolean, nil
	case "category":
		return Categorical, nil
	case "datetime64[ns]", "date", "timestamp":
		return Datetime, nil
	case "complex", "complex128":
		return ComplexNumber, nil
	case "object", "string":
		return Unknown, nil
	}
	return "", fmt.Errorf("unknown semantic type %q", s)
}

// conversionRules lists the targets a column may be pinned to given its
// inferred type. A type may always be pinned to itself.
var conversionRules = map[SemanticType][]SemanticType{
	Boolean:          {Integer, Float, IdentifierString, Text},
	Integer:          {Float, Boolean, IdentifierString, Text, ComplexNumber, Categorical},
	Float:            {Integer, Boolean, IdentifierString, Text, ComplexNumber},
	Percentage:       {Float, Text},
	ComplexNumber:    {IdentifierString, Text},
	Datetime:         {IdentifierString, Text},
	Categorical:      {IdentifierString, Text},
	IdentifierString: {Text, Categorical},
	Text:             {IdentifierString, Categorical},
}

// CanConvert reports whether a column inferred as from may be overridden
// to the type to. Unknown columns accept any target.
func CanConvert(from, to SemanticType) bool {
	if from == to || from == Unknown || to == Unknown {
		return true
	}
	for _, t := range conversionRules[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Conversions returns the allowed override targets for t, including t.
func Conversions(t SemanticType) []SemanticType {
	if t == Unknown {
		return append([]SemanticType(nil), AllTypes...)
	}
	out := []SemanticType{t}
	out = append(out, conversionRules[t]...)
	return append(out, Unknown)
}
