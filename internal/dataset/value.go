package dataset

import (
	"database/sql/driver"
	"math"
	"strconv"
	"time"
)

// Complex is the typed representation of a complex_number cell.
// It follows the pgtype convention: Valid=false is the missing marker.
type Complex struct {
	Complex128 complex128
	Valid      bool
}

// Value implements driver.Valuer.
func (c Complex) Value() (driver.Value, error) {
	if !c.Valid {
		return nil, nil
	}
	return strconv.FormatComplex(c.Complex128, 'g', -1, 128), nil
}

// IsMissing reports whether v is the missing marker.
//
// nil, NaN floats and any driver.Valuer whose value is nil (an invalid
// pgtype value or Complex) all count as missing.
func IsMissing(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	case driver.Valuer:
		inner, err := x.Value()
		if err != nil || inner == nil {
			return true
		}
		if f, ok := inner.(float64); ok {
			return math.IsNaN(f)
		}
		return false
	}
	return false
}

// Plain unwraps typed cells into plain Go values (bool, int64, float64,
// string, time.Time). Missing cells return nil.
func Plain(v any) any {
	if IsMissing(v) {
		return nil
	}
	if x, ok := v.(driver.Valuer); ok {
		inner, _ := x.Value()
		return inner
	}
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	}
	return v
}

// Text renders a cell as the string form used for pattern matching and
// distinct-value counting. Missing cells render as "".
func Text(v any) string {
	switch x := Plain(v).(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.RFC3339Nano)
	case []byte:
		return string(x)
	case interface{ String() string }:
		return x.String()
	default:
		return ""
	}
}
