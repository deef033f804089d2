package convert

import (
	"testing"
	"time"
)

// ----------------------------------------------------------------------------
// ParseBool Tests
// ----------------------------------------------------------------------------

func TestParseBool(t *testing.T) {
	tests := []struct {
		input  string
		wantOK bool
		want   bool
	}{
		{"true", true, true},
		{"TRUE", true, true},
		{"  yes ", true, true},
		{"Y", true, true},
		{"t", true, true},
		{"1", true, true},
		{"false", true, false},
		{"No", true, false},
		{"n", true, false},
		{"F", true, false},
		{"0", true, false},
		{"maybe", false, false},
		{"", false, false},
		{"2", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseBool(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseBool(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseBool(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Numeric Tests
// ----------------------------------------------------------------------------

func TestIsNumeric(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"123", true},
		{"-456", true},
		{"+7", true},
		{"123.45", true},
		{".99", true},
		{"1,234,567.89", true},
		{" 42 ", true},
		{"99.", false},
		{"1e5", false},
		{"abc", false},
		{"", false},
		{"12%", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsNumeric(tt.input); got != tt.want {
				t.Errorf("IsNumeric(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		want         int64
		wantIntegral bool
		wantOK       bool
	}{
		{"plain", "42", 42, true, true},
		{"thousands", "1,000,000", 1000000, true, true},
		{"trailing zero fraction", "3.0", 3, true, true},
		{"negative", "-17", -17, true, true},
		{"fraction", "2.5", 0, false, true},
		{"overflow", "99999999999999999999", 0, false, true},
		{"garbage", "x1", 0, false, false},
		{"empty", "", 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, integral, ok := ParseInt(tt.input)
			if ok != tt.wantOK || integral != tt.wantIntegral {
				t.Fatalf("ParseInt(%q) = (_, %v, %v), want (_, %v, %v)",
					tt.input, integral, ok, tt.wantIntegral, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseInt(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		input  string
		want   float64
		wantOK bool
	}{
		{"2.5", 2.5, true},
		{"1,234.5", 1234.5, true},
		{"-0.25", -0.25, true},
		{"1e3", 1000, true},
		{"inf", 0, false},
		{"NaN", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseFloat(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseFloat(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseFloat(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePercentage(t *testing.T) {
	tests := []struct {
		input  string
		want   float64
		wantOK bool
	}{
		{"50%", 0.5, true},
		{" 12.5% ", 0.125, true},
		{"1,000%", 10, true},
		{"-20%", -0.2, true},
		{"75", 0.75, true},
		{"abc%", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParsePercentage(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParsePercentage(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParsePercentage(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Complex Tests
// ----------------------------------------------------------------------------

func TestIsComplexLiteral(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"3+4j", true},
		{"3+4i", true},
		{"1 - 0.5j", true},
		{"-2.5i", true},
		{"2j", true},
		{"j", false},
		{"semi-joint", false},
		{"12", false},
		{"2023-01-01", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsComplexLiteral(tt.input); got != tt.want {
				t.Errorf("IsComplexLiteral(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseComplex(t *testing.T) {
	tests := []struct {
		input  string
		want   complex128
		wantOK bool
	}{
		{"3+4j", 3 + 4i, true},
		{"1 - 0.5j", 1 - 0.5i, true},
		{"-2i", -2i, true},
		{"5", 5, true},
		{"nope", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseComplex(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseComplex(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseComplex(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ParseDateTime Tests
// ----------------------------------------------------------------------------

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   time.Time
		wantOK bool
	}{
		{"iso", "2023-01-01", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"us slashes", "01/02/2023", time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), true},
		{"month name", "Jan 3, 2023", time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC), true},
		{"long month name", "January 1, 2023", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"us dashes", "05-01-2023", time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), true},
		{"timestamp", "2023-01-04 10:30:00", time.Date(2023, 1, 4, 10, 30, 0, 0, time.UTC), true},
		{"rfc3339", "2023-01-04T10:30:00Z", time.Date(2023, 1, 4, 10, 30, 0, 0, time.UTC), true},
		{"not a date", "not a date", time.Time{}, false},
		{"empty", "", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDateTime(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseDateTime(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseDateTime(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDateTime_TwoDigitYearPivot(t *testing.T) {
	got, ok := ParseDateTime("1/2/99")
	if !ok {
		t.Fatal("ParseDateTime(1/2/99) failed")
	}
	if got.Year() != 1999 {
		t.Errorf("year = %d, want 1999", got.Year())
	}
}

// ----------------------------------------------------------------------------
// pgtype builders
// ----------------------------------------------------------------------------

func TestToPgBuilders(t *testing.T) {
	if b := ToPgBool("yes"); !b.Valid || !b.Bool {
		t.Errorf("ToPgBool(yes) = %+v", b)
	}
	if b := ToPgBool("maybe"); b.Valid {
		t.Errorf("ToPgBool(maybe) should be invalid")
	}
	if f := ToPgFloat8("1,234.5"); !f.Valid || f.Float64 != 1234.5 {
		t.Errorf("ToPgFloat8(1,234.5) = %+v", f)
	}
	if txt := ToPgText("   "); txt.Valid {
		t.Errorf("ToPgText(blank) should be invalid")
	}
	if ts := ToPgTimestamp("2023-01-01"); !ts.Valid {
		t.Errorf("ToPgTimestamp(2023-01-01) should be valid")
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`="00123"`, "00123"},
		{`  padded  `, "padded"},
		{`"quoted"`, "quoted"},
		{`plain`, "plain"},
	}
	for _, tt := range tests {
		if got := CleanCell(tt.input); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
