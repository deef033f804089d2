package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vincentarsontaneli/data-processor-app/internal/dataset"
)

func strs(values ...string) *dataset.Column {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return column(out...)
}

func repeat(n int, values ...string) *dataset.Column {
	var all []string
	for i := 0; i < n; i++ {
		all = append(all, values...)
	}
	return strs(all...)
}

// ---- Heuristic chain Tests ----

func TestClassifyColumn(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	tests := []struct {
		name          string
		col           *dataset.Column
		want          SemanticType
		wantHeuristic string
	}{
		{"all missing", column(nil, nil, nil), Unknown, HeuristicAllMissing},
		{"empty column", column(), Unknown, HeuristicAllMissing},
		{"boolean words", strs("yes", "No", "TRUE", "f"), Boolean, HeuristicBoolean},
		{"boolean digits", strs("1", "0", "1", "1"), Boolean, HeuristicBoolean},
		{"native bools", column(true, false, nil, true), Boolean, HeuristicBoolean},
		{"percentage", strs("10%", "20.5%", "n/a"), Percentage, HeuristicPercentage},
		{"complex", strs("3+4j", "1-2j", "0.5i"), ComplexNumber, HeuristicComplex},
		{"integer", strs("10", "20", "1,000", "-5"), Integer, HeuristicNumeric},
		{"integer with zero fraction", strs("10", "20.0", "30"), Integer, HeuristicNumeric},
		{"float", strs("10", "20.5", "30"), Float, HeuristicNumeric},
		{"native numbers", column(int64(3), 4.25, nil), Float, HeuristicNumeric},
		{"datetime", strs("2023-01-01", "2023-02-15", "2023-03-31"), Datetime, HeuristicDatetime},
		{"identifier", strs("A-001", "A-002", "B-003", "C-004"), IdentifierString, HeuristicIdentifier},
		{"text", strs("apple", "banana split", "cherry"), Text, HeuristicText},
		{"mixed", strs("abc", "r2d2!", "x#y"), Unknown, HeuristicFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.ClassifyColumn(tt.col)
			assert.Equal(t, tt.want, got.Type)
			assert.Equal(t, tt.want, got.Inferred)
			assert.Equal(t, tt.wantHeuristic, got.Evidence.Heuristic)
		})
	}
}

func TestClassifyColumn_FirstMatchWins(t *testing.T) {
	// "1" and "0" are both boolean tokens and integers; boolean comes first.
	got := NewClassifier(DefaultThresholds()).ClassifyColumn(strs("1", "0"))
	assert.Equal(t, Boolean, got.Type)

	chain := DefaultChain()[3:]
	got = NewClassifierWithChain(DefaultThresholds(), chain).ClassifyColumn(strs("1", "0"))
	assert.Equal(t, Integer, got.Type)
}

func TestClassifyColumn_EmptyChainFallsBack(t *testing.T) {
	got := NewClassifierWithChain(DefaultThresholds(), nil).ClassifyColumn(strs("x"))
	assert.Equal(t, Unknown, got.Type)
	assert.Equal(t, HeuristicFallback, got.Evidence.Heuristic)
}

func TestClassifyColumn_NumericThresholdProfiles(t *testing.T) {
	values := make([]string, 0, 20)
	for i := 0; i < 19; i++ {
		values = append(values, "100")
	}
	values = append(values, "abc")
	col := strs(values...)

	got := NewClassifier(DefaultThresholds()).ClassifyColumn(col)
	assert.Equal(t, Integer, got.Type)
	assert.InDelta(t, 0.95, got.Evidence.Ratio, 1e-9)
	assert.Equal(t, 19, got.Evidence.Matched)

	got = NewClassifier(StrictThresholds()).ClassifyColumn(col)
	assert.Equal(t, Unknown, got.Type)
}

func TestClassifyColumn_DateProbeSkipsShortValues(t *testing.T) {
	got := NewClassifier(DefaultThresholds()).ClassifyColumn(strs("ab", "cd", "2023-01-01"))
	require.Equal(t, Datetime, got.Type)
	assert.Equal(t, 1, got.Evidence.Considered)
	assert.Equal(t, 1, got.Evidence.Matched)
}

func TestClassifyColumn_Deterministic(t *testing.T) {
	col := sequentialColumn(5000)
	c := NewClassifier(DefaultThresholds())

	first := c.ClassifyColumn(col)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, c.ClassifyColumn(col))
	}
}

// ---- Scenario Tests ----

func TestScenario_MixedDateFormats(t *testing.T) {
	col := strs("2023-01-01", "01/02/2023", "Jan 3, 2023", "2023-01-04", "05-01-2023")

	got := NewClassifier(DefaultThresholds()).ClassifyColumn(col)
	assert.Equal(t, Datetime, got.Type)
	assert.Equal(t, 5, got.Evidence.Matched)
}

func TestScenario_IntegersAndFractions(t *testing.T) {
	got := NewClassifier(DefaultThresholds()).ClassifyColumn(strs("1", "2.5", "3", "4.5", "5"))
	assert.Equal(t, Float, got.Type)
}

func TestScenario_RepeatedLabels(t *testing.T) {
	col := repeat(30, "cat1", "cat2", "cat1", "cat2", "cat1")

	got := NewClassifier(DefaultThresholds()).ClassifyColumn(col)
	assert.Equal(t, Categorical, got.Type)
	assert.Equal(t, 2, got.Evidence.Matched)
	assert.Equal(t, 150, got.Evidence.Considered)
}

func TestScenario_RepeatedLabelsBelowMinimumCount(t *testing.T) {
	got := NewClassifier(DefaultThresholds()).ClassifyColumn(strs("cat1", "cat2", "cat1", "cat2", "cat1"))
	assert.NotEqual(t, Categorical, got.Type)
}

func TestScenario_MixedValues(t *testing.T) {
	got := NewClassifier(DefaultThresholds()).ClassifyColumn(column(int64(1), "text", 3.14, true, nil))
	assert.Equal(t, Unknown, got.Type)
}

// ---- Schema Tests ----

func TestClassify_Table(t *testing.T) {
	tbl := dataset.FromRows([]string{"id", "price", "empty"}, [][]any{
		{"A-001", "1.5", nil},
		{"A-002", "2.5", nil},
		{"A-003", "3", nil},
	})

	schema := NewClassifier(DefaultThresholds()).Classify(tbl)
	require.Len(t, schema.Fields, 3)
	assert.Equal(t, map[string]SemanticType{
		"id":    IdentifierString,
		"price": Float,
		"empty": Unknown,
	}, schema.Types())

	f, ok := schema.Lookup("price")
	require.True(t, ok)
	assert.Equal(t, Float, f.Type)
	_, ok = schema.Lookup("missing")
	assert.False(t, ok)
}

func TestSchema_WithOverrides(t *testing.T) {
	schema := Schema{Fields: []Field{
		{Name: "qty", Classification: Classification{Type: Integer, Inferred: Integer}},
		{Name: "when", Classification: Classification{Type: Datetime, Inferred: Datetime}},
		{Name: "misc", Classification: Classification{Type: Unknown, Inferred: Unknown}},
	}}

	t.Run("allowed", func(t *testing.T) {
		out, err := schema.WithOverrides(map[string]SemanticType{"qty": Float, "misc": ComplexNumber})
		require.NoError(t, err)
		assert.Equal(t, Float, out.Fields[0].Type)
		assert.Equal(t, Integer, out.Fields[0].Inferred)
		assert.Equal(t, HeuristicOverride, out.Fields[0].Evidence.Heuristic)
		assert.Equal(t, ComplexNumber, out.Fields[2].Type)
		// The receiver is left untouched.
		assert.Equal(t, Integer, schema.Fields[0].Type)
	})

	t.Run("not convertible", func(t *testing.T) {
		_, err := schema.WithOverrides(map[string]SemanticType{"when": Integer})
		require.ErrorIs(t, err, ErrInvalidOverride)
		assert.Contains(t, err.Error(), "cannot convert datetime to integer")
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := schema.WithOverrides(map[string]SemanticType{"nope": Text})
		require.ErrorIs(t, err, ErrInvalidOverride)
	})
}

func TestUnknownSchema(t *testing.T) {
	schema := UnknownSchema([]string{"a", "b"})
	assert.Equal(t, map[string]SemanticType{"a": Unknown, "b": Unknown}, schema.Types())
}

// ---- SemanticType Tests ----

func TestParseSemanticType(t *testing.T) {
	tests := []struct {
		input   string
		want    SemanticType
		wantErr bool
	}{
		{"integer", Integer, false},
		{" Float ", Float, false},
		{"int64", Integer, false},
		{"datetime64[ns]", Datetime, false},
		{"category", Categorical, false},
		{"object", Unknown, false},
		{"complex_number", ComplexNumber, false},
		{"money", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSemanticType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOverrides(t *testing.T) {
	got, err := ParseOverrides(map[string]string{"a": "float", "b": "text"})
	require.NoError(t, err)
	assert.Equal(t, map[string]SemanticType{"a": Float, "b": Text}, got)

	_, err = ParseOverrides(map[string]string{"a": "money"})
	assert.ErrorIs(t, err, ErrInvalidOverride)
}

func TestCanConvert(t *testing.T) {
	assert.True(t, CanConvert(Integer, Integer))
	assert.True(t, CanConvert(Integer, Float))
	assert.True(t, CanConvert(Unknown, Datetime))
	assert.True(t, CanConvert(Percentage, Float))
	assert.False(t, CanConvert(Datetime, Integer))
	assert.False(t, CanConvert(Text, Float))

	assert.Contains(t, Conversions(Integer), Float)
	assert.Equal(t, Integer, Conversions(Integer)[0])
	assert.Len(t, Conversions(Unknown), len(AllTypes))
}
