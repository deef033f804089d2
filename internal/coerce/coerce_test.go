package coerce

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vincentarsontaneli/data-processor-app/internal/dataset"
	"github.com/vincentarsontaneli/data-processor-app/internal/inference"
)

func column(values ...any) *dataset.Column {
	return &dataset.Column{Name: "col", Dtype: dataset.DtypeObject, Values: values}
}

// ---- Per-type rules ----

func TestColumn_Boolean(t *testing.T) {
	res := Column(column("yes", "N", "TRUE", "0", true, nil, "maybe"), inference.Boolean)

	require.True(t, res.Converted)
	assert.Equal(t, "boolean", res.Column.Dtype)
	assert.Equal(t, []any{
		pgtype.Bool{Bool: true, Valid: true},
		pgtype.Bool{Bool: false, Valid: true},
		pgtype.Bool{Bool: true, Valid: true},
		pgtype.Bool{Bool: false, Valid: true},
		pgtype.Bool{Bool: true, Valid: true},
		pgtype.Bool{},
		pgtype.Bool{},
	}, res.Column.Values)
	assert.Equal(t, 1, res.Failed)
}

func TestColumn_BooleanTokensRoundTrip(t *testing.T) {
	tokens := map[string]bool{
		"TRUE": true, "FALSE": false, "YES": true, "NO": false,
		"Y": true, "N": false, "1": true, "0": false, "T": true, "F": false,
	}
	for token, want := range tokens {
		res := Column(column(token), inference.Boolean)
		assert.Equal(t, pgtype.Bool{Bool: want, Valid: true}, res.Column.Values[0], token)
	}
}

func TestColumn_IntegerMismatch(t *testing.T) {
	res := Column(column("1", "2.5", "1,000", "x", int64(7), 8.0, "99999999999999999999"), inference.Integer)

	require.True(t, res.Converted)
	assert.Equal(t, []any{
		pgtype.Int8{Int64: 1, Valid: true},
		pgtype.Int8{},
		pgtype.Int8{Int64: 1000, Valid: true},
		pgtype.Int8{},
		pgtype.Int8{Int64: 7, Valid: true},
		pgtype.Int8{Int64: 8, Valid: true},
		pgtype.Int8{},
	}, res.Column.Values)
	assert.Equal(t, 2, res.Mismatches)
	assert.Equal(t, 1, res.Failed)
}

func TestColumn_Float(t *testing.T) {
	// Integers mixed with fractions coerce to floats.
	res := Column(column("1", "2.5", "3", "4.5", "5"), inference.Float)

	var got []float64
	for _, v := range res.Column.Values {
		f := v.(pgtype.Float8)
		require.True(t, f.Valid)
		got = append(got, f.Float64)
	}
	assert.Equal(t, []float64{1.0, 2.5, 3.0, 4.5, 5.0}, got)
}

func TestColumn_Percentage(t *testing.T) {
	res := Column(column("50%", "12.5 %", "1,000%", "abc%"), inference.Percentage)

	assert.Equal(t, []any{
		pgtype.Float8{Float64: 0.5, Valid: true},
		pgtype.Float8{Float64: 0.125, Valid: true},
		pgtype.Float8{Float64: 10, Valid: true},
		pgtype.Float8{},
	}, res.Column.Values)
}

func TestColumn_Complex(t *testing.T) {
	res := Column(column("3+4j", "1 - 2i", "bad"), inference.ComplexNumber)

	assert.Equal(t, []any{
		dataset.Complex{Complex128: 3 + 4i, Valid: true},
		dataset.Complex{Complex128: 1 - 2i, Valid: true},
		dataset.Complex{},
	}, res.Column.Values)
	assert.Equal(t, 1, res.Failed)
}

func TestColumn_Datetime(t *testing.T) {
	native := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	res := Column(column("2023-01-01", "01/02/2023", "Jan 3, 2023", "2023-01-04", "05-01-2023", native), inference.Datetime)

	want := []time.Time{
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 1, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
		native,
	}
	require.Len(t, res.Column.Values, len(want))
	for i, v := range res.Column.Values {
		ts := v.(pgtype.Timestamp)
		require.True(t, ts.Valid, "value %d", i)
		assert.True(t, want[i].Equal(ts.Time), "value %d = %v, want %v", i, ts.Time, want[i])
	}
	assert.Zero(t, res.Failed)
}

func TestColumn_Categorical(t *testing.T) {
	res := Column(column("b", "a", "b", nil, "c"), inference.Categorical)

	assert.Equal(t, []string{"a", "b", "c"}, res.Column.Categories)
	assert.Equal(t, pgtype.Text{String: "b", Valid: true}, res.Column.Values[0])
	assert.Equal(t, pgtype.Text{}, res.Column.Values[3])
}

func TestColumn_TextTreatsNoneAsMissing(t *testing.T) {
	res := Column(column("hello", "None", "", "  "), inference.Text)

	assert.Equal(t, []any{
		pgtype.Text{String: "hello", Valid: true},
		pgtype.Text{},
		pgtype.Text{},
		pgtype.Text{},
	}, res.Column.Values)
	assert.Zero(t, res.Failed)
}

func TestColumn_UnknownKeepsRawValues(t *testing.T) {
	res := Column(column(int64(1), "text", 3.14, true, nil, "None"), inference.Unknown)

	require.True(t, res.Converted)
	assert.Equal(t, "unknown", res.Column.Dtype)
	assert.Equal(t, []any{int64(1), "text", 3.14, true, nil, nil}, res.Column.Values)
}

func TestColumn_AllMissingIsNoOp(t *testing.T) {
	res := Column(column(nil, nil), inference.Unknown)

	assert.Equal(t, []any{nil, nil}, res.Column.Values)
	assert.Zero(t, res.Failed)
	assert.Zero(t, res.Mismatches)
}

func TestColumn_DoesNotMutateInput(t *testing.T) {
	in := column("1", "2")
	Column(in, inference.Integer)

	assert.Equal(t, []any{"1", "2"}, in.Values)
	assert.Equal(t, dataset.DtypeObject, in.Dtype)
}

// ---- Fail-soft ----

func TestColumn_PanicFallsBackToRaw(t *testing.T) {
	saved := coercers[inference.Float]
	coercers[inference.Float] = coercer{
		missing: pgtype.Float8{},
		cell:    func(any) (any, status) { panic("boom") },
	}
	t.Cleanup(func() { coercers[inference.Float] = saved })

	in := column("1.5", "2.5")
	res := Column(in, inference.Float)

	assert.False(t, res.Converted)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "boom")
	assert.Equal(t, dataset.DtypeObject, res.Column.Dtype)
	assert.Equal(t, []any{"1.5", "2.5"}, res.Column.Values)
	assert.NotSame(t, in, res.Column)
}

func TestColumn_UnregisteredTypeFallsBack(t *testing.T) {
	res := Column(column("x"), inference.SemanticType("money"))

	assert.False(t, res.Converted)
	assert.Error(t, res.Err)
	assert.Equal(t, []any{"x"}, res.Column.Values)
}

func TestTable(t *testing.T) {
	tbl := dataset.FromRows([]string{"n", "label", "extra"}, [][]any{
		{"1", "a", "x"},
		{"2", "b", "y"},
	})
	schema := inference.Schema{Fields: []inference.Field{
		{Name: "n", Classification: inference.Classification{Type: inference.Integer}},
		{Name: "label", Classification: inference.Classification{Type: inference.Text}},
	}}

	out, results := Table(tbl, schema)

	require.Len(t, results, 3)
	assert.Equal(t, map[string]string{"n": "integer", "label": "text", "extra": "unknown"}, out.Dtypes())
	assert.Equal(t, pgtype.Int8{Int64: 2, Valid: true}, out.Columns[0].Values[1])
	assert.Equal(t, []any{"1", "a", "x"}, tbl.Row(0))
}
