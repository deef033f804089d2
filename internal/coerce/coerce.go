// Package coerce converts raw columns to the typed representation of their
// semantic type.
//
// Conversion is fail-soft: unparseable cells become the missing marker, and
// a column whose conversion panics is returned in its original raw form.
// Inputs are never mutated.
package coerce

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vincentarsontaneli/data-processor-app/internal/convert"
	"github.com/vincentarsontaneli/data-processor-app/internal/dataset"
	"github.com/vincentarsontaneli/data-processor-app/internal/inference"
)

// Result describes the conversion of one column.
type Result struct {
	Name string
	Type inference.SemanticType
	// Column is the converted column, or a copy of the input when
	// Converted is false.
	Column    *dataset.Column
	Converted bool
	// Failed counts non-missing inputs that could not be parsed.
	Failed int
	// Mismatches counts non-integral or out-of-range values in an
	// integer column; those cells are set to missing.
	Mismatches int
	// Err is set when the column fell back to its raw form.
	Err error
}

type status int

const (
	statusOK status = iota
	statusFailed
	statusMismatch
)

// coercer converts one non-missing cell. missing is the typed missing marker.
type coercer struct {
	missing any
	cell    func(v any) (any, status)
}

// coercers maps each semantic type to its cell converter.
var coercers = map[inference.SemanticType]coercer{
	inference.Boolean:          {missing: pgtype.Bool{}, cell: toBool},
	inference.Integer:          {missing: pgtype.Int8{}, cell: toInt},
	inference.Float:            {missing: pgtype.Float8{}, cell: toFloat},
	inference.Percentage:       {missing: pgtype.Float8{}, cell: toPercentage},
	inference.ComplexNumber:    {missing: dataset.Complex{}, cell: toComplex},
	inference.Datetime:         {missing: pgtype.Timestamp{}, cell: toTimestamp},
	inference.Categorical:      {missing: pgtype.Text{}, cell: toText},
	inference.IdentifierString: {missing: pgtype.Text{}, cell: toText},
	inference.Text:             {missing: pgtype.Text{}, cell: toText},
	inference.Unknown:          {missing: nil, cell: keepRaw},
}

// Column converts col to typ.
func Column(col *dataset.Column, typ inference.SemanticType) (res Result) {
	res = Result{Name: col.Name, Type: typ}

	defer func() {
		if r := recover(); r != nil {
			fallback := col.Clone()
			fallback.Dtype = dataset.DtypeObject
			res = Result{
				Name:   col.Name,
				Type:   typ,
				Column: fallback,
				Err:    fmt.Errorf("convert column %q to %s: %v", col.Name, typ, r),
			}
		}
	}()

	c, ok := coercers[typ]
	if !ok {
		panic(fmt.Sprintf("no converter for type %q", typ))
	}

	out := &dataset.Column{
		Name:   col.Name,
		Dtype:  string(typ),
		Values: make([]any, len(col.Values)),
	}
	for i, v := range col.Values {
		if isBlank(v) {
			out.Values[i] = c.missing
			continue
		}
		cv, st := c.cell(v)
		switch st {
		case statusFailed:
			res.Failed++
			cv = c.missing
		case statusMismatch:
			res.Mismatches++
			cv = c.missing
		}
		out.Values[i] = cv
	}

	if typ == inference.Categorical {
		out.Categories = vocabulary(out.Values)
	}

	res.Column = out
	res.Converted = true
	return res
}

// Table converts every column of t according to schema. Columns missing
// from the schema are left as Unknown.
func Table(t *dataset.Table, schema inference.Schema) (*dataset.Table, []Result) {
	out := &dataset.Table{Columns: make([]*dataset.Column, len(t.Columns))}
	results := make([]Result, len(t.Columns))
	for i, col := range t.Columns {
		typ := inference.Unknown
		if f, ok := schema.Lookup(col.Name); ok {
			typ = f.Type
		}
		results[i] = Column(col, typ)
		out.Columns[i] = results[i].Column
	}
	return out, results
}

// isBlank reports whether v is missing, or is a string that means missing
// once converted ("" or "None").
func isBlank(v any) bool {
	if dataset.IsMissing(v) {
		return true
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		return s == "" || s == "None"
	}
	return false
}

func toBool(v any) (any, status) {
	if b, ok := v.(bool); ok {
		return pgtype.Bool{Bool: b, Valid: true}, statusOK
	}
	b, ok := convert.ParseBool(dataset.Text(v))
	if !ok {
		return pgtype.Bool{}, statusFailed
	}
	return pgtype.Bool{Bool: b, Valid: true}, statusOK
}

func toInt(v any) (any, status) {
	switch x := dataset.Plain(v).(type) {
	case int64:
		return pgtype.Int8{Int64: x, Valid: true}, statusOK
	case bool:
		if x {
			return pgtype.Int8{Int64: 1, Valid: true}, statusOK
		}
		return pgtype.Int8{Int64: 0, Valid: true}, statusOK
	case float64:
		if math.IsInf(x, 0) || x != math.Trunc(x) || x >= math.MaxInt64 || x < math.MinInt64 {
			return pgtype.Int8{}, statusMismatch
		}
		return pgtype.Int8{Int64: int64(x), Valid: true}, statusOK
	}

	n, integral, ok := convert.ParseInt(dataset.Text(v))
	switch {
	case !ok:
		return pgtype.Int8{}, statusFailed
	case !integral:
		return pgtype.Int8{}, statusMismatch
	}
	return pgtype.Int8{Int64: n, Valid: true}, statusOK
}

func toFloat(v any) (any, status) {
	switch x := dataset.Plain(v).(type) {
	case float64:
		return pgtype.Float8{Float64: x, Valid: true}, statusOK
	case int64:
		return pgtype.Float8{Float64: float64(x), Valid: true}, statusOK
	case bool:
		if x {
			return pgtype.Float8{Float64: 1, Valid: true}, statusOK
		}
		return pgtype.Float8{Float64: 0, Valid: true}, statusOK
	}

	f, ok := convert.ParseFloat(dataset.Text(v))
	if !ok {
		return pgtype.Float8{}, statusFailed
	}
	return pgtype.Float8{Float64: f, Valid: true}, statusOK
}

func toPercentage(v any) (any, status) {
	f, ok := convert.ParsePercentage(dataset.Text(v))
	if !ok {
		return pgtype.Float8{}, statusFailed
	}
	return pgtype.Float8{Float64: f, Valid: true}, statusOK
}

func toComplex(v any) (any, status) {
	c, ok := convert.ParseComplex(dataset.Text(v))
	if !ok {
		return dataset.Complex{}, statusFailed
	}
	return dataset.Complex{Complex128: c, Valid: true}, statusOK
}

func toTimestamp(v any) (any, status) {
	if t, ok := dataset.Plain(v).(time.Time); ok {
		return pgtype.Timestamp{Time: t, Valid: true}, statusOK
	}
	t, ok := convert.ParseDateTime(dataset.Text(v))
	if !ok {
		return pgtype.Timestamp{}, statusFailed
	}
	return pgtype.Timestamp{Time: t, Valid: true}, statusOK
}

func toText(v any) (any, status) {
	return pgtype.Text{String: dataset.Text(v), Valid: true}, statusOK
}

func keepRaw(v any) (any, status) {
	return v, statusOK
}

// vocabulary returns the sorted distinct values of a text column.
func vocabulary(values []any) []string {
	seen := make(map[string]struct{})
	for _, v := range values {
		if t, ok := v.(pgtype.Text); ok && t.Valid {
			seen[t.String] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
