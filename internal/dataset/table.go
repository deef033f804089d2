// Package dataset holds the in-memory table model shared by sources, the
// inference engine and the coercer.
//
// A Table is column-oriented. Raw columns carry Dtype "object" and hold
// nil, string, bool, int64, float64 or time.Time cells; converted columns
// carry the semantic type name and hold the typed representation of that
// type (pgtype values or Complex). Tables are treated as immutable once
// built: every conversion produces new columns.
package dataset

import (
	"fmt"
	"sort"
)

// DtypeObject is the dtype of a raw, unconverted column.
const DtypeObject = "object"

// Column is one named field's values across all rows of a table.
type Column struct {
	Name   string
	Dtype  string
	Values []any

	// Categories is the sorted vocabulary of a categorical column.
	Categories []string
}

// Len returns the number of cells in the column.
func (c *Column) Len() int {
	return len(c.Values)
}

// Clone returns a copy of the column with its own value slice.
func (c *Column) Clone() *Column {
	out := &Column{
		Name:   c.Name,
		Dtype:  c.Dtype,
		Values: make([]any, len(c.Values)),
	}
	copy(out.Values, c.Values)
	if c.Categories != nil {
		out.Categories = append([]string(nil), c.Categories...)
	}
	return out
}

// Table is an ordered set of equally long columns.
type Table struct {
	Columns []*Column
}

// New creates an empty raw table with the given column names.
func New(names []string) *Table {
	t := &Table{Columns: make([]*Column, len(names))}
	for i, name := range names {
		t.Columns[i] = &Column{Name: name, Dtype: DtypeObject}
	}
	return t
}

// FromRows builds a raw table from row-major data. Short rows are padded
// with missing values; extra cells are dropped.
func FromRows(names []string, rows [][]any) *Table {
	t := New(names)
	for _, c := range t.Columns {
		c.Values = make([]any, 0, len(rows))
	}
	for _, row := range rows {
		t.AppendRow(row)
	}
	return t
}

// AppendRow appends one row, padding or truncating it to the table width.
func (t *Table) AppendRow(row []any) {
	for i, c := range t.Columns {
		var v any
		if i < len(row) {
			v = row[i]
		}
		c.Values = append(c.Values, v)
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Row returns the cells of row i in column order.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.Columns))
	for j, c := range t.Columns {
		row[j] = c.Values[i]
	}
	return row
}

// Dtypes maps column names to their dtype.
func (t *Table) Dtypes() map[string]string {
	out := make(map[string]string, len(t.Columns))
	for _, c := range t.Columns {
		out[c.Name] = c.Dtype
	}
	return out
}

// Concat stacks tables vertically in the order given.
//
// All parts must share the same column names in the same order. A column
// keeps its dtype only if every part agrees on it; otherwise the merged
// column becomes "object" (one part was retained unconverted). Categorical
// vocabularies are unioned.
func Concat(parts []*Table) (*Table, error) {
	if len(parts) == 0 {
		return &Table{}, nil
	}
	names := parts[0].Names()
	total := 0
	for i, p := range parts {
		if len(p.Columns) != len(names) {
			return nil, fmt.Errorf("concat part %d: got %d columns, want %d", i, len(p.Columns), len(names))
		}
		for j, c := range p.Columns {
			if c.Name != names[j] {
				return nil, fmt.Errorf("concat part %d: column %d is %q, want %q", i, j, c.Name, names[j])
			}
		}
		total += p.Len()
	}

	out := &Table{Columns: make([]*Column, len(names))}
	for j, name := range names {
		col := &Column{
			Name:   name,
			Dtype:  parts[0].Columns[j].Dtype,
			Values: make([]any, 0, total),
		}
		var vocab map[string]struct{}
		for _, p := range parts {
			src := p.Columns[j]
			if src.Dtype != col.Dtype {
				col.Dtype = DtypeObject
			}
			col.Values = append(col.Values, src.Values...)
			if src.Categories != nil {
				if vocab == nil {
					vocab = make(map[string]struct{})
				}
				for _, c := range src.Categories {
					vocab[c] = struct{}{}
				}
			}
		}
		if vocab != nil && col.Dtype != DtypeObject {
			col.Categories = make([]string, 0, len(vocab))
			for c := range vocab {
				col.Categories = append(col.Categories, c)
			}
			sort.Strings(col.Categories)
		}
		out.Columns[j] = col
	}
	return out, nil
}
