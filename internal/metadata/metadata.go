// Package metadata summarizes a converted table.
package metadata

import (
	"fmt"

	"github.com/vincentarsontaneli/data-processor-app/internal/dataset"
	"github.com/vincentarsontaneli/data-processor-app/internal/inference"
)

// Metadata describes a table after conversion.
type Metadata struct {
	TotalRows    int               `json:"total_rows"`
	TotalColumns int               `json:"total_columns"`
	NullCounts   map[string]int    `json:"null_counts"`
	UniqueCounts map[string]int    `json:"unique_counts"`
	MemoryUsage  int64             `json:"memory_usage"`
	Dtypes       map[string]string `json:"dtypes"`
}

// Estimated in-memory sizes, in bytes.
const (
	stringHeader = 16
	pointerSize  = 8
)

// Summarize computes the metadata of t. It does not modify t.
func Summarize(t *dataset.Table) Metadata {
	md := Metadata{
		TotalRows:    t.Len(),
		TotalColumns: len(t.Columns),
		NullCounts:   make(map[string]int, len(t.Columns)),
		UniqueCounts: make(map[string]int, len(t.Columns)),
		Dtypes:       make(map[string]string, len(t.Columns)),
	}

	for _, col := range t.Columns {
		nulls := 0
		distinct := make(map[any]struct{})
		for _, v := range col.Values {
			if dataset.IsMissing(v) {
				nulls++
				continue
			}
			distinct[distinctKey(v)] = struct{}{}
		}
		md.NullCounts[col.Name] = nulls
		md.UniqueCounts[col.Name] = len(distinct)
		md.Dtypes[col.Name] = col.Dtype
		md.MemoryUsage += columnBytes(col)
	}
	return md
}

// textKey stands in for cells that cannot be map keys. The type name keeps
// values of different types apart.
type textKey struct {
	typ  string
	text string
}

// distinctKey returns a comparable key for v. Scalars are used as they are;
// any other value is keyed by its type and text form.
func distinctKey(v any) any {
	p := dataset.Plain(v)
	switch p.(type) {
	case string, bool, int64, float64, complex128:
		return p
	}
	return textKey{typ: fmt.Sprintf("%T", p), text: dataset.Text(v)}
}

// columnBytes estimates the memory held by col.
func columnBytes(col *dataset.Column) int64 {
	n := int64(len(col.Values))
	switch inference.SemanticType(col.Dtype) {
	case inference.Boolean:
		return n
	case inference.Integer, inference.Float, inference.Percentage, inference.Datetime:
		return 8 * n
	case inference.ComplexNumber:
		return 16 * n
	case inference.Categorical:
		size := n * codeWidth(len(col.Categories))
		for _, c := range col.Categories {
			size += stringHeader + int64(len(c))
		}
		return size
	case inference.IdentifierString, inference.Text:
		return textBytes(col.Values)
	default:
		return n*pointerSize + textBytes(col.Values)
	}
}

// codeWidth is the byte width of a category code for a vocabulary of n.
func codeWidth(n int) int64 {
	switch {
	case n <= 1<<7:
		return 1
	case n <= 1<<15:
		return 2
	default:
		return 4
	}
}

func textBytes(values []any) int64 {
	var size int64
	for _, v := range values {
		size += stringHeader
		if !dataset.IsMissing(v) {
			size += int64(len(dataset.Text(v)))
		}
	}
	return size
}
