package core

import (
	"bytes"
	"encoding/json"
	"math"
	"time"

	"github.com/vincentarsontaneli/data-processor-app/internal/dataset"
	"github.com/vincentarsontaneli/data-processor-app/internal/inference"
	"github.com/vincentarsontaneli/data-processor-app/internal/metadata"
	"github.com/vincentarsontaneli/data-processor-app/internal/pipeline"
)

// DefaultHeadRows is how many leading rows a Result previews.
const DefaultHeadRows = 10

// Result is the output of one run.
type Result struct {
	RunID      string                              `json:"run_id"`
	Dtypes     map[string]string                   `json:"dtypes"`
	Columns    []ColumnInfo                        `json:"columns"`
	Head       []Record                            `json:"head"`
	Metadata   metadata.Metadata                   `json:"metadata"`
	Evidence   map[string]inference.Classification `json:"evidence"`
	Stats      RunStats                            `json:"stats"`
	DurationMS int64                               `json:"duration_ms"`

	// Table is the full converted table. It is not serialized.
	Table *dataset.Table `json:"-"`
}

// ColumnInfo describes one output column in table order.
type ColumnInfo struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Label       string   `json:"label"`
	Inferred    string   `json:"inferred"`
	Dtype       string   `json:"dtype"`
	Conversions []string `json:"conversions"`
}

// RunStats counts the non-fatal failures of a run.
type RunStats struct {
	Chunks       int `json:"chunks"`
	Fallbacks    int `json:"fallbacks"`
	FailedChunks int `json:"failed_chunks"`
	Mismatches   int `json:"mismatches"`
}

// Record is one row of the head preview. It marshals as a JSON object whose
// keys keep the table's column order.
type Record struct {
	names  []string
	values []any
}

// Names returns the record's column names.
func (r Record) Names() []string { return r.names }

// Get returns the plain value of column name, or nil.
func (r Record) Get(name string) any {
	for i, n := range r.names {
		if n == name {
			return jsonValue(r.values[i])
		}
	}
	return nil
}

// Cells renders every value as display text. Missing values render empty.
func (r Record) Cells() []string {
	out := make([]string, len(r.values))
	for i, v := range r.values {
		out[i] = dataset.Text(v)
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(jsonValue(r.values[i]))
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// jsonValue unwraps a cell into a JSON-safe value. Missing cells and
// non-finite floats become null.
func jsonValue(v any) any {
	switch x := dataset.Plain(v).(type) {
	case nil:
		return nil
	case float64:
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return nil
		}
		return x
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return x
	}
}

// Head returns the first n rows of t as records.
func Head(t *dataset.Table, n int) []Record {
	n = max(0, min(n, t.Len()))
	names := t.Names()
	out := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Record{names: names, values: t.Row(i)})
	}
	return out
}

func newResult(runID string, res *pipeline.Result, headRows int, elapsed time.Duration) *Result {
	out := &Result{
		RunID:      runID,
		Dtypes:     res.Table.Dtypes(),
		Columns:    make([]ColumnInfo, 0, len(res.Table.Columns)),
		Head:       Head(res.Table, headRows),
		Metadata:   metadata.Summarize(res.Table),
		Evidence:   make(map[string]inference.Classification, len(res.Schema.Fields)),
		DurationMS: elapsed.Milliseconds(),
		Table:      res.Table,
		Stats: RunStats{
			Chunks:       res.Chunks,
			Fallbacks:    res.Fallbacks,
			FailedChunks: res.FailedChunks,
			Mismatches:   res.Mismatches,
		},
	}

	for _, col := range res.Table.Columns {
		info := ColumnInfo{Name: col.Name, Dtype: col.Dtype, Type: inference.Unknown.String(), Inferred: inference.Unknown.String()}
		if f, ok := res.Schema.Lookup(col.Name); ok {
			info.Type = f.Type.String()
			info.Inferred = f.Inferred.String()
			info.Label = f.Type.Label()
			for _, c := range inference.Conversions(f.Type) {
				info.Conversions = append(info.Conversions, c.String())
			}
			out.Evidence[col.Name] = f.Classification
		}
		out.Columns = append(out.Columns, info)
	}
	return out
}
