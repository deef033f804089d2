package source

import (
	"io"

	"github.com/vincentarsontaneli/data-processor-app/internal/dataset"
)

// Memory serves an in-memory table in chunks. Cells are passed through
// unchanged; the table is never modified.
type Memory struct {
	table  *dataset.Table
	header []string
	next   int
}

// NewMemory wraps t. Column names are cleaned like file headers.
func NewMemory(t *dataset.Table) *Memory {
	return &Memory{table: t, header: CleanHeader(t.Names())}
}

// FromRecords builds a memory source from a header and raw rows.
func FromRecords(header []string, rows [][]any) *Memory {
	return NewMemory(dataset.FromRows(header, rows))
}

func (m *Memory) Header() []string {
	return m.header
}

func (m *Memory) ReadChunk(n int) (*dataset.Table, error) {
	total := m.table.Len()
	if m.next >= total || n <= 0 {
		return nil, io.EOF
	}
	end := min(m.next+n, total)

	out := &dataset.Table{Columns: make([]*dataset.Column, len(m.table.Columns))}
	for i, col := range m.table.Columns {
		values := make([]any, end-m.next)
		copy(values, col.Values[m.next:end])
		out.Columns[i] = &dataset.Column{
			Name:   m.header[i],
			Dtype:  dataset.DtypeObject,
			Values: values,
		}
	}
	m.next = end
	return out, nil
}

func (m *Memory) Progress() int {
	total := m.table.Len()
	if total == 0 {
		return 100
	}
	return m.next * 100 / total
}

func (m *Memory) Close() error {
	return nil
}
