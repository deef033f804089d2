package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/vincentarsontaneli/data-processor-app/internal/dataset"
)

// csvSource streams records from a delimited text file.
type csvSource struct {
	reader  *csv.Reader
	counter *CountingReader
	header  []string
	build   rowBuilder
	line    int
	done    bool
}

func newCSV(r io.Reader, opts Options) (*csvSource, error) {
	in, counter, err := wrapInput(r, opts)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}

	s := &csvSource{reader: cr, counter: counter, build: newRowBuilder(opts)}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		if err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		s.line++
		if isEmptyRecord(record) {
			continue
		}
		s.header = CleanHeader(record)
		return s, nil
	}
}

func (s *csvSource) Header() []string {
	return s.header
}

func (s *csvSource) ReadChunk(n int) (*dataset.Table, error) {
	if s.done {
		return nil, io.EOF
	}

	rows := make([][]any, 0, min(n, 4096))
	for len(rows) < n {
		record, err := s.reader.Read()
		if errors.Is(err, io.EOF) {
			s.done = true
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", s.line+1, err)
		}
		s.line++
		if isEmptyRecord(record) {
			continue
		}
		rows = append(rows, s.build.row(record))
	}

	if len(rows) == 0 {
		return nil, io.EOF
	}
	return dataset.FromRows(s.header, rows), nil
}

func (s *csvSource) Progress() int {
	if s.done {
		return 100
	}
	return s.counter.Progress()
}

func (s *csvSource) Close() error {
	return nil
}
