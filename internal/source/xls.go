package source

import (
	"bytes"
	"fmt"
	"io"

	"github.com/extrame/xls"

	"github.com/vincentarsontaneli/data-processor-app/internal/dataset"
)

// xlsSource walks the rows of a legacy BIFF worksheet.
type xlsSource struct {
	// record returns the cell text of row i; missing rows are empty.
	record func(i int) []string
	header []string
	build  rowBuilder
	next   int
	last   int
}

func newXLS(r io.Reader, opts Options) (*xlsSource, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read xls: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	wb, err := xls.OpenReader(rs, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, ErrEmptyFile
	}

	sheet := wb.GetSheet(0)
	if opts.Sheet != "" {
		sheet = nil
		for i := 0; i < wb.NumSheets(); i++ {
			if ws := wb.GetSheet(i); ws != nil && ws.Name == opts.Sheet {
				sheet = ws
				break
			}
		}
		if sheet == nil {
			return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, opts.Sheet)
		}
	}
	if sheet == nil {
		return nil, ErrEmptyFile
	}

	s := &xlsSource{record: sheetRecords(sheet), build: newRowBuilder(opts), last: int(sheet.MaxRow)}
	if !s.readHeader() {
		return nil, ErrEmptyFile
	}
	return s, nil
}

func sheetRecords(sheet *xls.WorkSheet) func(int) []string {
	return func(i int) []string {
		row := sheet.Row(i)
		if row == nil {
			return nil
		}
		out := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			out[j] = row.Col(j)
		}
		return out
	}
}

// readHeader consumes rows up to the first non-empty one and keeps it as the
// header. It reports false when the sheet has no such row.
func (s *xlsSource) readHeader() bool {
	for s.next <= s.last {
		record := s.record(s.next)
		s.next++
		if isEmptyRecord(record) {
			continue
		}
		s.header = CleanHeader(record)
		return true
	}
	return false
}

func (s *xlsSource) Header() []string {
	return s.header
}

func (s *xlsSource) ReadChunk(n int) (*dataset.Table, error) {
	rows := make([][]any, 0, min(n, 4096))
	for len(rows) < n && s.next <= s.last {
		record := s.record(s.next)
		s.next++
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

func (s *xlsSource) Progress() int {
	if s.last <= 0 || s.next > s.last {
		return 100
	}
	return s.next * 100 / (s.last + 1)
}

func (s *xlsSource) Close() error {
	return nil
}
