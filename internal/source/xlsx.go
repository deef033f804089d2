package source

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/vincentarsontaneli/data-processor-app/internal/dataset"
)

// xlsxSource iterates the rows of one worksheet. The workbook is held in
// memory by excelize; rows are materialized one chunk at a time.
type xlsxSource struct {
	file   *excelize.File
	rows   *excelize.Rows
	sheet  string
	header []string
	build  rowBuilder
	done   bool
}

func newXLSX(r io.Reader, opts Options) (*xlsxSource, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}

	s, err := openXLSXSheet(f, opts)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return s, nil
}

func openXLSXSheet(f *excelize.File, opts Options) (*xlsxSource, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	sheet := sheets[0]
	if opts.Sheet != "" {
		if idx, _ := f.GetSheetIndex(opts.Sheet); idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, opts.Sheet)
		}
		sheet = opts.Sheet
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("open rows of sheet %s: %w", sheet, err)
	}

	s := &xlsxSource{file: f, rows: rows, sheet: sheet, build: newRowBuilder(opts)}
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("read header of sheet %s: %w", sheet, err)
		}
		if isEmptyRecord(record) {
			continue
		}
		s.header = CleanHeader(record)
		return s, nil
	}
	err = rows.Error()
	_ = rows.Close()
	if err != nil {
		return nil, fmt.Errorf("read header of sheet %s: %w", sheet, err)
	}
	return nil, ErrEmptyFile
}

func (s *xlsxSource) Header() []string {
	return s.header
}

func (s *xlsxSource) ReadChunk(n int) (*dataset.Table, error) {
	if s.done {
		return nil, io.EOF
	}

	rows := make([][]any, 0, min(n, 4096))
	for len(rows) < n {
		if !s.rows.Next() {
			s.done = true
			if err := s.rows.Error(); err != nil {
				return nil, fmt.Errorf("read sheet %s: %w", s.sheet, err)
			}
			break
		}
		record, err := s.rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", s.sheet, err)
		}
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

func (s *xlsxSource) Close() error {
	return errors.Join(s.rows.Close(), s.file.Close())
}
