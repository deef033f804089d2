// Package source reads untyped tables from CSV, XLSX and XLS files, or from
// memory, in fixed-size chunks.
//
// Every source yields raw cells: nil for NA tokens and blanks, strings
// otherwise (in-memory tables may carry native values). Headers are
// cleaned so that column names are non-empty and unique.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vincentarsontaneli/data-processor-app/internal/convert"
	"github.com/vincentarsontaneli/data-processor-app/internal/dataset"
)

var (
	// ErrUnsupportedFormat is returned for file extensions other than
	// .csv, .xls and .xlsx.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrEmptyFile is returned when a file has no header row.
	ErrEmptyFile = errors.New("file is empty")
	// ErrSheetNotFound is returned when the requested worksheet does not exist.
	ErrSheetNotFound = errors.New("sheet not found")
)

// Extensions lists the accepted file extensions.
var Extensions = []string{".csv", ".xls", ".xlsx"}

// DefaultNATokens are read as missing.
var DefaultNATokens = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// Source yields a table in chunks of rows.
type Source interface {
	// Header returns the cleaned column names.
	Header() []string
	// ReadChunk returns up to n rows. It returns io.EOF once no rows remain.
	ReadChunk(n int) (*dataset.Table, error)
	// Close releases the underlying file.
	Close() error
}

// Progresser is implemented by sources that can report how far they have
// read, as a percentage.
type Progresser interface {
	Progress() int
}

// Options controls how files are read.
type Options struct {
	// Delimiter is the CSV field separator. Zero means ','.
	Delimiter rune
	// Encoding is a WHATWG encoding label ("windows-1252", "latin1",
	// "shift_jis"). Empty means UTF-8.
	Encoding string
	// NATokens replaces DefaultNATokens when non-nil.
	NATokens []string
	// Sheet selects a worksheet by name. Empty means the first sheet.
	Sheet string
	// Size is the input size in bytes, used for progress. Zero if unknown.
	Size int64
}

func (o Options) naSet() map[string]struct{} {
	tokens := o.NATokens
	if tokens == nil {
		tokens = DefaultNATokens
	}
	set := make(map[string]struct{}, len(tokens)+1)
	set[""] = struct{}{}
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Format returns the normalized extension of name, or ErrUnsupportedFormat.
func Format(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return ext, nil
		}
	}
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, filepath.Base(name))
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
}

// Open opens the file at path, choosing the reader by extension.
func Open(path string, opts Options) (Source, error) {
	if _, err := Format(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if opts.Size == 0 {
		if info, err := f.Stat(); err == nil {
			opts.Size = info.Size()
		}
	}

	src, err := FromReader(path, f, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &fileSource{Source: src, file: f}, nil
}

// FromReader reads a table from r. name is only used to pick the format.
func FromReader(name string, r io.Reader, opts Options) (Source, error) {
	ext, err := Format(name)
	if err != nil {
		return nil, err
	}

	switch ext {
	case ".csv":
		return newCSV(r, opts)
	case ".xlsx":
		return newXLSX(r, opts)
	default:
		return newXLS(r, opts)
	}
}

// fileSource closes the opened file along with the wrapped source.
type fileSource struct {
	Source
	file *os.File
}

func (s *fileSource) Close() error {
	return errors.Join(s.Source.Close(), s.file.Close())
}

func (s *fileSource) Progress() int {
	if p, ok := s.Source.(Progresser); ok {
		return p.Progress()
	}
	return 0
}

// CleanHeader trims names, strips spreadsheet artifacts, names empty
// columns "Unnamed: i" and suffixes duplicates with ".1", ".2" and so on.
func CleanHeader(raw []string) []string {
	out := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	for i, h := range raw {
		name := convert.CleanCell(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		candidate := name
		for n := 1; used[candidate]; n++ {
			candidate = fmt.Sprintf("%s.%d", name, n)
		}
		used[candidate] = true
		out[i] = candidate
	}
	return out
}

// rowBuilder turns raw string records into table rows.
type rowBuilder struct {
	na map[string]struct{}
}

func newRowBuilder(opts Options) rowBuilder {
	return rowBuilder{na: opts.naSet()}
}

func (b rowBuilder) cell(raw string) any {
	s := convert.CleanCell(raw)
	if _, ok := b.na[s]; ok {
		return nil
	}
	return s
}

func (b rowBuilder) row(record []string) []any {
	row := make([]any, len(record))
	for i, raw := range record {
		row[i] = b.cell(raw)
	}
	return row
}

func isEmptyRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
