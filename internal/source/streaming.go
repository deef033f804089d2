package source

// streaming.go wraps raw CSV input so encoding/csv sees clean UTF-8 without
// the whole file being loaded:
//
//   - decoding from a legacy encoding (golang.org/x/text)
//   - skipping a UTF-8 byte order mark
//   - replacing invalid UTF-8 bytes with '?'
//
// wrapInput applies them in that order, counting the raw bytes first for
// progress.

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode returns a reader that converts r from the named encoding to UTF-8.
// Empty names and UTF-8 labels return r unchanged.
func Decode(r io.Reader, encoding string) (io.Reader, error) {
	label := strings.ToLower(strings.TrimSpace(encoding))
	if label == "" || label == "utf-8" || label == "utf8" {
		return r, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", encoding, err)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// BOMSkippingReader drops a leading UTF-8 byte order mark.
type BOMSkippingReader struct {
	r       *bufio.Reader
	checked bool
}

// NewBOMSkippingReader creates a BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{r: bufio.NewReader(r)}
}

// Read implements io.Reader.
func (b *BOMSkippingReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		head, err := b.r.Peek(len(utf8BOM))
		if err == nil && bytes.Equal(head, utf8BOM) {
			b.r.Discard(len(utf8BOM))
		}
	}
	return b.r.Read(p)
}

// UTF8Sanitizer replaces bytes that are not valid UTF-8 with '?'.
// Multi-byte sequences split across reads are carried over.
type UTF8Sanitizer struct {
	r       io.Reader
	pending []byte
}

// NewUTF8Sanitizer creates a sanitizing reader.
func NewUTF8Sanitizer(r io.Reader) *UTF8Sanitizer {
	return &UTF8Sanitizer{r: r, pending: make([]byte, 0, utf8.UTFMax)}
}

// Read implements io.Reader.
func (s *UTF8Sanitizer) Read(p []byte) (int, error) {
	if len(p) < utf8.UTFMax {
		return 0, io.ErrShortBuffer
	}

	off := copy(p, s.pending)
	s.pending = s.pending[:0]

	n, err := s.r.Read(p[off:])
	n += off
	if n == 0 {
		return 0, err
	}

	data := p[:n]
	atEOF := err == io.EOF

	// Hold back a trailing sequence that may be completed by the next read.
	if !atEOF {
		if tail := partialTail(data); tail > 0 {
			s.pending = append(s.pending, data[len(data)-tail:]...)
			data = data[:len(data)-tail]
			if len(data) == 0 && err == nil {
				return 0, nil
			}
		}
	}

	if utf8.Valid(data) {
		return len(data), err
	}

	w := 0
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			data[w] = '?'
			w++
			i++
			continue
		}
		w += copy(data[w:], data[i:i+size])
		i += size
	}
	return w, err
}

// partialTail returns how many trailing bytes of data form the start of an
// incomplete multi-byte sequence.
func partialTail(data []byte) int {
	for i := 1; i <= utf8.UTFMax-1 && i <= len(data); i++ {
		c := data[len(data)-i]
		if c < utf8.RuneSelf {
			return 0
		}
		if utf8.RuneStart(c) {
			if utf8.FullRune(data[len(data)-i:]) {
				return 0
			}
			return i
		}
	}
	return 0
}

// CountingReader tracks bytes read for progress reporting.
type CountingReader struct {
	r     io.Reader
	read  atomic.Int64
	total int64
}

// NewCountingReader creates a counting reader. total is 0 when unknown.
func NewCountingReader(r io.Reader, total int64) *CountingReader {
	return &CountingReader{r: r, total: total}
}

// Read implements io.Reader.
func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read.Add(int64(n))
	return n, err
}

// BytesRead returns the number of bytes read so far.
func (c *CountingReader) BytesRead() int64 {
	return c.read.Load()
}

// Progress returns the read progress as a percentage (0-100).
// Returns 0 if total is unknown.
func (c *CountingReader) Progress() int {
	if c.total <= 0 {
		return 0
	}
	p := int(c.read.Load() * 100 / c.total)
	if p > 100 {
		p = 100
	}
	return p
}

// wrapInput counts raw bytes, decodes, strips the BOM and sanitizes.
func wrapInput(r io.Reader, opts Options) (io.Reader, *CountingReader, error) {
	counter := NewCountingReader(r, opts.Size)
	decoded, err := Decode(counter, opts.Encoding)
	if err != nil {
		return nil, nil, err
	}
	return NewUTF8Sanitizer(NewBOMSkippingReader(decoded)), counter, nil
}
