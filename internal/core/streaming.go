package core

// streaming.go provides reader wrappers that clean up uploaded files before
// they reach the parser:
//
//   - BOMSkippingReader: removes the UTF-8 BOM (0xEF 0xBB 0xBF) that Excel adds
//   - UTF8Sanitizer: replaces invalid UTF-8 sequences with U+FFFD
//
// Use WrapForImport to apply them in the correct order.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader skips a leading UTF-8 BOM if present.
type BOMSkippingReader struct {
	br      *bufio.Reader
	checked bool
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{br: bufio.NewReader(r)}
}

// Read implements io.Reader.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		head, err := r.br.Peek(len(utf8BOM))
		if bytes.Equal(head, utf8BOM) {
			_, _ = r.br.Discard(len(utf8BOM))
		} else if err != nil && err != io.EOF && len(head) == 0 {
			return 0, err
		}
	}
	return r.br.Read(p)
}

// UTF8Sanitizer replaces invalid UTF-8 bytes with the replacement character.
// Multi-byte sequences split across reads are carried over to the next read.
type UTF8Sanitizer struct {
	reader  io.Reader
	buf     []byte
	pending []byte // sanitized bytes not yet returned
	carry   []byte // possibly incomplete trailing sequence
	err     error
}

// NewUTF8Sanitizer creates a new streaming UTF-8 sanitizer.
func NewUTF8Sanitizer(r io.Reader) *UTF8Sanitizer {
	return &UTF8Sanitizer{reader: r, buf: make([]byte, 32*1024)}
}

// Read implements io.Reader.
func (s *UTF8Sanitizer) Read(p []byte) (int, error) {
	for len(s.pending) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		n, err := s.reader.Read(s.buf)
		chunk := append(s.carry, s.buf[:n]...)
		s.carry = nil
		if err != nil {
			s.err = err
		}
		s.pending = s.sanitize(chunk, err != nil)
	}

	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

// sanitize validates chunk and returns the cleaned bytes. When final is
// false an incomplete sequence at the end is held back in carry.
func (s *UTF8Sanitizer) sanitize(chunk []byte, final bool) []byte {
	if !final {
		if tail := incompleteTail(chunk); tail > 0 {
			s.carry = append([]byte(nil), chunk[len(chunk)-tail:]...)
			chunk = chunk[:len(chunk)-tail]
		}
	}
	if utf8.Valid(chunk) {
		return chunk
	}

	out := make([]byte, 0, len(chunk)+8)
	for len(chunk) > 0 {
		r, size := utf8.DecodeRune(chunk)
		if r == utf8.RuneError && size == 1 {
			out = utf8.AppendRune(out, utf8.RuneError)
		} else {
			out = append(out, chunk[:size]...)
		}
		chunk = chunk[size:]
	}
	return out
}

// incompleteTail returns how many trailing bytes start a multi-byte sequence
// that is not yet complete.
func incompleteTail(data []byte) int {
	for i := 1; i <= utf8.UTFMax-1 && i <= len(data); i++ {
		b := data[len(data)-i]
		if b&0xC0 == 0x80 {
			continue // continuation byte
		}
		if b < 0xC0 {
			return 0
		}
		if need := runeLen(b); need > i {
			return i
		}
		return 0
	}
	return 0
}

// runeLen returns the expected length of a UTF-8 sequence starting with b.
func runeLen(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b < 0xC0:
		return 0
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	default:
		return 4
	}
}

// WrapForImport strips the BOM first, then sanitizes UTF-8.
func WrapForImport(r io.Reader) io.Reader {
	return NewUTF8Sanitizer(NewBOMSkippingReader(r))
}
