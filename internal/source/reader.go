package source

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// cleanText strips a leading UTF-8 byte order mark (Excel adds one to
// "CSV UTF-8" exports) and replaces invalid UTF-8 bytes with '?'.
func cleanText(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return &sanitizer{br: br}
}

// sanitizer decodes one rune at a time so multi-byte sequences split across
// reads from the underlying reader are never mistaken for invalid input.
type sanitizer struct {
	br      *bufio.Reader
	pending []byte
}

func (s *sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	for len(s.pending) < len(p) {
		r, size, err := s.br.ReadRune()
		if err != nil {
			if len(s.pending) == 0 {
				return 0, err
			}
			break
		}
		if r == utf8.RuneError && size == 1 {
			s.pending = append(s.pending, '?')
			continue
		}
		s.pending = utf8.AppendRune(s.pending, r)
	}

	n := copy(p, s.pending)
	s.pending = append(s.pending[:0], s.pending[n:]...)
	return n, nil
}
