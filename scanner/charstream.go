// Package scanner implements the character stream and tokenizer that
// turn source text into a stream of token.Token values.
package scanner

import (
	"github.com/legacyscript/jscore/token"
)

// charStream is single-direction character input with offset tracking.
// Beyond peek and peekAt's fixed-distance byte peeks it keeps no
// look-ahead; the scanner itself buffers whatever token look-ahead it
// needs on top of this.
type charStream struct {
	src    string
	base   token.Offset // absolute offset of src[0] in the enclosing document
	cursor int          // byte index into src of the next unread character

	watching   bool
	watchStart int
}

func newCharStream(src string, base token.Offset) *charStream {
	return &charStream{src: src, base: base}
}

// eof reports whether the stream is exhausted.
func (s *charStream) eof() bool {
	return s.cursor >= len(s.src)
}

// peek returns the current character without advancing, or 0 at EOF.
func (s *charStream) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.cursor]
}

// peekAt returns the character n bytes ahead of the cursor (0 is the
// same as peek), or 0 if that is past EOF.
func (s *charStream) peekAt(n int) byte {
	i := s.cursor + n
	if i < 0 || i >= len(s.src) {
		return 0
	}
	return s.src[i]
}

// read consumes and returns the current character. Calling read at EOF
// panics, as that indicates a scanner bug: every scanning routine must
// check eof() before reading.
func (s *charStream) read() byte {
	c := s.src[s.cursor]
	s.cursor++
	return c
}

// readIf consumes the current character and returns true if it equals
// expected.
func (s *charStream) readIf(expected byte) bool {
	if s.eof() || s.src[s.cursor] != expected {
		return false
	}
	s.cursor++
	return true
}

// readIn consumes the current character and returns true if it appears
// in set.
func (s *charStream) readIn(set string) bool {
	if s.eof() {
		return false
	}
	c := s.src[s.cursor]
	for i := 0; i < len(set); i++ {
		if set[i] == c {
			s.cursor++
			return true
		}
	}
	return false
}

// readTextIf consumes len(text) bytes and returns true if they equal
// text exactly, used for the "<!--" html-comment opener.
func (s *charStream) readTextIf(text string) bool {
	if s.cursor+len(text) > len(s.src) {
		return false
	}
	if s.src[s.cursor:s.cursor+len(text)] != text {
		return false
	}
	s.cursor += len(text)
	return true
}

// watchBegin remembers the current cursor position.
func (s *charStream) watchBegin() {
	s.watching = true
	s.watchStart = s.cursor
}

// watchEnd returns the substring consumed since the matching watchBegin.
func (s *charStream) watchEnd() string {
	s.watching = false
	return s.src[s.watchStart:s.cursor]
}

// currentOffset returns the absolute offset of the next unread
// character.
func (s *charStream) currentOffset() token.Offset {
	return s.base + token.Offset(s.cursor)
}
