package scanner

import (
	"strings"
	"unicode/utf8"

	"github.com/legacyscript/jscore/errs"
	"github.com/legacyscript/jscore/token"
)

// lineTerminatorASCII holds the single-byte line terminators. The line and
// HTML comment scanners stop only at these; scanWhitespace additionally
// matches the multi-byte U+2028/U+2029 terminators by their UTF-8 lead
// byte (0xE2).
const lineTerminatorASCII = "\r\n"

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\f', '\v':
		return true
	}
	return false
}

func isDigit(b byte) bool   { return b >= '0' && b <= '9' }
func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
func isIdentStart(b byte) bool {
	return b == '_' || b == '$' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
func isIdentPart(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}

// queueCap scales the defensive length check in fill. The look-ahead
// queue itself is not capped: it holds every whitespace and comment token
// that lies before the next significant token, so a run of comment lines
// makes it longer than queueCap.
const queueCap = 4

// state distinguishes normal operation from the post-error state in
// which every call fails, per §4.2's state machine.
type state int

const (
	stateNormal state = iota
	stateErrored
)

// Scanner pulls characters from a charStream and emits token.Token
// values with absolute offsets. It buffers a small look-ahead queue so
// Peek and PeekSameLine can inspect upcoming whitespace/comments without
// consuming them.
type Scanner struct {
	cs    *charStream
	onErr errs.Handler

	queue []token.Token
	state state
}

// New creates a Scanner over src. base is the absolute offset of src[0]
// in the enclosing document (0 for a standalone file). onError, if
// non-nil, is invoked once per lexical error encountered while filling
// the look-ahead queue.
func New(src string, base token.Offset, onError errs.Handler) *Scanner {
	return &Scanner{cs: newCharStream(src, base), onErr: onError}
}

func (s *Scanner) reportErr(offset token.Offset, code errs.Code, args map[string]any) {
	if s.onErr != nil {
		s.onErr(offset, code, args)
	}
}

// fill ensures at least n raw tokens are buffered (or EOF has been
// reached), scanning new ones as needed.
func (s *Scanner) fill(n int) {
	for len(s.queue) < n {
		last := len(s.queue) > 0 && s.queue[len(s.queue)-1].Kind == token.EOF
		if last {
			return
		}
		s.queue = append(s.queue, s.scanOne())
		if len(s.queue) > queueCap*4 {
			// Defensive check; Peek, PeekSameLine, Advance and
			// NextWithRegexp only ever ask for one token more than the
			// queue holds, so it never cuts a fill short.
			break
		}
	}
}

// Peek returns the next non-whitespace, non-comment token without
// consuming it.
func (s *Scanner) Peek() token.Token {
	i := 0
	for {
		s.fill(i + 1)
		if i >= len(s.queue) {
			return s.queue[len(s.queue)-1] // EOF
		}
		t := s.queue[i]
		if t.IsWhitespace() || t.IsComment() {
			i++
			continue
		}
		return t
	}
}

// PeekSameLine returns the next token, but if an EOL token lies before
// the next significant token, it returns that EOL instead. This is the
// look-ahead automatic-semicolon-insertion and restricted-production
// rules are built on.
func (s *Scanner) PeekSameLine() token.Token {
	i := 0
	for {
		s.fill(i + 1)
		if i >= len(s.queue) {
			return s.queue[len(s.queue)-1] // EOF
		}
		t := s.queue[i]
		switch {
		case t.Kind == token.EOL:
			return t
		case t.Kind == token.SPACE || t.IsComment():
			i++
			continue
		default:
			return t
		}
	}
}

// Advance consumes every buffered token up to and including the next
// significant token (as Peek would report) and returns that token. If
// the scanner has already advanced past an ERROR token, every
// subsequent call fails without consuming anything, per the §4.2 state
// machine.
func (s *Scanner) Advance() (token.Token, error) {
	if s.state == stateErrored {
		return token.Token{Kind: token.ERROR}, errAlreadyErrored
	}
	i := 0
	for {
		s.fill(i + 1)
		t := s.queue[i]
		if t.Kind == token.EOF || (!t.IsWhitespace() && !t.IsComment()) {
			s.queue = s.queue[i+1:]
			if t.Kind == token.ERROR {
				s.state = stateErrored
				return t, errLexical
			}
			return t, nil
		}
		i++
	}
}

var errAlreadyErrored = scanError("scanner: advance called after a lexical error")
var errLexical = scanError("scanner: advanced past an ERROR token")

type scanError string

func (e scanError) Error() string { return string(e) }

// NextWithRegexp forces a regular-expression rescan if (and only if) the
// upcoming significant token is DIV or DIVEQ: it drops that token from
// the buffer, keeps any whitespace/comments buffered before it, rewinds
// the character stream to its "/", and buffers the rescanned token in
// its place. It returns the upcoming token, rescanned or not. The parser
// calls it after peeking a "/" at a position where one is grammatically
// required to start a regexp rather than a division operator.
func (s *Scanner) NextWithRegexp() token.Token {
	i := 0
	for {
		s.fill(i + 1)
		if i >= len(s.queue) {
			return s.queue[len(s.queue)-1] // EOF
		}
		t := s.queue[i]
		if t.IsWhitespace() || t.IsComment() {
			i++
			continue
		}
		if t.Kind != token.DIV && t.Kind != token.DIVEQ {
			return t
		}
		// Rewind the char stream to the start of that token, keeping any
		// leading whitespace/comments buffered, and rescan as a regexp
		// literal.
		back := int(t.End-t.Start) + 1
		s.cs.cursor -= back
		s.queue = s.queue[:i]
		re := s.scanRegexp()
		s.queue = append(s.queue, re)
		return re
	}
}

// scanOne scans exactly one raw token: whitespace collapses to a single
// SPACE/EOL, everything else is one lexeme.
func (s *Scanner) scanOne() token.Token {
	if ws, ok := s.scanWhitespace(); ok {
		return ws
	}
	if s.cs.eof() {
		off := s.cs.currentOffset()
		return token.Token{Kind: token.EOF, Start: off, End: off}
	}

	start := s.cs.currentOffset()
	c := s.cs.peek()

	switch {
	case isIdentStart(c):
		return s.scanIdentifier(start)
	case isDigit(c):
		return s.scanNumber(start)
	case c == '.' && isDigit(s.cs.peekAt(1)):
		return s.scanNumber(start)
	case c == '\'' || c == '"':
		return s.scanString(start, c)
	}

	if s.cs.readTextIf("<!--") {
		return s.scanHTMLComment(start)
	}
	if s.cs.readIf('/') {
		switch s.cs.peek() {
		case '/':
			return s.scanLineComment(start)
		case '*':
			return s.scanBlockComment(start)
		}
		// Not a comment: fall through to punctuator matching below by
		// un-reading the '/'.
		s.cs.cursor--
	}

	return s.scanPunctuatorOrError(start)
}

func (s *Scanner) scanWhitespace() (token.Token, bool) {
	start := s.cs.currentOffset()
	sawEOL := false
	consumed := false
	for !s.cs.eof() {
		b := s.cs.peek()
		if isSpaceByte(b) {
			s.cs.read()
			consumed = true
			continue
		}
		if b == '\r' || b == '\n' {
			s.cs.read()
			if b == '\r' {
				s.cs.readIf('\n')
			}
			sawEOL = true
			consumed = true
			continue
		}
		if b == 0xE2 && s.cs.peekAt(1) == 0x80 && (s.cs.peekAt(2) == 0xA8 || s.cs.peekAt(2) == 0xA9) {
			s.cs.read()
			s.cs.read()
			s.cs.read()
			sawEOL = true
			consumed = true
			continue
		}
		break
	}
	if !consumed {
		return token.Token{}, false
	}
	end := s.cs.currentOffset() - 1
	kind := token.SPACE
	if sawEOL {
		kind = token.EOL
	}
	return token.Token{Kind: kind, Start: start, End: end}, true
}

func (s *Scanner) scanIdentifier(start token.Offset) token.Token {
	s.cs.watchBegin()
	for !s.cs.eof() && isIdentPart(s.cs.peek()) {
		s.cs.read()
	}
	lit := s.cs.watchEnd()
	end := s.cs.currentOffset() - 1
	kind := token.Lookup(lit)
	if kind == token.NAME {
		return token.Token{Kind: token.NAME, Atom: lit, Start: start, End: end}
	}
	return token.Token{Kind: kind, Atom: lit, Start: start, End: end}
}

func (s *Scanner) errorToken(start token.Offset, code errs.Code, args map[string]any) token.Token {
	end := s.cs.currentOffset() - 1
	if end < start {
		end = start
	}
	s.reportErr(start, code, args)
	return token.Token{Kind: token.ERROR, Atom: string(code), Start: start, End: end}
}

// scanNumber scans a decimal, hex, or legacy-octal numeric literal. It
// only has to produce the correct lexeme text; base selection and the
// resulting numeric value are computed later, from that text, when the
// parser builds the NUMBER node (see parseNumericValue in the parser
// package).
func (s *Scanner) scanNumber(start token.Offset) token.Token {
	s.cs.watchBegin()
	if s.cs.peek() == '0' {
		s.cs.read()
		if s.cs.peek() == 'x' || s.cs.peek() == 'X' {
			s.cs.read()
			for isHexDigit(s.cs.peek()) {
				s.cs.read()
			}
			return s.finishNumber(start)
		}
	}
	for isDigit(s.cs.peek()) {
		s.cs.read()
	}
	if s.cs.peek() == '.' {
		s.cs.read()
		for isDigit(s.cs.peek()) {
			s.cs.read()
		}
	}
	if s.cs.peek() == 'e' || s.cs.peek() == 'E' {
		s.cs.read()
		if s.cs.peek() == '+' || s.cs.peek() == '-' {
			s.cs.read()
		}
		if !isDigit(s.cs.peek()) {
			lit := s.cs.watchEnd()
			end := s.cs.currentOffset() - 1
			s.reportErr(start, errs.SyntaxError, nil)
			return token.Token{Kind: token.ERROR, Atom: lit, Start: start, End: end}
		}
		for isDigit(s.cs.peek()) {
			s.cs.read()
		}
	}
	return s.finishNumber(start)
}

func (s *Scanner) finishNumber(start token.Offset) token.Token {
	lit := s.cs.watchEnd()
	end := s.cs.currentOffset() - 1
	if isIdentStart(s.cs.peek()) {
		// identifier-continuation immediately after a number literal
		for isIdentPart(s.cs.peek()) {
			s.cs.read()
		}
		return s.errorToken(start, errs.SyntaxError, nil)
	}
	return token.Token{Kind: token.NUMBER, Atom: lit, Start: start, End: end}
}

func (s *Scanner) scanString(start token.Offset, quote byte) token.Token {
	s.cs.watchBegin()
	s.cs.read() // opening quote
	for {
		if s.cs.eof() {
			lit := s.cs.watchEnd()
			end := s.cs.currentOffset() - 1
			s.reportErr(start, errs.EOF, nil)
			return token.Token{Kind: token.ERROR, Atom: lit, Start: start, End: end}
		}
		c := s.cs.peek()
		if c == '\r' || c == '\n' {
			lit := s.cs.watchEnd()
			end := s.cs.currentOffset() - 1
			s.reportErr(start, errs.SyntaxError, nil)
			return token.Token{Kind: token.ERROR, Atom: lit, Start: start, End: end}
		}
		if c == '\\' {
			s.cs.read()
			if s.cs.eof() {
				continue // loop will hit the EOF branch above
			}
			s.cs.read() // any escaped character is simply consumed
			continue
		}
		s.cs.read()
		if c == quote {
			break
		}
	}
	lit := s.cs.watchEnd()
	end := s.cs.currentOffset() - 1
	return token.Token{Kind: token.STRING, Atom: lit, Start: start, End: end}
}

func (s *Scanner) scanLineComment(start token.Offset) token.Token {
	s.cs.cursor = int(start) - int(s.cs.base) // rewind to '/'
	s.cs.watchBegin()
	s.cs.read()
	s.cs.read() // "//"
	for !s.cs.eof() && !strings.ContainsRune(lineTerminatorASCII, rune(s.cs.peek())) {
		s.cs.read()
	}
	lit := s.cs.watchEnd()
	end := s.cs.currentOffset() - 1
	return token.Token{Kind: token.CPPCOMMENT, Atom: lit, Start: start, End: end}
}

func (s *Scanner) scanBlockComment(start token.Offset) token.Token {
	s.cs.cursor = int(start) - int(s.cs.base)
	s.cs.watchBegin()
	s.cs.read()
	s.cs.read() // "/*"
	for {
		if s.cs.eof() {
			lit := s.cs.watchEnd()
			end := s.cs.currentOffset() - 1
			s.reportErr(start, errs.UnterminatedComment, nil)
			return token.Token{Kind: token.ERROR, Atom: lit, Start: start, End: end}
		}
		if s.cs.peek() == '*' && s.cs.peekAt(1) == '/' {
			s.cs.read()
			s.cs.read()
			break
		}
		s.cs.read()
	}
	lit := s.cs.watchEnd()
	end := s.cs.currentOffset() - 1
	return token.Token{Kind: token.CCOMMENT, Atom: lit, Start: start, End: end}
}

func (s *Scanner) scanHTMLComment(start token.Offset) token.Token {
	s.cs.cursor = int(start) - int(s.cs.base)
	s.cs.watchBegin()
	s.cs.read()
	s.cs.read()
	s.cs.read()
	s.cs.read() // "<!--"
	for !s.cs.eof() && !strings.ContainsRune(lineTerminatorASCII, rune(s.cs.peek())) {
		s.cs.read()
	}
	lit := s.cs.watchEnd()
	end := s.cs.currentOffset() - 1
	return token.Token{Kind: token.HTMLCOMMENT, Atom: lit, Start: start, End: end}
}

// scanRegexp scans a regular-expression literal, called only via
// NextWithRegexp once the parser has established a "/" here must start
// one rather than start a division.
func (s *Scanner) scanRegexp() token.Token {
	start := s.cs.currentOffset()
	s.cs.watchBegin()
	s.cs.read() // opening '/'
	inClass := false
	for {
		if s.cs.eof() {
			lit := s.cs.watchEnd()
			end := s.cs.currentOffset() - 1
			s.reportErr(start, errs.EOF, nil)
			return token.Token{Kind: token.ERROR, Atom: lit, Start: start, End: end}
		}
		c := s.cs.peek()
		if c == '\r' || c == '\n' {
			lit := s.cs.watchEnd()
			end := s.cs.currentOffset() - 1
			s.reportErr(start, errs.SyntaxError, nil)
			return token.Token{Kind: token.ERROR, Atom: lit, Start: start, End: end}
		}
		if c == '\\' {
			s.cs.read()
			if !s.cs.eof() {
				s.cs.read()
			}
			continue
		}
		if c == '[' {
			inClass = true
			s.cs.read()
			continue
		}
		if c == ']' {
			inClass = false
			s.cs.read()
			continue
		}
		if c == '/' && !inClass {
			s.cs.read()
			break
		}
		s.cs.read()
	}
	for isIdentPart(s.cs.peek()) {
		s.cs.read()
	}
	lit := s.cs.watchEnd()
	end := s.cs.currentOffset() - 1
	return token.Token{Kind: token.REGEXP, Atom: lit, Start: start, End: end}
}

func (s *Scanner) scanPunctuatorOrError(start token.Offset) token.Token {
	remainder := s.cs.src[s.cs.cursor:]
	if kind, n, ok := token.MatchPunctuator([]byte(remainder)); ok {
		for i := 0; i < n; i++ {
			s.cs.read()
		}
		end := s.cs.currentOffset() - 1
		return token.Token{Kind: kind, Start: start, End: end}
	}
	r, size := utf8.DecodeRuneInString(remainder)
	for i := 0; i < size; i++ {
		s.cs.read()
	}
	end := s.cs.currentOffset() - 1
	s.reportErr(start, errs.UnexpectedChar, map[string]any{"char": string(r)})
	return token.Token{Kind: token.ERROR, Atom: string(r), Start: start, End: end}
}
