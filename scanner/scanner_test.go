package scanner

import (
	"testing"

	"github.com/legacyscript/jscore/errs"
	"github.com/legacyscript/jscore/token"
)

func scanAll(t *testing.T, src string) ([]token.Token, []errs.Diagnostic) {
	t.Helper()
	var diags []errs.Diagnostic
	onErr := func(offset token.Offset, code errs.Code, args map[string]any) {
		diags = append(diags, errs.Diagnostic{Offset: offset, Code: code, Args: args})
	}
	sc := New(src, 0, onErr)
	var toks []token.Token
	for {
		tok, err := sc.Advance()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
		if err != nil {
			break
		}
	}
	return toks, diags
}

// scanRaw collects raw tokens, whitespace included, up to and including EOF.
func scanRaw(src string) []token.Token {
	sc := New(src, 0, nil)
	var raw []token.Token
	for {
		raw = append(raw, sc.scanOne())
		if raw[len(raw)-1].Kind == token.EOF {
			return raw
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestWhitespaceCollapsesToSingleTokens(t *testing.T) {
	got := kinds(scanRaw("a   b\t\tc"))
	want := []token.Kind{token.NAME, token.SPACE, token.NAME, token.SPACE, token.NAME, token.EOF}
	if !equalKinds(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
}

func TestEOLCollapsesCRLFAndLF(t *testing.T) {
	got := kinds(scanRaw("a\r\nb\nc"))
	want := []token.Kind{token.NAME, token.EOL, token.NAME, token.EOL, token.NAME, token.EOF}
	if !equalKinds(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
}

func equalKinds(a, b []token.Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCommentFlavors(t *testing.T) {
	sc := New("// line\n/* block */\n<!-- html -->\nx", 0, nil)
	var raw []token.Token
	for {
		raw = append(raw, sc.scanOne())
		if raw[len(raw)-1].Kind == token.EOF {
			break
		}
	}
	wantKinds := []token.Kind{
		token.CPPCOMMENT, token.EOL,
		token.CCOMMENT, token.EOL,
		token.HTMLCOMMENT, token.EOL,
		token.NAME, token.EOF,
	}
	got := kinds(raw)
	if !equalKinds(got, wantKinds) {
		t.Fatalf("kinds = %v, want %v", got, wantKinds)
	}
}

func TestStringNumberPunctuatorIdentifier(t *testing.T) {
	toks, _ := scanAll(t, `foo123 = "a\"b" + 0x1F - 3.5e2 != null`)
	got := kinds(toks)
	want := []token.Kind{
		token.NAME, token.ASSIGN, token.STRING, token.PLUS, token.NUMBER,
		token.MINUS, token.NUMBER, token.NE, token.NULL, token.EOF,
	}
	if !equalKinds(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
}

func TestRegexpVersusDivide(t *testing.T) {
	// "a = /\//g" — after the parser asks for a regexp rescan at the
	// DIV token, the scanner must produce a single REGEXP spanning the
	// whole literal including its "g" flag.
	src := `a = /\//g`
	sc := New(src, 0, nil)
	first, err := sc.Advance() // "a"
	if err != nil || first.Kind != token.NAME {
		t.Fatalf("first token = %+v, err = %v", first, err)
	}
	second, err := sc.Advance() // "="
	if err != nil || second.Kind != token.ASSIGN {
		t.Fatalf("second token = %+v, err = %v", second, err)
	}
	re := sc.NextWithRegexp()
	if re.Kind != token.REGEXP {
		t.Fatalf("NextWithRegexp() = %+v, want REGEXP", re)
	}
	if re.Atom != `/\//g` {
		t.Fatalf("regexp literal = %q, want %q", re.Atom, `/\//g`)
	}

	// "a = b/c/d" — with no NextWithRegexp call, repeated division reads
	// as ordinary DIV punctuators, not as a regexp literal.
	src2 := `a = b/c/d`
	toks, _ := scanAll(t, src2)
	got := kinds(toks)
	want := []token.Kind{
		token.NAME, token.ASSIGN, token.NAME, token.DIV, token.NAME,
		token.DIV, token.NAME, token.EOF,
	}
	if !equalKinds(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
}

func TestStickyErrorState(t *testing.T) {
	sc := New("@", 0, nil)
	first, err := sc.Advance()
	if first.Kind != token.ERROR || err == nil {
		t.Fatalf("first Advance() = %+v, err = %v, want ERROR with non-nil err", first, err)
	}
	second, err := sc.Advance()
	if err != errAlreadyErrored {
		t.Fatalf("second Advance() err = %v, want errAlreadyErrored", err)
	}
	if second.Kind != token.ERROR {
		t.Fatalf("second Advance() kind = %v, want ERROR", second.Kind)
	}
}

func TestUnterminatedBlockCommentReportsError(t *testing.T) {
	_, diags := scanAll(t, "/* never closed")
	if len(diags) != 1 || diags[0].Code != errs.UnterminatedComment {
		t.Fatalf("diags = %v, want a single unterminated_comment", diags)
	}
}
