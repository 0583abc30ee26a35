// Package errs defines the diagnostic shape shared by the scanner and the
// parser: a closed set of error Codes, a positioned Diagnostic, and a List
// that accumulates and sorts diagnostics the way the teacher's own error
// list does (see cuelang.org/go/cue/errors for the pattern this mirrors).
package errs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/legacyscript/jscore/token"
)

// Code is one of the closed set of error/warning codes the scanner and
// parser may report.
type Code string

const (
	// EOF is reported when the input ends mid-token or mid-production.
	// "unexpected_eof" is accepted as a synonym by IsIncomplete.
	EOF                 Code = "eof"
	SemiBeforeStmnt     Code = "semi_before_stmnt"
	SyntaxError         Code = "syntax_error"
	UnterminatedComment Code = "unterminated_comment"
	ExpectedTok         Code = "expected_tok"
	UnexpectedChar      Code = "unexpected_char"
	InvalidAssign       Code = "invalid_assign"
	InvalidCase         Code = "invalid_case"
	InvalidCatch        Code = "invalid_catch"
	ExpectedStatement   Code = "expected_statement"
	E4XDeprecated       Code = "e4x_deprecated"
)

// unexpectedEOF is the synonym spec.md names for Code EOF.
const unexpectedEOF = "unexpected_eof"

// IsIncomplete reports whether code indicates the input may simply be
// truncated rather than definitively wrong — the distinction the
// compilability probe is built on.
func (c Code) IsIncomplete() bool {
	return c == EOF || string(c) == unexpectedEOF || c == UnterminatedComment
}

// Diagnostic is a single positioned error or warning.
type Diagnostic struct {
	Offset token.Offset
	Code   Code
	Args   map[string]any
}

func (d *Diagnostic) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", d.Code)
	if len(d.Args) > 0 {
		fmt.Fprintf(&b, " %v", d.Args)
	}
	fmt.Fprintf(&b, " (offset %d)", d.Offset)
	return b.String()
}

// Handler is the callback shape the scanner and parser report through.
// It is invoked at most once per call to the top-level Parse entry point,
// and any number of times against a List-backed handler that wants every
// diagnostic from a single pass.
type Handler func(offset token.Offset, code Code, args map[string]any)

// List accumulates diagnostics across a single scan/parse, mirroring the
// teacher's errors.List. Sort orders them by offset; Items and Err use
// the list's current order, which is insertion order until Sort is called.
type List struct {
	items []*Diagnostic
}

// AddNewf appends a new diagnostic to the list.
func (l *List) AddNewf(offset token.Offset, code Code, args map[string]any) {
	l.items = append(l.items, &Diagnostic{Offset: offset, Code: code, Args: args})
}

// Handler returns a Handler bound to this list, suitable for passing to
// the scanner/parser so every diagnostic in a pass is retained instead of
// just the first.
func (l *List) Handler() Handler {
	return func(offset token.Offset, code Code, args map[string]any) {
		l.AddNewf(offset, code, args)
	}
}

// Len reports the number of diagnostics collected so far.
func (l *List) Len() int { return len(l.items) }

// Items returns the accumulated diagnostics in insertion order. Callers
// must not mutate the result.
func (l *List) Items() []*Diagnostic { return l.items }

// Sort orders the list by offset, matching the teacher's list.Sort.
func (l *List) Sort() {
	sort.SliceStable(l.items, func(i, j int) bool {
		return l.items[i].Offset < l.items[j].Offset
	})
}

// Err returns nil if the list is empty, otherwise an error whose message
// joins every diagnostic on its own line.
func (l *List) Err() error {
	if len(l.items) == 0 {
		return nil
	}
	lines := make([]string, len(l.items))
	for i, d := range l.items {
		lines[i] = d.Error()
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}
