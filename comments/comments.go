// Package comments implements the two-pass comment extractor described in
// §4.5: a regular-expression sweep over the raw source text, filtered
// against the string and regexp literal ranges recorded by a parse tree so
// that comment-like text living inside a string or regexp body is never
// reported as a real comment.
package comments

import (
	"regexp"

	"github.com/legacyscript/jscore/ast"
	"github.com/legacyscript/jscore/token"
)

// Kind distinguishes the two comment flavors this package reports; the
// HTML `<!--` form is lexical-only (the tokenizer already emits it as a
// token) and isn't part of this text-level sweep.
type Kind int

const (
	Line Kind = iota
	Block
)

// Comment is one extracted comment: its flavor, its absolute [Start, End]
// span including the delimiters, and Text, the content between the
// delimiters (the "//" or "/*"/"*/" themselves are not part of Text).
type Comment struct {
	Kind  Kind
	Start token.Offset
	End   token.Offset
	Text  string
}

// commentRe matches a line comment up to (not including) a line
// terminator, or a block comment up to its first "*/". Line comments are
// listed first in the alternation: Go's regexp package resolves
// alternation leftmost-first, same as a backtracking engine would, so at
// any position where both could start (they can't here, "//" and "/*"
// share no prefix) the first alternative wins; listed here purely to
// mirror the grammar's own comment-dispatch order.
var commentRe = regexp.MustCompile(`//[^\r\n]*|(?s:/\*.*?\*/)`)

// Extract runs the two-pass scan over text, whose absolute base offset is
// base (0 for a standalone file), masking against the string and regexp
// literal spans found by walking root.
func Extract(text string, base token.Offset, root *ast.Node) []Comment {
	var mask token.Ranges
	ast.Inspect(root, func(n *ast.Node) bool {
		if n == nil {
			return true
		}
		if n.Kind == ast.STRING || n.Kind == ast.REGEXP {
			mask.Add(int(n.Start), int(n.End))
		}
		return true
	})

	var out []Comment
	for _, loc := range commentRe.FindAllStringIndex(text, -1) {
		start := int(base) + loc[0]
		end := int(base) + loc[1] - 1 // inclusive
		if mask.Has(start) {
			continue
		}
		mask.Add(start, end)

		raw := text[loc[0]:loc[1]]
		c := Comment{Start: token.Offset(start), End: token.Offset(end)}
		if len(raw) >= 2 && raw[0] == '/' && raw[1] == '/' {
			c.Kind = Line
			c.Text = raw[2:]
		} else {
			c.Kind = Block
			c.Text = raw[2 : len(raw)-2]
		}
		out = append(out, c)
	}
	return out
}
