package ast

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes an indented debug dump of node to w, one line per node,
// showing Kind, a non-NOP Opcode, the Atom or NumericValue when present,
// and the node's offset span. It exists for tests and for the CLI's parse
// subcommand; it is not meant to round-trip back to source.
func Fprint(w io.Writer, node *Node) error {
	p := &printer{w: w}
	p.print(node, 0)
	return p.err
}

// Sprint is Fprint rendered to a string, for tests that want to compare
// the dump directly.
func Sprint(node *Node) string {
	var b strings.Builder
	Fprint(&b, node)
	return b.String()
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) print(n *Node, depth int) {
	if p.err != nil {
		return
	}
	if n == nil {
		p.printf(depth, "<elided>\n")
		return
	}
	var extra string
	switch {
	case n.HasValue:
		extra = fmt.Sprintf(" value=%v", n.NumericValue)
	case n.HasAtom:
		extra = fmt.Sprintf(" atom=%q", n.Atom)
	}
	op := ""
	if n.Opcode != NOP {
		op = " " + n.Opcode.String()
	}
	p.printf(depth, "%s%s [%d,%d]%s\n", n.Kind, op, n.Start, n.End, extra)
	for _, c := range n.Children {
		p.print(c, depth+1)
	}
	for _, c := range n.FnArgs {
		p.print(c, depth+1)
	}
	if n.EndComma != nil {
		p.printf(depth+1, "(trailing comma)\n")
	}
}

func (p *printer) printf(depth int, format string, args ...any) {
	if p.err != nil {
		return
	}
	_, err := fmt.Fprintf(p.w, "%s"+format, append([]any{strings.Repeat("  ", depth)}, args...)...)
	if err != nil {
		p.err = err
	}
}
