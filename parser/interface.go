package parser

import (
	"github.com/legacyscript/jscore/ast"
	"github.com/legacyscript/jscore/errs"
	"github.com/legacyscript/jscore/token"
)

// Options configures a parse beyond the legacy four-argument Parse entry
// point: the dialect Version, the base offset for an embedded fragment,
// and whether the XML-literal extension is enabled at all (still subject
// to Version.supportsXMLLiteral).
type Options struct {
	Version          Version
	Base             token.Offset
	EnableXMLLiteral bool
}

// Parse is the core entry point described in §6: it parses text and
// returns the resulting tree, or reports false and invokes onError exactly
// once on failure. It is a thin wrapper around ParseFile that collapses
// the richer errs.List down to the single-callback shape.
func Parse(text string, version Version, onError errs.Handler, base token.Offset) (*ast.Node, bool) {
	root, list := ParseFile(text, Options{Version: version, Base: base})
	if list.Len() == 0 {
		return root, true
	}
	if onError != nil {
		d := list.Items()[0]
		onError(d.Offset, d.Code, d.Args)
	}
	return nil, false
}

// ParseFile is the richer entry point tooling can use to recover the full
// errs.List (at most one error, since a single error aborts parsing, plus
// the e4x_deprecated warning when EnableXMLLiteral applies) rather than a
// single callback invocation, and to set EnableXMLLiteral
// without routing it through Parse's narrower signature.
func ParseFile(text string, opts Options) (*ast.Node, *errs.List) {
	return parse(text, opts)
}
