// Package probe implements the compilability probe described in §4.6: a
// full parse attempt used by interactive hosts (a REPL, an editor buffer)
// to decide whether more input is expected before reporting a real error.
package probe

import "github.com/legacyscript/jscore/parser"

// IsCompilableUnit reports whether text is either a successful parse or a
// failure whose error code is NOT one of the "incomplete input" codes
// (eof/unexpected_eof, unterminated_comment). Those two mean the input
// may simply be truncated; every other failure, including a syntax error
// on a stray character, is a definitive parse of a (possibly invalid)
// complete unit.
func IsCompilableUnit(text string, version parser.Version) bool {
	_, list := parser.ParseFile(text, parser.Options{Version: version})
	if list.Len() == 0 {
		return true
	}
	return !list.Items()[0].Code.IsIncomplete()
}
