package scanner

import (
	"github.com/legacyscript/jscore/errs"
	"github.com/legacyscript/jscore/token"
)

// NewEmbedded wires together the base-offset and base-position parameters
// a host document scanner needs when handing this package a fragment of a
// larger file: text is the fragment itself, baseOffset is its absolute
// byte offset in the enclosing document, and basePos is the (line, column)
// that baseOffset corresponds to there. It returns a ready Scanner plus
// the token.Map a caller should use to translate any offset the parser
// reports back into a position in the enclosing document.
func NewEmbedded(text string, baseOffset token.Offset, basePos token.Position, onError errs.Handler) (*Scanner, *token.Map) {
	m := token.NewMap(text, basePos)
	sc := New(text, baseOffset, onError)
	return sc, m
}
