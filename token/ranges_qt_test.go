package token

import (
	"testing"

	"github.com/go-quicktest/qt"
)

func TestRangesHasViaQt(t *testing.T) {
	var r Ranges
	r.Add(5, 10)
	r.Add(20, 25)

	qt.Assert(t, qt.IsTrue(r.Has(5)))
	qt.Assert(t, qt.IsTrue(r.Has(10)))
	qt.Assert(t, qt.IsFalse(r.Has(11)))
	qt.Assert(t, qt.IsTrue(r.Has(20)))
	qt.Assert(t, qt.IsFalse(r.Has(26)))
}

func TestRangesBoundsViaQt(t *testing.T) {
	var r Ranges
	r.Add(5, 10)
	r.Add(9, 11)
	qt.Assert(t, qt.DeepEquals(r.Bounds(), []int{5, 12}))
}

func TestMapFromOffsetViaQt(t *testing.T) {
	m := NewMap("ab\ncd\nef", Position{})
	pos := m.FromOffset(Offset(3))
	qt.Assert(t, qt.Equals(pos.Line, 1))
	qt.Assert(t, qt.Equals(pos.Column, 0))
}
