package token

import "testing"

func TestMapFromOffset(t *testing.T) {
	src := "abc\r\ndef\nghi\n\nj"
	m := NewMap(src, Position{})

	want := []Position{
		{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4},
		{1, 0}, {1, 1}, {1, 2}, {1, 3},
		{2, 0}, {2, 1}, {2, 2}, {2, 3},
		{3, 0},
		{4, 0},
	}
	for i, w := range want {
		got := m.FromOffset(Offset(i))
		if got != w {
			t.Errorf("FromOffset(%d) = %+v, want %+v", i, got, w)
		}
	}
}

func TestMapRoundTrip(t *testing.T) {
	src := "abc\r\ndef\nghi\n\nj"
	m := NewMap(src, Position{})
	for o := 0; o <= len(src); o++ {
		pos := m.FromOffset(Offset(o))
		got, ok := m.ToOffset(pos)
		if !ok {
			t.Fatalf("ToOffset(%+v) not ok, from offset %d", pos, o)
		}
		if int(got) != o {
			t.Errorf("ToOffset(FromOffset(%d)) = %d, want %d", o, got, o)
		}
	}
}

func TestMapBase(t *testing.T) {
	// A non-zero base position shifts column 0 of the fragment's first
	// line; a line break inside the fragment resets the column the way
	// an ordinary (non-embedded) line does.
	m := NewMap(" ?", Position{Line: 0, Column: 2})
	if got := m.FromOffset(0); got != (Position{0, 2}) {
		t.Errorf("FromOffset(0) = %+v, want {0,2}", got)
	}
	if got := m.FromOffset(1); got != (Position{0, 3}) {
		t.Errorf("FromOffset(1) = %+v, want {0,3}", got)
	}

	m2 := NewMap("\n ?", Position{Line: 0, Column: 2})
	if got := m2.FromOffset(2); got != (Position{1, 1}) {
		t.Errorf("FromOffset(2) = %+v, want {1,1}", got)
	}
}
