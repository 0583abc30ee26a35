package probe

import (
	"testing"

	"github.com/legacyscript/jscore/parser"
)

func TestIsCompilableUnitScenarios(t *testing.T) {
	cases := []struct {
		src  string
		want bool
	}{
		{`var s = "`, false},
		{`a /* b`, false},
		{`re = /.*`, false},
		{`{ // missing curly`, false},
		{`bogon()`, true},
		{`int syntax_error;`, true},
	}
	for _, c := range cases {
		got := IsCompilableUnit(c.src, parser.VersionDefault)
		if got != c.want {
			t.Errorf("IsCompilableUnit(%q) = %v, want %v", c.src, got, c.want)
		}
	}
}

func TestIsCompilableUnitEmptyInput(t *testing.T) {
	if !IsCompilableUnit("", parser.VersionDefault) {
		t.Error("IsCompilableUnit(\"\") = false, want true")
	}
}
