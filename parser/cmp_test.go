package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/legacyscript/jscore/errs"
)

// diagShape strips the Args map down to something cmp can compare without
// an Options list, since the parser's diagnostics carry argument maps of
// differing shapes across codes.
type diagShape struct {
	Offset int
	Code   errs.Code
}

func TestDiagnosticSequenceForChainedErrors(t *testing.T) {
	_, list := ParseFile("var s = \"", Options{Version: VersionDefault})
	if list.Len() == 0 {
		t.Fatal("expected at least one diagnostic")
	}

	got := make([]diagShape, len(list.Items()))
	for i, d := range list.Items() {
		got[i] = diagShape{Offset: int(d.Offset), Code: d.Code}
	}
	want := []diagShape{{Offset: 8, Code: errs.EOF}}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}
}
