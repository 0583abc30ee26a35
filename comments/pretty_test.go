package comments

import (
	"testing"

	"github.com/kr/pretty"

	"github.com/legacyscript/jscore/parser"
)

func TestExtractMultipleCommentsPretty(t *testing.T) {
	src := "// first\na = 1;\n/* second */\nb = 2;"
	root, list := parser.ParseFile(src, parser.Options{Version: parser.VersionDefault})
	if root == nil {
		t.Fatalf("parse failed: %v", list.Items())
	}

	got := Extract(src, 0, root)
	want := []Comment{
		{Kind: Line, Start: 0, End: 7, Text: " first"},
		{Kind: Block, Start: 16, End: 27, Text: " second "},
	}

	if desc := pretty.Diff(want, got); len(desc) > 0 {
		t.Errorf("Extract mismatch:\n%s", pretty.Sprint(desc))
	}
}
