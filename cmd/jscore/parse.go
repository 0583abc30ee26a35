package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/legacyscript/jscore/ast"
	"github.com/legacyscript/jscore/parser"
)

func newParseCmd(rc *runContext) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>",
		Short: "dump the parse tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			version, _ := parser.ParseVersion(rc.version)
			root, list := parser.ParseFile(string(src), parser.Options{
				Version:          version,
				EnableXMLLiteral: rc.xml,
			})
			for _, d := range list.Items() {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", rc.runID, d.Error())
			}
			if root == nil {
				return fmt.Errorf("parse failed")
			}
			return ast.Fprint(cmd.OutOrStdout(), root)
		},
	}
}
