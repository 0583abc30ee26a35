package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/legacyscript/jscore/errs"
	"github.com/legacyscript/jscore/scanner"
	"github.com/legacyscript/jscore/token"
)

func newTokensCmd(rc *runContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "dump the token stream with offsets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			sc := scanner.New(string(src), 0, func(offset token.Offset, code errs.Code, _ map[string]any) {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s at offset %d: %s\n", rc.runID, "lexical error", offset, code)
			})
			for {
				t, err := sc.Advance()
				fmt.Fprintf(out, "%-12s [%d,%d]", t.Kind, t.Start, t.End)
				if t.HasAtom() {
					fmt.Fprintf(out, " %q", t.Atom)
				}
				fmt.Fprintln(out)
				if err != nil || t.Kind == token.EOF {
					break
				}
			}
			return nil
		},
	}
}
