package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/legacyscript/jscore/parser"
	"github.com/legacyscript/jscore/probe"
)

func newProbeCmd(rc *runContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <file>",
		Short: "run the compilability probe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			version, _ := parser.ParseVersion(rc.version)
			if probe.IsCompilableUnit(string(src), version) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: complete\n", rc.runID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: incomplete\n", rc.runID)
			}
			return nil
		},
	}
}
