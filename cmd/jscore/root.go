package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/legacyscript/jscore/parser"
)

// runContext carries the flags and run_id shared by every subcommand,
// the way cmd/cue's root command shares its own context across its
// subcommand tree.
type runContext struct {
	version string
	xml     bool
	runID   string
}

func newRootCmd() *cobra.Command {
	rc := &runContext{}

	root := &cobra.Command{
		Use:           "jscore",
		Short:         "scanner, parser, and probe for a legacy scripting dialect",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := parser.ParseVersion(rc.version); !ok {
				return fmt.Errorf("unknown version %q", rc.version)
			}
			rc.runID = uuid.NewString()
			return nil
		},
	}
	root.PersistentFlags().StringVar(&rc.version, "version", string(parser.VersionDefault), "language version (default, 1.0-1.7)")
	root.PersistentFlags().BoolVar(&rc.xml, "xml-literal", false, "enable the XML-literal extension")

	root.AddCommand(newTokensCmd(rc))
	root.AddCommand(newParseCmd(rc))
	root.AddCommand(newProbeCmd(rc))
	root.AddCommand(newReplCmd(rc))
	return root
}
