package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/cobra"

	"github.com/legacyscript/jscore/parser"
	"github.com/legacyscript/jscore/probe"
)

// newReplCmd drives an interactive loop around the compilability probe:
// each line is appended to a pending buffer; once the buffer probes as a
// complete unit it is parsed and reported, and the buffer resets. Lines
// starting with ":" are meta-commands (":version 1.5", ":reset") split
// with shlex rather than a bare space-split, so a quoted version argument
// behaves the way a shell would parse it.
func newReplCmd(rc *runContext) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "interactive probe-driven read-eval-print loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewScanner(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			var pending strings.Builder

			version, _ := parser.ParseVersion(rc.version)

			for in.Scan() {
				line := in.Text()
				if strings.HasPrefix(strings.TrimSpace(line), ":") {
					fields, err := shlex.Split(strings.TrimSpace(line)[1:])
					if err != nil || len(fields) == 0 {
						fmt.Fprintln(out, "bad meta-command")
						continue
					}
					switch fields[0] {
					case "reset":
						pending.Reset()
					case "version":
						if len(fields) != 2 {
							fmt.Fprintln(out, "usage: :version <v>")
							continue
						}
						v, ok := parser.ParseVersion(fields[1])
						if !ok {
							fmt.Fprintln(out, "unknown version")
							continue
						}
						version = v
					default:
						fmt.Fprintf(out, "unknown meta-command %q\n", fields[0])
					}
					continue
				}

				pending.WriteString(line)
				pending.WriteByte('\n')

				text := pending.String()
				if !probe.IsCompilableUnit(text, version) {
					continue // keep accumulating lines
				}
				root, list := parser.ParseFile(text, parser.Options{Version: version})
				if root != nil {
					fmt.Fprintf(out, "%s: ok (%d top-level statements)\n", rc.runID, len(root.Children))
				} else {
					for _, d := range list.Items() {
						fmt.Fprintf(out, "%s: %s\n", rc.runID, d.Error())
					}
				}
				pending.Reset()
			}
			return in.Err()
		},
	}
}
