// Command jscore is a small CLI around the scanner, parser, and probe:
// it dumps token streams and parse trees, runs the compilability probe,
// and offers an interactive REPL built on the same probe.
package main

import (
	"fmt"
	"os"
)

func main() {
	os.Exit(Main())
}

// Main runs the root command against os.Args[1:] and returns the process
// exit code, split out from main so a testscript harness can register it
// as a subprocess command without actually forking a binary.
func Main() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
