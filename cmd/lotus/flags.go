package main

import (
	"flag"
	"fmt"
	"os"
)

// RunOptions holds command-line configuration, mirroring the shape of
// Lotus's own CompilerOptions (flags.go) adapted from "compile to an
// executable" to "evaluate a module against the VM".
type RunOptions struct {
	Verbose     bool
	Eval        string
	ShowVersion bool
	ShowStats   bool
}

// ParseFlags parses command line arguments and returns run options plus
// the remaining positional arguments (the script path, if any).
func ParseFlags() (*RunOptions, []string, error) {
	opts := &RunOptions{}

	fs := flag.NewFlagSet("lotus", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	fs.BoolVar(&opts.Verbose, "v", false, "enable verbose logging")
	fs.StringVar(&opts.Eval, "e", "", "evaluate `source` instead of reading a file")
	fs.BoolVar(&opts.ShowVersion, "version", false, "print engine version and exit")
	fs.BoolVar(&opts.ShowStats, "stats", false, "print runtime statistics on exit")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: lotus [flags] <file>")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, nil, err
	}

	return opts, fs.Args(), nil
}
