// Command lotus evaluates a JavaScript module against the bytecode VM
// (spec.md §6/§7). This is the engine's CLI entry point, adapted from
// Lotus's own main.go/flags.go: parse flags, handle -version, then run
// the single remaining phase this engine needs — compile+call — rather
// than Lotus's assemble/link/-run pipeline.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"lotusjs/internal/builtins"
	"lotusjs/value"
	"lotusjs/vm"
)

// Version is the engine's own version string, independent of the
// teacher compiler's CompilerVersion.
const Version = "0.1.0"

func main() {
	os.Exit(run())
}

func run() int {
	opts, args, err := ParseFlags()
	if err != nil {
		return 2
	}

	if opts.ShowVersion {
		fmt.Printf("lotus engine version %s\n", Version)
		return 0
	}

	if opts.Eval == "" && len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		printUsage(os.Stderr)
		return 1
	}

	logger := log.New(io.Discard, "", 0)
	if opts.Verbose {
		logger = log.New(os.Stderr, "lotus: ", log.LstdFlags)
	}

	rt := vm.NewRuntime(vm.RuntimeOptions{Logger: logger, Loader: fsLoader{}})
	ctx := vm.NewContext(rt, vm.ContextOptions{Logger: logger})
	builtins.Install(ctx)

	var result value.Value
	var runErr error
	if opts.Eval != "" {
		result, runErr = ctx.Eval("<eval>", opts.Eval)
	} else {
		result, runErr = ctx.EvalByPath(args[0])
	}
	ctx.DrainMicrotasks()

	if opts.ShowStats {
		ctx.Stats.Print()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Uncaught: %v\n", runErr)
		return 1
	}
	if !result.IsUndefined() {
		fmt.Println(result.ToDisplayString())
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: lotus [flags] <file>")
	fmt.Fprintln(w, "Run 'lotus -h' for help")
}
