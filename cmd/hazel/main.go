// Hazel CLI - loads a document and runs its call target.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"github.com/hazel-lang/hazel"
	"github.com/hazel-lang/hazel/modules"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	entry := flag.String("entry", "", "Entry point, overriding the document's call key")
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: hazel [options] file.hzl [args...]\n\n")
		fmt.Fprintf(os.Stderr, "Runs a hazel document. Extra arguments are passed to the entry point.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  hazel app.hzl              # Run app.hzl's call target (main by default)\n")
		fmt.Fprintf(os.Stderr, "  hazel -entry greet app.hzl Ada  # Run greet(\"Ada\")\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	prog, err := hazel.LoadFile(flag.Arg(0))
	if err != nil {
		report(err)
		os.Exit(1)
	}

	if *entry != "" {
		prog.CallTarget = *entry
		args := make([]hazel.Value, flag.NArg()-1)
		for i, a := range flag.Args()[1:] {
			args[i] = hazel.Str(a)
		}
		prog.CallArgs = args
	}

	ev := hazel.NewEvaluator(prog)
	modules.Install(ev.Resolver())

	result, err := ev.Run()
	if err != nil {
		report(err)
		os.Exit(1)
	}
	// A small integer result becomes the exit code.
	if n, ok := result.(hazel.Int); ok && n > 0 && n < 126 {
		os.Exit(int(n))
	}
}

// report prints a failure with its position and call stack, or a bare
// error when the failure machinery is not involved.
func report(err error) {
	fail, ok := err.(*hazel.Failure)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "%v: %s\n", fail.Kind, fail.Message)
	if fail.Line > 0 {
		if fail.File != "" {
			fmt.Fprintf(os.Stderr, "  at %s:%d:%d\n", fail.File, fail.Line, fail.Col)
		} else {
			fmt.Fprintf(os.Stderr, "  at line %d, column %d\n", fail.Line, fail.Col)
		}
	}
	for i := len(fail.Stack) - 1; i >= 0; i-- {
		fmt.Fprintf(os.Stderr, "  in %s\n", fail.Stack[i])
	}
}
