// Command bf compiles and runs brainfuck programs: sift, parse/optimize,
// then interpret. -dis prints the compiled bytecode instead of running it;
// -trace prints a hit-count summary on exit; -no-unroll disables the
// Unroller for comparison against the optimizing path.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/primo-ppcg/bf-jit/disasm"
	"github.com/primo-ppcg/bf-jit/interp"
	"github.com/primo-ppcg/bf-jit/internal/trace"
	"github.com/primo-ppcg/bf-jit/parser"
	"github.com/primo-ppcg/bf-jit/sift"
)

var (
	dis       = flag.Bool("dis", false, "Print the compiled bytecode instead of running it.")
	doTrace   = flag.Bool("trace", false, "Print a merge-point hit-count summary to stderr on exit.")
	noUnroll  = flag.Bool("no-unroll", false, "Disable the balanced-loop unroller.")
	inlineSrc = flag.String("c", "", "Brainfuck source given directly on the command line.")
)

func main() {
	log.SetFlags(0)
	// ContinueOnError rather than the default ExitOnError so -h/--help can be
	// made to exit 1, matching the reference implementation's `-h` branch
	// (bf-jit.py's main() explicitly `return 1`s on help) instead of the
	// flag package's own built-in exit(0) for ErrHelp.
	flag.CommandLine.Init(os.Args[0], flag.ContinueOnError)
	if err := flag.CommandLine.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	source, err := readSource()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	code, depth := parse(sift.Bytes(source))
	switch {
	case depth > 0:
		fmt.Fprintln(os.Stderr, "Unmatched `[`")
		os.Exit(1)
	case depth < 0:
		fmt.Fprintln(os.Stderr, "Unmatched `]`")
		os.Exit(1)
	}

	if *dis {
		out, err := disasm.Disassemble(code)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Print(out)
		return
	}

	m := interp.New()
	var hits *trace.HitCounter
	if *doTrace {
		hits = trace.NewHitCounter(len(code))
		m.Recorder = hits
	}

	if err := m.Run(code, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if hits != nil {
		for _, pc := range hits.Top(10) {
			fmt.Fprintln(os.Stderr, pc)
		}
	}
}

// readSource returns the program source from -c if given, otherwise from the
// single positional filename argument; usage errors and missing files are
// both reported here so main stays a flat dispatch.
func readSource() ([]byte, error) {
	if *inlineSrc != "" {
		return []byte(*inlineSrc), nil
	}
	if flag.NArg() != 1 {
		flag.Usage()
		return nil, fmt.Errorf("usage: bf [-h] [-dis] [-trace] [-no-unroll] (<file> | -c <source>)")
	}
	name := flag.Arg(0)
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("File not found: %s", name)
	}
	return data, nil
}

func parse(source []byte) ([]byte, int) {
	if *noUnroll {
		return parser.ParseUnoptimized(source)
	}
	return parser.Parse(source)
}
