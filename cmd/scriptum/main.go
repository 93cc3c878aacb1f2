// Package main provides the scriptum driver entry point.
//
// This demonstrates the complete interpreter pipeline:
// 1. Lexical Analysis (tokenization)
// 2. Syntax Analysis (parsing)
// 3. Semantic Analysis (type checking, name resolution)
// 4. IR Lowering (structural intermediate representation)
// 5. Interpretation (tree-walking evaluation of "main")
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hassandahiru/scriptum"
	"github.com/hassandahiru/scriptum/internal/diag"
	"github.com/hassandahiru/scriptum/internal/sourcemap"
)

func main() {
	jsonDiagnostics := flag.Bool("json", false, "emit diagnostics as JSON instead of rendered text")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [-json] <source-file>\n", os.Args[0])
		os.Exit(1)
	}

	filename := flag.Arg(0)
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	file := sourcemap.NewFile(filename, string(source))

	parsed := scriptum.Parse(file)
	reportAndExitOnError(file, parsed.Diagnostics, *jsonDiagnostics)
	fmt.Printf("✓ Parsing successful\n")

	semanticDiags := scriptum.Analyze(parsed)
	reportAndExitOnError(file, semanticDiags, *jsonDiagnostics)
	fmt.Printf("✓ Semantic analysis successful\n")

	module := scriptum.Lower(parsed)
	fmt.Printf("✓ Lowering successful\n")

	result, err := scriptum.Run(module)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nRuntime fault: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Run successful\n")
	fmt.Printf("\n=== Result ===\n%s\n", result.String())
}

// reportAndExitOnError prints diags (rendered or JSON) and, if any carries
// error severity, exits the process non-zero.
func reportAndExitOnError(file *sourcemap.File, diags []diag.Diagnostic, asJSON bool) {
	if len(diags) == 0 {
		return
	}

	if asJSON {
		for _, d := range diags {
			encoded, err := d.MarshalJSONWithFile(file)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error marshaling diagnostic: %v\n", err)
				continue
			}
			fmt.Fprintln(os.Stderr, string(encoded))
		}
	} else {
		for _, d := range diags {
			fmt.Fprint(os.Stderr, d.Render(file))
		}
	}

	if diag.HasErrors(diags) {
		os.Exit(1)
	}
}
