// Package main builds the lexer's DFA table offline and writes it to a JSON
// file, the shape internal/lexer.LoadTable reads back. Running this tool is
// optional: internal/lexer builds the identical table lazily, in-process,
// from the same pattern list if SCRIPTUM_DFA_TABLE is unset.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hassandahiru/scriptum/internal/dfatable"
	"github.com/hassandahiru/scriptum/internal/lexer"
)

func main() {
	out := flag.String("out", "scriptum_dfa.json", "path to write the DFA table JSON file")
	flag.Parse()

	dfa, err := dfatable.Build(lexer.Patterns())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error building DFA table: %v\n", err)
		os.Exit(1)
	}

	data, err := dfatable.ToJSON(dfa)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error encoding DFA table: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", *out, err)
		os.Exit(1)
	}

	fmt.Printf("✓ wrote DFA table to %s (%d bytes)\n", *out, len(data))
}
