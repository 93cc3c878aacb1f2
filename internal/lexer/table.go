package lexer

import (
	"os"
	"sync"

	"github.com/hassandahiru/scriptum/internal/dfatable"
)

var (
	tableOnce  sync.Once
	sharedDFA  *dfatable.DFA
	tableErr   error
)

// sharedTable builds (or loads) the combined DFA exactly once per process.
//
// spec describes the DFA table as "built offline; consumed at startup." This
// repository has no separate code-generation build step, so the table is
// built lazily from the same declarative pattern list cmd/gentable would
// otherwise serialize to disk; if SCRIPTUM_DFA_TABLE names a pre-built JSON
// file, that file is loaded instead, keeping both paths byte-identical.
func sharedTable() (*dfatable.DFA, error) {
	tableOnce.Do(func() {
		if path := os.Getenv("SCRIPTUM_DFA_TABLE"); path != "" {
			if data, err := os.ReadFile(path); err == nil {
				if d, err := dfatable.FromJSON(data); err == nil {
					sharedDFA = d
					return
				}
			}
		}
		sharedDFA, tableErr = dfatable.Build(tokenPatterns())
	})
	return sharedDFA, tableErr
}

// LoadTable loads a previously generated DFA table from a JSON file,
// bypassing the shared in-process table.
func LoadTable(path string) (*dfatable.DFA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return dfatable.FromJSON(data)
}
