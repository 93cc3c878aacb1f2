// Package scriptum is the module's driver facade: it re-exports the five
// pipeline stages (lex, parse, analyze, lower, run) as a single stable
// import, so a collaborator like cmd/scriptum or a future formatter never
// has to reach into five internal packages directly.
package scriptum

import (
	"github.com/hassandahiru/scriptum/internal/diag"
	"github.com/hassandahiru/scriptum/internal/interp"
	"github.com/hassandahiru/scriptum/internal/ir"
	"github.com/hassandahiru/scriptum/internal/lexer"
	"github.com/hassandahiru/scriptum/internal/parser"
	"github.com/hassandahiru/scriptum/internal/parser/ast"
	"github.com/hassandahiru/scriptum/internal/semantic"
	"github.com/hassandahiru/scriptum/internal/sourcemap"
)

// ParseOutput carries a parsed module together with the symbol interner that
// produced it. Lower and Analyze both need the interner to turn an
// ast.Symbol back into its source name, so the two travel together rather
// than forcing every caller to thread a second return value around.
type ParseOutput struct {
	Module      *ast.Module
	Interner    *ast.Interner
	Diagnostics []diag.Diagnostic
}

// Lex tokenizes source without building a syntax tree - useful on its own
// for a future formatter or syntax highlighter.
func Lex(source *sourcemap.File) ([]lexer.Token, []diag.Diagnostic) {
	return lexer.Tokenize(source)
}

// Parse runs the lexer and the recursive-descent/Pratt parser together and
// returns whatever tree it built, even a partial one, alongside any
// diagnostics - callers decide whether to stop on error.
func Parse(source *sourcemap.File) ParseOutput {
	module, interner, diags := parser.Parse(source)
	return ParseOutput{Module: module, Interner: interner, Diagnostics: diags}
}

// Analyze runs the scope-aware semantic checks over an already-parsed
// module and returns every diagnostic it found; an empty slice means the
// module is safe to lower.
func Analyze(parsed ParseOutput) []diag.Diagnostic {
	return semantic.New(parsed.Interner).Analyze(parsed.Module)
}

// Lower turns an analyzed module into its structural IR.
//
// DESIGN CHOICE: lowering a symbol reference back to its source name needs the interner
// Parse produced alongside the module, so this takes the whole ParseOutput
// rather than a bare *ast.Module. Lowering an already-analyzed module is
// defined to never fail on well-formed input, so there is no error return -
// internal/ir.Lower itself returns no error for the same reason.
func Lower(parsed ParseOutput) *ir.ModuleIr {
	return ir.Lower(parsed.Module, parsed.Interner)
}

// Run executes a lowered module's "main" function to completion.
func Run(module *ir.ModuleIr) (interp.Value, error) {
	return interp.Run(module)
}
