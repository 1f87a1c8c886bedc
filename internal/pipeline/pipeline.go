// Package pipeline wires the five core passes front to back (spec.md §2),
// the way the teacher's pkg/compiler/compile.go:Compile chains
// preprocess → lex → parse → codegen → assemble. Each stage here returns
// on the first error exactly as the teacher's does, but reports it as a
// diag.Error instead of a bare fmt.Errorf so the CLI driver can map it to
// the documented exit code (spec.md §6).
package pipeline

import (
	"ccfront/pkg/ast"
	"ccfront/pkg/check"
	"ccfront/pkg/diag"
	"ccfront/pkg/parser"
	"ccfront/pkg/resolve"
	"ccfront/pkg/source"
	"ccfront/pkg/tac"
	"ccfront/pkg/token"

	"go.uber.org/zap"
)

// Result is everything a successful run produces, handed to the CLI
// driver for --emit-tac / --interp.
type Result struct {
	Program *ast.Program
	Symbols map[string]*check.Symbol
	TAC     *tac.Program
}

// Run executes the full pipeline over one translation unit's already
// preprocessed text (spec.md §1: preprocessing is out of scope for this
// module, so filename/text arrive already expanded).
func Run(logger *zap.Logger, filename, text string) (*Result, error) {
	logger = logger.With(zap.String("file", filename))

	toks, arena, err := token.Lex(text)
	if err != nil {
		return nil, diag.New(diag.PhaseLexer, source.Loc{}, "%s", err.Error())
	}
	srcMap := source.NewMap(filename, text)
	logger.Debug("pass complete", zap.String("pass", "lex"), zap.Int("tokens", len(toks)))

	prog, err := parser.Parse(toks, arena, srcMap)
	if err != nil {
		return nil, err
	}
	logger.Debug("pass complete", zap.String("pass", "parse"), zap.Int("decls", len(prog.Decls)))

	counter := resolve.NewCounter()
	if err := resolve.ResolveIdentifiers(prog, counter, srcMap); err != nil {
		return nil, err
	}
	logger.Debug("pass complete", zap.String("pass", "identifier resolution"))

	if err := resolve.ResolveLabels(prog, counter, srcMap); err != nil {
		return nil, err
	}
	logger.Debug("pass complete", zap.String("pass", "label resolution"))

	syms, err := check.Check(prog, srcMap)
	if err != nil {
		return nil, err
	}
	logger.Debug("pass complete", zap.String("pass", "typecheck"), zap.Int("symbols", len(syms)))

	tacProg, err := tac.Lower(prog, syms, counter)
	if err != nil {
		return nil, diag.New(diag.PhaseTAC, source.Loc{}, "%s", err.Error())
	}
	logger.Debug("pass complete", zap.String("pass", "tac lowering"), zap.Int("toplevels", len(tacProg.TopLevels)))

	return &Result{Program: prog, Symbols: syms, TAC: tacProg}, nil
}

// NewLogger builds a new development logger, which the CLI driver passes
// to Run (SPEC_FULL.md §A.2): console encoding, Debug level, tagged with
// the owning component.
func NewLogger() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("component", "cfront")), nil
}
