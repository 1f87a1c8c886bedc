package check

import "ccfront/pkg/types"

// SymbolKind discriminates what a Symbol's name denotes (spec.md §4.4
// "Symbol table semantics"). Identifier resolution already rewrote every
// name to something globally unique, so one flat table serves the whole
// program; only file-scope names (and block-scope extern names linked to
// them) keep their original spelling, by construction never colliding with
// a minted "name.N". Block-scope `static` locals get a minted name too.
type SymbolKind int

const (
	KindFunc SymbolKind = iota
	KindStaticVar
	KindLocalVar
)

// InitState is a file-scope or static-local variable's initialization
// state; it only ever increases (spec.md §4.4: "no_init < tentative <
// initial").
type InitState int

const (
	NoInit InitState = iota
	Tentative
	Initial
)

// StaticInit is one chunk of a static-data record's folded byte sequence
// (spec.md §4.5 "Globals emit static-data records with their folded byte
// sequence"). A zero ZeroLen chunk carries explicit Bytes; otherwise it
// represents ZeroLen zero bytes (used for tentative globals and for the
// padding an under-sized compound initializer leaves behind).
type StaticInit struct {
	Bytes   []byte
	ZeroLen int
}

// Symbol is one entry in the flat symbol table the typechecker builds and
// TAC lowering/the interpreter read.
type Symbol struct {
	Name string
	Type *types.Type
	Kind SymbolKind

	// Functions.
	Defined bool
	Global  bool // external linkage

	// Static-duration variables (file scope, or a local `static`).
	InitState InitState
	InitData  []StaticInit
}
