package tac

import "ccfront/pkg/check"

// TopLevel is implemented by Function and StaticVar (spec.md §6: "each
// item is either a function ... or a static variable").
type TopLevel interface {
	topLevelNode()
}

// LocalSpec describes one name (a parameter or a local variable) a
// function's frame must reserve storage for (spec.md §4.6: "per-function
// frame mapping of locals ... to 64-bit slots or to an array of bytes").
// Every named variable, scalar or array, is byte-addressable so that
// get_address/load/store work uniformly; only lowering-minted
// temporaries, absent from this list, live purely as interpreter
// registers.
type LocalSpec struct {
	Name   string
	Width  int // scalar storage width in bytes
	Signed bool
	Array  bool
	Size   int // total byte size for an array; equals Width for a scalar
}

// Function is one lowered function body.
type Function struct {
	Name   string
	Params []string
	Global bool
	Locals []LocalSpec
	Body   []Instr
}

func (Function) topLevelNode() {}

// StaticVar is a global or file/static-scope variable's folded byte
// representation (spec.md §4.5: "Globals emit static-data records with
// their folded byte sequence").
type StaticVar struct {
	Name   string
	Global bool
	Width  int // scalar storage width in bytes; unused (0) for an array
	Signed bool
	Array  bool
	Init   []check.StaticInit
}

func (StaticVar) topLevelNode() {}

// Program is the ordered list of top-levels TAC lowering produces.
type Program struct {
	TopLevels []TopLevel
}
