package ast

import (
	"ccfront/pkg/source"
	"ccfront/pkg/types"
)

// Storage is the declared storage class (spec.md §3).
type Storage int

const (
	StorageNone Storage = iota
	StorageStatic
	StorageExtern
)

// Decl is implemented by every top-level or block-scope declaration.
type Decl interface {
	declNode()
	Loc() source.Ptr
}

type declBase struct {
	Pos source.Ptr
}

func (d *declBase) declNode()       {}
func (d *declBase) Loc() source.Ptr { return d.Pos }

// Initializer is either a single expression or a compound list (spec.md
// §3: "Initializers are either single-expression or compound (for
// arrays)").
type Initializer interface {
	initNode()
}

type SingleInit struct {
	Expr Expr
}

func (SingleInit) initNode() {}

type CompoundInit struct {
	Elements []Initializer
}

func (CompoundInit) initNode() {}

// VarDecl is `type name [= initializer];`.
type VarDecl struct {
	declBase
	Name    string
	Type    *types.Type
	Storage Storage
	Init    Initializer // nil if absent
}

// FuncDecl is `type name(params) [{ body }];`. Body is nil for a
// declaration with no definition.
type FuncDecl struct {
	declBase
	Name       string
	Type       *types.Type // Function type; Params below give parameter names
	Storage    Storage
	ParamNames []string
	Body       Stmt // nil if this is a declaration only
}

// Program is the root of the AST: an ordered list of top-level
// declarations (spec.md §3 "Program").
type Program struct {
	Decls []Decl
}
