package ast

import "ccfront/pkg/source"

// Stmt is implemented by every node that does not produce a value.
type Stmt interface {
	stmtNode()
	Loc() source.Ptr
}

type stmtBase struct {
	Pos source.Ptr
}

func (s *stmtBase) stmtNode()       {}
func (s *stmtBase) Loc() source.Ptr { return s.Pos }

// Return is `return expr?;`. Expr is nil for a void function.
type Return struct {
	stmtBase
	Expr     Expr
	FuncName string // enclosing function, for return-type conversion
}

// ExprStmt evaluates Expr for its side effects.
type ExprStmt struct {
	stmtBase
	Expr Expr
}

// If is `if (Cond) Then [else Else]`.
type If struct {
	stmtBase
	Cond Expr
	Then Stmt
	Else Stmt // nil if absent
}

// Labeled is `name: stmt` (a user goto target, spec.md §4.3).
type Labeled struct {
	stmtBase
	Name      string
	Target    string // filled by label resolution: "<funcname>.user.<Name>"
	Stmt      Stmt
}

// Goto is `goto name;`.
type Goto struct {
	stmtBase
	Name   string
	Target string // filled by label resolution
}

// Block is `{ stmts... }`.
type Block struct {
	stmtBase
	Stmts []Stmt
}

// Break is `break;`; Label is filled by label resolution to the label of
// the innermost enclosing loop or switch.
type Break struct {
	stmtBase
	Label string
}

// Continue is `continue;`; Label is filled by label resolution to the
// label of the innermost enclosing loop (never a switch).
type Continue struct {
	stmtBase
	Label string
}

// While is `while (Cond) Body`.
type While struct {
	stmtBase
	Cond  Expr
	Body  Stmt
	Label string // loop label minted by label resolution
}

// DoWhile is `do Body while (Cond);`.
type DoWhile struct {
	stmtBase
	Body  Stmt
	Cond  Expr
	Label string
}

// For is `for (Init; Cond; Step) Body`. Init may be an ExprStmt, a
// VarDecl-wrapping DeclStmt, or nil; Cond may be nil (infinite loop);
// Step may be nil.
type For struct {
	stmtBase
	Init  Stmt
	Cond  Expr
	Step  Stmt
	Body  Stmt
	Label string
}

// Switch is `switch (Cond) Body`, with Cases collected by label
// resolution (spec.md §4.3: "each switch owns a list of case descriptors
// {value, label}").
type Switch struct {
	stmtBase
	Cond         Expr
	Body         Stmt
	Label        string // the switch's break target
	Cases        []CaseDescriptor
	DefaultLabel string // "" if no default
}

// CaseDescriptor is one entry in a switch's case list (spec.md §3).
type CaseDescriptor struct {
	Value int64 // folded constant value
	Label string
}

// Case is `case Value: Body`.
type Case struct {
	stmtBase
	Value Expr
	Body  Stmt
	Label string
}

// Default is `default: Body`.
type Default struct {
	stmtBase
	Body  Stmt
	Label string
}

// Null is the empty statement `;`.
type Null struct {
	stmtBase
}

// DeclStmt wraps a Decl appearing where a statement is expected (a local
// variable or local function declaration inside a block).
type DeclStmt struct {
	stmtBase
	Decl Decl
}
