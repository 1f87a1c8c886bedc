// Package parser implements the recursive-descent declaration parser and
// precedence-climbing expression parser spec.md §4.1 describes. Its
// cursor/backtracking shape — a flat token slice, an integer position, a
// diagError helper that resolves a source.Ptr through the source map — is
// grounded on the teacher's pkg/compiler/parser.go Parser struct and its
// peek/peekNext/advance/expect helpers, generalized to spec.md §4.1's
// exact precedence table, declarator grammar, and furthest-progress error
// model (SPEC_FULL.md §0).
package parser

import (
	"fmt"

	"ccfront/pkg/ast"
	"ccfront/pkg/diag"
	"ccfront/pkg/source"
	"ccfront/pkg/token"
	"ccfront/pkg/types"
)

func errf(format string, args ...interface{}) error { return fmt.Errorf(format, args...) }

// Parser holds the token stream and the furthest-progress cursor used to
// produce a single, most-informative diagnostic even though individual
// productions may backtrack freely (spec.md §4.1: "on failure, restore to
// the saved cursor and report the error from the furthest point reached").
type Parser struct {
	toks   []token.Token
	arena  *source.Arena
	srcMap *source.Map
	pos    int

	furthestPos int
	furthestErr string
}

func New(toks []token.Token, arena *source.Arena, srcMap *source.Map) *Parser {
	return &Parser{toks: toks, arena: arena, srcMap: srcMap}
}

// Parse consumes the whole token stream as a sequence of top-level
// declarations (spec.md §3 "Program").
func Parse(toks []token.Token, arena *source.Arena, srcMap *source.Map) (*ast.Program, error) {
	p := New(toks, arena, srcMap)
	prog := &ast.Program{}
	for p.peek().Kind != token.EOF {
		d, err := p.parseDecl(true)
		if err != nil {
			return nil, p.diagError()
		}
		prog.Decls = append(prog.Decls, d)
	}
	return prog, nil
}

// ---- cursor helpers ----

func (p *Parser) peek() token.Token { return p.peekAt(0) }

func (p *Parser) peekAt(n int) token.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF sentinel
	}
	return p.toks[i]
}

func (p *Parser) advance() token.Token {
	t := p.peek()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(k token.Kind) bool { return p.peek().Kind == k }

func (p *Parser) expect(k token.Kind) (token.Token, error) {
	t := p.peek()
	if t.Kind != k {
		p.fail(t.Ptr, "expected %s, got %s", k, t.Kind)
		return t, errf("expected %s, got %s", k, t.Kind)
	}
	return p.advance(), nil
}

type mark int

func (p *Parser) mark() mark    { return mark(p.pos) }
func (p *Parser) reset(m mark)  { p.pos = int(m) }

func (p *Parser) fail(ptr source.Ptr, format string, args ...interface{}) {
	if int(ptr) >= p.furthestPos {
		p.furthestPos = int(ptr)
		p.furthestErr = fmt.Sprintf(format, args...)
	}
}

func (p *Parser) diagError() error {
	loc := p.srcMap.Locate(source.Ptr(p.furthestPos))
	msg := p.furthestErr
	if msg == "" {
		msg = "syntax error"
	}
	return diag.New(diag.PhaseParse, loc, "%s", msg)
}

// ---- declarations ----

// parseSpecifiers consumes a storage-class keyword (at most one, any
// position) interleaved with the base type-specifier keywords, per
// spec.md §4.1.
func (p *Parser) parseSpecifiers(allowStorage bool) (*types.Type, ast.Storage, error) {
	var set specifierSet
	storage := ast.StorageNone
	seenStorage := false
	seenAny := false
	for {
		k := p.peek().Kind
		if allowStorage && (k == token.KW_STATIC || k == token.KW_EXTERN) {
			if seenStorage {
				p.fail(p.peek().Ptr, "multiple storage-class specifiers")
				return nil, 0, errf("multiple storage-class specifiers")
			}
			seenStorage = true
			seenAny = true
			if k == token.KW_STATIC {
				storage = ast.StorageStatic
			} else {
				storage = ast.StorageExtern
			}
			p.advance()
			continue
		}
		if isTypeSpecifierStart(k) {
			if err := set.add(k); err != nil {
				p.fail(p.peek().Ptr, "%s", err.Error())
				return nil, 0, err
			}
			seenAny = true
			p.advance()
			continue
		}
		break
	}
	if !seenAny {
		p.fail(p.peek().Ptr, "expected a declaration")
		return nil, 0, errf("expected a declaration")
	}
	ty, err := set.resolve()
	if err != nil {
		p.fail(p.peek().Ptr, "%s", err.Error())
		return nil, 0, err
	}
	return ty, storage, nil
}

// parseDeclarator implements the declarator grammar: `*` declarator |
// direct-declarator, where direct-declarator is a parenthesized
// declarator or an identifier followed by any number of `[N]`/`(params)`
// suffixes (spec.md §4.1).
func (p *Parser) parseDeclarator() (declarator, error) {
	if p.at(token.STAR) {
		p.advance()
		inner, err := p.parseDeclarator()
		if err != nil {
			return nil, err
		}
		return pointerDeclarator{Inner: inner}, nil
	}
	return p.parseDirectDeclarator()
}

func (p *Parser) parseDirectDeclarator() (declarator, error) {
	var base declarator
	switch {
	case p.at(token.LPAREN):
		p.advance()
		inner, err := p.parseDeclarator()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		base = parenDeclarator{Inner: inner}
	case p.at(token.IDENTIFIER):
		base = identDeclarator{Name: p.advance().Name()}
	default:
		p.fail(p.peek().Ptr, "expected a declarator")
		return nil, errf("expected a declarator")
	}
	for {
		switch {
		case p.at(token.LBRACKET):
			p.advance()
			sizeTok, err := p.expect(token.INT_CONST)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			base = arrayDeclarator{Of: base, Size: int(sizeTok.Payload.IntVal)}
		case p.at(token.LPAREN):
			p.advance()
			params, err := p.parseParamList()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
			base = funcDeclarator{Of: base, Params: params}
		default:
			return base, nil
		}
	}
}

// parseParamList accepts `void`, an empty list, or a comma-separated list
// of parameters (spec.md §4.1: "function parameter lists accept
// void or () as the empty list"). A parameter whose specifiers are directly
// followed by `,` or `)` is unnamed; other abstract declarators (such as
// `int *`) are not accepted.
func (p *Parser) parseParamList() ([]paramSpec, error) {
	if p.at(token.RPAREN) {
		return nil, nil
	}
	if p.at(token.KW_VOID) && p.peekAt(1).Kind == token.RPAREN {
		p.advance()
		return nil, nil
	}
	var params []paramSpec
	for {
		base, _, err := p.parseSpecifiers(false)
		if err != nil {
			return nil, err
		}
		var d declarator = identDeclarator{}
		if !p.at(token.COMMA) && !p.at(token.RPAREN) {
			d, err = p.parseDeclarator()
			if err != nil {
				return nil, err
			}
		}
		name, ty, _, _, err := processDeclarator(d, base)
		if err != nil {
			p.fail(p.peek().Ptr, "%s", err.Error())
			return nil, err
		}
		params = append(params, paramSpec{Type: ty, Name: name})
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return params, nil
}

// parseDecl parses one declaration: specifiers, a declarator, then either
// `;`, `= initializer ;`, or (top level only) a function body.
func (p *Parser) parseDecl(topLevel bool) (ast.Decl, error) {
	pos := p.peek().Ptr
	base, storage, err := p.parseSpecifiers(true)
	if err != nil {
		return nil, err
	}
	d, err := p.parseDeclarator()
	if err != nil {
		return nil, err
	}
	name, ty, paramNames, _, err := processDeclarator(d, base)
	if err != nil {
		p.fail(pos, "%s", err.Error())
		return nil, err
	}

	if ty.Kind == types.Function {
		fd := &ast.FuncDecl{Name: name, Type: ty, Storage: storage, ParamNames: paramNames}
		fd.Pos = pos
		if p.at(token.LBRACE) {
			if !topLevel {
				p.fail(p.peek().Ptr, "nested function definitions are not allowed")
				return nil, errf("nested function definitions are not allowed")
			}
			body, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			if len(body.Stmts) == 0 {
				n := &ast.Null{}
				n.Pos = body.Pos
				body.Stmts = []ast.Stmt{n}
			}
			fd.Body = body
			return fd, nil
		}
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		return fd, nil
	}

	vd := &ast.VarDecl{Name: name, Type: ty, Storage: storage}
	vd.Pos = pos
	if p.at(token.ASSIGN) {
		p.advance()
		init, err := p.parseInitializer()
		if err != nil {
			return nil, err
		}
		vd.Init = init
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return vd, nil
}

func (p *Parser) parseInitializer() (ast.Initializer, error) {
	if p.at(token.LBRACE) {
		p.advance()
		var elems []ast.Initializer
		for !p.at(token.RBRACE) {
			el, err := p.parseInitializer()
			if err != nil {
				return nil, err
			}
			elems = append(elems, el)
			if p.at(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(token.RBRACE); err != nil {
			return nil, err
		}
		return ast.CompoundInit{Elements: elems}, nil
	}
	e, err := p.parseExpr(1)
	if err != nil {
		return nil, err
	}
	return ast.SingleInit{Expr: e}, nil
}

// ---- statements ----

func (p *Parser) parseBlock() (*ast.Block, error) {
	pos := p.peek().Ptr
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	blk := &ast.Block{}
	blk.Pos = pos
	for !p.at(token.RBRACE) {
		item, err := p.parseBlockItem()
		if err != nil {
			return nil, err
		}
		blk.Stmts = append(blk.Stmts, item)
	}
	p.advance() // '}'
	return blk, nil
}

func (p *Parser) parseBlockItem() (ast.Stmt, error) {
	if isDeclarationStart(p.peek().Kind) {
		d, err := p.parseDecl(false)
		if err != nil {
			return nil, err
		}
		ds := &ast.DeclStmt{Decl: d}
		ds.Pos = d.Loc()
		return ds, nil
	}
	return p.parseStatement()
}

func (p *Parser) parseStatement() (ast.Stmt, error) {
	pos := p.peek().Ptr
	switch p.peek().Kind {
	case token.KW_RETURN:
		p.advance()
		var e ast.Expr
		if !p.at(token.SEMICOLON) {
			var err error
			e, err = p.parseExpr(1)
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		r := &ast.Return{Expr: e}
		r.Pos = pos
		return r, nil

	case token.LBRACE:
		return p.parseBlock()

	case token.SEMICOLON:
		p.advance()
		n := &ast.Null{}
		n.Pos = pos
		return n, nil

	case token.KW_IF:
		p.advance()
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		cond, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		then, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		var els ast.Stmt
		if p.at(token.KW_ELSE) {
			p.advance()
			els, err = p.parseStatement()
			if err != nil {
				return nil, err
			}
		}
		s := &ast.If{Cond: cond, Then: then, Else: els}
		s.Pos = pos
		return s, nil

	case token.KW_WHILE:
		p.advance()
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		cond, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		s := &ast.While{Cond: cond, Body: body}
		s.Pos = pos
		return s, nil

	case token.KW_DO:
		p.advance()
		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.KW_WHILE); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		cond, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		s := &ast.DoWhile{Body: body, Cond: cond}
		s.Pos = pos
		return s, nil

	case token.KW_FOR:
		return p.parseFor()

	case token.KW_GOTO:
		p.advance()
		nameTok, err := p.expect(token.IDENTIFIER)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		g := &ast.Goto{Name: nameTok.Name()}
		g.Pos = pos
		return g, nil

	case token.KW_BREAK:
		p.advance()
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		b := &ast.Break{}
		b.Pos = pos
		return b, nil

	case token.KW_CONTINUE:
		p.advance()
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		c := &ast.Continue{}
		c.Pos = pos
		return c, nil

	case token.KW_SWITCH:
		p.advance()
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		cond, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		s := &ast.Switch{Cond: cond, Body: body}
		s.Pos = pos
		return s, nil

	case token.KW_CASE:
		p.advance()
		val, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		c := &ast.Case{Value: val, Body: body}
		c.Pos = pos
		return c, nil

	case token.KW_DEFAULT:
		p.advance()
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		d := &ast.Default{Body: body}
		d.Pos = pos
		return d, nil

	case token.IDENTIFIER:
		if p.peekAt(1).Kind == token.COLON {
			name := p.advance().Name()
			p.advance() // ':'
			stmt, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			l := &ast.Labeled{Name: name, Stmt: stmt}
			l.Pos = pos
			return l, nil
		}
		return p.parseExprStatement()

	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseExprStatement() (ast.Stmt, error) {
	pos := p.peek().Ptr
	e, err := p.parseExpr(1)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	s := &ast.ExprStmt{Expr: e}
	s.Pos = pos
	return s, nil
}

// parseFor handles the three-part for-header. Init may be an expression
// statement, a declaration, or absent (spec.md §3).
func (p *Parser) parseFor() (ast.Stmt, error) {
	pos := p.peek().Ptr
	p.advance() // 'for'
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var init ast.Stmt
	switch {
	case p.at(token.SEMICOLON):
		p.advance()
	case isDeclarationStart(p.peek().Kind):
		d, err := p.parseDecl(false)
		if err != nil {
			return nil, err
		}
		if _, isFunc := d.(*ast.FuncDecl); isFunc {
			p.fail(d.Loc(), "a function cannot be declared in a for-init")
			return nil, errf("a function cannot be declared in a for-init")
		}
		ds := &ast.DeclStmt{Decl: d}
		ds.Pos = d.Loc()
		init = ds
	default:
		s, err := p.parseExprStatement()
		if err != nil {
			return nil, err
		}
		init = s
	}

	var cond ast.Expr
	if !p.at(token.SEMICOLON) {
		var err error
		cond, err = p.parseExpr(1)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}

	var step ast.Expr
	if !p.at(token.RPAREN) {
		var err error
		step, err = p.parseExpr(1)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	var stepStmt ast.Stmt
	if step != nil {
		se := &ast.ExprStmt{Expr: step}
		se.Pos = step.Loc()
		stepStmt = se
	}
	f := &ast.For{Init: init, Cond: cond, Step: stepStmt, Body: body}
	f.Pos = pos
	return f, nil
}

// ---- expressions ----

var binPrec = map[token.Kind]int{
	token.STAR: 50, token.SLASH: 50, token.PERCENT: 50,
	token.PLUS: 45, token.MINUS: 45,
	token.SHL: 40, token.SHR: 40,
	token.LESS: 35, token.GREATER: 35, token.LESS_EQ: 35, token.GREATER_EQ: 35,
	token.EQ: 30, token.NOT_EQ: 30,
	token.AMP:  25,
	token.CARET: 20,
	token.PIPE:  15,
	token.AND_AND: 10,
	token.OR_OR:   5,
	token.QUESTION: 3,
	token.ASSIGN: 1, token.PLUS_ASSIGN: 1, token.MINUS_ASSIGN: 1, token.STAR_ASSIGN: 1,
	token.SLASH_ASSIGN: 1, token.PERCENT_ASSIGN: 1, token.AMP_ASSIGN: 1,
	token.PIPE_ASSIGN: 1, token.CARET_ASSIGN: 1, token.SHL_ASSIGN: 1, token.SHR_ASSIGN: 1,
}

func isAssignOp(k token.Kind) bool {
	switch k {
	case token.ASSIGN, token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN,
		token.SLASH_ASSIGN, token.PERCENT_ASSIGN, token.AMP_ASSIGN, token.PIPE_ASSIGN,
		token.CARET_ASSIGN, token.SHL_ASSIGN, token.SHR_ASSIGN:
		return true
	default:
		return false
	}
}

func compoundOpFor(k token.Kind) ast.CompoundOp {
	switch k {
	case token.ASSIGN:
		return ast.OpNone
	case token.PLUS_ASSIGN:
		return ast.OpAdd
	case token.MINUS_ASSIGN:
		return ast.OpSub
	case token.STAR_ASSIGN:
		return ast.OpMul
	case token.SLASH_ASSIGN:
		return ast.OpDiv
	case token.PERCENT_ASSIGN:
		return ast.OpMod
	case token.AMP_ASSIGN:
		return ast.OpAnd
	case token.PIPE_ASSIGN:
		return ast.OpOr
	case token.CARET_ASSIGN:
		return ast.OpXor
	case token.SHL_ASSIGN:
		return ast.OpShl
	case token.SHR_ASSIGN:
		return ast.OpShr
	default:
		return ast.OpNone
	}
}

func binOpFor(k token.Kind) ast.BinOp {
	switch k {
	case token.PLUS:
		return ast.BinAdd
	case token.MINUS:
		return ast.BinSub
	case token.STAR:
		return ast.BinMul
	case token.SLASH:
		return ast.BinDiv
	case token.PERCENT:
		return ast.BinMod
	case token.AMP:
		return ast.BinAnd
	case token.PIPE:
		return ast.BinOr
	case token.CARET:
		return ast.BinXor
	case token.SHL:
		return ast.BinShl
	case token.SHR:
		return ast.BinShr
	case token.EQ:
		return ast.BinEq
	case token.NOT_EQ:
		return ast.BinNotEq
	case token.LESS:
		return ast.BinLess
	case token.GREATER:
		return ast.BinGreater
	case token.LESS_EQ:
		return ast.BinLessEq
	case token.GREATER_EQ:
		return ast.BinGreaterEq
	case token.AND_AND:
		return ast.BinLogAnd
	case token.OR_OR:
		return ast.BinLogOr
	default:
		return ast.BinAdd
	}
}

// parseExpr is the precedence-climbing entry point (spec.md §4.1):
// assignment and compound-assignment operators are right-associative
// (the recursive call reuses the same minimum precedence); every other
// binary operator is left-associative (the recursive call raises the
// minimum precedence by one); the ternary binds at its own precedence
// on the right side.
func (p *Parser) parseExpr(minPrec int) (ast.Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		k := p.peek().Kind
		prec, ok := binPrec[k]
		if !ok || prec < minPrec {
			break
		}
		pos := p.peek().Ptr
		switch {
		case isAssignOp(k):
			if !ast.IsAssignable(left) {
				p.fail(pos, "left-hand side of assignment is not assignable")
				return nil, errf("left-hand side of assignment is not assignable")
			}
			p.advance()
			rhs, err := p.parseExpr(prec)
			if err != nil {
				return nil, err
			}
			a := &ast.Assign{Op: compoundOpFor(k), LHS: left, RHS: rhs}
			a.Pos = pos
			left = a
		case k == token.QUESTION:
			p.advance()
			thenE, err := p.parseExpr(1)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.COLON); err != nil {
				return nil, err
			}
			elseE, err := p.parseExpr(prec)
			if err != nil {
				return nil, err
			}
			c := &ast.Conditional{Cond: left, Then: thenE, Else: elseE}
			c.Pos = pos
			left = c
		default:
			p.advance()
			rhs, err := p.parseExpr(prec + 1)
			if err != nil {
				return nil, err
			}
			b := &ast.Binary{Op: binOpFor(k), LHS: left, RHS: rhs}
			b.Pos = pos
			left = b
		}
	}
	return left, nil
}

var one = ast.IntLit{Kind: ast.LitInt, IVal: 1}

// parseFactor handles prefix unary operators, the ++/-- desugaring, and
// casts, falling through to the postfix/primary level (spec.md §4.1).
func (p *Parser) parseFactor() (ast.Expr, error) {
	pos := p.peek().Ptr
	switch p.peek().Kind {
	case token.TILDE:
		p.advance()
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		u := &ast.Unary{Op: ast.UnaryComplement, Operand: operand}
		u.Pos = pos
		return u, nil
	case token.MINUS:
		p.advance()
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		u := &ast.Unary{Op: ast.UnaryNegate, Operand: operand}
		u.Pos = pos
		return u, nil
	case token.NOT:
		p.advance()
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		u := &ast.Unary{Op: ast.UnaryNot, Operand: operand}
		u.Pos = pos
		return u, nil
	case token.AMP:
		p.advance()
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		a := &ast.AddrOf{Operand: operand}
		a.Pos = pos
		return a, nil
	case token.STAR:
		p.advance()
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		d := &ast.Deref{Operand: operand}
		d.Pos = pos
		return d, nil
	case token.PLUS_PLUS:
		p.advance()
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		if !ast.IsAssignable(operand) {
			p.fail(pos, "operand of prefix '++' is not assignable")
			return nil, errf("operand of prefix '++' is not assignable")
		}
		lit := one
		a := &ast.Assign{Op: ast.OpAdd, LHS: operand, RHS: &lit}
		a.Pos = pos
		return a, nil
	case token.MINUS_MINUS:
		p.advance()
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		if !ast.IsAssignable(operand) {
			p.fail(pos, "operand of prefix '--' is not assignable")
			return nil, errf("operand of prefix '--' is not assignable")
		}
		lit := one
		a := &ast.Assign{Op: ast.OpSub, LHS: operand, RHS: &lit}
		a.Pos = pos
		return a, nil
	case token.LPAREN:
		if castExpr, ok, err := p.tryParseCast(); err != nil {
			return nil, err
		} else if ok {
			return castExpr, nil
		}
	}
	return p.parsePostfix()
}

// tryParseCast speculatively parses `( type '*'* )`. Cast targets in this
// subset are the base specifier list plus zero or more pointer stars — no
// array/function abstract declarators, since spec.md §4.4 requires a
// non-array cast target and this subset has no function-pointer values.
func (p *Parser) tryParseCast() (ast.Expr, bool, error) {
	start := p.mark()
	pos := p.peek().Ptr
	p.advance() // '('
	if !isTypeSpecifierStart(p.peek().Kind) {
		p.reset(start)
		return nil, false, nil
	}
	base, _, err := p.parseSpecifiers(false)
	if err != nil {
		p.reset(start)
		return nil, false, nil
	}
	target := base
	for p.at(token.STAR) {
		p.advance()
		target = types.NewPointer(target)
	}
	if !p.at(token.RPAREN) {
		p.reset(start)
		return nil, false, nil
	}
	p.advance() // ')'
	operand, err := p.parseFactor()
	if err != nil {
		return nil, false, err
	}
	c := &ast.Cast{Target: target, Operand: operand}
	c.Pos = pos
	return c, true, nil
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		pos := p.peek().Ptr
		switch p.peek().Kind {
		case token.LBRACKET:
			p.advance()
			idx, err := p.parseExpr(1)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			s := &ast.Subscript{Base: e, Index: idx}
			s.Pos = pos
			e = s
		case token.PLUS_PLUS:
			p.advance()
			if !ast.IsAssignable(e) {
				p.fail(pos, "operand of postfix '++' is not assignable")
				return nil, errf("operand of postfix '++' is not assignable")
			}
			pa := &ast.PostAssign{Op: ast.PostInc, Operand: e}
			pa.Pos = pos
			e = pa
		case token.MINUS_MINUS:
			p.advance()
			if !ast.IsAssignable(e) {
				p.fail(pos, "operand of postfix '--' is not assignable")
				return nil, errf("operand of postfix '--' is not assignable")
			}
			pa := &ast.PostAssign{Op: ast.PostDec, Operand: e}
			pa.Pos = pos
			e = pa
		default:
			return e, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	t := p.peek()
	switch t.Kind {
	case token.INT_CONST:
		p.advance()
		lit := &ast.IntLit{Kind: ast.LitInt, IVal: t.Payload.IntVal}
		lit.Pos = t.Ptr
		return lit, nil
	case token.UINT_CONST:
		p.advance()
		lit := &ast.IntLit{Kind: ast.LitUInt, UVal: t.Payload.UintVal}
		lit.Pos = t.Ptr
		return lit, nil
	case token.LONG_CONST:
		p.advance()
		lit := &ast.IntLit{Kind: ast.LitLong, IVal: t.Payload.IntVal}
		lit.Pos = t.Ptr
		return lit, nil
	case token.ULONG_CONST:
		p.advance()
		lit := &ast.IntLit{Kind: ast.LitULong, UVal: t.Payload.UintVal}
		lit.Pos = t.Ptr
		return lit, nil
	case token.CHAR_CONST:
		p.advance()
		lit := &ast.IntLit{Kind: ast.LitChar, IVal: t.Payload.IntVal}
		lit.Pos = t.Ptr
		return lit, nil
	case token.STRING_CONST:
		return p.parseStringLit()
	case token.IDENTIFIER:
		if p.peekAt(1).Kind == token.LPAREN {
			return p.parseCall()
		}
		p.advance()
		v := &ast.Variable{Name: t.Name()}
		v.Pos = t.Ptr
		return v, nil
	case token.LPAREN:
		p.advance()
		e, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return e, nil
	default:
		p.fail(t.Ptr, "expected an expression, got %s", t.Kind)
		return nil, errf("expected an expression, got %s", t.Kind)
	}
}

// parseStringLit concatenates adjacent string-literal tokens into a
// single StringLit (spec.md §4.1: "adjacent string literals concatenate").
func (p *Parser) parseStringLit() (ast.Expr, error) {
	first := p.advance()
	bytes := append([]byte(nil), first.Payload.Bytes.Bytes()...)
	for p.at(token.STRING_CONST) {
		next := p.advance()
		bytes = append(bytes, next.Payload.Bytes.Bytes()...)
	}
	sl := &ast.StringLit{}
	sl.Pos = first.Ptr
	sl.Value = p.arena.Intern(bytes)
	return sl, nil
}

func (p *Parser) parseCall() (ast.Expr, error) {
	nameTok := p.advance()
	pos := nameTok.Ptr
	p.advance() // '('
	var args []ast.Expr
	if !p.at(token.RPAREN) {
		for {
			a, err := p.parseExpr(1)
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.at(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	c := &ast.Call{Name: nameTok.Name(), Args: args}
	c.Pos = pos
	return c, nil
}
