package parser

import (
	"ccfront/pkg/token"
	"ccfront/pkg/types"
)

// declarator is the internal pointer/array/function/identifier tree the
// parser builds while reading a C declarator (spec.md §4.1). It is never
// exposed outside this package: process_declarator immediately folds it
// into a (name, *types.Type, paramNames) triple.
type declarator interface{ declaratorNode() }

type identDeclarator struct{ Name string }
type pointerDeclarator struct{ Inner declarator }
type parenDeclarator struct{ Inner declarator }
type arrayDeclarator struct {
	Of   declarator
	Size int
}
type paramSpec struct {
	Type *types.Type
	Name string // "" for an abstract/anonymous parameter
}
type funcDeclarator struct {
	Of     declarator
	Params []paramSpec
}

func (identDeclarator) declaratorNode()    {}
func (pointerDeclarator) declaratorNode()  {}
func (parenDeclarator) declaratorNode()    {}
func (arrayDeclarator) declaratorNode()    {}
func (funcDeclarator) declaratorNode()     {}

// specifierSet accumulates the base-type keywords seen so far and applies
// spec.md §4.1's exhaustive legality rules.
type specifierSet struct {
	sawInt, sawSigned, sawUnsigned, sawLong, sawShort, sawChar bool
	sawVoid                                                    bool
}

func (s *specifierSet) add(k token.Kind) error {
	switch k {
	case token.KW_INT:
		if s.sawInt {
			return errf("duplicate 'int' specifier")
		}
		s.sawInt = true
	case token.KW_SIGNED:
		if s.sawSigned {
			return errf("duplicate 'signed' specifier")
		}
		if s.sawUnsigned {
			return errf("both 'signed' and 'unsigned' specified")
		}
		s.sawSigned = true
	case token.KW_UNSIGNED:
		if s.sawUnsigned {
			return errf("duplicate 'unsigned' specifier")
		}
		if s.sawSigned {
			return errf("both 'signed' and 'unsigned' specified")
		}
		s.sawUnsigned = true
	case token.KW_LONG:
		if s.sawLong || s.sawShort || s.sawChar {
			return errf("invalid combination of size specifiers")
		}
		s.sawLong = true
	case token.KW_SHORT:
		if s.sawShort || s.sawLong || s.sawChar {
			return errf("invalid combination of size specifiers")
		}
		s.sawShort = true
	case token.KW_CHAR:
		if s.sawChar || s.sawLong || s.sawShort {
			return errf("invalid combination of size specifiers")
		}
		if s.sawInt {
			return errf("'char' and 'int' are mutually exclusive")
		}
		s.sawChar = true
	case token.KW_VOID:
		s.sawVoid = true
	default:
		return errf("not a type specifier")
	}
	return nil
}

// resolve maps the accumulated specifier set to a concrete Type following
// spec.md §4.1's mapping table exactly.
func (s *specifierSet) resolve() (*types.Type, error) {
	if s.sawVoid {
		if s.sawInt || s.sawSigned || s.sawUnsigned || s.sawLong || s.sawShort || s.sawChar {
			return nil, errf("'void' cannot combine with other type specifiers")
		}
		return types.TVoid, nil
	}
	switch {
	case s.sawChar:
		if s.sawSigned {
			return types.TSChar, nil
		}
		if s.sawUnsigned {
			return types.TUChar, nil
		}
		return types.TChar, nil
	case s.sawShort:
		if s.sawUnsigned {
			return types.TUShort, nil
		}
		return types.TShort, nil
	case s.sawLong:
		if s.sawUnsigned {
			return types.TULong, nil
		}
		return types.TLong, nil
	default:
		if s.sawUnsigned {
			return types.TUInt, nil
		}
		return types.TInt, nil
	}
}

// isTypeSpecifierStart reports whether k can begin a type-specifier list.
func isTypeSpecifierStart(k token.Kind) bool {
	switch k {
	case token.KW_INT, token.KW_SIGNED, token.KW_UNSIGNED, token.KW_LONG,
		token.KW_SHORT, token.KW_CHAR, token.KW_VOID:
		return true
	default:
		return false
	}
}

// isDeclarationStart reports whether k can begin a declaration: a type
// specifier or a storage-class keyword.
func isDeclarationStart(k token.Kind) bool {
	return isTypeSpecifierStart(k) || k == token.KW_STATIC || k == token.KW_EXTERN
}

// processDeclarator walks d outward, wrapping base accordingly (spec.md
// §4.1): `*D` is pointer-to-D, `(D)` groups, `D[N]` appends a dimension
// (outermost dimension wraps last because it is applied in the
// recursion's innermost — i.e. final — step), and `D(params)` makes a
// function declarator. Returns the declared name, the fully-wrapped
// type, and (for a function declarator) the parameter names in order.
func processDeclarator(d declarator, base *types.Type) (name string, derived *types.Type, paramNames []string, paramTypes []*types.Type, err error) {
	switch n := d.(type) {
	case identDeclarator:
		return n.Name, base, nil, nil, nil
	case pointerDeclarator:
		return processDeclarator(n.Inner, types.NewPointer(base))
	case parenDeclarator:
		return processDeclarator(n.Inner, base)
	case arrayDeclarator:
		return processDeclarator(n.Of, types.NewArray(base, n.Size))
	case funcDeclarator:
		names := make([]string, len(n.Params))
		ptypes := make([]*types.Type, len(n.Params))
		for i, p := range n.Params {
			names[i] = p.Name
			ptypes[i] = types.Decay(p.Type)
		}
		fn := types.NewFunction(base, ptypes)
		nm, derivedOuter, _, _, err2 := processDeclarator(n.Of, fn)
		if err2 != nil {
			return "", nil, nil, nil, err2
		}
		return nm, derivedOuter, names, ptypes, nil
	default:
		return "", nil, nil, nil, errf("malformed declarator")
	}
}
