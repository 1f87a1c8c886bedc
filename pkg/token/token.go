// Package token defines the token kinds and payload shapes produced by the
// token source (spec.md §6). spec.md treats lexing as an external
// collaborator specified only through this interface; this package also
// ships the reference implementation of that collaborator (§B.1 of
// SPEC_FULL.md) so the module runs end to end.
package token

import (
	"fmt"

	"ccfront/pkg/source"
)

// Kind identifies the category of a lexed token.
type Kind int

const (
	EOF Kind = iota

	// Literals
	IDENTIFIER
	INT_CONST    // decimal/hex literal, fits int32 with no suffix
	UINT_CONST   // literal with a 'u'/'U' suffix, or too large for int32
	LONG_CONST   // literal with an 'l'/'L' suffix, fits int64
	ULONG_CONST  // literal with a 'ul'/'lu' suffix, or too large for int64/uint32
	CHAR_CONST   // 'c'
	STRING_CONST // "..."

	// Keywords
	KW_RETURN
	KW_VOID
	KW_INT
	KW_SIGNED
	KW_UNSIGNED
	KW_LONG
	KW_SHORT
	KW_CHAR
	KW_STATIC
	KW_EXTERN
	KW_IF
	KW_ELSE
	KW_DO
	KW_WHILE
	KW_FOR
	KW_GOTO
	KW_BREAK
	KW_CONTINUE
	KW_SWITCH
	KW_CASE
	KW_DEFAULT

	// Punctuators
	LBRACE
	RBRACE
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	SEMICOLON
	COMMA
	COLON
	QUESTION

	// Operators
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	AMP
	PIPE
	CARET
	TILDE
	NOT
	SHL
	SHR
	AND_AND
	OR_OR
	PLUS_PLUS
	MINUS_MINUS

	ASSIGN
	PLUS_ASSIGN
	MINUS_ASSIGN
	STAR_ASSIGN
	SLASH_ASSIGN
	PERCENT_ASSIGN
	AMP_ASSIGN
	PIPE_ASSIGN
	CARET_ASSIGN
	SHL_ASSIGN
	SHR_ASSIGN

	EQ
	NOT_EQ
	LESS
	GREATER
	LESS_EQ
	GREATER_EQ
)

var kindNames = map[Kind]string{
	EOF: "EOF", IDENTIFIER: "IDENTIFIER", INT_CONST: "INT_CONST",
	UINT_CONST: "UINT_CONST", LONG_CONST: "LONG_CONST", ULONG_CONST: "ULONG_CONST",
	CHAR_CONST: "CHAR_CONST", STRING_CONST: "STRING_CONST",
	KW_RETURN: "return", KW_VOID: "void", KW_INT: "int", KW_SIGNED: "signed",
	KW_UNSIGNED: "unsigned", KW_LONG: "long", KW_SHORT: "short", KW_CHAR: "char",
	KW_STATIC: "static", KW_EXTERN: "extern", KW_IF: "if", KW_ELSE: "else",
	KW_DO: "do", KW_WHILE: "while", KW_FOR: "for", KW_GOTO: "goto",
	KW_BREAK: "break", KW_CONTINUE: "continue", KW_SWITCH: "switch",
	KW_CASE: "case", KW_DEFAULT: "default",
	LBRACE: "{", RBRACE: "}", LPAREN: "(", RPAREN: ")", LBRACKET: "[", RBRACKET: "]",
	SEMICOLON: ";", COMMA: ",", COLON: ":", QUESTION: "?",
	PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PERCENT: "%", AMP: "&",
	PIPE: "|", CARET: "^", TILDE: "~", NOT: "!", SHL: "<<", SHR: ">>",
	AND_AND: "&&", OR_OR: "||", PLUS_PLUS: "++", MINUS_MINUS: "--",
	ASSIGN: "=", PLUS_ASSIGN: "+=", MINUS_ASSIGN: "-=", STAR_ASSIGN: "*=",
	SLASH_ASSIGN: "/=", PERCENT_ASSIGN: "%=", AMP_ASSIGN: "&=", PIPE_ASSIGN: "|=",
	CARET_ASSIGN: "^=", SHL_ASSIGN: "<<=", SHR_ASSIGN: ">>=",
	EQ: "==", NOT_EQ: "!=", LESS: "<", GREATER: ">", LESS_EQ: "<=", GREATER_EQ: ">=",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Keywords maps source text to its keyword Kind; used by the reference
// lexer and available for any collaborator that tokenizes identically.
var Keywords = map[string]Kind{
	"return": KW_RETURN, "void": KW_VOID, "int": KW_INT, "signed": KW_SIGNED,
	"unsigned": KW_UNSIGNED, "long": KW_LONG, "short": KW_SHORT, "char": KW_CHAR,
	"static": KW_STATIC, "extern": KW_EXTERN, "if": KW_IF, "else": KW_ELSE,
	"do": KW_DO, "while": KW_WHILE, "for": KW_FOR, "goto": KW_GOTO,
	"break": KW_BREAK, "continue": KW_CONTINUE, "switch": KW_SWITCH,
	"case": KW_CASE, "default": KW_DEFAULT,
}

// Payload carries the decoded literal value for INT/UINT/LONG/ULONG/CHAR
// constants and the decoded bytes for STRING_CONST and IDENTIFIER tokens.
// Exactly the fields relevant to the token's Kind are meaningful.
type Payload struct {
	IntVal  int64         // INT_CONST/LONG_CONST (sign-extended), CHAR_CONST
	UintVal uint64        // UINT_CONST/ULONG_CONST
	Bytes   source.Slice  // STRING_CONST, IDENTIFIER
}

// Token is a single lexical unit produced by the token source.
type Token struct {
	Kind    Kind
	Payload Payload
	Ptr     source.Ptr // source_pointer: offset of the token's first byte
	Length  int
}

// Name returns the token's identifier/string text. Only meaningful when
// Kind is IDENTIFIER or STRING_CONST.
func (t Token) Name() string { return t.Payload.Bytes.String() }

func (t Token) String() string {
	switch t.Kind {
	case IDENTIFIER:
		return fmt.Sprintf("IDENTIFIER(%s)", t.Name())
	case STRING_CONST:
		return fmt.Sprintf("STRING(%q)", t.Name())
	case INT_CONST, CHAR_CONST:
		return fmt.Sprintf("%s(%d)", t.Kind, t.Payload.IntVal)
	case UINT_CONST, ULONG_CONST:
		return fmt.Sprintf("%s(%d)", t.Kind, t.Payload.UintVal)
	case LONG_CONST:
		return fmt.Sprintf("%s(%d)", t.Kind, t.Payload.IntVal)
	default:
		return t.Kind.String()
	}
}
