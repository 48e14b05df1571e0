// Package ast defines the syntax tree for Fern modules. Nodes carry the
// source range they were parsed from and are never mutated by analysis;
// simplifications are produced as text edits against the original source.
package ast

import (
	"github.com/fernlang/flin/internal/types"
)

// Expr is implemented by all expression nodes.
type Expr interface {
	Range() types.Range
	exprNode()
}

// IntLit is an integer literal such as 42 or 0x2A.
type IntLit struct {
	Rng   types.Range
	Value int64
	Text  string
}

// FloatLit is a floating point literal such as 3.14.
type FloatLit struct {
	Rng   types.Range
	Value float64
	Text  string
}

// StringLit is a double-quoted string literal. Value holds the unescaped
// contents.
type StringLit struct {
	Rng   types.Range
	Value string
}

// CharLit is a single-quoted character literal.
type CharLit struct {
	Rng   types.Range
	Value rune
}

// Ident is a possibly qualified reference such as xs, List.map or
// Json.Decode.map. Module is the qualifier as written ("" when bare).
// Uppercase bare idents (True, Just, ...) are tag references.
type Ident struct {
	Rng    types.Range
	Module string
	Name   string
}

// Apply is function application: Fn Arg1 Arg2 ...
type Apply struct {
	Rng  types.Range
	Fn   Expr
	Args []Expr
}

// BinOp is a binary operator expression, including the pipe and
// composition operators |>, <|, >> and <<.
type BinOp struct {
	Rng   types.Range
	Op    string
	Left  Expr
	Right Expr
}

// Negate is unary arithmetic negation.
type Negate struct {
	Rng     types.Range
	Operand Expr
}

// If is a conditional expression: if Cond then Then else Else.
type If struct {
	Rng  types.Range
	Cond Expr
	Then Expr
	Else Expr
}

// CaseBranch is one pattern -> body arm of a case expression.
type CaseBranch struct {
	Rng     types.Range
	Pattern Pattern
	Body    Expr
}

// Case is a case .. of expression.
type Case struct {
	Rng      types.Range
	Subject  Expr
	Branches []CaseBranch
}

// Lambda is an anonymous function: \p1 p2 -> Body.
type Lambda struct {
	Rng    types.Range
	Params []Pattern
	Body   Expr
}

// LetDecl is one binding inside a let block. Either a named function
// (Name, Params, Body) or a destructuring bind (Pattern, Body).
type LetDecl struct {
	Rng     types.Range
	Name    string
	Params  []Pattern
	Pattern Pattern // non-nil for destructuring binds
	Body    Expr
}

// Let is a let .. in expression.
type Let struct {
	Rng   types.Range
	Decls []LetDecl
	Body  Expr
}

// ListLit is a list literal [a, b, c].
type ListLit struct {
	Rng   types.Range
	Elems []Expr
}

// TupleLit is a tuple literal (a, b) or (a, b, c).
type TupleLit struct {
	Rng   types.Range
	Elems []Expr
}

// Unit is the unit value ().
type Unit struct {
	Rng types.Range
}

// Field is one name = value pair in a record literal or update.
type Field struct {
	Rng   types.Range
	Name  string
	Value Expr
}

// Record is a record literal { a = 1, b = 2 }.
type Record struct {
	Rng    types.Range
	Fields []Field
}

// RecordUpdate is a record update { r | a = 1 }.
type RecordUpdate struct {
	Rng    types.Range
	Base   string
	Fields []Field
}

// FieldAccess is a projection r.field.
type FieldAccess struct {
	Rng    types.Range
	Target Expr
	Field  string
}

// Accessor is a field accessor function .field.
type Accessor struct {
	Rng   types.Range
	Field string
}

// Paren is a parenthesized expression. Analysis looks through it but the
// range is kept so fixes can drop redundant parentheses precisely.
type Paren struct {
	Rng   types.Range
	Inner Expr
}

func (e *IntLit) Range() types.Range       { return e.Rng }
func (e *FloatLit) Range() types.Range     { return e.Rng }
func (e *StringLit) Range() types.Range    { return e.Rng }
func (e *CharLit) Range() types.Range      { return e.Rng }
func (e *Ident) Range() types.Range        { return e.Rng }
func (e *Apply) Range() types.Range        { return e.Rng }
func (e *BinOp) Range() types.Range        { return e.Rng }
func (e *Negate) Range() types.Range       { return e.Rng }
func (e *If) Range() types.Range           { return e.Rng }
func (e *Case) Range() types.Range         { return e.Rng }
func (e *Lambda) Range() types.Range       { return e.Rng }
func (e *Let) Range() types.Range          { return e.Rng }
func (e *ListLit) Range() types.Range      { return e.Rng }
func (e *TupleLit) Range() types.Range     { return e.Rng }
func (e *Unit) Range() types.Range         { return e.Rng }
func (e *Record) Range() types.Range       { return e.Rng }
func (e *RecordUpdate) Range() types.Range { return e.Rng }
func (e *FieldAccess) Range() types.Range  { return e.Rng }
func (e *Accessor) Range() types.Range     { return e.Rng }
func (e *Paren) Range() types.Range        { return e.Rng }

func (*IntLit) exprNode()       {}
func (*FloatLit) exprNode()     {}
func (*StringLit) exprNode()    {}
func (*CharLit) exprNode()      {}
func (*Ident) exprNode()        {}
func (*Apply) exprNode()        {}
func (*BinOp) exprNode()        {}
func (*Negate) exprNode()       {}
func (*If) exprNode()           {}
func (*Case) exprNode()         {}
func (*Lambda) exprNode()       {}
func (*Let) exprNode()          {}
func (*ListLit) exprNode()      {}
func (*TupleLit) exprNode()     {}
func (*Unit) exprNode()         {}
func (*Record) exprNode()       {}
func (*RecordUpdate) exprNode() {}
func (*FieldAccess) exprNode()  {}
func (*Accessor) exprNode()     {}
func (*Paren) exprNode()        {}

// Unparen strips any number of enclosing Paren nodes.
func Unparen(e Expr) Expr {
	for {
		p, ok := e.(*Paren)
		if !ok {
			return e
		}
		e = p.Inner
	}
}

// QualifiedName joins the written qualifier and name of an identifier.
func (e *Ident) QualifiedName() string {
	if e.Module == "" {
		return e.Name
	}
	return e.Module + "." + e.Name
}

// IsTag reports whether the identifier names a constructor (uppercase
// initial letter).
func (e *Ident) IsTag() bool {
	if e.Name == "" {
		return false
	}
	c := e.Name[0]
	return c >= 'A' && c <= 'Z'
}
