package ast

import (
	"github.com/fernlang/flin/internal/types"
)

// Exposing describes what a module header or import clause exposes.
type Exposing struct {
	All   bool
	Names []string
}

// Exposes reports whether the clause exposes the given name.
func (e Exposing) Exposes(name string) bool {
	if e.All {
		return true
	}
	for _, n := range e.Names {
		if n == name {
			return true
		}
	}
	return false
}

// Import is one import statement.
type Import struct {
	Rng      types.Range
	Module   string
	Alias    string
	Exposing *Exposing
}

// Decl is implemented by all top-level declarations.
type Decl interface {
	Range() types.Range
	declNode()
}

// FuncDecl is a top-level value or function declaration.
type FuncDecl struct {
	Rng    types.Range
	Name   string
	Params []Pattern
	Body   Expr
}

// Variant is one constructor of a union type.
type Variant struct {
	Rng   types.Range
	Name  string
	Arity int
}

// UnionDecl is a custom type declaration with its variants.
type UnionDecl struct {
	Rng      types.Range
	Name     string
	Variants []Variant
}

// AliasDecl is a type alias declaration. Fields is non-nil when the
// aliased type is a record, in declaration order.
type AliasDecl struct {
	Rng    types.Range
	Name   string
	Fields []string
}

func (d *FuncDecl) Range() types.Range  { return d.Rng }
func (d *UnionDecl) Range() types.Range { return d.Rng }
func (d *AliasDecl) Range() types.Range { return d.Rng }

func (*FuncDecl) declNode()  {}
func (*UnionDecl) declNode() {}
func (*AliasDecl) declNode() {}

// Module is one parsed Fern source file.
type Module struct {
	Rng      types.Range
	Name     string
	Exposing Exposing
	Imports  []Import
	Decls    []Decl
}

// Functions returns the module's function declarations in source order.
func (m *Module) Functions() []*FuncDecl {
	var fns []*FuncDecl
	for _, d := range m.Decls {
		if fd, ok := d.(*FuncDecl); ok {
			fns = append(fns, fd)
		}
	}
	return fns
}
