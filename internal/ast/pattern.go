package ast

import (
	"github.com/fernlang/flin/internal/types"
)

// Pattern is implemented by all pattern nodes.
type Pattern interface {
	Range() types.Range
	patternNode()
}

// PWildcard is the _ pattern.
type PWildcard struct {
	Rng types.Range
}

// PVar binds a fresh name.
type PVar struct {
	Rng  types.Range
	Name string
}

// PInt matches an integer literal.
type PInt struct {
	Rng   types.Range
	Value int64
	Text  string
}

// PString matches a string literal.
type PString struct {
	Rng   types.Range
	Value string
}

// PChar matches a character literal.
type PChar struct {
	Rng   types.Range
	Value rune
}

// PTag matches a constructor application, e.g. Just x or Maybe.Nothing.
type PTag struct {
	Rng    types.Range
	Module string
	Name   string
	Args   []Pattern
}

// PTuple matches a tuple.
type PTuple struct {
	Rng   types.Range
	Elems []Pattern
}

// PList matches a list literal pattern [a, b].
type PList struct {
	Rng   types.Range
	Elems []Pattern
}

// PCons matches head :: tail.
type PCons struct {
	Rng  types.Range
	Head Pattern
	Tail Pattern
}

// PRecord matches record fields { a, b }.
type PRecord struct {
	Rng    types.Range
	Fields []string
}

// PAlias binds the whole match: pattern as name.
type PAlias struct {
	Rng   types.Range
	Inner Pattern
	Name  string
}

// PParen is a parenthesized pattern.
type PParen struct {
	Rng   types.Range
	Inner Pattern
}

// PUnit matches the unit value ().
type PUnit struct {
	Rng types.Range
}

func (p *PWildcard) Range() types.Range { return p.Rng }
func (p *PVar) Range() types.Range      { return p.Rng }
func (p *PInt) Range() types.Range      { return p.Rng }
func (p *PString) Range() types.Range   { return p.Rng }
func (p *PChar) Range() types.Range     { return p.Rng }
func (p *PTag) Range() types.Range      { return p.Rng }
func (p *PTuple) Range() types.Range    { return p.Rng }
func (p *PList) Range() types.Range     { return p.Rng }
func (p *PCons) Range() types.Range     { return p.Rng }
func (p *PRecord) Range() types.Range   { return p.Rng }
func (p *PAlias) Range() types.Range    { return p.Rng }
func (p *PParen) Range() types.Range    { return p.Rng }
func (p *PUnit) Range() types.Range     { return p.Rng }

func (*PWildcard) patternNode() {}
func (*PVar) patternNode()      {}
func (*PInt) patternNode()      {}
func (*PString) patternNode()   {}
func (*PChar) patternNode()     {}
func (*PTag) patternNode()      {}
func (*PTuple) patternNode()    {}
func (*PList) patternNode()     {}
func (*PCons) patternNode()     {}
func (*PRecord) patternNode()   {}
func (*PAlias) patternNode()    {}
func (*PParen) patternNode()    {}
func (*PUnit) patternNode()     {}

// PatternVars collects every name bound by the pattern, in source order.
func PatternVars(p Pattern) []string {
	var names []string
	collectPatternVars(p, &names)
	return names
}

func collectPatternVars(p Pattern, names *[]string) {
	switch pt := p.(type) {
	case *PVar:
		*names = append(*names, pt.Name)
	case *PTag:
		for _, arg := range pt.Args {
			collectPatternVars(arg, names)
		}
	case *PTuple:
		for _, el := range pt.Elems {
			collectPatternVars(el, names)
		}
	case *PList:
		for _, el := range pt.Elems {
			collectPatternVars(el, names)
		}
	case *PCons:
		collectPatternVars(pt.Head, names)
		collectPatternVars(pt.Tail, names)
	case *PRecord:
		*names = append(*names, pt.Fields...)
	case *PAlias:
		collectPatternVars(pt.Inner, names)
		*names = append(*names, pt.Name)
	case *PParen:
		collectPatternVars(pt.Inner, names)
	}
}

// ConstantPattern reports whether the pattern matches exactly one value
// and, if so, returns that value as an expression. Literals and
// zero-argument tags qualify; anything that binds or ignores does not.
func ConstantPattern(p Pattern) (Expr, bool) {
	switch pt := p.(type) {
	case *PInt:
		return &IntLit{Rng: pt.Rng, Value: pt.Value, Text: pt.Text}, true
	case *PString:
		return &StringLit{Rng: pt.Rng, Value: pt.Value}, true
	case *PChar:
		return &CharLit{Rng: pt.Rng, Value: pt.Value}, true
	case *PTag:
		if len(pt.Args) == 0 {
			return &Ident{Rng: pt.Rng, Module: pt.Module, Name: pt.Name}, true
		}
	case *PParen:
		return ConstantPattern(pt.Inner)
	}
	return nil, false
}
