// Package typeprop describes container-like kinds as data: which value
// is the empty/identity element, which one-argument constructor wraps a
// single value, how literal element listings are read, and how the kind
// is built from a list literal. One generic check body driven by these
// records replaces dozens of per-type rule bodies, and the whole catalog
// can be exercised by a single parameterized test suite.
package typeprop

import (
	"github.com/fernlang/flin/internal/ast"
	"github.com/fernlang/flin/internal/scope"
)

// Kind enumerates the container kinds the engine knows.
type Kind int

const (
	KindList Kind = iota
	KindString
	KindSet
	KindDict
	KindArray
	KindMaybe
	KindResult
	KindTask
	KindDecoder
	KindGenerator
	KindCmd
)

func (k Kind) String() string {
	switch k {
	case KindList:
		return "List"
	case KindString:
		return "String"
	case KindSet:
		return "Set"
	case KindDict:
		return "Dict"
	case KindArray:
		return "Array"
	case KindMaybe:
		return "Maybe"
	case KindResult:
		return "Result"
	case KindTask:
		return "Task"
	case KindDecoder:
		return "Json.Decode"
	case KindGenerator:
		return "Random"
	case KindCmd:
		return "Cmd"
	default:
		return "?"
	}
}

// Resolve maps a written identifier to the function it denotes, or
// reports that it cannot be resolved (shadowed, unknown).
type Resolve func(*ast.Ident) (scope.FuncIdent, bool)

// Qualify prints a reference to a function valid at the insertion point.
type Qualify func(scope.FuncIdent) string

// EmptyProp describes a kind's identity element.
type EmptyProp struct {
	// Is recognizes the element in source form.
	Is func(ast.Expr, Resolve) bool
	// Print renders the element for insertion.
	Print func(Qualify) string
}

// WrapProp describes the one-argument "container holding exactly one
// value" constructor.
type WrapProp struct {
	// Ctor is the wrapping constructor.
	Ctor scope.FuncIdent
	// Extract recognizes a wrap and returns the wrapped expression.
	Extract func(ast.Expr, Resolve) (ast.Expr, bool)
}

// ElementsProp reads literal element listings.
type ElementsProp struct {
	// Get returns the listed elements. exhaustive is false when the
	// expression only shows a prefix (cons onto an unknown tail).
	Get func(ast.Expr, Resolve) (elems []ast.Expr, exhaustive bool, ok bool)
}

// FromListProp describes how the kind is built from a list literal.
type FromListProp struct {
	Fn scope.FuncIdent
}

// MapProp names the kind's structure-preserving map.
type MapProp struct {
	Fn scope.FuncIdent
	// ContainerArg is the index of the container argument when the map
	// is fully applied.
	ContainerArg int
	Arity        int
}

// Properties bundles whichever properties apply to one kind. Missing
// properties are nil; generic checks skip what is absent.
type Properties struct {
	Kind     Kind
	Empty    *EmptyProp
	Wrap     *WrapProp
	Elements *ElementsProp
	FromList *FromListProp
	Map      *MapProp
}

// Catalog is the immutable kind table, built once and only read.
var Catalog = map[Kind]Properties{
	KindList: {
		Kind:     KindList,
		Empty:    &EmptyProp{Is: isEmptyList, Print: func(Qualify) string { return "[]" }},
		Wrap:     &WrapProp{Ctor: scope.FuncIdent{Module: "List", Name: "singleton"}, Extract: extractListSingleton},
		Elements: &ElementsProp{Get: listElements},
		Map:      &MapProp{Fn: scope.FuncIdent{Module: "List", Name: "map"}, ContainerArg: 1, Arity: 2},
	},
	KindString: {
		Kind: KindString,
		Empty: &EmptyProp{
			Is:    isEmptyString,
			Print: func(Qualify) string { return `""` },
		},
		Wrap: &WrapProp{Ctor: scope.FuncIdent{Module: "String", Name: "fromChar"}, Extract: makeCtorExtract("String", "fromChar")},
	},
	KindSet: {
		Kind: KindSet,
		Empty: &EmptyProp{
			Is:    makeEmptyCall("Set", "empty"),
			Print: func(q Qualify) string { return q(scope.FuncIdent{Module: "Set", Name: "empty"}) },
		},
		Wrap:     &WrapProp{Ctor: scope.FuncIdent{Module: "Set", Name: "singleton"}, Extract: makeCtorExtract("Set", "singleton")},
		FromList: &FromListProp{Fn: scope.FuncIdent{Module: "Set", Name: "fromList"}},
		Map:      &MapProp{Fn: scope.FuncIdent{Module: "Set", Name: "map"}, ContainerArg: 1, Arity: 2},
	},
	KindDict: {
		Kind: KindDict,
		Empty: &EmptyProp{
			Is:    makeEmptyCall("Dict", "empty"),
			Print: func(q Qualify) string { return q(scope.FuncIdent{Module: "Dict", Name: "empty"}) },
		},
		FromList: &FromListProp{Fn: scope.FuncIdent{Module: "Dict", Name: "fromList"}},
	},
	KindArray: {
		Kind: KindArray,
		Empty: &EmptyProp{
			Is:    makeEmptyCall("Array", "empty"),
			Print: func(q Qualify) string { return q(scope.FuncIdent{Module: "Array", Name: "empty"}) },
		},
		FromList: &FromListProp{Fn: scope.FuncIdent{Module: "Array", Name: "fromList"}},
		Map:      &MapProp{Fn: scope.FuncIdent{Module: "Array", Name: "map"}, ContainerArg: 1, Arity: 2},
	},
	KindMaybe: {
		Kind: KindMaybe,
		Empty: &EmptyProp{
			Is:    makeTag("Maybe", "Nothing"),
			Print: func(q Qualify) string { return q(scope.FuncIdent{Module: "Maybe", Name: "Nothing"}) },
		},
		Wrap: &WrapProp{Ctor: scope.FuncIdent{Module: "Maybe", Name: "Just"}, Extract: makeCtorExtract("Maybe", "Just")},
		Map:  &MapProp{Fn: scope.FuncIdent{Module: "Maybe", Name: "map"}, ContainerArg: 1, Arity: 2},
	},
	KindResult: {
		Kind: KindResult,
		Wrap: &WrapProp{Ctor: scope.FuncIdent{Module: "Result", Name: "Ok"}, Extract: makeCtorExtract("Result", "Ok")},
		Map:  &MapProp{Fn: scope.FuncIdent{Module: "Result", Name: "map"}, ContainerArg: 1, Arity: 2},
	},
	KindTask: {
		Kind: KindTask,
		Wrap: &WrapProp{Ctor: scope.FuncIdent{Module: "Task", Name: "succeed"}, Extract: makeCtorExtract("Task", "succeed")},
		Map:  &MapProp{Fn: scope.FuncIdent{Module: "Task", Name: "map"}, ContainerArg: 1, Arity: 2},
	},
	KindDecoder: {
		Kind: KindDecoder,
		Wrap: &WrapProp{Ctor: scope.FuncIdent{Module: "Json.Decode", Name: "succeed"}, Extract: makeCtorExtract("Json.Decode", "succeed")},
		Map:  &MapProp{Fn: scope.FuncIdent{Module: "Json.Decode", Name: "map"}, ContainerArg: 1, Arity: 2},
	},
	KindGenerator: {
		Kind: KindGenerator,
		Wrap: &WrapProp{Ctor: scope.FuncIdent{Module: "Random", Name: "constant"}, Extract: makeCtorExtract("Random", "constant")},
		Map:  &MapProp{Fn: scope.FuncIdent{Module: "Random", Name: "map"}, ContainerArg: 1, Arity: 2},
	},
	KindCmd: {
		Kind: KindCmd,
		Empty: &EmptyProp{
			Is:    makeEmptyCall("Platform.Cmd", "none"),
			Print: func(q Qualify) string { return q(scope.FuncIdent{Module: "Platform.Cmd", Name: "none"}) },
		},
		Map: &MapProp{Fn: scope.FuncIdent{Module: "Platform.Cmd", Name: "map"}, ContainerArg: 1, Arity: 2},
	},
}

/* recognizer builders */

func isEmptyList(e ast.Expr, _ Resolve) bool {
	l, ok := ast.Unparen(e).(*ast.ListLit)
	return ok && len(l.Elems) == 0
}

func isEmptyString(e ast.Expr, _ Resolve) bool {
	s, ok := ast.Unparen(e).(*ast.StringLit)
	return ok && s.Value == ""
}

// makeEmptyCall recognizes a zero-argument member reference such as
// Set.empty or Cmd.none.
func makeEmptyCall(module, name string) func(ast.Expr, Resolve) bool {
	return func(e ast.Expr, resolve Resolve) bool {
		id, ok := ast.Unparen(e).(*ast.Ident)
		if !ok || resolve == nil {
			return false
		}
		fn, ok := resolve(id)
		return ok && fn.Module == module && fn.Name == name
	}
}

// makeTag recognizes a zero-argument constructor such as Nothing.
func makeTag(module, name string) func(ast.Expr, Resolve) bool {
	return makeEmptyCall(module, name)
}

// makeCtorExtract recognizes `Ctor x` and returns x.
func makeCtorExtract(module, name string) func(ast.Expr, Resolve) (ast.Expr, bool) {
	return func(e ast.Expr, resolve Resolve) (ast.Expr, bool) {
		app, ok := ast.Unparen(e).(*ast.Apply)
		if !ok || len(app.Args) != 1 || resolve == nil {
			return nil, false
		}
		id, ok := ast.Unparen(app.Fn).(*ast.Ident)
		if !ok {
			return nil, false
		}
		fn, ok := resolve(id)
		if !ok || fn.Module != module || fn.Name != name {
			return nil, false
		}
		return app.Args[0], true
	}
}

// extractListSingleton recognizes both [x] and List.singleton x.
func extractListSingleton(e ast.Expr, resolve Resolve) (ast.Expr, bool) {
	if l, ok := ast.Unparen(e).(*ast.ListLit); ok && len(l.Elems) == 1 {
		return l.Elems[0], true
	}
	return makeCtorExtract("List", "singleton")(e, resolve)
}

// listElements reads list literals and cons chains. A cons chain onto a
// non-literal tail yields a non-exhaustive prefix.
func listElements(e ast.Expr, resolve Resolve) ([]ast.Expr, bool, bool) {
	e = ast.Unparen(e)
	if l, ok := e.(*ast.ListLit); ok {
		return l.Elems, true, true
	}
	if op, ok := e.(*ast.BinOp); ok && op.Op == "::" {
		tailElems, exhaustive, tailOK := listElements(op.Right, resolve)
		if !tailOK {
			return []ast.Expr{op.Left}, false, true
		}
		return append([]ast.Expr{op.Left}, tailElems...), exhaustive, true
	}
	return nil, false, false
}
