// Package checks contains the call-site dispatch engine and the rule
// families it runs. Every call-site surface syntax - direct application,
// both pipe directions, and composition chains - is normalized into one
// CheckInfo value per site, so a single check body serves all of them.
// Checks are pure functions from CheckInfo to an optional Diagnostic;
// a check that cannot guarantee a behavior-preserving rewrite returns
// nil, never a low-confidence match.
package checks

import (
	"github.com/fernlang/flin/internal/ast"
	"github.com/fernlang/flin/internal/fixer"
	"github.com/fernlang/flin/internal/infer"
	"github.com/fernlang/flin/internal/normalize"
	"github.com/fernlang/flin/internal/project"
	"github.com/fernlang/flin/internal/scope"
	"github.com/fernlang/flin/internal/typeprop"
	"github.com/fernlang/flin/internal/types"
)

// CallStyle says which surface syntax produced a call site.
type CallStyle int

const (
	// StyleApplication is plain prefix application: f a b.
	StyleApplication CallStyle = iota
	// StylePipeLeft is x |> f: the piped value is the last argument.
	StylePipeLeft
	// StylePipeRight is f <| x.
	StylePipeRight
)

// shared carries the per-module state every check may consult. It is
// built once per module and read-only during the traversal, except for
// the scope and fact stacks which follow the traversal position.
type shared struct {
	Filename string
	// Module is the name of the module under analysis, used to look up
	// locally declared types in the project summary.
	Module string
	Src      *fixer.Source
	Resolver *scope.Resolver
	Facts    *infer.Facts
	Cfg      types.Config
	Summary  *project.Summary
}

// CheckInfo is the uniform view of one call site, constructed fresh per
// site and discarded afterwards.
type CheckInfo struct {
	*shared

	// Fn is the resolved identity of the called function.
	Fn scope.FuncIdent
	// FnExpr is the identifier as written.
	FnExpr *ast.Ident
	// Args are the logical arguments in application order, pipe sugar
	// already folded in.
	Args []ast.Expr
	// Style records the surface syntax.
	Style CallStyle
	// FullRange covers the whole call-site expression.
	FullRange types.Range
	// ParenCtx is the syntactic context of the call site, deciding
	// whether a replacement needs parentheses.
	ParenCtx fixer.Context

	// pipeArgs is how many of Args came from pipe sugar (0 or 1).
	pipeArgs int
}

// RangeForArity returns the range a check consuming n arguments may
// rewrite. Extra trailing arguments stay outside the reported range and
// are never touched. When the piped argument is not consumed, the pipe
// operator survives and only the function side is covered.
func (ci *CheckInfo) RangeForArity(n int) types.Range {
	direct := len(ci.Args) - ci.pipeArgs
	if n >= len(ci.Args) {
		return ci.FullRange
	}
	if n <= direct {
		r := ci.FnExpr.Range()
		if n > 0 {
			r = r.Cover(ci.Args[n-1].Range())
		}
		if ci.Style == StylePipeRight {
			// f <| x reads right to left; the function side sits left
			// of the operator but its written args are still adjacent.
			return r
		}
		return r
	}
	return ci.FullRange
}

// FnRangeWithArgs is the range of the written function part plus its
// direct (non-piped) arguments.
func (ci *CheckInfo) FnRangeWithArgs() types.Range {
	return ci.RangeForArity(len(ci.Args) - ci.pipeArgs)
}

// Resolve adapts the scope resolver to the typeprop recognizer shape.
func (ci *shared) Resolve(id *ast.Ident) (scope.FuncIdent, bool) {
	return ci.Resolver.ResolveCall(id)
}

// Qualify prints a reference valid at the insertion point.
func (ci *shared) Qualify(fn scope.FuncIdent) string {
	return ci.Resolver.Qualify(fn)
}

// NormOpts returns comparison options wired to the current facts.
func (ci *shared) NormOpts() normalize.Options {
	return ci.Facts.Options(ci.Cfg.ExpectNaN)
}

// ArgText renders an argument for insertion in function-argument
// position.
func (ci *CheckInfo) ArgText(e ast.Expr) string {
	return argText(ci.shared, e)
}

// IsIdentity reports whether the expression is the identity function:
// the Basics.identity reference or a trivial \x -> x lambda.
func (ci *shared) IsIdentity(e ast.Expr) bool {
	e = ast.Unparen(e)
	if id, ok := e.(*ast.Ident); ok {
		fn, ok := ci.Resolve(id)
		return ok && fn == (scope.FuncIdent{Module: "Basics", Name: "identity"})
	}
	if lam, ok := e.(*ast.Lambda); ok && len(lam.Params) == 1 {
		if pv, ok := lam.Params[0].(*ast.PVar); ok {
			if body, ok := ast.Unparen(lam.Body).(*ast.Ident); ok {
				return body.Module == "" && body.Name == pv.Name
			}
		}
	}
	return false
}

// KindProps finds the catalog entry for the module a function lives in.
func KindProps(module string) (typeprop.Properties, bool) {
	for _, props := range typeprop.Catalog {
		if props.Kind.String() == module {
			return props, true
		}
	}
	// Cmd is reachable both as Platform.Cmd and through its alias.
	if module == "Platform.Cmd" {
		return typeprop.Catalog[typeprop.KindCmd], true
	}
	return typeprop.Properties{}, false
}

// needsCallParens reports whether application-shaped replacement text
// needs wrapping at rng. Partial rewrites leave surrounding application
// syntax in place, where juxtaposition needs no parentheses.
func (ci *CheckInfo) needsCallParens(rng types.Range) bool {
	return rng == ci.FullRange && ci.ParenCtx == fixer.CtxArg
}

// editCtx is the parenthesization context for a replacement at rng.
func (ci *CheckInfo) editCtx(rng types.Range) fixer.Context {
	if rng == ci.FullRange {
		return ci.ParenCtx
	}
	// A partial rewrite lands in function position of the surviving
	// application or pipe.
	return fixer.CtxArg
}

// boolLiteral reads a True/False reference.
func (ci *shared) boolLiteral(e ast.Expr) (bool, bool) {
	id, ok := ast.Unparen(e).(*ast.Ident)
	if !ok {
		return false, false
	}
	resolved, ok := ci.Resolve(id)
	if !ok || resolved.Module != "Basics" {
		return false, false
	}
	switch resolved.Name {
	case "True":
		return true, true
	case "False":
		return false, true
	}
	return false, false
}

// diag assembles a diagnostic carrying the given edits.
func (ci *shared) diag(rule, msg string, rng types.Range, edits ...types.TextEdit) *types.Diagnostic {
	return &types.Diagnostic{
		Rule:     rule,
		Filename: ci.Filename,
		Message:  msg,
		Range:    rng,
		Edits:    edits,
	}
}

// SplitCall flattens an application spine down to its head identifier
// and accumulated arguments. A non-identifier head yields nil.
func SplitCall(e ast.Expr) (*ast.Ident, []ast.Expr) {
	e = ast.Unparen(e)
	switch n := e.(type) {
	case *ast.Ident:
		return n, nil
	case *ast.Apply:
		head, args := SplitCall(n.Fn)
		if head == nil {
			return nil, nil
		}
		return head, append(args, n.Args...)
	}
	return nil, nil
}

// CallCheck inspects one call site. Nil means no match.
type CallCheck func(*CheckInfo) *types.Diagnostic

// firstOf runs checks in order and returns the first match: the
// most-specific-to-most-general chain with a short-circuit.
func firstOf(ci *CheckInfo, checks []CallCheck) *types.Diagnostic {
	for _, c := range checks {
		if d := c(ci); d != nil {
			return d
		}
	}
	return nil
}

// CompositionInfo is the uniform view of one composition pair: the two
// functions directly adjacent to a >> or << operator.
type CompositionInfo struct {
	*shared

	// Earlier runs first in data-flow order: f in both f >> g and
	// g << f.
	Earlier CompPart
	// Later receives Earlier's output.
	Later CompPart
	// Op is ">>" or "<<" as written.
	Op string
	// FullRange covers both parts and the operator.
	FullRange types.Range
	// InChain is true when this pair is embedded in a longer
	// composition chain, which means a fix may only rewrite the
	// adjacent pair rather than assume it owns the whole expression.
	InChain bool
	// ParenCtx is the syntactic context of the whole pair.
	ParenCtx fixer.Context
}

// CompPart is one side of a composition: a function reference with the
// partial arguments it was already given.
type CompPart struct {
	Fn   scope.FuncIdent
	Expr ast.Expr
	Head *ast.Ident
	Args []ast.Expr
}

// CompCheck inspects one composition pair. Nil means no match.
type CompCheck func(*CompositionInfo) *types.Diagnostic
