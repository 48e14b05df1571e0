package checks

import (
	"fmt"

	"github.com/fernlang/flin/internal/ast"
	"github.com/fernlang/flin/internal/fixer"
	"github.com/fernlang/flin/internal/scope"
	"github.com/fernlang/flin/internal/typeprop"
	"github.com/fernlang/flin/internal/types"
)

// callChecks builds the function-keyed check table. Per function the
// checks run most specific first; the first match wins and no further
// check sees the site.
func callChecks() map[scope.FuncIdent][]CallCheck {
	table := map[scope.FuncIdent][]CallCheck{
		fn("Basics", "identity"): {checkIdentityApplied},
		fn("Basics", "always"):   {checkAlwaysApplied},
		fn("Basics", "not"):      {checkNotNot, checkNotLiteral},
	}

	for _, inv := range involutions {
		inv := inv
		table[inv] = append(table[inv], makeInvolution(inv))
	}

	for _, props := range typeprop.Catalog {
		props := props
		if props.Map != nil {
			key := props.Map.Fn
			chain := []CallCheck{makeMapOverWrap(props), makeIdentityMap(props)}
			if props.Empty != nil {
				chain = append(chain, makeOnEmpty(props, key, props.Map.ContainerArg, props.Map.Arity))
			}
			table[key] = append(table[key], chain...)
		}
		if props.FromList != nil {
			table[props.FromList.Fn] = append(table[props.FromList.Fn], makeFromList(props))
		}
		if props.Empty != nil {
			for _, op := range emptyPreserving {
				if op.fn.Module == props.Kind.String() {
					table[op.fn] = append(table[op.fn], makeOnEmpty(props, op.fn, op.containerArg, op.arity))
				}
			}
		}
	}

	for _, name := range []string{"foldl", "foldr"} {
		key := fn("List", name)
		table[key] = append(table[key], makeFoldAbsorbing(key), makeFoldIdentity(key))
	}

	for _, u := range unwraps {
		u := u
		table[u.fn] = append(table[u.fn], makeUnwrap(u))
	}

	return table
}

func fn(module, name string) scope.FuncIdent {
	return scope.FuncIdent{Module: module, Name: name}
}

// involutions are self-inverse one-argument functions: f (f x) is x.
var involutions = []scope.FuncIdent{
	fn("Basics", "negate"),
	fn("List", "reverse"),
	fn("String", "reverse"),
}

// emptyPreserving lists container operations beyond map that send the
// empty container to itself. containerArg is the container's position
// when fully applied, arity the argument count that position implies.
var emptyPreserving = []struct {
	fn           scope.FuncIdent
	containerArg int
	arity        int
}{
	{fn("List", "filter"), 1, 2},
	{fn("List", "filterMap"), 1, 2},
	{fn("List", "concatMap"), 1, 2},
	{fn("List", "indexedMap"), 1, 2},
	{fn("List", "sortBy"), 1, 2},
	{fn("List", "sortWith"), 1, 2},
	{fn("List", "reverse"), 0, 1},
	{fn("List", "sort"), 0, 1},
	{fn("List", "concat"), 0, 1},
	{fn("String", "reverse"), 0, 1},
	{fn("String", "toUpper"), 0, 1},
	{fn("String", "toLower"), 0, 1},
	{fn("String", "trim"), 0, 1},
	{fn("Set", "filter"), 1, 2},
	{fn("Array", "filter"), 1, 2},
	{fn("Dict", "filter"), 1, 2},
}

// checkIdentityApplied rewrites identity x to x, in all call styles
// including x |> identity.
func checkIdentityApplied(ci *CheckInfo) *types.Diagnostic {
	if len(ci.Args) < 1 {
		return nil
	}
	rng := ci.RangeForArity(1)
	edit := fixer.ReplaceWithExpr(ci.Src, rng, ci.Args[0], ci.editCtx(rng))
	return ci.diag("identity-application", "applying identity returns its argument unchanged", rng, edit)
}

// checkAlwaysApplied rewrites always x y to x once both arguments are
// visible.
func checkAlwaysApplied(ci *CheckInfo) *types.Diagnostic {
	if len(ci.Args) < 2 {
		return nil
	}
	rng := ci.RangeForArity(2)
	edit := fixer.ReplaceWithExpr(ci.Src, rng, ci.Args[0], ci.editCtx(rng))
	return ci.diag("always-application", "always x y is x", rng, edit)
}

// checkNotNot cancels a double negation.
func checkNotNot(ci *CheckInfo) *types.Diagnostic {
	if len(ci.Args) < 1 {
		return nil
	}
	head, args := SplitCall(ci.Args[0])
	if head == nil || len(args) != 1 {
		return nil
	}
	inner, ok := ci.Resolve(head)
	if !ok || inner != fn("Basics", "not") {
		return nil
	}
	rng := ci.RangeForArity(1)
	edit := fixer.ReplaceWithExpr(ci.Src, rng, args[0], ci.editCtx(rng))
	return ci.diag("double-negation", "not (not x) is x", rng, edit)
}

// checkNotLiteral folds not True and not False.
func checkNotLiteral(ci *CheckInfo) *types.Diagnostic {
	if len(ci.Args) < 1 {
		return nil
	}
	v, ok := ci.boolLiteral(ci.Args[0])
	if !ok {
		return nil
	}
	text := "True"
	if v {
		text = "False"
	}
	rng := ci.RangeForArity(1)
	return ci.diag("double-negation", fmt.Sprintf("not %v is %s", v, text), rng,
		fixer.ReplaceWithText(rng, text))
}

func makeInvolution(f scope.FuncIdent) CallCheck {
	return func(ci *CheckInfo) *types.Diagnostic {
		if len(ci.Args) < 1 {
			return nil
		}
		head, args := SplitCall(ci.Args[0])
		if head == nil || len(args) != 1 {
			return nil
		}
		inner, ok := ci.Resolve(head)
		if !ok || inner != f {
			return nil
		}
		rng := ci.RangeForArity(1)
		edit := fixer.ReplaceWithExpr(ci.Src, rng, args[0], ci.editCtx(rng))
		return ci.diag("involution",
			fmt.Sprintf("%s applied twice returns its argument unchanged", f), rng, edit)
	}
}

// makeIdentityMap rewrites map identity to the container itself, or to
// identity when the container argument is not yet supplied.
func makeIdentityMap(props typeprop.Properties) CallCheck {
	return func(ci *CheckInfo) *types.Diagnostic {
		if len(ci.Args) < 1 || !ci.IsIdentity(ci.Args[0]) {
			return nil
		}
		msg := fmt.Sprintf("%s with an identity function changes nothing", ci.Fn)
		if len(ci.Args) >= props.Map.Arity {
			rng := ci.RangeForArity(props.Map.Arity)
			container := ci.Args[props.Map.ContainerArg]
			edit := fixer.ReplaceWithExpr(ci.Src, rng, container, ci.editCtx(rng))
			return ci.diag("identity-map", msg, rng, edit)
		}
		rng := ci.RangeForArity(1)
		ref := ci.Qualify(fn("Basics", "identity"))
		return ci.diag("identity-map", msg, rng, fixer.ReplaceWithText(rng, ref))
	}
}

// makeOnEmpty rewrites an operation applied to the kind's empty value
// to the empty value.
func makeOnEmpty(props typeprop.Properties, f scope.FuncIdent, containerArg, arity int) CallCheck {
	return func(ci *CheckInfo) *types.Diagnostic {
		if len(ci.Args) < arity {
			return nil
		}
		if !props.Empty.Is(ci.Args[containerArg], ci.Resolve) {
			return nil
		}
		rng := ci.RangeForArity(arity)
		text := props.Empty.Print(ci.Qualify)
		return ci.diag("call-on-empty",
			fmt.Sprintf("%s over an empty %s is %s", f, props.Kind, text), rng,
			fixer.ReplaceWithText(rng, text))
	}
}

// makeMapOverWrap pushes a map inside a single-value wrap:
// Maybe.map f (Just x) becomes Just (f x).
func makeMapOverWrap(props typeprop.Properties) CallCheck {
	if props.Wrap == nil {
		return func(*CheckInfo) *types.Diagnostic { return nil }
	}
	return func(ci *CheckInfo) *types.Diagnostic {
		if len(ci.Args) < props.Map.Arity {
			return nil
		}
		wrapped, ok := props.Wrap.Extract(ci.Args[props.Map.ContainerArg], ci.Resolve)
		if !ok {
			return nil
		}
		rng := ci.RangeForArity(props.Map.Arity)
		text := ci.Qualify(props.Wrap.Ctor) + " (" + ci.ArgText(ci.Args[0]) + " " + ci.ArgText(wrapped) + ")"
		if ci.needsCallParens(rng) {
			text = "(" + text + ")"
		}
		return ci.diag("map-over-wrap",
			fmt.Sprintf("%s over a single wrapped value applies the function directly", ci.Fn),
			rng, fixer.ReplaceWithText(rng, text))
	}
}

// makeFromList lowers fromList on literal lists: an empty literal to the
// kind's empty value, a one-element literal to its wrap constructor.
func makeFromList(props typeprop.Properties) CallCheck {
	return func(ci *CheckInfo) *types.Diagnostic {
		if len(ci.Args) < 1 {
			return nil
		}
		arg := ast.Unparen(ci.Args[0])
		lit, ok := arg.(*ast.ListLit)
		if !ok {
			return nil
		}
		rng := ci.RangeForArity(1)
		if len(lit.Elems) == 0 && props.Empty != nil {
			text := props.Empty.Print(ci.Qualify)
			return ci.diag("from-list-literal",
				fmt.Sprintf("%s [] is %s", ci.Fn, text), rng,
				fixer.ReplaceWithText(rng, text))
		}
		if len(lit.Elems) == 1 && props.Wrap != nil {
			text := ci.Qualify(props.Wrap.Ctor) + " " + ci.ArgText(lit.Elems[0])
			if ci.needsCallParens(rng) {
				text = "(" + text + ")"
			}
			return ci.diag("from-list-literal",
				fmt.Sprintf("%s with one element is %s", ci.Fn, ci.Qualify(props.Wrap.Ctor)),
				rng, fixer.ReplaceWithText(rng, text))
		}
		return nil
	}
}

// foldOperator recognizes the operator argument of a fold: an operator
// section such as (&&) that resolves to a Basics operator.
func foldOperator(ci *CheckInfo) (typeprop.FoldOp, bool) {
	head := ast.Unparen(ci.Args[0])
	id, ok := head.(*ast.Ident)
	if !ok {
		return typeprop.FoldOp{}, false
	}
	resolved, ok := ci.Resolve(id)
	if !ok || resolved.Module != "Basics" {
		return typeprop.FoldOp{}, false
	}
	op, ok := typeprop.FoldOps[resolved.Name]
	return op, ok
}

// makeFoldAbsorbing short-circuits a fold whose listed elements contain
// the operator's absorbing element: one False makes the whole
// conjunction False no matter what else the list holds.
func makeFoldAbsorbing(f scope.FuncIdent) CallCheck {
	return func(ci *CheckInfo) *types.Diagnostic {
		if len(ci.Args) < 3 {
			return nil
		}
		op, ok := foldOperator(ci)
		if !ok || op.Absorbing == nil {
			return nil
		}
		if op.Absorbing.NaNSensitive && ci.Cfg.ExpectNaN {
			return nil
		}
		elems, _, ok := typeprop.Catalog[typeprop.KindList].Elements.Get(ci.Args[2], ci.Resolve)
		if !ok {
			return nil
		}
		absorbed := op.Absorbing.Is(ci.Args[1], ci.Resolve)
		for _, e := range elems {
			if op.Absorbing.Is(e, ci.Resolve) {
				absorbed = true
				break
			}
		}
		if !absorbed {
			return nil
		}
		rng := ci.RangeForArity(3)
		text := op.Absorbing.Print(ci.Qualify)
		return ci.diag("fold-absorbing",
			fmt.Sprintf("folding (%s) over these elements always yields %s", op.Op, text),
			rng, fixer.ReplaceWithText(rng, text))
	}
}

// makeFoldIdentity replaces a fold of a known operator from its identity
// element with the dedicated aggregate: List.foldl (&&) True becomes
// List.all identity. Only the operator and initial accumulator are
// consumed, so the rewrite works for curried and piped folds alike.
func makeFoldIdentity(f scope.FuncIdent) CallCheck {
	return func(ci *CheckInfo) *types.Diagnostic {
		if len(ci.Args) < 2 {
			return nil
		}
		op, ok := foldOperator(ci)
		if !ok || !op.IdentityIs(ci.Args[1], ci.Resolve) {
			return nil
		}
		replacement := fn(f.Module, op.Replacement)
		text := ci.Qualify(replacement)
		if op.NeedsIdentityArg {
			text += " " + ci.Qualify(fn("Basics", "identity"))
		}
		rng := ci.RangeForArity(2)
		if op.NeedsIdentityArg && ci.needsCallParens(rng) {
			text = "(" + text + ")"
		}
		return ci.diag("fold-aggregate",
			fmt.Sprintf("%s (%s) from its identity element is %s", f, op.Op, ci.Qualify(replacement)),
			rng, fixer.ReplaceWithText(rng, text))
	}
}

type unwrapMode int

const (
	// modeDefault is withDefault-shaped: d over a wrap yields the
	// wrapped value, over the empty yields the default.
	modeDefault unwrapMode = iota
	// modeAndThen is andThen-shaped: k over a wrap applies k to the
	// wrapped value, over the empty yields the empty.
	modeAndThen
)

var unwraps = []struct {
	fn   scope.FuncIdent
	kind typeprop.Kind
	mode unwrapMode
}{
	{fn("Maybe", "withDefault"), typeprop.KindMaybe, modeDefault},
	{fn("Result", "withDefault"), typeprop.KindResult, modeDefault},
	{fn("Maybe", "andThen"), typeprop.KindMaybe, modeAndThen},
	{fn("Result", "andThen"), typeprop.KindResult, modeAndThen},
	{fn("Task", "andThen"), typeprop.KindTask, modeAndThen},
	{fn("Json.Decode", "andThen"), typeprop.KindDecoder, modeAndThen},
	{fn("Random", "andThen"), typeprop.KindGenerator, modeAndThen},
}

func makeUnwrap(u struct {
	fn   scope.FuncIdent
	kind typeprop.Kind
	mode unwrapMode
}) CallCheck {
	props := typeprop.Catalog[u.kind]
	return func(ci *CheckInfo) *types.Diagnostic {
		if len(ci.Args) < 2 {
			return nil
		}
		rng := ci.RangeForArity(2)
		container := ci.Args[1]
		if props.Wrap != nil {
			if wrapped, ok := props.Wrap.Extract(container, ci.Resolve); ok {
				switch u.mode {
				case modeDefault:
					edit := fixer.ReplaceWithExpr(ci.Src, rng, wrapped, ci.editCtx(rng))
					return ci.diag("unwrap-wrap",
						fmt.Sprintf("%s over a wrapped value is the value itself", u.fn), rng, edit)
				case modeAndThen:
					text := ci.ArgText(ci.Args[0]) + " " + ci.ArgText(wrapped)
					if ci.needsCallParens(rng) {
						text = "(" + text + ")"
					}
					return ci.diag("unwrap-wrap",
						fmt.Sprintf("%s over a wrapped value applies the function directly", u.fn),
						rng, fixer.ReplaceWithText(rng, text))
				}
			}
		}
		if props.Empty != nil && props.Empty.Is(container, ci.Resolve) {
			switch u.mode {
			case modeDefault:
				edit := fixer.ReplaceWithExpr(ci.Src, rng, ci.Args[0], ci.editCtx(rng))
				return ci.diag("unwrap-empty",
					fmt.Sprintf("%s over %s yields the default", u.fn, props.Empty.Print(ci.Qualify)),
					rng, edit)
			case modeAndThen:
				text := props.Empty.Print(ci.Qualify)
				return ci.diag("unwrap-empty",
					fmt.Sprintf("%s over %s is %s", u.fn, text, text), rng,
					fixer.ReplaceWithText(rng, text))
			}
		}
		return nil
	}
}
