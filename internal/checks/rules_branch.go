package checks

import (
	"fmt"
	"strings"

	"github.com/fernlang/flin/internal/ast"
	"github.com/fernlang/flin/internal/fixer"
	"github.com/fernlang/flin/internal/infer"
	"github.com/fernlang/flin/internal/normalize"
	"github.com/fernlang/flin/internal/types"
)

// IfCheck inspects one if expression.
type IfCheck func(sh *shared, n *ast.If, ctx fixer.Context) *types.Diagnostic

// CaseCheck inspects one case expression.
type CaseCheck func(sh *shared, n *ast.Case, ctx fixer.Context) *types.Diagnostic

// AccessCheck inspects one record field access.
type AccessCheck func(sh *shared, n *ast.FieldAccess, ctx fixer.Context) *types.Diagnostic

func ifChecks() []IfCheck {
	return []IfCheck{checkIfConstantCond, checkIfBoolBranches, checkIfEqualBranches}
}

func caseChecks() []CaseCheck {
	return []CaseCheck{checkCaseConstantSubject}
}

func accessChecks() []AccessCheck {
	return []AccessCheck{checkAccessRecordLiteral, checkAccessAliasCtor}
}

// checkIfConstantCond collapses an if whose condition the normalizer can
// settle, keeping only the live branch.
func checkIfConstantCond(sh *shared, n *ast.If, ctx fixer.Context) *types.Diagnostic {
	cond := normalize.Normalize(n.Cond, sh.NormOpts())
	v, ok := sh.boolLiteral(cond)
	if !ok {
		return nil
	}
	branch := n.Else
	which := "else"
	if v {
		branch = n.Then
		which = "then"
	}
	edit := fixer.ReplaceWithExpr(sh.Src, n.Range(), branch, ctx)
	return sh.diag("constant-condition",
		fmt.Sprintf("the condition is always %v, only the %s branch can run", v, which),
		n.Range(), edit)
}

// checkIfBoolBranches rewrites if c then True else False as c, and the
// flipped form as not c.
func checkIfBoolBranches(sh *shared, n *ast.If, ctx fixer.Context) *types.Diagnostic {
	thenV, ok := sh.boolLiteral(n.Then)
	if !ok {
		return nil
	}
	elseV, ok := sh.boolLiteral(n.Else)
	if !ok || thenV == elseV {
		return nil
	}
	if thenV {
		edit := fixer.ReplaceWithExpr(sh.Src, n.Range(), n.Cond, ctx)
		return sh.diag("condition-already-bool",
			"if c then True else False is just c", n.Range(), edit)
	}
	text := sh.Qualify(fn("Basics", "not")) + " " + argText(sh, n.Cond)
	if ctx == fixer.CtxArg {
		text = "(" + text + ")"
	}
	return sh.diag("condition-already-bool",
		"if c then False else True is not c", n.Range(),
		fixer.ReplaceWithText(n.Range(), text))
}

// checkIfEqualBranches collapses an if whose branches are provably the
// same value. Two tiers: branches identical as written can be kept as
// source text, while branches that only converge **under the facts each
// branch runs with** must reduce to a printable constant, because either
// branch's text could be wrong in the other's world.
func checkIfEqualBranches(sh *shared, n *ast.If, ctx fixer.Context) *types.Diagnostic {
	opts := sh.NormOpts()
	if normalize.Compare(n.Then, n.Else, opts) == normalize.Equal {
		edit := fixer.ReplaceWithExpr(sh.Src, n.Range(), n.Then, ctx)
		return sh.diag("equal-branches",
			"both branches produce the same value", n.Range(), edit)
	}

	expectNaN := sh.Cfg.ExpectNaN
	var thenN, elseN ast.Expr
	sh.Facts.Inside(infer.FromCondition(n.Cond, true, expectNaN), func() {
		thenN = normalize.Normalize(n.Then, sh.NormOpts())
	})
	sh.Facts.Inside(infer.FromCondition(n.Cond, false, expectNaN), func() {
		elseN = normalize.Normalize(n.Else, sh.NormOpts())
	})
	plain := normalize.Options{ExpectNaN: expectNaN}
	if normalize.Compare(thenN, elseN, plain) != normalize.Equal {
		return nil
	}
	text, ok := renderConstant(thenN, ctx)
	if !ok {
		return nil
	}
	return sh.diag("equal-branches",
		"both branches produce the same value", n.Range(),
		fixer.ReplaceWithText(n.Range(), text))
}

// renderConstant prints a normalized constant expression as source
// text. Anything beyond simple constants refuses, which keeps rewrites
// limited to text the engine fully controls.
func renderConstant(e ast.Expr, ctx fixer.Context) (string, bool) {
	switch v := ast.Unparen(e).(type) {
	case *ast.IntLit:
		return v.Text, true
	case *ast.FloatLit:
		return v.Text, true
	case *ast.StringLit:
		return fmt.Sprintf("%q", v.Value), true
	case *ast.CharLit:
		return "'" + string(v.Value) + "'", true
	case *ast.Ident:
		if v.IsTag() {
			return v.QualifiedName(), true
		}
	case *ast.ListLit:
		if len(v.Elems) == 0 {
			return "[]", true
		}
		parts := make([]string, 0, len(v.Elems))
		for _, el := range v.Elems {
			p, ok := renderConstant(el, fixer.CtxTop)
			if !ok {
				return "", false
			}
			parts = append(parts, p)
		}
		return "[" + strings.Join(parts, ", ") + "]", true
	case *ast.Unit:
		return "()", true
	}
	return "", false
}

// checkCaseConstantSubject collapses a case whose subject is a known
// constant onto the branch that must run. The rule refuses when the
// scrutinee's union type is declared by the analyzed project or listed
// in the ignored-types configuration, when the deciding branch binds
// variables, or when any earlier branch cannot be proven dead.
func checkCaseConstantSubject(sh *shared, n *ast.Case, ctx fixer.Context) *types.Diagnostic {
	// A single catch-all branch is a common destructuring idiom; leave
	// it alone.
	if len(n.Branches) == 1 {
		if _, catchAll := n.Branches[0].Pattern.(*ast.PWildcard); catchAll {
			return nil
		}
	}
	if sh.caseTypeProtected(n) {
		return nil
	}
	subject := normalize.Normalize(n.Subject, sh.NormOpts())
	for i, br := range n.Branches {
		switch matchPattern(sh, br.Pattern, subject) {
		case matchNo:
			continue
		case matchYes:
			if len(ast.PatternVars(br.Pattern)) > 0 {
				return nil
			}
			edit := fixer.ReplaceWithExpr(sh.Src, n.Range(), br.Body, ctx)
			return sh.diag("constant-case",
				fmt.Sprintf("the subject always matches branch %d", i+1),
				n.Range(), edit)
		default:
			return nil
		}
	}
	return nil
}

// caseTypeProtected reports whether any branch pattern names a variant
// of a protected union type.
func (sh *shared) caseTypeProtected(n *ast.Case) bool {
	for _, br := range n.Branches {
		tag, ok := leadTag(br.Pattern)
		if !ok {
			continue
		}
		module := tag.Module
		if module != "" {
			if resolved, ok := sh.Resolver.Imports.ResolveModule(module); ok {
				module = resolved
			}
		} else {
			module = sh.tagHome(tag.Name)
		}
		typeName, local, ok := sh.Summary.TypeOfVariant(module, tag.Name)
		if !ok {
			// An unknown variant means an unknown type; do not touch it.
			return true
		}
		if local {
			return true
		}
		qualified := module + "." + typeName
		for _, ignored := range sh.Cfg.IgnoredCaseOfTypes {
			if ignored == qualified {
				return true
			}
		}
	}
	return false
}

// tagHome finds the module a bare constructor name belongs to: the
// module under analysis when it declares the variant, otherwise
// whichever import exposes it.
func (sh *shared) tagHome(name string) string {
	if _, _, ok := sh.Summary.TypeOfVariant(sh.Module, name); ok {
		return sh.Module
	}
	if module, ok := sh.Resolver.Imports.WhoExposes(name); ok {
		return module
	}
	return sh.Module
}

func leadTag(p ast.Pattern) (*ast.PTag, bool) {
	switch pp := p.(type) {
	case *ast.PTag:
		return pp, true
	case *ast.PParen:
		return leadTag(pp.Inner)
	case *ast.PAlias:
		return leadTag(pp.Inner)
	}
	return nil, false
}

type matchResult int

const (
	matchUnknown matchResult = iota
	matchYes
	matchNo
)

// matchPattern decides whether a pattern provably matches or provably
// misses a normalized constant subject. Anything it cannot settle is
// unknown, which stops the collapse.
func matchPattern(sh *shared, p ast.Pattern, subject ast.Expr) matchResult {
	subject = ast.Unparen(subject)
	switch pp := p.(type) {
	case *ast.PWildcard:
		return matchYes
	case *ast.PVar:
		return matchYes
	case *ast.PParen:
		return matchPattern(sh, pp.Inner, subject)
	case *ast.PAlias:
		return matchPattern(sh, pp.Inner, subject)
	case *ast.PInt:
		if lit, ok := subject.(*ast.IntLit); ok {
			return yesNo(lit.Value == pp.Value)
		}
	case *ast.PString:
		if lit, ok := subject.(*ast.StringLit); ok {
			return yesNo(lit.Value == pp.Value)
		}
	case *ast.PChar:
		if lit, ok := subject.(*ast.CharLit); ok {
			return yesNo(lit.Value == pp.Value)
		}
	case *ast.PUnit:
		if _, ok := subject.(*ast.Unit); ok {
			return matchYes
		}
	case *ast.PTag:
		head, args := SplitCall(subject)
		if head == nil || !head.IsTag() {
			return matchUnknown
		}
		if head.Name != pp.Name {
			return matchNo
		}
		if len(args) != len(pp.Args) {
			return matchUnknown
		}
		return matchAll(sh, pp.Args, args)
	case *ast.PTuple:
		if tup, ok := subject.(*ast.TupleLit); ok && len(tup.Elems) == len(pp.Elems) {
			return matchAll(sh, pp.Elems, tup.Elems)
		}
	case *ast.PList:
		if lit, ok := subject.(*ast.ListLit); ok {
			if len(lit.Elems) != len(pp.Elems) {
				return matchNo
			}
			return matchAll(sh, pp.Elems, lit.Elems)
		}
	case *ast.PCons:
		if lit, ok := subject.(*ast.ListLit); ok {
			if len(lit.Elems) == 0 {
				return matchNo
			}
			head := matchPattern(sh, pp.Head, lit.Elems[0])
			if head != matchYes {
				return head
			}
			rest := &ast.ListLit{Rng: lit.Rng, Elems: lit.Elems[1:]}
			return matchPattern(sh, pp.Tail, rest)
		}
	}
	return matchUnknown
}

func matchAll(sh *shared, pats []ast.Pattern, exprs []ast.Expr) matchResult {
	result := matchYes
	for i, p := range pats {
		switch matchPattern(sh, p, exprs[i]) {
		case matchNo:
			return matchNo
		case matchUnknown:
			result = matchUnknown
		}
	}
	return result
}

func yesNo(b bool) matchResult {
	if b {
		return matchYes
	}
	return matchNo
}

// checkAccessRecordLiteral rewrites { a = x, b = y }.a as x. The
// language is pure, so discarding the other fields cannot lose effects.
func checkAccessRecordLiteral(sh *shared, n *ast.FieldAccess, ctx fixer.Context) *types.Diagnostic {
	rec, ok := ast.Unparen(n.Target).(*ast.Record)
	if !ok {
		return nil
	}
	for _, f := range rec.Fields {
		if f.Name == n.Field {
			edit := fixer.ReplaceWithExpr(sh.Src, n.Range(), f.Value, ctx)
			return sh.diag("field-of-literal",
				fmt.Sprintf("accessing .%s of a record literal is the field value", n.Field),
				n.Range(), edit)
		}
	}
	return nil
}

// checkAccessAliasCtor rewrites (Person name age).name as name using
// the alias field order from the project summary.
func checkAccessAliasCtor(sh *shared, n *ast.FieldAccess, ctx fixer.Context) *types.Diagnostic {
	head, args := SplitCall(n.Target)
	if head == nil || !head.IsTag() {
		return nil
	}
	module := head.Module
	if module == "" {
		module = sh.tagHome(head.Name)
	} else if resolved, ok := sh.Resolver.Imports.ResolveModule(module); ok {
		module = resolved
	}
	fields, ok := sh.Summary.AliasFields(module, head.Name)
	if !ok || len(fields) != len(args) {
		return nil
	}
	for i, name := range fields {
		if name == n.Field {
			edit := fixer.ReplaceWithExpr(sh.Src, n.Range(), args[i], ctx)
			return sh.diag("field-of-constructor",
				fmt.Sprintf("accessing .%s of a %s construction is its argument", n.Field, head.Name),
				n.Range(), edit)
		}
	}
	return nil
}
