package checks

import (
	"fmt"

	"github.com/fernlang/flin/internal/ast"
	"github.com/fernlang/flin/internal/fixer"
	"github.com/fernlang/flin/internal/normalize"
	"github.com/fernlang/flin/internal/scope"
	"github.com/fernlang/flin/internal/types"
)

// OpCheck inspects one infix operator node.
type OpCheck func(sh *shared, n *ast.BinOp, ctx fixer.Context) *types.Diagnostic

func opChecks() map[string][]OpCheck {
	return map[string][]OpCheck{
		"==": {checkEquality},
		"/=": {checkEquality},
		"&&": {checkBoolOperand},
		"||": {checkBoolOperand},
		"++": {checkAppendEmpty},
		"::": {checkConsToLiteral},
	}
}

// checkEquality folds comparisons the normalizer can settle. The
// default verdict is unconfirmed and produces nothing: an equality the
// engine cannot prove either way is left exactly as written.
func checkEquality(sh *shared, n *ast.BinOp, ctx fixer.Context) *types.Diagnostic {
	verdict := normalize.Compare(n.Left, n.Right, sh.NormOpts())
	if verdict == normalize.Unconfirmed {
		return nil
	}
	result := verdict == normalize.Equal
	if n.Op == "/=" {
		result = !result
	}
	text := "False"
	if result {
		text = "True"
	}
	var why string
	if verdict == normalize.Equal {
		why = "both sides are provably equal"
	} else {
		why = "the sides are provably different"
	}
	return sh.diag("constant-comparison",
		fmt.Sprintf("this comparison is always %s: %s", text, why),
		n.Range(), fixer.ReplaceWithText(n.Range(), text))
}

// checkBoolOperand simplifies && and || with a literal operand. The
// language is pure, so dropping the other operand cannot lose effects.
func checkBoolOperand(sh *shared, n *ast.BinOp, ctx fixer.Context) *types.Diagnostic {
	identity := n.Op == "&&" // True is identity for &&, False for ||

	simplify := func(lit ast.Expr, other ast.Expr, v bool) *types.Diagnostic {
		if v == identity {
			edits := fixer.KeepOnly(n.Range(), other.Range())
			return sh.diag("boolean-identity",
				fmt.Sprintf("%v is the identity of (%s)", v, n.Op),
				n.Range(), edits...)
		}
		text := "False"
		if v {
			text = "True"
		}
		return sh.diag("boolean-identity",
			fmt.Sprintf("(%s) with %v is always %s", n.Op, v, text),
			n.Range(), fixer.ReplaceWithText(n.Range(), text))
	}

	if v, ok := sh.boolLiteral(n.Left); ok {
		return simplify(n.Left, n.Right, v)
	}
	if v, ok := sh.boolLiteral(n.Right); ok {
		return simplify(n.Right, n.Left, v)
	}
	return nil
}

// checkAppendEmpty drops an empty list or string operand of ++.
func checkAppendEmpty(sh *shared, n *ast.BinOp, ctx fixer.Context) *types.Diagnostic {
	empty := func(e ast.Expr) bool {
		switch lit := ast.Unparen(e).(type) {
		case *ast.ListLit:
			return len(lit.Elems) == 0
		case *ast.StringLit:
			return lit.Value == ""
		}
		return false
	}
	var keep ast.Expr
	switch {
	case empty(n.Left):
		keep = n.Right
	case empty(n.Right):
		keep = n.Left
	default:
		return nil
	}
	edits := fixer.KeepOnly(n.Range(), keep.Range())
	return sh.diag("append-empty", "appending an empty value changes nothing",
		n.Range(), edits...)
}

// checkConsToLiteral rewrites x :: [a, b] as [x, a, b]. The new head is
// spliced into the tail literal's own text, so the file's bracket
// spacing survives the rewrite.
func checkConsToLiteral(sh *shared, n *ast.BinOp, ctx fixer.Context) *types.Diagnostic {
	tail, ok := ast.Unparen(n.Right).(*ast.ListLit)
	if !ok {
		return nil
	}
	head := sh.Src.Slice(n.Left.Range())
	var text string
	if len(tail.Elems) == 0 {
		text = "[ " + head + " ]"
	} else {
		tailText := sh.Src.Slice(tail.Range())
		lead := tail.Elems[0].Range().Start.Offset - tail.Range().Start.Offset
		text = tailText[:lead] + head + ", " + tailText[lead:]
	}
	return sh.diag("cons-to-literal", "cons onto a literal list reads better as one literal",
		n.Range(), fixer.ReplaceWithText(n.Range(), text))
}

/* composition pairs */

func compChecks() []CompCheck {
	return []CompCheck{checkFoldOverToList, checkCompositionIdentity}
}

// checkCompositionIdentity removes an identity stage from a composition
// chain. Only the adjacent pair is rewritten, so the rest of a longer
// chain survives untouched.
func checkCompositionIdentity(info *CompositionInfo) *types.Diagnostic {
	var keep ast.Expr
	switch {
	case info.IsIdentity(info.Earlier.Expr) && len(info.Earlier.Args) == 0:
		keep = info.Later.Expr
	case info.IsIdentity(info.Later.Expr) && len(info.Later.Args) == 0:
		keep = info.Earlier.Expr
	default:
		return nil
	}
	edits := fixer.KeepOnly(info.FullRange, keep.Range())
	return info.diag("composition-identity",
		"composing with identity changes nothing", info.FullRange, edits...)
}

// foldFusions maps a toList conversion to the module whose direct fold
// replaces fold-after-toList. Dict is deliberately absent: Dict.foldl
// takes a key-value function, so the fusion would change the fold
// function's shape.
var foldFusions = map[scope.FuncIdent]string{
	{Module: "Set", Name: "toList"}:   "Set",
	{Module: "Array", Name: "toList"}: "Array",
}

// checkFoldOverToList fuses List.foldl f z << Set.toList into
// Set.foldl f z, and the same for Array and for foldr. The inserted
// reference is printed through the resolver, so a local binding that
// shadows the bare name forces module qualification.
func checkFoldOverToList(info *CompositionInfo) *types.Diagnostic {
	later := info.Later
	if later.Head == nil || len(later.Args) != 2 {
		return nil
	}
	if later.Fn.Module != "List" || (later.Fn.Name != "foldl" && later.Fn.Name != "foldr") {
		return nil
	}
	earlier := info.Earlier
	if earlier.Head == nil || len(earlier.Args) != 0 {
		return nil
	}
	target, ok := foldFusions[earlier.Fn]
	if !ok {
		return nil
	}
	fused := scope.FuncIdent{Module: target, Name: later.Fn.Name}
	text := info.Qualify(fused)
	for _, arg := range later.Args {
		text += " " + argText(info.shared, arg)
	}
	if info.ParenCtx == fixer.CtxArg {
		text = "(" + text + ")"
	}
	return info.diag("fold-over-to-list",
		fmt.Sprintf("folding over %s.toList is %s directly", earlier.Fn.Module, fused),
		info.FullRange, fixer.ReplaceWithText(info.FullRange, text))
}

func argText(sh *shared, e ast.Expr) string {
	text := sh.Src.Slice(e.Range())
	if _, wrapped := e.(*ast.Paren); !wrapped && fixer.NeedsParens(e, fixer.CtxArg) {
		return "(" + text + ")"
	}
	return text
}
