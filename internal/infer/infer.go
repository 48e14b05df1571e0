// Package infer derives constant facts that hold inside one branch of an
// if or case expression, and scopes them with a strictly nested frame
// stack. A fact maps the canonical key of an expression to the literal
// it is known to equal within the branch. Facts from one branch are
// never visible in a sibling branch; the frame discipline is enforced by
// the scoped Inside API rather than by caller convention, because an
// unbalanced stack silently turns into unsound "proven equal" claims.
package infer

import (
	"github.com/fernlang/flin/internal/ast"
	"github.com/fernlang/flin/internal/normalize"
)

// Frame is one branch's worth of facts.
type Frame map[string]ast.Expr

// Facts is the stack of fact frames for the branches enclosing the
// traversal's current position.
type Facts struct {
	frames []Frame
}

// New returns an empty fact stack.
func New() *Facts {
	return &Facts{}
}

// Lookup finds the innermost fact for a canonical key. Inner frames win:
// a nested branch may sharpen an outer fact.
func (f *Facts) Lookup(key string) (ast.Expr, bool) {
	for i := len(f.frames) - 1; i >= 0; i-- {
		if v, ok := f.frames[i][key]; ok {
			return v, true
		}
	}
	return nil, false
}

// Inside runs fn with the frame pushed, guaranteeing it is popped again
// even if fn panics.
func (f *Facts) Inside(frame Frame, fn func()) {
	f.frames = append(f.frames, frame)
	depth := len(f.frames)
	defer func() {
		if len(f.frames) != depth {
			panic("infer: unbalanced fact frame")
		}
		f.frames = f.frames[:depth-1]
	}()
	fn()
}

// Depth returns the number of open frames; tests assert it returns to
// zero after a traversal.
func (f *Facts) Depth() int {
	return len(f.frames)
}

// Options returns normalize options whose Lookup consults this stack.
func (f *Facts) Options(expectNaN bool) normalize.Options {
	return normalize.Options{ExpectNaN: expectNaN, Lookup: f.Lookup}
}

// FromCondition derives the facts valid in the branch taken when cond
// evaluated to positive. The then-branch decomposes conjunctions and
// equalities against literals; the else-branch works on the logical
// negation, expanded by De Morgan, double-negation elimination and
// flipping == into /=.
func FromCondition(cond ast.Expr, positive bool, expectNaN bool) Frame {
	frame := Frame{}
	collectCondition(ast.Unparen(cond), positive, expectNaN, frame)
	return frame
}

func collectCondition(cond ast.Expr, positive bool, expectNaN bool, frame Frame) {
	switch n := cond.(type) {
	case *ast.BinOp:
		switch n.Op {
		case "&&":
			if positive {
				collectCondition(ast.Unparen(n.Left), true, expectNaN, frame)
				collectCondition(ast.Unparen(n.Right), true, expectNaN, frame)
			}
			// A failed conjunction pins down neither conjunct.
			return
		case "||":
			if !positive {
				// not (a || b) == not a && not b
				collectCondition(ast.Unparen(n.Left), false, expectNaN, frame)
				collectCondition(ast.Unparen(n.Right), false, expectNaN, frame)
			}
			return
		case "==":
			if positive {
				addEquality(n.Left, n.Right, expectNaN, frame)
			} else {
				addBoolInequality(n.Left, n.Right, expectNaN, frame)
			}
			return
		case "/=":
			// a /= lit negated flips back into an equality.
			if !positive {
				addEquality(n.Left, n.Right, expectNaN, frame)
			} else {
				addBoolInequality(n.Left, n.Right, expectNaN, frame)
			}
			return
		}
	case *ast.Apply:
		if id, ok := ast.Unparen(n.Fn).(*ast.Ident); ok && id.Name == "not" && len(n.Args) == 1 {
			collectCondition(ast.Unparen(n.Args[0]), !positive, expectNaN, frame)
			return
		}
	}

	// A bare boolean expression is itself a fact: it equals True in the
	// branch where it held and False in the other one.
	if worthTracking(cond) {
		key := normalize.CanonKey(normalize.Normalize(cond, normalize.Options{ExpectNaN: expectNaN}))
		frame[key] = boolIdent(positive)
	}
}

// addEquality records e -> lit when exactly one side is a constant.
func addEquality(left, right ast.Expr, expectNaN bool, frame Frame) {
	left = ast.Unparen(left)
	right = ast.Unparen(right)
	if lit, ok := constantExpr(right); ok {
		addFact(left, lit, expectNaN, frame)
		return
	}
	if lit, ok := constantExpr(left); ok {
		addFact(right, lit, expectNaN, frame)
	}
}

// addBoolInequality records the flipped fact for two-valued constants:
// knowing e /= True pins e to False.
func addBoolInequality(left, right ast.Expr, expectNaN bool, frame Frame) {
	left = ast.Unparen(left)
	right = ast.Unparen(right)
	if lit, ok := boolConstant(right); ok {
		addFact(left, boolIdent(!lit), expectNaN, frame)
		return
	}
	if lit, ok := boolConstant(left); ok {
		addFact(right, boolIdent(!lit), expectNaN, frame)
	}
}

func addFact(e ast.Expr, value ast.Expr, expectNaN bool, frame Frame) {
	if !worthTracking(e) {
		return
	}
	key := normalize.CanonKey(normalize.Normalize(e, normalize.Options{ExpectNaN: expectNaN}))
	frame[key] = value
}

// worthTracking excludes expressions that are already constant; a fact
// about a literal adds nothing and a contradictory one would be wrong.
func worthTracking(e ast.Expr) bool {
	if _, isConst := constantExpr(e); isConst {
		return false
	}
	return true
}

// constantExpr recognizes the constants a fact may bind: literals and
// zero-argument tags.
func constantExpr(e ast.Expr) (ast.Expr, bool) {
	e = ast.Unparen(e)
	switch n := e.(type) {
	case *ast.IntLit, *ast.FloatLit, *ast.StringLit, *ast.CharLit:
		return e, true
	case *ast.Ident:
		if n.IsTag() {
			return e, true
		}
	case *ast.Negate:
		if _, ok := constantExpr(n.Operand); ok {
			return e, true
		}
	}
	return nil, false
}

func boolConstant(e ast.Expr) (bool, bool) {
	if id, ok := ast.Unparen(e).(*ast.Ident); ok {
		switch id.Name {
		case "True":
			return true, true
		case "False":
			return false, true
		}
	}
	return false, false
}

func boolIdent(v bool) ast.Expr {
	if v {
		return &ast.Ident{Name: "True"}
	}
	return &ast.Ident{Name: "False"}
}

// FromCaseBranch derives the fact for a branch whose pattern matches
// exactly one value: the case subject equals that constant inside the
// branch.
func FromCaseBranch(subject ast.Expr, pat ast.Pattern, expectNaN bool) Frame {
	frame := Frame{}
	if value, ok := ast.ConstantPattern(pat); ok {
		addFact(subject, value, expectNaN, frame)
	}
	return frame
}
