package typeprop

import (
	"github.com/fernlang/flin/internal/ast"
)

// FoldOp describes a binary operator a fold may be built from: its
// identity element, the dedicated aggregate that replaces the fold, and
// an absorbing element when one exists.
type FoldOp struct {
	Op string

	// IdentityIs recognizes the operator's identity element, the only
	// initial accumulator under which the fold may be rewritten.
	IdentityIs func(ast.Expr, Resolve) bool

	// Replacement is the name of the aggregate in the fold's own module:
	// List.foldl (&&) True becomes List.all identity.
	Replacement string

	// NeedsIdentityArg marks replacements taking a per-element function,
	// which the rewrite fills with `identity`.
	NeedsIdentityArg bool

	// Absorbing, when non-nil, is the element that annihilates the
	// aggregate: one False makes all False, one 0 makes product 0.
	Absorbing *AbsorbingProp
}

// AbsorbingProp describes an annihilating element.
type AbsorbingProp struct {
	Is    func(ast.Expr, Resolve) bool
	Print func(Qualify) string

	// NaNSensitive disables the property when NaN is expected: NaN * 0
	// is NaN, so 0 stops absorbing multiplication.
	NaNSensitive bool
}

// FoldOps is the immutable operator table, keyed by operator symbol.
var FoldOps = map[string]FoldOp{
	"&&": {
		Op:               "&&",
		IdentityIs:       makeTag("Basics", "True"),
		Replacement:      "all",
		NeedsIdentityArg: true,
		Absorbing: &AbsorbingProp{
			Is:    makeTag("Basics", "False"),
			Print: func(Qualify) string { return "False" },
		},
	},
	"||": {
		Op:               "||",
		IdentityIs:       makeTag("Basics", "False"),
		Replacement:      "any",
		NeedsIdentityArg: true,
		Absorbing: &AbsorbingProp{
			Is:    makeTag("Basics", "True"),
			Print: func(Qualify) string { return "True" },
		},
	},
	"+": {
		Op:          "+",
		IdentityIs:  isNumericLit(0),
		Replacement: "sum",
	},
	"*": {
		Op:          "*",
		IdentityIs:  isNumericLit(1),
		Replacement: "product",
		Absorbing: &AbsorbingProp{
			Is:           isNumericLit(0),
			Print:        func(Qualify) string { return "0" },
			NaNSensitive: true,
		},
	},
	"++": {
		Op:          "++",
		IdentityIs:  isEmptyAppendable,
		Replacement: "concat",
	},
}

func isNumericLit(v int64) func(ast.Expr, Resolve) bool {
	return func(e ast.Expr, _ Resolve) bool {
		switch n := ast.Unparen(e).(type) {
		case *ast.IntLit:
			return n.Value == v
		case *ast.FloatLit:
			return n.Value == float64(v)
		}
		return false
	}
}

func isEmptyAppendable(e ast.Expr, resolve Resolve) bool {
	return isEmptyList(e, resolve) || isEmptyString(e, resolve)
}
