package normalize

import (
	"strings"

	"github.com/fernlang/flin/internal/ast"
)

// Compare decides whether a and b always, never, or indeterminately
// evaluate to the same value. It never returns a false Equal or a false
// Unequal; anything it cannot prove is Unconfirmed.
func Compare(a, b ast.Expr, opts Options) Equality {
	na := Normalize(a, opts)
	nb := Normalize(b, opts)
	return compareNorm(na, nb, opts)
}

func compareNorm(a, b ast.Expr, opts Options) Equality {
	// Identical canonical structure is equality, except that with NaN in
	// play a non-literal float expression is not even equal to itself.
	if CanonKey(a) == CanonKey(b) {
		if !opts.ExpectNaN || definitelyNotNaN(a) {
			return Equal
		}
		return Unconfirmed
	}

	switch an := a.(type) {
	case *ast.IntLit:
		return compareNumeric(float64(an.Value), b)
	case *ast.FloatLit:
		return compareNumeric(an.Value, b)
	case *ast.StringLit:
		if bn, ok := b.(*ast.StringLit); ok {
			if an.Value == bn.Value {
				return Equal
			}
			return Unequal
		}
	case *ast.CharLit:
		if bn, ok := b.(*ast.CharLit); ok {
			if an.Value == bn.Value {
				return Equal
			}
			return Unequal
		}
	case *ast.Ident:
		if bn, ok := b.(*ast.Ident); ok {
			// Two zero-argument tags of one type either match or they
			// are distinct variants. Distinct variants never compare
			// equal; distinct plain names prove nothing.
			if an.IsTag() && bn.IsTag() {
				if an.Name == bn.Name {
					return Equal
				}
				return Unequal
			}
		}
	case *ast.Apply:
		if bn, ok := b.(*ast.Apply); ok {
			return compareApply(an, bn, opts)
		}
	case *ast.ListLit:
		if bn, ok := b.(*ast.ListLit); ok {
			if len(an.Elems) != len(bn.Elems) {
				return Unequal
			}
			return compareAllInjective(an.Elems, bn.Elems, opts)
		}
	case *ast.TupleLit:
		if bn, ok := b.(*ast.TupleLit); ok && len(an.Elems) == len(bn.Elems) {
			return compareAllInjective(an.Elems, bn.Elems, opts)
		}
	case *ast.Record:
		if bn, ok := b.(*ast.Record); ok {
			return compareRecords(an, bn, opts)
		}
	case *ast.BinOp:
		if bn, ok := b.(*ast.BinOp); ok && an.Op == bn.Op {
			return compareAllOpaque(
				[]ast.Expr{an.Left, an.Right},
				[]ast.Expr{bn.Left, bn.Right}, opts)
		}
	case *ast.If:
		if bn, ok := b.(*ast.If); ok {
			return compareAllOpaque(
				[]ast.Expr{an.Cond, an.Then, an.Else},
				[]ast.Expr{bn.Cond, bn.Then, bn.Else}, opts)
		}
	case *ast.Case:
		if bn, ok := b.(*ast.Case); ok {
			return compareCases(an, bn, opts)
		}
	}
	return Unconfirmed
}

func compareNumeric(av float64, b ast.Expr) Equality {
	switch bn := b.(type) {
	case *ast.IntLit:
		if av == float64(bn.Value) {
			return Equal
		}
		return Unequal
	case *ast.FloatLit:
		if av == bn.Value {
			return Equal
		}
		return Unequal
	}
	return Unconfirmed
}

// compareApply compares two applications of the same thing. Constructor
// applications are injective, so unequal arguments prove inequality;
// for plain function calls unequal arguments prove nothing.
func compareApply(a, b *ast.Apply, opts Options) Equality {
	fa, faOK := ast.Unparen(a.Fn).(*ast.Ident)
	fb, fbOK := ast.Unparen(b.Fn).(*ast.Ident)
	if !faOK || !fbOK {
		return Unconfirmed
	}
	if fa.IsTag() && fb.IsTag() && fa.Name != fb.Name {
		return Unequal
	}
	if fa.QualifiedName() != fb.QualifiedName() || len(a.Args) != len(b.Args) {
		return Unconfirmed
	}
	if fa.IsTag() {
		return compareAllInjective(a.Args, b.Args, opts)
	}
	return compareAllOpaque(a.Args, b.Args, opts)
}

// compareAllInjective combines child comparisons under an injective
// constructor: all Equal is Equal, any Unequal is Unequal.
func compareAllInjective(as, bs []ast.Expr, opts Options) Equality {
	result := Equal
	for i := range as {
		switch compareNorm(as[i], bs[i], opts) {
		case Unequal:
			return Unequal
		case Unconfirmed:
			result = Unconfirmed
		}
	}
	return result
}

// compareAllOpaque combines child comparisons under an opaque function:
// only all-Equal proves anything.
func compareAllOpaque(as, bs []ast.Expr, opts Options) Equality {
	if len(as) != len(bs) {
		return Unconfirmed
	}
	for i := range as {
		if compareNorm(as[i], bs[i], opts) != Equal {
			return Unconfirmed
		}
	}
	return Equal
}

func compareRecords(a, b *ast.Record, opts Options) Equality {
	if len(a.Fields) != len(b.Fields) {
		return Unconfirmed
	}
	// Fields are sorted by normalization; the sets must line up.
	for i := range a.Fields {
		if a.Fields[i].Name != b.Fields[i].Name {
			return Unconfirmed
		}
	}
	result := Equal
	for i := range a.Fields {
		switch compareNorm(a.Fields[i].Value, b.Fields[i].Value, opts) {
		case Unequal:
			return Unequal
		case Unconfirmed:
			result = Unconfirmed
		}
	}
	return result
}

func compareCases(a, b *ast.Case, opts Options) Equality {
	if len(a.Branches) != len(b.Branches) {
		return Unconfirmed
	}
	if compareNorm(a.Subject, b.Subject, opts) != Equal {
		return Unconfirmed
	}
	for i := range a.Branches {
		if CanonKeyPattern(a.Branches[i].Pattern) != CanonKeyPattern(b.Branches[i].Pattern) {
			return Unconfirmed
		}
		if compareNorm(a.Branches[i].Body, b.Branches[i].Body, opts) != Equal {
			return Unconfirmed
		}
	}
	return Equal
}

// CanonKeyPattern prints a pattern in canonical structural form.
func CanonKeyPattern(p ast.Pattern) string {
	var sb strings.Builder
	writePatternKey(&sb, p)
	return sb.String()
}

// definitelyNotNaN reports whether the expression provably cannot be
// NaN: literals, strings, chars, tags and structures of those.
func definitelyNotNaN(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.IntLit, *ast.StringLit, *ast.CharLit, *ast.Unit:
		return true
	case *ast.FloatLit:
		return n.Value == n.Value
	case *ast.Ident:
		return n.IsTag()
	case *ast.ListLit:
		for _, el := range n.Elems {
			if !definitelyNotNaN(el) {
				return false
			}
		}
		return true
	case *ast.TupleLit:
		for _, el := range n.Elems {
			if !definitelyNotNaN(el) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
