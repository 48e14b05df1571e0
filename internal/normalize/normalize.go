// Package normalize canonicalizes Fern expressions and compares them for
// provable equality. Comparison is three-valued: the default answer is
// Unconfirmed, which callers must treat as "do not simplify". A wrong
// Equal or Unequal would turn into a behavior-changing fix, so every
// rule here errs on the side of Unconfirmed.
package normalize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fernlang/flin/internal/ast"
)

// Equality is the result of comparing two expressions.
type Equality int

const (
	// Unconfirmed means the comparison proved nothing.
	Unconfirmed Equality = iota
	// Equal means the two expressions always evaluate to the same value.
	Equal
	// Unequal means the two expressions never evaluate to the same value.
	Unequal
)

func (e Equality) String() string {
	switch e {
	case Equal:
		return "Equal"
	case Unequal:
		return "Unequal"
	default:
		return "Unconfirmed"
	}
}

// Options configure normalization and comparison.
type Options struct {
	// ExpectNaN disables reasoning that NaN breaks: commutative operand
	// sorting on float-capable arithmetic and self-equality of
	// non-literal expressions.
	ExpectNaN bool

	// Lookup consults facts proven by the surrounding branch context: a
	// canonical key maps to the literal the expression is known to equal
	// here. May be nil.
	Lookup func(key string) (ast.Expr, bool)
}

// Normalize rewrites the expression into canonical form: parens and pipe
// sugar removed, nested applications flattened, integer arithmetic
// folded, proven-constant subexpressions substituted, and operands of
// commutative operators sorted. The result shares no ranges with the
// input and must only be used for comparison and key building.
func Normalize(e ast.Expr, opts Options) ast.Expr {
	return normalizeExpr(e, opts)
}

func normalizeExpr(e ast.Expr, opts Options) ast.Expr {
	e = ast.Unparen(e)

	switch n := e.(type) {
	case *ast.BinOp:
		return normalizeBinOp(n, opts)
	case *ast.Apply:
		fn := normalizeExpr(n.Fn, opts)
		args := make([]ast.Expr, 0, len(n.Args))
		for _, a := range n.Args {
			args = append(args, normalizeExpr(a, opts))
		}
		// flatten curried application: ((f a) b) -> f a b
		if inner, ok := fn.(*ast.Apply); ok {
			args = append(append([]ast.Expr{}, inner.Args...), args...)
			fn = inner.Fn
		}
		return substitute(&ast.Apply{Fn: fn, Args: args}, opts)
	case *ast.Negate:
		operand := normalizeExpr(n.Operand, opts)
		if lit, ok := operand.(*ast.IntLit); ok {
			return &ast.IntLit{Value: -lit.Value, Text: fmt.Sprintf("%d", -lit.Value)}
		}
		if lit, ok := operand.(*ast.FloatLit); ok {
			return &ast.FloatLit{Value: -lit.Value, Text: fmt.Sprintf("%g", -lit.Value)}
		}
		return substitute(&ast.Negate{Operand: operand}, opts)
	case *ast.If:
		return substitute(&ast.If{
			Cond: normalizeExpr(n.Cond, opts),
			Then: normalizeExpr(n.Then, opts),
			Else: normalizeExpr(n.Else, opts),
		}, opts)
	case *ast.Case:
		out := &ast.Case{Subject: normalizeExpr(n.Subject, opts)}
		for _, br := range n.Branches {
			out.Branches = append(out.Branches, ast.CaseBranch{
				Pattern: br.Pattern,
				Body:    normalizeExpr(br.Body, opts),
			})
		}
		return out
	case *ast.Lambda:
		return &ast.Lambda{Params: n.Params, Body: normalizeExpr(n.Body, opts)}
	case *ast.Let:
		out := &ast.Let{Body: normalizeExpr(n.Body, opts)}
		for _, d := range n.Decls {
			out.Decls = append(out.Decls, ast.LetDecl{
				Name:    d.Name,
				Params:  d.Params,
				Pattern: d.Pattern,
				Body:    normalizeExpr(d.Body, opts),
			})
		}
		return out
	case *ast.ListLit:
		out := &ast.ListLit{}
		for _, el := range n.Elems {
			out.Elems = append(out.Elems, normalizeExpr(el, opts))
		}
		return out
	case *ast.TupleLit:
		out := &ast.TupleLit{}
		for _, el := range n.Elems {
			out.Elems = append(out.Elems, normalizeExpr(el, opts))
		}
		return out
	case *ast.Record:
		return &ast.Record{Fields: normalizeFields(n.Fields, opts)}
	case *ast.RecordUpdate:
		return &ast.RecordUpdate{Base: n.Base, Fields: normalizeFields(n.Fields, opts)}
	case *ast.FieldAccess:
		return substitute(&ast.FieldAccess{Target: normalizeExpr(n.Target, opts), Field: n.Field}, opts)
	case *ast.Ident:
		return substitute(&ast.Ident{Module: n.Module, Name: n.Name}, opts)
	default:
		// literals, accessors, unit
		return substitute(e, opts)
	}
}

// normalizeFields sorts record fields by name; written order carries no
// meaning.
func normalizeFields(fields []ast.Field, opts Options) []ast.Field {
	out := make([]ast.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, ast.Field{Name: f.Name, Value: normalizeExpr(f.Value, opts)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func normalizeBinOp(n *ast.BinOp, opts Options) ast.Expr {
	// Pipe sugar first: x |> f and f <| x are plain application.
	switch n.Op {
	case "|>":
		return normalizeExpr(pipeToApply(n.Right, n.Left), opts)
	case "<|":
		return normalizeExpr(pipeToApply(n.Left, n.Right), opts)
	}

	left := normalizeExpr(n.Left, opts)
	right := normalizeExpr(n.Right, opts)

	if folded, ok := foldArith(n.Op, left, right); ok {
		return folded
	}

	if commutative(n.Op, opts) && CanonKey(right) < CanonKey(left) {
		left, right = right, left
	}
	return substitute(&ast.BinOp{Op: n.Op, Left: left, Right: right}, opts)
}

// commutative reports whether operands of op may be reordered for
// comparison. Arithmetic stops commuting once NaN is expected, because
// NaN poisons equality reasoning about reordered terms.
func commutative(op string, opts Options) bool {
	switch op {
	case "==", "/=":
		return true
	case "+", "*":
		return !opts.ExpectNaN
	default:
		return false
	}
}

// pipeToApply appends the piped argument to the function side.
func pipeToApply(fn, arg ast.Expr) ast.Expr {
	fn = ast.Unparen(fn)
	if app, ok := fn.(*ast.Apply); ok {
		args := append(append([]ast.Expr{}, app.Args...), arg)
		return &ast.Apply{Fn: app.Fn, Args: args}
	}
	return &ast.Apply{Fn: fn, Args: []ast.Expr{arg}}
}

// foldArith evaluates integer arithmetic on two literals. Division and
// anything float-typed is left alone.
func foldArith(op string, left, right ast.Expr) (ast.Expr, bool) {
	l, lok := left.(*ast.IntLit)
	r, rok := right.(*ast.IntLit)
	if !lok || !rok {
		return nil, false
	}
	var v int64
	switch op {
	case "+":
		v = l.Value + r.Value
	case "-":
		v = l.Value - r.Value
	case "*":
		v = l.Value * r.Value
	case "//":
		if r.Value == 0 {
			return nil, false
		}
		v = l.Value / r.Value
	default:
		return nil, false
	}
	return &ast.IntLit{Value: v, Text: fmt.Sprintf("%d", v)}, true
}

// substitute replaces an expression proven constant by the surrounding
// branch context with that constant.
func substitute(e ast.Expr, opts Options) ast.Expr {
	if opts.Lookup == nil {
		return e
	}
	if val, ok := opts.Lookup(CanonKey(e)); ok {
		// The fact value is itself already a literal; normalize without
		// lookup to avoid any chance of cyclic substitution.
		return normalizeExpr(val, Options{ExpectNaN: opts.ExpectNaN})
	}
	return e
}

// CanonKey prints a normalized expression in a canonical structural
// form usable as a map key. Two normalized expressions with the same
// key are structurally identical.
func CanonKey(e ast.Expr) string {
	var sb strings.Builder
	writeKey(&sb, e)
	return sb.String()
}

func writeKey(sb *strings.Builder, e ast.Expr) {
	switch n := e.(type) {
	case *ast.IntLit:
		fmt.Fprintf(sb, "int:%d", n.Value)
	case *ast.FloatLit:
		// Whole floats share a key with ints: 1 == 1.0.
		if n.Value == float64(int64(n.Value)) {
			fmt.Fprintf(sb, "int:%d", int64(n.Value))
		} else {
			fmt.Fprintf(sb, "float:%g", n.Value)
		}
	case *ast.StringLit:
		fmt.Fprintf(sb, "str:%q", n.Value)
	case *ast.CharLit:
		fmt.Fprintf(sb, "char:%q", n.Value)
	case *ast.Ident:
		sb.WriteString("id:")
		sb.WriteString(n.QualifiedName())
	case *ast.Apply:
		sb.WriteString("app(")
		writeKey(sb, n.Fn)
		for _, a := range n.Args {
			sb.WriteByte(' ')
			writeKey(sb, a)
		}
		sb.WriteByte(')')
	case *ast.BinOp:
		sb.WriteString("op(")
		sb.WriteString(n.Op)
		sb.WriteByte(' ')
		writeKey(sb, n.Left)
		sb.WriteByte(' ')
		writeKey(sb, n.Right)
		sb.WriteByte(')')
	case *ast.Negate:
		sb.WriteString("neg(")
		writeKey(sb, n.Operand)
		sb.WriteByte(')')
	case *ast.If:
		sb.WriteString("if(")
		writeKey(sb, n.Cond)
		sb.WriteByte(' ')
		writeKey(sb, n.Then)
		sb.WriteByte(' ')
		writeKey(sb, n.Else)
		sb.WriteByte(')')
	case *ast.Case:
		sb.WriteString("case(")
		writeKey(sb, n.Subject)
		for _, br := range n.Branches {
			sb.WriteByte(' ')
			writePatternKey(sb, br.Pattern)
			sb.WriteString("->")
			writeKey(sb, br.Body)
		}
		sb.WriteByte(')')
	case *ast.Lambda:
		sb.WriteString("lam(")
		for _, p := range n.Params {
			writePatternKey(sb, p)
			sb.WriteByte(' ')
		}
		writeKey(sb, n.Body)
		sb.WriteByte(')')
	case *ast.Let:
		sb.WriteString("let(")
		for _, d := range n.Decls {
			sb.WriteString(d.Name)
			sb.WriteByte('=')
			writeKey(sb, d.Body)
			sb.WriteByte(' ')
		}
		writeKey(sb, n.Body)
		sb.WriteByte(')')
	case *ast.ListLit:
		sb.WriteString("list(")
		for i, el := range n.Elems {
			if i > 0 {
				sb.WriteByte(' ')
			}
			writeKey(sb, el)
		}
		sb.WriteByte(')')
	case *ast.TupleLit:
		sb.WriteString("tuple(")
		for i, el := range n.Elems {
			if i > 0 {
				sb.WriteByte(' ')
			}
			writeKey(sb, el)
		}
		sb.WriteByte(')')
	case *ast.Unit:
		sb.WriteString("unit")
	case *ast.Record:
		sb.WriteString("rec(")
		for _, f := range n.Fields {
			sb.WriteString(f.Name)
			sb.WriteByte('=')
			writeKey(sb, f.Value)
			sb.WriteByte(' ')
		}
		sb.WriteByte(')')
	case *ast.RecordUpdate:
		sb.WriteString("upd(")
		sb.WriteString(n.Base)
		for _, f := range n.Fields {
			sb.WriteByte(' ')
			sb.WriteString(f.Name)
			sb.WriteByte('=')
			writeKey(sb, f.Value)
		}
		sb.WriteByte(')')
	case *ast.FieldAccess:
		sb.WriteString("get(")
		writeKey(sb, n.Target)
		sb.WriteByte('.')
		sb.WriteString(n.Field)
		sb.WriteByte(')')
	case *ast.Accessor:
		sb.WriteString("acc(.")
		sb.WriteString(n.Field)
		sb.WriteByte(')')
	case *ast.Paren:
		writeKey(sb, n.Inner)
	default:
		sb.WriteString("?")
	}
}

func writePatternKey(sb *strings.Builder, p ast.Pattern) {
	switch n := p.(type) {
	case *ast.PWildcard:
		sb.WriteByte('_')
	case *ast.PVar:
		sb.WriteString(n.Name)
	case *ast.PInt:
		fmt.Fprintf(sb, "%d", n.Value)
	case *ast.PString:
		fmt.Fprintf(sb, "%q", n.Value)
	case *ast.PChar:
		fmt.Fprintf(sb, "%q", n.Value)
	case *ast.PTag:
		sb.WriteString(n.Name)
		for _, a := range n.Args {
			sb.WriteByte(' ')
			writePatternKey(sb, a)
		}
	case *ast.PTuple:
		sb.WriteByte('(')
		for i, el := range n.Elems {
			if i > 0 {
				sb.WriteByte(',')
			}
			writePatternKey(sb, el)
		}
		sb.WriteByte(')')
	case *ast.PList:
		sb.WriteByte('[')
		for i, el := range n.Elems {
			if i > 0 {
				sb.WriteByte(',')
			}
			writePatternKey(sb, el)
		}
		sb.WriteByte(']')
	case *ast.PCons:
		writePatternKey(sb, n.Head)
		sb.WriteString("::")
		writePatternKey(sb, n.Tail)
	case *ast.PRecord:
		sb.WriteByte('{')
		sb.WriteString(strings.Join(n.Fields, ","))
		sb.WriteByte('}')
	case *ast.PAlias:
		writePatternKey(sb, n.Inner)
		sb.WriteString(" as ")
		sb.WriteString(n.Name)
	case *ast.PParen:
		writePatternKey(sb, n.Inner)
	case *ast.PUnit:
		sb.WriteString("()")
	}
}
