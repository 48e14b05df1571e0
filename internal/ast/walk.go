package ast

// Inspect traverses the expression depth-first in document order, calling
// f for each node. If f returns false the node's children are skipped.
func Inspect(e Expr, f func(Expr) bool) {
	if e == nil || !f(e) {
		return
	}
	switch n := e.(type) {
	case *Apply:
		Inspect(n.Fn, f)
		for _, a := range n.Args {
			Inspect(a, f)
		}
	case *BinOp:
		Inspect(n.Left, f)
		Inspect(n.Right, f)
	case *Negate:
		Inspect(n.Operand, f)
	case *If:
		Inspect(n.Cond, f)
		Inspect(n.Then, f)
		Inspect(n.Else, f)
	case *Case:
		Inspect(n.Subject, f)
		for _, br := range n.Branches {
			Inspect(br.Body, f)
		}
	case *Lambda:
		Inspect(n.Body, f)
	case *Let:
		for _, d := range n.Decls {
			Inspect(d.Body, f)
		}
		Inspect(n.Body, f)
	case *ListLit:
		for _, el := range n.Elems {
			Inspect(el, f)
		}
	case *TupleLit:
		for _, el := range n.Elems {
			Inspect(el, f)
		}
	case *Record:
		for _, fl := range n.Fields {
			Inspect(fl.Value, f)
		}
	case *RecordUpdate:
		for _, fl := range n.Fields {
			Inspect(fl.Value, f)
		}
	case *FieldAccess:
		Inspect(n.Target, f)
	case *Paren:
		Inspect(n.Inner, f)
	}
}
