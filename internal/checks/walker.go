package checks

import (
	"sort"

	"github.com/fernlang/flin/internal/ast"
	"github.com/fernlang/flin/internal/fixer"
	"github.com/fernlang/flin/internal/infer"
	"github.com/fernlang/flin/internal/project"
	"github.com/fernlang/flin/internal/scope"
	"github.com/fernlang/flin/internal/types"
)

// Walk analyzes one parsed module in a single traversal and returns its
// diagnostics in document order. Scope and fact frames follow the
// traversal position; each site gets at most one diagnostic, and a site
// inside an already rewritten range is skipped so edits never fight.
func Walk(reg *Registry, mod *ast.Module, filename, src string, summary *project.Summary, cfg types.Config) []types.Diagnostic {
	sh := &shared{
		Filename: filename,
		Module:   mod.Name,
		Src:      fixer.NewSource(src),
		Resolver: scope.NewResolver(mod),
		Facts:    infer.New(),
		Cfg:      cfg,
		Summary:  summary,
	}
	w := &walker{shared: sh, reg: reg}
	for _, fd := range mod.Functions() {
		w.Resolver.Bindings.Inside(paramVars(fd.Params), func() {
			w.expr(fd.Body, nil, fixer.CtxTop)
		})
	}
	sort.SliceStable(w.diags, func(i, j int) bool {
		return w.diags[i].Range.Start.Offset < w.diags[j].Range.Start.Offset
	})
	return w.diags
}

type walker struct {
	*shared
	reg      *Registry
	diags    []types.Diagnostic
	consumed []types.Range
}

func paramVars(pats []ast.Pattern) []string {
	var names []string
	for _, p := range pats {
		names = append(names, ast.PatternVars(p)...)
	}
	return names
}

func (w *walker) blocked(r types.Range) bool {
	for _, c := range w.consumed {
		if c.Overlaps(r) {
			return true
		}
	}
	return false
}

func (w *walker) record(d *types.Diagnostic) bool {
	if d == nil {
		return false
	}
	if sev, configured := w.Cfg.Rules[d.Rule]; configured && sev == types.SeverityOff {
		return false
	}
	w.diags = append(w.diags, *d)
	w.consumed = append(w.consumed, d.Range)
	return true
}

// expr visits one expression: run the checks that apply to its shape,
// then descend into the children, pushing scope and fact frames as the
// syntax demands.
func (w *walker) expr(e ast.Expr, parent ast.Expr, ctx fixer.Context) {
	if e == nil || w.blocked(e.Range()) {
		return
	}
	w.record(w.dispatch(e, parent, ctx))

	switch n := e.(type) {
	case *ast.Paren:
		w.expr(n.Inner, n, fixer.CtxTop)
	case *ast.Apply:
		w.expr(n.Fn, n, fixer.CtxArg)
		for _, a := range n.Args {
			w.expr(a, n, fixer.CtxArg)
		}
	case *ast.BinOp:
		w.expr(n.Left, n, fixer.CtxInfix)
		w.expr(n.Right, n, fixer.CtxInfix)
	case *ast.Negate:
		w.expr(n.Operand, n, fixer.CtxArg)
	case *ast.If:
		w.expr(n.Cond, n, fixer.CtxTop)
		w.Facts.Inside(infer.FromCondition(n.Cond, true, w.Cfg.ExpectNaN), func() {
			w.expr(n.Then, n, fixer.CtxTop)
		})
		w.Facts.Inside(infer.FromCondition(n.Cond, false, w.Cfg.ExpectNaN), func() {
			w.expr(n.Else, n, fixer.CtxTop)
		})
	case *ast.Case:
		w.expr(n.Subject, n, fixer.CtxTop)
		for _, br := range n.Branches {
			br := br
			w.Resolver.Bindings.Inside(ast.PatternVars(br.Pattern), func() {
				w.Facts.Inside(infer.FromCaseBranch(n.Subject, br.Pattern, w.Cfg.ExpectNaN), func() {
					w.expr(br.Body, n, fixer.CtxTop)
				})
			})
		}
	case *ast.Lambda:
		w.Resolver.Bindings.Inside(paramVars(n.Params), func() {
			w.expr(n.Body, n, fixer.CtxTop)
		})
	case *ast.Let:
		// Let declarations are mutually recursive: every bound name is
		// visible in every declaration body and in the let body.
		var names []string
		for _, d := range n.Decls {
			if d.Pattern != nil {
				names = append(names, ast.PatternVars(d.Pattern)...)
			} else {
				names = append(names, d.Name)
			}
		}
		w.Resolver.Bindings.Inside(names, func() {
			for _, d := range n.Decls {
				d := d
				w.Resolver.Bindings.Inside(paramVars(d.Params), func() {
					w.expr(d.Body, n, fixer.CtxTop)
				})
			}
			w.expr(n.Body, n, fixer.CtxTop)
		})
	case *ast.ListLit:
		for _, el := range n.Elems {
			w.expr(el, n, fixer.CtxTop)
		}
	case *ast.TupleLit:
		for _, el := range n.Elems {
			w.expr(el, n, fixer.CtxTop)
		}
	case *ast.Record:
		for _, f := range n.Fields {
			w.expr(f.Value, n, fixer.CtxTop)
		}
	case *ast.RecordUpdate:
		for _, f := range n.Fields {
			w.expr(f.Value, n, fixer.CtxTop)
		}
	case *ast.FieldAccess:
		w.expr(n.Target, n, fixer.CtxArg)
	}
}

// dispatch normalizes the node's surface shape into the matching
// CheckInfo view and runs the registered checks, most specific first.
func (w *walker) dispatch(e ast.Expr, parent ast.Expr, ctx fixer.Context) *types.Diagnostic {
	switch n := e.(type) {
	case *ast.Apply:
		if ci := w.callInfo(n, ctx); ci != nil {
			return firstOf(ci, w.reg.calls[ci.Fn])
		}
	case *ast.BinOp:
		switch n.Op {
		case "|>", "<|":
			if ci := w.pipeInfo(n, ctx); ci != nil {
				return firstOf(ci, w.reg.calls[ci.Fn])
			}
		case ">>", "<<":
			if info := w.compInfo(n, parent, ctx); info != nil {
				for _, c := range w.reg.comps {
					if d := c(info); d != nil {
						return d
					}
				}
			}
		default:
			for _, c := range w.reg.ops[n.Op] {
				if d := c(w.shared, n, ctx); d != nil {
					return d
				}
			}
		}
	case *ast.If:
		for _, c := range w.reg.ifs {
			if d := c(w.shared, n, ctx); d != nil {
				return d
			}
		}
	case *ast.Case:
		for _, c := range w.reg.cases {
			if d := c(w.shared, n, ctx); d != nil {
				return d
			}
		}
	case *ast.FieldAccess:
		for _, c := range w.reg.access {
			if d := c(w.shared, n, ctx); d != nil {
				return d
			}
		}
	}
	return nil
}

// callInfo views a plain application as a call site.
func (w *walker) callInfo(n *ast.Apply, ctx fixer.Context) *CheckInfo {
	head, args := SplitCall(n)
	if head == nil {
		return nil
	}
	resolved, ok := w.Resolver.ResolveCall(head)
	if !ok {
		return nil
	}
	return &CheckInfo{
		shared:    w.shared,
		Fn:        resolved,
		FnExpr:    head,
		Args:      args,
		Style:     StyleApplication,
		FullRange: n.Range(),
		ParenCtx:  ctx,
	}
}

// pipeInfo views a pipe application as a call site: the piped value
// becomes the last logical argument.
func (w *walker) pipeInfo(n *ast.BinOp, ctx fixer.Context) *CheckInfo {
	fnSide, piped := n.Right, n.Left
	style := StylePipeLeft
	if n.Op == "<|" {
		fnSide, piped = n.Left, n.Right
		style = StylePipeRight
	}
	head, args := SplitCall(fnSide)
	if head == nil {
		return nil
	}
	resolved, ok := w.Resolver.ResolveCall(head)
	if !ok {
		return nil
	}
	return &CheckInfo{
		shared:    w.shared,
		Fn:        resolved,
		FnExpr:    head,
		Args:      append(append([]ast.Expr{}, args...), piped),
		Style:     style,
		FullRange: n.Range(),
		ParenCtx:  ctx,
		pipeArgs:  1,
	}
}

// compInfo views a composition operator as an adjacent function pair in
// data-flow order.
func (w *walker) compInfo(n *ast.BinOp, parent ast.Expr, ctx fixer.Context) *CompositionInfo {
	earlierExpr, laterExpr := n.Left, n.Right
	if n.Op == "<<" {
		earlierExpr, laterExpr = n.Right, n.Left
	}
	info := &CompositionInfo{
		shared:    w.shared,
		Earlier:   w.compPart(earlierExpr),
		Later:     w.compPart(laterExpr),
		Op:        n.Op,
		FullRange: n.Range(),
		InChain:   isComposition(parent) || isComposition(n.Left) || isComposition(n.Right),
		ParenCtx:  ctx,
	}
	return info
}

func (w *walker) compPart(e ast.Expr) CompPart {
	part := CompPart{Expr: e}
	head, args := SplitCall(e)
	if head == nil {
		return part
	}
	part.Head = head
	part.Args = args
	if resolved, ok := w.Resolver.ResolveCall(head); ok {
		part.Fn = resolved
	} else {
		part.Head = nil
	}
	return part
}

func isComposition(e ast.Expr) bool {
	op, ok := e.(*ast.BinOp)
	return ok && (op.Op == ">>" || op.Op == "<<")
}
