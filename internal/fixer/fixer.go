// Package fixer turns matched simplifications into minimal text edits
// and applies them. Edits are produced against the original source text;
// the AST is never rewritten. Parentheses are added only when splicing
// an expression's text into its new position would otherwise change how
// it parses.
package fixer

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fernlang/flin/internal/ast"
	"github.com/fernlang/flin/internal/types"
)

// ErrOverlap is returned when a fix's edits overlap; such a fix must be
// rebuilt as one edit over the union, never emitted as-is.
var ErrOverlap = errors.New("fixer: overlapping edits")

// Source is the immutable text of the module being analyzed.
type Source struct {
	Text string
}

// NewSource wraps source text.
func NewSource(text string) *Source {
	return &Source{Text: text}
}

// Slice returns the text covered by the range.
func (s *Source) Slice(r types.Range) string {
	start, end := r.Start.Offset, r.End.Offset
	if start < 0 || end > len(s.Text) || start > end {
		return ""
	}
	return s.Text[start:end]
}

// Context describes the syntactic position an expression is spliced
// into, which decides whether it needs parentheses.
type Context int

const (
	// CtxTop is a position where any expression parses unambiguously:
	// a declaration body, a branch body, the inside of parentheses or
	// brackets.
	CtxTop Context = iota
	// CtxArg is a function argument position: only atoms survive
	// unparenthesized.
	CtxArg
	// CtxInfix is an operand position of an infix operator.
	CtxInfix
)

// NeedsParens reports whether splicing e's text into a position with the
// given context requires wrapping it in parentheses. The answer errs on
// wrapping: redundant parentheses are ugly but never wrong.
func NeedsParens(e ast.Expr, ctx Context) bool {
	switch ast.Unparen(e).(type) {
	case *ast.IntLit, *ast.FloatLit, *ast.StringLit, *ast.CharLit,
		*ast.Ident, *ast.ListLit, *ast.TupleLit, *ast.Unit,
		*ast.Record, *ast.RecordUpdate, *ast.FieldAccess, *ast.Accessor:
		return false
	case *ast.Apply:
		return ctx == CtxArg
	case *ast.BinOp, *ast.Negate:
		return ctx != CtxTop
	default:
		// if, case, let, lambda
		return ctx != CtxTop
	}
}

// ReplaceWithExpr builds the edit that replaces the text at outer with
// inner's verbatim source text, parenthesized if the target context
// demands it. An already parenthesized inner is never double-wrapped,
// and parens the target context does not need are peeled off so fixes
// do not leave (x) behind.
func ReplaceWithExpr(src *Source, outer types.Range, inner ast.Expr, ctx Context) types.TextEdit {
	for {
		p, ok := inner.(*ast.Paren)
		if !ok || NeedsParens(p.Inner, ctx) {
			break
		}
		inner = p.Inner
	}
	text := src.Slice(inner.Range())
	if _, wrapped := inner.(*ast.Paren); !wrapped && NeedsParens(inner, ctx) {
		text = "(" + text + ")"
	}
	return types.TextEdit{Range: outer, NewText: text}
}

// ReplaceWithText builds the edit that replaces the text at outer with
// the given rendering.
func ReplaceWithText(outer types.Range, text string) types.TextEdit {
	return types.TextEdit{Range: outer, NewText: text}
}

// KeepOnly removes everything inside outer except the text at keep. The
// surrounding deletions are returned already merged per side; empty
// deletions are dropped.
func KeepOnly(outer, keep types.Range) []types.TextEdit {
	var edits []types.TextEdit
	before := types.Range{Start: outer.Start, End: keep.Start}
	if !before.Empty() {
		edits = append(edits, types.TextEdit{Range: before})
	}
	after := types.Range{Start: keep.End, End: outer.End}
	if !after.Empty() {
		edits = append(edits, types.TextEdit{Range: after})
	}
	return edits
}

// Normalize sorts the edits by start offset and verifies they are
// pairwise disjoint. Overlapping edits are a check bug, reported as
// ErrOverlap so the dispatch layer drops the whole fix instead of
// emitting corrupt text.
func Normalize(edits []types.TextEdit) ([]types.TextEdit, error) {
	out := make([]types.TextEdit, len(edits))
	copy(out, edits)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Range.Start.Offset < out[j].Range.Start.Offset
	})
	for i := 1; i < len(out); i++ {
		if out[i-1].Range.End.Offset > out[i].Range.Start.Offset {
			return nil, fmt.Errorf("%w: %s and %s", ErrOverlap, out[i-1].Range, out[i].Range)
		}
	}
	return out, nil
}

// Apply splices normalized edits into the source text.
func Apply(text string, edits []types.TextEdit) string {
	var sb strings.Builder
	last := 0
	for _, e := range edits {
		if e.Range.Start.Offset < last {
			continue
		}
		sb.WriteString(text[last:e.Range.Start.Offset])
		sb.WriteString(e.NewText)
		last = e.Range.End.Offset
	}
	sb.WriteString(text[last:])
	return sb.String()
}

// ApplyAll normalizes and applies every fix of the given diagnostics.
// Diagnostics whose primary ranges overlap an earlier one are skipped;
// callers re-run analysis until a fixed point anyway.
func ApplyAll(text string, diags []types.Diagnostic) string {
	var all []types.TextEdit
	var taken []types.Range
	for _, d := range diags {
		if !d.Fixable() {
			continue
		}
		overlap := false
		for _, r := range taken {
			if r.Overlaps(d.Range) {
				overlap = true
				break
			}
		}
		if overlap {
			continue
		}
		norm, err := Normalize(d.Edits)
		if err != nil {
			continue
		}
		taken = append(taken, d.Range)
		all = append(all, norm...)
	}
	norm, err := Normalize(all)
	if err != nil {
		return text
	}
	return Apply(text, norm)
}
