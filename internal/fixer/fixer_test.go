package fixer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fernlang/flin/internal/ast"
	"github.com/fernlang/flin/internal/parser"
	"github.com/fernlang/flin/internal/types"
)

func rng(start, end int) types.Range {
	return types.Range{
		Start: types.Pos{Offset: start},
		End:   types.Pos{Offset: end},
	}
}

func parseBody(t *testing.T, src string) ast.Expr {
	t.Helper()
	mod, err := parser.ParseModule(src)
	require.NoError(t, err)
	fns := mod.Functions()
	require.NotEmpty(t, fns)
	return fns[0].Body
}

func TestSlice(t *testing.T) {
	s := NewSource("hello world")
	assert.Equal(t, "world", s.Slice(rng(6, 11)))
	assert.Equal(t, "", s.Slice(rng(6, 99)), "out of bounds reads nothing")
	assert.Equal(t, "", s.Slice(rng(8, 6)))
}

func TestNeedsParens(t *testing.T) {
	tests := []struct {
		name string
		src  string
		ctx  Context
		want bool
	}{
		{"ident anywhere", "v = x", CtxArg, false},
		{"literal anywhere", "v = 1", CtxInfix, false},
		{"list literal is an atom", "v = [ 1, 2 ]", CtxArg, false},
		{"record is an atom", "v = { a = 1 }", CtxArg, false},
		{"application at top", "v = f x", CtxTop, false},
		{"application as argument", "v = f x", CtxArg, true},
		{"application as operand", "v = f x", CtxInfix, false},
		{"operator as argument", "v = a + b", CtxArg, true},
		{"operator as operand", "v = a + b", CtxInfix, true},
		{"operator at top", "v = a + b", CtxTop, false},
		{"lambda as operand", "v = \\x -> x", CtxInfix, true},
		{"if at top", "v = if c then a else b", CtxTop, false},
		{"if as argument", "v = if c then a else b", CtxArg, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := parseBody(t, tt.src+"\n")
			assert.Equal(t, tt.want, NeedsParens(e, tt.ctx))
		})
	}
}

func TestReplaceWithExprWrapsWhenNeeded(t *testing.T) {
	src := "v = f (a + b)\n"
	body := parseBody(t, src)
	app, ok := body.(*ast.Apply)
	require.True(t, ok)
	inner := ast.Unparen(app.Args[0])

	s := NewSource(src)
	edit := ReplaceWithExpr(s, body.Range(), inner, CtxInfix)
	assert.Equal(t, "(a + b)", edit.NewText)

	edit = ReplaceWithExpr(s, body.Range(), inner, CtxTop)
	assert.Equal(t, "a + b", edit.NewText)

	// An expression that still carries its own parens is not wrapped
	// again.
	edit = ReplaceWithExpr(s, body.Range(), app.Args[0], CtxArg)
	assert.Equal(t, "(a + b)", edit.NewText)
}

func TestReplaceWithExprPeelsRedundantParens(t *testing.T) {
	src := "v = f (xs)\n"
	body := parseBody(t, src)
	app, ok := body.(*ast.Apply)
	require.True(t, ok)

	s := NewSource(src)
	edit := ReplaceWithExpr(s, body.Range(), app.Args[0], CtxTop)
	assert.Equal(t, "xs", edit.NewText)

	// Atoms never need the parens they arrived in, argument position
	// included.
	edit = ReplaceWithExpr(s, body.Range(), app.Args[0], CtxArg)
	assert.Equal(t, "xs", edit.NewText)
}

func TestKeepOnly(t *testing.T) {
	edits := KeepOnly(rng(4, 20), rng(8, 12))
	require.Len(t, edits, 2)
	assert.Equal(t, rng(4, 8), edits[0].Range)
	assert.Equal(t, "", edits[0].NewText)
	assert.Equal(t, rng(12, 20), edits[1].Range)

	// Keep aligned with an end of the outer range: only one deletion.
	edits = KeepOnly(rng(4, 20), rng(4, 12))
	require.Len(t, edits, 1)
	assert.Equal(t, rng(12, 20), edits[0].Range)
}

func TestNormalizeSortsAndRejectsOverlap(t *testing.T) {
	a := types.TextEdit{Range: rng(10, 14)}
	b := types.TextEdit{Range: rng(2, 6)}
	out, err := Normalize([]types.TextEdit{a, b})
	require.NoError(t, err)
	assert.Equal(t, []types.TextEdit{b, a}, out)

	_, err = Normalize([]types.TextEdit{
		{Range: rng(2, 8)},
		{Range: rng(6, 10)},
	})
	assert.ErrorIs(t, err, ErrOverlap)

	// Touching edits are disjoint.
	_, err = Normalize([]types.TextEdit{
		{Range: rng(2, 6)},
		{Range: rng(6, 10)},
	})
	assert.NoError(t, err)
}

func TestApply(t *testing.T) {
	text := "a bb ccc dddd"
	edits := []types.TextEdit{
		{Range: rng(2, 4), NewText: "B"},
		{Range: rng(9, 13), NewText: ""},
	}
	assert.Equal(t, "a B ccc ", Apply(text, edits))
}

func TestApplyAllSkipsOverlappingDiagnostics(t *testing.T) {
	text := "one two three"
	first := types.Diagnostic{
		Rule:  "a",
		Range: rng(0, 7),
		Edits: []types.TextEdit{{Range: rng(0, 7), NewText: "ONE"}},
	}
	nested := types.Diagnostic{
		Rule:  "b",
		Range: rng(4, 7),
		Edits: []types.TextEdit{{Range: rng(4, 7), NewText: "TWO"}},
	}
	after := types.Diagnostic{
		Rule:  "c",
		Range: rng(8, 13),
		Edits: []types.TextEdit{{Range: rng(8, 13), NewText: "THREE"}},
	}
	got := ApplyAll(text, []types.Diagnostic{first, nested, after})
	assert.Equal(t, "ONE THREE", got)
}

func TestApplyAllIgnoresUnfixable(t *testing.T) {
	text := "one two"
	d := types.Diagnostic{Rule: "a", Range: rng(0, 3)}
	assert.Equal(t, text, ApplyAll(text, []types.Diagnostic{d}))
}

func TestApplyAllDropsCorruptFix(t *testing.T) {
	text := "one two"
	d := types.Diagnostic{
		Rule:  "a",
		Range: rng(0, 7),
		Edits: []types.TextEdit{
			{Range: rng(0, 5), NewText: "x"},
			{Range: rng(3, 7), NewText: "y"},
		},
	}
	assert.Equal(t, text, ApplyAll(text, []types.Diagnostic{d}))
}
