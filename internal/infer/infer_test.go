package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fernlang/flin/internal/ast"
	"github.com/fernlang/flin/internal/normalize"
	"github.com/fernlang/flin/internal/parser"
)

func expr(t *testing.T, text string) ast.Expr {
	t.Helper()
	mod, err := parser.ParseModule("v = " + text + "\n")
	require.NoError(t, err)
	fns := mod.Functions()
	require.Len(t, fns, 1)
	return fns[0].Body
}

func key(t *testing.T, text string) string {
	t.Helper()
	return normalize.CanonKey(normalize.Normalize(expr(t, text), normalize.Options{}))
}

func factFor(t *testing.T, frame Frame, text string) (ast.Expr, bool) {
	t.Helper()
	v, ok := frame[key(t, text)]
	return v, ok
}

func assertIntFact(t *testing.T, frame Frame, text string, want int64) {
	t.Helper()
	v, ok := factFor(t, frame, text)
	require.True(t, ok, "no fact for %s", text)
	lit, ok := v.(*ast.IntLit)
	require.True(t, ok)
	assert.Equal(t, want, lit.Value)
}

func assertBoolFact(t *testing.T, frame Frame, text string, want bool) {
	t.Helper()
	v, ok := factFor(t, frame, text)
	require.True(t, ok, "no fact for %s", text)
	id, ok := v.(*ast.Ident)
	require.True(t, ok)
	name := "False"
	if want {
		name = "True"
	}
	assert.Equal(t, name, id.Name)
}

func TestFromConditionEquality(t *testing.T) {
	frame := FromCondition(expr(t, "x == 1"), true, false)
	assertIntFact(t, frame, "x", 1)

	// Constant on the left works the same.
	frame = FromCondition(expr(t, "2 == y"), true, false)
	assertIntFact(t, frame, "y", 2)

	// The else branch of an equality pins nothing for ints.
	frame = FromCondition(expr(t, "x == 1"), false, false)
	_, ok := factFor(t, frame, "x")
	assert.False(t, ok)
}

func TestFromConditionBooleans(t *testing.T) {
	// x == True failing means x is False.
	frame := FromCondition(expr(t, "x == True"), false, false)
	assertBoolFact(t, frame, "x", false)

	// x /= True holding means the same.
	frame = FromCondition(expr(t, "x /= True"), true, false)
	assertBoolFact(t, frame, "x", false)

	// A bare condition is its own fact.
	frame = FromCondition(expr(t, "ready"), true, false)
	assertBoolFact(t, frame, "ready", true)
	frame = FromCondition(expr(t, "ready"), false, false)
	assertBoolFact(t, frame, "ready", false)
}

func TestFromConditionConnectives(t *testing.T) {
	// Both conjuncts hold in the then branch.
	frame := FromCondition(expr(t, "x == 1 && y == 2"), true, false)
	assertIntFact(t, frame, "x", 1)
	assertIntFact(t, frame, "y", 2)

	// A failed conjunction pins neither.
	frame = FromCondition(expr(t, "x == 1 && y == 2"), false, false)
	assert.Empty(t, frame)

	// De Morgan: both disjuncts failed in the else branch.
	frame = FromCondition(expr(t, "x == True || done"), false, false)
	assertBoolFact(t, frame, "x", false)
	assertBoolFact(t, frame, "done", false)

	// A held disjunction pins neither.
	frame = FromCondition(expr(t, "a || b"), true, false)
	assert.Empty(t, frame)

	// not flips the polarity.
	frame = FromCondition(expr(t, "not (x == 1)"), false, false)
	assertIntFact(t, frame, "x", 1)
}

func TestFromConditionIgnoresConstants(t *testing.T) {
	frame := FromCondition(expr(t, "1 == 2"), true, false)
	assert.Empty(t, frame, "a fact about a literal would be contradictory")

	frame = FromCondition(expr(t, "True"), true, false)
	assert.Empty(t, frame)
}

func TestFromConditionTags(t *testing.T) {
	frame := FromCondition(expr(t, "color == Red"), true, false)
	v, ok := factFor(t, frame, "color")
	require.True(t, ok)
	id, ok := v.(*ast.Ident)
	require.True(t, ok)
	assert.Equal(t, "Red", id.Name)
}

func TestFromCaseBranch(t *testing.T) {
	mod, err := parser.ParseModule(`v x = case x of
    1 ->
        "one"

    _ ->
        "rest"
`)
	require.NoError(t, err)
	fns := mod.Functions()
	require.Len(t, fns, 1)
	c, ok := fns[0].Body.(*ast.Case)
	require.True(t, ok)

	frame := FromCaseBranch(c.Subject, c.Branches[0].Pattern, false)
	assertIntFact(t, frame, "x", 1)

	// The wildcard branch proves nothing.
	frame = FromCaseBranch(c.Subject, c.Branches[1].Pattern, false)
	assert.Empty(t, frame)
}

func TestFactsStack(t *testing.T) {
	f := New()
	outer := FromCondition(expr(t, "x == 1"), true, false)
	inner := FromCondition(expr(t, "x == 2"), true, false)

	f.Inside(outer, func() {
		v, ok := f.Lookup(key(t, "x"))
		require.True(t, ok)
		assert.Equal(t, int64(1), v.(*ast.IntLit).Value)

		f.Inside(inner, func() {
			v, ok := f.Lookup(key(t, "x"))
			require.True(t, ok)
			assert.Equal(t, int64(2), v.(*ast.IntLit).Value, "inner frames win")
		})

		v, ok = f.Lookup(key(t, "x"))
		require.True(t, ok)
		assert.Equal(t, int64(1), v.(*ast.IntLit).Value, "popped facts are gone")
	})

	_, ok := f.Lookup(key(t, "x"))
	assert.False(t, ok)
	assert.Zero(t, f.Depth())
}

func TestFactsFeedNormalization(t *testing.T) {
	f := New()
	f.Inside(FromCondition(expr(t, "x == 1"), true, false), func() {
		got := normalize.Compare(expr(t, "x + 1"), expr(t, "2"), f.Options(false))
		assert.Equal(t, normalize.Equal, got)
	})
}
