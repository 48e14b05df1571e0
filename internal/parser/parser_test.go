package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fernlang/flin/internal/ast"
)

func parseExpr(t *testing.T, text string) ast.Expr {
	t.Helper()
	mod, err := ParseModule("v = " + text + "\n")
	require.NoError(t, err)
	fns := mod.Functions()
	require.Len(t, fns, 1)
	return fns[0].Body
}

func TestModuleHeader(t *testing.T) {
	mod, err := ParseModule(`module Report exposing (run, Entry)

import Dict exposing (Dict)
import Json.Decode as Decode

run x = x
`)
	require.NoError(t, err)
	assert.Equal(t, "Report", mod.Name)
	assert.False(t, mod.Exposing.All)
	assert.True(t, mod.Exposing.Exposes("run"))
	assert.False(t, mod.Exposing.Exposes("secret"))

	require.Len(t, mod.Imports, 2)
	assert.Equal(t, "Dict", mod.Imports[0].Module)
	require.NotNil(t, mod.Imports[0].Exposing)
	assert.True(t, mod.Imports[0].Exposing.Exposes("Dict"))
	assert.Equal(t, "Json.Decode", mod.Imports[1].Module)
	assert.Equal(t, "Decode", mod.Imports[1].Alias)
}

func TestHeaderlessModuleExposesAll(t *testing.T) {
	mod, err := ParseModule("v = 1\n")
	require.NoError(t, err)
	assert.True(t, mod.Exposing.All)
	require.Len(t, mod.Functions(), 1)
}

func TestCommentsAreSkipped(t *testing.T) {
	mod, err := ParseModule(`-- leading note
v = 1 -- trailing note

{- block
   comment -}
w = 2
`)
	require.NoError(t, err)
	assert.Len(t, mod.Functions(), 2)
}

func TestOperatorPrecedence(t *testing.T) {
	e := parseExpr(t, "1 + 2 * 3")
	add, ok := e.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, "+", add.Op)
	mul, ok := add.Right.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, "*", mul.Op)
}

func TestApplicationBindsTighterThanOperators(t *testing.T) {
	e := parseExpr(t, "f x + g y")
	add, ok := e.(*ast.BinOp)
	require.True(t, ok)
	_, ok = add.Left.(*ast.Apply)
	assert.True(t, ok)
	_, ok = add.Right.(*ast.Apply)
	assert.True(t, ok)
}

func TestPipesAreLeftAssociative(t *testing.T) {
	e := parseExpr(t, "x |> f |> g")
	outer, ok := e.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, "|>", outer.Op)
	inner, ok := outer.Left.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, "|>", inner.Op)
}

func TestConsIsRightAssociative(t *testing.T) {
	e := parseExpr(t, "a :: b :: rest")
	outer, ok := e.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, "::", outer.Op)
	inner, ok := outer.Right.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, "::", inner.Op)
}

func TestQualifiedNamesAndAccess(t *testing.T) {
	e := parseExpr(t, "List.map .name people")
	app, ok := e.(*ast.Apply)
	require.True(t, ok)
	head, ok := app.Fn.(*ast.Ident)
	require.True(t, ok)
	assert.Equal(t, "List", head.Module)
	assert.Equal(t, "map", head.Name)
	require.Len(t, app.Args, 2)
	_, ok = app.Args[0].(*ast.Accessor)
	assert.True(t, ok)
}

func TestFieldAccessChain(t *testing.T) {
	e := parseExpr(t, "person.address.city")
	outer, ok := e.(*ast.FieldAccess)
	require.True(t, ok)
	assert.Equal(t, "city", outer.Field)
	inner, ok := outer.Target.(*ast.FieldAccess)
	require.True(t, ok)
	assert.Equal(t, "address", inner.Field)
}

func TestFieldAccessOnBracketedAtoms(t *testing.T) {
	e := parseExpr(t, "{ count = 42 }.count")
	fa, ok := e.(*ast.FieldAccess)
	require.True(t, ok)
	assert.Equal(t, "count", fa.Field)
	_, ok = fa.Target.(*ast.Record)
	assert.True(t, ok)

	e = parseExpr(t, `(mk "Ada" 36).name`)
	fa, ok = e.(*ast.FieldAccess)
	require.True(t, ok)
	assert.Equal(t, "name", fa.Field)
	_, ok = ast.Unparen(fa.Target).(*ast.Apply)
	assert.True(t, ok)
}

func TestOperatorSection(t *testing.T) {
	e := parseExpr(t, "foldl (&&) True xs")
	app, ok := e.(*ast.Apply)
	require.True(t, ok)
	require.Len(t, app.Args, 3)
	op, ok := app.Args[0].(*ast.Ident)
	require.True(t, ok)
	assert.Equal(t, "&&", op.Name)
}

func TestLambda(t *testing.T) {
	e := parseExpr(t, "\\x y -> x + y")
	lam, ok := e.(*ast.Lambda)
	require.True(t, ok)
	assert.Len(t, lam.Params, 2)
	_, ok = lam.Body.(*ast.BinOp)
	assert.True(t, ok)
}

func TestIfElseChain(t *testing.T) {
	e := parseExpr(t, "if a then 1 else if b then 2 else 3")
	first, ok := e.(*ast.If)
	require.True(t, ok)
	second, ok := first.Else.(*ast.If)
	require.True(t, ok)
	_, ok = second.Else.(*ast.IntLit)
	assert.True(t, ok)
}

func TestLetIn(t *testing.T) {
	src := `v x =
    let
        double n = n * 2

        base = 10
    in
    double base + x
`
	mod, err := ParseModule(src)
	require.NoError(t, err)
	fns := mod.Functions()
	require.Len(t, fns, 1)
	let, ok := fns[0].Body.(*ast.Let)
	require.True(t, ok)
	require.Len(t, let.Decls, 2)
	assert.Equal(t, "double", let.Decls[0].Name)
	assert.Len(t, let.Decls[0].Params, 1)
	assert.Equal(t, "base", let.Decls[1].Name)
}

func TestCaseBranches(t *testing.T) {
	src := `v x = case x of
    Just n ->
        n

    Nothing ->
        0
`
	mod, err := ParseModule(src)
	require.NoError(t, err)
	c, ok := mod.Functions()[0].Body.(*ast.Case)
	require.True(t, ok)
	require.Len(t, c.Branches, 2)
	tag, ok := c.Branches[0].Pattern.(*ast.PTag)
	require.True(t, ok)
	assert.Equal(t, "Just", tag.Name)
	require.Len(t, tag.Args, 1)
}

func TestTypeDeclarations(t *testing.T) {
	src := `type Color = Red | Green | Blue

type alias Point = { x : Float, y : Float }

origin = { x = 0, y = 0 }
`
	mod, err := ParseModule(src)
	require.NoError(t, err)

	var union *ast.UnionDecl
	var alias *ast.AliasDecl
	for _, d := range mod.Decls {
		switch n := d.(type) {
		case *ast.UnionDecl:
			union = n
		case *ast.AliasDecl:
			alias = n
		}
	}
	require.NotNil(t, union)
	assert.Equal(t, "Color", union.Name)
	require.Len(t, union.Variants, 3)
	assert.Equal(t, "Red", union.Variants[0].Name)

	require.NotNil(t, alias)
	assert.Equal(t, "Point", alias.Name)
	assert.Equal(t, []string{"x", "y"}, alias.Fields)
}

func TestRecordLiteralsAndUpdate(t *testing.T) {
	rec, ok := parseExpr(t, "{ a = 1, b = 2 }").(*ast.Record)
	require.True(t, ok)
	assert.Len(t, rec.Fields, 2)

	upd, ok := parseExpr(t, "{ base | a = 1 }").(*ast.RecordUpdate)
	require.True(t, ok)
	assert.Equal(t, "base", upd.Base)
	assert.Len(t, upd.Fields, 1)
}

func TestStringAndCharEscapes(t *testing.T) {
	s, ok := parseExpr(t, `"a\nb"`).(*ast.StringLit)
	require.True(t, ok)
	assert.Equal(t, "a\nb", s.Value)

	c, ok := parseExpr(t, `'\t'`).(*ast.CharLit)
	require.True(t, ok)
	assert.Equal(t, '\t', c.Value)
}

func TestNegativeNumbers(t *testing.T) {
	neg, ok := parseExpr(t, "-x").(*ast.Negate)
	require.True(t, ok)
	_, ok = neg.Operand.(*ast.Ident)
	assert.True(t, ok)

	neg, ok = parseExpr(t, "-3").(*ast.Negate)
	require.True(t, ok)
	lit, ok := neg.Operand.(*ast.IntLit)
	require.True(t, ok)
	assert.Equal(t, int64(3), lit.Value)
}

func TestRangesCoverSource(t *testing.T) {
	src := "v = f (a + b)\n"
	mod, err := ParseModule(src)
	require.NoError(t, err)
	body := mod.Functions()[0].Body
	r := body.Range()
	assert.Equal(t, "f (a + b)", src[r.Start.Offset:r.End.Offset])

	app := body.(*ast.Apply)
	ar := app.Args[0].Range()
	assert.Equal(t, "(a + b)", src[ar.Start.Offset:ar.End.Offset])
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unclosed paren", "v = (1 + 2\n"},
		{"missing body", "v =\n"},
		{"dangling operator", "v = 1 +\n"},
		{"unterminated string", "v = \"abc\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseModule(tt.src)
			assert.Error(t, err)
		})
	}
}

func TestIndentationClosesDeclarations(t *testing.T) {
	src := `first x =
    x + 1

second y = y
`
	mod, err := ParseModule(src)
	require.NoError(t, err)
	fns := mod.Functions()
	require.Len(t, fns, 2)
	assert.Equal(t, "first", fns[0].Name)
	assert.Equal(t, "second", fns[1].Name)
}

func TestTypeDeclarationClosesAtNextDeclaration(t *testing.T) {
	src := `type Shape = Circle Int | Square
area s = 1

type Coin
    = Heads
    | Tails

flip c = c
`
	mod, err := ParseModule(src)
	require.NoError(t, err)

	fns := mod.Functions()
	require.Len(t, fns, 2)
	assert.Equal(t, "area", fns[0].Name)
	assert.Equal(t, "flip", fns[1].Name)

	var unions []*ast.UnionDecl
	for _, d := range mod.Decls {
		if u, ok := d.(*ast.UnionDecl); ok {
			unions = append(unions, u)
		}
	}
	require.Len(t, unions, 2)
	require.Len(t, unions[0].Variants, 2)
	assert.Equal(t, 1, unions[0].Variants[0].Arity)
	require.Len(t, unions[1].Variants, 2)
	assert.Equal(t, "Heads", unions[1].Variants[0].Name)
}
