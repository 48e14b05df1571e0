package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fernlang/flin/internal/fixer"
	"github.com/fernlang/flin/internal/parser"
	"github.com/fernlang/flin/internal/project"
	"github.com/fernlang/flin/internal/types"
)

func analyze(t *testing.T, src string, cfg types.Config) []types.Diagnostic {
	t.Helper()
	mod, err := parser.ParseModule(src)
	require.NoError(t, err)
	summary := project.New()
	summary.Add(project.Summarize(mod, true))
	return Walk(NewRegistry(), mod, "test.fern", src, summary, cfg)
}

func applyFixes(t *testing.T, src string, diags []types.Diagnostic) string {
	t.Helper()
	return fixer.ApplyAll(src, diags)
}

func TestIdentityMap(t *testing.T) {
	src := `import List exposing (map)

process xs = map identity xs
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 1)
	assert.Equal(t, "identity-map", diags[0].Rule)
	assert.Contains(t, applyFixes(t, src, diags), "process xs = xs")
}

func TestIdentityMapCurried(t *testing.T) {
	src := `import List exposing (map)

stage = map identity
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 1)
	assert.Contains(t, applyFixes(t, src, diags), "stage = identity")
}

func TestFoldWithIdentityElement(t *testing.T) {
	src := `import List exposing (foldl, all)

conjoin xs = foldl (&&) True xs
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 1)
	assert.Equal(t, "fold-aggregate", diags[0].Rule)
	assert.Contains(t, applyFixes(t, src, diags), "conjoin xs = all identity xs")
}

func TestFoldRewriteQualifiesUnderShadowing(t *testing.T) {
	// A lambda parameter named `all` shadows the import, so the
	// inserted aggregate must be module qualified.
	src := `import List exposing (foldl, all)

conjoin = \all -> foldl (&&) True all
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 1)
	assert.Contains(t, applyFixes(t, src, diags), "List.all identity all")
}

func TestFoldOverToListFusion(t *testing.T) {
	src := `import List
import Set

total f x = List.foldl f x << Set.toList
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 1)
	assert.Equal(t, "fold-over-to-list", diags[0].Rule)
	assert.Contains(t, applyFixes(t, src, diags), "total f x = Set.foldl f x")
}

func TestFoldOverToListQualifiedUnderShadowing(t *testing.T) {
	// A binding named foldl is in scope; the written call is qualified,
	// and the inserted reference must be qualified too, never the bare
	// name the local would capture.
	src := `import List
import Set

total x = \foldl -> List.foldl foldl x << Set.toList
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 1)
	fixedSrc := applyFixes(t, src, diags)
	assert.Contains(t, fixedSrc, "Set.foldl foldl x")
	assert.NotContains(t, fixedSrc, "<<")
}

func TestIfBranchesProvablyEqual(t *testing.T) {
	src := `pick x = if x then 1 else 2 - 1
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 1)
	assert.Equal(t, "equal-branches", diags[0].Rule)
	assert.Contains(t, applyFixes(t, src, diags), "pick x = 1")
}

func TestIfBranchesEqualUnderBranchFacts(t *testing.T) {
	src := `pick x = if x == 1 then x + 1 else 2
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 1)
	assert.Contains(t, applyFixes(t, src, diags), "pick x = 2")
}

func TestStringInequalityFoldsToFalse(t *testing.T) {
	src := `check = "a" == "b"
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 1)
	assert.Equal(t, "constant-comparison", diags[0].Rule)
	assert.Contains(t, applyFixes(t, src, diags), "check = False")
}

func TestSelfEqualityRespectsNaNMode(t *testing.T) {
	src := `same x = x == x
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 1)
	assert.Contains(t, applyFixes(t, src, diags), "same x = True")

	withNaN := analyze(t, src, types.Config{ExpectNaN: true})
	assert.Empty(t, withNaN)
}

func TestPipeStylesShareOneCheck(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{"application", "identity xs", "run xs = xs"},
		{"left pipe", "xs |> identity", "run xs = xs"},
		{"right pipe", "identity <| xs", "run xs = xs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "run xs = " + tt.expr + "\n"
			diags := analyze(t, src, types.Config{})
			require.Len(t, diags, 1, "expr %q", tt.expr)
			assert.Contains(t, applyFixes(t, src, diags), tt.want)
		})
	}
}

func TestPipedFoldKeepsPipe(t *testing.T) {
	src := `import List exposing (foldl, all)

conjoin xs = xs |> foldl (&&) True
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 1)
	assert.Contains(t, applyFixes(t, src, diags), "xs |> all identity")
}

func TestMapOnEmpty(t *testing.T) {
	src := `import List exposing (map)

nothing f = map f []
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 1)
	assert.Equal(t, "call-on-empty", diags[0].Rule)
	assert.Contains(t, applyFixes(t, src, diags), "nothing f = []")
}

func TestMapOverWrap(t *testing.T) {
	src := `increment n = Maybe.map addOne (Just n)

addOne n = n + 1
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 1)
	assert.Equal(t, "map-over-wrap", diags[0].Rule)
	assert.Contains(t, applyFixes(t, src, diags), "increment n = Just (addOne n)")
}

func TestFromListLiteral(t *testing.T) {
	src := `import Set

empty = Set.fromList []

one x = Set.fromList [ x ]
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 2)
	fixedSrc := applyFixes(t, src, diags)
	assert.Contains(t, fixedSrc, "empty = Set.empty")
	assert.Contains(t, fixedSrc, "one x = Set.singleton x")
}

func TestFoldAbsorbingElement(t *testing.T) {
	src := `import List exposing (foldl)

bad x = foldl (&&) True [ x, False ]
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 1)
	assert.Equal(t, "fold-absorbing", diags[0].Rule)
	assert.Contains(t, applyFixes(t, src, diags), "bad x = False")
}

func TestProductAbsorbingGatedByNaN(t *testing.T) {
	src := `import List exposing (foldl)

zero xs x = foldl (*) 1 (x :: 0 :: xs)
`
	diags := analyze(t, src, types.Config{})
	var rules []string
	for _, d := range diags {
		rules = append(rules, d.Rule)
	}
	require.Contains(t, rules, "fold-absorbing")

	withNaN := analyze(t, src, types.Config{ExpectNaN: true})
	for _, d := range withNaN {
		assert.NotEqual(t, "fold-absorbing", d.Rule)
	}
}

func TestShadowedBareNameNeverFires(t *testing.T) {
	src := `process xs =
    let
        map f v = v
    in
    map identity xs
`
	diags := analyze(t, src, types.Config{})
	assert.Empty(t, diags)
}

func TestTopLevelLookalikeNeverFires(t *testing.T) {
	src := `map f xs = xs

use xs = map identity xs
`
	diags := analyze(t, src, types.Config{})
	assert.Empty(t, diags)
}

func TestCaseConstantSubject(t *testing.T) {
	src := `grade = case 2 of
    1 ->
        "low"

    2 ->
        "mid"

    _ ->
        "high"
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 1)
	assert.Equal(t, "constant-case", diags[0].Rule)
	assert.Contains(t, applyFixes(t, src, diags), `grade = "mid"`)
}

func TestCaseAliasPatterns(t *testing.T) {
	// A dead aliased branch is still provably dead.
	src := `grade = case 2 of
    1 as low ->
        "low"

    2 ->
        "mid"

    _ ->
        "high"
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 1)
	assert.Equal(t, "constant-case", diags[0].Rule)
	assert.Contains(t, applyFixes(t, src, diags), `grade = "mid"`)

	// An alias on the deciding branch binds a name, which blocks the
	// collapse.
	src = `grab = case Just 1 of
    (Just n) as whole ->
        n

    Nothing ->
        0
`
	assert.Empty(t, analyze(t, src, types.Config{}))
}

func TestCaseOnLocalTypeLeftAlone(t *testing.T) {
	src := `type Shade = Light | Dark

label = case Light of
    Light ->
        "light"

    Dark ->
        "dark"
`
	diags := analyze(t, src, types.Config{})
	assert.Empty(t, diags)
}

func TestCaseIgnoredTypeLeftAlone(t *testing.T) {
	src := `label = case True of
    True ->
        "yes"

    False ->
        "no"
`
	cfg := types.Config{IgnoredCaseOfTypes: []string{"Basics.Bool"}}
	assert.Empty(t, analyze(t, src, cfg))

	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 1)
	assert.Contains(t, applyFixes(t, src, diags), `label = "yes"`)
}

func TestSingleWildcardCaseLeftAlone(t *testing.T) {
	src := `force x = case x of
    _ ->
        1
`
	assert.Empty(t, analyze(t, src, types.Config{}))
}

func TestCompositionIdentityInChain(t *testing.T) {
	src := `import String

shout = String.trim >> identity >> String.toUpper
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 1)
	assert.Equal(t, "composition-identity", diags[0].Rule)
	fixedSrc := applyFixes(t, src, diags)
	assert.Contains(t, fixedSrc, "String.trim >> String.toUpper")
}

func TestBooleanOperandSimplifies(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{"and true", "x && True", "keep x = x"},
		{"true and", "True && x", "keep x = x"},
		{"and false", "x && False", "keep x = False"},
		{"or false", "x || False", "keep x = x"},
		{"or true", "x || True", "keep x = True"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "keep x = " + tt.expr + "\n"
			diags := analyze(t, src, types.Config{})
			require.Len(t, diags, 1)
			assert.Contains(t, applyFixes(t, src, diags), tt.want)
		})
	}
}

func TestDoubleNegation(t *testing.T) {
	src := `flip x = not (not x)
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 1)
	assert.Contains(t, applyFixes(t, src, diags), "flip x = x")
}

func TestIfToCondition(t *testing.T) {
	src := `asBool c = if c then True else False

negated c = if c then False else True
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 2)
	fixedSrc := applyFixes(t, src, diags)
	assert.Contains(t, fixedSrc, "asBool c = c")
	assert.Contains(t, fixedSrc, "negated c = not c")
}

func TestConstantCondition(t *testing.T) {
	src := `pick x = if True then x else expensive x

expensive x = x * x
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 1)
	assert.Equal(t, "constant-condition", diags[0].Rule)
	assert.Contains(t, applyFixes(t, src, diags), "pick x = x\n")
}

func TestComparisonSettledByBranchFacts(t *testing.T) {
	// Inside the then branch x is known to equal 1, so the repeated
	// comparison is provably True. The enclosing if collapses on the
	// next pass.
	src := `pick x = if x == 1 then if x == 1 then "a" else "b" else "c"
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 1)
	assert.Equal(t, "constant-comparison", diags[0].Rule)
	assert.Contains(t, applyFixes(t, src, diags),
		`pick x = if x == 1 then if True then "a" else "b" else "c"`)
}

func TestInvolution(t *testing.T) {
	src := `import List exposing (reverse)

same xs = reverse (reverse xs)
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 1)
	assert.Equal(t, "involution", diags[0].Rule)
	assert.Contains(t, applyFixes(t, src, diags), "same xs = xs")
}

func TestAlwaysApplication(t *testing.T) {
	src := `pick a b = always a b
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 1)
	assert.Equal(t, "always-application", diags[0].Rule)
	assert.Contains(t, applyFixes(t, src, diags), "pick a b = a")
}

func TestAppendEmpty(t *testing.T) {
	src := `extend xs = xs ++ []

prefix s = "" ++ s
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 2)
	fixedSrc := applyFixes(t, src, diags)
	assert.Contains(t, fixedSrc, "extend xs = xs")
	assert.Contains(t, fixedSrc, "prefix s = s")
}

func TestConsOntoLiteral(t *testing.T) {
	src := `push x = x :: [ 1, 2 ]
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 1)
	assert.Equal(t, "cons-to-literal", diags[0].Rule)
	assert.Contains(t, applyFixes(t, src, diags), "push x = [ x, 1, 2 ]")

	// The rewrite keeps whichever bracket spacing the file uses.
	src = `push x = x :: [1, 2]
`
	diags = analyze(t, src, types.Config{})
	require.Len(t, diags, 1)
	assert.Contains(t, applyFixes(t, src, diags), "push x = [x, 1, 2]")
}

func TestUnwrapWrap(t *testing.T) {
	src := `direct x = Maybe.withDefault 0 (Just x)

chained f x = Maybe.andThen f (Just x)
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 2)
	fixedSrc := applyFixes(t, src, diags)
	assert.Contains(t, fixedSrc, "direct x = x")
	assert.Contains(t, fixedSrc, "chained f x = f x")
}

func TestUnwrapEmpty(t *testing.T) {
	src := `fallback = Maybe.withDefault 7 Nothing

stuck f = Maybe.andThen f Nothing
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 2)
	fixedSrc := applyFixes(t, src, diags)
	assert.Contains(t, fixedSrc, "fallback = 7")
	assert.Contains(t, fixedSrc, "stuck f = Nothing")
}

func TestFieldAccessOnLiteral(t *testing.T) {
	src := `answer = { count = 42, label = "x" }.count
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 1)
	assert.Equal(t, "field-of-literal", diags[0].Rule)
	assert.Contains(t, applyFixes(t, src, diags), "answer = 42")
}

func TestFieldAccessOnAliasConstruction(t *testing.T) {
	src := `type alias Person = { name : String, age : Int }

who = (Person "Ada" 36).name
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 1)
	assert.Equal(t, "field-of-constructor", diags[0].Rule)
	assert.Contains(t, applyFixes(t, src, diags), `who = "Ada"`)
}

func TestNoFalsePositivesOnPlainCode(t *testing.T) {
	src := `import List exposing (map)

total price qty = price * qty

names people = map .name people

greet name =
    if String.isEmpty name then
        "hello"
    else
        "hello, " ++ name
`
	assert.Empty(t, analyze(t, src, types.Config{}))
}

func TestAtMostOneDiagnosticPerSite(t *testing.T) {
	// The outer identity application consumes the site; the inner map
	// is inside the rewritten range and must not produce a second,
	// overlapping diagnostic.
	src := `import List exposing (map)

run xs = identity (map identity xs)
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 1)
	for i := 1; i < len(diags); i++ {
		assert.False(t, diags[i-1].Range.Overlaps(diags[i].Range))
	}
}

func TestConfiguredRuleOff(t *testing.T) {
	src := `import List exposing (map)

process xs = map identity xs
`
	cfg := types.Config{Rules: map[string]types.Severity{"identity-map": types.SeverityOff}}
	assert.Empty(t, analyze(t, src, cfg))
}

func TestDiagnosticsAreOrderedAndDisjoint(t *testing.T) {
	src := `import List exposing (map)

a xs = map identity xs

b = "x" == "y"

c x = not (not x)
`
	diags := analyze(t, src, types.Config{})
	require.Len(t, diags, 3)
	for i := 1; i < len(diags); i++ {
		assert.LessOrEqual(t, diags[i-1].Range.End.Offset, diags[i].Range.Start.Offset)
	}
	for _, d := range diags {
		for _, e := range d.Edits {
			assert.True(t, d.Range.Contains(e.Range),
				"edit for %s escapes its diagnostic range", d.Rule)
		}
	}
}
